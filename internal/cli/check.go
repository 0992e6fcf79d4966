package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/gate"
	"github.com/mrz1836/tollgate/internal/wallet"
)

// capabilityTimeout bounds a capability check, which may consult a snap detector.
const capabilityTimeout = 10 * time.Second

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	checkChain  string
	checkWallet string
	checkSnap   bool
)

// checkCmd reports whether a wallet needs a manual receive address for a chain.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var checkCmd = &cobra.Command{
	Use:     "check",
	Short:   "Check whether a wallet needs a manual receive address",
	GroupID: groupTrade,
	Long: `Check whether the connected wallet can receive on the destination chain.

When it cannot, the trade needs a manually entered receive address. The
wallet is either a profile from the configuration file or a bare wallet kind
(native, keepkey, ledger, metamask, walletconnectv2, coinbase, keplr).`,
	Example: `  tollgate check --chain btc --wallet metamask
  tollgate check --chain btc --wallet metamask --snap
  tollgate check --chain eip155:137 --wallet ledger -o json`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkChain, "chain", "c", "", "destination chain alias or CAIP-2 id (required)")
	checkCmd.Flags().StringVarP(&checkWallet, "wallet", "w", "", "wallet profile name or wallet kind (required)")
	checkCmd.Flags().BoolVar(&checkSnap, "snap", false, "treat the wallet as having the MetaMask Snap installed")
	_ = checkCmd.MarkFlagRequired("chain")
	_ = checkCmd.MarkFlagRequired("wallet")
}

// checkResult is the outcome of a capability check.
type checkResult struct {
	Wallet              string      `json:"wallet"`
	Kind                wallet.Kind `json:"kind"`
	Chain               chain.ID    `json:"chain"`
	Supported           bool        `json:"supported"`
	RequiresManualEntry bool        `json:"requires_manual_entry"`
	SupportedChains     []chain.ID  `json:"supported_chains"`
}

func runCheck(cmd *cobra.Command, _ []string) error {
	id, err := chain.Resolve(checkChain)
	if err != nil {
		return err
	}
	w, err := cmdCtx.ResolveWallet(checkWallet, checkSnap)
	if err != nil {
		return err
	}

	res := checkCapability(cmd, cmdCtx, w, id)
	return render(cmd, res, func(w io.Writer) error {
		displayCheckText(w, res)
		return nil
	})
}

// checkCapability runs the capability query for one wallet and chain.
func checkCapability(cmd *cobra.Command, cc *CommandContext, w *wallet.Wallet, id chain.ID) checkResult {
	ctx, cancel := operationContext(cmd, capabilityTimeout)
	defer cancel()

	supported := cc.Capabilities.SupportsChain(ctx, w, id)

	cc.Logger.Debug("capability check: wallet=%s kind=%s chain=%s supported=%t", w.Name, w.Kind, id, supported)

	return checkResult{
		Wallet:              w.Name,
		Kind:                w.Kind,
		Chain:               id,
		Supported:           supported,
		RequiresManualEntry: gate.RequiresManualEntry(supported),
		SupportedChains:     supportedChains(ctx, cc.Capabilities, w),
	}
}

// supportedChains lists the known chains the wallet can receive on.
func supportedChains(ctx context.Context, q wallet.CapabilityQuery, w *wallet.Wallet) []chain.ID {
	ids := make([]chain.ID, 0)
	for _, id := range chain.KnownIDs() {
		if q.SupportsChain(ctx, w, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func displayCheckText(w io.Writer, res checkResult) {
	name := res.Chain.String()
	if info, ok := chain.Lookup(res.Chain); ok {
		name = info.DisplayName
	}

	out(w, "Wallet:        %s (%s)\n", res.Wallet, res.Kind)
	out(w, "Destination:   %s [%s]\n", name, res.Chain)
	out(w, "Supported:     %s\n", yesNo(res.Supported))
	out(w, "Manual entry:  %s\n", yesNo(res.RequiresManualEntry))

	aliases := make([]string, 0, len(res.SupportedChains))
	for _, id := range res.SupportedChains {
		if info, ok := chain.Lookup(id); ok {
			aliases = append(aliases, info.Alias)
		}
	}
	if len(aliases) == 0 {
		aliases = append(aliases, "none")
	}
	out(w, "Wallet chains: %s\n", strings.Join(aliases, ", "))
}
