package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/gate"
	"github.com/mrz1836/tollgate/internal/output"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// validateTimeout bounds a single validate command, handle lookups included.
const validateTimeout = 30 * time.Second

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	validateChain string
	validateAsset string
)

// validateCmd validates one receive address input.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var validateCmd = &cobra.Command{
	Use:     "validate <input>",
	Short:   "Validate a receive address for a destination chain",
	GroupID: groupGate,
	Long: `Validate a manually entered receive address against the destination chain.

Surrounding whitespace is ignored. A native address of the chain is accepted
as typed. On the handle chain, with the Yat feature on, a Yat emoji handle is
resolved and the resolved address is returned. Payment-request URIs such as
"ethereum:0x..." are always rejected.

The command exits non-zero when the input is not accepted.`,
	Example: `  tollgate validate --chain eth 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed
  tollgate validate --chain btc bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4
  tollgate validate --chain eip155:1 --asset eip155:1/slip44:60 🦊🚀 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateChain, "chain", "c", "", "destination chain alias or CAIP-2 id (required)")
	validateCmd.Flags().StringVar(&validateAsset, "asset", "", "destination CAIP-19 asset id (default: the chain's native asset)")
	_ = validateCmd.MarkFlagRequired("chain")
}

// validateResult is an accepted receive address.
type validateResult struct {
	Chain          chain.ID      `json:"chain"`
	Asset          chain.AssetID `json:"asset"`
	Outcome        gate.Outcome  `json:"outcome"`
	HandlesAllowed bool          `json:"handles_allowed"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	dest, err := cmdCtx.Destination(validateChain, validateAsset)
	if err != nil {
		return err
	}

	ctx, cancel := operationContext(cmd, validateTimeout)
	defer cancel()

	opts := cmdCtx.HandleOptions(dest.ChainID)
	outcome := cmdCtx.Gate.ValidateAddress(ctx, args[0], dest, opts)
	if err := outcomeError(outcome, dest.ChainID, opts); err != nil {
		return err
	}

	res := validateResult{
		Chain:          dest.ChainID,
		Asset:          dest.AssetID,
		Outcome:        outcome,
		HandlesAllowed: opts.AllowHandle,
	}
	return render(cmd, res, func(w io.Writer) error {
		output.Success(w, "%s", outcome.Address)
		out(w, "Destination: %s [%s]\n", chainName(dest.ChainID), dest.AssetID)
		return nil
	})
}

// outcomeError converts a rejected outcome into a CLI error carrying the
// user-facing message. It returns nil for accepted outcomes.
func outcomeError(o gate.Outcome, id chain.ID, opts gate.Options) error {
	if o.Status != gate.StatusInvalid {
		return nil
	}
	key := gate.MessageKey(o, opts)
	err := tgerr.WithDetails(tgerr.ErrInvalidAddress, map[string]string{
		"chain":       id.String(),
		"reason":      string(o.Reason),
		"message_key": key,
	})
	return tgerr.WithSuggestion(err, gate.Message(key))
}

// chainName returns the display name of a chain, or its id when unknown.
func chainName(id chain.ID) string {
	if info, ok := chain.Lookup(id); ok {
		return info.DisplayName
	}
	return id.String()
}
