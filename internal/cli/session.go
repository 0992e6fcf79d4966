package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/gate"
	"github.com/mrz1836/tollgate/internal/metrics"
	"github.com/mrz1836/tollgate/internal/output"
	"github.com/mrz1836/tollgate/internal/tradeflow"
	"github.com/mrz1836/tollgate/internal/wallet"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// sessionTimeout bounds a whole session run.
const sessionTimeout = 2 * time.Minute

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	sessionChain         string
	sessionAsset         string
	sessionWallet        string
	sessionSnap          bool
	sessionWalletAddress string
	sessionOverlap       bool
)

// sessionCmd drives a trade-flow session through a sequence of inputs.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sessionCmd = &cobra.Command{
	Use:     "session [inputs...]",
	Short:   "Run a trade-flow session over a sequence of inputs",
	GroupID: groupTrade,
	Long: `Run a trade-flow session for one destination chain and wallet, feeding it
each input as if the user had typed it, and report the session state.

When the wallet can receive on the destination chain no manual address is
needed and the inputs are ignored; the wallet address is used instead. With
--overlap every input is submitted before any result is awaited, which shows
how the configured sequencing policy settles out-of-order results.

The command exits non-zero when the trade could not be submitted.`,
	Example: `  tollgate session --chain btc --wallet metamask 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa
  tollgate session --chain eth --wallet keplr 0x123 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed
  tollgate session --chain eth --wallet native --wallet-address 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed
  tollgate session --chain btc --wallet metamask --overlap -o json bc1q... 1A1z...`,
	RunE: runSession,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.Flags().StringVarP(&sessionChain, "chain", "c", "", "destination chain alias or CAIP-2 id (required)")
	sessionCmd.Flags().StringVar(&sessionAsset, "asset", "", "destination CAIP-19 asset id (default: the chain's native asset)")
	sessionCmd.Flags().StringVarP(&sessionWallet, "wallet", "w", "", "wallet profile name or wallet kind (required)")
	sessionCmd.Flags().BoolVar(&sessionSnap, "snap", false, "treat the wallet as having the MetaMask Snap installed")
	sessionCmd.Flags().StringVar(&sessionWalletAddress, "wallet-address", "", "receive address reported by the connected wallet")
	sessionCmd.Flags().BoolVar(&sessionOverlap, "overlap", false, "submit every input before awaiting any result")
	_ = sessionCmd.MarkFlagRequired("chain")
	_ = sessionCmd.MarkFlagRequired("wallet")
}

// sessionStep is the session state after one input settled.
type sessionStep struct {
	Input    string             `json:"input"`
	Outcome  gate.Outcome       `json:"outcome"`
	Snapshot tradeflow.Snapshot `json:"snapshot"`
}

// sessionReport is the result of a session run.
type sessionReport struct {
	Wallet         string             `json:"wallet"`
	Kind           wallet.Kind        `json:"kind"`
	Steps          []sessionStep      `json:"steps,omitempty"`
	Final          tradeflow.Snapshot `json:"final"`
	Ready          bool               `json:"ready"`
	ReadyError     string             `json:"ready_error,omitempty"`
	ReceiveAddress string             `json:"receive_address,omitempty"`
	Metrics        metrics.Snapshot   `json:"metrics"`

	readyErr error
}

func runSession(cmd *cobra.Command, args []string) error {
	dest, err := cmdCtx.Destination(sessionChain, sessionAsset)
	if err != nil {
		return err
	}
	w, err := cmdCtx.ResolveWallet(sessionWallet, sessionSnap)
	if err != nil {
		return err
	}

	ctx, cancel := operationContext(cmd, sessionTimeout)
	defer cancel()

	report, err := runTradeSession(ctx, cmdCtx, w, dest, args, sessionWalletAddress, sessionOverlap)
	if err != nil {
		return err
	}

	if err := render(cmd, report, func(tw io.Writer) error {
		return displaySessionText(tw, report)
	}); err != nil {
		return err
	}
	return report.readyErr
}

// runTradeSession drives one session and collects its states.
func runTradeSession(
	ctx context.Context,
	cc *CommandContext,
	w *wallet.Wallet,
	dest chain.Context,
	inputs []string,
	walletAddress string,
	overlap bool,
) (sessionReport, error) {
	s := tradeflow.NewSession(cc.Gate,
		tradeflow.WithSequencing(cc.Sequencing),
		tradeflow.WithFeatures(cc.Features),
		tradeflow.WithHandleChain(cc.HandleChain),
		tradeflow.WithMetrics(cc.Metrics),
		tradeflow.WithLogger(cc.Logger.Zerolog()),
	)
	if err := s.SetDestination(dest); err != nil {
		return sessionReport{}, err
	}
	s.SetWalletSupport(cc.Capabilities.SupportsChain(ctx, w, dest.ChainID))

	report := sessionReport{Wallet: w.Name, Kind: w.Kind}

	if s.RequiresManualEntry() {
		steps, err := feedInputs(ctx, s, inputs, overlap)
		if err != nil {
			return sessionReport{}, err
		}
		report.Steps = steps
	} else if len(inputs) > 0 {
		cc.Logger.Debug("session %s: wallet supports %s, ignoring %d inputs", s.ID(), dest.ChainID, len(inputs))
	}

	report.Final = s.Snapshot()
	report.readyErr = s.Ready()
	if report.readyErr == nil && (s.RequiresManualEntry() || walletAddress != "") {
		addr, err := s.ReceiveAddress(walletAddress)
		if err != nil {
			report.readyErr = err
		} else {
			report.ReceiveAddress = addr
		}
	}
	report.Ready = report.readyErr == nil
	if report.readyErr != nil {
		report.ReadyError = tgerr.Code(report.readyErr)
	}
	report.Metrics = cc.Metrics.Snapshot()
	return report, nil
}

// feedInputs submits each input to the session. Without overlap every result
// is awaited before the next input; with overlap all inputs are in flight at
// once and their outcomes are collected in submission order.
func feedInputs(ctx context.Context, s *tradeflow.Session, inputs []string, overlap bool) ([]sessionStep, error) {
	steps := make([]sessionStep, 0, len(inputs))

	if !overlap {
		for _, in := range inputs {
			ch, err := s.Input(ctx, in)
			if err != nil {
				return nil, err
			}
			outcome, err := await(ctx, ch)
			if err != nil {
				return nil, err
			}
			steps = append(steps, sessionStep{Input: in, Outcome: outcome, Snapshot: s.Snapshot()})
		}
		return steps, nil
	}

	chans := make([]<-chan gate.Outcome, len(inputs))
	for i, in := range inputs {
		ch, err := s.Input(ctx, in)
		if err != nil {
			return nil, err
		}
		chans[i] = ch
	}
	for i, ch := range chans {
		outcome, err := await(ctx, ch)
		if err != nil {
			return nil, err
		}
		steps = append(steps, sessionStep{Input: inputs[i], Outcome: outcome, Snapshot: s.Snapshot()})
	}
	return steps, nil
}

// await waits for one validation outcome.
func await(ctx context.Context, ch <-chan gate.Outcome) (gate.Outcome, error) {
	select {
	case o := <-ch:
		return o, nil
	case <-ctx.Done():
		return gate.Outcome{}, ctx.Err()
	}
}

func displaySessionText(w io.Writer, r sessionReport) error {
	f := r.Final
	out(w, "Session:      %s (%s)\n", f.ID, f.Sequencing)
	out(w, "Wallet:       %s (%s)\n", r.Wallet, r.Kind)
	out(w, "Destination:  %s [%s]\n", chainName(f.Destination.ChainID), f.Destination.AssetID)
	out(w, "Manual entry: %s\n", yesNo(f.RequiresManualEntry))

	if len(r.Steps) > 0 {
		outln(w)
		table := output.NewTable("INPUT", "OUTCOME", "STATE", "STORED ADDRESS")
		for _, step := range r.Steps {
			table.AddRow(step.Input, step.Outcome.String(), string(step.Snapshot.State), step.Snapshot.ManualReceiveAddress)
		}
		if err := table.Render(w); err != nil {
			return err
		}
	}

	outln(w)
	switch {
	case r.Ready && r.ReceiveAddress == "":
		output.Success(w, "Ready to submit, the wallet supplies the receive address")
	case r.Ready:
		output.Success(w, "Ready to submit, receive address %s", r.ReceiveAddress)
	default:
		output.Failure(w, "Not ready: %s", r.readyErr)
	}
	return nil
}
