package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tollgate/internal/address/uri"
	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/output"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var parseChain string

// parseCmd interprets an input with payment-request URI parsing enabled.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var parseCmd = &cobra.Command{
	Use:     "parse <uri-or-address>",
	Short:   "Interpret an address or payment-request URI",
	GroupID: groupGate,
	Long: `Interpret an input with the destination chain's address interpreter,
with payment-request URI parsing turned on.

EIP-681 (ethereum:) and BIP-21 (bitcoin:, litecoin:, dogecoin:) requests are
decoded and their target address is checked against the chain. This is a
diagnostic view: the validate command and the trade flow never accept URIs.`,
	Example: `  tollgate parse --chain eth "ethereum:0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed@1?value=1e18"
  tollgate parse --chain btc "bitcoin:1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa?amount=0.001" -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseChain, "chain", "c", "", "destination chain alias or CAIP-2 id (required)")
	_ = parseCmd.MarkFlagRequired("chain")
}

// parseResult is the interpretation of one input.
type parseResult struct {
	Chain          chain.ID             `json:"chain"`
	Input          string               `json:"input"`
	Interpretation chain.Interpretation `json:"interpretation"`
	Request        *uri.Request         `json:"request,omitempty"`
	DisplayAmount  string               `json:"display_amount,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	dest, err := cmdCtx.Destination(parseChain, "")
	if err != nil {
		return err
	}
	res, err := interpretInput(cmd, cmdCtx, dest, args[0])
	if err != nil {
		return err
	}
	if res.Interpretation.Address == "" {
		return tgerr.WithDetails(tgerr.ErrInvalidAddress, map[string]string{
			"chain": dest.ChainID.String(),
			"input": res.Input,
		})
	}

	return render(cmd, res, func(w io.Writer) error {
		displayParseText(w, res)
		return nil
	})
}

// interpretInput runs the chain's interpreter on input with URI parsing on.
func interpretInput(cmd *cobra.Command, cc *CommandContext, dest chain.Context, input string) (parseResult, error) {
	res := parseResult{Chain: dest.ChainID, Input: strings.TrimSpace(input)}

	adapter, err := cc.Registry.Get(dest.ChainID)
	if err != nil {
		return res, err
	}

	ctx, cancel := operationContext(cmd, validateTimeout)
	defer cancel()

	res.Interpretation, err = adapter.Interpreter.Interpret(ctx, chain.InterpretRequest{
		Input:       res.Input,
		AssetID:     dest.AssetID,
		AllowHandle: cc.HandleOptions(dest.ChainID).AllowHandle,
	})
	if err != nil {
		return res, err
	}

	if res.Interpretation.FromURI {
		if req, perr := uri.Parse(res.Input); perr == nil {
			res.Request = &req
			if req.Amount != nil {
				res.DisplayAmount = uri.FormatAmount(req.Amount, uri.Decimals(req.Scheme))
			}
		}
	}
	return res, nil
}

func displayParseText(w io.Writer, res parseResult) {
	output.Success(w, "%s", res.Interpretation.Address)
	out(w, "Chain:   %s [%s]\n", chainName(res.Chain), res.Chain)

	switch {
	case res.Request != nil:
		out(w, "Source:  %s payment request\n", res.Request.Scheme)
		if res.DisplayAmount != "" {
			out(w, "Amount:  %s\n", res.DisplayAmount)
		}
		if res.Request.Label != "" {
			out(w, "Label:   %s\n", res.Request.Label)
		}
		if res.Request.Message != "" {
			out(w, "Message: %s\n", res.Request.Message)
		}
	case res.Interpretation.HandleAttempted:
		out(w, "Source:  handle %s\n", res.Input)
	default:
		outln(w, "Source:  native address")
	}
}
