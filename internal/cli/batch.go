package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/gate"
	"github.com/mrz1836/tollgate/internal/metrics"
	"github.com/mrz1836/tollgate/internal/output"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// batchTimeout bounds a whole batch run.
const batchTimeout = 5 * time.Minute

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	batchChain       string
	batchAsset       string
	batchFile        string
	batchConcurrency int
)

// batchCmd validates a file of receive address inputs.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var batchCmd = &cobra.Command{
	Use:     "batch",
	Short:   "Validate a file of receive addresses",
	GroupID: groupGate,
	Long: `Validate every line of a file against one destination chain.

Blank lines and lines starting with # are skipped. Inputs are validated
concurrently and reported in file order. Use "-" as the file to read from
standard input. The command exits non-zero when any input is rejected.`,
	Example: `  tollgate batch --chain eth --file addresses.txt
  cat addresses.txt | tollgate batch --chain btc --file - --concurrency 4 -o json`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchChain, "chain", "c", "", "destination chain alias or CAIP-2 id (required)")
	batchCmd.Flags().StringVar(&batchAsset, "asset", "", "destination CAIP-19 asset id (default: the chain's native asset)")
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "file with one input per line, or - for stdin (required)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", gate.DefaultConcurrency, "maximum validations in flight")
	_ = batchCmd.MarkFlagRequired("chain")
	_ = batchCmd.MarkFlagRequired("file")
}

// batchEntry is the outcome of one input line.
type batchEntry struct {
	Line       int          `json:"line"`
	Input      string       `json:"input"`
	Outcome    gate.Outcome `json:"outcome"`
	MessageKey string       `json:"message_key,omitempty"`
}

// batchReport is the result of a batch run.
type batchReport struct {
	Chain   chain.ID     `json:"chain"`
	Asset   string       `json:"asset"`
	Results []batchEntry `json:"results"`
	Valid   int          `json:"valid"`
	Invalid int          `json:"invalid"`

	Metrics metrics.Snapshot `json:"metrics"`
}

func runBatch(cmd *cobra.Command, _ []string) error {
	dest, err := cmdCtx.Destination(batchChain, batchAsset)
	if err != nil {
		return err
	}

	lines, numbers, err := readBatchInputs(cmd, batchFile)
	if err != nil {
		return err
	}

	ctx, cancel := operationContext(cmd, batchTimeout)
	defer cancel()

	report := validateBatch(ctx, cmdCtx, dest, lines, numbers, batchConcurrency)
	if err := render(cmd, report, func(w io.Writer) error {
		return displayBatchText(w, report)
	}); err != nil {
		return err
	}

	if report.Invalid > 0 {
		return tgerr.WithDetails(tgerr.ErrInvalidAddress, map[string]string{
			"chain":   dest.ChainID.String(),
			"invalid": strconv.Itoa(report.Invalid),
		})
	}
	return nil
}

// readBatchInputs returns the non-blank, non-comment lines of path together
// with their 1-based line numbers.
func readBatchInputs(cmd *cobra.Command, path string) ([]string, []int, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		// #nosec G304 -- input file path is provided by the user
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, tgerr.WithCause(tgerr.WithDetails(tgerr.ErrNotFound, map[string]string{"file": path}), err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var (
		inputs  []string
		numbers []int
	)
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, line)
		numbers = append(numbers, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(inputs) == 0 {
		return nil, nil, tgerr.WithSuggestion(tgerr.ErrInvalidInput, "the input file has no addresses")
	}
	return inputs, numbers, nil
}

// validateBatch validates inputs with bounded concurrency.
func validateBatch(ctx context.Context, cc *CommandContext, dest chain.Context, inputs []string, numbers []int, concurrency int) batchReport {
	opts := cc.HandleOptions(dest.ChainID)
	outcomes := gate.ValidateMany(ctx, cc.Gate, inputs, dest, opts, concurrency)

	report := batchReport{
		Chain:   dest.ChainID,
		Asset:   dest.AssetID.String(),
		Results: make([]batchEntry, len(inputs)),
	}
	for i, o := range outcomes {
		report.Results[i] = batchEntry{
			Line:       numbers[i],
			Input:      inputs[i],
			Outcome:    o,
			MessageKey: gate.MessageKey(o, opts),
		}
		if o.IsValid() {
			report.Valid++
		} else {
			report.Invalid++
		}
	}

	report.Metrics = cc.Metrics.Snapshot()
	cc.Logger.Debug("batch: chain=%s valid=%d invalid=%d", dest.ChainID, report.Valid, report.Invalid)
	return report
}

func displayBatchText(w io.Writer, report batchReport) error {
	table := output.NewTable("LINE", "INPUT", "RESULT", "ADDRESS / REASON")
	for _, e := range report.Results {
		detail := e.Outcome.Address
		if !e.Outcome.IsValid() {
			detail = gate.Message(e.MessageKey)
		}
		table.AddRow(strconv.Itoa(e.Line), e.Input, string(e.Outcome.Status), detail)
	}
	if err := table.Render(w); err != nil {
		return err
	}

	outln(w)
	if report.Invalid == 0 {
		output.Success(w, "%d of %d inputs accepted for %s", report.Valid, len(report.Results), chainName(report.Chain))
	} else {
		output.Failure(w, "%d of %d inputs rejected for %s", report.Invalid, len(report.Results), chainName(report.Chain))
	}
	return nil
}
