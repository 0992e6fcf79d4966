package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/output"
)

// chainsCmd lists the chains the gate knows.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var chainsCmd = &cobra.Command{
	Use:     "chains",
	Short:   "List supported destination chains",
	GroupID: groupConfig,
	Long: `List every chain the address gate can validate against, with its alias,
CAIP-2 identifier and native asset.

The handles column shows where Yat handles are currently accepted. That is
only ever the configured handle chain, and only while the Yat feature is on.`,
	Example: `  tollgate chains
  tollgate chains -o json`,
	Args: cobra.NoArgs,
	RunE: runChains,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(chainsCmd)
}

// chainRow is one entry of the chains listing.
type chainRow struct {
	Alias       string        `json:"alias"`
	ID          chain.ID      `json:"id"`
	Name        string        `json:"name"`
	Family      chain.Family  `json:"family"`
	Symbol      string        `json:"symbol"`
	NativeAsset chain.AssetID `json:"native_asset"`
	Handles     bool          `json:"handles"`
}

func runChains(cmd *cobra.Command, _ []string) error {
	rows := listChains(cmdCtx)

	return render(cmd, map[string]any{"chains": rows}, func(w io.Writer) error {
		table := output.NewTable("ALIAS", "CHAIN ID", "NAME", "FAMILY", "SYMBOL", "HANDLES")
		for _, r := range rows {
			table.AddRow(r.Alias, r.ID.String(), r.Name, string(r.Family), r.Symbol, yesNo(r.Handles))
		}
		return table.Render(w)
	})
}

// listChains returns the known chains in registry order.
func listChains(cc *CommandContext) []chainRow {
	rows := make([]chainRow, 0, len(chain.Known()))
	for _, info := range chain.Known() {
		native, _ := chain.NativeAsset(info.ID)
		name := info.DisplayName
		if cc.Registry != nil {
			name = cc.Registry.DisplayName(info.ID)
		}
		rows = append(rows, chainRow{
			Alias:       info.Alias,
			ID:          info.ID,
			Name:        name,
			Family:      info.Family,
			Symbol:      info.Symbol,
			NativeAsset: native,
			Handles:     cc.HandleOptions(info.ID).AllowHandle,
		})
	}
	return rows
}
