package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tollgate/internal/output"
)

// appendSubcommandList adds a table of the available subcommands, with their
// arguments, to a parent command's Long help. Leaf commands are left alone.
func appendSubcommandList(cmd *cobra.Command) {
	if !cmd.HasAvailableSubCommands() {
		return
	}

	table := output.NewTable("COMMAND", "DESCRIPTION")
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			table.AddRow(sub.Use, sub.Short)
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(cmd.Long, "\n"))
	sb.WriteString("\n\nSubcommands:\n")
	for _, line := range strings.Split(strings.TrimRight(table.String(), "\n"), "\n") {
		sb.WriteString("  ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	cmd.Long = sb.String()
}
