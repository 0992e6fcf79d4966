package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tollgate/internal/output"
)

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func out(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func outln(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}

// render writes v to the command's output as JSON, or through text when the
// active format is text.
func render(cmd *cobra.Command, v any, text func(w io.Writer) error) error {
	format := output.FormatText
	if formatter != nil {
		format = formatter.Format()
	}
	return output.NewFormatter(format, cmd.OutOrStdout()).Render(v, text)
}

// yesNo renders a boolean for text output.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
