package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// ErrorOutput represents a structured error for JSON output.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// detailFor flattens err into an ErrorDetail.
func detailFor(err error) ErrorDetail {
	var te *tgerr.TollgateError
	if !errors.As(err, &te) {
		return ErrorDetail{
			Code:     "GENERAL_ERROR",
			Message:  err.Error(),
			ExitCode: tgerr.ExitGeneral,
		}
	}

	d := ErrorDetail{
		Code:       te.Code,
		Message:    te.Message,
		Details:    te.Details,
		Suggestion: te.Suggestion,
		ExitCode:   te.ExitCode,
	}
	if te.Cause != nil {
		d.Cause = te.Cause.Error()
	}
	return d
}

// FormatError formats an error for display.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	detail := detailFor(err)
	if format == FormatJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(ErrorOutput{Error: detail})
	}
	return formatErrorText(w, detail)
}

// formatErrorText outputs error in text format with details sorted by key.
func formatErrorText(w io.Writer, d ErrorDetail) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", d.Message))

	if d.Cause != "" {
		sb.WriteString(fmt.Sprintf("Cause: %s\n", d.Cause))
	}

	if len(d.Details) > 0 {
		keys := make([]string, 0, len(d.Details))
		for k := range d.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\nDetails:\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, d.Details[k]))
		}
	}

	if d.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\nSuggestion: %s\n", d.Suggestion))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatSuccess formats a success message.
func FormatSuccess(w io.Writer, message string, format Format) error {
	if format == FormatJSON {
		output := map[string]string{"status": "success", "message": message}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}
	_, err := fmt.Fprintln(w, message)
	return err
}
