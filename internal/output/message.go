package output

import (
	"fmt"
	"io"
)

// Status line prefixes.
const (
	prefixInfo    = "ℹ️  "
	prefixWarn    = "⚠️  "
	prefixSuccess = "✅ "
	prefixFailure = "❌ "
)

// Info writes an informational line.
func Info(w io.Writer, format string, args ...any) {
	line(w, prefixInfo, format, args...)
}

// Warn writes a warning line.
func Warn(w io.Writer, format string, args ...any) {
	line(w, prefixWarn, format, args...)
}

// Success writes a success line.
func Success(w io.Writer, format string, args ...any) {
	line(w, prefixSuccess, format, args...)
}

// Failure writes a failure line.
func Failure(w io.Writer, format string, args ...any) {
	line(w, prefixFailure, format, args...)
}

func line(w io.Writer, prefix, format string, args ...any) {
	_, _ = fmt.Fprintln(w, prefix+fmt.Sprintf(format, args...))
}
