// Package errors provides structured error handling for tollgate.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Operation not allowed in the current state
)

// TollgateError is the structured error type for tollgate.
type TollgateError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *TollgateError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *TollgateError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for TollgateError.
func (e *TollgateError) Is(target error) bool {
	var t *TollgateError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &TollgateError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &TollgateError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &TollgateError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	// Chain-specific errors.
	ErrInvalidChainID = &TollgateError{
		Code:     "INVALID_CHAIN_ID",
		Message:  "invalid chain identifier",
		ExitCode: ExitInput,
	}

	ErrInvalidAssetID = &TollgateError{
		Code:     "INVALID_ASSET_ID",
		Message:  "invalid asset identifier",
		ExitCode: ExitInput,
	}

	ErrUnsupportedChain = &TollgateError{
		Code:     "UNSUPPORTED_CHAIN",
		Message:  "unsupported chain",
		ExitCode: ExitInput,
	}

	ErrChainMismatch = &TollgateError{
		Code:     "CHAIN_MISMATCH",
		Message:  "asset does not belong to chain",
		ExitCode: ExitInput,
	}

	ErrInvalidAddress = &TollgateError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrInvalidChecksum = &TollgateError{
		Code:     "INVALID_CHECKSUM",
		Message:  "invalid address checksum",
		ExitCode: ExitInput,
	}

	ErrUnsupportedVersion = &TollgateError{
		Code:     "UNSUPPORTED_VERSION",
		Message:  "unsupported address version",
		ExitCode: ExitInput,
	}

	ErrInvalidURI = &TollgateError{
		Code:     "INVALID_URI",
		Message:  "invalid payment request URI",
		ExitCode: ExitInput,
	}

	// Handle resolution errors.
	ErrHandleNotFound = &TollgateError{
		Code:     "HANDLE_NOT_FOUND",
		Message:  "handle not found",
		ExitCode: ExitNotFound,
	}

	ErrHandleLookup = &TollgateError{
		Code:     "HANDLE_LOOKUP_FAILED",
		Message:  "handle lookup failed",
		ExitCode: ExitGeneral,
	}

	ErrNetworkError = &TollgateError{
		Code:     "NETWORK_ERROR",
		Message:  "network communication failed",
		ExitCode: ExitGeneral,
	}

	// Trade-flow errors.
	ErrManualEntryNotRequired = &TollgateError{
		Code:     "MANUAL_ENTRY_NOT_REQUIRED",
		Message:  "connected wallet supports the destination chain",
		ExitCode: ExitPermission,
	}

	ErrValidationInProgress = &TollgateError{
		Code:     "VALIDATION_IN_PROGRESS",
		Message:  "receive address is still being validated",
		ExitCode: ExitPermission,
	}

	ErrManualAddressRequired = &TollgateError{
		Code:     "MANUAL_ADDRESS_REQUIRED",
		Message:  "a valid receive address is required",
		ExitCode: ExitPermission,
	}

	ErrNoDestination = &TollgateError{
		Code:     "NO_DESTINATION",
		Message:  "no destination asset selected",
		ExitCode: ExitInput,
	}

	// Config-specific errors.
	ErrConfigNotFound = &TollgateError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &TollgateError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownWallet = &TollgateError{
		Code:     "UNKNOWN_WALLET",
		Message:  "unknown wallet",
		ExitCode: ExitInput,
	}
)

// New creates a new TollgateError with the given code and message.
func New(code, message string) *TollgateError {
	return &TollgateError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var te *TollgateError
	if errors.As(err, &te) {
		return &TollgateError{
			Code:       te.Code,
			Message:    fmt.Sprintf("%s: %s", msg, te.Message),
			Details:    te.Details,
			Suggestion: te.Suggestion,
			Cause:      err,
			ExitCode:   te.ExitCode,
		}
	}

	return &TollgateError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var te *TollgateError
	if errors.As(err, &te) {
		return &TollgateError{
			Code:       te.Code,
			Message:    te.Message,
			Details:    details,
			Suggestion: te.Suggestion,
			Cause:      te.Cause,
			ExitCode:   te.ExitCode,
		}
	}

	return &TollgateError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var te *TollgateError
	if errors.As(err, &te) {
		return &TollgateError{
			Code:       te.Code,
			Message:    te.Message,
			Details:    te.Details,
			Suggestion: suggestion,
			Cause:      te.Cause,
			ExitCode:   te.ExitCode,
		}
	}

	return &TollgateError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// WithCause attaches an underlying cause to a sentinel error.
func WithCause(err, cause error) error {
	if err == nil {
		return nil
	}

	var te *TollgateError
	if errors.As(err, &te) {
		return &TollgateError{
			Code:       te.Code,
			Message:    te.Message,
			Details:    te.Details,
			Suggestion: te.Suggestion,
			Cause:      cause,
			ExitCode:   te.ExitCode,
		}
	}

	return fmt.Errorf("%w: %w", err, cause)
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var te *TollgateError
	if errors.As(err, &te) {
		return te.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var te *TollgateError
	if errors.As(err, &te) {
		return te.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
