package gate

// Message keys surfaced to the user for an Invalid outcome.
const (
	MessageRequired            = "common.required"
	MessageInvalidAddress      = "common.invalidAddress"
	MessageInvalidAddressOrYat = "common.invalidAddressOrYat"
)

// defaultMessages holds the English text of each message key.
var defaultMessages = map[string]string{ //nolint:gochecknoglobals // read-only lookup table
	MessageRequired:            "This field is required",
	MessageInvalidAddress:      "Invalid address",
	MessageInvalidAddressOrYat: "Invalid address or Yat",
}

// MessageKey returns the message key of an Invalid outcome, or "" for Valid
// and Pending outcomes. The Yat wording is used whenever handle resolution
// was allowed, whatever the specific reason.
func MessageKey(o Outcome, opts Options) string {
	if o.Status != StatusInvalid {
		return ""
	}
	if o.Reason == ReasonEmpty {
		return MessageRequired
	}
	if opts.AllowHandle {
		return MessageInvalidAddressOrYat
	}
	return MessageInvalidAddress
}

// Message returns the English text of a message key, or the key itself when
// it has no default text.
func Message(key string) string {
	if msg, ok := defaultMessages[key]; ok {
		return msg
	}
	return key
}
