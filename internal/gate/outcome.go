package gate

import "fmt"

// Status is the tag of an Outcome.
type Status string

// Outcome statuses.
const (
	StatusPending Status = "pending"
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
)

// Reason explains an Invalid outcome.
type Reason string

// Invalid reasons.
const (
	ReasonNone                 Reason = ""
	ReasonEmpty                Reason = "empty"
	ReasonMalformedAddress     Reason = "malformed_address"
	ReasonUnsupportedYatHandle Reason = "unsupported_yat_handle"
)

// Outcome is the result of validating one input: Valid(address),
// Invalid(reason) or Pending.
type Outcome struct {
	Status  Status `json:"status"`
	Address string `json:"address,omitempty"`
	Reason  Reason `json:"reason,omitempty"`
}

// Valid returns a Valid outcome carrying address.
func Valid(address string) Outcome {
	return Outcome{Status: StatusValid, Address: address}
}

// Invalid returns an Invalid outcome carrying reason.
func Invalid(reason Reason) Outcome {
	return Outcome{Status: StatusInvalid, Reason: reason}
}

// Pending returns the outcome of a validation still in flight.
func Pending() Outcome {
	return Outcome{Status: StatusPending}
}

// IsValid reports whether the outcome carries an address.
func (o Outcome) IsValid() bool {
	return o.Status == StatusValid
}

// IsPending reports whether the validation has not finished.
func (o Outcome) IsPending() bool {
	return o.Status == StatusPending
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o.Status {
	case StatusValid:
		return fmt.Sprintf("Valid(%s)", o.Address)
	case StatusInvalid:
		return fmt.Sprintf("Invalid(%s)", o.Reason)
	case StatusPending:
		return "Pending"
	}
	return "Unknown"
}
