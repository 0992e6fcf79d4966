// Package uri parses payment-request URIs: EIP-681 for EVM chains and
// BIP-21 for Bitcoin-derived chains.
package uri

import (
	"math/big"
	"net/url"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mrz1836/tollgate/internal/chain"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// Schemes understood by Parse.
const (
	SchemeEthereum = "ethereum"
	SchemeBitcoin  = "bitcoin"
	SchemeLitecoin = "litecoin"
	SchemeDogecoin = "dogecoin"
)

// utxoDecimals is the number of base units per coin on BIP-21 chains.
const utxoDecimals = 8

// maxAmountDigits is the decimal length of the largest uint256.
const maxAmountDigits = 78

//nolint:gochecknoglobals // Upper bound for EIP-681 uint256 amounts
var maxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

//nolint:gochecknoglobals // Compiled patterns
var (
	// schemeRe matches an RFC 3986 scheme followed by a colon.
	schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)

	// chainRefRe matches an EIP-681 decimal chain id.
	chainRefRe = regexp.MustCompile(`^[0-9]{1,20}$`)
)

// Request is a parsed payment request.
type Request struct {
	Scheme   string   `json:"scheme"`
	Address  string   `json:"address"`
	ChainRef string   `json:"chain_ref,omitempty"` // EIP-681 chain id, empty when absent
	Token    string   `json:"token,omitempty"`     // token contract of an EIP-681 transfer
	Amount   *big.Int `json:"amount,omitempty"`    // base units, nil when absent
	Label    string   `json:"label,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// IsURI reports whether input is written in URI form rather than as a bare
// address or handle. No supported address format contains a colon.
func IsURI(input string) bool {
	return strings.Contains(input, "://") || schemeRe.MatchString(input)
}

// SchemeFor returns the payment-request scheme used by a chain.
func SchemeFor(id chain.ID) (string, bool) {
	switch id {
	case chain.Bitcoin:
		return SchemeBitcoin, true
	case chain.Litecoin:
		return SchemeLitecoin, true
	case chain.Dogecoin:
		return SchemeDogecoin, true
	}
	if id.Namespace() == chain.NamespaceEIP155 {
		return SchemeEthereum, true
	}
	return "", false
}

// Parse parses an EIP-681 or BIP-21 payment request.
func Parse(input string) (Request, error) {
	u, err := url.Parse(strings.TrimSpace(input))
	if err != nil {
		return Request{}, tgerr.WithCause(invalid(input, "malformed uri"), err)
	}

	target := u.Opaque
	if target == "" {
		// scheme://address form
		target = u.Host + strings.TrimPrefix(u.Path, "/")
	}
	if target == "" {
		return Request{}, invalid(input, "missing target address")
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case SchemeEthereum:
		return parseEIP681(input, target, u.Query())
	case SchemeBitcoin, SchemeLitecoin, SchemeDogecoin:
		return parseBIP21(input, scheme, target, u.Query())
	default:
		return Request{}, invalid(input, "unsupported scheme "+u.Scheme)
	}
}

// parseEIP681 handles ethereum:[pay-]<address>[@chain][/function][?params].
func parseEIP681(input, target string, q url.Values) (Request, error) {
	target = strings.TrimPrefix(target, "pay-")

	addrPart, function, _ := strings.Cut(target, "/")
	addr, chainRef, _ := strings.Cut(addrPart, "@")

	if chainRef != "" && !chainRefRe.MatchString(chainRef) {
		return Request{}, invalid(input, "invalid chain id "+chainRef)
	}

	req := Request{Scheme: SchemeEthereum, ChainRef: chainRef}

	switch function {
	case "":
		req.Address = addr
		if v := q.Get("value"); v != "" {
			amount, err := ParseAmount(v, 0)
			if err != nil {
				return Request{}, err
			}
			req.Amount = amount
		}
	case "transfer":
		req.Token = addr
		req.Address = q.Get("address")
		if req.Address == "" {
			return Request{}, invalid(input, "transfer without recipient address")
		}
		if v := q.Get("uint256"); v != "" {
			amount, err := ParseAmount(v, 0)
			if err != nil {
				return Request{}, err
			}
			req.Amount = amount
		}
	default:
		return Request{}, invalid(input, "unsupported function "+function)
	}

	if req.Address == "" {
		return Request{}, invalid(input, "missing target address")
	}
	return req, nil
}

// parseBIP21 handles <scheme>:<address>[?amount=&label=&message=].
func parseBIP21(input, scheme, target string, q url.Values) (Request, error) {
	for key := range q {
		if strings.HasPrefix(key, "req-") {
			return Request{}, invalid(input, "unsupported required parameter "+key)
		}
	}

	req := Request{
		Scheme:  scheme,
		Address: target,
		Label:   q.Get("label"),
		Message: q.Get("message"),
	}

	if v := q.Get("amount"); v != "" {
		amount, err := ParseAmount(v, utxoDecimals)
		if err != nil {
			return Request{}, err
		}
		req.Amount = amount
	}

	return req, nil
}

// ParseAmount parses a non-negative decimal amount, optionally in exponent
// notation, and scales it to base units. Amounts more precise than the base
// unit are rejected.
// For example, "1.5" with 8 decimals returns 150000000.
func ParseAmount(s string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, tgerr.WithCause(
			tgerr.WithDetails(tgerr.ErrInvalidURI, map[string]string{"amount": s}),
			err,
		)
	}

	if d.IsNegative() {
		return nil, tgerr.WithDetails(tgerr.ErrInvalidURI, map[string]string{
			"amount": s,
			"reason": "negative amount",
		})
	}

	if d.IsZero() {
		return new(big.Int), nil
	}

	// Bound the magnitude before scaling so an exponent like 1e2000000000
	// never reaches BigInt.
	digits := int64(len(d.Coefficient().String())) + int64(d.Exponent()) + int64(decimals)
	if digits > maxAmountDigits {
		return nil, tooLarge(s)
	}

	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, tgerr.WithDetails(tgerr.ErrInvalidURI, map[string]string{
			"amount": s,
			"reason": "too many decimal places",
		})
	}

	amount := scaled.BigInt()
	if amount.Cmp(maxAmount) > 0 {
		return nil, tooLarge(s)
	}
	return amount, nil
}

func tooLarge(amount string) error {
	return tgerr.WithDetails(tgerr.ErrInvalidURI, map[string]string{
		"amount": amount,
		"reason": "amount exceeds uint256",
	})
}

// FormatAmount converts base units to a decimal string with trailing zeros removed.
// For example, 150000000 with 8 decimals returns "1.5".
func FormatAmount(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -decimals).String()
}

// Decimals returns the amount precision used by a scheme's URIs.
func Decimals(scheme string) int32 {
	if scheme == SchemeEthereum {
		return 0
	}
	return utxoDecimals
}

func invalid(input, reason string) error {
	return tgerr.WithDetails(tgerr.ErrInvalidURI, map[string]string{
		"uri":    input,
		"reason": reason,
	})
}
