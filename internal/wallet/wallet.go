// Package wallet describes connected wallets and answers the capability
// question the trade flow asks of them: can this wallet receive on a chain.
package wallet

import (
	"regexp"
	"slices"
	"strings"

	"github.com/mrz1836/tollgate/internal/chain"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// Extension names an installed wallet extension.
type Extension string

// ExtensionSnap is the MetaMask Snap that adds non-EVM chains.
const ExtensionSnap Extension = "snap"

var (
	// ErrInvalidWalletName indicates the wallet name is invalid.
	ErrInvalidWalletName = tgerr.WithSuggestion(tgerr.ErrInvalidInput, "wallet name must be 1-64 alphanumeric characters, underscores, or hyphens")

	// walletNameRegex validates wallet names: alphanumeric + underscore + hyphen, 1-64 chars.
	walletNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`) //nolint:gochecknoglobals // compiled once
)

// Wallet is a connected wallet handle.
type Wallet struct {
	// Name identifies the wallet profile.
	Name string `yaml:"name" json:"name"`

	// Kind selects the default chain support of the device or extension.
	Kind Kind `yaml:"kind" json:"kind"`

	// Chains, when set, narrows the kind's support to the chains the device
	// declares. It never widens it.
	Chains []chain.ID `yaml:"chains,omitempty" json:"chains,omitempty"`

	// Extensions lists installed extensions such as the MetaMask Snap.
	Extensions []Extension `yaml:"extensions,omitempty" json:"extensions,omitempty"`
}

// New creates a wallet of kind k.
func New(name string, k Kind, extensions ...Extension) *Wallet {
	return &Wallet{Name: name, Kind: k, Extensions: extensions}
}

// HasExtension reports whether ext is installed.
func (w *Wallet) HasExtension(ext Extension) bool {
	if w == nil {
		return false
	}
	return slices.Contains(w.Extensions, ext)
}

// Validate checks the name, the kind and every declared chain.
func (w *Wallet) Validate() error {
	if err := ValidateWalletName(w.Name); err != nil {
		return err
	}
	if _, err := ParseKind(string(w.Kind)); err != nil {
		return err
	}
	for _, id := range w.Chains {
		if !id.IsKnown() {
			return tgerr.WithDetails(tgerr.ErrUnsupportedChain, map[string]string{
				"wallet": w.Name,
				"chain":  id.String(),
			})
		}
	}
	for _, ext := range w.Extensions {
		if ext != ExtensionSnap {
			return tgerr.WithDetails(tgerr.ErrInvalidInput, map[string]string{
				"wallet":    w.Name,
				"extension": string(ext),
			})
		}
	}
	return nil
}

// ValidateWalletName checks if a wallet name is valid.
func ValidateWalletName(name string) error {
	if !walletNameRegex.MatchString(name) {
		return ErrInvalidWalletName
	}
	return nil
}

// SuggestWalletName strips characters a wallet name cannot hold.
func SuggestWalletName(input string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(input) {
		if r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}
