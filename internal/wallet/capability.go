package wallet

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/features"
)

// CapabilityQuery answers whether a connected wallet can receive on a chain.
// Implementations must not panic and must return false for unknown chains.
type CapabilityQuery interface {
	SupportsChain(ctx context.Context, w *Wallet, id chain.ID) bool
}

// SnapDetector reports whether the MetaMask Snap is installed for a wallet.
type SnapDetector interface {
	SnapInstalled(ctx context.Context, w *Wallet) (bool, error)
}

// SnapDetectorFunc adapts a function to SnapDetector.
type SnapDetectorFunc func(ctx context.Context, w *Wallet) (bool, error)

// SnapInstalled implements SnapDetector.
func (f SnapDetectorFunc) SnapInstalled(ctx context.Context, w *Wallet) (bool, error) {
	return f(ctx, w)
}

// ExtensionSnapDetector reads the Snap from the wallet's declared extensions.
type ExtensionSnapDetector struct{}

// SnapInstalled implements SnapDetector.
func (ExtensionSnapDetector) SnapInstalled(_ context.Context, w *Wallet) (bool, error) {
	return w.HasExtension(ExtensionSnap), nil
}

// Capabilities is the default CapabilityQuery.
type Capabilities struct {
	switches      features.Switches
	walletConnect WalletConnectConfig
	snaps         SnapDetector
	logger        zerolog.Logger
}

// Compile-time interface check
var _ CapabilityQuery = (*Capabilities)(nil)

// Option configures Capabilities.
type Option func(*Capabilities)

// WithWalletConnect sets the chains WalletConnect v2 wallets negotiate.
func WithWalletConnect(cfg WalletConnectConfig) Option {
	return func(c *Capabilities) { c.walletConnect = cfg }
}

// WithSnapDetector replaces the extension-based Snap detector.
func WithSnapDetector(d SnapDetector) Option {
	return func(c *Capabilities) {
		if d != nil {
			c.snaps = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Capabilities) { c.logger = l }
}

// NewCapabilities creates a capability query. switches may be nil, in which
// case every feature is off.
func NewCapabilities(switches features.Switches, opts ...Option) *Capabilities {
	c := &Capabilities{
		switches:      switches,
		walletConnect: DefaultWalletConnectConfig(),
		snaps:         ExtensionSnapDetector{},
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SupportsChain implements CapabilityQuery.
func (c *Capabilities) SupportsChain(ctx context.Context, w *Wallet, id chain.ID) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Str("chain", id.String()).Msg("capability query panicked")
			ok = false
		}
	}()

	if w == nil || !id.IsKnown() {
		return false
	}
	return slices.Contains(c.SupportedChains(ctx, w), id)
}

// SupportedChains lists the known chains w can receive on, in registry order.
func (c *Capabilities) SupportedChains(ctx context.Context, w *Wallet) []chain.ID {
	if w == nil {
		return nil
	}

	var base []chain.ID
	switch w.Kind {
	case KindWalletConnectV2:
		base = c.walletConnect.Chains()
	case KindMetaMask:
		base = KindMetaMask.DefaultChains()
		if c.snapsEnabled() && c.snapInstalled(ctx, w) {
			base = append(base, SnapChains()...)
		}
	case KindNative, KindKeepKey, KindLedger, KindCoinbase, KindKeplr:
		base = w.Kind.DefaultChains()
	}

	out := make([]chain.ID, 0, len(base))
	for _, id := range chain.KnownIDs() {
		if !slices.Contains(base, id) {
			continue
		}
		if len(w.Chains) > 0 && !slices.Contains(w.Chains, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (c *Capabilities) snapsEnabled() bool {
	return c.switches != nil && c.switches.Enabled(features.Snaps)
}

func (c *Capabilities) snapInstalled(ctx context.Context, w *Wallet) bool {
	installed, err := c.snaps.SnapInstalled(ctx, w)
	if err != nil {
		c.logger.Debug().Err(err).Str("wallet", w.Name).Msg("snap detection failed")
		return false
	}
	return installed
}
