// Package gate decides whether manual address entry is required for a trade
// and whether a candidate receive address is acceptable on a chain.
//
// ValidateAddress never returns an error and never panics: every failure of
// the chain registry or of the address interpreter is reported as
// Invalid(MalformedAddress).
package gate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/features"
	"github.com/mrz1836/tollgate/internal/metrics"
)

// DefaultTimeout bounds one validation, handle lookups included.
const DefaultTimeout = 15 * time.Second

// Options tune one validation.
type Options struct {
	// AllowHandle permits human-readable handle resolution.
	AllowHandle bool `json:"allow_handle"`
}

// RequiresManualEntry reports whether the user must type a receive address:
// true iff the connected wallet cannot receive on the destination chain.
func RequiresManualEntry(walletSupportsChain bool) bool {
	return !walletSupportsChain
}

// HandleOptions enables handle resolution only on handleChain and only while
// the Yat feature switch is on.
func HandleOptions(switches features.Switches, id, handleChain chain.ID) Options {
	if switches == nil || id == "" || id != handleChain {
		return Options{}
	}
	return Options{AllowHandle: switches.Enabled(features.Yat)}
}

// AdapterSource looks up the adapter of a chain.
type AdapterSource interface {
	Get(id chain.ID) (chain.Adapter, error)
}

// Validator validates one input against a destination.
type Validator interface {
	ValidateAddress(ctx context.Context, input string, cc chain.Context, opts Options) Outcome
}

// Gate is the address acceptance gate.
type Gate struct {
	adapters AdapterSource
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	timeout  time.Duration
}

// Compile-time interface check
var _ Validator = (*Gate)(nil)

// Option configures a Gate.
type Option func(*Gate)

// WithMetrics records validations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// WithTimeout bounds each validation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(g *Gate) { g.timeout = d }
}

// New creates a gate over a chain adapter registry.
func New(adapters AdapterSource, opts ...Option) *Gate {
	g := &Gate{
		adapters: adapters,
		logger:   zerolog.Nop(),
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ValidateAddress validates input as a receive address for cc.
//
// The input is trimmed first; an empty result is Invalid(Empty). The chain's
// interpreter then tries native recognition and, when opts allow it, handle
// resolution. Payment-request URIs are never parsed here. A recognized or
// resolved address is Valid; otherwise the outcome is
// Invalid(UnsupportedYatHandle) when a handle lookup was attempted and
// Invalid(MalformedAddress) when it was not.
func (g *Gate) ValidateAddress(ctx context.Context, input string, cc chain.Context, opts Options) (out Outcome) {
	start := time.Now()
	label := chainLabel(cc.ChainID)

	defer func() {
		if r := recover(); r != nil {
			g.metrics.RecordRecoveredPanic()
			g.logger.Error().
				Str("chain", cc.ChainID.String()).
				Str("panic", fmt.Sprint(r)).
				Msg("address interpreter panicked")
			out = Invalid(ReasonMalformedAddress)
		}
		g.metrics.RecordValidation(label, outcomeLabel(out), out.IsValid(), time.Since(start))
		g.logger.Debug().
			Str("chain", cc.ChainID.String()).
			Str("status", string(out.Status)).
			Str("reason", string(out.Reason)).
			Bool("allow_handle", opts.AllowHandle).
			Dur("took", time.Since(start)).
			Msg("address validated")
	}()

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Invalid(ReasonEmpty)
	}

	if err := cc.Validate(); err != nil {
		g.logger.Debug().Err(err).Msg("invalid chain context")
		return Invalid(ReasonMalformedAddress)
	}
	if g.adapters == nil {
		return Invalid(ReasonMalformedAddress)
	}

	adapter, err := g.adapters.Get(cc.ChainID)
	if err != nil || adapter.Interpreter == nil {
		g.logger.Debug().Err(err).Str("chain", cc.ChainID.String()).Msg("no address interpreter for chain")
		return Invalid(ReasonMalformedAddress)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	res, err := adapter.Interpreter.Interpret(ctx, chain.InterpretRequest{
		Input:             trimmed,
		AssetID:           cc.AssetID,
		AllowHandle:       opts.AllowHandle,
		DisableURLParsing: true,
	})
	if err != nil {
		g.logger.Debug().Err(err).Str("chain", cc.ChainID.String()).Msg("address interpreter failed")
		return Invalid(ReasonMalformedAddress)
	}

	switch {
	case res.Address != "":
		return Valid(res.Address)
	case res.HandleAttempted:
		return Invalid(ReasonUnsupportedYatHandle)
	default:
		return Invalid(ReasonMalformedAddress)
	}
}

// Async runs v in a goroutine. The returned channel yields exactly one
// outcome and is then closed.
func Async(ctx context.Context, v Validator, input string, cc chain.Context, opts Options) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		ch <- validateSafely(ctx, v, input, cc, opts)
	}()
	return ch
}

// validateSafely shields callers from Validator implementations that panic.
func validateSafely(ctx context.Context, v Validator, input string, cc chain.Context, opts Options) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Invalid(ReasonMalformedAddress)
		}
	}()
	if v == nil {
		return Invalid(ReasonMalformedAddress)
	}
	return v.ValidateAddress(ctx, input, cc, opts)
}

func chainLabel(id chain.ID) string {
	if info, ok := chain.Lookup(id); ok {
		return info.Alias
	}
	return "unknown"
}

func outcomeLabel(o Outcome) string {
	if o.Status == StatusInvalid {
		return string(o.Reason)
	}
	return string(o.Status)
}
