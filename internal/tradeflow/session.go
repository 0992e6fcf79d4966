package tradeflow

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/features"
	"github.com/mrz1836/tollgate/internal/gate"
	"github.com/mrz1836/tollgate/internal/metrics"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// State is the manual address state of a session.
type State string

// Session states.
const (
	StateIdle     State = "idle"
	StatePending  State = "pending"
	StateResolved State = "resolved"
)

// Stale result reasons reported to metrics.
const (
	discardSuperseded = "superseded"
	discardReset      = "reset"
)

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	ID                   string        `json:"id"`
	Destination          chain.Context `json:"destination"`
	State                State         `json:"state"`
	Input                string        `json:"input,omitempty"`
	Outcome              gate.Outcome  `json:"outcome"`
	ManualReceiveAddress string        `json:"manual_receive_address,omitempty"`
	IsValidating         bool          `json:"is_validating"`
	RequiresManualEntry  bool          `json:"requires_manual_entry"`
	Generation           uint64        `json:"generation"`
	Sequencing           Sequencing    `json:"sequencing"`
}

// Session owns the manual address state of one trade input flow. It is safe
// for concurrent use; validations run on their own goroutines and their
// results are applied according to the session's Sequencing.
type Session struct {
	id          string
	validator   gate.Validator
	switches    features.Switches
	handleChain chain.ID
	sequencing  Sequencing
	store       *Store
	metrics     *metrics.Metrics
	logger      zerolog.Logger

	mu              sync.Mutex
	dest            chain.Context
	walletSupported bool
	state           State
	input           string
	outcome         gate.Outcome
	generation      uint64 // last issued validation
	epoch           uint64 // bumped by every reset
	inFlight        int
}

// Option configures a Session.
type Option func(*Session)

// WithSequencing selects how overlapping validations are resolved.
func WithSequencing(seq Sequencing) Option {
	return func(s *Session) { s.sequencing = seq }
}

// WithStore shares an existing store with the session.
func WithStore(store *Store) Option {
	return func(s *Session) {
		if store != nil {
			s.store = store
		}
	}
}

// WithFeatures sets the feature switches consulted for handle resolution.
func WithFeatures(sw features.Switches) Option {
	return func(s *Session) { s.switches = sw }
}

// WithHandleChain sets the only chain on which handles may be resolved.
func WithHandleChain(id chain.ID) Option {
	return func(s *Session) { s.handleChain = id }
}

// WithMetrics records discarded results on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession creates an idle session that validates through v. Until
// SetWalletSupport is called the wallet is assumed not to support the
// destination, so manual entry is required.
func NewSession(v gate.Validator, opts ...Option) *Session {
	s := &Session{
		id:          uuid.NewString(),
		validator:   v,
		handleChain: chain.Ethereum,
		sequencing:  SequencingGeneration,
		store:       NewStore(),
		logger:      zerolog.Nop(),
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "tradeflow").Str("session", s.id).Logger()
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Store returns the trade-flow store the session writes to.
func (s *Session) Store() *Store {
	return s.store
}

// SetDestination selects the destination chain/asset pair. Changing the
// asset resets the session to Idle: the stored address is cleared, even a
// valid one, and results of validations already in flight are dropped.
func (s *Session) SetDestination(cc chain.Context) error {
	if err := cc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cc == s.dest {
		return nil
	}
	s.logger.Debug().
		Str("from", s.dest.AssetID.String()).
		Str("to", cc.AssetID.String()).
		Msg("destination changed")
	s.dest = cc
	s.resetLocked()
	return nil
}

// SetWalletSupport records whether the connected wallet supports the
// destination chain. A flip to supported discards the manual state entirely,
// so a later flip back starts from Idle.
func (s *Session) SetWalletSupport(supported bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if supported == s.walletSupported {
		return
	}
	s.walletSupported = supported
	if supported {
		s.logger.Debug().Msg("wallet supports destination, discarding manual address")
		s.resetLocked()
	}
}

// RequiresManualEntry reports whether the user must type a receive address.
func (s *Session) RequiresManualEntry() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gate.RequiresManualEntry(s.walletSupported)
}

// Input validates raw as the manual receive address. The stored address is
// cleared and the session is Pending until the result is applied. The
// returned channel yields the validation outcome once, whether or not the
// session kept it.
func (s *Session) Input(ctx context.Context, raw string) (<-chan gate.Outcome, error) {
	s.mu.Lock()
	if s.walletSupported {
		s.mu.Unlock()
		return nil, tgerr.ErrManualEntryNotRequired
	}
	if s.dest.IsZero() {
		s.mu.Unlock()
		return nil, tgerr.ErrNoDestination
	}

	s.generation++
	gen, epoch, dest := s.generation, s.epoch, s.dest
	s.inFlight++
	s.input = raw
	s.state = StatePending
	s.outcome = gate.Pending()
	s.store.SetManualReceiveAddress("")
	s.store.SetValidating(true)
	opts := gate.HandleOptions(s.switches, dest.ChainID, s.handleChain)
	s.mu.Unlock()

	out := make(chan gate.Outcome, 1)
	go func() {
		defer close(out)
		outcome := <-gate.Async(ctx, s.validator, raw, dest, opts)
		s.apply(gen, epoch, outcome)
		out <- outcome
	}()
	return out, nil
}

// apply writes the result of validation gen, issued during epoch.
func (s *Session) apply(gen, epoch uint64, outcome gate.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		s.metrics.RecordStaleDiscard(discardReset)
		s.logger.Debug().Uint64("generation", gen).Msg("dropping result issued before reset")
		return
	}
	s.inFlight--

	if s.sequencing == SequencingGeneration && gen != s.generation {
		s.metrics.RecordStaleDiscard(discardSuperseded)
		s.logger.Debug().
			Uint64("generation", gen).
			Uint64("latest", s.generation).
			Msg("dropping superseded result")
		return
	}

	s.state = StateResolved
	s.outcome = outcome
	if outcome.IsValid() {
		s.store.SetManualReceiveAddress(outcome.Address)
	} else {
		s.store.SetManualReceiveAddress("")
	}

	validating := false
	if s.sequencing == SequencingLastWriteWins {
		validating = s.inFlight > 0
	}
	s.store.SetValidating(validating)

	s.logger.Debug().
		Uint64("generation", gen).
		Str("chain", s.dest.ChainID.String()).
		Str("status", string(outcome.Status)).
		Str("reason", string(outcome.Reason)).
		Msg("validation applied")
}

// Reset returns the session to Idle, as on leaving the trade flow.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.epoch++
	s.inFlight = 0
	s.state = StateIdle
	s.input = ""
	s.outcome = gate.Outcome{}
	s.store.Reset()
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.store.Snapshot()
	return Snapshot{
		ID:                   s.id,
		Destination:          s.dest,
		State:                s.state,
		Input:                s.input,
		Outcome:              s.outcome,
		ManualReceiveAddress: store.ManualReceiveAddress,
		IsValidating:         store.IsValidating,
		RequiresManualEntry:  gate.RequiresManualEntry(s.walletSupported),
		Generation:           s.generation,
		Sequencing:           s.sequencing,
	}
}

// ReceiveAddress returns the address funds should be sent to: the wallet's
// own address when it supports the destination, the manual address
// otherwise. A stale manual address is never returned for a supported chain.
func (s *Session) ReceiveAddress(walletAddress string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dest.IsZero() {
		return "", tgerr.ErrNoDestination
	}
	if s.walletSupported {
		if walletAddress == "" {
			return "", tgerr.ErrManualAddressRequired
		}
		return walletAddress, nil
	}
	if addr := s.store.ManualReceiveAddress(); addr != "" {
		return addr, nil
	}
	return "", tgerr.ErrManualAddressRequired
}

// Ready reports whether a trade may be submitted: nil unless a validation
// is in flight or manual entry is required and no address is stored.
func (s *Session) Ready() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dest.IsZero() {
		return tgerr.ErrNoDestination
	}
	if s.walletSupported {
		return nil
	}
	if s.store.IsValidating() {
		return tgerr.ErrValidationInProgress
	}
	if s.store.ManualReceiveAddress() == "" {
		return tgerr.ErrManualAddressRequired
	}
	return nil
}
