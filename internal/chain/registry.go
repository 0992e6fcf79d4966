package chain

import (
	"context"
	"fmt"
	"sort"
	"sync"

	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// InterpretRequest carries one raw input to a chain's address interpreter.
type InterpretRequest struct {
	Input             string  // Trimmed user input
	AssetID           AssetID // Destination asset
	AllowHandle       bool    // Permit human-readable handle resolution
	DisableURLParsing bool    // Reject payment-request URIs instead of parsing them
}

// Interpretation is the result of interpreting an input.
// An empty Address means the input was not recognized.
type Interpretation struct {
	Address         string `json:"address,omitempty"`
	HandleAttempted bool   `json:"handle_attempted"`
	FromURI         bool   `json:"from_uri,omitempty"`
	Amount          string `json:"amount,omitempty"` // Requested amount in base units, URI inputs only
}

// AddressInterpreter turns raw input into a native address for one chain.
type AddressInterpreter interface {
	// Interpret recognizes a native address, or resolves a handle when allowed.
	// A returned error means the interpreter itself failed, not that the
	// input was rejected.
	Interpret(ctx context.Context, req InterpretRequest) (Interpretation, error)
}

// AddressValidator checks that a string is a native address of one chain.
type AddressValidator interface {
	// ValidateAddress returns nil if address is a valid native address.
	ValidateAddress(address string) error
}

// Adapter binds chain metadata to the chain's address interpreter.
type Adapter struct {
	ChainID     ID
	DisplayName string
	Interpreter AddressInterpreter
}

// Registry maps chain identifiers to adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[ID]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[ID]Adapter),
	}
}

// Register adds or replaces the adapter for adapter.ChainID.
func (r *Registry) Register(adapter Adapter) error {
	if err := adapter.ChainID.Validate(); err != nil {
		return err
	}
	if adapter.Interpreter == nil {
		return tgerr.WithDetails(tgerr.ErrConfigInvalid, map[string]string{
			"chain":  adapter.ChainID.String(),
			"reason": "adapter has no address interpreter",
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.ChainID] = adapter
	return nil
}

// Get returns the adapter registered for the chain.
func (r *Registry) Get(id ID) (Adapter, error) {
	r.mu.RLock()
	adapter, ok := r.adapters[id]
	r.mu.RUnlock()

	if !ok {
		return Adapter{}, fmt.Errorf("%w: %s", tgerr.ErrUnsupportedChain, id)
	}
	return adapter, nil
}

// DisplayName returns the chain's display name, or the identifier when the
// chain is not registered.
func (r *Registry) DisplayName(id ID) string {
	adapter, err := r.Get(id)
	if err != nil || adapter.DisplayName == "" {
		return id.String()
	}
	return adapter.DisplayName
}

// IsSupported returns true if the chain has a registered adapter.
func (r *Registry) IsSupported(id ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.adapters[id]
	return ok
}

// SupportedChains returns all registered chain IDs, sorted.
func (r *Registry) SupportedChains() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chains := make([]ID, 0, len(r.adapters))
	for id := range r.adapters {
		chains = append(chains, id)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i] < chains[j] })
	return chains
}
