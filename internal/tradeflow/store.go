// Package tradeflow owns the manual receive address of a trade: the store
// slice read by trade execution, and the per-destination session that feeds
// it from gate validations.
package tradeflow

import "sync"

// StoreSnapshot is a point-in-time copy of the store.
type StoreSnapshot struct {
	ManualReceiveAddress string `json:"manual_receive_address,omitempty"`
	IsValidating         bool   `json:"is_validating"`
}

// Store is the trade-flow slice holding {manualReceiveAddress, isValidating}.
// The zero value is ready to use.
type Store struct {
	mu                   sync.RWMutex
	manualReceiveAddress string
	isValidating         bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// ManualReceiveAddress returns the stored address, or "" when absent.
func (s *Store) ManualReceiveAddress() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manualReceiveAddress
}

// SetManualReceiveAddress stores addr. An empty addr clears the slot.
func (s *Store) SetManualReceiveAddress(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manualReceiveAddress = addr
}

// IsValidating reports whether a validation is in flight.
func (s *Store) IsValidating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isValidating
}

// SetValidating mirrors the validating flag of the input form.
func (s *Store) SetValidating(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isValidating = v
}

// Reset clears the slice.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manualReceiveAddress = ""
	s.isValidating = false
}

// Snapshot returns a copy of the slice.
func (s *Store) Snapshot() StoreSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreSnapshot{
		ManualReceiveAddress: s.manualReceiveAddress,
		IsValidating:         s.isValidating,
	}
}
