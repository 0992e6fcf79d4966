// Package features holds the runtime feature switches consulted by the
// address gate and the wallet capability query.
package features

import (
	"sort"
	"strings"
	"sync"

	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// Flag names a feature switch.
type Flag string

const (
	// Yat enables emoji handle resolution on the designated handle chain.
	Yat Flag = "yat"

	// Snaps enables MetaMask Snap chain support.
	Snaps Flag = "snaps"
)

// Known returns every flag the store understands, sorted by name.
func Known() []Flag {
	return []Flag{Snaps, Yat}
}

// ParseFlag converts a flag name to a Flag. Matching is case-insensitive.
func ParseFlag(name string) (Flag, error) {
	f := Flag(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Known() {
		if f == known {
			return f, nil
		}
	}

	names := make([]string, 0, len(Known()))
	for _, known := range Known() {
		names = append(names, string(known))
	}
	return "", tgerr.WithSuggestion(
		tgerr.WithDetails(tgerr.ErrInvalidInput, map[string]string{"feature": name}),
		"known features: "+strings.Join(names, ", "),
	)
}

// Switches is the read side of the feature store.
type Switches interface {
	Enabled(f Flag) bool
}

// Store is a concurrency-safe set of feature switches. A nil *Store reports
// every flag as disabled.
type Store struct {
	mu    sync.RWMutex
	flags map[Flag]bool
}

// Compile-time interface check
var _ Switches = (*Store)(nil)

// NewStore creates a store seeded with initial. Unknown flags are kept; they
// simply never change behavior.
func NewStore(initial map[Flag]bool) *Store {
	flags := make(map[Flag]bool, len(initial))
	for f, on := range initial {
		flags[f] = on
	}
	return &Store{flags: flags}
}

// Enabled reports whether f is on.
func (s *Store) Enabled(f Flag) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[f]
}

// Set turns f on or off.
func (s *Store) Set(f Flag, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[f] = on
}

// Snapshot returns a copy of the current switches.
func (s *Store) Snapshot() map[Flag]bool {
	out := make(map[Flag]bool)
	if s == nil {
		return out
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for f, on := range s.flags {
		out[f] = on
	}
	return out
}

// EnabledFlags lists the flags that are on, sorted by name.
func (s *Store) EnabledFlags() []Flag {
	var out []Flag
	for f, on := range s.Snapshot() {
		if on {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Static is a fixed Switches value, handy for wiring a single flag.
type Static map[Flag]bool

// Enabled implements Switches.
func (s Static) Enabled(f Flag) bool {
	return s[f]
}
