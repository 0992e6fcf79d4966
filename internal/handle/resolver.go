// Package handle resolves human-readable handles (Yats) to native addresses.
package handle

import (
	"context"
)

// Resolver looks up the address behind a human-readable handle.
//
// A handle that does not exist resolves to ("", nil). A non-nil error means
// the lookup itself failed (network, upstream or timeout), which callers treat
// differently from a missing handle.
type Resolver interface {
	Resolve(ctx context.Context, handle string) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, handle string) (string, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, handle string) (string, error) {
	return f(ctx, handle)
}
