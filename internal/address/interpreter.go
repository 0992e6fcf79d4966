// Package address turns raw user input into a native receive address for a
// chain: native recognition first, then handle resolution when allowed.
// Payment-request URIs are parsed only when the caller asks for it.
package address

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrz1836/tollgate/internal/address/uri"
	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/handle"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// Compile-time interface check
var _ chain.AddressInterpreter = (*Interpreter)(nil)

// Interpreter is the address interpreter of one chain.
type Interpreter struct {
	chainID   chain.ID
	validator chain.AddressValidator
	resolver  handle.Resolver
	logger    zerolog.Logger
}

// InterpreterOption configures an Interpreter.
type InterpreterOption func(*Interpreter)

// WithResolver enables handle resolution on this chain.
func WithResolver(r handle.Resolver) InterpreterOption {
	return func(i *Interpreter) { i.resolver = r }
}

// WithInterpreterLogger sets the logger.
func WithInterpreterLogger(l zerolog.Logger) InterpreterOption {
	return func(i *Interpreter) { i.logger = l }
}

// NewInterpreter creates an interpreter for id that recognizes addresses
// accepted by validator.
func NewInterpreter(id chain.ID, validator chain.AddressValidator, opts ...InterpreterOption) *Interpreter {
	i := &Interpreter{
		chainID:   id,
		validator: validator,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ChainID returns the chain this interpreter serves.
func (i *Interpreter) ChainID() chain.ID {
	return i.chainID
}

// CanResolveHandles reports whether a resolver is attached.
func (i *Interpreter) CanResolveHandles() bool {
	return i.resolver != nil
}

// Interpret implements chain.AddressInterpreter.
//
// An input that is not recognized yields an empty Interpretation and a nil
// error. A non-nil error is returned only when a collaborator failed, such as
// a handle lookup that could not complete, or when the request names an
// asset of another chain.
func (i *Interpreter) Interpret(ctx context.Context, req chain.InterpretRequest) (chain.Interpretation, error) {
	if req.AssetID != "" && req.AssetID.ChainID() != i.chainID {
		return chain.Interpretation{}, tgerr.WithDetails(tgerr.ErrChainMismatch, map[string]string{
			"chain": i.chainID.String(),
			"asset": req.AssetID.String(),
		})
	}

	input := req.Input
	if input == "" {
		return chain.Interpretation{}, nil
	}

	if uri.IsURI(input) {
		if req.DisableURLParsing {
			return chain.Interpretation{}, nil
		}
		return i.interpretURI(input), nil
	}

	if i.validator.ValidateAddress(input) == nil {
		return chain.Interpretation{Address: input}, nil
	}

	if !req.AllowHandle || i.resolver == nil {
		return chain.Interpretation{}, nil
	}

	out := chain.Interpretation{HandleAttempted: true}
	resolved, err := i.resolver.Resolve(ctx, input)
	if err != nil {
		return out, fmt.Errorf("resolving handle on %s: %w", i.chainID, err)
	}
	if resolved == "" {
		return out, nil
	}

	if verr := i.validator.ValidateAddress(resolved); verr != nil {
		i.logger.Debug().
			Str("chain", i.chainID.String()).
			Err(verr).
			Msg("handle resolved to an address of another format")
		return out, nil
	}

	out.Address = resolved
	return out, nil
}

// interpretURI accepts a payment request whose scheme and chain match this
// chain and whose target is a native address.
func (i *Interpreter) interpretURI(input string) chain.Interpretation {
	scheme, ok := uri.SchemeFor(i.chainID)
	if !ok {
		return chain.Interpretation{}
	}

	req, err := uri.Parse(input)
	if err != nil || req.Scheme != scheme {
		return chain.Interpretation{}
	}
	if req.ChainRef != "" && req.ChainRef != i.chainID.Reference() {
		return chain.Interpretation{}
	}
	if i.validator.ValidateAddress(req.Address) != nil {
		return chain.Interpretation{}
	}

	out := chain.Interpretation{Address: req.Address, FromURI: true}
	if req.Amount != nil {
		out.Amount = req.Amount.String()
	}
	return out
}
