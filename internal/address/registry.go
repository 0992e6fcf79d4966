package address

import (
	"github.com/rs/zerolog"

	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/chain/cosmos"
	"github.com/mrz1836/tollgate/internal/chain/evm"
	"github.com/mrz1836/tollgate/internal/chain/utxo"
	"github.com/mrz1836/tollgate/internal/handle"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// registryOptions configures NewRegistry.
type registryOptions struct {
	resolvers map[chain.ID]handle.Resolver
	logger    zerolog.Logger
}

// RegistryOption configures NewRegistry.
type RegistryOption func(*registryOptions)

// WithHandleResolver attaches a handle resolver to one chain's interpreter.
func WithHandleResolver(id chain.ID, r handle.Resolver) RegistryOption {
	return func(o *registryOptions) {
		if r != nil {
			o.resolvers[id] = r
		}
	}
}

// WithLogger sets the logger handed to every interpreter.
func WithLogger(l zerolog.Logger) RegistryOption {
	return func(o *registryOptions) { o.logger = l }
}

// NewRegistry builds a chain registry with an adapter for every known chain.
func NewRegistry(opts ...RegistryOption) (*chain.Registry, error) {
	o := registryOptions{
		resolvers: make(map[chain.ID]handle.Resolver),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	registry := chain.NewRegistry()
	for _, info := range chain.Known() {
		validator, err := ValidatorFor(info.ID)
		if err != nil {
			return nil, err
		}

		interpOpts := []InterpreterOption{
			WithInterpreterLogger(o.logger.With().Str("component", "address").Str("chain", info.Alias).Logger()),
		}
		if r, ok := o.resolvers[info.ID]; ok {
			interpOpts = append(interpOpts, WithResolver(r))
		}

		if err := registry.Register(chain.Adapter{
			ChainID:     info.ID,
			DisplayName: info.DisplayName,
			Interpreter: NewInterpreter(info.ID, validator, interpOpts...),
		}); err != nil {
			return nil, err
		}
	}

	for id := range o.resolvers {
		if !registry.IsSupported(id) {
			return nil, tgerr.WithDetails(tgerr.ErrUnsupportedChain, map[string]string{
				"chain":  id.String(),
				"reason": "handle resolver configured for an unknown chain",
			})
		}
	}

	return registry, nil
}

// ValidatorFor returns the native address validator of a known chain.
func ValidatorFor(id chain.ID) (chain.AddressValidator, error) {
	switch id.Family() {
	case chain.FamilyEVM:
		return evm.Validator{}, nil
	case chain.FamilyUTXO:
		if n, ok := utxo.NetworkFor(id); ok {
			return utxo.NewValidator(n), nil
		}
	case chain.FamilyCosmos:
		return cosmos.NewValidator(id)
	case chain.FamilyUnknown:
	}
	return nil, tgerr.WithDetails(tgerr.ErrUnsupportedChain, map[string]string{"chain": id.String()})
}
