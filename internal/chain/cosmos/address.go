// Package cosmos validates receive addresses on Cosmos SDK chains.
package cosmos

import (
	"github.com/btcsuite/btcutil/bech32"

	"github.com/mrz1836/tollgate/internal/chain"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// Account addresses are 20-byte hashes; module and contract accounts are 32.
const (
	accountLen  = 20
	contractLen = 32
)

// prefixes maps known Cosmos chains to their bech32 account prefix.
//
//nolint:gochecknoglobals // Static chain parameters
var prefixes = map[chain.ID]string{
	chain.CosmosHub: "cosmos",
	chain.THORChain: "thor",
	chain.Osmosis:   "osmo",
}

// PrefixFor returns the bech32 account prefix of a Cosmos chain.
func PrefixFor(id chain.ID) (string, bool) {
	p, ok := prefixes[id]
	return p, ok
}

// Compile-time interface check
var _ chain.AddressValidator = Validator{}

// Validator validates bech32 account addresses with a fixed prefix.
type Validator struct {
	Prefix string
}

// NewValidator creates a validator for the given chain.
func NewValidator(id chain.ID) (Validator, error) {
	p, ok := PrefixFor(id)
	if !ok {
		return Validator{}, tgerr.WithDetails(tgerr.ErrUnsupportedChain, map[string]string{
			"chain": id.String(),
		})
	}
	return Validator{Prefix: p}, nil
}

// ValidateAddress implements chain.AddressValidator.
func (v Validator) ValidateAddress(address string) error {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return tgerr.WithCause(
			tgerr.WithDetails(tgerr.ErrInvalidAddress, map[string]string{"address": address}),
			err,
		)
	}

	if hrp != v.Prefix {
		return tgerr.WithDetails(tgerr.ErrInvalidAddress, map[string]string{
			"address":  address,
			"expected": v.Prefix,
			"prefix":   hrp,
		})
	}

	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return tgerr.WithCause(
			tgerr.WithDetails(tgerr.ErrInvalidAddress, map[string]string{"address": address}),
			err,
		)
	}

	if len(payload) != accountLen && len(payload) != contractLen {
		return tgerr.WithDetails(tgerr.ErrInvalidAddress, map[string]string{"address": address})
	}

	return nil
}
