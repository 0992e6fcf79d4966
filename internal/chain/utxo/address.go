// Package utxo validates receive addresses on Bitcoin-derived chains.
package utxo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/btcsuite/btcutil/bech32"

	"github.com/mrz1836/tollgate/internal/chain"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

const (
	// payloadLen is the length of a P2PKH/P2SH hash160 payload.
	payloadLen = 20

	// scriptHashLen is the length of a P2WSH witness program.
	scriptHashLen = 32
)

var (
	// ErrInvalidWitness indicates a segwit address with an unsupported witness program.
	ErrInvalidWitness = errors.New("invalid witness program")

	// ErrInvalidAddressLength indicates the decoded payload has the wrong length.
	ErrInvalidAddressLength = errors.New("invalid address length")
)

// Network holds the address parameters of one UTXO chain.
type Network struct {
	Name         string
	ChainID      chain.ID
	PubKeyHashID []byte // Base58Check version bytes for P2PKH
	ScriptHashID []byte // Base58Check version bytes for P2SH
	SegwitHRP    string // bech32 human-readable part, empty if segwit is not used
}

// Mainnet parameters.
//
//nolint:gochecknoglobals // Static network parameters
var (
	BitcoinMainnet = Network{
		Name:         "bitcoin",
		ChainID:      chain.Bitcoin,
		PubKeyHashID: []byte{0x00},
		ScriptHashID: []byte{0x05},
		SegwitHRP:    "bc",
	}

	LitecoinMainnet = Network{
		Name:         "litecoin",
		ChainID:      chain.Litecoin,
		PubKeyHashID: []byte{0x30},
		ScriptHashID: []byte{0x32, 0x05}, // M-addresses and legacy 3-addresses
		SegwitHRP:    "ltc",
	}

	DogecoinMainnet = Network{
		Name:         "dogecoin",
		ChainID:      chain.Dogecoin,
		PubKeyHashID: []byte{0x1e},
		ScriptHashID: []byte{0x16},
	}
)

// NetworkFor returns the network parameters of a UTXO chain.
func NetworkFor(id chain.ID) (Network, bool) {
	for _, n := range []Network{BitcoinMainnet, LitecoinMainnet, DogecoinMainnet} {
		if n.ChainID == id {
			return n, true
		}
	}
	return Network{}, false
}

// Compile-time interface check
var _ chain.AddressValidator = Validator{}

// Validator validates addresses for one network.
type Validator struct {
	Network Network
}

// NewValidator creates a validator for the given network.
func NewValidator(n Network) Validator {
	return Validator{Network: n}
}

// ValidateAddress implements chain.AddressValidator. It accepts Base58Check
// P2PKH/P2SH addresses and, where the network uses segwit, version 0 bech32
// witness addresses.
func (v Validator) ValidateAddress(address string) error {
	if address == "" {
		return tgerr.ErrInvalidAddress
	}

	if v.Network.SegwitHRP != "" && hasHRP(address, v.Network.SegwitHRP) {
		return v.validateSegwit(address)
	}
	return v.validateBase58(address)
}

// validateBase58 checks checksum, payload length and version byte.
func (v Validator) validateBase58(address string) error {
	payload, version, err := base58.CheckDecode(address)
	if err != nil {
		return tgerr.WithCause(
			tgerr.WithDetails(tgerr.ErrInvalidAddress, map[string]string{"address": address}),
			err,
		)
	}

	if len(payload) != payloadLen {
		return tgerr.WithCause(
			tgerr.WithDetails(tgerr.ErrInvalidAddress, map[string]string{"address": address}),
			ErrInvalidAddressLength,
		)
	}

	if !containsByte(v.Network.PubKeyHashID, version) && !containsByte(v.Network.ScriptHashID, version) {
		return tgerr.WithDetails(tgerr.ErrUnsupportedVersion, map[string]string{
			"network": v.Network.Name,
			"version": fmt.Sprintf("0x%02x", version),
		})
	}

	return nil
}

// validateSegwit checks the bech32 checksum, HRP and witness program.
// Only witness version 0 is accepted.
func (v Validator) validateSegwit(address string) error {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return tgerr.WithCause(
			tgerr.WithDetails(tgerr.ErrInvalidChecksum, map[string]string{"address": address}),
			err,
		)
	}

	if hrp != v.Network.SegwitHRP || len(data) < 1 {
		return tgerr.WithDetails(tgerr.ErrInvalidAddress, map[string]string{"address": address})
	}

	if data[0] != 0 {
		return tgerr.WithDetails(tgerr.ErrUnsupportedVersion, map[string]string{
			"network":         v.Network.Name,
			"witness_version": fmt.Sprintf("%d", data[0]),
		})
	}

	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return tgerr.WithCause(
			tgerr.WithDetails(tgerr.ErrInvalidAddress, map[string]string{"address": address}),
			err,
		)
	}

	if len(program) != payloadLen && len(program) != scriptHashLen {
		return tgerr.WithCause(
			tgerr.WithDetails(tgerr.ErrInvalidAddress, map[string]string{"address": address}),
			ErrInvalidWitness,
		)
	}

	return nil
}

// hasHRP reports whether address starts with "<hrp>1", ignoring case.
func hasHRP(address, hrp string) bool {
	return strings.HasPrefix(strings.ToLower(address), hrp+"1")
}

func containsByte(set []byte, b byte) bool {
	for _, c := range set {
		if c == b {
			return true
		}
	}
	return false
}
