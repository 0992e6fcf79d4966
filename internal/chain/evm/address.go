// Package evm validates receive addresses on EVM chains.
package evm

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mrz1836/tollgate/internal/chain"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// addressLength is the length of a 0x-prefixed hex address.
const addressLength = 2 + 2*common.AddressLength

// Compile-time interface check
var _ chain.AddressValidator = Validator{}

// Validator validates EVM addresses. The format is shared by every EVM chain,
// so one value serves all of them.
type Validator struct{}

// ValidateAddress implements chain.AddressValidator.
func (Validator) ValidateAddress(address string) error {
	return ValidateChecksumAddress(address)
}

// IsValidAddress checks if the address is a 0x-prefixed, 40 hex character string.
// It does not check the EIP-55 checksum.
func IsValidAddress(address string) bool {
	if len(address) != addressLength || !strings.HasPrefix(address, "0x") {
		return false
	}
	return common.IsHexAddress(address)
}

// ToChecksumAddress converts an address to EIP-55 checksum format.
// If the input is invalid, it returns the original input unchanged.
func ToChecksumAddress(address string) string {
	if !IsValidAddress(address) {
		return address
	}
	return common.HexToAddress(address).Hex()
}

// ValidateChecksumAddress validates the address format and, for mixed-case
// input, its EIP-55 checksum. All-lowercase and all-uppercase addresses carry
// no checksum and are accepted.
func ValidateChecksumAddress(address string) error {
	if !IsValidAddress(address) {
		return tgerr.WithDetails(tgerr.ErrInvalidAddress, map[string]string{
			"address": address,
		})
	}

	hexPart := address[2:]
	if hexPart == strings.ToLower(hexPart) || hexPart == strings.ToUpper(hexPart) {
		return nil
	}

	expected := ToChecksumAddress(address)
	if address != expected {
		return tgerr.WithDetails(tgerr.ErrInvalidChecksum, map[string]string{
			"expected": expected,
			"actual":   address,
		})
	}

	return nil
}

// NormalizeAddress validates and converts an address to EIP-55 checksum format.
func NormalizeAddress(address string) (string, error) {
	if err := ValidateChecksumAddress(address); err != nil {
		return "", err
	}
	return ToChecksumAddress(address), nil
}
