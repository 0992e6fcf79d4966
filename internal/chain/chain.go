// Package chain provides chain identifiers, the table of known chains,
// and the chain adapter registry used to interpret receive addresses.
package chain

import (
	"regexp"
	"strings"

	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// ID is a CAIP-2 chain identifier ("namespace:reference").
type ID string

// CAIP-2 namespaces understood by tollgate.
const (
	NamespaceEIP155 = "eip155"
	NamespaceBIP122 = "bip122"
	NamespaceCosmos = "cosmos"
)

// Known chain identifiers.
const (
	Ethereum      ID = "eip155:1"
	Optimism      ID = "eip155:10"
	BNBSmartChain ID = "eip155:56"
	Gnosis        ID = "eip155:100"
	Polygon       ID = "eip155:137"
	Arbitrum      ID = "eip155:42161"
	Avalanche     ID = "eip155:43114"
	Bitcoin       ID = "bip122:000000000019d6689c085ae165831e93"
	Litecoin      ID = "bip122:12a765e31ffd4059bada1e25190f6e98"
	Dogecoin      ID = "bip122:00000000001a91e3dace36e2be3bf030"
	CosmosHub     ID = "cosmos:cosmoshub-4"
	THORChain     ID = "cosmos:thorchain-mainnet-v1"
	Osmosis       ID = "cosmos:osmosis-1"
)

// Family groups chains that share an address format.
type Family string

// Chain families.
const (
	FamilyUnknown Family = ""
	FamilyEVM     Family = "evm"
	FamilyUTXO    Family = "utxo"
	FamilyCosmos  Family = "cosmos"
)

var (
	namespacePattern = regexp.MustCompile(`^[-a-z0-9]{3,8}$`)
	referencePattern = regexp.MustCompile(`^[-_a-zA-Z0-9]{1,32}$`)
)

// ParseChainID parses and validates a CAIP-2 chain identifier.
func ParseChainID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	namespace, reference, ok := strings.Cut(s, ":")
	if !ok || !namespacePattern.MatchString(namespace) || !referencePattern.MatchString(reference) {
		return "", tgerr.WithDetails(tgerr.ErrInvalidChainID, map[string]string{"chain": s})
	}
	return ID(s), nil
}

// MustParseChainID parses a chain identifier, panicking on error.
// Only use with known-good identifiers.
func MustParseChainID(s string) ID {
	id, err := ParseChainID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Namespace returns the CAIP-2 namespace of the chain.
func (id ID) Namespace() string {
	namespace, _, _ := strings.Cut(string(id), ":")
	return namespace
}

// Reference returns the CAIP-2 reference of the chain.
func (id ID) Reference() string {
	_, reference, _ := strings.Cut(string(id), ":")
	return reference
}

// String returns the chain identifier string.
func (id ID) String() string {
	return string(id)
}

// IsKnown returns true if the chain is in the known chain table.
func (id ID) IsKnown() bool {
	_, ok := Lookup(id)
	return ok
}

// Family returns the address family of a known chain.
func (id ID) Family() Family {
	info, ok := Lookup(id)
	if !ok {
		return FamilyUnknown
	}
	return info.Family
}

// Validate checks the chain identifier syntax.
func (id ID) Validate() error {
	_, err := ParseChainID(string(id))
	return err
}
