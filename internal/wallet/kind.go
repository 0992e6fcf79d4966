package wallet

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mrz1836/tollgate/internal/chain"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// Kind is the type of a connected wallet.
type Kind string

// Supported wallet kinds.
const (
	KindNative          Kind = "native"
	KindKeepKey         Kind = "keepkey"
	KindLedger          Kind = "ledger"
	KindMetaMask        Kind = "metamask"
	KindWalletConnectV2 Kind = "walletconnectv2"
	KindCoinbase        Kind = "coinbase"
	KindKeplr           Kind = "keplr"
)

// maxKindSuggestionDistance bounds "did you mean" suggestions.
const maxKindSuggestionDistance = 3

// Kinds returns every supported kind.
func Kinds() []Kind {
	return []Kind{KindNative, KindKeepKey, KindLedger, KindMetaMask, KindWalletConnectV2, KindCoinbase, KindKeplr}
}

// ParseKind converts a kind name to a Kind, suggesting the closest match
// when the name is unknown.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}

	err := tgerr.WithDetails(tgerr.ErrUnknownWallet, map[string]string{"kind": s})
	best, bestDist := "", maxKindSuggestionDistance+1
	for _, known := range Kinds() {
		if d := levenshtein.ComputeDistance(string(k), string(known)); d < bestDist {
			best, bestDist = string(known), d
		}
	}
	if best != "" {
		return "", tgerr.WithSuggestion(err, "did you mean '"+best+"'?")
	}

	names := make([]string, 0, len(Kinds()))
	for _, known := range Kinds() {
		names = append(names, string(known))
	}
	return "", tgerr.WithSuggestion(err, "supported wallets: "+strings.Join(names, ", "))
}

// SnapChains are the chains a MetaMask Snap adds.
func SnapChains() []chain.ID {
	return []chain.ID{chain.Bitcoin, chain.Litecoin, chain.Dogecoin, chain.CosmosHub, chain.THORChain}
}

// DefaultChains returns the chains a kind supports out of the box. The
// WalletConnect kind has no fixed set; its chains come from WalletConnectConfig.
func (k Kind) DefaultChains() []chain.ID {
	switch k {
	case KindNative, KindKeepKey:
		return chain.KnownIDs()
	case KindLedger:
		ids := chain.InFamily(chain.FamilyEVM)
		ids = append(ids, chain.InFamily(chain.FamilyUTXO)...)
		return append(ids, chain.CosmosHub, chain.THORChain)
	case KindMetaMask, KindCoinbase:
		return chain.InFamily(chain.FamilyEVM)
	case KindKeplr:
		return []chain.ID{chain.CosmosHub, chain.Osmosis}
	case KindWalletConnectV2:
		return nil
	}
	return nil
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}
