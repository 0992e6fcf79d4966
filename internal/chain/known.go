package chain

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// Info describes a known chain.
type Info struct {
	ID          ID     `json:"id"`
	Alias       string `json:"alias"`
	DisplayName string `json:"display_name"`
	Family      Family `json:"family"`
	Symbol      string `json:"symbol"`
	CoinType    uint32 `json:"coin_type"` // SLIP-44 coin type of the native asset
}

// maxSuggestionDistance is the largest edit distance offered as a "did you mean".
const maxSuggestionDistance = 2

//nolint:gochecknoglobals // Static chain table
var knownChains = []Info{
	{ID: Ethereum, Alias: "eth", DisplayName: "Ethereum", Family: FamilyEVM, Symbol: "ETH", CoinType: 60},
	{ID: Avalanche, Alias: "avax", DisplayName: "Avalanche C-Chain", Family: FamilyEVM, Symbol: "AVAX", CoinType: 60},
	{ID: Optimism, Alias: "op", DisplayName: "Optimism", Family: FamilyEVM, Symbol: "ETH", CoinType: 60},
	{ID: BNBSmartChain, Alias: "bsc", DisplayName: "BNB Smart Chain", Family: FamilyEVM, Symbol: "BNB", CoinType: 60},
	{ID: Polygon, Alias: "polygon", DisplayName: "Polygon", Family: FamilyEVM, Symbol: "MATIC", CoinType: 966},
	{ID: Gnosis, Alias: "gnosis", DisplayName: "Gnosis", Family: FamilyEVM, Symbol: "xDAI", CoinType: 700},
	{ID: Arbitrum, Alias: "arb", DisplayName: "Arbitrum One", Family: FamilyEVM, Symbol: "ETH", CoinType: 60},
	{ID: Bitcoin, Alias: "btc", DisplayName: "Bitcoin", Family: FamilyUTXO, Symbol: "BTC", CoinType: 0},
	{ID: Litecoin, Alias: "ltc", DisplayName: "Litecoin", Family: FamilyUTXO, Symbol: "LTC", CoinType: 2},
	{ID: Dogecoin, Alias: "doge", DisplayName: "Dogecoin", Family: FamilyUTXO, Symbol: "DOGE", CoinType: 3},
	{ID: CosmosHub, Alias: "atom", DisplayName: "Cosmos Hub", Family: FamilyCosmos, Symbol: "ATOM", CoinType: 118},
	{ID: THORChain, Alias: "rune", DisplayName: "THORChain", Family: FamilyCosmos, Symbol: "RUNE", CoinType: 931},
	{ID: Osmosis, Alias: "osmo", DisplayName: "Osmosis", Family: FamilyCosmos, Symbol: "OSMO", CoinType: 118},
}

// Known returns a copy of the known chain table.
func Known() []Info {
	out := make([]Info, len(knownChains))
	copy(out, knownChains)
	return out
}

// KnownIDs returns the identifiers of every known chain.
func KnownIDs() []ID {
	ids := make([]ID, 0, len(knownChains))
	for _, info := range knownChains {
		ids = append(ids, info.ID)
	}
	return ids
}

// Lookup returns the table entry for a chain.
func Lookup(id ID) (Info, bool) {
	for _, info := range knownChains {
		if info.ID == id {
			return info, true
		}
	}
	return Info{}, false
}

// InFamily returns the known chains of a family.
func InFamily(family Family) []ID {
	var ids []ID
	for _, info := range knownChains {
		if info.Family == family {
			ids = append(ids, info.ID)
		}
	}
	return ids
}

// Aliases returns the short aliases of all known chains, sorted.
func Aliases() []string {
	aliases := make([]string, 0, len(knownChains))
	for _, info := range knownChains {
		aliases = append(aliases, info.Alias)
	}
	sort.Strings(aliases)
	return aliases
}

// Resolve accepts either a short alias ("eth") or a CAIP-2 identifier and
// returns the known chain it names.
func Resolve(s string) (ID, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, info := range knownChains {
		if info.Alias == lower || string(info.ID) == s {
			return info.ID, nil
		}
	}

	if id, err := ParseChainID(s); err == nil {
		return "", tgerr.WithDetails(tgerr.ErrUnsupportedChain, map[string]string{"chain": id.String()})
	}

	err := tgerr.WithDetails(tgerr.ErrUnsupportedChain, map[string]string{"chain": s})
	if suggestion := SuggestAlias(lower); suggestion != "" {
		return "", tgerr.WithSuggestion(err, "did you mean '"+suggestion+"'?")
	}
	return "", tgerr.WithSuggestion(err, "supported chains: "+strings.Join(Aliases(), ", "))
}

// SuggestAlias returns the closest chain alias to input, or "" when nothing
// is close enough to be a plausible typo.
func SuggestAlias(input string) string {
	best := ""
	bestDist := maxSuggestionDistance + 1
	for _, alias := range Aliases() {
		dist := levenshtein.ComputeDistance(input, alias)
		if dist < bestDist {
			best, bestDist = alias, dist
		}
	}
	return best
}
