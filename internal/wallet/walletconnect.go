package wallet

import (
	"net/url"
	"slices"

	"github.com/mrz1836/tollgate/internal/chain"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// WalletConnectConfig configures the chains a WalletConnect v2 session
// negotiates. Only EVM chains can be requested.
type WalletConnectConfig struct {
	// ProjectID is the WalletConnect cloud project id.
	ProjectID string `yaml:"project_id" json:"project_id,omitempty"`

	// RequiredChains must be approved by the peer wallet.
	RequiredChains []chain.ID `yaml:"required_chains" json:"required_chains"`

	// OptionalChains may be approved by the peer wallet.
	OptionalChains []chain.ID `yaml:"optional_chains" json:"optional_chains"`

	// RPCMap maps a chain reference ("1", "137") to an RPC endpoint.
	RPCMap map[string]string `yaml:"rpc_map,omitempty" json:"rpc_map,omitempty"`
}

// DefaultWalletConnectConfig requires Ethereum mainnet and offers the other
// EVM chains as optional.
func DefaultWalletConnectConfig() WalletConnectConfig {
	return WalletConnectConfig{
		RequiredChains: []chain.ID{chain.Ethereum},
		OptionalChains: []chain.ID{
			chain.Optimism,
			chain.BNBSmartChain,
			chain.Gnosis,
			chain.Polygon,
			chain.Avalanche,
			chain.Arbitrum,
		},
		RPCMap: map[string]string{},
	}
}

// Chains returns required then optional chains, without duplicates.
func (c WalletConnectConfig) Chains() []chain.ID {
	out := make([]chain.ID, 0, len(c.RequiredChains)+len(c.OptionalChains))
	for _, id := range append(slices.Clone(c.RequiredChains), c.OptionalChains...) {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// Validate checks that at least one chain is required, every chain is a
// known EVM chain, and every RPC endpoint belongs to a configured chain.
func (c WalletConnectConfig) Validate() error {
	if len(c.RequiredChains) == 0 {
		return tgerr.WithDetails(tgerr.ErrConfigInvalid, map[string]string{
			"field":  "walletconnect.required_chains",
			"reason": "at least one chain is required",
		})
	}

	chains := c.Chains()
	refs := make(map[string]bool, len(chains))
	for _, id := range chains {
		if id.Family() != chain.FamilyEVM {
			return tgerr.WithDetails(tgerr.ErrConfigInvalid, map[string]string{
				"field":  "walletconnect",
				"chain":  id.String(),
				"reason": "only known EVM chains can be negotiated",
			})
		}
		refs[id.Reference()] = true
	}

	for ref, endpoint := range c.RPCMap {
		if !refs[ref] {
			return tgerr.WithDetails(tgerr.ErrConfigInvalid, map[string]string{
				"field":  "walletconnect.rpc_map",
				"chain":  ref,
				"reason": "rpc endpoint for a chain that is not configured",
			})
		}
		u, err := url.Parse(endpoint)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return tgerr.WithDetails(tgerr.ErrConfigInvalid, map[string]string{
				"field":  "walletconnect.rpc_map",
				"chain":  ref,
				"reason": "rpc endpoint must be an http(s) URL",
			})
		}
	}
	return nil
}
