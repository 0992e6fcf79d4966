package chain

import (
	"fmt"
	"regexp"
	"strings"

	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// AssetID is a CAIP-19 asset identifier ("<chain id>/<asset namespace>:<asset reference>").
type AssetID string

var (
	assetNamespacePattern = regexp.MustCompile(`^[-a-z0-9]{3,8}$`)
	assetReferencePattern = regexp.MustCompile(`^[-.%a-zA-Z0-9]{1,128}$`)
)

// ParseAssetID parses and validates a CAIP-19 asset identifier.
func ParseAssetID(s string) (AssetID, error) {
	s = strings.TrimSpace(s)
	chainPart, assetPart, ok := strings.Cut(s, "/")
	if !ok {
		return "", tgerr.WithDetails(tgerr.ErrInvalidAssetID, map[string]string{"asset": s})
	}
	if _, err := ParseChainID(chainPart); err != nil {
		return "", tgerr.WithDetails(tgerr.ErrInvalidAssetID, map[string]string{"asset": s})
	}
	namespace, reference, ok := strings.Cut(assetPart, ":")
	if !ok || !assetNamespacePattern.MatchString(namespace) || !assetReferencePattern.MatchString(reference) {
		return "", tgerr.WithDetails(tgerr.ErrInvalidAssetID, map[string]string{"asset": s})
	}
	return AssetID(s), nil
}

// NativeAsset returns the SLIP-44 native asset identifier of a known chain.
func NativeAsset(id ID) (AssetID, error) {
	info, ok := Lookup(id)
	if !ok {
		return "", tgerr.WithDetails(tgerr.ErrUnsupportedChain, map[string]string{"chain": id.String()})
	}
	return AssetID(fmt.Sprintf("%s/slip44:%d", info.ID, info.CoinType)), nil
}

// ChainID returns the chain part of the asset identifier.
func (a AssetID) ChainID() ID {
	chainPart, _, _ := strings.Cut(string(a), "/")
	return ID(chainPart)
}

// String returns the asset identifier string.
func (a AssetID) String() string {
	return string(a)
}

// Context identifies the destination chain/asset pair of a trade.
type Context struct {
	ChainID ID      `json:"chain_id"`
	AssetID AssetID `json:"asset_id"`
}

// NewContext builds a chain context for the native asset of a known chain.
func NewContext(id ID) (Context, error) {
	asset, err := NativeAsset(id)
	if err != nil {
		return Context{}, err
	}
	return Context{ChainID: id, AssetID: asset}, nil
}

// Validate checks that both identifiers are well formed and that the asset
// lives on the chain.
func (c Context) Validate() error {
	if err := c.ChainID.Validate(); err != nil {
		return err
	}
	if _, err := ParseAssetID(string(c.AssetID)); err != nil {
		return err
	}
	if c.AssetID.ChainID() != c.ChainID {
		return tgerr.WithDetails(tgerr.ErrChainMismatch, map[string]string{
			"chain": c.ChainID.String(),
			"asset": c.AssetID.String(),
		})
	}
	return nil
}

// IsZero returns true if no destination has been selected.
func (c Context) IsZero() bool {
	return c.ChainID == "" && c.AssetID == ""
}
