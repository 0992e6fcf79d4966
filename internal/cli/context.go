package cli

import (
	"errors"
	"path/filepath"

	"github.com/mrz1836/tollgate/internal/address"
	"github.com/mrz1836/tollgate/internal/cache"
	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/config"
	"github.com/mrz1836/tollgate/internal/features"
	"github.com/mrz1836/tollgate/internal/gate"
	"github.com/mrz1836/tollgate/internal/handle"
	"github.com/mrz1836/tollgate/internal/metrics"
	"github.com/mrz1836/tollgate/internal/output"
	"github.com/mrz1836/tollgate/internal/tradeflow"
	"github.com/mrz1836/tollgate/internal/wallet"
)

// handleCacheFile is the resolution cache location relative to the home directory.
const handleCacheFile = "cache/handles.json"

// CommandContext holds dependencies for CLI commands. Everything the gate and
// the trade flow need is constructed here once and passed down explicitly.
type CommandContext struct {
	Cfg          *config.Config
	Logger       *config.Logger
	Formatter    *output.Formatter
	Metrics      *metrics.Metrics
	Features     *features.Store
	HandleChain  chain.ID
	Sequencing   tradeflow.Sequencing
	Registry     *chain.Registry
	Gate         gate.Validator
	Capabilities wallet.CapabilityQuery

	resolutions  *cache.ResolutionCache
	cacheStorage *cache.FileStorage
}

// NewCommandContext builds the chain registry, the Yat resolver, the gate and
// the wallet capability query from cfg.
func NewCommandContext(
	cfg *config.Config,
	logger *config.Logger,
	formatter *output.Formatter,
) (*CommandContext, error) {
	handleChain, err := cfg.HandleChain()
	if err != nil {
		return nil, err
	}
	sequencing, err := cfg.Sequencing()
	if err != nil {
		return nil, err
	}

	zl := logger.Zerolog()
	m := metrics.New()
	flags := cfg.FeatureStore()

	storage := cache.NewFileStorage(filepath.Join(cfg.Home, handleCacheFile))
	resolutions, err := storage.Load(cfg.Handles.Yat.CacheTTL)
	if err != nil {
		if !errors.Is(err, cache.ErrCorruptCache) {
			return nil, err
		}
		logger.Error("handle cache reset: %v", err)
	}

	yat, err := handle.NewYatResolver(cfg.Handles.Yat,
		handle.WithCache(resolutions),
		handle.WithMetrics(m),
		handle.WithLogger(zl),
	)
	if err != nil {
		return nil, err
	}

	registry, err := address.NewRegistry(
		address.WithHandleResolver(handleChain, yat),
		address.WithLogger(zl),
	)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:         cfg,
		Logger:      logger,
		Formatter:   formatter,
		Metrics:     m,
		Features:    flags,
		HandleChain: handleChain,
		Sequencing:  sequencing,
		Registry:    registry,
		Gate:        gate.New(registry, gate.WithMetrics(m), gate.WithLogger(zl)),
		Capabilities: wallet.NewCapabilities(flags,
			wallet.WithWalletConnect(cfg.WalletConnect),
			wallet.WithLogger(zl),
		),
		resolutions:  resolutions,
		cacheStorage: storage,
	}, nil
}

// WithGate replaces the address validator.
func (c *CommandContext) WithGate(v gate.Validator) *CommandContext {
	c.Gate = v
	return c
}

// WithCapabilities replaces the wallet capability query.
func (c *CommandContext) WithCapabilities(q wallet.CapabilityQuery) *CommandContext {
	c.Capabilities = q
	return c
}

// HandleOptions returns the gate options for a destination chain.
func (c *CommandContext) HandleOptions(id chain.ID) gate.Options {
	return gate.HandleOptions(c.Features, id, c.HandleChain)
}

// Destination builds the destination chain context from a chain alias or
// CAIP-2 id and an optional CAIP-19 asset id.
func (c *CommandContext) Destination(chainArg, assetArg string) (chain.Context, error) {
	id, err := chain.Resolve(chainArg)
	if err != nil {
		return chain.Context{}, err
	}
	if assetArg == "" {
		return chain.NewContext(id)
	}

	asset, err := chain.ParseAssetID(assetArg)
	if err != nil {
		return chain.Context{}, err
	}
	cc := chain.Context{ChainID: id, AssetID: asset}
	if err := cc.Validate(); err != nil {
		return chain.Context{}, err
	}
	return cc, nil
}

// ResolveWallet returns the configured wallet profile called name, or an
// ad-hoc wallet when name is a wallet kind. withSnap marks the wallet as
// having the MetaMask Snap installed.
func (c *CommandContext) ResolveWallet(name string, withSnap bool) (*wallet.Wallet, error) {
	w, err := c.Cfg.Wallet(name)
	if err != nil {
		kind, kindErr := wallet.ParseKind(name)
		if kindErr != nil {
			return nil, kindErr
		}
		w = wallet.New(kind.String(), kind)
	}

	if withSnap && !w.HasExtension(wallet.ExtensionSnap) {
		w.Extensions = append(w.Extensions, wallet.ExtensionSnap)
	}
	return w, nil
}

// Close persists the handle resolution cache.
func (c *CommandContext) Close() error {
	if c.cacheStorage == nil || c.resolutions == nil || c.resolutions.Size() == 0 {
		return nil
	}
	return c.cacheStorage.Save(c.resolutions)
}
