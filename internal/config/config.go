// Package config provides configuration management for tollgate.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/features"
	"github.com/mrz1836/tollgate/internal/fileutil"
	"github.com/mrz1836/tollgate/internal/handle"
	"github.com/mrz1836/tollgate/internal/tradeflow"
	"github.com/mrz1836/tollgate/internal/wallet"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version       int                        `yaml:"version"`
	Home          string                     `yaml:"home"`
	Features      FeaturesConfig             `yaml:"features"`
	Handles       HandlesConfig              `yaml:"handles"`
	WalletConnect wallet.WalletConnectConfig `yaml:"walletconnect"`
	Wallets       []wallet.Wallet            `yaml:"wallets,omitempty"`
	TradeFlow     TradeFlowConfig            `yaml:"tradeflow"`
	Output        OutputConfig               `yaml:"output"`
	Logging       LoggingConfig              `yaml:"logging"`
}

// FeaturesConfig defines the feature switches.
type FeaturesConfig struct {
	Yat   bool `yaml:"yat"`
	Snaps bool `yaml:"snaps"`
}

// HandlesConfig defines handle resolution settings.
type HandlesConfig struct {
	// Chain is the only chain on which handles are resolved, as a CAIP-2 id
	// or a chain alias.
	Chain string           `yaml:"chain"`
	Yat   handle.YatConfig `yaml:"yat"`
}

// TradeFlowConfig defines trade-flow session settings.
type TradeFlowConfig struct {
	Sequencing string `yaml:"sequencing"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, tgerr.WithCause(tgerr.WithDetails(tgerr.ErrConfigInvalid, map[string]string{"path": path}), err)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// DefaultHome returns the default tollgate home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tollgate"
	}
	return filepath.Join(home, ".tollgate")
}

// GetHome returns the tollgate home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// FeatureStore builds the feature switch store.
func (c *Config) FeatureStore() *features.Store {
	return features.NewStore(map[features.Flag]bool{
		features.Yat:   c.Features.Yat,
		features.Snaps: c.Features.Snaps,
	})
}

// HandleChain returns the chain on which handles are resolved.
func (c *Config) HandleChain() (chain.ID, error) {
	return chain.Resolve(c.Handles.Chain)
}

// Sequencing returns the trade-flow sequencing policy.
func (c *Config) Sequencing() (tradeflow.Sequencing, error) {
	return tradeflow.ParseSequencing(c.TradeFlow.Sequencing)
}

// Wallet returns the wallet profile called name.
func (c *Config) Wallet(name string) (*wallet.Wallet, error) {
	for i := range c.Wallets {
		if strings.EqualFold(c.Wallets[i].Name, name) {
			w := c.Wallets[i]
			return &w, nil
		}
	}
	return nil, tgerr.WithDetails(tgerr.ErrUnknownWallet, map[string]string{"wallet": name})
}

// Validate checks the settings that cannot be fixed by a default.
func (c *Config) Validate() error {
	if _, err := c.HandleChain(); err != nil {
		return configError("handles.chain", c.Handles.Chain, err)
	}
	if _, err := c.Sequencing(); err != nil {
		return err
	}
	if err := c.WalletConnect.Validate(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Wallets))
	for i := range c.Wallets {
		w := &c.Wallets[i]
		if err := w.Validate(); err != nil {
			return configError("wallets", w.Name, err)
		}
		key := strings.ToLower(w.Name)
		if seen[key] {
			return tgerr.WithDetails(tgerr.ErrConfigInvalid, map[string]string{
				"field":  "wallets",
				"value":  w.Name,
				"reason": "duplicate wallet name",
			})
		}
		seen[key] = true
	}

	switch c.Output.DefaultFormat {
	case "", "auto", "text", "json":
	default:
		return tgerr.WithDetails(tgerr.ErrConfigInvalid, map[string]string{
			"field": "output.default_format",
			"value": c.Output.DefaultFormat,
		})
	}
	return nil
}

func configError(field, value string, cause error) error {
	return tgerr.WithCause(tgerr.WithDetails(tgerr.ErrConfigInvalid, map[string]string{
		"field": field,
		"value": value,
	}), cause)
}
