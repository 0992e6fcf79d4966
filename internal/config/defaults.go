package config

import (
	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/handle"
	"github.com/mrz1836/tollgate/internal/tradeflow"
	"github.com/mrz1836/tollgate/internal/wallet"
)

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.tollgate",
		Features: FeaturesConfig{
			Yat:   false,
			Snaps: false,
		},
		Handles: HandlesConfig{
			Chain: chain.Ethereum.String(),
			Yat:   handle.DefaultYatConfig(),
		},
		WalletConnect: wallet.DefaultWalletConnectConfig(),
		TradeFlow: TradeFlowConfig{
			Sequencing: tradeflow.SequencingGeneration.String(),
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.tollgate/tollgate.log",
		},
	}
}
