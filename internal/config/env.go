package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvHome                   = "TOLLGATE_HOME"
	EnvFeatureYat             = "TOLLGATE_FEATURE_YAT"
	EnvFeatureSnaps           = "TOLLGATE_FEATURE_SNAPS"
	EnvYatURL                 = "TOLLGATE_YAT_URL"
	EnvHandleChain            = "TOLLGATE_HANDLE_CHAIN"
	EnvSequencing             = "TOLLGATE_SEQUENCING"
	EnvWalletConnectProjectID = "TOLLGATE_WALLETCONNECT_PROJECT_ID"
	EnvOutputFormat           = "TOLLGATE_OUTPUT_FORMAT"
	EnvVerbose                = "TOLLGATE_VERBOSE"
	EnvLogLevel               = "TOLLGATE_LOG_LEVEL"
	EnvNoColor                = "NO_COLOR"
)

// LoadDotEnv loads a .env file from each directory that has one. Variables
// already set in the environment are never overridden, and earlier
// directories win over later ones.
func LoadDotEnv(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvFeatureYat); v != "" {
		cfg.Features.Yat = parseBool(v)
	}

	if v := os.Getenv(EnvFeatureSnaps); v != "" {
		cfg.Features.Snaps = parseBool(v)
	}

	if v := os.Getenv(EnvYatURL); v != "" {
		cfg.Handles.Yat.BaseURL = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvHandleChain); v != "" {
		cfg.Handles.Chain = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvSequencing); v != "" {
		cfg.TradeFlow.Sequencing = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvWalletConnectProjectID); v != "" {
		cfg.WalletConnect.ProjectID = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}
