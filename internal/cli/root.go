// Package cli implements the tollgate command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/tollgate/internal/config"
	"github.com/mrz1836/tollgate/internal/output"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// Command group identifiers for organized help output.
const (
	groupGate   = "gate"
	groupTrade  = "trade"
	groupConfig = "config"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool
	metricsFile  string

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
	cmdCtx    *CommandContext
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tollgate",
	Short: "Chain-aware receive address checks for cross-chain trades",
	Long: `Tollgate decides whether a cross-chain trade needs a manually entered
receive address and validates what the user typed against the destination
chain.

Inputs are accepted as native addresses of the destination chain or, on the
designated handle chain with the Yat feature on, as Yat emoji handles.
Payment-request URIs are never accepted as a receive address.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command. An interrupt cancels any validation or
// handle lookup in flight.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		formatErr(err)
		return err
	}
	return nil
}

// operationContext bounds one command operation by d. It is canceled with
// the command's context, which Execute ties to interrupts.
func operationContext(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, d)
}

// formatErr prints err to stderr in the active output format.
func formatErr(err error) {
	format := output.FormatText
	if formatter != nil {
		format = formatter.Format()
	}
	_ = output.FormatError(os.Stderr, err, format)
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return tgerr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, formatter and the
// command context.
func initGlobals(_ *cobra.Command) error {
	// Determine home directory
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	// .env files never override variables that are already set
	cwd, _ := os.Getwd()
	_ = config.LoadDotEnv(home, cwd)
	if homeDir == "" {
		if envHome := os.Getenv(config.EnvHome); envHome != "" {
			home = envHome
		}
	}

	// Load or create config
	var err error
	cfg, err = config.Load(config.Path(home))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		cfg = config.Defaults()
	}
	cfg.Home = home

	// Apply environment variable overrides
	config.ApplyEnvironment(cfg)

	// Override with command-line flags
	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	if err = cfg.Validate(); err != nil {
		return err
	}

	// Initialize logger
	var logOpts []config.LoggerOption
	if cfg.Logging.Console {
		logOpts = append(logOpts, config.WithConsole(os.Stderr))
	}
	logger, err = config.NewLogger(config.ParseLogLevel(cfg.Logging.Level), cfg.Logging.File, logOpts...)
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}

	// Initialize formatter
	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	detectedFormat := output.DetectFormat(os.Stdout, explicitFormat)
	formatter = output.NewFormatter(detectedFormat, os.Stdout)

	cmdCtx, err = NewCommandContext(cfg, logger, formatter)
	return err
}

// cleanup releases resources.
func cleanup() {
	if cmdCtx != nil {
		snap := cmdCtx.Metrics.Snapshot()
		zl := cmdCtx.Logger.Zerolog()
		zl.Debug().
			Int64("validations", snap.Validations).
			Int64("valid", snap.Valid).
			Int64("handle_lookups", snap.HandleLookups).
			Float64("cache_hit_rate", snap.CacheHitRate()).
			Int64("stale_discards", snap.StaleDiscards).
			Msg("command metrics")

		if metricsFile != "" {
			if err := cmdCtx.Metrics.WriteTextfile(metricsFile); err != nil && logger != nil {
				logger.Error("writing metrics to %s: %v", metricsFile, err)
			}
		}
		if err := cmdCtx.Close(); err != nil && logger != nil {
			logger.Error("closing command context: %v", err)
		}
	}
	if logger != nil {
		_ = logger.Close()
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

// Context returns the command context built from the global configuration.
func Context() *CommandContext {
	return cmdCtx
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupGate, Title: "Address Gate:"},
		&cobra.Group{ID: groupTrade, Title: "Trade Flow:"},
		&cobra.Group{ID: groupConfig, Title: "Configuration:"},
	)
	rootCmd.SetHelpCommandGroupID(groupConfig)
	rootCmd.SetCompletionCommandGroupID(groupConfig)

	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "tollgate data directory (default: ~/.tollgate)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
}
