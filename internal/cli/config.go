package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/tollgate/internal/chain"
	"github.com/mrz1836/tollgate/internal/config"
	"github.com/mrz1836/tollgate/internal/output"
	"github.com/mrz1836/tollgate/internal/tradeflow"
	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage configuration",
	GroupID: groupConfig,
	Long:    `View and modify tollgate configuration settings.`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.tollgate/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.`,
	Example: `  tollgate config init
  tollgate config init --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration: the configuration file with
environment overrides and command-line flags applied.`,
	Example: `  tollgate config show
  tollgate config show -o json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a configuration value by its dotted key, for example
features.yat or tradeflow.sequencing.`,
	Example: `  tollgate config get features.yat
  tollgate config get handles.chain`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value by its dotted key. The configuration file is
validated and written immediately.`,
	Example: `  tollgate config set features.yat true
  tollgate config set tradeflow.sequencing last_write_wins
  tollgate config set handles.chain eth`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	appendSubcommandList(configCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

// configKey reads and writes one scalar configuration setting.
type configKey struct {
	get func(c *config.Config) string
	set func(c *config.Config, value string) error
}

//nolint:gochecknoglobals // read-only key table
var configKeys = map[string]configKey{
	"features.yat": {
		get: func(c *config.Config) string { return strconv.FormatBool(c.Features.Yat) },
		set: func(c *config.Config, v string) error { return setBool(&c.Features.Yat, v) },
	},
	"features.snaps": {
		get: func(c *config.Config) string { return strconv.FormatBool(c.Features.Snaps) },
		set: func(c *config.Config, v string) error { return setBool(&c.Features.Snaps, v) },
	},
	"handles.chain": {
		get: func(c *config.Config) string { return c.Handles.Chain },
		set: func(c *config.Config, v string) error {
			id, err := chain.Resolve(v)
			if err != nil {
				return err
			}
			c.Handles.Chain = id.String()
			return nil
		},
	},
	"handles.yat.base_url": {
		get: func(c *config.Config) string { return c.Handles.Yat.BaseURL },
		set: func(c *config.Config, v string) error { c.Handles.Yat.BaseURL = v; return nil },
	},
	"handles.yat.tag": {
		get: func(c *config.Config) string { return c.Handles.Yat.Tag },
		set: func(c *config.Config, v string) error { c.Handles.Yat.Tag = v; return nil },
	},
	"walletconnect.project_id": {
		get: func(c *config.Config) string { return c.WalletConnect.ProjectID },
		set: func(c *config.Config, v string) error { c.WalletConnect.ProjectID = v; return nil },
	},
	"tradeflow.sequencing": {
		get: func(c *config.Config) string { return c.TradeFlow.Sequencing },
		set: func(c *config.Config, v string) error {
			seq, err := tradeflow.ParseSequencing(v)
			if err != nil {
				return err
			}
			c.TradeFlow.Sequencing = seq.String()
			return nil
		},
	},
	"output.default_format": {
		get: func(c *config.Config) string { return c.Output.DefaultFormat },
		set: func(c *config.Config, v string) error {
			return setEnum(&c.Output.DefaultFormat, v, "auto", "text", "json")
		},
	},
	"output.color": {
		get: func(c *config.Config) string { return c.Output.Color },
		set: func(c *config.Config, v string) error {
			return setEnum(&c.Output.Color, v, "auto", "always", "never")
		},
	},
	"output.verbose": {
		get: func(c *config.Config) string { return strconv.FormatBool(c.Output.Verbose) },
		set: func(c *config.Config, v string) error { return setBool(&c.Output.Verbose, v) },
	},
	"logging.level": {
		get: func(c *config.Config) string { return c.Logging.Level },
		set: func(c *config.Config, v string) error {
			return setEnum(&c.Logging.Level, v, "off", "error", "debug")
		},
	},
	"logging.file": {
		get: func(c *config.Config) string { return c.Logging.File },
		set: func(c *config.Config, v string) error { c.Logging.File = v; return nil },
	},
	"logging.console": {
		get: func(c *config.Config) string { return strconv.FormatBool(c.Logging.Console) },
		set: func(c *config.Config, v string) error { return setBool(&c.Logging.Console, v) },
	},
}

// configKeyNames returns the settable keys in sorted order.
func configKeyNames() []string {
	names := make([]string, 0, len(configKeys))
	for name := range configKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupConfigKey(name string) (configKey, error) {
	key, ok := configKeys[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return configKey{}, tgerr.WithSuggestion(
			tgerr.WithDetails(tgerr.ErrNotFound, map[string]string{"key": name}),
			"known keys: "+strings.Join(configKeyNames(), ", "),
		)
	}
	return key, nil
}

func setBool(dst *bool, value string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return tgerr.WithDetails(tgerr.ErrInvalidInput, map[string]string{"value": value, "valid": "true or false"})
	}
	*dst = b
	return nil
}

func setEnum(dst *string, value string, valid ...string) error {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, v := range valid {
		if value == v {
			*dst = value
			return nil
		}
	}
	return tgerr.WithDetails(tgerr.ErrInvalidInput, map[string]string{
		"value": value,
		"valid": strings.Join(valid, ", "),
	})
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath := config.Path(cfg.Home)

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return tgerr.WithSuggestion(
			tgerr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = cfg.Home
	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	output.Success(w, "Configuration initialized at %s", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - features.yat / features.snaps: feature switches")
	outln(w, "  - handles.chain: the chain on which Yat handles resolve")
	outln(w, "  - wallets: named wallet profiles and their declared chains")
	outln(w, "  - tradeflow.sequencing: generation or last_write_wins")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	values := make(map[string]string, len(configKeys))
	for name, key := range configKeys {
		values[name] = key.get(cfg)
	}

	return render(cmd, values, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	})
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key, err := lookupConfigKey(args[0])
	if err != nil {
		return err
	}
	outln(cmd.OutOrStdout(), key.get(cfg))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	name, value := args[0], args[1]
	key, err := lookupConfigKey(name)
	if err != nil {
		return err
	}

	// Edit the file, not the effective configuration, so environment
	// overrides are not persisted.
	configPath := config.Path(cfg.Home)
	fileCfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		fileCfg = config.Defaults()
		fileCfg.Home = cfg.Home
	}

	if err := key.set(fileCfg, value); err != nil {
		return err
	}
	if err := fileCfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(fileCfg, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	out(cmd.OutOrStdout(), "Set %s = %s\n", name, key.get(fileCfg))
	return nil
}
