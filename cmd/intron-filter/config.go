package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/intron-filter/internal/overlap"
)

// configKeys lists the settings the config file may hold.
var configKeys = map[string]string{
	"engine":       "overlap engine: " + strings.Join(overlap.Engines(), ", "),
	"bedtools":     "bedtools executable",
	"duckdb-path":  "DuckDB database file (empty for in-memory)",
	"feature-type": "GFF3 feature type of introns",
	"verbose":      "debug logging (true/false)",
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage intron-filter configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/.intron-filter.yaml.
Every value can also be set with an INTRON_FILTER_<KEY> environment variable,
with dashes replaced by underscores (e.g. INTRON_FILTER_DUCKDB_PATH).`,
		Example: `  intron-filter config                        # show effective config
  intron-filter config set engine bedtools    # use bedtools for overlaps
  intron-filter config get engine             # get a value
  intron-filter config keys                   # list known keys`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigKeysCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

func newConfigKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List configuration keys",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, k := range sortedKeys() {
				fmt.Fprintf(out, "%-14s %s\n", k, configKeys[k])
			}
		},
	}
}

func sortedKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// runConfigShow prints the effective value of every known key, whatever
// its source (flag default, config file or environment).
func runConfigShow(out io.Writer) error {
	settings := make(map[string]any, len(configKeys))
	for _, k := range sortedKeys() {
		settings[k] = viper.Get(k)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# No config file. Defaults to ~/.intron-filter.yaml")
	}
	fmt.Fprint(out, string(data))
	return nil
}

// parseConfigValue checks value against key and converts it to the type
// stored in the config file.
func parseConfigValue(key, value string) (any, error) {
	if _, ok := configKeys[key]; !ok {
		return nil, fmt.Errorf("unknown config key %q (see 'intron-filter config keys')", key)
	}

	switch key {
	case "verbose":
		switch strings.ToLower(value) {
		case "yes", "on":
			return true, nil
		case "no", "off":
			return false, nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q for %s", value, key)
		}
		return b, nil
	case "engine":
		if _, err := overlap.New(value, overlap.Options{}); err != nil {
			return nil, err
		}
	case "feature-type":
		if value == "" {
			return nil, fmt.Errorf("%s must not be empty", key)
		}
	}
	return value, nil
}

func runConfigSet(out io.Writer, key, value string) error {
	parsed, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}
	viper.Set(key, parsed)

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, configName+".yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(out, "Set %s = %v in %s\n", key, parsed, cfgFile)
	return nil
}

func runConfigGet(out io.Writer, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(out, val)
	return nil
}
