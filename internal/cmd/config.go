package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/stepsched/internal/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View or modify stepsched configuration",
		Long: `View or modify stepsched configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
		RunE: runConfigShow,
	}

	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE:  runConfigShow,
	}

	configSetCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  stepsched config set scheduler.workers 2
  stepsched config set scheduler.time_offset 0
  stepsched config set output.format json

Valid keys:
  scheduler.workers      - Number of workers (1-1024)
  scheduler.time_offset  - Time added to every step's cost
  scheduler.cost         - Cost model: alphabet, unit, table
  output.format          - Output format: text, json
  output.trace           - Include the dispatch table (true/false)
  logging.level          - Log level: debug, info, warn, error
  logging.dir            - Directory for stepsched.log (empty for stderr)
  logging.max_size_mb    - Rotate the log file at this size
  logging.max_backups    - Rotated log files to keep
  logging.compress       - Gzip rotated log files (true/false)`,
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	}

	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		Long:  `Create a default config file at ~/.config/stepsched/config.yaml with all available options.`,
		RunE:  runConfigInit,
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show the config file path",
		RunE:  runConfigPath,
	}

	configCmd.AddCommand(configShowCmd, configSetCmd, configInitCmd, configPathCmd)
	return configCmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// keyTypes maps each configuration key to the kind of value it holds.
var keyTypes = map[string]string{
	"scheduler.workers":     "int",
	"scheduler.time_offset": "int",
	"scheduler.cost":        "string",
	"output.format":         "string",
	"output.trace":          "bool",
	"logging.level":         "string",
	"logging.dir":           "string",
	"logging.max_size_mb":   "int",
	"logging.max_backups":   "int",
	"logging.compress":      "bool",
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	if !config.IsValidKey(key) {
		return fmt.Errorf("unknown configuration key: %s\nRun 'stepsched config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue any
	switch keyTypes[key] {
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = value == "true"
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		typedValue = intVal
	default:
		typedValue = value
	}

	// Check the whole configuration with the new value before saving it
	previous := viper.Get(key)
	viper.Set(key, typedValue)
	if _, err := config.Load(); err != nil {
		viper.Set(key, previous)
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write to config file
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)

	return nil
}

// defaultConfigContent is written by config init.
const defaultConfigContent = `# stepsched configuration

scheduler:
  # Number of steps that may run at once
  workers: 5
  # Time added to the cost of every step
  time_offset: 60
  # How step costs are computed
  # Options: alphabet (A=1 ... Z=26), unit (every step costs 1),
  # table (durations from a YAML plan)
  cost: alphabet

output:
  # Options: text, json
  format: text
  # Include the per-step dispatch table
  trace: false

logging:
  # Options: debug, info, warn, error
  level: info
  # Directory for stepsched.log; empty logs to stderr
  dir: ""
  # Rotate the log file once it reaches this size
  max_size_mb: 10
  # Rotated files to keep
  max_backups: 3
  # Gzip rotated files
  compress: false
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'stepsched config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize stepsched's behavior.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	// Also show config search paths
	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. $HOME/.config/stepsched/config.yaml\n")
	fmt.Fprintf(out, "  3. ./config.yaml (current directory)\n")
	fmt.Fprintf(out, "\nEnvironment variables: STEPSCHED_* (e.g., %s)\n", envName("scheduler.workers"))

	return nil
}

// envName returns the environment variable that overrides key.
func envName(key string) string {
	return "STEPSCHED_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
