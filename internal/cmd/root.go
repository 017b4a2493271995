package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/stepsched/internal/config"
)

// NewRootCmd builds the stepsched command tree. Each call returns a fresh
// tree so flag state never leaks between invocations.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stepsched",
		Short: "Dependency-ordered step scheduler",
		Long: `stepsched orders steps that depend on one another and simulates running
them on a fixed pool of workers.

Each input line has the form

  Step C must be finished before step A can begin.

Steps become ready once everything they depend on has finished. Ready steps
are started in alphabetical order whenever a worker is free, and a step
takes its cost plus the configured time offset to finish.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/stepsched/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-dir", "", "directory for stepsched.log (default is stderr)")

	rootCmd.AddCommand(
		newOrderCmd(),
		newRunCmd(),
		newReplayCmd(),
		newWatchCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func initConfig(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logging.dir", flags.Lookup("log-dir"))

	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/stepsched")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("STEPSCHED")
	// Replace dots with underscores for nested keys in env vars
	// e.g., STEPSCHED_SCHEDULER_WORKERS for scheduler.workers
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; an explicit one that can't be read is not.
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound || viper.GetString("config") == "" {
			return nil
		}
		return err
	}
	return nil
}
