package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/stepsched/internal/logging"
)

// Config represents the complete stepsched configuration
type Config struct {
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// SchedulerConfig controls the simulated worker pool
type SchedulerConfig struct {
	// Workers is the number of steps that may run at once
	Workers int `mapstructure:"workers" yaml:"workers"`
	// TimeOffset is added to the cost of every step
	TimeOffset int `mapstructure:"time_offset" yaml:"time_offset"`
	// Cost selects how step durations are computed
	// Options: "alphabet", "unit", "table"
	Cost string `mapstructure:"cost" yaml:"cost"`
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	// Format is "text" or "json"
	Format string `mapstructure:"format" yaml:"format"`
	// Trace includes the per-step dispatch table in the output
	Trace bool `mapstructure:"trace" yaml:"trace"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level sets the minimum log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory for stepsched.log. Empty logs to stderr.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the size at which the log file is rotated
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files to keep
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated files
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// Rotation converts the logging settings into a rotation config.
func (c LoggingConfig) Rotation() logging.RotationConfig {
	return logging.RotationConfig{
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}

// Default returns a Config with sensible default values
func Default() *Config {
	rotation := logging.DefaultRotationConfig()
	return &Config{
		Scheduler: SchedulerConfig{
			Workers:    5,
			TimeOffset: 60,
			Cost:       "alphabet",
		},
		Output: OutputConfig{
			Format: "text",
			Trace:  false,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			Compress:   rotation.Compress,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Scheduler defaults
	viper.SetDefault("scheduler.workers", defaults.Scheduler.Workers)
	viper.SetDefault("scheduler.time_offset", defaults.Scheduler.TimeOffset)
	viper.SetDefault("scheduler.cost", defaults.Scheduler.Cost)

	// Output defaults
	viper.SetDefault("output.format", defaults.Output.Format)
	viper.SetDefault("output.trace", defaults.Output.Trace)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults if the
// loaded values do not validate
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stepsched")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stepsched"
	}
	return filepath.Join(home, ".config", "stepsched")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Keys returns every configuration key in dot notation
func Keys() []string {
	return []string{
		"scheduler.workers",
		"scheduler.time_offset",
		"scheduler.cost",
		"output.format",
		"output.trace",
		"logging.level",
		"logging.dir",
		"logging.max_size_mb",
		"logging.max_backups",
		"logging.compress",
	}
}

// IsValidKey reports whether key is a known configuration key
func IsValidKey(key string) bool {
	return slices.Contains(Keys(), key)
}
