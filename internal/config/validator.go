package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/stepsched/internal/errors"
	"github.com/Iron-Ham/stepsched/internal/scheduler"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "scheduler.workers")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Is lets callers match configuration failures against errors.ErrInvalidInput.
func (e ValidationErrors) Is(target error) bool {
	return target == errors.ErrInvalidInput
}

// maxWorkers bounds the simulated pool size.
const maxWorkers = 1024

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidOutputFormats returns the list of valid output formats
func ValidOutputFormats() []string {
	return []string{"text", "json"}
}

// ValidCostModels returns the list of valid cost models
func ValidCostModels() []string {
	return scheduler.CostModels()
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	errs = append(errs, c.validateScheduler()...)
	errs = append(errs, c.validateOutput()...)
	errs = append(errs, c.validateLogging()...)
	return errs
}

func (c *Config) validateScheduler() []ValidationError {
	var errs []ValidationError

	if c.Scheduler.Workers < 1 {
		errs = append(errs, ValidationError{
			Field:   "scheduler.workers",
			Value:   c.Scheduler.Workers,
			Message: "must be at least 1",
		})
	}
	if c.Scheduler.Workers > maxWorkers {
		errs = append(errs, ValidationError{
			Field:   "scheduler.workers",
			Value:   c.Scheduler.Workers,
			Message: fmt.Sprintf("exceeds maximum of %d", maxWorkers),
		})
	}

	if c.Scheduler.TimeOffset < 0 {
		errs = append(errs, ValidationError{
			Field:   "scheduler.time_offset",
			Value:   c.Scheduler.TimeOffset,
			Message: "must be non-negative",
		})
	}

	if c.Scheduler.Cost != "" && !slices.Contains(ValidCostModels(), c.Scheduler.Cost) {
		errs = append(errs, ValidationError{
			Field:   "scheduler.cost",
			Value:   c.Scheduler.Cost,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidCostModels(), ", ")),
		})
	}

	return errs
}

func (c *Config) validateOutput() []ValidationError {
	var errs []ValidationError

	if c.Output.Format != "" && !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		errs = append(errs, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidOutputFormats(), ", ")),
		})
	}

	return errs
}

func (c *Config) validateLogging() []ValidationError {
	var errs []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errs
}
