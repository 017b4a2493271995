package scheduler

import (
	"github.com/Iron-Ham/stepsched/internal/errors"
	"github.com/Iron-Ham/stepsched/internal/event"
	"github.com/Iron-Ham/stepsched/internal/logging"
)

// Defaults for a full-size run.
const (
	DefaultWorkers    = 5
	DefaultTimeOffset = 60
)

// Options configures a scheduling run.
type Options struct {
	// Workers is the number of steps that may be in progress at once.
	Workers int

	// TimeOffset is added to every step's cost.
	TimeOffset int

	// Cost prices each step. Defaults to AlphabetCost.
	Cost CostFunc

	// Bus, if set, receives every event as it happens.
	Bus *event.Bus

	// Logger, if set, receives run progress. Defaults to a no-op logger.
	Logger *logging.Logger
}

// DefaultOptions returns options for a five-worker run with a 60 unit
// offset, priced by AlphabetCost.
func DefaultOptions() Options {
	return Options{
		Workers:    DefaultWorkers,
		TimeOffset: DefaultTimeOffset,
		Cost:       AlphabetCost,
	}
}

// Validate reports every invalid field.
func (o Options) Validate() error {
	var errs []error
	if o.Workers < 1 {
		errs = append(errs, errors.NewValidationError("must be at least 1").
			WithField("workers").
			WithValue(o.Workers))
	}
	if o.TimeOffset < 0 {
		errs = append(errs, errors.NewValidationError("must not be negative").
			WithField("time_offset").
			WithValue(o.TimeOffset))
	}
	return errors.Join(errs...)
}

func (o Options) withDefaults() Options {
	if o.Cost == nil {
		o.Cost = AlphabetCost
	}
	if o.Logger == nil {
		o.Logger = logging.NopLogger()
	}
	return o
}
