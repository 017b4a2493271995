package scheduler

import (
	"strings"

	"github.com/Iron-Ham/stepsched/internal/event"
	"github.com/Iron-Ham/stepsched/internal/taskqueue"
)

// Result is the outcome of a completed run.
type Result struct {
	// Order lists steps in the order they completed.
	Order []string `json:"order"`

	// Elapsed is the simulated time at which the last step completed.
	Elapsed int `json:"elapsed"`

	Workers    int `json:"workers"`
	TimeOffset int `json:"time_offset"`

	// Assignments lists every dispatch in the order it happened.
	Assignments []taskqueue.Assignment `json:"assignments,omitempty"`

	// Timeline holds every event the run emitted, in emission order.
	Timeline []event.Event `json:"-"`
}

// Sequence returns the completion order as a single string. With one
// character labels this is the familiar "CABDFE" form.
func (r *Result) Sequence() string {
	return strings.Join(r.Order, "")
}

// Position returns the zero-based completion index of label, or -1.
func (r *Result) Position(label string) int {
	for i, l := range r.Order {
		if l == label {
			return i
		}
	}
	return -1
}

// Utilization returns the fraction of worker time spent processing steps.
// An empty run reports 0.
func (r *Result) Utilization() float64 {
	if r.Elapsed == 0 || r.Workers == 0 {
		return 0
	}
	busy := 0
	for _, a := range r.Assignments {
		busy += a.Duration()
	}
	return float64(busy) / float64(r.Elapsed*r.Workers)
}
