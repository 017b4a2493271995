package taskqueue

// StepStatus represents where a step is in its scheduling lifecycle.
type StepStatus string

const (
	// StepBlocked indicates the step still has unfinished prerequisites.
	StepBlocked StepStatus = "blocked"

	// StepReady indicates every prerequisite finished and the step is
	// waiting in the ready queue for a free worker.
	StepReady StepStatus = "ready"

	// StepActive indicates the step is assigned to a worker.
	StepActive StepStatus = "active"

	// StepRetired indicates the clock reached the step's deadline.
	StepRetired StepStatus = "retired"
)

// String returns the string representation of the step status.
func (s StepStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this status represents a final state.
func (s StepStatus) IsTerminal() bool {
	return s == StepRetired
}

// CanTransition reports whether a step may move from s to next. Steps only
// move forward, one stage at a time.
func (s StepStatus) CanTransition(next StepStatus) bool {
	switch s {
	case StepBlocked:
		return next == StepReady
	case StepReady:
		return next == StepActive
	case StepActive:
		return next == StepRetired
	default:
		return false
	}
}

// CostFunc returns the processing duration of a step, excluding any fixed
// per-step offset. Durations must be non-negative.
type CostFunc func(label string) (int, error)

// Assignment is a step occupying a worker until Deadline.
type Assignment struct {
	// Label is the step being processed.
	Label string `json:"label"`

	// Worker is the zero-based worker slot the step occupies.
	Worker int `json:"worker"`

	// Start is the simulated time the step was dispatched.
	Start int `json:"start"`

	// Deadline is the simulated time the step finishes.
	Deadline int `json:"deadline"`
}

// Duration returns the total time the step occupies its worker.
func (a Assignment) Duration() int {
	return a.Deadline - a.Start
}

// lessAssignment orders assignments by deadline, then label.
func lessAssignment(a, b Assignment) bool {
	if a.Deadline != b.Deadline {
		return a.Deadline < b.Deadline
	}
	return a.Label < b.Label
}
