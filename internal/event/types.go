package event

// Event is the interface that all scheduler events implement.
//
// Events are stamped with the simulated clock rather than wall time so that
// two runs over the same input produce identical timelines.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "step.dispatched").
	EventType() string

	// Time returns the simulated time at which the event occurred.
	Time() int
}

// Event type identifiers.
const (
	TypeRunStarted     = "run.started"
	TypeRunDrained     = "run.drained"
	TypeRunStalled     = "run.stalled"
	TypeStepReady      = "step.ready"
	TypeStepDispatched = "step.dispatched"
	TypeStepCompleted  = "step.completed"
)

type baseEvent struct {
	eventType string
	at        int
}

func (e baseEvent) EventType() string { return e.eventType }
func (e baseEvent) Time() int         { return e.at }

// -----------------------------------------------------------------------------
// Run Lifecycle Events
// -----------------------------------------------------------------------------

// RunStartedEvent is emitted once before the first dispatch.
type RunStartedEvent struct {
	baseEvent
	Steps      int
	Workers    int
	TimeOffset int
}

// NewRunStartedEvent creates a RunStartedEvent at time zero.
func NewRunStartedEvent(steps, workers, timeOffset int) RunStartedEvent {
	return RunStartedEvent{
		baseEvent:  baseEvent{eventType: TypeRunStarted},
		Steps:      steps,
		Workers:    workers,
		TimeOffset: timeOffset,
	}
}

// RunDrainedEvent is emitted when every step has completed.
type RunDrainedEvent struct {
	baseEvent
	Completed int
}

// NewRunDrainedEvent creates a RunDrainedEvent.
func NewRunDrainedEvent(at, completed int) RunDrainedEvent {
	return RunDrainedEvent{
		baseEvent: baseEvent{eventType: TypeRunDrained, at: at},
		Completed: completed,
	}
}

// RunStalledEvent is emitted when the schedule drains with steps still blocked.
type RunStalledEvent struct {
	baseEvent
	Pending []string
}

// NewRunStalledEvent creates a RunStalledEvent.
func NewRunStalledEvent(at int, pending []string) RunStalledEvent {
	return RunStalledEvent{
		baseEvent: baseEvent{eventType: TypeRunStalled, at: at},
		Pending:   pending,
	}
}

// -----------------------------------------------------------------------------
// Step Events
// -----------------------------------------------------------------------------

// StepReadyEvent is emitted when a step's last prerequisite completes, or at
// time zero for steps without prerequisites.
type StepReadyEvent struct {
	baseEvent
	Label string
}

// NewStepReadyEvent creates a StepReadyEvent.
func NewStepReadyEvent(at int, label string) StepReadyEvent {
	return StepReadyEvent{
		baseEvent: baseEvent{eventType: TypeStepReady, at: at},
		Label:     label,
	}
}

// StepDispatchedEvent is emitted when a step is assigned to a worker.
type StepDispatchedEvent struct {
	baseEvent
	Label    string
	Worker   int
	Deadline int
}

// NewStepDispatchedEvent creates a StepDispatchedEvent.
func NewStepDispatchedEvent(at int, label string, worker, deadline int) StepDispatchedEvent {
	return StepDispatchedEvent{
		baseEvent: baseEvent{eventType: TypeStepDispatched, at: at},
		Label:     label,
		Worker:    worker,
		Deadline:  deadline,
	}
}

// StepCompletedEvent is emitted when the clock reaches a step's deadline.
type StepCompletedEvent struct {
	baseEvent
	Label  string
	Worker int
	// Unblocked lists dependents that became ready because of this completion.
	Unblocked []string
}

// NewStepCompletedEvent creates a StepCompletedEvent.
func NewStepCompletedEvent(at int, label string, worker int, unblocked []string) StepCompletedEvent {
	return StepCompletedEvent{
		baseEvent: baseEvent{eventType: TypeStepCompleted, at: at},
		Label:     label,
		Worker:    worker,
		Unblocked: unblocked,
	}
}
