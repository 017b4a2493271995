// Package event provides a synchronous pub-sub bus and the lifecycle events
// the scheduler emits while it simulates a run.
//
// # Main Types
//
//   - [Event]: interface providing EventType() and the simulated Time()
//   - [Bus]: synchronous dispatcher; handlers run in publish order
//   - [Handler]: function type for event handlers (func(Event))
//
// # Event Categories
//
// Run lifecycle:
//   - [RunStartedEvent], [RunDrainedEvent], [RunStalledEvent]
//
// Step lifecycle:
//   - [StepReadyEvent]: indegree reached zero
//   - [StepDispatchedEvent]: assigned to a worker slot
//   - [StepCompletedEvent]: clock reached the step's deadline
//
// # Usage
//
//	bus := event.NewBus()
//	bus.Subscribe(event.TypeStepCompleted, func(e event.Event) {
//	    done := e.(event.StepCompletedEvent)
//	    fmt.Println(done.Time(), done.Label)
//	})
package event
