package tui

import (
	"github.com/Iron-Ham/stepsched/internal/event"
	"github.com/Iron-Ham/stepsched/internal/scheduler"
	"github.com/Iron-Ham/stepsched/internal/taskqueue"
)

// Lane is what one worker is doing in a frame. An empty Label means idle.
type Lane struct {
	Label    string
	Start    int
	Deadline int
}

// Idle reports whether the worker has nothing assigned.
func (l Lane) Idle() bool { return l.Label == "" }

// Frame is the scheduler state at one instant of simulated time, after every
// event stamped with that instant has been applied.
type Frame struct {
	Time   int
	Events []event.Event
	Lanes  []Lane
	Ready  []string
	Done   []string
}

// BuildFrames replays a result's timeline into one frame per distinct
// instant. Events are grouped by time because the scheduler retires and
// dispatches everything due at an instant before the clock moves.
func BuildFrames(r *scheduler.Result) []Frame {
	if r == nil || len(r.Timeline) == 0 {
		return nil
	}

	lanes := make([]Lane, r.Workers)
	ready := taskqueue.NewReadyQueue()
	var done []string

	var frames []Frame
	var pending []event.Event
	at := r.Timeline[0].Time()

	flush := func() {
		snapshot := make([]Lane, len(lanes))
		copy(snapshot, lanes)
		frames = append(frames, Frame{
			Time:   at,
			Events: pending,
			Lanes:  snapshot,
			Ready:  ready.Labels(),
			Done:   append([]string(nil), done...),
		})
		pending = nil
	}

	for _, e := range r.Timeline {
		if e.Time() != at {
			flush()
			at = e.Time()
		}
		pending = append(pending, e)

		switch ev := e.(type) {
		case event.StepReadyEvent:
			ready.Push(ev.Label)
		case event.StepDispatchedEvent:
			// Dispatch always takes the smallest ready label.
			if head, ok := ready.Peek(); ok && head == ev.Label {
				_, _ = ready.PopMin()
			}
			if ev.Worker >= 0 && ev.Worker < len(lanes) {
				lanes[ev.Worker] = Lane{Label: ev.Label, Start: ev.Time(), Deadline: ev.Deadline}
			}
		case event.StepCompletedEvent:
			if ev.Worker >= 0 && ev.Worker < len(lanes) {
				lanes[ev.Worker] = Lane{}
			}
			done = append(done, ev.Label)
		}
	}
	flush()

	return frames
}
