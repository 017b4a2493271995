package scheduler

import (
	"fmt"
	"sort"

	"github.com/Iron-Ham/stepsched/internal/errors"
	"github.com/Iron-Ham/stepsched/internal/event"
	"github.com/Iron-Ham/stepsched/internal/graph"
	"github.com/Iron-Ham/stepsched/internal/logging"
	"github.com/Iron-Ham/stepsched/internal/taskqueue"
)

// State is the lifecycle stage of a Scheduler.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateDrained
	StateStalled
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDrained:
		return "drained"
	case StateStalled:
		return "stalled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrAlreadyRun is returned when Run is called on a used Scheduler.
var ErrAlreadyRun = errors.New("scheduler has already run")

// Scheduler simulates one run over a graph.
type Scheduler struct {
	g      *graph.Graph
	opts   Options
	logger *logging.Logger

	indegree map[string]int
	status   map[string]taskqueue.StepStatus
	queue    *taskqueue.ReadyQueue
	pool     *taskqueue.WorkerPool

	state       State
	now         int
	order       []string
	assignments []taskqueue.Assignment
	timeline    []event.Event
}

// New validates opts and prepares a run over g.
func New(g *graph.Graph, opts Options) (*Scheduler, error) {
	if g == nil {
		return nil, errors.NewValidationError("graph is required").WithField("graph")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	pool, err := taskqueue.NewWorkerPool(opts.Workers, opts.Cost, opts.TimeOffset)
	if err != nil {
		return nil, err
	}

	status := make(map[string]taskqueue.StepStatus, g.Len())
	for _, label := range g.Labels() {
		status[label] = taskqueue.StepBlocked
	}

	return &Scheduler{
		g:        g,
		opts:     opts,
		logger:   opts.Logger.With("workers", opts.Workers, "time_offset", opts.TimeOffset),
		indegree: g.Indegrees(),
		status:   status,
		queue:    taskqueue.NewReadyQueue(),
		pool:     pool,
		order:    make([]string, 0, g.Len()),
	}, nil
}

// Run schedules a graph in one call.
func Run(g *graph.Graph, opts Options) (*Result, error) {
	s, err := New(g, opts)
	if err != nil {
		return nil, err
	}
	return s.Run()
}

// Order returns the completion sequence with a single worker and no offset,
// which is the lexicographically smallest topological order of g.
func Order(g *graph.Graph) (string, error) {
	result, err := Run(g, Options{Workers: 1, Cost: UnitCost})
	if err != nil {
		return "", err
	}
	return result.Sequence(), nil
}

// State returns the scheduler's lifecycle stage.
func (s *Scheduler) State() State {
	return s.state
}

// Now returns the current simulated time.
func (s *Scheduler) Now() int {
	return s.now
}

// Run executes the simulation to completion.
func (s *Scheduler) Run() (*Result, error) {
	if s.state != StateIdle {
		return nil, ErrAlreadyRun
	}
	s.state = StateRunning

	s.logger.Info("run started", "steps", s.g.Len())
	s.emit(event.NewRunStartedEvent(s.g.Len(), s.opts.Workers, s.opts.TimeOffset))

	for _, label := range s.g.Ready() {
		s.markReady(label)
	}

	for {
		if err := s.dispatch(); err != nil {
			s.state = StateFailed
			return nil, err
		}
		if s.pool.IsEmpty() {
			break
		}
		s.advance()
	}

	if len(s.order) < s.g.Len() {
		return nil, s.stall()
	}

	s.state = StateDrained
	s.logger.Info("run drained", "elapsed", s.now, "steps", len(s.order))
	s.emit(event.NewRunDrainedEvent(s.now, len(s.order)))

	return &Result{
		Order:       s.order,
		Elapsed:     s.now,
		Workers:     s.opts.Workers,
		TimeOffset:  s.opts.TimeOffset,
		Assignments: s.assignments,
		Timeline:    s.timeline,
	}, nil
}

// dispatch fills idle workers with ready steps, smallest label first.
func (s *Scheduler) dispatch() error {
	for s.pool.HasCapacity() && !s.queue.IsEmpty() {
		label, err := s.queue.PopMin()
		if err != nil {
			return err
		}
		a, err := s.pool.Assign(label, s.now)
		if err != nil {
			return errors.Wrapf(err, "dispatching step %s at t=%d", label, s.now)
		}
		s.transition(label, taskqueue.StepActive)
		s.assignments = append(s.assignments, a)

		s.logger.Debug("step dispatched", "step", label, "worker", a.Worker, "at", s.now, "deadline", a.Deadline)
		s.emit(event.NewStepDispatchedEvent(s.now, label, a.Worker, a.Deadline))
	}
	return nil
}

// advance retires the assignment with the earliest deadline and moves the
// clock to it. Assignments sharing a deadline come out in label order, one
// per call, so a worker freed by the first is refilled before the next
// retires.
func (s *Scheduler) advance() {
	a, err := s.pool.PopEarliest()
	if err != nil {
		return
	}
	s.now = a.Deadline
	s.retire(a)
}

func (s *Scheduler) retire(a taskqueue.Assignment) {
	s.transition(a.Label, taskqueue.StepRetired)
	s.order = append(s.order, a.Label)

	var unblocked []string
	s.g.EachDependent(a.Label, func(dep string) bool {
		s.indegree[dep]--
		if s.indegree[dep] == 0 {
			unblocked = append(unblocked, dep)
		}
		return true
	})

	s.logger.Debug("step completed", "step", a.Label, "worker", a.Worker, "at", s.now, "unblocked", unblocked)
	s.emit(event.NewStepCompletedEvent(s.now, a.Label, a.Worker, unblocked))

	for _, dep := range unblocked {
		s.markReady(dep)
	}
}

func (s *Scheduler) markReady(label string) {
	s.transition(label, taskqueue.StepReady)
	s.queue.Push(label)
	s.emit(event.NewStepReadyEvent(s.now, label))
}

// transition records a lifecycle move. Every step moves forward exactly
// once per stage; anything else is a bug in the loop.
func (s *Scheduler) transition(label string, next taskqueue.StepStatus) {
	cur := s.status[label]
	if !cur.CanTransition(next) {
		panic(fmt.Sprintf("scheduler: step %s cannot move from %s to %s", label, cur, next))
	}
	s.status[label] = next
}

func (s *Scheduler) stall() error {
	s.state = StateStalled

	var pending []string
	for label, st := range s.status {
		if !st.IsTerminal() {
			pending = append(pending, label)
		}
	}
	sort.Strings(pending)

	s.logger.Warn("run stalled", "at", s.now, "completed", len(s.order), "pending", pending)
	s.emit(event.NewRunStalledEvent(s.now, pending))

	return errors.NewCycleError(pending).WithCompleted(len(s.order))
}

func (s *Scheduler) emit(e event.Event) {
	s.timeline = append(s.timeline, e)
	s.opts.Bus.Publish(e)
}
