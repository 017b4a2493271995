package taskqueue

import (
	"fmt"

	"github.com/google/btree"
)

// WorkerPool is a bounded set of workers, each processing at most one step.
// Active assignments are ordered by (deadline, label).
type WorkerPool struct {
	capacity int
	offset   int
	cost     CostFunc

	byDeadline *btree.BTreeG[Assignment]
	active     map[string]Assignment // label -> assignment
	busy       []bool                // worker slot -> occupied
}

// NewWorkerPool creates a pool of capacity workers. Each assigned step
// occupies its worker for cost(label)+offset time units.
func NewWorkerPool(capacity int, cost CostFunc, offset int) (*WorkerPool, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("worker pool capacity must be at least 1, got %d", capacity)
	}
	if offset < 0 {
		return nil, fmt.Errorf("time offset must not be negative, got %d", offset)
	}
	if cost == nil {
		return nil, fmt.Errorf("worker pool requires a cost function")
	}
	return &WorkerPool{
		capacity:   capacity,
		offset:     offset,
		cost:       cost,
		byDeadline: btree.NewG(btreeDegree, lessAssignment),
		active:     make(map[string]Assignment, capacity),
		busy:       make([]bool, capacity),
	}, nil
}

// Capacity returns the number of workers in the pool.
func (p *WorkerPool) Capacity() int {
	return p.capacity
}

// HasCapacity returns true if at least one worker is idle.
func (p *WorkerPool) HasCapacity() bool {
	return len(p.active) < p.capacity
}

// Assign hands label to the lowest-numbered idle worker at time start.
// The deadline is start + cost(label) + offset.
func (p *WorkerPool) Assign(label string, start int) (Assignment, error) {
	if _, ok := p.active[label]; ok {
		return Assignment{}, fmt.Errorf("%w: %s", ErrAlreadyAssigned, label)
	}
	if !p.HasCapacity() {
		return Assignment{}, fmt.Errorf("%w: cannot assign %s", ErrPoolFull, label)
	}

	cost, err := p.cost(label)
	if err != nil {
		return Assignment{}, fmt.Errorf("cost of step %s: %w", label, err)
	}
	if cost < 0 {
		return Assignment{}, fmt.Errorf("%w: step %s has cost %d", ErrNegativeCost, label, cost)
	}

	worker := p.freeWorker()
	a := Assignment{
		Label:    label,
		Worker:   worker,
		Start:    start,
		Deadline: start + cost + p.offset,
	}
	p.busy[worker] = true
	p.active[label] = a
	p.byDeadline.ReplaceOrInsert(a)
	return a, nil
}

// PopEarliest removes and returns the assignment with the smallest
// (deadline, label), freeing its worker.
// Returns ErrPoolEmpty if no worker is busy.
func (p *WorkerPool) PopEarliest() (Assignment, error) {
	a, ok := p.byDeadline.DeleteMin()
	if !ok {
		return Assignment{}, ErrPoolEmpty
	}
	delete(p.active, a.Label)
	p.busy[a.Worker] = false
	return a, nil
}

// IsEmpty returns true if every worker is idle.
func (p *WorkerPool) IsEmpty() bool {
	return len(p.active) == 0
}

// Len returns the number of busy workers.
func (p *WorkerPool) Len() int {
	return len(p.active)
}

// Active returns a snapshot of the current assignments ordered by
// (deadline, label).
func (p *WorkerPool) Active() []Assignment {
	out := make([]Assignment, 0, len(p.active))
	p.byDeadline.Ascend(func(a Assignment) bool {
		out = append(out, a)
		return true
	})
	return out
}

func (p *WorkerPool) freeWorker() int {
	for i, busy := range p.busy {
		if !busy {
			return i
		}
	}
	// Unreachable while HasCapacity guards Assign.
	return -1
}
