package taskqueue

import (
	"errors"

	"github.com/google/btree"
)

// btreeDegree is the B-tree degree for both containers.
const btreeDegree = 16

// Sentinel errors returned by queue and pool operations.
var (
	ErrQueueEmpty      = errors.New("ready queue is empty")
	ErrPoolEmpty       = errors.New("worker pool is empty")
	ErrPoolFull        = errors.New("worker pool is at capacity")
	ErrAlreadyAssigned = errors.New("step already assigned")
	ErrNegativeCost    = errors.New("step cost is negative")
)

// ReadyQueue is the set of steps whose prerequisites have all completed and
// that are waiting for a worker. Steps come out in ascending label order.
type ReadyQueue struct {
	labels *btree.BTreeG[string]
}

// NewReadyQueue creates an empty ReadyQueue.
func NewReadyQueue() *ReadyQueue {
	return &ReadyQueue{labels: btree.NewOrderedG[string](btreeDegree)}
}

// Push adds a step to the queue. It returns false if the step was already
// queued, in which case the queue is unchanged.
func (q *ReadyQueue) Push(label string) bool {
	_, exists := q.labels.ReplaceOrInsert(label)
	return !exists
}

// PopMin removes and returns the smallest label.
// Returns ErrQueueEmpty if nothing is ready.
func (q *ReadyQueue) PopMin() (string, error) {
	label, ok := q.labels.DeleteMin()
	if !ok {
		return "", ErrQueueEmpty
	}
	return label, nil
}

// Peek returns the smallest label without removing it.
func (q *ReadyQueue) Peek() (string, bool) {
	return q.labels.Min()
}

// Contains reports whether label is queued.
func (q *ReadyQueue) Contains(label string) bool {
	return q.labels.Has(label)
}

// Len returns the number of queued steps.
func (q *ReadyQueue) Len() int {
	return q.labels.Len()
}

// IsEmpty returns true if no step is queued.
func (q *ReadyQueue) IsEmpty() bool {
	return q.labels.Len() == 0
}

// Labels returns a snapshot of the queued steps in ascending order.
func (q *ReadyQueue) Labels() []string {
	out := make([]string, 0, q.labels.Len())
	q.labels.Ascend(func(label string) bool {
		out = append(out, label)
		return true
	})
	return out
}
