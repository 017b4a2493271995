// Package taskqueue holds the two ordered containers that drive a scheduling
// run: the [ReadyQueue] of steps whose prerequisites have all completed, and
// the [WorkerPool] of steps currently assigned to a worker.
//
// Both containers are backed by B-trees so that the smallest element is
// always available without re-sorting. The ready queue orders by label; the
// pool orders assignments by (deadline, label), which gives the scheduler its
// tie-break for free: among steps finishing at the same instant, the smaller
// label retires first.
//
// Neither type is safe for concurrent use. A scheduling run is a
// single-threaded simulation and owns its queue and pool exclusively.
//
// Usage:
//
//	queue := taskqueue.NewReadyQueue()
//	queue.Push("C")
//
//	pool, err := taskqueue.NewWorkerPool(2, cost, 0)
//	for pool.HasCapacity() && !queue.IsEmpty() {
//	    label, _ := queue.PopMin()
//	    pool.Assign(label, now)
//	}
//	next, err := pool.PopEarliest()
package taskqueue
