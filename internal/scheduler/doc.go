// Package scheduler runs the discrete-event simulation that assigns steps to
// a bounded pool of workers.
//
// A run alternates two phases until nothing is left to do:
//
//   - Dispatch: while a worker is idle and a step is ready, the smallest
//     ready label is assigned at the current time. Its deadline is
//     now + cost(label) + TimeOffset.
//   - Advance: the assignment with the earliest deadline retires and the
//     clock jumps to its deadline. Each dependent whose last prerequisite
//     just finished becomes ready.
//
// Only one assignment retires per advance. When several finish at the same
// instant they retire in label order, and the worker freed by each one is
// refilled before the next retires. The clock never moves backwards, so all
// of them drain before time advances past that instant.
//
// If the run drains while some steps never became ready, the graph contains a
// cycle (or a step downstream of one) and Run returns a *errors.CycleError
// listing them. No partial result is returned.
//
// Basic usage:
//
//	g := graph.Build(edges)
//	result, err := scheduler.Run(g, scheduler.Options{
//	    Workers:    5,
//	    TimeOffset: 60,
//	    Cost:       scheduler.AlphabetCost,
//	})
//	fmt.Println(result.Sequence(), result.Elapsed)
//
// A Scheduler is single-use and not safe for concurrent use. The Graph it
// reads is never modified, so any number of schedulers may share one.
package scheduler
