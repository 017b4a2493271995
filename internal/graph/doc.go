// Package graph turns an ordered stream of precedence pairs into the
// structures the scheduler consumes: an adjacency mapping from each step to
// the ordered set of steps that wait on it, an indegree count per step, and
// the initial ready set.
//
// A [Graph] is immutable once built. Schedulers copy the indegree counts
// before mutating them, so one Graph can back any number of runs.
//
// Acyclicity is not checked here. A cyclic graph builds fine and is reported
// by the scheduler when its run stalls.
package graph
