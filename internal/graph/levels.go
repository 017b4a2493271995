package graph

import "sort"

// Levels groups steps into execution levels: level 0 holds the steps with no
// prerequisites, and every other step sits one level below its deepest
// prerequisite. Steps inside a level are sorted by label.
//
// Steps that can never reach indegree zero, because they sit on or behind a
// cycle, are returned separately in ascending order.
func (g *Graph) Levels() (levels [][]string, blocked []string) {
	if g.Len() == 0 {
		return nil, nil
	}

	inDegree := g.Indegrees()
	level := g.Ready()
	placed := 0

	for len(level) > 0 {
		levels = append(levels, level)
		placed += len(level)

		var next []string
		for _, label := range level {
			g.EachDependent(label, func(dep string) bool {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
				return true
			})
		}
		sort.Strings(next)
		level = next
	}

	if placed < g.Len() {
		for label, n := range inDegree {
			if n > 0 {
				blocked = append(blocked, label)
			}
		}
		sort.Strings(blocked)
	}
	return levels, blocked
}

// Acyclic reports whether every step can eventually become ready.
func (g *Graph) Acyclic() bool {
	_, blocked := g.Levels()
	return len(blocked) == 0
}
