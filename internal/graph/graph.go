package graph

import (
	"sort"

	"github.com/google/btree"
)

// dependentsDegree is the B-tree degree used for per-step dependent sets.
// Fan-out is usually small, so a low degree keeps nodes compact.
const dependentsDegree = 8

// Edge is a directed precedence pair: From must complete before To may start.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Graph holds the adjacency and indegree mappings for a set of steps.
type Graph struct {
	// dependents is an ordered set per step so that completions release
	// their dependents in ascending label order without re-sorting.
	dependents map[string]*btree.BTreeG[string]
	indegree   map[string]int
	edges      int
}

// Builder accumulates edges and isolated steps into a Graph.
// The zero value is not usable; call NewBuilder.
type Builder struct {
	g *Graph
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{g: &Graph{
		dependents: make(map[string]*btree.BTreeG[string]),
		indegree:   make(map[string]int),
	}}
}

// Isolated registers steps that may have no edges at all. Registering an
// existing step is a no-op.
func (b *Builder) Isolated(labels ...string) *Builder {
	for _, label := range labels {
		if _, ok := b.g.indegree[label]; !ok {
			b.g.indegree[label] = 0
		}
	}
	return b
}

// AddEdge records that from must complete before to. A pair that was already
// recorded is ignored so it cannot inflate the indegree of to.
func (b *Builder) AddEdge(e Edge) *Builder {
	b.Isolated(e.From, e.To)

	set, ok := b.g.dependents[e.From]
	if !ok {
		set = btree.NewOrderedG[string](dependentsDegree)
		b.g.dependents[e.From] = set
	}
	if _, exists := set.ReplaceOrInsert(e.To); exists {
		return b
	}
	b.g.indegree[e.To]++
	b.g.edges++
	return b
}

// Build returns the accumulated Graph. The Builder must not be used afterwards.
func (b *Builder) Build() *Graph {
	g := b.g
	b.g = nil
	return g
}

// Build constructs a Graph from an ordered sequence of edges. Any isolated
// labels are registered as steps even when no edge mentions them.
func Build(edges []Edge, isolated ...string) *Graph {
	b := NewBuilder().Isolated(isolated...)
	for _, e := range edges {
		b.AddEdge(e)
	}
	return b.Build()
}

// Len returns the number of distinct steps.
func (g *Graph) Len() int {
	return len(g.indegree)
}

// EdgeCount returns the number of distinct precedence pairs.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Has reports whether label is a step of the graph.
func (g *Graph) Has(label string) bool {
	_, ok := g.indegree[label]
	return ok
}

// Labels returns every step in ascending order.
func (g *Graph) Labels() []string {
	labels := make([]string, 0, len(g.indegree))
	for label := range g.indegree {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Indegree returns the number of prerequisites of label. Steps that only
// appear as a source, and unknown labels, report 0.
func (g *Graph) Indegree(label string) int {
	return g.indegree[label]
}

// Indegrees returns a copy of the indegree mapping that the caller may mutate.
func (g *Graph) Indegrees() map[string]int {
	out := make(map[string]int, len(g.indegree))
	for label, n := range g.indegree {
		out[label] = n
	}
	return out
}

// Dependents returns the steps waiting on label, in ascending order.
func (g *Graph) Dependents(label string) []string {
	set, ok := g.dependents[label]
	if !ok {
		return nil
	}
	out := make([]string, 0, set.Len())
	set.Ascend(func(dep string) bool {
		out = append(out, dep)
		return true
	})
	return out
}

// EachDependent calls fn for every step waiting on label, in ascending
// order, until fn returns false.
func (g *Graph) EachDependent(label string, fn func(dep string) bool) {
	if set, ok := g.dependents[label]; ok {
		set.Ascend(btree.ItemIteratorG[string](fn))
	}
}

// Ready returns the steps with no prerequisites, in ascending order.
func (g *Graph) Ready() []string {
	var ready []string
	for label, n := range g.indegree {
		if n == 0 {
			ready = append(ready, label)
		}
	}
	sort.Strings(ready)
	return ready
}

// Edges returns all distinct edges ordered by (From, To).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for _, from := range g.Labels() {
		g.EachDependent(from, func(to string) bool {
			out = append(out, Edge{From: from, To: to})
			return true
		})
	}
	return out
}
