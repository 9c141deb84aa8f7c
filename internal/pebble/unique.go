package pebble

import (
	"math"

	"contigr/internal/graph"
)

const (
	// LongNodeCutoff is the k-mer length at or below which a node is never
	// considered unique.
	LongNodeCutoff = 50
	// ProbabilityCutoff is the log-odds threshold of the uniqueness test.
	ProbabilityCutoff = 5.0
)

// IsUnique reports whether node n looks like a single-copy region given the
// expected coverage of such regions. The test compares the log likelihood of
// the observed short-read density under one copy against two copies.
func IsUnique(g *graph.Graph, n graph.NodeID, expected float64) bool {
	if expected <= 0 {
		return false
	}
	length := float64(g.Length(n))
	if length <= LongNodeCutoff {
		return false
	}
	density := g.Density(n)
	p := math.Ln2/2 + length/(2*expected)*(expected*expected-density*density/2)
	return p > ProbabilityCutoff
}

func (e *Engine) classify() {
	e.unique = make([]bool, e.g.NodeCount()+1)
	for _, id := range e.g.Nodes() {
		e.unique[id] = IsUnique(e.g, id, e.cfg.ExpectedCoverage)
	}
}

// Unique reports the classification of n fixed when the engine started.
func (e *Engine) Unique(n graph.NodeID) bool {
	i := int(n.Abs())
	return i < len(e.unique) && e.unique[i] && e.g.Exists(n)
}

// ambiguous reports whether the end of unique strand s is an unresolved
// junction: several successors, or a lone successor that is a repeat or has
// other predecessors.
func (e *Engine) ambiguous(s graph.NodeID) bool {
	out := e.g.Arcs(s)
	switch len(out) {
	case 0:
		return false
	case 1:
		t := out[0].To
		return !e.Unique(t) || e.g.InDegree(t) > 1
	}
	return true
}

// open reports whether the end of unique strand s is a junction or a dead
// end, both of which pair evidence may extend.
func (e *Engine) open(s graph.NodeID) bool {
	return e.g.OutDegree(s) == 0 || e.ambiguous(s)
}

// Junctions counts unique strand ends that are ambiguous junctions.
func (e *Engine) Junctions() int {
	n := 0
	for _, id := range e.g.Nodes() {
		if !e.Unique(id) {
			continue
		}
		for _, s := range [2]graph.NodeID{id, -id} {
			if e.ambiguous(s) {
				n++
			}
		}
	}
	return n
}
