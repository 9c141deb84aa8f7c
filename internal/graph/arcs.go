package graph

import (
	"fmt"
	"sort"
)

func (g *Graph) outList(n NodeID) *[]Arc { return &g.rec(n).out[side(n)] }

// AddArc records the adjacency from→to and its twin -to→-from. Adding an arc
// that already exists increments its multiplicity.
func (g *Graph) AddArc(from, to NodeID, multiplicity int) {
	g.rec(to)
	g.addHalf(from, to, multiplicity)
	if to != -from {
		g.addHalf(-to, -from, multiplicity)
	}
}

func (g *Graph) addHalf(from, to NodeID, m int) {
	list := g.outList(from)
	i := sort.Search(len(*list), func(i int) bool { return (*list)[i].To >= to })
	if i < len(*list) && (*list)[i].To == to {
		(*list)[i].Multiplicity += m
		return
	}
	*list = append(*list, Arc{})
	copy((*list)[i+1:], (*list)[i:])
	(*list)[i] = Arc{To: to, Multiplicity: m}
}

// RemoveArc deletes from→to and its twin. Removing a missing arc panics.
func (g *Graph) RemoveArc(from, to NodeID) {
	g.removeHalf(from, to)
	if to != -from {
		g.removeHalf(-to, -from)
	}
}

func (g *Graph) removeHalf(from, to NodeID) {
	list := g.outList(from)
	i := sort.Search(len(*list), func(i int) bool { return (*list)[i].To >= to })
	if i == len(*list) || (*list)[i].To != to {
		panic(fmt.Sprintf("graph: no arc %d→%d", from, to))
	}
	*list = append((*list)[:i], (*list)[i+1:]...)
}

// Arcs returns the outgoing arcs of n ordered by target id.
func (g *Graph) Arcs(n NodeID) []Arc { return append([]Arc(nil), *g.outList(n)...) }

// Arc looks up the arc from→to.
func (g *Graph) Arc(from, to NodeID) (Arc, bool) {
	list := *g.outList(from)
	i := sort.Search(len(list), func(i int) bool { return list[i].To >= to })
	if i < len(list) && list[i].To == to {
		return list[i], true
	}
	return Arc{}, false
}

// OutDegree counts arcs leaving n.
func (g *Graph) OutDegree(n NodeID) int { return len(*g.outList(n)) }

// InDegree counts arcs entering n, which are the twins of arcs leaving -n.
func (g *Graph) InDegree(n NodeID) int { return len(*g.outList(-n)) }

// Predecessors returns the strands with an arc into n, ordered by id.
func (g *Graph) Predecessors(n NodeID) []NodeID {
	list := *g.outList(-n)
	out := make([]NodeID, len(list))
	for i, a := range list {
		out[i] = -a.To
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// detachArcs drops every arc touching either strand of record id.
func (g *Graph) detachArcs(id NodeID) {
	for _, s := range [2]NodeID{id, -id} {
		for _, a := range g.Arcs(s) {
			if _, ok := g.Arc(s, a.To); ok {
				g.RemoveArc(s, a.To)
			}
		}
	}
}

// cutOut removes every arc leaving n.
func (g *Graph) cutOut(n NodeID) {
	for _, a := range g.Arcs(n) {
		if _, ok := g.Arc(n, a.To); ok {
			g.RemoveArc(n, a.To)
		}
	}
}
