package graph

import (
	"fmt"
	"sort"

	"contigr/internal/dna"
)

// MinGapLength is the shortest N run written for a scaffold link.
const MinGapLength = 10

// Concatenate merges every maximal chain of strands joined by a lone arc,
// where the source has a single successor and the target a single
// predecessor. The merged node keeps the id of the first strand it met.
// Running it twice has no further effect. It returns the number of merges.
func (g *Graph) Concatenate() int {
	merged := 0
	for i := 1; i < len(g.nodes); i++ {
		for _, s := range [2]NodeID{NodeID(i), -NodeID(i)} {
			for g.nodes[i].live {
				next, ok := g.simpleSuccessor(s)
				if !ok {
					break
				}
				g.RemoveArc(s, next)
				g.absorb(s, next, nil, g.k-1, false)
				merged++
			}
		}
	}
	return merged
}

func (g *Graph) simpleSuccessor(s NodeID) (NodeID, bool) {
	out := *g.outList(s)
	if len(out) != 1 {
		return 0, false
	}
	next := out[0].To
	if next == s || next == -s || g.InDegree(next) != 1 {
		return 0, false
	}
	return next, true
}

// Thread merges a, the repeat strands of path and b into one node by copying
// the repeat sequence between them. Every other arc leaving a or entering b
// is dropped. Repeat nodes left without any arc are destroyed. The arcs along
// a→path→b must exist.
func (g *Graph) Thread(a NodeID, path []NodeID, b NodeID) {
	g.checkJoin(a, b)
	prev := a
	for _, r := range path {
		if r.Abs() == a.Abs() || r.Abs() == b.Abs() {
			panic(fmt.Sprintf("graph: thread %d→%d passes through an endpoint", a, b))
		}
		g.mustArc(prev, r)
		prev = r
	}
	g.mustArc(prev, b)

	var bridge []byte
	for _, r := range path {
		bridge = append(bridge, g.Sequence(r)[g.k-1:]...)
	}
	g.cutOut(a)
	g.cutOut(-b)
	g.absorb(a, b, bridge, g.k-1, false)

	for _, r := range path {
		if g.Exists(r) && g.OutDegree(r) == 0 && g.InDegree(r) == 0 {
			g.DestroyNode(r)
		}
	}
}

// Scaffold joins the end of a to the start of b, gap letters apart. A
// positive gap becomes a run of at least MinGapLength N letters with a gap
// marker. A zero gap butts the two sequences together, and a negative one
// drops the first -gap letters of b as shared with the end of a. Every arc
// leaving a or entering b is dropped. Gap markers must be active.
func (g *Graph) Scaffold(a, b NodeID, gap int) {
	if !g.gapMarkers {
		panic("graph: scaffold requested before gap markers were activated")
	}
	g.checkJoin(a, b)
	g.cutOut(a)
	g.cutOut(-b)
	if gap > 0 {
		g.absorb(a, b, dna.Gap(max(gap, MinGapLength)), 0, true)
		return
	}
	shared := min(-gap, g.NucleotideLength(a), g.NucleotideLength(b)-1)
	g.absorb(a, b, nil, shared, false)
}

func (g *Graph) checkJoin(a, b NodeID) {
	g.rec(a)
	g.rec(b)
	if a.Abs() == b.Abs() {
		panic(fmt.Sprintf("graph: cannot join %d to %d", a, b))
	}
}

func (g *Graph) mustArc(from, to NodeID) {
	if _, ok := g.Arc(from, to); !ok {
		panic(fmt.Sprintf("graph: no arc %d→%d", from, to))
	}
}

// absorb appends strand b to strand a and destroys b. The first trim letters
// of b are shared with whatever precedes them. The caller must have removed
// every arc leaving a and entering b.
func (g *Graph) absorb(a, b NodeID, bridge []byte, trim int, marker bool) {
	ra, rb := g.rec(a), g.rec(b)
	seqA, seqB := g.Sequence(a), g.Sequence(b)
	lenA, lenB := len(seqA), len(seqB)

	merged := make([]byte, 0, lenA+len(bridge)+lenB)
	merged = append(merged, seqA...)
	merged = append(merged, bridge...)
	merged = append(merged, seqB[trim:]...)
	join := len(bridge) - trim
	grown := len(merged) - lenA

	gaps := orientGaps(ra.gaps, lenA, a < 0)
	for _, x := range orientGaps(rb.gaps, lenB, b < 0) {
		if x.Offset < trim {
			x.Length -= trim - x.Offset
			x.Offset = trim
		}
		if x.Length > 0 {
			gaps = append(gaps, Gap{Offset: x.Offset + lenA + join, Length: x.Length})
		}
	}
	if marker {
		gaps = append(gaps, Gap{Offset: lenA, Length: len(bridge)})
	}
	sortGaps(gaps)

	onA, onB := g.PlacementsOn(a), g.PlacementsOn(b)
	for _, p := range onA {
		g.deletePlacement(p)
	}
	for _, p := range onB {
		g.deletePlacement(p)
	}

	outB := g.Arcs(b)
	g.detachArcs(b.Abs())

	for c := range ra.cov {
		ra.cov[c] += rb.cov[c]
	}
	if a > 0 {
		ra.seq, ra.gaps = merged, gaps
	} else {
		ra.seq, ra.gaps = dna.RevComp(merged), orientGaps(gaps, len(merged), true)
	}
	*rb = node{}
	g.live--

	for _, p := range onA {
		if p.Node == -a {
			p.Offset += grown
		}
		g.AddPlacement(p)
	}
	for _, p := range onB {
		if p.Node == b {
			p.Node, p.Offset = a, p.Offset+lenA+join
		} else {
			p.Node = -a
		}
		g.AddPlacement(p)
	}
	for _, arc := range outB {
		to := arc.To
		if to == -b {
			to = -a
		}
		g.AddArc(a, to, arc.Multiplicity)
	}
}

// orientGaps converts gap markers between forward and reverse coordinates of
// a sequence of length n.
func orientGaps(gaps []Gap, n int, reverse bool) []Gap {
	out := make([]Gap, len(gaps))
	for i, x := range gaps {
		if reverse {
			x.Offset = n - x.Offset - x.Length
		}
		out[i] = x
	}
	sortGaps(out)
	return out
}

func sortGaps(gaps []Gap) {
	sort.Slice(gaps, func(i, j int) bool { return gaps[i].Offset < gaps[j].Offset })
}
