package graph

import (
	"testing"

	"contigr/internal/dna"

	"github.com/stretchr/testify/require"
)

const testK = 21

// randomSeq returns a deterministic pseudo-random nucleotide string.
func randomSeq(n int, seed uint32) string {
	const letters = "ACGT"
	b := make([]byte, n)
	x := seed*2654435761 + 1
	for i := range b {
		x = x*1664525 + 1013904223
		b[i] = letters[(x>>24)&3]
	}
	return string(b)
}

func rc(s string) string { return string(dna.RevComp([]byte(s))) }

type nodeSnap struct {
	ID         NodeID
	Seq        string
	Cov        [Slots]int64
	Out, In    []Arc
	Gaps       []Gap
	Placements []Placement
}

func snapshot(g *Graph) []nodeSnap {
	var out []nodeSnap
	for _, id := range g.Nodes() {
		s := nodeSnap{ID: id, Seq: string(g.Sequence(id)), Out: g.Arcs(id), In: g.Arcs(-id), Gaps: g.Gaps(id), Placements: g.PlacementsOn(id)}
		for c := 0; c < Slots; c++ {
			s.Cov[c] = g.Coverage(id, c)
		}
		out = append(out, s)
	}
	return out
}

func requireValid(t *testing.T, g *Graph) {
	t.Helper()
	require.NoError(t, g.Check())
}

// chain builds n nodes of nt letters each cut from one sequence so that
// consecutive nodes overlap by k-1 letters, joined by arcs 1→2→…→n.
func chain(t *testing.T, n, nt int) (*Graph, string) {
	t.Helper()
	step := nt - (testK - 1)
	full := randomSeq(step*n+testK-1, 7)
	g := New(testK)
	var prev NodeID
	for i := 0; i < n; i++ {
		id := g.AddNode(full[i*step : i*step+nt])
		g.SetCoverage(id, 0, int64(10*(i+1)))
		if prev != 0 {
			g.AddArc(prev, id, 3)
		}
		prev = id
	}
	requireValid(t, g)
	return g, full
}
