package pebble

import (
	"context"
	"testing"

	"contigr/internal/dna"
	"contigr/internal/graph"
	"contigr/internal/reads"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const k = 21

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

// xRepeat is two unique entries A1, A2 and two unique exits B1, B2 sharing
// one short repeat R. Ids: A1=1 A2=2 R=3 B1=4 B2=5.
type xRepeat struct {
	g                 *graph.Graph
	a1, a2, r, b1, b2 string
}

func newXRepeat(t *testing.T) *xRepeat {
	t.Helper()
	x := &xRepeat{
		a1: randomSeq(120, 1),
		a2: randomSeq(120, 2),
		r:  randomSeq(40, 3),
		b1: randomSeq(120, 4),
		b2: randomSeq(120, 5),
	}
	g := graph.New(k)
	for _, s := range []string{x.a1, x.a2, x.r, x.b1, x.b2} {
		id := g.AddNode(s)
		g.SetCoverage(id, 0, int64(10*g.Length(id)))
	}
	g.SetCoverage(3, 0, 20*20)
	g.AddArc(1, 3, 5)
	g.AddArc(2, 3, 5)
	g.AddArc(3, 4, 5)
	g.AddArc(3, 5, 5)
	require.NoError(t, g.Check())
	x.g = g
	return x
}

// addPairs places n pairs of 30-letter reads so that each read lies on strand
// from and its mate on the reverse of strand to, with the given distance
// between the end of from and the start of to.
func addPairs(t *testing.T, g *graph.Graph, rs *reads.Set, from, to graph.NodeID, gap, insertLen, n int) {
	t.Helper()
	addLibraryPairs(t, g, rs, 0, from, to, gap, insertLen, n)
}

func addLibraryPairs(t *testing.T, g *graph.Graph, rs *reads.Set, lib int, from, to graph.NodeID, gap, insertLen, n int) {
	t.Helper()
	lenA, lenB := g.NucleotideLength(from), g.NucleotideLength(to)
	for i := 0; i < n; i++ {
		r, err := rs.Add("fwd", lib, true, 30)
		require.NoError(t, err)
		m, err := rs.Add("rev", lib, true, 30)
		require.NoError(t, err)
		s := 10 + 5*i
		tail := insertLen - (lenA - s) - gap
		g.AddPlacement(graph.Placement{Read: r, Node: from, Offset: s, Length: 30})
		g.AddPlacement(graph.Placement{Read: m, Node: -to, Offset: lenB - tail, Length: 30})
	}
}

func TestIsUnique(t *testing.T) {
	x := newXRepeat(t)
	assert.True(t, IsUnique(x.g, 1, 10))
	assert.False(t, IsUnique(x.g, 3, 10), "short nodes are never unique")
	assert.False(t, IsUnique(x.g, 1, 0))

	g := graph.New(k)
	id := g.AddNode(randomSeq(120, 9))
	g.SetCoverage(id, 0, int64(20*g.Length(id)))
	assert.False(t, IsUnique(g, id, 10), "twice the expected density")
}

func TestJunctions(t *testing.T) {
	x := newXRepeat(t)
	e := New(x.g, reads.NewSet(), Config{ExpectedCoverage: 10})
	assert.Equal(t, 4, e.Junctions())
	assert.False(t, e.Unique(3))
	assert.True(t, e.Unique(-4))
}

func TestThreadsRepeatWithPairs(t *testing.T) {
	x := newXRepeat(t)
	x.g.SetInsertLength(0, 200, 20)
	rs := reads.NewSet()
	addPairs(t, x.g, rs, 1, 4, 0, 200, 4)
	addPairs(t, x.g, rs, 2, 5, 0, 200, 4)
	rs.PairUp(0)

	e := New(x.g, rs, Config{ExpectedCoverage: 10, MinPairCount: 3})
	rep, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Threaded)
	assert.Equal(t, 4, rep.JunctionsBefore)
	assert.Zero(t, rep.JunctionsAfter)
	assert.Equal(t, 2, rep.Rounds)
	assert.Equal(t, 8, rep.CoherentPairs)
	assert.Equal(t, 2, x.g.LiveCount())
	assert.Equal(t, x.a1+x.r[k-1:]+x.b1[k-1:], string(x.g.Sequence(1)))
	assert.Equal(t, x.a2+x.r[k-1:]+x.b2[k-1:], string(x.g.Sequence(2)))
	assert.False(t, x.g.Exists(3))
	require.NoError(t, x.g.Check())

	for _, p := range x.g.PlacementsOn(1) {
		assert.Contains(t, []graph.NodeID{1, -1}, p.Node)
	}
}

func TestLaterRoundsPoolLibraries(t *testing.T) {
	x := newXRepeat(t)
	x.g.SetInsertLength(0, 200, 20)
	x.g.SetInsertLength(1, 200, 20)
	x.g.SetInsertLength(graph.LongCategory, 3000, 300)
	rs := reads.NewSet()
	for _, lib := range []int{0, 1} {
		addLibraryPairs(t, x.g, rs, lib, 1, 4, 0, 200, 2)
		addLibraryPairs(t, x.g, rs, lib, 2, 5, 0, 200, 2)
		rs.PairUp(lib)
	}

	e := New(x.g, rs, Config{ExpectedCoverage: 10, MinPairCount: 3})
	assert.Zero(t, e.Round([]int{0}), "two pairs per library are too few alone")
	assert.Zero(t, e.Round([]int{1}))
	require.Equal(t, 5, x.g.LiveCount())

	rep, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, graph.LongCategory}, rep.Categories)
	assert.Equal(t, 3, rep.Rounds, "round 2 pools both libraries, round 3 finds nothing left")
	assert.Equal(t, 2, rep.Threaded)
	assert.Equal(t, 8, rep.CoherentPairs)
	assert.Zero(t, rep.JunctionsAfter)
	assert.Equal(t, x.a1+x.r[k-1:]+x.b1[k-1:], string(x.g.Sequence(1)))
	assert.Equal(t, x.a2+x.r[k-1:]+x.b2[k-1:], string(x.g.Sequence(2)))
	require.NoError(t, x.g.Check())
}

func TestTooFewPairsLeavesGraph(t *testing.T) {
	x := newXRepeat(t)
	x.g.SetInsertLength(0, 200, 20)
	rs := reads.NewSet()
	addPairs(t, x.g, rs, 1, 4, 0, 200, 2)
	rs.PairUp(0)

	rep, err := New(x.g, rs, Config{ExpectedCoverage: 10, MinPairCount: 3}).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rep.Threaded)
	assert.Equal(t, 4, rep.JunctionsAfter)
	assert.Equal(t, 5, x.g.LiveCount())
}

func TestInconsistentPairsAreIgnored(t *testing.T) {
	x := newXRepeat(t)
	x.g.SetInsertLength(0, 200, 5)
	rs := reads.NewSet()
	// Pairs imply a 60 letter gap where the only route has none.
	addPairs(t, x.g, rs, 1, 4, 60, 200, 4)
	rs.PairUp(0)

	rep, err := New(x.g, rs, Config{ExpectedCoverage: 10, MinPairCount: 3}).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rep.Threaded)
	assert.Equal(t, 5, x.g.LiveCount())
}

func TestDetachedReadsGiveNoEvidence(t *testing.T) {
	x := newXRepeat(t)
	x.g.SetInsertLength(0, 200, 20)
	rs := reads.NewSet()
	addPairs(t, x.g, rs, 1, 4, 0, 200, 4)
	rs.PairUp(0)
	d := &graph.Dubious{}
	for r := graph.ReadID(0); r < 8; r += 2 {
		d.Mark(r)
	}
	rs.Detach(d)

	rep, err := New(x.g, rs, Config{ExpectedCoverage: 10, MinPairCount: 1}).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rep.Threaded)
}

// unlinkedPair is two unique 120-letter nodes with no arc between them and
// four pairs placing the start of the second gap letters after the first.
func unlinkedPair(t *testing.T, gap, insertLen int) (*graph.Graph, *reads.Set, string, string) {
	t.Helper()
	a, b := randomSeq(120, 11), randomSeq(120, 12)
	g := graph.New(k)
	for _, s := range []string{a, b} {
		id := g.AddNode(s)
		g.SetCoverage(id, 0, int64(10*g.Length(id)))
	}
	g.SetInsertLength(0, float64(insertLen), 20)
	rs := reads.NewSet()
	addPairs(t, g, rs, 1, 2, gap, insertLen, 4)
	rs.PairUp(0)
	return g, rs, a, b
}

func TestScaffoldsAcrossGap(t *testing.T) {
	g, rs, a, b := unlinkedPair(t, 50, 200)
	g.ActivateGapMarkers()

	rep, err := New(g, rs, Config{ExpectedCoverage: 10, MinPairCount: 3, Scaffolding: true}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Scaffolded)
	assert.Equal(t, 1, g.LiveCount())
	assert.Equal(t, a+string(dna.Gap(50))+b, string(g.Sequence(1)))
	assert.Equal(t, []graph.Gap{{Offset: 120, Length: 50}}, g.Gaps(1))
	require.NoError(t, g.Check())
}

func TestScaffoldsAbuttingAndOverlappingEnds(t *testing.T) {
	for _, tc := range []struct {
		name     string
		gap, ins int
		want     func(a, b string) string
		wantLen  int
	}{
		{"abutting", 0, 200, func(a, b string) string { return a + b }, 240},
		{"overlapping", -30, 170, func(a, b string) string { return a + b[30:] }, 210},
	} {
		t.Run(tc.name, func(t *testing.T) {
			g, rs, a, b := unlinkedPair(t, tc.gap, tc.ins)
			g.ActivateGapMarkers()

			rep, err := New(g, rs, Config{ExpectedCoverage: 10, MinPairCount: 3, Scaffolding: true}).Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, 1, rep.Scaffolded)
			assert.Equal(t, 1, g.LiveCount())
			assert.Equal(t, tc.want(a, b), string(g.Sequence(1)))
			assert.Equal(t, tc.wantLen, g.NucleotideLength(1))
			assert.Empty(t, g.Gaps(1), "no Ns when the ends touch")
			require.NoError(t, g.Check())
		})
	}
}

func TestReadOffsetDoesNotShiftGap(t *testing.T) {
	a, b := randomSeq(120, 11), randomSeq(120, 12)
	g := graph.New(k)
	for _, s := range []string{a, b} {
		id := g.AddNode(s)
		g.SetCoverage(id, 0, int64(10*g.Length(id)))
	}
	g.SetInsertLength(0, 200, 20)
	rs := reads.NewSet()
	// The first 5 letters of every read were not aligned.
	const skipped, gap = 5, 50
	for i := 0; i < 4; i++ {
		r, err := rs.Add("fwd", 0, true, 30)
		require.NoError(t, err)
		m, err := rs.Add("rev", 0, true, 30)
		require.NoError(t, err)
		s := 10 + 5*i
		tail := 200 - (120 - s) - gap
		g.AddPlacement(graph.Placement{Read: r, Node: 1, Offset: s + skipped, Length: 25, ReadOffset: skipped})
		g.AddPlacement(graph.Placement{Read: m, Node: -2, Offset: 120 - tail + skipped, Length: 25, ReadOffset: skipped})
	}
	rs.PairUp(0)
	g.ActivateGapMarkers()

	rep, err := New(g, rs, Config{ExpectedCoverage: 10, MinPairCount: 4, Scaffolding: true}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Scaffolded)
	assert.Equal(t, a+string(dna.Gap(gap))+b, string(g.Sequence(1)))
	require.NoError(t, g.Check())
}

func TestScaffoldingOffOnlyCounts(t *testing.T) {
	g, rs, a, _ := unlinkedPair(t, 50, 200)
	g.ActivateGapMarkers()

	rep, err := New(g, rs, Config{ExpectedCoverage: 10, MinPairCount: 3}).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, rep.Scaffolded)
	assert.Equal(t, 8, rep.CoherentPairs, "both facing ends see the link")
	assert.Equal(t, 2, g.LiveCount())
	assert.Equal(t, a, string(g.Sequence(1)))
}

func TestThreadsLongReads(t *testing.T) {
	x := newXRepeat(t)
	x.g.SetInsertLength(graph.LongCategory, 1000, -1)
	rs := reads.NewSet()
	walks := [][]graph.NodeID{
		{1, 3, 4},
		{1, 3, 4},
		{2, 3, 5},
		{-5, -3, -2},
		{1, 3, 5}, // a single read is below the cutoff
	}
	for _, w := range walks {
		r, err := rs.Add("long", graph.LongCategory, false, 300)
		require.NoError(t, err)
		for i, n := range w {
			x.g.AddPlacement(graph.Placement{Read: r, Node: n, Offset: 0, Length: 20, ReadOffset: 100 * i})
		}
	}

	rep, err := New(x.g, rs, Config{ExpectedCoverage: 10, LongMultCutoff: 2}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, rep.LongThreaded)
	assert.Zero(t, rep.JunctionsAfter)
	assert.Equal(t, 2, x.g.LiveCount())
	assert.Equal(t, rc(x.b2)+rc(x.r)[k-1:]+rc(x.a2)[k-1:], string(x.g.Sequence(-5)))
	assert.Equal(t, rc(x.b1)+rc(x.r)[k-1:]+rc(x.a1)[k-1:], string(x.g.Sequence(-4)))
	require.NoError(t, x.g.Check())
}

func TestRunHonoursCancellation(t *testing.T) {
	x := newXRepeat(t)
	x.g.SetInsertLength(0, 200, 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(x.g, reads.NewSet(), Config{ExpectedCoverage: 10}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, x.g.LiveCount())
}
