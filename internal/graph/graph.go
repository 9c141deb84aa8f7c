// Package graph is the in-memory de Bruijn graph: an arena of node records
// addressed by signed ids, where the negated id names the reverse complement
// strand (the twin) of the same record.
//
// A node and its twin share one record, so coverage and destruction are
// always identical for both. Every arc a→b is stored together with its twin
// arc -b→-a. Operations that receive a destroyed or unknown id panic: that is
// a broken caller, never bad input.
package graph

import (
	"fmt"

	"contigr/internal/dna"
	"contigr/internal/insert"

	"github.com/tidwall/btree"
)

const (
	// Categories is the number of short-read libraries.
	Categories = 2
	// LongCategory indexes the long-read library in per-category arrays.
	LongCategory = Categories
	// Slots is the length of per-category arrays (short libraries plus long).
	Slots = Categories + 1
)

// NodeID names one strand of a node. The twin strand is -id. Zero is never a
// valid id.
type NodeID int32

// Twin returns the reverse complement strand.
func (n NodeID) Twin() NodeID { return -n }

// Abs returns the record index of n.
func (n NodeID) Abs() NodeID {
	if n < 0 {
		return -n
	}
	return n
}

// ReadID is the 0-based input index of a read.
type ReadID int32

// Arc is an outgoing adjacency with its observation count.
type Arc struct {
	To           NodeID
	Multiplicity int
}

// Gap marks an unsequenced run of N letters, in forward-strand coordinates.
type Gap struct {
	Offset int
	Length int
}

type node struct {
	live bool
	seq  []byte
	cov  [Slots]int64
	out  [2][]Arc
	gaps []Gap
}

// Graph owns nodes, arcs, read placements and library statistics.
type Graph struct {
	k          int
	nodes      []node
	live       int
	reads      int
	inserts    [Slots]insert.Stat
	hasInsert  [Slots]bool
	gapMarkers bool

	byNode *btree.BTreeG[Placement]
	byRead *btree.BTreeG[Placement]
}

// New returns an empty graph for word length k.
func New(k int) *Graph {
	if k < 1 {
		panic(fmt.Sprintf("graph: invalid word length %d", k))
	}
	opts := btree.Options{NoLocks: true}
	return &Graph{
		k:      k,
		nodes:  make([]node, 1),
		byNode: btree.NewBTreeGOptions[Placement](placementByNode, opts),
		byRead: btree.NewBTreeGOptions[Placement](placementByRead, opts),
	}
}

// WordLength is the k of the graph.
func (g *Graph) WordLength() int { return g.k }

// NodeCount is the size of the id space, destroyed ids included.
func (g *Graph) NodeCount() int { return len(g.nodes) - 1 }

// LiveCount is the number of live nodes.
func (g *Graph) LiveCount() int { return g.live }

// ReadCount is the number of reads the graph was built from.
func (g *Graph) ReadCount() int { return g.reads }

// SetReadCount records the size of the read set the graph refers to.
func (g *Graph) SetReadCount(n int) { g.reads = n }

// AddNode appends a node with the given forward sequence and returns its id.
func (g *Graph) AddNode(seq string) NodeID {
	id := NodeID(len(g.nodes))
	g.PutNode(id, []byte(seq))
	return id
}

// PutNode creates node id with the given forward sequence. Ids skipped over
// are left destroyed.
func (g *Graph) PutNode(id NodeID, seq []byte) {
	if id <= 0 {
		panic(fmt.Sprintf("graph: node id %d must be positive", id))
	}
	if len(seq) < g.k {
		panic(fmt.Sprintf("graph: node %d shorter than word length (%d < %d)", id, len(seq), g.k))
	}
	for int(id) >= len(g.nodes) {
		g.nodes = append(g.nodes, node{})
	}
	r := &g.nodes[id]
	if r.live {
		panic(fmt.Sprintf("graph: node %d already exists", id))
	}
	*r = node{live: true, seq: append([]byte(nil), seq...)}
	g.live++
}

// Reserve grows the id space to at least n ids; new ids are destroyed.
func (g *Graph) Reserve(n int) {
	for len(g.nodes) <= n {
		g.nodes = append(g.nodes, node{})
	}
}

// Exists reports whether n names a live node.
func (g *Graph) Exists(n NodeID) bool {
	i := int(n.Abs())
	return i > 0 && i < len(g.nodes) && g.nodes[i].live
}

func (g *Graph) rec(n NodeID) *node {
	i := int(n.Abs())
	if i == 0 || i >= len(g.nodes) {
		panic(fmt.Sprintf("graph: node %d out of range", n))
	}
	r := &g.nodes[i]
	if !r.live {
		panic(fmt.Sprintf("graph: node %d is destroyed", n))
	}
	return r
}

func side(n NodeID) int {
	if n > 0 {
		return 0
	}
	return 1
}

// Nodes returns the live node ids in ascending order.
func (g *Graph) Nodes() []NodeID {
	ids := make([]NodeID, 0, g.live)
	for i := 1; i < len(g.nodes); i++ {
		if g.nodes[i].live {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

// Length is the k-mer adjusted length of n.
func (g *Graph) Length(n NodeID) int { return len(g.rec(n).seq) - (g.k - 1) }

// NucleotideLength is the number of letters stored for n.
func (g *Graph) NucleotideLength(n NodeID) int { return len(g.rec(n).seq) }

// Sequence returns the letters of strand n.
func (g *Graph) Sequence(n NodeID) []byte {
	r := g.rec(n)
	if n > 0 {
		return append([]byte(nil), r.seq...)
	}
	return dna.RevComp(r.seq)
}

// Gaps returns the gap markers of n in forward-strand coordinates.
func (g *Graph) Gaps(n NodeID) []Gap { return append([]Gap(nil), g.rec(n).gaps...) }

// AddGap records a gap marker on n. Used when restoring an exported graph.
func (g *Graph) AddGap(n NodeID, gap Gap) {
	r := g.rec(n)
	r.gaps = append(r.gaps, gap)
	sortGaps(r.gaps)
}

// Coverage is the observation count of n in category cat.
func (g *Graph) Coverage(n NodeID, cat int) int64 { return g.rec(n).cov[cat] }

// SetCoverage overwrites the observation count of n in category cat.
func (g *Graph) SetCoverage(n NodeID, cat int, v int64) { g.rec(n).cov[cat] = v }

// AddCoverage increments the observation count of n in category cat.
func (g *Graph) AddCoverage(n NodeID, cat int, v int64) { g.rec(n).cov[cat] += v }

// ShortCoverage sums the short-read categories of n.
func (g *Graph) ShortCoverage(n NodeID) int64 {
	r := g.rec(n)
	var sum int64
	for c := 0; c < Categories; c++ {
		sum += r.cov[c]
	}
	return sum
}

// Density is the short-read coverage of n per k-mer.
func (g *Graph) Density(n NodeID) float64 {
	return float64(g.ShortCoverage(n)) / float64(g.Length(n))
}

// CategoryDensity is the coverage of n in one category per k-mer.
func (g *Graph) CategoryDensity(n NodeID, cat int) float64 {
	return float64(g.Coverage(n, cat)) / float64(g.Length(n))
}

// DestroyNode removes n and its twin together with every incident arc and
// every read placement on it.
func (g *Graph) DestroyNode(n NodeID) {
	r := g.rec(n)
	g.detachArcs(n.Abs())
	g.dropPlacements(n.Abs())
	*r = node{}
	g.live--
}

// SetInsertLength stores the insert statistic of category cat. A negative
// length clears it; a negative deviation defaults to 10% of the length,
// rounded down.
func (g *Graph) SetInsertLength(cat int, length, stdDev float64) {
	if cat < 0 || cat >= Slots {
		panic(fmt.Sprintf("graph: category %d out of range", cat))
	}
	if length < 0 {
		g.inserts[cat], g.hasInsert[cat] = insert.Stat{}, false
		return
	}
	if stdDev < 0 {
		stdDev = insert.DefaultSD(length)
	}
	g.inserts[cat], g.hasInsert[cat] = insert.Stat{Length: length, StdDev: stdDev}, true
}

// Insert returns the insert statistic of category cat, if configured.
func (g *Graph) Insert(cat int) (insert.Stat, bool) {
	if cat < 0 || cat >= Slots {
		return insert.Stat{}, false
	}
	return g.inserts[cat], g.hasInsert[cat]
}

// ActivateGapMarkers allows scaffold links to be written into the graph.
func (g *Graph) ActivateGapMarkers() { g.gapMarkers = true }

// GapMarkersActive reports whether ActivateGapMarkers was called.
func (g *Graph) GapMarkersActive() bool { return g.gapMarkers }
