package graph

import "math"

// Placement records where a read aligns on the graph. Node is the strand the
// read lies on; Offset is the first aligned letter in that strand's
// coordinates.
type Placement struct {
	Read       ReadID
	Node       NodeID
	Offset     int
	Length     int
	ReadOffset int
}

// End is the letter just past the aligned stretch on Node.
func (p Placement) End() int { return p.Offset + p.Length }

func placementByNode(a, b Placement) bool {
	if x, y := a.Node.Abs(), b.Node.Abs(); x != y {
		return x < y
	}
	if a.Read != b.Read {
		return a.Read < b.Read
	}
	if a.ReadOffset != b.ReadOffset {
		return a.ReadOffset < b.ReadOffset
	}
	if a.Node != b.Node {
		return a.Node < b.Node
	}
	return a.Offset < b.Offset
}

func placementByRead(a, b Placement) bool {
	if a.Read != b.Read {
		return a.Read < b.Read
	}
	if a.ReadOffset != b.ReadOffset {
		return a.ReadOffset < b.ReadOffset
	}
	if x, y := a.Node.Abs(), b.Node.Abs(); x != y {
		return x < y
	}
	if a.Node != b.Node {
		return a.Node < b.Node
	}
	return a.Offset < b.Offset
}

// AddPlacement stores p. The node must be live.
func (g *Graph) AddPlacement(p Placement) {
	g.rec(p.Node)
	g.byNode.Set(p)
	g.byRead.Set(p)
}

// PlacementsOn returns every placement on either strand of n, ordered by read.
func (g *Graph) PlacementsOn(n NodeID) []Placement {
	id := n.Abs()
	var out []Placement
	g.byNode.Ascend(Placement{Node: id, Read: math.MinInt32, ReadOffset: math.MinInt}, func(p Placement) bool {
		if p.Node.Abs() != id {
			return false
		}
		out = append(out, p)
		return true
	})
	return out
}

// PlacementsOf returns the placements of read r along the read, skipping any
// that refer to destroyed nodes.
func (g *Graph) PlacementsOf(r ReadID) []Placement {
	var out []Placement
	g.byRead.Ascend(Placement{Read: r, ReadOffset: math.MinInt}, func(p Placement) bool {
		if p.Read != r {
			return false
		}
		if g.Exists(p.Node) {
			out = append(out, p)
		}
		return true
	})
	return out
}

// PlacementCount is the number of stored placements.
func (g *Graph) PlacementCount() int { return g.byRead.Len() }

// PlacedReads counts distinct reads with at least one placement.
func (g *Graph) PlacedReads() int {
	n := 0
	last := ReadID(-1)
	g.byRead.Scan(func(p Placement) bool {
		if p.Read != last {
			n++
			last = p.Read
		}
		return true
	})
	return n
}

// Placements visits every placement ordered by node, then read.
func (g *Graph) Placements(visit func(Placement) bool) { g.byNode.Scan(visit) }

func (g *Graph) deletePlacement(p Placement) {
	g.byNode.Delete(p)
	g.byRead.Delete(p)
}

func (g *Graph) dropPlacements(id NodeID) {
	for _, p := range g.PlacementsOn(id) {
		g.deletePlacement(p)
	}
}
