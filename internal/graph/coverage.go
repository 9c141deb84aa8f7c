package graph

import "github.com/tidwall/btree"

// Dubious is the set of reads that touched a node removed for low coverage.
type Dubious struct {
	set btree.Set[ReadID]
}

// Mark flags r as dubious.
func (d *Dubious) Mark(r ReadID) { d.set.Insert(r) }

// Has reports whether r is dubious. A nil set holds nothing.
func (d *Dubious) Has(r ReadID) bool { return d != nil && d.set.Contains(r) }

// Len is the number of dubious reads.
func (d *Dubious) Len() int {
	if d == nil {
		return 0
	}
	return d.set.Len()
}

// Each visits the dubious reads in ascending order.
func (d *Dubious) Each(visit func(ReadID)) {
	if d == nil {
		return
	}
	d.set.Scan(func(r ReadID) bool {
		visit(r)
		return true
	})
}

// RemoveLowCoverageNodes destroys every node whose density is below cutoff
// and marks each read placed on such a node as dubious. A negative cutoff
// disables the pass. It returns the dubious set and the number of nodes
// removed.
func (g *Graph) RemoveLowCoverageNodes(cutoff float64) (*Dubious, int) {
	d := &Dubious{}
	if cutoff < 0 {
		return d, 0
	}
	var doomed []NodeID
	for _, id := range g.Nodes() {
		if g.Density(id) < cutoff {
			doomed = append(doomed, id)
		}
	}
	for _, id := range doomed {
		for _, p := range g.PlacementsOn(id) {
			d.Mark(p.Read)
		}
		g.DestroyNode(id)
	}
	return d, len(doomed)
}

// RemoveHighCoverageNodes destroys every node whose density is above cutoff.
// A negative cutoff disables the pass.
func (g *Graph) RemoveHighCoverageNodes(cutoff float64) int {
	if cutoff < 0 {
		return 0
	}
	removed := 0
	for _, id := range g.Nodes() {
		if g.Density(id) > cutoff {
			g.DestroyNode(id)
			removed++
		}
	}
	return removed
}

// ClipTipsHard repeatedly destroys dead-end nodes shorter than twice the word
// length until none remain, then concatenates the surviving chains. It
// returns the number of nodes clipped.
func (g *Graph) ClipTipsHard() int {
	limit := 2 * g.k
	total := 0
	for {
		clipped := 0
		for _, id := range g.Nodes() {
			if !g.Exists(id) || g.Length(id) >= limit {
				continue
			}
			if g.OutDegree(id) == 0 || g.InDegree(id) == 0 {
				g.DestroyNode(id)
				clipped++
			}
		}
		total += clipped
		if clipped == 0 {
			break
		}
	}
	g.Concatenate()
	return total
}
