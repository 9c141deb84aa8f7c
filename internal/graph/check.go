package graph

import (
	"errors"
	"fmt"
)

// Check verifies the structural invariants: every arc joins live nodes, every
// arc has a twin with the same multiplicity, and every placement lies on a
// live node within its bounds.
func (g *Graph) Check() error {
	var errs []error
	live := 0
	for i := 1; i < len(g.nodes); i++ {
		r := &g.nodes[i]
		if !r.live {
			if len(r.out[0])+len(r.out[1]) > 0 {
				errs = append(errs, fmt.Errorf("destroyed node %d still has arcs", i))
			}
			continue
		}
		live++
		if len(r.seq) < g.k {
			errs = append(errs, fmt.Errorf("node %d shorter than word length", i))
		}
		for _, s := range [2]NodeID{NodeID(i), -NodeID(i)} {
			for _, a := range *g.outList(s) {
				if !g.Exists(a.To) {
					errs = append(errs, fmt.Errorf("arc %d→%d reaches a missing node", s, a.To))
					continue
				}
				twin, ok := g.Arc(-a.To, -s)
				switch {
				case !ok:
					errs = append(errs, fmt.Errorf("arc %d→%d has no twin", s, a.To))
				case twin.Multiplicity != a.Multiplicity:
					errs = append(errs, fmt.Errorf("arc %d→%d multiplicity %d, twin %d", s, a.To, a.Multiplicity, twin.Multiplicity))
				}
			}
		}
	}
	if live != g.live {
		errs = append(errs, fmt.Errorf("live count %d, records %d", g.live, live))
	}
	g.byNode.Scan(func(p Placement) bool {
		if !g.Exists(p.Node) {
			errs = append(errs, fmt.Errorf("read %d placed on missing node %d", p.Read, p.Node))
			return true
		}
		if p.Offset < 0 || p.End() > g.NucleotideLength(p.Node) {
			errs = append(errs, fmt.Errorf("read %d placed outside node %d", p.Read, p.Node))
		}
		return true
	})
	if g.byNode.Len() != g.byRead.Len() {
		errs = append(errs, fmt.Errorf("placement indexes disagree: %d vs %d", g.byNode.Len(), g.byRead.Len()))
	}
	return errors.Join(errs...)
}
