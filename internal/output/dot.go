package output

import (
	"fmt"
	"io"
	"strconv"

	"contigr/internal/graph"

	"github.com/awalterschulze/gographviz"
)

func dotName(n graph.NodeID) string { return "n" + strconv.Itoa(int(n.Abs())) }

func strandSign(n graph.NodeID) string {
	if n < 0 {
		return "-"
	}
	return "+"
}

// WriteDOT draws the graph for Graphviz. Each node appears once; an arc and
// its twin share one edge labelled with the strands it joins.
func WriteDOT(w io.Writer, r *Result) error {
	g := r.Graph
	d := gographviz.NewGraph()
	if err := d.SetName("contigr"); err != nil {
		return err
	}
	if err := d.SetDir(true); err != nil {
		return err
	}
	for _, id := range g.Nodes() {
		attr := map[string]string{
			"shape": "box",
			"label": fmt.Sprintf("\"%d\\nlen %d\\ncov %.1f\"", id, g.Length(id), g.Density(id)),
		}
		if err := d.AddNode("contigr", dotName(id), attr); err != nil {
			return err
		}
	}
	for _, id := range g.Nodes() {
		for _, s := range [2]graph.NodeID{id, -id} {
			for _, a := range g.Arcs(s) {
				if s < -a.To {
					continue
				}
				attr := map[string]string{
					"label": fmt.Sprintf("\"%s%s x%d\"", strandSign(s), strandSign(a.To), a.Multiplicity),
				}
				if err := d.AddEdge(dotName(s), dotName(a.To), true, attr); err != nil {
					return err
				}
			}
		}
	}
	_, err := io.WriteString(w, d.String())
	return err
}
