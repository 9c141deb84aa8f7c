package graph

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Contig is one exported node.
type Contig struct {
	ID       NodeID
	Length   int
	Density  float64
	Sequence []byte
}

// Name is the FASTA identifier of the contig.
func (c Contig) Name() string {
	return fmt.Sprintf("NODE_%d_length_%d_cov_%f", c.ID, c.Length, c.Density)
}

// ExportLongNodeSequences calls emit for every live node whose k-mer length
// is at least minLength, in ascending id order. It stops at the first error
// emit returns. Each call walks the graph from the start.
func (g *Graph) ExportLongNodeSequences(minLength int, emit func(Contig) error) error {
	for i := 1; i < len(g.nodes); i++ {
		if !g.nodes[i].live {
			continue
		}
		id := NodeID(i)
		l := g.Length(id)
		if l < minLength {
			continue
		}
		c := Contig{ID: id, Length: l, Density: g.Density(id), Sequence: g.Sequence(id)}
		if err := emit(c); err != nil {
			return err
		}
	}
	return nil
}

// NodeStat is one row of the per-node statistics table.
type NodeStat struct {
	ID      NodeID
	Length  int
	Out     int
	In      int
	Density [Slots]float64
}

// Summary describes the graph as a whole.
type Summary struct {
	Nodes       int
	N50         int
	Max         int
	Total       int
	MeanDensity float64
	PlacedReads int
}

// Statistics returns the per-node table in id order and the summary.
func (g *Graph) Statistics() ([]NodeStat, Summary) {
	ids := g.Nodes()
	rows := make([]NodeStat, 0, len(ids))
	lengths := make([]int, 0, len(ids))
	dens := make([]float64, 0, len(ids))
	weights := make([]float64, 0, len(ids))
	for _, id := range ids {
		row := NodeStat{ID: id, Length: g.Length(id), Out: g.OutDegree(id), In: g.InDegree(id)}
		for c := 0; c < Slots; c++ {
			row.Density[c] = g.CategoryDensity(id, c)
		}
		rows = append(rows, row)
		lengths = append(lengths, row.Length)
		dens = append(dens, g.Density(id))
		weights = append(weights, float64(row.Length))
	}
	sum := Summary{Nodes: len(ids), PlacedReads: g.PlacedReads()}
	if len(ids) == 0 {
		return rows, sum
	}
	sum.N50, sum.Max, sum.Total = n50(lengths)
	sum.MeanDensity = stat.Mean(dens, weights)
	return rows, sum
}

func n50(lengths []int) (n50, max, total int) {
	sorted := append([]int(nil), lengths...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, l := range sorted {
		total += l
	}
	if len(sorted) == 0 {
		return 0, 0, 0
	}
	max = sorted[0]
	acc := 0
	for _, l := range sorted {
		acc += l
		if 2*acc >= total {
			return l, max, total
		}
	}
	return sorted[len(sorted)-1], max, total
}
