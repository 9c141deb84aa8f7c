// Package output holds the file formats written into the working directory
// once the graph is final. Every format registers itself with the writers
// registry under its file name.
package output

import (
	"fmt"
	"io"

	"contigr/internal/graph"
	"contigr/internal/graphio"
	"contigr/internal/reads"
	"contigr/internal/runutil"
	"contigr/internal/seqio"
	"contigr/internal/writers"
)

// Result is the payload handed to every writer.
type Result struct {
	Graph         *graph.Graph
	Reads         *reads.Set
	MinKmerLength int
}

func init() {
	writers.Register(runutil.ContigsFile, adapt(WriteContigs))
	writers.Register(runutil.StatsFile, adapt(WriteStats))
	writers.Register(runutil.LastGraphFile, adapt(func(w io.Writer, r *Result) error { return graphio.Export(w, r.Graph) }))
	writers.Register(runutil.AMOSFile, adapt(WriteAMOS))
	writers.Register(runutil.DOTFile, adapt(WriteDOT))
}

func adapt(fn func(io.Writer, *Result) error) writers.Func {
	return func(w io.Writer, payload any) error {
		r, ok := payload.(*Result)
		if !ok {
			return fmt.Errorf("output: unexpected payload %T", payload)
		}
		return fn(w, r)
	}
}

// WriteContigs writes every node of at least MinKmerLength k-mers as FASTA.
func WriteContigs(w io.Writer, r *Result) error {
	fw := seqio.NewFASTAWriter(w)
	return r.Graph.ExportLongNodeSequences(r.MinKmerLength, func(c graph.Contig) error {
		return fw.Write(c.Name(), "", c.Sequence)
	})
}

// WriteStats writes the tab separated per-node table.
func WriteStats(w io.Writer, r *Result) error {
	rows, _ := r.Graph.Statistics()
	if _, err := fmt.Fprint(w, "ID\tlgth\tout\tin\tlong_cov"); err != nil {
		return err
	}
	for c := 0; c < graph.Categories; c++ {
		fmt.Fprintf(w, "\tshort%d_cov", c+1)
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%f", row.ID, row.Length, row.Out, row.In, row.Density[graph.LongCategory])
		for c := 0; c < graph.Categories; c++ {
			fmt.Fprintf(w, "\t%f", row.Density[c])
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
