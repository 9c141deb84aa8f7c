package output

import (
	"bytes"
	"fmt"
	"io"

	"contigr/internal/graph"
)

// WriteAMOS writes the exported contigs as an AMOS message file: one CTG
// record per contig, with a TLE record for each read placed on it.
func WriteAMOS(w io.Writer, r *Result) error {
	iid := 0
	return r.Graph.ExportLongNodeSequences(r.MinKmerLength, func(c graph.Contig) error {
		iid++
		fmt.Fprintf(w, "{CTG\niid:%d\neid:%d\ncom:\n%s\n.\nseq:\n", iid, c.ID, c.Name())
		writeWrapped(w, c.Sequence)
		fmt.Fprint(w, ".\nqlt:\n")
		writeWrapped(w, bytes.Repeat([]byte{'D'}, len(c.Sequence)))
		fmt.Fprint(w, ".\n")
		n := len(c.Sequence)
		for _, p := range r.Graph.PlacementsOn(c.ID) {
			off, clr := p.Offset, fmt.Sprintf("0,%d", p.Length)
			if p.Node < 0 {
				off, clr = n-p.Offset-p.Length, fmt.Sprintf("%d,0", p.Length)
			}
			fmt.Fprintf(w, "{TLE\nsrc:%d\noff:%d\nclr:%s\n}\n", int(p.Read)+1, off, clr)
		}
		_, err := fmt.Fprint(w, "}\n")
		return err
	})
}

func writeWrapped(w io.Writer, b []byte) {
	const width = 60
	for len(b) > width {
		fmt.Fprintf(w, "%s\n", b[:width])
		b = b[width:]
	}
	fmt.Fprintf(w, "%s\n", b)
}
