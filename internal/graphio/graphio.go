// Package graphio reads and writes the line oriented graph file exchanged
// between runs:
//
//	GRAPH <nodes> <reads> <k>
//	INSERT <category> <length> <stddev>
//	NODE <id> <cov_1> ... <cov_long>
//	SEQ <forward nucleotides>
//	GAP <node> <start> <length>
//	ARC <from> <to> <multiplicity>
//	PLACE <read> <signed node> <start> <length> <read offset>
//
// Each ARC line stands for an arc and its twin.
package graphio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"contigr/internal/graph"
	"contigr/internal/seqio"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrFormat marks a malformed graph file.
var ErrFormat = errors.New("malformed graph file")

// maxLine bounds a single SEQ line.
const maxLine = 64 << 20

// Export writes g in text form.
func Export(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "GRAPH %d %d %d\n", g.NodeCount(), g.ReadCount(), g.WordLength())
	for c := 0; c < graph.Slots; c++ {
		if st, ok := g.Insert(c); ok {
			fmt.Fprintf(bw, "INSERT %d %s %s\n", c, ftoa(st.Length), ftoa(st.StdDev))
		}
	}
	ids := g.Nodes()
	for _, id := range ids {
		fmt.Fprintf(bw, "NODE %d", id)
		for c := 0; c < graph.Slots; c++ {
			fmt.Fprintf(bw, " %d", g.Coverage(id, c))
		}
		fmt.Fprintf(bw, "\nSEQ %s\n", g.Sequence(id))
		for _, x := range g.Gaps(id) {
			fmt.Fprintf(bw, "GAP %d %d %d\n", id, x.Offset, x.Length)
		}
	}
	for _, id := range ids {
		for _, s := range [2]graph.NodeID{id, -id} {
			for _, a := range g.Arcs(s) {
				// the twin -to→-s is written from the other side
				if s >= -a.To {
					fmt.Fprintf(bw, "ARC %d %d %d\n", s, a.To, a.Multiplicity)
				}
			}
		}
	}
	g.Placements(func(p graph.Placement) bool {
		fmt.Fprintf(bw, "PLACE %d %d %d %d %d\n", p.Read, p.Node, p.Offset, p.Length, p.ReadOffset)
		return true
	})
	return bw.Flush()
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// Import parses a graph written by Export.
func Import(r io.Reader) (g *graph.Graph, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	ln := 0
	defer func() {
		// graph contract violations (duplicate ids, arcs to missing nodes)
		// surface as format errors here
		if p := recover(); p != nil {
			g, err = nil, fmt.Errorf("line %d: %w: %v", ln, ErrFormat, p)
		}
	}()

	var (
		pending graph.NodeID
		cov     [graph.Slots]int64
		nodes   int
	)
	bad := func(format string, args ...any) error {
		return fmt.Errorf("line %d: %w: %s", ln, ErrFormat, fmt.Sprintf(format, args...))
	}
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Fields(line)
		if g == nil && f[0] != "GRAPH" {
			return nil, bad("expected GRAPH header, got %q", f[0])
		}
		if pending != 0 && f[0] != "SEQ" {
			return nil, bad("NODE %d has no SEQ line", pending)
		}
		switch f[0] {
		case "GRAPH":
			if g != nil {
				return nil, bad("second GRAPH header")
			}
			v, err := ints(f[1:], 3)
			if err != nil {
				return nil, bad("%v", err)
			}
			g = graph.New(v[2])
			g.SetReadCount(v[1])
			nodes = v[0]
		case "INSERT":
			if len(f) != 4 {
				return nil, bad("INSERT wants 3 fields")
			}
			cat, err1 := strconv.Atoi(f[1])
			length, err2 := strconv.ParseFloat(f[2], 64)
			sd, err3 := strconv.ParseFloat(f[3], 64)
			if err := errors.Join(err1, err2, err3); err != nil {
				return nil, bad("%v", err)
			}
			if cat < 0 || cat >= graph.Slots {
				return nil, bad("category %d out of range", cat)
			}
			g.SetInsertLength(cat, length, sd)
		case "NODE":
			v, err := ints(f[1:], 1+graph.Slots)
			if err != nil {
				return nil, bad("%v", err)
			}
			pending = graph.NodeID(v[0])
			for c := range cov {
				cov[c] = int64(v[1+c])
			}
		case "SEQ":
			if pending == 0 || len(f) != 2 {
				return nil, bad("SEQ without NODE")
			}
			g.PutNode(pending, []byte(f[1]))
			for c, v := range cov {
				g.SetCoverage(pending, c, v)
			}
			pending = 0
		case "GAP":
			v, err := ints(f[1:], 3)
			if err != nil {
				return nil, bad("%v", err)
			}
			g.AddGap(graph.NodeID(v[0]), graph.Gap{Offset: v[1], Length: v[2]})
		case "ARC":
			v, err := ints(f[1:], 3)
			if err != nil {
				return nil, bad("%v", err)
			}
			g.AddArc(graph.NodeID(v[0]), graph.NodeID(v[1]), v[2])
		case "PLACE":
			v, err := ints(f[1:], 5)
			if err != nil {
				return nil, bad("%v", err)
			}
			g.AddPlacement(graph.Placement{
				Read:       graph.ReadID(v[0]),
				Node:       graph.NodeID(v[1]),
				Offset:     v[2],
				Length:     v[3],
				ReadOffset: v[4],
			})
		default:
			return nil, bad("unknown record %q", f[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("%w: empty input", ErrFormat)
	}
	if pending != 0 {
		return nil, bad("NODE %d has no SEQ line", pending)
	}
	g.Reserve(nodes)
	return g, nil
}

func ints(f []string, n int) ([]int, error) {
	if len(f) != n {
		return nil, fmt.Errorf("want %d fields, got %d", n, len(f))
	}
	out := make([]int, n)
	for i, s := range f {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadFile imports the graph at path, decompressing as needed.
func ReadFile(path string) (*graph.Graph, error) {
	rc, err := seqio.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	g, err := Import(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// WriteFile exports g to path. A .gz or .zst suffix compresses the output.
func WriteFile(path string, g *graph.Graph) (err error) {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fh.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var w io.WriteCloser
	switch {
	case strings.HasSuffix(path, ".gz"):
		w = gzip.NewWriter(fh)
	case strings.HasSuffix(path, ".zst"):
		zw, zerr := zstd.NewWriter(fh)
		if zerr != nil {
			return zerr
		}
		w = zw
	default:
		return Export(fh, g)
	}
	if err := Export(w, g); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
