// internal/runutil/runutil.go
package runutil

import "path/filepath"

// MinContigKmerLength converts the requested minimum contig length in letters
// into the k-mer length filter used at export. Without a request, or with one
// shorter than 2k, every node of at least k k-mers is kept.
func MinContigKmerLength(k int, minContigLength *int) int {
	if minContigLength == nil || *minContigLength < 2*k {
		return k
	}
	return *minContigLength - k + 1
}

// GraphFile picks the graph file of a working directory: Graph2 carries read
// positions and is needed when reads are tracked.
func GraphFile(dir string, readTracking bool) string {
	if readTracking {
		return filepath.Join(dir, "Graph2")
	}
	return filepath.Join(dir, "Graph")
}

// Working directory file names.
const (
	SequencesFile = "Sequences"
	ContigsFile   = "contigs.fa"
	StatsFile     = "stats.txt"
	LastGraphFile = "LastGraph"
	AMOSFile      = "velvet_asm.afg"
	DOTFile       = "graph.dot"
	LogFile       = "Log"
)
