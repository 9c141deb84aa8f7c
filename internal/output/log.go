package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"contigr/internal/graph"
	"contigr/internal/version"
)

// RunLog is what one run appends to the working directory's Log.
type RunLog struct {
	RunID         string
	Started       time.Time
	Args          []string
	Summary       graph.Summary
	TotalReads    int
	MinKmerLength int
	Categories    []int
	Rounds        int
}

// FinalLine is the closing statistics line of a run.
func (l RunLog) FinalLine() string {
	return fmt.Sprintf("Final graph has %d nodes and n50 of %d, max %d, total %d, using %d/%d reads",
		l.Summary.Nodes, l.Summary.N50, l.Summary.Max, l.Summary.Total, l.Summary.PlacedReads, l.TotalReads)
}

// AppendLog adds l to the log file at path, creating it if needed.
func AppendLog(path string, l RunLog) (err error) {
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fh.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	var b strings.Builder
	fmt.Fprintf(&b, "%s run %s\n", l.Started.Format(time.ANSIC), l.RunID)
	fmt.Fprintf(&b, "contigr %s\n", strings.Join(l.Args, " "))
	fmt.Fprintf(&b, "Version %s\n", version.Version)
	fmt.Fprintf(&b, "Minimum contig k-mer length %d, libraries %v, resolution rounds %d\n", l.MinKmerLength, l.Categories, l.Rounds)
	fmt.Fprintf(&b, "%s\n\n", l.FinalLine())
	_, err = fh.WriteString(b.String())
	return err
}
