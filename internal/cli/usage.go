// internal/cli/usage.go
package cli

import (
	"flag"
	"fmt"

	"contigr/internal/config"
	"contigr/internal/version"
)

func installUsage(fs *flag.FlagSet, name string) {
	fs.Usage = func() {
		out := fs.Output()
		d := config.Defaults()

		fmt.Fprintf(out, "%s – de Bruijn graph error removal and repeat resolution\n\n", name)
		fmt.Fprintf(out, "Version: %s\n\n", version.Version)
		fmt.Fprintf(out, "Usage:\n  %s <directory> [options]\n\n", name)
		fmt.Fprintln(out, "  directory                     working directory holding Graph (or Graph2) and Sequences")

		fmt.Fprintln(out, "\nStandard:")
		fmt.Fprintln(out, "      --cov-cutoff float        remove nodes below this coverage (default: no removal)")
		fmt.Fprintln(out, "      --ins-length int          insert length of library 1 (default: no pairing)")
		fmt.Fprintln(out, "      --read-tracking yes|no    keep read positions in the graph (default: no)")
		fmt.Fprintln(out, "      --min-contig-length int   shortest contig written to contigs.fa (default: 2k)")
		fmt.Fprintln(out, "      --amos-file yes|no        also write velvet_asm.afg (default: no)")
		fmt.Fprintln(out, "      --exp-cov float           expected coverage of unique regions (default: no repeat resolution)")

		fmt.Fprintln(out, "\nAdvanced:")
		fmt.Fprintf(out, "      --ins-length2 int         insert length of library 2 (default: no pairing)\n")
		fmt.Fprintf(out, "      --ins-length-long int     insert length of long read pairs (default: no pairing)\n")
		fmt.Fprintf(out, "      --ins-length*-sd int      standard deviation of the matching library (default: 10%% of length)\n")
		fmt.Fprintf(out, "      --scaffolding yes|no      link contigs across gaps with read pairs [%t]\n", d.Scaffolding)
		fmt.Fprintf(out, "      --max-branch-length int   longest bubble branch [%d]\n", d.Bubble.MaxBranchLength)
		fmt.Fprintf(out, "      --max-divergence float    highest divergence between bubble branches [%g]\n", d.Bubble.MaxDivergence)
		fmt.Fprintf(out, "      --max-gap-count int       most gaps in a bubble branch alignment [%d]\n", d.Bubble.MaxGapCount)
		fmt.Fprintf(out, "      --min-pair-count int      pairs needed to join two contigs [%d]\n", d.MinPairCount)
		fmt.Fprintln(out, "      --max-coverage float      remove nodes above this coverage (default: no removal)")
		fmt.Fprintf(out, "      --long-mult-cutoff int    long reads needed to merge contigs [%d]\n", d.LongMultCutoff)

		fmt.Fprintln(out, "\nOutput:")
		fmt.Fprintln(out, "      --dot yes|no              also write graph.dot (default: no)")
		fmt.Fprintln(out, "      --metrics-file path       write run metrics in Prometheus text format")

		fmt.Fprintln(out, "\nMiscellaneous:")
		fmt.Fprintln(out, "      --config path             params file (.yaml, .yml or .hcl); flags win over it")
		fmt.Fprintf(out, "      --log-level string        debug | info | warn | error [%s]\n", d.LogLevel)
		fmt.Fprintf(out, "      --log-format string       text | json [%s]\n", d.LogFormat)
		fmt.Fprintln(out, "  -v, --version                 print version and exit")
		fmt.Fprintln(out, "  -h, --help                    show this help and exit")

		fmt.Fprintln(out, "\nOutputs in directory:")
		fmt.Fprintln(out, "  contigs.fa, stats.txt, LastGraph, Log, velvet_asm.afg (opt.), graph.dot (opt.)")
	}
}
