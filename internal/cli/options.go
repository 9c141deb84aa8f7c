// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"contigr/internal/config"
	"contigr/internal/graph"
)

// ErrUsage marks a command line that cannot be understood.
var ErrUsage = errors.New("usage error")

// Options holds the parsed command line. Set carries only the options that
// were given, ready to be applied over a params file.
type Options struct {
	Dir        string
	ConfigPath string
	Set        config.File
	Version    bool
}

// NewFlagSet returns a FlagSet with ContinueOnError and the tool's usage.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	installUsage(fs, name)
	return fs
}

var insFlag = regexp.MustCompile(`^ins-length(\d+)(-sd)?$`)

// checkLibraryFlags rejects numbered insert flags outside the supported
// libraries before the flag package reports them as merely undefined.
func checkLibraryFlags(argv []string) error {
	for _, arg := range argv {
		if arg == "--" {
			return nil
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name = name[:eq]
		}
		m := insFlag.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err != nil || n < 1 || n > graph.Categories {
			return fmt.Errorf("%w: unknown option %s (libraries run 1..%d)", ErrUsage, arg, graph.Categories)
		}
	}
	return nil
}

// ParseArgs registers and parses all flags. The working directory is the
// single positional argument and may appear anywhere.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool
	var libs [graph.Slots]config.Library
	s := &opt.Set

	if err := checkLibraryFlags(argv); err != nil {
		return opt, err
	}

	// Standard
	fs.Var(optFloat{&s.CoverageCutoff}, "cov-cutoff", "remove nodes below this coverage")
	fs.Var(optFloat{&s.ExpectedCoverage}, "exp-cov", "expected coverage of unique regions")
	fs.Var(optBool{&s.ReadTracking}, "read-tracking", "keep read positions (yes|no)")
	fs.Var(optInt{&s.MinContigLength}, "min-contig-length", "shortest exported contig")
	fs.Var(optBool{&s.AmosFile}, "amos-file", "write velvet_asm.afg (yes|no)")

	// Libraries
	for c := 0; c < graph.Categories; c++ {
		n := strconv.Itoa(c + 1)
		fs.Var(optInt{&libs[c].InsertLength}, "ins-length"+n, "insert length of library "+n)
		fs.Var(optInt{&libs[c].InsertSD}, "ins-length"+n+"-sd", "insert standard deviation of library "+n)
	}
	fs.Var(optInt{&libs[0].InsertLength}, "ins-length", "alias of --ins-length1")
	fs.Var(optInt{&libs[0].InsertSD}, "ins-length-sd", "alias of --ins-length1-sd")
	fs.Var(optInt{&libs[graph.LongCategory].InsertLength}, "ins-length-long", "insert length of long read pairs")
	fs.Var(optInt{&libs[graph.LongCategory].InsertSD}, "ins-length-long-sd", "insert standard deviation of long read pairs")

	// Advanced
	fs.Var(optBool{&s.Scaffolding}, "scaffolding", "link contigs across gaps (yes|no)")
	fs.Var(optInt{&s.MinPairCount}, "min-pair-count", "pairs needed to join two contigs")
	fs.Var(optFloat{&s.MaxCoverage}, "max-coverage", "remove nodes above this coverage")
	fs.Var(optInt{&s.LongMultCutoff}, "long-mult-cutoff", "long reads needed to merge contigs")
	bubble := &config.BubbleFile{}
	fs.Var(optInt{&bubble.MaxBranchLength}, "max-branch-length", "longest bubble branch")
	fs.Var(optFloat{&bubble.MaxDivergence}, "max-divergence", "highest bubble branch divergence")
	fs.Var(optInt{&bubble.MaxGapCount}, "max-gap-count", "most gaps in a bubble alignment")

	// Output
	fs.Var(optBool{&s.Dot}, "dot", "write graph.dot (yes|no)")
	fs.Var(optString{&s.MetricsFile}, "metrics-file", "Prometheus text file")

	// Misc
	fs.StringVar(&opt.ConfigPath, "config", "", "params file (.yaml, .yml, .hcl)")
	fs.Var(optString{&s.LogLevel}, "log-level", "debug | info | warn | error")
	fs.Var(optString{&s.LogFormat}, "log-format", "text | json")
	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand)")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand)")
	fs.BoolVar(&help, "help", false, "show this help message")

	flagArgs, posArgs := splitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return opt, err
	}
	if help {
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}
	posArgs = append(posArgs, fs.Args()...)

	switch len(posArgs) {
	case 0:
		return opt, fmt.Errorf("%w: missing working directory", ErrUsage)
	case 1:
		opt.Dir = posArgs[0]
	default:
		return opt, fmt.Errorf("%w: unexpected argument %q", ErrUsage, posArgs[1])
	}

	for c, lib := range libs {
		if lib.InsertLength != nil || lib.InsertSD != nil {
			lib.Name = config.LibraryName(c)
			s.Libraries = append(s.Libraries, lib)
		}
	}
	if bubble.MaxBranchLength != nil || bubble.MaxDivergence != nil || bubble.MaxGapCount != nil {
		s.Bubble = bubble
	}
	return opt, nil
}
