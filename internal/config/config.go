// Package config resolves run parameters from defaults, an optional params
// file (YAML or HCL) and command-line overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"contigr/internal/graph"
	"contigr/internal/insert"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks a parameter outside its allowed range.
var ErrInvalid = errors.New("invalid parameter")

// Defaults of a run without options.
const (
	DefaultMinPairCount    = 10
	DefaultLongMultCutoff  = 2
	DefaultMaxBranchLength = 100
	DefaultMaxDivergence   = 0.2
	DefaultMaxGapCount     = 3
)

// LongLibrary names the long-read library in params files.
const LongLibrary = "long"

// Library is the insert size of one paired library. Length nil or negative
// leaves the library unpaired.
type Library struct {
	Name         string `hcl:"name,label" yaml:"name"`
	InsertLength *int   `hcl:"insert_length,optional" yaml:"insert_length"`
	InsertSD     *int   `hcl:"insert_sd,optional" yaml:"insert_sd"`
}

// BubbleFile holds the bubble tolerances of a params file.
type BubbleFile struct {
	MaxBranchLength *int     `hcl:"max_branch_length,optional" yaml:"max_branch_length"`
	MaxDivergence   *float64 `hcl:"max_divergence,optional" yaml:"max_divergence"`
	MaxGapCount     *int     `hcl:"max_gap_count,optional" yaml:"max_gap_count"`
}

// File is a params file, or the set of flags given on the command line.
// Nil fields were not mentioned.
type File struct {
	CoverageCutoff   *float64    `hcl:"coverage_cutoff,optional" yaml:"coverage_cutoff"`
	ExpectedCoverage *float64    `hcl:"expected_coverage,optional" yaml:"expected_coverage"`
	MaxCoverage      *float64    `hcl:"max_coverage,optional" yaml:"max_coverage"`
	ReadTracking     *bool       `hcl:"read_tracking,optional" yaml:"read_tracking"`
	Scaffolding      *bool       `hcl:"scaffolding,optional" yaml:"scaffolding"`
	MinContigLength  *int        `hcl:"min_contig_length,optional" yaml:"min_contig_length"`
	MinPairCount     *int        `hcl:"min_pair_count,optional" yaml:"min_pair_count"`
	LongMultCutoff   *int        `hcl:"long_mult_cutoff,optional" yaml:"long_mult_cutoff"`
	AmosFile         *bool       `hcl:"amos_file,optional" yaml:"amos_file"`
	Dot              *bool       `hcl:"dot,optional" yaml:"dot"`
	MetricsFile      *string     `hcl:"metrics_file,optional" yaml:"metrics_file"`
	LogLevel         *string     `hcl:"log_level,optional" yaml:"log_level"`
	LogFormat        *string     `hcl:"log_format,optional" yaml:"log_format"`
	Libraries        []Library   `hcl:"library,block" yaml:"libraries"`
	Bubble           *BubbleFile `hcl:"bubble,block" yaml:"bubble"`
}

// Bubble holds the tolerances handed to the bubble aligner.
type Bubble struct {
	MaxBranchLength int
	MaxDivergence   float64
	MaxGapCount     int
}

// Params is the resolved configuration of one run.
type Params struct {
	Dir              string
	CoverageCutoff   *float64
	ExpectedCoverage float64
	MaxCoverage      *float64
	ReadTracking     bool
	Scaffolding      bool
	MinContigLength  *int
	MinPairCount     int
	LongMultCutoff   int
	AmosFile         bool
	Dot              bool
	MetricsFile      string
	LogLevel         string
	LogFormat        string
	Inserts          [graph.Slots]Library
	Bubble           Bubble

	// TrackingForced reports that Validate turned on read tracking the
	// caller had explicitly turned off.
	TrackingForced bool
	trackingSet    bool
}

// Defaults returns the parameters of a run with no options.
func Defaults() Params {
	p := Params{
		Scaffolding:    true,
		MinPairCount:   DefaultMinPairCount,
		LongMultCutoff: DefaultLongMultCutoff,
		LogLevel:       "info",
		LogFormat:      "text",
		Bubble: Bubble{
			MaxBranchLength: DefaultMaxBranchLength,
			MaxDivergence:   DefaultMaxDivergence,
			MaxGapCount:     DefaultMaxGapCount,
		},
	}
	for c := range p.Inserts {
		p.Inserts[c].Name = LibraryName(c)
	}
	return p
}

// LibraryName is the params file name of library slot c: "1", "2", … for
// short libraries and "long" for the long one.
func LibraryName(c int) string {
	if c == graph.LongCategory {
		return LongLibrary
	}
	return strconv.Itoa(c + 1)
}

// LibrarySlot maps a library name back to its slot.
func LibrarySlot(name string) (int, error) {
	if name == LongLibrary {
		return graph.LongCategory, nil
	}
	n, err := strconv.Atoi(name)
	if err != nil || n < 1 || n > graph.Categories {
		return 0, fmt.Errorf("%w: library %q (want 1..%d or %q)", ErrInvalid, name, graph.Categories, LongLibrary)
	}
	return n - 1, nil
}

// Load reads a params file. The format follows the extension: .yaml/.yml or
// .hcl.
func Load(path string) (File, error) {
	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		fh, err := os.Open(path)
		if err != nil {
			return f, err
		}
		defer func() { _ = fh.Close() }()
		dec := yaml.NewDecoder(fh)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return f, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
		}
	case ".hcl":
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return f, fmt.Errorf("failed to parse HCL file %s: %s", path, diags.Error())
		}
		if diags := gohcl.DecodeBody(file.Body, nil, &f); diags.HasErrors() {
			return f, fmt.Errorf("failed to decode HCL file %s: %s", path, diags.Error())
		}
	default:
		return f, fmt.Errorf("%w: params file %s: unknown extension (want .yaml, .yml or .hcl)", ErrInvalid, path)
	}
	return f, nil
}

// Apply overlays every field set in f onto p.
func Apply(p *Params, f File) error {
	if f.CoverageCutoff != nil {
		p.CoverageCutoff = f.CoverageCutoff
	}
	if f.ExpectedCoverage != nil {
		p.ExpectedCoverage = *f.ExpectedCoverage
	}
	if f.MaxCoverage != nil {
		p.MaxCoverage = f.MaxCoverage
	}
	if f.ReadTracking != nil {
		p.ReadTracking = *f.ReadTracking
		p.trackingSet = true
	}
	if f.Scaffolding != nil {
		p.Scaffolding = *f.Scaffolding
	}
	if f.MinContigLength != nil {
		p.MinContigLength = f.MinContigLength
	}
	if f.MinPairCount != nil {
		p.MinPairCount = *f.MinPairCount
	}
	if f.LongMultCutoff != nil {
		p.LongMultCutoff = *f.LongMultCutoff
	}
	if f.AmosFile != nil {
		p.AmosFile = *f.AmosFile
	}
	if f.Dot != nil {
		p.Dot = *f.Dot
	}
	if f.MetricsFile != nil {
		p.MetricsFile = *f.MetricsFile
	}
	if f.LogLevel != nil {
		p.LogLevel = *f.LogLevel
	}
	if f.LogFormat != nil {
		p.LogFormat = *f.LogFormat
	}
	for _, lib := range f.Libraries {
		c, err := LibrarySlot(lib.Name)
		if err != nil {
			return err
		}
		if lib.InsertLength != nil {
			p.Inserts[c].InsertLength = lib.InsertLength
		}
		if lib.InsertSD != nil {
			p.Inserts[c].InsertSD = lib.InsertSD
		}
	}
	if b := f.Bubble; b != nil {
		if b.MaxBranchLength != nil {
			p.Bubble.MaxBranchLength = *b.MaxBranchLength
		}
		if b.MaxDivergence != nil {
			p.Bubble.MaxDivergence = *b.MaxDivergence
		}
		if b.MaxGapCount != nil {
			p.Bubble.MaxGapCount = *b.MaxGapCount
		}
	}
	return nil
}

// Validate checks ranges. It also switches read tracking on when an expected
// coverage asks for repeat resolution, and sets TrackingForced when that
// overrides an explicit "no".
func Validate(p *Params) error {
	if p.Dir == "" {
		return fmt.Errorf("%w: working directory is required", ErrInvalid)
	}
	if p.ExpectedCoverage < 0 {
		return fmt.Errorf("%w: expected coverage %g is negative", ErrInvalid, p.ExpectedCoverage)
	}
	if p.MinPairCount < 1 {
		return fmt.Errorf("%w: min pair count %d must be at least 1", ErrInvalid, p.MinPairCount)
	}
	if p.LongMultCutoff < 0 {
		return fmt.Errorf("%w: long mult cutoff %d is negative", ErrInvalid, p.LongMultCutoff)
	}
	if p.MinContigLength != nil && *p.MinContigLength < 0 {
		return fmt.Errorf("%w: min contig length %d is negative", ErrInvalid, *p.MinContigLength)
	}
	for c, lib := range p.Inserts {
		if lib.InsertSD != nil && *lib.InsertSD < 0 {
			return fmt.Errorf("%w: library %s standard deviation %d is negative", ErrInvalid, LibraryName(c), *lib.InsertSD)
		}
	}
	if p.Bubble.MaxBranchLength <= 0 {
		return fmt.Errorf("%w: max branch length %d must be positive", ErrInvalid, p.Bubble.MaxBranchLength)
	}
	if p.Bubble.MaxDivergence < 0 || p.Bubble.MaxDivergence > 1 {
		return fmt.Errorf("%w: max divergence %g outside [0,1]", ErrInvalid, p.Bubble.MaxDivergence)
	}
	if p.Bubble.MaxGapCount < 0 {
		return fmt.Errorf("%w: max gap count %d is negative", ErrInvalid, p.Bubble.MaxGapCount)
	}
	switch p.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, p.LogLevel)
	}
	switch p.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, p.LogFormat)
	}
	if p.ExpectedCoverage > 0 && !p.ReadTracking {
		p.ReadTracking = true
		p.TrackingForced = p.trackingSet
	}
	return nil
}

// Insert resolves library slot c to its statistic.
func (p Params) Insert(c int) (insert.Stat, bool) {
	return insert.New(p.Inserts[c].InsertLength, p.Inserts[c].InsertSD)
}

// ActiveLibraries lists the slots with an insert length, short ones first.
func (p Params) ActiveLibraries() []int {
	var out []int
	for c := range p.Inserts {
		if _, ok := p.Insert(c); ok {
			out = append(out, c)
		}
	}
	return out
}
