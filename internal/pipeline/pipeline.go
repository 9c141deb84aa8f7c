// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"contigr/internal/config"
	"contigr/internal/ctxlog"
	"contigr/internal/errcorr"
	"contigr/internal/graph"
	"contigr/internal/graphio"
	"contigr/internal/metrics"
	"contigr/internal/output"
	"contigr/internal/pebble"
	"contigr/internal/reads"
	"contigr/internal/runutil"
	"contigr/internal/writers"
)

var (
	// ErrMissingGraph means the working directory has no graph to refine.
	ErrMissingGraph = errors.New("no graph file to build upon")
	// ErrMissingSequences means repeat resolution was asked for without the
	// read set it needs.
	ErrMissingSequences = errors.New("no Sequences file")
	// ErrReadMismatch means the graph places reads the read set lacks.
	ErrReadMismatch = errors.New("graph and read set disagree")
)

// Result describes a finished run.
type Result struct {
	Summary       graph.Summary
	TotalReads    int
	MinKmerLength int
	ErrorRemoval  errcorr.Report
	Resolution    pebble.Report
	Artifacts     []string
}

// Run performs every stage on p.Dir. rec may be nil.
func Run(ctx context.Context, p config.Params, rec *metrics.Recorder) (Result, error) {
	log := ctxlog.FromContext(ctx)
	var res Result

	stage := func(name string, fn func() error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		err := fn()
		rec.Stage(name, time.Since(start))
		log.Debug("stage done", "stage", name, "elapsed", time.Since(start))
		return err
	}

	if p.TrackingForced {
		log.Warn("read tracking forced on by expected coverage", "expected_coverage", p.ExpectedCoverage)
	}

	var g *graph.Graph
	var rs *reads.Set
	err := stage("load", func() (err error) {
		g, err = loadGraph(p.Dir, p.ReadTracking)
		if err != nil {
			return err
		}
		log.Info("loaded graph", "nodes", g.LiveCount(), "k", g.WordLength(), "placements", g.PlacementCount())
		rs, err = loadReads(ctx, p)
		if err != nil || rs == nil {
			return err
		}
		return checkReads(g, rs, p)
	})
	if err != nil {
		return res, err
	}

	for _, c := range p.ActiveLibraries() {
		st, _ := p.Insert(c)
		g.SetInsertLength(c, st.Length, st.StdDev)
		log.Info("insert length", "library", config.LibraryName(c), "length", st.Length, "sd", st.StdDev)
	}

	err = stage("errors", func() error {
		res.ErrorRemoval = errcorr.Run(ctx, g, errcorr.Config{
			CoverageCutoff: p.CoverageCutoff,
			MaxCoverage:    p.MaxCoverage,
		})
		rec.ErrorRemoval(res.ErrorRemoval)
		return nil
	})
	if err != nil {
		return res, err
	}

	if p.ExpectedCoverage > 0 {
		err = stage("resolve", func() (err error) {
			for _, c := range p.ActiveLibraries() {
				n := rs.PairUp(c)
				log.Debug("paired reads", "library", config.LibraryName(c), "pairs", n)
			}
			detached := rs.Detach(res.ErrorRemoval.Dubious)
			log.Debug("detached dubious reads", "reads", detached)
			if p.Scaffolding {
				g.ActivateGapMarkers()
			}
			eng := pebble.New(g, rs, pebble.Config{
				ExpectedCoverage: p.ExpectedCoverage,
				MinPairCount:     p.MinPairCount,
				LongMultCutoff:   p.LongMultCutoff,
				Scaffolding:      p.Scaffolding,
			})
			res.Resolution, err = eng.Run(ctx)
			rec.Resolution(res.Resolution)
			log.Info("resolved repeats",
				"threaded", res.Resolution.Threaded,
				"long_threaded", res.Resolution.LongThreaded,
				"scaffolded", res.Resolution.Scaffolded,
				"coherent_pairs", res.Resolution.CoherentPairs,
				"junctions", res.Resolution.JunctionsAfter)
			return err
		})
		if err != nil {
			return res, err
		}
	} else {
		log.Warn("no expected coverage provided; repeats will not be resolved")
	}

	err = stage("export", func() error {
		merged := g.Concatenate()
		log.Debug("concatenated", "merged", merged, "nodes", g.LiveCount())
		if err := g.Check(); err != nil {
			return fmt.Errorf("final graph: %w", err)
		}
		res.MinKmerLength = runutil.MinContigKmerLength(g.WordLength(), p.MinContigLength)
		res.Artifacts = artifacts(p)
		return writers.WriteAll(ctx, p.Dir, res.Artifacts, &output.Result{
			Graph:         g,
			Reads:         rs,
			MinKmerLength: res.MinKmerLength,
		})
	})
	if err != nil {
		return res, err
	}

	_, res.Summary = g.Statistics()
	res.TotalReads = g.ReadCount()
	if rs != nil && rs.Len() > 0 {
		res.TotalReads = rs.Len()
	}
	rec.Final(res.Summary)
	return res, nil
}

func artifacts(p config.Params) []string {
	names := []string{runutil.ContigsFile, runutil.StatsFile, runutil.LastGraphFile}
	if p.AmosFile {
		names = append(names, runutil.AMOSFile)
	}
	if p.Dot {
		names = append(names, runutil.DOTFile)
	}
	return names
}

func loadGraph(dir string, readTracking bool) (*graph.Graph, error) {
	path := runutil.GraphFile(dir, readTracking)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s not found; run the graph construction (hash) step on %s first",
			ErrMissingGraph, filepath.Base(path), dir)
	}
	return graphio.ReadFile(path)
}

// loadReads reads the Sequences file. It is only required for repeat
// resolution; otherwise a missing file leaves the read set nil.
func loadReads(ctx context.Context, p config.Params) (*reads.Set, error) {
	path := filepath.Join(p.Dir, runutil.SequencesFile)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if p.ExpectedCoverage > 0 {
			return nil, fmt.Errorf("%w in %s; repeat resolution needs the read set", ErrMissingSequences, p.Dir)
		}
		return nil, nil
	}
	rs, err := reads.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Info("loaded reads", "reads", rs.Len())
	return rs, nil
}

// checkReads verifies that every placed read exists in the read set.
func checkReads(g *graph.Graph, rs *reads.Set, p config.Params) error {
	top := graph.ReadID(-1)
	g.Placements(func(pl graph.Placement) bool {
		if pl.Read > top {
			top = pl.Read
		}
		return true
	})
	if int(top) < rs.Len() {
		return nil
	}
	return fmt.Errorf("%w: %s places read %d but %s holds %d reads",
		ErrReadMismatch, runutil.GraphFile(p.Dir, p.ReadTracking), top, filepath.Join(p.Dir, runutil.SequencesFile), rs.Len())
}
