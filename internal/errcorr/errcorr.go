// Package errcorr runs the coverage based clean-up that precedes repeat
// resolution: low coverage removal, high coverage removal, tip clipping.
package errcorr

import (
	"context"

	"contigr/internal/ctxlog"
	"contigr/internal/graph"
)

// Config holds the operator cutoffs. Nil means the pass is not requested.
type Config struct {
	CoverageCutoff *float64
	MaxCoverage    *float64
}

// Report summarises one run of the passes.
type Report struct {
	LowRemoved  int
	HighRemoved int
	Clipped     int
	Dubious     *graph.Dubious
}

// Run applies the passes in their fixed order. A missing coverage cutoff is
// logged as a warning and the low coverage pass is skipped.
func Run(ctx context.Context, g *graph.Graph, cfg Config) Report {
	log := ctxlog.FromContext(ctx)
	var rep Report

	if cfg.CoverageCutoff == nil {
		log.Warn("no coverage cutoff provided; low coverage errors will be left in the graph")
		rep.Dubious = &graph.Dubious{}
	} else {
		rep.Dubious, rep.LowRemoved = g.RemoveLowCoverageNodes(*cfg.CoverageCutoff)
		log.Info("removed low coverage nodes", "cutoff", *cfg.CoverageCutoff, "nodes", rep.LowRemoved, "dubious_reads", rep.Dubious.Len())
	}

	if cfg.MaxCoverage != nil {
		rep.HighRemoved = g.RemoveHighCoverageNodes(*cfg.MaxCoverage)
		log.Info("removed high coverage nodes", "cutoff", *cfg.MaxCoverage, "nodes", rep.HighRemoved)
	}

	rep.Clipped = g.ClipTipsHard()
	log.Info("clipped tips", "nodes", rep.Clipped, "remaining", g.LiveCount())
	return rep
}
