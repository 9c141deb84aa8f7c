// Package pebble resolves repeats with read pairs. Starting from unique
// (single-copy) nodes it looks for mate pairs that span a junction, finds the
// route through repeat nodes whose length agrees with the library insert
// size, and threads the unique nodes together along it. When no route exists
// it can join them across a gap instead.
package pebble

import (
	"context"
	"log/slog"
	"sort"

	"contigr/internal/ctxlog"
	"contigr/internal/graph"
	"contigr/internal/insert"
	"contigr/internal/reads"

	"gonum.org/v1/gonum/stat"
)

// Search bounds for routes through repeats.
const (
	DefaultMaxPathNodes = 12
	DefaultMaxPaths     = 64
)

// Config tunes the engine.
type Config struct {
	ExpectedCoverage float64
	MinPairCount     int
	LongMultCutoff   int
	Scaffolding      bool
	MaxPathNodes     int
	MaxPaths         int
}

// Report counts what the engine did.
type Report struct {
	Categories      []int
	Rounds          int
	Threaded        int
	LongThreaded    int
	Scaffolded      int
	CoherentPairs   int
	JunctionsBefore int
	JunctionsAfter  int
	UniqueNodes     int
}

// Engine runs resolution over one graph and read set.
type Engine struct {
	g      *graph.Graph
	rs     *reads.Set
	cfg    Config
	unique []bool
	log    *slog.Logger
	rep    Report
}

// New prepares an engine and fixes the unique node classification.
func New(g *graph.Graph, rs *reads.Set, cfg Config) *Engine {
	if cfg.MaxPathNodes <= 0 {
		cfg.MaxPathNodes = DefaultMaxPathNodes
	}
	if cfg.MaxPaths <= 0 {
		cfg.MaxPaths = DefaultMaxPaths
	}
	if cfg.MinPairCount < 1 {
		cfg.MinPairCount = 1
	}
	e := &Engine{g: g, rs: rs, cfg: cfg, log: ctxlog.FromContext(context.Background())}
	e.classify()
	return e
}

// ActiveCategories lists the short libraries with an insert length in
// ascending order, followed by the long library when it has one.
func ActiveCategories(g *graph.Graph) []int {
	var cats []int
	for c := 0; c < graph.Categories; c++ {
		if _, ok := g.Insert(c); ok {
			cats = append(cats, c)
		}
	}
	if _, ok := g.Insert(graph.LongCategory); ok {
		cats = append(cats, graph.LongCategory)
	}
	return cats
}

// Run threads long reads, then performs one round per active category plus
// one. Round r uses the first r+1 categories. It stops early once every
// category is active and a round changes nothing.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	e.log = ctxlog.FromContext(ctx)
	cats := ActiveCategories(e.g)
	e.rep.Categories = cats
	e.rep.JunctionsBefore = e.Junctions()
	for _, id := range e.g.Nodes() {
		if e.Unique(id) {
			e.rep.UniqueNodes++
		}
	}
	e.log.Info("resolving repeats", "unique_nodes", e.rep.UniqueNodes, "junctions", e.rep.JunctionsBefore, "categories", cats)

	if e.cfg.LongMultCutoff > 0 {
		e.rep.LongThreaded = e.ThreadLongReads()
	}

	total := 1 + len(cats)
	for r := 0; r < total; r++ {
		if err := ctx.Err(); err != nil {
			return e.rep, err
		}
		n := len(cats)
		if r+1 < n {
			n = r + 1
		}
		resolved := e.Round(cats[:n])
		e.rep.Rounds++
		e.log.Debug("resolution round", "round", r+1, "categories", cats[:n], "resolved", resolved, "junctions", e.Junctions())
		if resolved == 0 && n == len(cats) {
			break
		}
	}
	e.rep.JunctionsAfter = e.Junctions()
	return e.rep, nil
}

type pair struct {
	read graph.ReadID
	stat insert.Stat
	head int // letters from the read's first letter to the end of the source node
	tail int // letters from the target node start to the mate's first letter
}

func (p pair) separation(d int) float64 { return float64(p.head + d + p.tail) }

// impliedGap is the distance between the two nodes that would make the pair
// span exactly the expected insert length.
func (p pair) impliedGap() float64 { return p.stat.Length - float64(p.head+p.tail) }

type candidate struct {
	target  graph.NodeID
	path    []graph.NodeID
	gap     int
	support int
	dev     float64
}

func (c *candidate) better(o *candidate) bool {
	if o == nil {
		return true
	}
	if c.dev != o.dev {
		return c.dev < o.dev
	}
	if c.support != o.support {
		return c.support > o.support
	}
	if a, b := c.target.Abs(), o.target.Abs(); a != b {
		return a < b
	}
	if c.target != o.target {
		return c.target < o.target
	}
	return lessPath(c.path, o.path)
}

func lessPath(a, b []graph.NodeID) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// Round visits every open unique end once, using pairs from the given
// categories, and returns the number of ends it extended.
func (e *Engine) Round(cats []int) int {
	var active [graph.Slots]bool
	for _, c := range cats {
		active[c] = true
	}
	var ends []graph.NodeID
	for _, id := range e.g.Nodes() {
		if !e.Unique(id) {
			continue
		}
		for _, s := range [2]graph.NodeID{id, -id} {
			if e.open(s) {
				ends = append(ends, s)
			}
		}
	}
	resolved := 0
	for _, a := range ends {
		if !e.g.Exists(a) || !e.open(a) {
			continue
		}
		if e.resolve(a, &active) {
			resolved++
		}
	}
	return resolved
}

func (e *Engine) resolve(a graph.NodeID, active *[graph.Slots]bool) bool {
	ev := e.evidence(a, active)
	if len(ev) == 0 {
		return false
	}
	targets := make([]graph.NodeID, 0, len(ev))
	for b := range ev {
		targets = append(targets, b)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	var best, bestGap *candidate
	for _, b := range targets {
		pairs := ev[b]
		if len(pairs) < e.cfg.MinPairCount {
			continue
		}
		paths, gaps := e.paths(a, b, pairs)
		if len(paths) == 0 {
			if c := e.gapCandidate(b, pairs); c != nil && c.better(bestGap) {
				bestGap = c
			}
			continue
		}
		for i, p := range paths {
			c := score(b, p, gaps[i], pairs)
			if c.support >= e.cfg.MinPairCount && e.canEnter(b, p, a) && c.better(best) {
				best = c
			}
		}
	}

	switch {
	case best != nil:
		e.g.Thread(a, best.path, best.target)
		e.rep.Threaded++
		e.rep.CoherentPairs += best.support
		e.log.Debug("threaded", "from", a, "to", best.target, "via", best.path, "pairs", best.support)
		return true
	case bestGap != nil:
		e.rep.CoherentPairs += bestGap.support
		if !e.cfg.Scaffolding || !e.g.GapMarkersActive() || !e.canEnter(bestGap.target, nil, a) {
			return false
		}
		e.g.Scaffold(a, bestGap.target, bestGap.gap)
		e.rep.Scaffolded++
		e.log.Debug("scaffolded", "from", a, "to", bestGap.target, "gap", bestGap.gap, "pairs", bestGap.support)
		return true
	}
	return false
}

// evidence groups the mate pairs leaving the end of a by the unique strand
// their mate starts, read in the direction of a.
func (e *Engine) evidence(a graph.NodeID, active *[graph.Slots]bool) map[graph.NodeID][]pair {
	ev := make(map[graph.NodeID][]pair)
	lenA := e.g.NucleotideLength(a)
	last := graph.ReadID(-1)
	for _, p := range e.g.PlacementsOn(a) {
		if p.Node != a || p.Read == last {
			continue
		}
		last = p.Read
		r := e.rs.Get(p.Read)
		if !active[r.Library] {
			continue
		}
		st, ok := e.g.Insert(r.Library)
		if !ok {
			continue
		}
		mate, ok := e.rs.Mate(p.Read)
		if !ok {
			continue
		}
		seen := make(map[graph.NodeID]bool)
		for _, q := range e.g.PlacementsOf(mate) {
			b := -q.Node
			if b.Abs() == a.Abs() || seen[b] || !e.Unique(b) {
				continue
			}
			seen[b] = true
			ev[b] = append(ev[b], pair{
				read: p.Read,
				stat: st,
				head: lenA - (p.Offset - p.ReadOffset),
				tail: e.g.NucleotideLength(b) - (q.Offset - q.ReadOffset),
			})
		}
	}
	return ev
}

// paths enumerates routes from a to b through repeat nodes, each with the
// distance from the end of a to the start of b.
func (e *Engine) paths(a, b graph.NodeID, pairs []pair) ([][]graph.NodeID, []int) {
	k := e.g.WordLength()
	maxGap := 0.0
	for i, p := range pairs {
		if d := p.stat.Max() - float64(p.head+p.tail); i == 0 || d > maxGap {
			maxGap = d
		}
	}

	var (
		found [][]graph.NodeID
		gaps  []int
		path  []graph.NodeID
	)
	onPath := make(map[graph.NodeID]bool)
	var walk func(from graph.NodeID, gap int)
	walk = func(from graph.NodeID, gap int) {
		for _, arc := range e.g.Arcs(from) {
			if len(found) >= e.cfg.MaxPaths {
				return
			}
			t := arc.To
			if t == b {
				found = append(found, append([]graph.NodeID(nil), path...))
				gaps = append(gaps, gap)
				continue
			}
			if t.Abs() == a.Abs() || t.Abs() == b.Abs() || e.Unique(t) || onPath[t.Abs()] {
				continue
			}
			next := gap + e.g.Length(t)
			if len(path) >= e.cfg.MaxPathNodes || float64(next) > maxGap {
				continue
			}
			onPath[t.Abs()] = true
			path = append(path, t)
			walk(t, next)
			path = path[:len(path)-1]
			delete(onPath, t.Abs())
		}
	}
	walk(a, -(k - 1))
	return found, gaps
}

func score(b graph.NodeID, path []graph.NodeID, gap int, pairs []pair) *candidate {
	c := &candidate{target: b, path: path, gap: gap}
	var devs []float64
	for _, p := range pairs {
		sep := p.separation(gap)
		if p.stat.Accepts(sep) {
			devs = append(devs, p.stat.Deviation(sep))
		}
	}
	c.support = len(devs)
	if c.support > 0 {
		c.dev = stat.Mean(devs, nil)
	}
	return c
}

// gapCandidate estimates the distance between the end of a and the start of
// b as the mean implied gap, and counts the pairs that agree with it.
func (e *Engine) gapCandidate(b graph.NodeID, pairs []pair) *candidate {
	implied := make([]float64, len(pairs))
	for i, p := range pairs {
		implied[i] = p.impliedGap()
	}
	mean := stat.Mean(implied, nil)
	gap := int(mean + 0.5)
	if mean < 0 {
		gap = int(mean - 0.5)
	}
	c := score(b, nil, gap, pairs)
	if c.support < e.cfg.MinPairCount {
		return nil
	}
	return c
}

// canEnter reports whether the start of b may be claimed by a: every
// predecessor of b other than the last repeat on the route must be a repeat.
func (e *Engine) canEnter(b graph.NodeID, path []graph.NodeID, a graph.NodeID) bool {
	via := a
	if len(path) > 0 {
		via = path[len(path)-1]
	}
	for _, p := range e.g.Predecessors(b) {
		if p != via && e.Unique(p) {
			return false
		}
	}
	return true
}
