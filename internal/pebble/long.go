package pebble

import (
	"sort"
	"strconv"
	"strings"

	"contigr/internal/graph"
)

type longPath struct {
	from, to graph.NodeID
	via      []graph.NodeID
	votes    int
}

func (lp *longPath) route() []graph.NodeID {
	out := make([]graph.NodeID, 0, len(lp.via)+2)
	out = append(out, lp.from)
	out = append(out, lp.via...)
	return append(out, lp.to)
}

// canonical picks one of the two readings of a path so that a route and its
// twin vote together.
func canonical(from graph.NodeID, via []graph.NodeID, to graph.NodeID) (graph.NodeID, []graph.NodeID, graph.NodeID) {
	rev := make([]graph.NodeID, len(via))
	for i, r := range via {
		rev[len(via)-1-i] = -r
	}
	fwd := append([]graph.NodeID{from}, append(append([]graph.NodeID(nil), via...), to)...)
	bwd := append([]graph.NodeID{-to}, append(rev, -from)...)
	if lessPath(bwd, fwd) {
		return -to, rev, -from
	}
	return from, via, to
}

func pathKey(from graph.NodeID, via []graph.NodeID, to graph.NodeID) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(from)))
	for _, r := range via {
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(int(r)))
	}
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(int(to)))
	return b.String()
}

// walk returns the strands a read visits in read order, with repeats of the
// same strand collapsed.
func (e *Engine) walk(r graph.ReadID) []graph.NodeID {
	var out []graph.NodeID
	for _, p := range e.g.PlacementsOf(r) {
		if n := len(out); n > 0 && out[n-1] == p.Node {
			continue
		}
		out = append(out, p.Node)
	}
	return out
}

// ThreadLongReads collects the repeat routes that long reads take between
// two unique nodes and threads every route seen at least LongMultCutoff
// times. It returns the number of routes threaded.
func (e *Engine) ThreadLongReads() int {
	votes := make(map[string]*longPath)
	for i := 0; i < e.rs.Len(); i++ {
		r := graph.ReadID(i)
		if e.rs.Get(r).Library != graph.LongCategory || e.rs.Detached(r) {
			continue
		}
		w := e.walk(r)
		start := -1
		for j, n := range w {
			if !e.Unique(n) {
				continue
			}
			if start >= 0 && j-start > 1 && e.connected(w[start:j+1]) {
				from, via, to := canonical(w[start], w[start+1:j], n)
				key := pathKey(from, via, to)
				lp, ok := votes[key]
				if !ok {
					lp = &longPath{from: from, via: append([]graph.NodeID(nil), via...), to: to}
					votes[key] = lp
				}
				lp.votes++
			}
			start = j
		}
	}

	keys := make([]string, 0, len(votes))
	for k, lp := range votes {
		if lp.votes >= e.cfg.LongMultCutoff {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return lessPath(votes[keys[i]].route(), votes[keys[j]].route())
	})

	threaded := 0
	for _, k := range keys {
		lp := votes[k]
		if !e.threadable(lp.route()) {
			continue
		}
		e.g.Thread(lp.from, lp.via, lp.to)
		threaded++
		e.log.Debug("threaded long read route", "from", lp.from, "to", lp.to, "via", lp.via, "votes", lp.votes)
	}
	return threaded
}

// connected reports whether every consecutive pair in route is joined by an
// arc and no strand appears twice.
func (e *Engine) connected(route []graph.NodeID) bool {
	seen := make(map[graph.NodeID]bool, len(route))
	for i, n := range route {
		if !e.g.Exists(n) || seen[n.Abs()] {
			return false
		}
		seen[n.Abs()] = true
		if i > 0 {
			if _, ok := e.g.Arc(route[i-1], n); !ok {
				return false
			}
		}
	}
	return true
}

// threadable checks a voted route again against the current graph, since an
// earlier thread may have consumed one of its ends.
func (e *Engine) threadable(route []graph.NodeID) bool {
	if !e.connected(route) {
		return false
	}
	for _, r := range route[1 : len(route)-1] {
		if e.Unique(r) {
			return false
		}
	}
	return true
}
