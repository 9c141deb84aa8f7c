package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"contigr/internal/errcorr"
	"contigr/internal/graph"
	"contigr/internal/pebble"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.ErrorRemoval(errcorr.Report{LowRemoved: 3, Clipped: 2})
	r.ErrorRemoval(errcorr.Report{LowRemoved: 1})
	r.Resolution(pebble.Report{Threaded: 4, Scaffolded: 1, CoherentPairs: 40, JunctionsBefore: 9, JunctionsAfter: 2})
	r.Final(graph.Summary{Nodes: 12, N50: 900, Max: 2000, Total: 7000, PlacedReads: 55})

	assert.Equal(t, 4.0, testutil.ToFloat64(r.NodesRemoved.WithLabelValues("low_coverage")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.NodesRemoved.WithLabelValues("tip")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.Resolutions.WithLabelValues("pairs")))
	assert.Equal(t, 40.0, testutil.ToFloat64(r.CoherentPairs))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Junctions.WithLabelValues("after")))
	assert.Equal(t, 900.0, testutil.ToFloat64(r.N50))
}

func TestNilRecorderIgnoresCalls(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ErrorRemoval(errcorr.Report{LowRemoved: 1})
		r.Resolution(pebble.Report{})
		r.Final(graph.Summary{})
		r.Stage("load", time.Second)
	})
}

func TestWriteFile(t *testing.T) {
	r := New()
	r.Stage("export", 1500*time.Millisecond)
	path := filepath.Join(t.TempDir(), "contigr.prom")
	require.NoError(t, r.WriteFile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `contigr_stage_duration_seconds{stage="export"} 1.5`)
	assert.Contains(t, string(b), "# HELP contigr_final_nodes")
}
