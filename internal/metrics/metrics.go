// Package metrics records run statistics on a private Prometheus registry
// and writes them out in the node-exporter textfile format.
package metrics

import (
	"time"

	"contigr/internal/errcorr"
	"contigr/internal/graph"
	"contigr/internal/pebble"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "contigr"

// Recorder holds the run's metrics. A nil *Recorder ignores every call.
type Recorder struct {
	reg *prometheus.Registry

	NodesRemoved  *prometheus.CounterVec
	Resolutions   *prometheus.CounterVec
	CoherentPairs prometheus.Counter
	Junctions     *prometheus.GaugeVec
	StageSeconds  *prometheus.GaugeVec
	Nodes         prometheus.Gauge
	N50           prometheus.Gauge
	MaxLength     prometheus.Gauge
	TotalLength   prometheus.Gauge
	ReadsUsed     prometheus.Gauge
}

// New registers every metric on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		NodesRemoved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_removed_total",
			Help:      "Nodes destroyed during error removal, by pass",
		}, []string{"pass"}),
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Repeat junctions resolved, by method",
		}, []string{"method"}),
		CoherentPairs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coherent_pairs_total",
			Help:      "Read pairs that supported a resolution or scaffold link",
		}),
		Junctions: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "junctions",
			Help:      "Unresolved junctions at unique nodes",
		}, []string{"stage"}),
		StageSeconds: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each pipeline stage",
		}, []string{"stage"}),
		Nodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "final_nodes",
			Help:      "Live nodes in the final graph",
		}),
		N50: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "final_n50",
			Help:      "N50 of the final graph in k-mers",
		}),
		MaxLength: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "final_max_length",
			Help:      "Longest node of the final graph in k-mers",
		}),
		TotalLength: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "final_total_length",
			Help:      "Summed node length of the final graph in k-mers",
		}),
		ReadsUsed: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "final_reads_placed",
			Help:      "Reads with at least one placement in the final graph",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// ErrorRemoval adds the counts of one error removal run.
func (r *Recorder) ErrorRemoval(rep errcorr.Report) {
	if r == nil {
		return
	}
	r.NodesRemoved.WithLabelValues("low_coverage").Add(float64(rep.LowRemoved))
	r.NodesRemoved.WithLabelValues("high_coverage").Add(float64(rep.HighRemoved))
	r.NodesRemoved.WithLabelValues("tip").Add(float64(rep.Clipped))
}

// Resolution adds the counts of one repeat resolution run.
func (r *Recorder) Resolution(rep pebble.Report) {
	if r == nil {
		return
	}
	r.Resolutions.WithLabelValues("pairs").Add(float64(rep.Threaded))
	r.Resolutions.WithLabelValues("long_reads").Add(float64(rep.LongThreaded))
	r.Resolutions.WithLabelValues("scaffold").Add(float64(rep.Scaffolded))
	r.CoherentPairs.Add(float64(rep.CoherentPairs))
	r.Junctions.WithLabelValues("before").Set(float64(rep.JunctionsBefore))
	r.Junctions.WithLabelValues("after").Set(float64(rep.JunctionsAfter))
}

// Final records the summary of the exported graph.
func (r *Recorder) Final(s graph.Summary) {
	if r == nil {
		return
	}
	r.Nodes.Set(float64(s.Nodes))
	r.N50.Set(float64(s.N50))
	r.MaxLength.Set(float64(s.Max))
	r.TotalLength.Set(float64(s.Total))
	r.ReadsUsed.Set(float64(s.PlacedReads))
}

// Stage records how long a named stage took.
func (r *Recorder) Stage(name string, d time.Duration) {
	if r == nil {
		return
	}
	r.StageSeconds.WithLabelValues(name).Set(d.Seconds())
}

// WriteFile writes every metric to path in the text exposition format.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
