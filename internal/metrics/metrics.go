// Package metrics keeps per-run counters in a private Prometheus registry so a
// run can be exported in the node_exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wordfreq"

type Run struct {
	registry *prometheus.Registry

	FilesQueued    prometheus.Counter
	FilesProcessed prometheus.Counter
	FilesSkipped   *prometheus.CounterVec
	WalkErrors     prometheus.Counter
	Tokens         prometheus.Counter
	UniqueWords    prometheus.Gauge
	Workers        prometheus.Gauge
	Roots          prometheus.Gauge
}

func NewRun() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		FilesQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_queued_total",
			Help:      "Files pushed onto the work queue by tree walkers.",
		}),
		FilesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "Files tokenized and merged into the counter.",
		}),
		FilesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_skipped_total",
			Help:      "Files popped from the queue but not counted, by reason.",
		}, []string{"reason"}),
		WalkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "walk_errors_total",
			Help:      "Directory entries that could not be read during the walk.",
		}),
		Tokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens added to the counter.",
		}),
		UniqueWords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unique_words",
			Help:      "Distinct tokens in the final snapshot.",
		}),
		Workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "File processor goroutines.",
		}),
		Roots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "roots",
			Help:      "Validated search roots, one walker each.",
		}),
	}
	r.registry.MustRegister(
		r.FilesQueued,
		r.FilesProcessed,
		r.FilesSkipped,
		r.WalkErrors,
		r.Tokens,
		r.UniqueWords,
		r.Workers,
		r.Roots,
	)
	return r
}

func (r *Run) Skipped(reason string) {
	r.FilesSkipped.WithLabelValues(reason).Inc()
}

func (r *Run) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the registry to path atomically.
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
