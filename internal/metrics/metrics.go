// Package metrics records generation counters on a per-run prometheus
// registry.
package metrics

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder exports generation metrics. A nil *Recorder records nothing.
type Recorder struct {
	reg *prometheus.Registry

	units    *prometheus.CounterVec
	methods  *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the generation metrics on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apigen_units_total",
			Help: "Generated files by target language.",
		}, []string{"language"}),
		methods: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apigen_methods_synthesized_total",
			Help: "Synthesized method bodies by target language and method kind.",
		}, []string{"language", "kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apigen_target_failures_total",
			Help: "Targets whose generation failed.",
		}, []string{"language"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "apigen_target_duration_seconds",
			Help:    "Wall time of one target generation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"language"}),
	}
	r.reg.MustRegister(r.units, r.methods, r.failures, r.duration)
	return r
}

// Registry returns the registry the metrics are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// Units adds n generated files for language.
func (r *Recorder) Units(language string, n int) {
	if r != nil {
		r.units.WithLabelValues(language).Add(float64(n))
	}
}

// Method counts one synthesized method body.
func (r *Recorder) Method(language, kind string) {
	if r != nil {
		r.methods.WithLabelValues(language, kind).Inc()
	}
}

// Failure counts a failed target.
func (r *Recorder) Failure(language string) {
	if r != nil {
		r.failures.WithLabelValues(language).Inc()
	}
}

// Duration observes the generation time of a target.
func (r *Recorder) Duration(language string, d time.Duration) {
	if r != nil {
		r.duration.WithLabelValues(language).Observe(d.Seconds())
	}
}

// WriteToTextfile writes the metrics in the text exposition format, for
// the node exporter textfile collector.
func (r *Recorder) WriteToTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return errors.Wrapf(err, "write metrics %s", path)
	}
	return nil
}
