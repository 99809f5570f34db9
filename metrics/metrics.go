// Package metrics records content reloads and site builds as Prometheus
// metrics.
package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the plume metrics. A nil *Recorder discards everything.
type Recorder struct {
	reloads       *prom.CounterVec
	records       prom.Gauge
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	buildFiles    prom.Gauge
	buildBytes    prom.Gauge
	publishes     *prom.CounterVec
}

// NewRecorder constructs the metrics and registers them on reg. A nil reg
// gets a private registry.
func NewRecorder(reg prom.Registerer) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		reloads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "plume",
			Name:      "content_reloads_total",
			Help:      "Content directory reloads by result",
		}, []string{"result"}),
		records: prom.NewGauge(prom.GaugeOpts{
			Namespace: "plume",
			Name:      "content_records",
			Help:      "Records in the current content snapshot",
		}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "plume",
			Name:      "build_duration_seconds",
			Help:      "Duration of static site builds",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "plume",
			Name:      "build_outcomes_total",
			Help:      "Static site builds by outcome",
		}, []string{"outcome"}),
		buildFiles: prom.NewGauge(prom.GaugeOpts{
			Namespace: "plume",
			Name:      "build_files",
			Help:      "Files written by the last successful build",
		}),
		buildBytes: prom.NewGauge(prom.GaugeOpts{
			Namespace: "plume",
			Name:      "build_bytes",
			Help:      "Bytes written by the last successful build",
		}),
		publishes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "plume",
			Name:      "publishes_total",
			Help:      "Publish runs by target and outcome",
		}, []string{"target", "outcome"}),
	}
	reg.MustRegister(r.reloads, r.records, r.buildDuration, r.buildOutcome, r.buildFiles, r.buildBytes, r.publishes)
	return r
}

func outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

// ObserveReload counts a content reload and the resulting record count.
func (r *Recorder) ObserveReload(records int, err error) {
	if r == nil {
		return
	}
	r.reloads.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		r.records.Set(float64(records))
	}
}

// ObserveBuild records a finished build.
func (r *Recorder) ObserveBuild(d time.Duration, files int, bytes int64, err error) {
	if r == nil {
		return
	}
	r.buildOutcome.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return
	}
	r.buildDuration.Observe(d.Seconds())
	r.buildFiles.Set(float64(files))
	r.buildBytes.Set(float64(bytes))
}

// ObservePublish counts a publish run to target ("s3" or "git").
func (r *Recorder) ObservePublish(target string, err error) {
	if r == nil {
		return
	}
	r.publishes.WithLabelValues(target, outcome(err)).Inc()
}
