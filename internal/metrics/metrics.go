// Package metrics exports run counters in the Prometheus text format so that a
// node_exporter textfile collector can pick them up after each scan.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nao1215/reconchain/internal/model"
)

const namespace = "reconchain"

// Recorder collects the metrics of one run on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	stageItems    *prometheus.GaugeVec
	stageSeconds  *prometheus.GaugeVec
	stageSuccess  *prometheus.GaugeVec
	findings      *prometheus.GaugeVec
	runsTotal     *prometheus.CounterVec
	lastRunTime   *prometheus.GaugeVec
	lastRunLength *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stageItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_items",
			Help:      "Items produced by a stage (subdomains, live hosts, findings).",
		}, []string{"target", "stage"}),
		stageSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of a stage.",
		}, []string{"target", "stage"}),
		stageSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_success",
			Help:      "1 if the stage succeeded, 0 otherwise.",
		}, []string{"target", "stage"}),
		findings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "findings",
			Help:      "Findings of the last scan by severity.",
		}, []string{"target", "severity"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Runs finished, by outcome.",
		}, []string{"target", "outcome"}),
		lastRunTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}, []string{"target"}),
		lastRunLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall-clock duration of the last run.",
		}, []string{"target"}),
	}

	collectors := []prometheus.Collector{
		r.stageItems,
		r.stageSeconds,
		r.stageSuccess,
		r.findings,
		r.runsTotal,
		r.lastRunTime,
		r.lastRunLength,
	}
	for _, c := range collectors {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return r, nil
}

// Registry returns the registry the collectors are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStage records one stage result.
func (r *Recorder) ObserveStage(target string, result model.StageResult, elapsed time.Duration) {
	stage := result.Stage.String()
	r.stageItems.WithLabelValues(target, stage).Set(float64(result.Count))
	r.stageSeconds.WithLabelValues(target, stage).Set(elapsed.Seconds())
	r.stageSuccess.WithLabelValues(target, stage).Set(boolToFloat(result.Success))
}

// ObserveSummary records the end-of-run values.
func (r *Recorder) ObserveSummary(s model.Summary) {
	for _, sev := range model.Severities() {
		r.findings.WithLabelValues(s.Target, sev.Label()).Set(float64(s.Vulnerabilities.Count(sev)))
	}
	r.runsTotal.WithLabelValues(s.Target, string(s.Outcome)).Inc()
	if !s.FinishedAt.IsZero() {
		r.lastRunTime.WithLabelValues(s.Target).Set(float64(s.FinishedAt.Unix()))
		r.lastRunLength.WithLabelValues(s.Target).Set(s.FinishedAt.Sub(s.StartedAt).Seconds())
	}
}

// WriteToTextfile writes the registry to path atomically.
func (r *Recorder) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
