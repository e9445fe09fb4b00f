package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JakeFAU/linkrot/internal/progress"
)

// PrometheusSink exports audit progress via Prometheus collectors.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted *prometheus.CounterVec
	runRuntime    *prometheus.HistogramVec

	linksChecked  *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	batchPending  prometheus.Gauge

	remediations *prometheus.CounterVec
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linkrot_runs_started_total",
			Help: "Audit runs that have started.",
		}),
		runsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linkrot_runs_completed_total",
			Help: "Audit runs completed partitioned by result.",
		}, []string{"result"}),
		runRuntime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "linkrot_run_duration_seconds",
			Help:    "Wall time per audit run, including prompts.",
			Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600},
		}, []string{"result"}),
		linksChecked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linkrot_links_checked_total",
			Help: "Link checks partitioned by liveness and status class.",
		}, []string{"liveness", "status_class"}),
		checkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "linkrot_check_duration_seconds",
			Help:    "Link check latency partitioned by liveness.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"liveness"}),
		batchPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "linkrot_checks_pending",
			Help: "Checks remaining in the current batch.",
		}),
		remediations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linkrot_remediations_total",
			Help: "Remediation outcomes per dead bookmark.",
		}, []string{"outcome"}),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runRuntime,
		s.linksChecked,
		s.checkDuration,
		s.batchPending,
		s.remediations,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors from the batch. Safe for concurrent use.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart:
		s.runsStarted.Inc()
	case progress.StageRunDone:
		s.finishRun(evt, "success")
	case progress.StageRunError:
		s.finishRun(evt, "error")
	case progress.StageBatchStart, progress.StageBatchDone:
		s.batchPending.Set(float64(evt.Total - evt.Done))
	case progress.StageCheckDone:
		s.handleCheck(evt)
	case progress.StageRemediation:
		s.remediations.WithLabelValues(evt.Outcome).Inc()
	}
}

func (s *PrometheusSink) finishRun(evt progress.Event, result string) {
	s.runsCompleted.WithLabelValues(result).Inc()
	if evt.Dur > 0 {
		s.runRuntime.WithLabelValues(result).Observe(evt.Dur.Seconds())
	}
}

func (s *PrometheusSink) handleCheck(evt progress.Event) {
	liveness := livenessLabel(evt.Dead)
	statusClass := string(evt.StatusClass)
	if statusClass == "" {
		statusClass = string(progress.StatusOther)
	}
	s.linksChecked.WithLabelValues(liveness, statusClass).Inc()
	s.batchPending.Set(float64(evt.Total - evt.Done))
	if evt.Dur > 0 {
		s.checkDuration.WithLabelValues(liveness).Observe(evt.Dur.Seconds())
	}
}

func livenessLabel(dead bool) string {
	if dead {
		return "dead"
	}
	return "live"
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

