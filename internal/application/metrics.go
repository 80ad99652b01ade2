package application

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "classence"

// Metrics is safe to use as a nil pointer; every recorder is a no-op then.
type Metrics struct {
	polls          *prometheus.CounterVec
	pollDuration   *prometheus.HistogramVec
	marks          *prometheus.CounterVec
	staleSnapshots prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "polls_total",
			Help:      "Poll ticks by task and result.",
		}, []string{"task", "result"}),
		pollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "poll_duration_seconds",
			Help:      "Duration of poll fetches by task.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task"}),
		marks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "attendance_marks_total",
			Help:      "Attendance mark attempts by outcome.",
		}, []string{"outcome"}),
		staleSnapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stale_snapshots_discarded_total",
			Help:      "Responses discarded because a newer request had been issued.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.polls, m.pollDuration, m.marks, m.staleSnapshots)
	}

	return m
}

func (m *Metrics) observePoll(task string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	m.polls.WithLabelValues(task, result).Inc()
	m.pollDuration.WithLabelValues(task).Observe(elapsed.Seconds())
}

func (m *Metrics) observeMark(outcome string) {
	if m == nil {
		return
	}
	m.marks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeStale() {
	if m == nil {
		return
	}
	m.staleSnapshots.Inc()
}
