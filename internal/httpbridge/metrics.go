package httpbridge

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultMetricsPrefix = "onair_bridge"

// executorMetrics holds Prometheus metrics for executor monitoring
type executorMetrics struct {
	queueDepth prometheus.Gauge
	spawned    prometheus.Counter
	dropped    prometheus.Counter
	completed  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newExecutorMetrics(reg prometheus.Registerer, prefix string) (*executorMetrics, error) {
	m := &executorMetrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_executor_queue_depth",
			Help: "Tasks waiting for a free worker",
		}),
		spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_executor_spawned_total",
			Help: "Total tasks accepted by the executor",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_executor_dropped_total",
			Help: "Total tasks rejected because the queue was full or the executor stopped",
		}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_executor_completed_total",
			Help: "Total tasks run to completion",
		}, []string{"status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_executor_task_duration_seconds",
			Help:    "Time spent running tasks",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"status"}),
	}
	if err := register(reg, m.queueDepth, m.spawned, m.dropped, m.completed, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// arenaMetrics tracks slot transitions
type arenaMetrics struct {
	submitted      prometheus.Counter
	dispatched     prometheus.Counter
	submitFailures prometheus.Counter
	inflight       prometheus.Gauge
	results        *prometheus.CounterVec
}

func newArenaMetrics(reg prometheus.Registerer, prefix string) (*arenaMetrics, error) {
	m := &arenaMetrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_requests_submitted_total",
			Help: "Total requests attached to slots",
		}),
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_requests_dispatched_total",
			Help: "Total requests handed to the executor",
		}),
		submitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_submit_failures_total",
			Help: "Total requests dropped because a task couldn't be spawned",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_inflight",
			Help: "Slots currently waiting on a background task",
		}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_results_total",
			Help: "Total results written to slots",
		}, []string{"outcome"}),
	}
	if err := register(reg, m.submitted, m.dispatched, m.submitFailures, m.inflight, m.results); err != nil {
		return nil, err
	}
	return m, nil
}

func register(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}
	return nil
}

func outcomeLabel(res Result) string {
	switch {
	case res.Err != nil:
		return "error"
	case res.Status >= 200 && res.Status < 300:
		return "success"
	default:
		return "status_" + statusClass(res.Status)
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "other"
	}
}
