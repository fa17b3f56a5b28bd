package app

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for the application services.
type Metrics struct {
	backgroundTasks *prometheus.CounterVec
}

// MustNewMetrics registers the collectors with reg, or the default registerer
// when reg is nil. Registration errors panic.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	backgroundTasks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "journal",
			Subsystem: "background",
			Name:      "tasks_total",
			Help:      "Detached background tasks by name and outcome.",
		},
		[]string{"task", "status"},
	)
	reg.MustRegister(backgroundTasks)
	return &Metrics{backgroundTasks: backgroundTasks}
}

func (m *Metrics) observeTask(task, status string) {
	if m == nil {
		return
	}
	m.backgroundTasks.WithLabelValues(task, status).Inc()
}
