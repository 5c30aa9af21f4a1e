package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the domain counters the services emit. HTTP-level metrics
// live in the middleware; these track attendance outcomes.
type Metrics struct {
	AutoAbsentTotal     prometheus.Counter
	SubmissionsTotal    *prometheus.CounterVec
	MeetingSeriesBuilds prometheus.Counter
}

// NewMetrics registers the domain counters on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AutoAbsentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendance_auto_absent_total",
			Help: "Number of attendance records closed as Alpha by the system.",
		}),
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_submissions_total",
			Help: "Number of attendance submissions by source.",
		}, []string{"filled_by"}),
		MeetingSeriesBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calendar_meeting_series_builds_total",
			Help: "Number of meeting series generations.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.AutoAbsentTotal, m.SubmissionsTotal, m.MeetingSeriesBuilds)
	}
	return m
}

// nopMetrics returns unregistered counters so services can run without a
// registry in tests.
func nopMetrics() *Metrics {
	return NewMetrics(nil)
}
