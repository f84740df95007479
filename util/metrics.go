package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	sectionsProcessedCounter prometheus.Counter
	validationFailedCounter  prometheus.Counter
	potsCalculatedCounter    prometheus.Counter
	handsArchivedCounter     prometheus.Counter
	activeSessionsCountGauge prometheus.Gauge
}

func (m *metrics) SectionProcessed() {
	m.sectionsProcessedCounter.Inc()
}

func (m *metrics) ValidationFailed() {
	m.validationFailedCounter.Inc()
}

func (m *metrics) PotsCalculated() {
	m.potsCalculatedCounter.Inc()
}

func (m *metrics) HandArchived() {
	m.handsArchivedCounter.Inc()
}

func (m *metrics) SetActiveSessionsCount(count int) {
	m.activeSessionsCountGauge.Set(float64(count))
}

var Metrics = &metrics{
	sectionsProcessedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "sections_processed_total",
		Help: "Total number of betting sections processed",
	}),
	validationFailedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "section_validation_failures_total",
		Help: "Total number of sections rejected by validation",
	}),
	potsCalculatedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "pots_calculated_total",
		Help: "Total number of pot partitions computed",
	}),
	handsArchivedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "hands_archived_total",
		Help: "Total number of finished hands archived",
	}),
	activeSessionsCountGauge: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "active_sessions_count",
		Help: "Number of active capture sessions",
	}),
}
