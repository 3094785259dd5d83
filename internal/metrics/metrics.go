// Package metrics exposes collection counters for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"nbrsnap/internal/domain"
)

const namespace = "nbrsnap"

// Metrics holds the collection metrics
type Metrics struct {
	DevicesPolled      *prometheus.CounterVec
	DeviceFailures     *prometheus.CounterVec
	Neighbors          *prometheus.GaugeVec
	DeviceDuration     *prometheus.HistogramVec
	CollectionDuration prometheus.Histogram
	LastCollection     prometheus.Gauge
}

// New registers the metrics with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DevicesPolled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "devices_polled_total",
			Help:      "Devices polled, by vendor and outcome",
		}, []string{"vendor", "status"}),
		DeviceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_failures_total",
			Help:      "Device failures, by vendor and error kind",
		}, []string{"vendor", "kind"}),
		Neighbors: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "neighbors",
			Help:      "Neighbor records in the last successful poll of a device",
		}, []string{"device"}),
		DeviceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "device_duration_seconds",
			Help:      "Time to poll one device",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"vendor"}),
		CollectionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collection_duration_seconds",
			Help:      "Time to collect a whole snapshot",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		LastCollection: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_collection_timestamp_seconds",
			Help:      "Unix time the last snapshot was taken",
		}),
	}
}

// ObserveDevice records the outcome of one device poll
func (m *Metrics) ObserveDevice(res domain.DeviceResult) {
	if m == nil {
		return
	}
	vendor := string(res.Vendor)
	m.DevicesPolled.WithLabelValues(vendor, string(res.Status)).Inc()
	m.DeviceDuration.WithLabelValues(vendor).Observe(res.Duration.Seconds())
	if res.Succeeded() {
		m.Neighbors.WithLabelValues(res.Hostname).Set(float64(len(res.Neighbors)))
		return
	}
	kind := domain.ErrorKindConnectivity
	if res.Error != nil {
		kind = res.Error.Kind
	}
	m.DeviceFailures.WithLabelValues(vendor, string(kind)).Inc()
}

// ObserveSnapshot records a finished collection run
func (m *Metrics) ObserveSnapshot(s *domain.Snapshot, took time.Duration) {
	if m == nil {
		return
	}
	m.CollectionDuration.Observe(took.Seconds())
	m.LastCollection.Set(float64(s.TakenAt.Unix()))
}
