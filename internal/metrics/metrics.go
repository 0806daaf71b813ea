package metrics

import "github.com/prometheus/client_golang/prometheus"

// Fleet holds the portal's domain metrics.
type Fleet struct {
	CamerasTotal   prometheus.Gauge
	CamerasOnline  prometheus.Gauge
	ReportDuration prometheus.Histogram
}

// NewFleet registers the fleet metrics on the given registerer.
func NewFleet(reg prometheus.Registerer) (*Fleet, error) {
	m := &Fleet{
		CamerasTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_cameras_total",
			Help: "Number of cameras known to the provider.",
		}),
		CamerasOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_cameras_online",
			Help: "Number of cameras currently online.",
		}),
		ReportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "report_generation_seconds",
			Help:    "Wall time spent generating archive integrity reports.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}

	for _, c := range []prometheus.Collector{m.CamerasTotal, m.CamerasOnline, m.ReportDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
