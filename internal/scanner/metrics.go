package scanner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Version outcomes counted by eix_scan_versions_total
const (
	ResultIndexed       = "indexed"
	ResultMalformed     = "malformed"
	ResultCacheError    = "cache_error"
	ResultMetadataError = "metadata_error"
)

var (
	scanVersionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eix_scan_versions_total",
		Help: "Versions seen by the tree scanner, by outcome",
	}, []string{"result"})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eix_scan_duration_seconds",
		Help:    "Wall time of a full tree scan",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	scanPackages = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eix_scan_packages",
		Help: "Packages in the most recently built index",
	})
)
