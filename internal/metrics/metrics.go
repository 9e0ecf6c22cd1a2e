package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DatasetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nycair_dataset_loads_total",
			Help: "Total dataset loads by source scheme and outcome",
		},
		[]string{"scheme", "outcome"},
	)

	DatasetLoadLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nycair_dataset_load_seconds",
			Help:    "Dataset load and parse latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scheme"},
	)

	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nycair_dataset_rows",
			Help: "Rows seen in the last successful load, by disposition",
		},
		[]string{"disposition"},
	)

	SceneRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nycair_scene_renders_total",
			Help: "Total scene renders by scene and outcome",
		},
		[]string{"scene", "outcome"},
	)

	SceneRenderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nycair_scene_render_seconds",
			Help:    "Scene render latency in seconds, including the dataset load",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scene"},
	)

	FilterRedrawsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nycair_filter_redraws_total",
			Help: "Total drill-down redraws by the selector that triggered them",
		},
		[]string{"selector"},
	)

	ImagesRenderedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nycair_images_rendered_total",
			Help: "Total chart images rendered by format",
		},
		[]string{"format"},
	)
)
