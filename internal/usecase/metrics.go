package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

var (
	feedFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rssreader_feed_fetch_total",
		Help: "The total number of feed fetches by feed and outcome",
	}, []string{"feed", "outcome"})

	feedFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rssreader_feed_fetch_duration_seconds",
		Help:    "Duration of a single feed fetch including parsing and normalization",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
	}, []string{"feed"})

	feedArticles = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rssreader_feed_articles",
		Help: "Number of articles returned by the last successful fetch of a feed",
	}, []string{"feed"})

	aggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rssreader_aggregation_duration_seconds",
		Help:    "Duration of a full aggregation run across all feeds",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	sinkErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rssreader_outcome_sink_errors_total",
		Help: "The total number of failed writes to fetch outcome sinks",
	}, []string{"sink"})
)
