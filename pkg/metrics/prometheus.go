package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ParsesTotal    *prometheus.CounterVec
	ParseFailures  *prometheus.CounterVec
	ParseWarnings  prometheus.Counter
	ParseDuration  prometheus.Histogram
	RecordsSaved   prometheus.Counter
	InboxProcessed prometheus.Counter
	CacheHits      prometheus.Counter
	ErrorsCount    *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ParsesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "The total number of PNR parse requests by GDS source",
		}, []string{"gds"}),
		ParseFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_failures_total",
			Help:      "The total number of fatal parse failures by reason",
		}, []string{"reason"}),
		ParseWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_warnings_total",
			Help:      "The total number of non-fatal extraction warnings",
		}),
		ParseDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Time taken to parse a PNR text",
			Buckets:   prometheus.DefBuckets,
		}),
		RecordsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_records_saved_total",
			Help:      "The total number of parsed records saved to the ticket store",
		}),
		InboxProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbox_messages_processed_total",
			Help:      "The total number of processed inbox messages",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_cache_hits_total",
			Help:      "The total number of parse results served from cache",
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
