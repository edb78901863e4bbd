package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	contentSearch = "content_search"

	// Ingestion metrics
	eventsIngestedTotal  = "events_ingested_total"
	ingestFailuresTotal  = "ingest_failures_total"
	deferredRetriesTotal = "deferred_retries_total"
	eventsDroppedTotal   = "events_dropped_total"

	// Index metrics
	DocumentsIndexed = "documents_indexed"

	// Query metrics
	searchRequestsTotal = "search_requests_total"

	// Labels
	eventTypeLabel     = "type"
	failureReasonLabel = "reason"
	searchStatusLabel  = "status"
)

var eventsIngestedLabels = []string{
	eventTypeLabel,
}

var ingestFailuresLabels = []string{
	failureReasonLabel,
}

var searchRequestsLabels = []string{
	searchStatusLabel,
}

/**
* Metrics definition
**/
var eventsIngestedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: contentSearch,
		Name:      eventsIngestedTotal,
		Help:      "number of change events committed to the index by event type",
	},
	eventsIngestedLabels,
)

var ingestFailuresTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: contentSearch,
		Name:      ingestFailuresTotal,
		Help:      "number of change events that exhausted their retry budget",
	},
	ingestFailuresLabels,
)

var deferredRetriesTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: contentSearch,
		Name:      deferredRetriesTotal,
		Help:      "number of retries performed for deferred change events",
	},
)

var eventsDroppedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: contentSearch,
		Name:      eventsDroppedTotal,
		Help:      "number of change events dropped as malformed or targeting unknown items",
	},
	ingestFailuresLabels,
)

var documentsIndexedMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: contentSearch,
		Name:      DocumentsIndexed,
		Help:      "number of live documents in the search index",
	},
)

var searchRequestsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: contentSearch,
		Name:      searchRequestsTotal,
		Help:      "number of search requests by outcome",
	},
	searchRequestsLabels,
)

func IncreaseEventsIngestedMetric(eventType string) {
	labels := prometheus.Labels{
		eventTypeLabel: eventType,
	}
	eventsIngestedTotalMetric.With(labels).Inc()
}

func IncreaseIngestFailuresMetric(reason string) {
	labels := prometheus.Labels{
		failureReasonLabel: reason,
	}
	ingestFailuresTotalMetric.With(labels).Inc()
}

func IncreaseDeferredRetriesMetric() {
	deferredRetriesTotalMetric.Inc()
}

func IncreaseEventsDroppedMetric(reason string) {
	labels := prometheus.Labels{
		failureReasonLabel: reason,
	}
	eventsDroppedTotalMetric.With(labels).Inc()
}

func UpdateDocumentsIndexedMetric(count int) {
	documentsIndexedMetric.Set(float64(count))
}

func IncreaseSearchRequestsMetric(status string) {
	labels := prometheus.Labels{
		searchStatusLabel: status,
	}
	searchRequestsTotalMetric.With(labels).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(eventsIngestedTotalMetric)
	prometheus.MustRegister(ingestFailuresTotalMetric)
	prometheus.MustRegister(deferredRetriesTotalMetric)
	prometheus.MustRegister(eventsDroppedTotalMetric)
	prometheus.MustRegister(documentsIndexedMetric)
	prometheus.MustRegister(searchRequestsTotalMetric)
}
