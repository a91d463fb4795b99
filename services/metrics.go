package services

import "github.com/prometheus/client_golang/prometheus"

var (
	importRowsCounter        *prometheus.CounterVec
	linksAddedCounter        prometheus.Counter
	publicationsCreatedCount prometheus.Counter
	minedPrunedCounter       prometheus.Counter
)

func init() {
	importRowsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "g2p_import_rows_total",
			Help: "Import rows processed, by importer variant and audit outcome.",
		},
		[]string{"variant", "outcome"},
	)
	linksAddedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "g2p_publication_links_added_total",
			Help: "Total number of record-publication links created by imports.",
		},
	)
	publicationsCreatedCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "g2p_publications_created_total",
			Help: "Total number of publications fetched from the literature service and stored.",
		},
	)
	minedPrunedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "g2p_mined_publications_pruned_total",
			Help: "Total number of mined publication candidates deleted by the pruner.",
		},
	)
	prometheus.MustRegister(importRowsCounter, linksAddedCounter, publicationsCreatedCount, minedPrunedCounter)
}
