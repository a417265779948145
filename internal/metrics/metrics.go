package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Profile resolution
	ProfileRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "idresolve_profile_runs_total",
			Help: "Total number of profile resolution runs",
		},
	)

	CandidatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idresolve_candidates_dropped_total",
			Help: "Extracted values rejected by field validation",
		},
		[]string{"field"},
	)

	FieldsUnresolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idresolve_fields_unresolved_total",
			Help: "Fields left without a verified value",
		},
		[]string{"field", "method"},
	)

	ProfileQuality = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "idresolve_profile_overall_quality",
			Help:    "Overall quality of resolved profiles",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// Candidate ranking
	RankingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idresolve_ranking_runs_total",
			Help: "Total number of ranking runs",
		},
		[]string{"context", "status"},
	)

	EnrichmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idresolve_enrichment_failures_total",
			Help: "Candidate profile lookups that failed or found nothing",
		},
		[]string{"reason"},
	)

	TopRelevance = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "idresolve_top_relevance_score",
			Help:    "Relevance score of the best candidate per run",
			Buckets: []float64{0.3, 0.5, 0.65, 0.8, 0.9, 1},
		},
	)

	// Feedback
	FeedbackRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idresolve_feedback_recorded_total",
			Help: "Feedback entries recorded",
		},
		[]string{"correct"},
	)
)
