package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Narrative outcome labels.
const (
	OutcomeAI       = "ai"
	OutcomeFallback = "fallback"
)

var (
	// NarrativeTotal counts narrative generations by outcome and fallback reason
	NarrativeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "garmentscore",
		Name:      "narrative_total",
		Help:      "Narrative generations by outcome (ai|fallback) and reason.",
	}, []string{"outcome", "reason"})

	// NarrativeDuration observes the external call latency
	NarrativeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "garmentscore",
		Name:      "narrative_duration_seconds",
		Help:      "Latency of the external narrative call.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
	})

	// SubmissionsTotal counts assessment submissions by result
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "garmentscore",
		Name:      "submissions_total",
		Help:      "Assessment submissions by result (ok|rejected|error).",
	}, []string{"result"})

	// GradeTotal counts produced reports per grade
	GradeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "garmentscore",
		Name:      "grades_total",
		Help:      "Produced reports per overall grade.",
	}, []string{"grade"})
)

// PipelineDuration observes a full submission: scoring, narrative and persistence
var PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "garmentscore",
	Name:      "pipeline_duration_seconds",
	Help:      "Duration of the submit-to-report pipeline.",
	Buckets:   prometheus.DefBuckets,
})
