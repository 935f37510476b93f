package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	modelSelectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_selections_total",
			Help: "Routing decisions per model/task and whether the user preference won.",
		},
		[]string{"model", "task", "preference_respected"},
	)

	classifierLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classifier_latency_ms",
			Help:    "Prompt classification latency distribution in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
		},
		[]string{"method"}, // 'rules' or 'llm'
	)

	modelFeedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_feedback_total",
			Help: "Feedback submissions per model and rating.",
		},
		[]string{"model", "rating"},
	)
)

func init() { register(modelSelectionsTotal, classifierLatencyMs, modelFeedbackTotal) }

func IncModelSelection(model, task string, preferenceRespected bool) {
	modelSelectionsTotal.WithLabelValues(norm(model), norm(task), strconv.FormatBool(preferenceRespected)).Inc()
}

func ObserveClassifierLatency(method string, ms float64) {
	classifierLatencyMs.WithLabelValues(norm(method)).Observe(ms)
}

func IncModelFeedback(model string, rating int) {
	modelFeedbackTotal.WithLabelValues(norm(model), strconv.Itoa(rating)).Inc()
}
