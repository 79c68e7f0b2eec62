package handlers

import "github.com/prometheus/client_golang/prometheus"

var chatCompletionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chat_completions_total",
		Help: "Total chat completions by source (remote provider vs local fallback)",
	},
	[]string{"source"},
)

// ------------------------------------------------------------------------------------------------------
// RegisterMetrics registers the handler-level Prometheus collectors
func RegisterMetrics() {
	prometheus.MustRegister(chatCompletionsTotal)
}

// ------------------------------------------------------------------------------------------------------
func observeCompletion(source string) {
	chatCompletionsTotal.WithLabelValues(source).Inc()
}
