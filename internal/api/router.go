package api

import (
	"net/http"

	"github.com/Paddy1981/larun-space/internal/api/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter configures HTTP routes
func SetupRouter(handler *handlers.Handler, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()

	// CORS first so preflights are answered before route dispatch
	router.Use(CORSMiddleware)
	router.Use(func(next http.Handler) http.Handler {
		return LoggingMiddleware(logger, next)
	})

	// Health check
	router.HandleFunc("/health", handler.HealthHandler).Methods("GET")

	// Chat endpoint (JSON, SSE, or WebSocket by content negotiation)
	router.HandleFunc("/chat", handler.ChatHandler).Methods("POST", "GET", "OPTIONS")

	// Conversation management
	router.HandleFunc("/conversations", handler.ListConversationsHandler).Methods("GET")
	router.HandleFunc("/conversations", handler.NewConversationHandler).Methods("POST", "OPTIONS")
	router.HandleFunc("/conversations/{id}", handler.GetConversationHandler).Methods("GET")
	router.HandleFunc("/conversations/{id}", handler.RenameConversationHandler).Methods("PATCH", "OPTIONS")
	router.HandleFunc("/conversations/{id}", handler.DeleteConversationHandler).Methods("DELETE", "OPTIONS")

	// Target catalog lookups (cached)
	router.HandleFunc("/targets/{id}", handler.TargetHandler).Methods("GET", "OPTIONS")

	// Metrics endpoint
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Register Prometheus metrics
	registerMetrics()
	handlers.RegisterMetrics()

	return router
}

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func registerMetrics() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
}
