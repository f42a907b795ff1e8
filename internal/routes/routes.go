package routes

import (
	"net/http"

	"navaid/internal/config"
	"navaid/internal/handler"
	"navaid/internal/logger"
	"navaid/internal/metrics"
	"navaid/internal/middleware"

	"github.com/gorilla/mux"
)

// SetupRoutes registers the detection API and the optional stream and
// metrics endpoints. CORS wraps the router from the outside so preflight
// requests are answered before method matching.
func SetupRoutes(processor *handler.Processor, cfg *config.Config, logger *logger.Logger) http.Handler {
	router := mux.NewRouter()

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.HandleFunc("/", handler.HomeHandler()).Methods(http.MethodGet)

	limit := middleware.RequestSizeMiddleware(cfg.MaxBodyBytes)
	router.Handle("/detect", limit(handler.DetectHandler(processor, logger))).Methods(http.MethodPost)

	if cfg.StreamEnabled {
		router.HandleFunc("/ws/detect", handler.StreamHandler(processor, cfg.MaxBodyBytes, logger)).Methods(http.MethodGet)
		logger.Info("Streaming endpoint enabled at /ws/detect")
	}

	if cfg.MetricsEnabled {
		router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
		logger.Info("Metrics endpoint enabled at /metrics")
	}

	return middleware.CORSMiddleware(cfg.CORSOrigins)(router)
}
