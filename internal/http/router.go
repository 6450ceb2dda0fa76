package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-archive-service/internal/observability"
)

// NewRouter wires the middleware chain and routes. The request timeout wraps only the
// /weather-archive handlers, which call upstream. They are registered on the root router
// rather than a PathPrefix subrouter so a wrong method yields 405 on every route.
// GET / is kept for clients of the former docs redirect and now points at /health.
func NewRouter(handler *Handler, requestTimeout time.Duration, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/", handler.RedirectHome).Methods("GET")
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())

	withTimeout := TimeoutMiddleware(requestTimeout)
	router.Handle("/weather-archive/temperature",
		withTimeout(http.HandlerFunc(handler.GetTemperature))).Methods("GET")
	router.Handle("/weather-archive/temperature-range",
		withTimeout(http.HandlerFunc(handler.GetTemperatureRange))).Methods("GET")
	return router
}
