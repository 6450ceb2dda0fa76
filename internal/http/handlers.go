package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-archive-service/internal/client"
	"github.com/kjstillabower/weather-archive-service/internal/lifecycle"
	"github.com/kjstillabower/weather-archive-service/internal/observability"
	"github.com/kjstillabower/weather-archive-service/internal/service"
	"github.com/kjstillabower/weather-archive-service/internal/traffic"
	"github.com/kjstillabower/weather-archive-service/internal/validation"
)

// HealthConfig holds thresholds for the health handler.
type HealthConfig struct {
	DegradedWindow   time.Duration
	DegradedErrorPct int
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	temperatureService *service.TemperatureService
	healthConfig       *HealthConfig
	logger             *zap.Logger
	healthStatusMu     sync.Mutex
	healthStatusPrev   string
}

// NewHandler returns a new Handler.
func NewHandler(temperatureService *service.TemperatureService, healthConfig *HealthConfig, logger *zap.Logger) *Handler {
	return &Handler{
		temperatureService: temperatureService,
		healthConfig:       healthConfig,
		logger:             logger,
	}
}

// GetTemperature handles GET /weather-archive/temperature.
func (h *Handler) GetTemperature(w http.ResponseWriter, r *http.Request) {
	q, err := validation.ParsePointQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	observability.RecordTemperatureQuery("single")
	result, err := h.temperatureService.FetchTemperature(r.Context(), q.Latitude, q.Longitude, q.DateAndTime)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	traffic.RecordSuccess()
	writeJSON(w, http.StatusOK, result)
}

// GetTemperatureRange handles GET /weather-archive/temperature-range.
func (h *Handler) GetTemperatureRange(w http.ResponseWriter, r *http.Request) {
	q, err := validation.ParseRangeQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	observability.RecordTemperatureQuery("range")
	result, err := h.temperatureService.FetchTemperatureRange(r.Context(), q.Latitude, q.Longitude, q.FromDate, q.ToDate, q.FilterByHour)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	traffic.RecordSuccess()
	writeJSON(w, http.StatusOK, result)
}

// RedirectHome handles GET / by pointing callers at the health endpoint.
func (h *Handler) RedirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	archiveCheck := "healthy"
	if result.status == "degraded" {
		archiveCheck = "unhealthy"
	}
	writeJSON(w, result.statusCode, map[string]interface{}{
		"status":        result.status,
		"service":       "weather-archive-service",
		"version":       "dev",
		"checks":        map[string]string{"archiveApi": archiveCheck},
		"uptimeSeconds": int64(lifecycle.Uptime().Seconds()),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

// computeHealthStatus evaluates conditions in priority order:
// shutting-down > degraded (upstream error rate at or above threshold) > healthy.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.healthConfig != nil && h.healthConfig.DegradedWindow > 0 && h.healthConfig.DegradedErrorPct > 0 {
		errs, total := traffic.ErrorRate(h.healthConfig.DegradedWindow)
		if total > 0 && float64(errs)*100/float64(total) >= float64(h.healthConfig.DegradedErrorPct) {
			return healthResult{"degraded", http.StatusServiceUnavailable, "error_rate_breach"}
		}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v, ok := r.Context().Value("correlation_id").(string); ok {
		corrID = v
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}

// writeServiceError maps a temperature service error onto the inbound response:
// upstream HTTP errors keep their status, malformed bodies are 500, an empty series is 404,
// and transport failures are 503.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.LoggerFromContext(r.Context())

	if errors.Is(err, service.ErrNoMatchingTimestamp) {
		traffic.RecordSuccess()
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	traffic.RecordError()
	category := client.CategorizeError(err)
	observability.RecordUpstreamError(string(category))
	logger.Warn("upstream error", zap.String("category", string(category)), zap.Error(err))

	var upstreamErr *client.UpstreamError
	if errors.As(err, &upstreamErr) {
		status := upstreamErr.StatusCode
		if status < 400 {
			status = http.StatusBadGateway
		}
		writeError(w, r, status, "UPSTREAM_ERROR", "Bad Open-Meteo response: "+upstreamErr.Body)
		return
	}

	var malformedErr *client.MalformedResponseError
	if errors.As(err, &malformedErr) {
		writeError(w, r, http.StatusInternalServerError, "MALFORMED_UPSTREAM_RESPONSE",
			"Open-Meteo returned an unexpected response-format. Response: "+malformedErr.Body)
		return
	}

	writeError(w, r, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Unable to fetch weather data")
}
