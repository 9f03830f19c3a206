package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	source IndexSource
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(source IndexSource, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		source: source,
		logger: logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// CheckResult represents a single health check result
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// GetHealth handles GET /api/v1/health
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status: "healthy",
		Checks: make(map[string]CheckResult),
	}
	status := http.StatusOK

	idx, err := h.source.Index(r.Context())
	if err != nil {
		response.Status = "unhealthy"
		response.Checks["index"] = CheckResult{Status: "unhealthy", Message: err.Error()}
		status = http.StatusServiceUnavailable
		h.logger.Error("Health check failed: index unavailable", "error", err)
	} else {
		response.Checks["index"] = CheckResult{
			Status:  "healthy",
			Message: strconv.Itoa(idx.Len()) + " packages, built " + idx.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
