package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse represents the JSON response from the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Records   string `json:"records"`
	Qdrant    string `json:"qdrant,omitempty"`
	Timestamp string `json:"timestamp"`
}

// RecordsChecker reports whether the record directory is usable.
// *records.Store implements it.
type RecordsChecker interface {
	Health() error
}

// HealthChecker is an optional remote dependency.
// *storage.QdrantStorage implements it.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewHealthHandler creates the /health handler. vectors may be nil when
// vector search is disabled; an unreachable vector store only degrades
// the status because search does not depend on it.
func NewHealthHandler(records RecordsChecker, vectors HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		response := HealthResponse{
			Status:    "healthy",
			Records:   "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		code := http.StatusOK

		if err := records.Health(); err != nil {
			response.Status = "unhealthy"
			response.Records = "unavailable"
			code = http.StatusServiceUnavailable
		}

		if vectors != nil {
			if err := vectors.Health(ctx); err != nil {
				response.Qdrant = "disconnected"
				if code == http.StatusOK {
					response.Status = "degraded"
				}
			} else {
				response.Qdrant = "connected"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(response)
	}
}
