package api

import (
	"net/http"
	"time"

	"github.com/empowher/empowher-server/internal/api/respond"
)

// HealthHandler reports the cached service health. The health function is
// injected at construction; handlers never probe dependencies inline.
type HealthHandler struct {
	isHealthy func() bool
}

// NewHealthHandler builds the handler around a service health function. A
// nil function reports healthy, which suits tests that have no checkers.
func NewHealthHandler(isHealthy func() bool) *HealthHandler {
	if isHealthy == nil {
		isHealthy = func() bool { return true }
	}
	return &HealthHandler{isHealthy: isHealthy}
}

// CheckHealth GET /v0/health
//
// Always returns 200; the body reports healthy/unhealthy. A non-200 status
// indicates handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if h.isHealthy() {
		status = "healthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
