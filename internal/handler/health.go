package handler

import (
	"net/http"
	"time"

	"cartograph/internal/httputil"
)

// ViewCounter reports how many explorer views are open
type ViewCounter interface {
	OpenViews() int
}

// HealthHandler answers liveness probes
type HealthHandler struct {
	views   ViewCounter
	source  string
	started time.Time
}

// NewHealthHandler creates a health handler
func NewHealthHandler(views ViewCounter, source string) *HealthHandler {
	return &HealthHandler{views: views, source: source, started: time.Now()}
}

// HealthCheck returns service status
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"time":        time.Now(),
		"uptime":      time.Since(h.started).Round(time.Second).String(),
		"open_views":  h.views.OpenViews(),
		"node_source": h.source,
	})
}
