package http

import (
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/render"

	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// HealthResponse reports service status.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
	GoVersion string    `json:"go_version"`
	Methods   []string  `json:"methods"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	version string
	started time.Time
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		version: version,
		started: time.Now(),
		logger:  infrastructure.WithComponent(logger, "health_handler"),
	}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	methods := make([]string, 0, len(domain.Methods()))
	for _, m := range domain.Methods() {
		methods = append(methods, string(m))
	}
	render.JSON(w, r, HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		GoVersion: runtime.Version(),
		Methods:   methods,
	})
}

// LivenessCheck handles GET /api/health/live
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "alive"})
}
