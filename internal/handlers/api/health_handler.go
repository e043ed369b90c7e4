package api

import (
	"net/http"

	"tutorhub/internal/database"
	"tutorhub/internal/response"
	"tutorhub/internal/services"

	"go.uber.org/zap"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	db       *database.Manager
	srvc     *services.ServiceCollection
	response *response.Builder
	logger   *zap.Logger
}

// NewHealthHandler creates the health handler
func NewHealthHandler(db *database.Manager, srvc *services.ServiceCollection, builder *response.Builder, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, srvc: srvc, response: builder, logger: logger}
}

// Live handles GET /health
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.response.WriteSuccess(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := h.db.Health(r.Context())
	components := h.srvc.Health(r.Context())

	payload := map[string]interface{}{
		"database":   status,
		"components": components,
	}

	code := http.StatusOK
	if status.Status == database.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	h.response.WriteSuccess(w, r, code, payload)
}
