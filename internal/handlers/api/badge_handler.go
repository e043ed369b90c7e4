package api

import (
	"encoding/json"
	"net/http"

	"tutorhub/internal/events"
	"tutorhub/internal/models"
	"tutorhub/internal/response"
	"tutorhub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BadgeHandler exposes the badge catalog and award endpoints.
type BadgeHandler struct {
	badges   services.BadgeService
	catalog  services.BadgeCatalogService
	response *response.Builder
	logger   *zap.Logger
}

// NewBadgeHandler creates the badge handler
func NewBadgeHandler(badges services.BadgeService, catalog services.BadgeCatalogService, builder *response.Builder, logger *zap.Logger) *BadgeHandler {
	return &BadgeHandler{badges: badges, catalog: catalog, response: builder, logger: logger}
}

// ListCatalog handles GET /api/v1/badges
func (h *BadgeHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	badges, err := h.catalog.Rules(r.Context())
	if err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusOK, badges)
}

// ListEarned handles GET /api/v1/users/{identifier}/badges
func (h *BadgeHandler) ListEarned(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	earned, err := h.badges.ListEarned(r.Context(), identifier)
	if err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusOK, earned)
}

type triggerRequest struct {
	Identifier string `json:"identifier"`
	Event      string `json:"event"`
}

// Trigger handles POST /api/v1/badges/trigger. Intended for admin and
// backfill use; normal awarding happens through domain operations.
func (h *BadgeHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	if req.Identifier == "" {
		h.response.WriteError(w, r, services.InvalidInputError("identifier", "identifier is required"))
		return
	}

	awarded := h.badges.Trigger(r.Context(), events.TriggerType(req.Event), req.Identifier)

	h.response.WriteSuccess(w, r, http.StatusOK, services.AwardResult{
		Identifier: req.Identifier,
		Awarded:    awarded,
	})
}

// UpsertRule handles PUT /api/v1/badges. Admin catalog maintenance.
func (h *BadgeHandler) UpsertRule(w http.ResponseWriter, r *http.Request) {
	var badge models.Badge
	if err := json.NewDecoder(r.Body).Decode(&badge); err != nil {
		h.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	if err := h.catalog.Upsert(r.Context(), &badge); err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusOK, &badge)
}
