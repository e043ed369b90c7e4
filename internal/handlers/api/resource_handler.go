package api

import (
	"encoding/json"
	"net/http"

	"tutorhub/internal/response"
	"tutorhub/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// ResourceHandler exposes learning resource endpoints.
type ResourceHandler struct {
	resources services.ResourceService
	response  *response.Builder
	logger    *zap.Logger
}

// NewResourceHandler creates the resource handler
func NewResourceHandler(resources services.ResourceService, builder *response.Builder, logger *zap.Logger) *ResourceHandler {
	return &ResourceHandler{resources: resources, response: builder, logger: logger}
}

// Share handles POST /api/v1/resources
func (h *ResourceHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req services.ShareResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	upload, err := h.resources.Share(r.Context(), &req)
	if err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusCreated, upload)
}

type viewRequest struct {
	StudentID string `json:"student_id"`
	Title     string `json:"title,omitempty"`
	Course    string `json:"course,omitempty"`
}

// View handles POST /api/v1/resources/{id}/view
func (h *ResourceHandler) View(w http.ResponseWriter, r *http.Request) {
	resourceID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		h.response.WriteError(w, r, services.InvalidInputError("id", "must be a valid UUID"))
		return
	}

	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	view := &services.ViewResourceRequest{
		StudentID:  req.StudentID,
		ResourceID: resourceID,
		Title:      req.Title,
		Course:     req.Course,
	}
	if err := h.resources.View(r.Context(), view); err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusOK, nil)
}

// Download handles POST /api/v1/resources/{id}/download
func (h *ResourceHandler) Download(w http.ResponseWriter, r *http.Request) {
	resourceID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		h.response.WriteError(w, r, services.InvalidInputError("id", "must be a valid UUID"))
		return
	}

	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	download := &services.ViewResourceRequest{
		StudentID:  req.StudentID,
		ResourceID: resourceID,
		Title:      req.Title,
		Course:     req.Course,
	}
	if err := h.resources.Download(r.Context(), download); err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusOK, nil)
}
