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

// RequestHandler exposes the session request lifecycle.
type RequestHandler struct {
	requests services.RequestService
	response *response.Builder
	logger   *zap.Logger
}

// NewRequestHandler creates the request handler
func NewRequestHandler(requests services.RequestService, builder *response.Builder, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{requests: requests, response: builder, logger: logger}
}

// Send handles POST /api/v1/requests
func (h *RequestHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req services.SendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	request, err := h.requests.Send(r.Context(), &req)
	if err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusCreated, request)
}

// Get handles GET /api/v1/requests/{id}
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		h.response.WriteError(w, r, services.InvalidInputError("id", "must be a valid UUID"))
		return
	}

	request, err := h.requests.GetByID(r.Context(), id)
	if err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusOK, request)
}

// UpdateStatus handles PATCH /api/v1/requests/{id}/status
func (h *RequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		h.response.WriteError(w, r, services.InvalidInputError("id", "must be a valid UUID"))
		return
	}

	var req services.UpdateRequestStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.RequestID = id

	request, err := h.requests.UpdateStatus(r.Context(), &req)
	if err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusOK, request)
}
