package api

import (
	"encoding/json"
	"net/http"

	"tutorhub/internal/response"
	"tutorhub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserHandler exposes account and profile endpoints.
type UserHandler struct {
	users    services.UserService
	response *response.Builder
	logger   *zap.Logger
}

// NewUserHandler creates the user handler
func NewUserHandler(users services.UserService, builder *response.Builder, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, response: builder, logger: logger}
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	user, err := h.users.Register(r.Context(), &req)
	if err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusCreated, user)
}

// Get handles GET /api/v1/users/{identifier}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	user, err := h.users.GetByIdentifier(r.Context(), identifier)
	if err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/v1/users/{identifier}/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.Identifier = chi.URLParam(r, "identifier")

	user, err := h.users.UpdateProfile(r.Context(), &req)
	if err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusOK, user)
}
