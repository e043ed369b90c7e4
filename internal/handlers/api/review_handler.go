package api

import (
	"encoding/json"
	"net/http"

	"tutorhub/internal/response"
	"tutorhub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReviewHandler exposes tutor review endpoints.
type ReviewHandler struct {
	reviews  services.ReviewService
	response *response.Builder
	logger   *zap.Logger
}

// NewReviewHandler creates the review handler
func NewReviewHandler(reviews services.ReviewService, builder *response.Builder, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, response: builder, logger: logger}
}

// Submit handles POST /api/v1/reviews
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.response.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	review, err := h.reviews.Submit(r.Context(), &req)
	if err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusCreated, review)
}

// Delete handles DELETE /api/v1/tutors/{username}/reviews/{studentID}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tutorID := chi.URLParam(r, "username")
	studentID := chi.URLParam(r, "studentID")

	if err := h.reviews.Delete(r.Context(), tutorID, studentID); err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusOK, nil)
}

// TutorRating handles GET /api/v1/tutors/{username}/rating
func (h *ReviewHandler) TutorRating(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	summary, err := h.reviews.TutorRating(r.Context(), username)
	if err != nil {
		h.response.WriteError(w, r, err)
		return
	}

	h.response.WriteSuccess(w, r, http.StatusOK, summary)
}
