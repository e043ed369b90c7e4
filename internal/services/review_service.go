package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tutorhub/internal/cache"
	"tutorhub/internal/events"
	"tutorhub/internal/models"
	"tutorhub/internal/repositories"
	"tutorhub/internal/validation"

	"go.uber.org/zap"
)

const ratingCacheTTL = 5 * time.Minute

// ===============================
// REVIEW SERVICE
// ===============================

// ReviewService handles student reviews of tutors and keeps the
// tutor's rating aggregate current.
type ReviewService interface {
	Submit(ctx context.Context, req *SubmitReviewRequest) (*models.Review, error)
	Delete(ctx context.Context, tutorID, studentID string) error
	TutorRating(ctx context.Context, tutorID string) (*models.RatingSummary, error)
}

type reviewService struct {
	reviews  repositories.ReviewRepository
	sessions repositories.SessionRepository
	users    repositories.UserRepository
	badges   BadgeService
	cache    cache.Cache
	logger   *zap.Logger
}

// NewReviewService creates the review service
func NewReviewService(
	reviews repositories.ReviewRepository,
	sessions repositories.SessionRepository,
	users repositories.UserRepository,
	badges BadgeService,
	cacheClient cache.Cache,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		reviews:  reviews,
		sessions: sessions,
		users:    users,
		badges:   badges,
		cache:    cacheClient,
		logger:   logger,
	}
}

func (s *reviewService) Submit(ctx context.Context, req *SubmitReviewRequest) (*models.Review, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid review", err)
	}

	// A student may only review tutors they have actually had a
	// completed session with.
	hadSession, err := s.sessions.ExistsCompletedBetween(ctx, req.StudentID, req.TutorID)
	if err != nil {
		return nil, NewInternalError("failed to verify session history")
	}
	if !hadSession {
		return nil, NewBusinessError("no completed session with this tutor", "NO_COMPLETED_SESSION")
	}

	review := &models.Review{
		TutorID:   req.TutorID,
		StudentID: req.StudentID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := s.reviews.Upsert(ctx, review); err != nil {
		return nil, NewInternalError("failed to save review")
	}

	if err := s.refreshTutorRating(ctx, req.TutorID); err != nil {
		s.logger.Warn("failed to refresh tutor rating",
			zap.String("tutor_id", req.TutorID),
			zap.Error(err))
	}

	s.logger.Info("review submitted",
		zap.String("tutor_id", req.TutorID),
		zap.String("student_id", req.StudentID),
		zap.Int("rating", req.Rating))

	s.badges.Trigger(ctx, events.TriggerReviewSubmitted, req.StudentID)

	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, tutorID, studentID string) error {
	if tutorID == "" || studentID == "" {
		return InvalidInputError("review", "tutor and student are required")
	}

	if err := s.reviews.Delete(ctx, tutorID, studentID); err != nil {
		if repositories.IsNotFound(err) {
			return EntityNotFoundError("review", tutorID+"/"+studentID)
		}
		return NewInternalError("failed to delete review")
	}

	if err := s.refreshTutorRating(ctx, tutorID); err != nil {
		s.logger.Warn("failed to refresh tutor rating",
			zap.String("tutor_id", tutorID),
			zap.Error(err))
	}

	s.logger.Info("review deleted",
		zap.String("tutor_id", tutorID),
		zap.String("student_id", studentID))

	return nil
}

func (s *reviewService) TutorRating(ctx context.Context, tutorID string) (*models.RatingSummary, error) {
	key := ratingCacheKey(tutorID)
	if cached, found := s.cachedRating(ctx, key); found {
		return cached, nil
	}

	summary, err := s.reviews.RatingSummary(ctx, tutorID)
	if err != nil {
		return nil, NewInternalError("failed to compute tutor rating")
	}

	if data, err := json.Marshal(summary); err == nil {
		if err := s.cache.Set(ctx, key, data, ratingCacheTTL); err != nil {
			s.logger.Debug("failed to cache rating summary", zap.Error(err))
		}
	}

	return summary, nil
}

func (s *reviewService) refreshTutorRating(ctx context.Context, tutorID string) error {
	summary, err := s.reviews.RatingSummary(ctx, tutorID)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, ratingCacheKey(tutorID)); err != nil {
		s.logger.Debug("failed to invalidate rating cache", zap.Error(err))
	}
	return s.users.UpdateRating(ctx, tutorID, summary.AverageRating, summary.RatingCount)
}

func (s *reviewService) cachedRating(ctx context.Context, key string) (*models.RatingSummary, bool) {
	value, found := s.cache.Get(ctx, key)
	if !found {
		return nil, false
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		if marshaled, err := json.Marshal(v); err == nil {
			data = marshaled
		} else {
			return nil, false
		}
	}

	var summary models.RatingSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

func ratingCacheKey(tutorID string) string {
	return fmt.Sprintf("rating:tutor:%s", tutorID)
}
