package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tutorhub/internal/database"
	"tutorhub/internal/models"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// reviewRepository implements ReviewRepository backed by Postgres.
type reviewRepository struct {
	*BaseRepository
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *database.Manager, logger *zap.Logger) ReviewRepository {
	return &reviewRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Upsert creates a review, or replaces the student's existing review of
// the same tutor. One review per student/tutor pair.
func (r *reviewRepository) Upsert(ctx context.Context, review *models.Review) error {
	if review.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate review id: %w", err)
		}
		review.ID = id
	}

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	query := `
		INSERT INTO reviews (id, tutor_id, student_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tutor_id, student_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			comment = EXCLUDED.comment,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	err := r.QueryRowContext(ctx, query,
		review.ID, review.TutorID, review.StudentID, review.Rating, review.Comment,
		review.CreatedAt, review.UpdatedAt,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert review: %w", err)
	}

	return nil
}

// Delete removes the student's review of the tutor, if any.
func (r *reviewRepository) Delete(ctx context.Context, tutorID, studentID string) error {
	query := `DELETE FROM reviews WHERE tutor_id = $1 AND student_id = $2`

	result, err := r.ExecContext(ctx, query, tutorID, studentID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *reviewRepository) CountByTutorWithRating(ctx context.Context, tutorID string, rating int) (int, error) {
	query := `SELECT COUNT(*) FROM reviews WHERE tutor_id = $1 AND rating = $2`
	return r.CountContext(ctx, query, tutorID, rating)
}

func (r *reviewRepository) CountByStudentWithRating(ctx context.Context, studentID string, rating int) (int, error) {
	query := `SELECT COUNT(*) FROM reviews WHERE student_id = $1 AND rating = $2`
	return r.CountContext(ctx, query, studentID, rating)
}

// CountMatchingByTutor counts reviews for the tutor with at least the
// given rating and a comment matching the case-insensitive pattern.
func (r *reviewRepository) CountMatchingByTutor(ctx context.Context, tutorID string, minRating int, pattern string) (int, error) {
	query := `SELECT COUNT(*) FROM reviews WHERE tutor_id = $1 AND rating >= $2 AND comment ~* $3`
	return r.CountContext(ctx, query, tutorID, minRating, pattern)
}

// RatingSummary computes the tutor's current average rating and count.
func (r *reviewRepository) RatingSummary(ctx context.Context, tutorID string) (*models.RatingSummary, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews WHERE tutor_id = $1`

	summary := &models.RatingSummary{TutorID: tutorID}
	err := r.QueryRowContext(ctx, query, tutorID).Scan(&summary.AverageRating, &summary.RatingCount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rating summary: %w", err)
	}

	return summary, nil
}
