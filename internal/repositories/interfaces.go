package repositories

import (
	"context"
	"time"

	"tutorhub/internal/models"

	"github.com/gofrs/uuid"
)

// UserRepository manages user accounts and their earned badge set.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByStudentID(ctx context.Context, studentID string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// ResolveIdentifier accepts either a stable student key or a
	// storage-level user ID and returns the matching user.
	ResolveIdentifier(ctx context.Context, identifier string) (*models.User, error)

	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateRating(ctx context.Context, username string, average float64, count int) error

	ListEarnedBadges(ctx context.Context, userID uuid.UUID) ([]models.EarnedBadge, error)

	// AddEarnedBadge appends a badge to the user's earned set. The
	// insert is conditional; false means the badge was already held.
	AddEarnedBadge(ctx context.Context, userID, badgeID uuid.UUID, earnedAt time.Time) (bool, error)
}

// BadgeRepository manages the rule catalog.
type BadgeRepository interface {
	List(ctx context.Context) ([]*models.Badge, error)
	GetByName(ctx context.Context, name string) (*models.Badge, error)

	// UpsertByName creates or updates a badge definition keyed by its
	// unique name. Used for idempotent catalog seeding.
	UpsertByName(ctx context.Context, badge *models.Badge) error
}

// SessionRepository is the session slice of the activity store.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.SessionStatus) error

	CountByStudentWithStatus(ctx context.Context, studentID string, status models.SessionStatus) (int, error)
	CountByTutorWithStatus(ctx context.Context, tutorID string, status models.SessionStatus) (int, error)
	CountCompletedByStudentSince(ctx context.Context, studentID string, since time.Time) (int, error)
	CountDistinctCompletedDaysSince(ctx context.Context, studentID string, since time.Time) (int, error)

	// ListCompletedByParticipant returns completed sessions where the
	// user took part on either side, most recent first. limit <= 0
	// means no limit.
	ListCompletedByParticipant(ctx context.Context, studentKey, tutorKey string, limit int) ([]*models.Session, error)

	// ListRecentAttendance returns the most recent sessions that
	// either completed or were no-shows, for attendance checks.
	ListRecentAttendance(ctx context.Context, studentKey, tutorKey string, limit int) ([]*models.Session, error)

	SumCompletedDurationByStudent(ctx context.Context, studentID string) (int, error)
	SumCompletedDurationByTutor(ctx context.Context, tutorID string) (int, error)

	ExistsCompletedBetween(ctx context.Context, studentID, tutorID string) (bool, error)
}

// RequestRepository is the request slice of the activity store.
type RequestRepository interface {
	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error
	LinkSession(ctx context.Context, id, sessionID uuid.UUID) error

	CountByStudent(ctx context.Context, studentID string) (int, error)
	CountByStudentWithStatus(ctx context.Context, studentID string, status models.RequestStatus) (int, error)
}

// ReviewRepository is the review slice of the activity store.
type ReviewRepository interface {
	// Upsert writes a review; one review per (tutor, student) pair,
	// resubmission replaces the previous rating and comment.
	Upsert(ctx context.Context, review *models.Review) error

	// Delete removes the student's review of the tutor.
	Delete(ctx context.Context, tutorID, studentID string) error

	CountByTutorWithRating(ctx context.Context, tutorID string, rating int) (int, error)
	CountByStudentWithRating(ctx context.Context, studentID string, rating int) (int, error)

	// CountMatchingByTutor counts reviews of a tutor with rating at
	// least minRating whose comment matches the given pattern
	// (case-insensitive POSIX regex).
	CountMatchingByTutor(ctx context.Context, tutorID string, minRating int, pattern string) (int, error)

	RatingSummary(ctx context.Context, tutorID string) (*models.RatingSummary, error)
}

// ResourceRepository covers uploads and resource interactions.
type ResourceRepository interface {
	CreateUpload(ctx context.Context, upload *models.Upload) error
	CountUploadsByUploader(ctx context.Context, uploader string) (int, error)

	RecordInteraction(ctx context.Context, interaction *models.ResourceInteraction) error
	CountInteractionsByStudent(ctx context.Context, studentID string, action models.InteractionAction) (int, error)
}
