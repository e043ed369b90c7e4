// file: internal/models/models.go
package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

// ===============================
// CORE ENTITIES
// ===============================

// User represents a marketplace participant. Every user can act as a
// student; tutors are users with IsTutor set. StudentID is the stable
// student-facing identity key (e.g. a university registration number)
// and is unique when present.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username" validate:"required,min=3,max=50"`
	Email        string    `json:"email" db:"email" validate:"required,email,max=320"`
	PasswordHash string    `json:"-" db:"password_hash"`

	StudentID *string `json:"student_id,omitempty" db:"student_id"`
	IsTutor   bool    `json:"is_tutor" db:"is_tutor"`

	// Profile information
	Program                string      `json:"program" db:"program" validate:"omitempty,max=150"`
	LearningInterests      StringArray `json:"learning_interests" db:"learning_interests"`
	LearningLevel          *string     `json:"learning_level,omitempty" db:"learning_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	PreferredLearningStyle *string     `json:"preferred_learning_style,omitempty" db:"preferred_learning_style"`
	PreferredMode          *string     `json:"preferred_mode,omitempty" db:"preferred_mode" validate:"omitempty,oneof=online in-person hybrid"`
	BudgetRange            *string     `json:"budget_range,omitempty" db:"budget_range"`
	Availability           StringArray `json:"availability" db:"availability"`

	// Tutor rating aggregate, recomputed on every review write.
	AverageRating float64 `json:"average_rating" db:"average_rating"`
	RatingCount   int     `json:"rating_count" db:"rating_count"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined fields (not in the users table)
	EarnedBadges []EarnedBadge `json:"earned_badges,omitempty" db:"-"`
}

// IsStudent reports whether the user has a student identity.
func (u *User) IsStudent() bool {
	return u.StudentID != nil && *u.StudentID != ""
}

// StudentKey returns the stable student identifier, or "" for
// users without one.
func (u *User) StudentKey() string {
	if u.StudentID == nil {
		return ""
	}
	return *u.StudentID
}

// TutorKey returns the identifier tutoring activity is recorded
// under. Sessions, requests and reviews reference tutors by username.
func (u *User) TutorKey() string {
	return u.Username
}

// EarnedBadge is one entry in a user's earned set. A badge appears at
// most once per user; entries are never mutated after insert.
type EarnedBadge struct {
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	BadgeID  uuid.UUID `json:"badge_id" db:"badge_id"`
	EarnedAt time.Time `json:"earned_at" db:"earned_at"`

	// Joined from badges
	BadgeName string `json:"badge_name,omitempty" db:"badge_name"`
}

// ===============================
// SESSIONS & REQUESTS
// ===============================

// SessionStatus is the lifecycle state of a tutoring session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionAccepted  SessionStatus = "accepted"
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
	SessionRejected  SessionStatus = "rejected"
	SessionNoShow    SessionStatus = "no-show"
)

// Session represents a tutoring session between a student and a tutor.
// StudentID carries the student's stable key, TutorID the tutor's
// username.
type Session struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	StudentID       string        `json:"student_id" db:"student_id" validate:"required"`
	TutorID         string        `json:"tutor_id" db:"tutor_id" validate:"required"`
	Course          string        `json:"course" db:"course" validate:"required,max=150"`
	SessionDate     time.Time     `json:"session_date" db:"session_date" validate:"required"`
	DurationMinutes int           `json:"duration_minutes" db:"duration_minutes" validate:"min=0"`
	Price           float64       `json:"price" db:"price" validate:"min=0"`
	Status          SessionStatus `json:"status" db:"status"`
	Modality        *string       `json:"modality,omitempty" db:"modality" validate:"omitempty,oneof=online in-person hybrid"`
	MeetingLink     *string       `json:"meeting_link,omitempty" db:"meeting_link"`
	MeetingRoomID   *string       `json:"meeting_room_id,omitempty" db:"meeting_room_id"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// IsCompleted reports whether the session finished successfully.
func (s *Session) IsCompleted() bool {
	return s.Status == SessionCompleted
}

// RequestStatus is the lifecycle state of a session request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestRejected  RequestStatus = "rejected"
	RequestCompleted RequestStatus = "completed"
	RequestCancelled RequestStatus = "cancelled"
)

// Request represents a student's ask for a session with a tutor. An
// accepted request materializes a Session; a completed one marks the
// session completed.
type Request struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	StudentID       string        `json:"student_id" db:"student_id" validate:"required"`
	TutorID         string        `json:"tutor_id" db:"tutor_id" validate:"required"`
	Course          string        `json:"course" db:"course" validate:"required,max=150"`
	SessionDate     time.Time     `json:"session_date" db:"session_date" validate:"required"`
	DurationMinutes int           `json:"duration_minutes" db:"duration_minutes" validate:"min=0"`
	Price           float64       `json:"price" db:"price" validate:"min=0"`
	Status          RequestStatus `json:"status" db:"status"`
	Modality        *string       `json:"modality,omitempty" db:"modality" validate:"omitempty,oneof=online in-person hybrid"`
	Comment         *string       `json:"comment,omitempty" db:"comment" validate:"omitempty,max=1000"`
	SessionID       *uuid.UUID    `json:"session_id,omitempty" db:"session_id"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// ===============================
// REVIEWS & RESOURCES
// ===============================

// Review is a student's rating of a tutor. One review per
// (tutor, student) pair; resubmitting replaces the previous one.
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TutorID   string    `json:"tutor_id" db:"tutor_id" validate:"required"`
	StudentID string    `json:"student_id" db:"student_id" validate:"required"`
	Rating    int       `json:"rating" db:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment" db:"comment" validate:"max=2000"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RatingSummary is the aggregate of a tutor's reviews.
type RatingSummary struct {
	TutorID       string  `json:"tutor_id" db:"tutor_id"`
	AverageRating float64 `json:"average_rating" db:"average_rating"`
	RatingCount   int     `json:"rating_count" db:"rating_count"`
}

// Upload is a shared learning resource, recorded under the
// uploader's username.
type Upload struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Title         string    `json:"title" db:"title" validate:"required,max=255"`
	Course        string    `json:"course" db:"course" validate:"required,max=150"`
	Uploader      string    `json:"uploader" db:"uploader" validate:"required"`
	FavoriteCount int       `json:"favorite_count" db:"favorite_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// InteractionAction is what a student did with a resource.
type InteractionAction string

const (
	ActionUploaded   InteractionAction = "uploaded"
	ActionViewed     InteractionAction = "viewed"
	ActionDownloaded InteractionAction = "downloaded"
)

// ResourceInteraction records a student touching a shared resource.
type ResourceInteraction struct {
	ID         uuid.UUID         `json:"id" db:"id"`
	StudentID  string            `json:"student_id" db:"student_id" validate:"required"`
	ResourceID uuid.UUID         `json:"resource_id" db:"resource_id"`
	Title      string            `json:"title" db:"title"`
	Course     string            `json:"course" db:"course"`
	Action     InteractionAction `json:"action" db:"action"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
}

// ===============================
// CUSTOM TYPES
// ===============================

// StringArray handles PostgreSQL text[] columns stored in the
// {a,b,c} wire format.
type StringArray []string

// Scan implements sql.Scanner
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case string:
		v = strings.Trim(v, "{}")
		if v == "" {
			*s = StringArray{}
			return nil
		}
		*s = StringArray(strings.Split(v, ","))
	case []byte:
		return s.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
	return nil
}

// Value implements driver.Valuer
func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	return "{" + strings.Join(s, ",") + "}", nil
}

// ===============================
// VALIDATION HELPERS
// ===============================

// ValidateSessionStatus validates the session status enum
func ValidateSessionStatus(status string) bool {
	validStatuses := []SessionStatus{
		SessionPending, SessionAccepted, SessionScheduled,
		SessionCompleted, SessionCancelled, SessionRejected, SessionNoShow,
	}
	for _, valid := range validStatuses {
		if SessionStatus(status) == valid {
			return true
		}
	}
	return false
}

// ValidateRequestStatus validates the request status enum
func ValidateRequestStatus(status string) bool {
	validStatuses := []RequestStatus{
		RequestPending, RequestAccepted, RequestRejected,
		RequestCompleted, RequestCancelled,
	}
	for _, valid := range validStatuses {
		if RequestStatus(status) == valid {
			return true
		}
	}
	return false
}

// ValidateInteractionAction validates the resource interaction enum
func ValidateInteractionAction(action string) bool {
	validActions := []InteractionAction{ActionUploaded, ActionViewed, ActionDownloaded}
	for _, valid := range validActions {
		if InteractionAction(action) == valid {
			return true
		}
	}
	return false
}
