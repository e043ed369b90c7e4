package services

import (
	"time"

	"tutorhub/internal/models"

	"github.com/gofrs/uuid"
)

// ===============================
// USER SERVICE TYPES
// ===============================

// RegisterUserRequest carries everything needed to create an account
type RegisterUserRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Username  string  `json:"username" validate:"required,min=3,max=50"`
	Password  string  `json:"password" validate:"required,min=8"`
	StudentID *string `json:"student_id,omitempty" validate:"omitempty,min=1,max=64"`
	IsTutor   bool    `json:"is_tutor"`
	Program   string  `json:"program,omitempty"`
}

// UpdateProfileRequest updates a user's learning profile
type UpdateProfileRequest struct {
	Identifier             string   `json:"-" validate:"required"`
	Program                *string  `json:"program,omitempty"`
	LearningInterests      []string `json:"learning_interests,omitempty"`
	LearningLevel          *string  `json:"learning_level,omitempty"`
	PreferredLearningStyle *string  `json:"preferred_learning_style,omitempty"`
	PreferredMode          *string  `json:"preferred_mode,omitempty"`
	BudgetRange            *string  `json:"budget_range,omitempty"`
	Availability           []string `json:"availability,omitempty"`
	IsTutor                *bool    `json:"is_tutor,omitempty"`
}

// ===============================
// REQUEST SERVICE TYPES
// ===============================

// SendRequestRequest is a student asking a tutor for a session
type SendRequestRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	TutorID   string  `json:"tutor_id" validate:"required"`
	Course    string  `json:"course" validate:"required"`
	Comment   *string `json:"comment,omitempty"`

	// Session details used when the request is accepted
	SessionDate     time.Time `json:"session_date" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=15,max=480"`
	Price           float64   `json:"price" validate:"min=0"`
	Modality        *string   `json:"modality,omitempty"`
}

// UpdateRequestStatusRequest moves a request through its lifecycle
type UpdateRequestStatusRequest struct {
	RequestID uuid.UUID            `json:"-" validate:"required"`
	Status    models.RequestStatus `json:"status" validate:"required"`
}

// ===============================
// REVIEW SERVICE TYPES
// ===============================

// SubmitReviewRequest is a student rating a tutor after a session
type SubmitReviewRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	TutorID   string `json:"tutor_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// ===============================
// RESOURCE SERVICE TYPES
// ===============================

// ShareResourceRequest records a newly shared learning resource
type ShareResourceRequest struct {
	Uploader string `json:"uploader" validate:"required"`
	Title    string `json:"title" validate:"required,max=200"`
	Course   string `json:"course" validate:"required,max=100"`
}

// ViewResourceRequest records a student viewing a resource
type ViewResourceRequest struct {
	StudentID  string    `json:"student_id" validate:"required"`
	ResourceID uuid.UUID `json:"resource_id" validate:"required"`
	Title      string    `json:"title,omitempty"`
	Course     string    `json:"course,omitempty"`
}

// ===============================
// BADGE SERVICE TYPES
// ===============================

// AwardResult reports the outcome of one evaluation pass
type AwardResult struct {
	Identifier string   `json:"identifier"`
	Awarded    []string `json:"awarded"`
}
