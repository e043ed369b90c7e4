package repositories

import (
	"context"
	"fmt"
	"time"

	"tutorhub/internal/database"
	"tutorhub/internal/models"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// requestRepository implements RequestRepository backed by Postgres.
type requestRepository struct {
	*BaseRepository
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *database.Manager, logger *zap.Logger) RequestRepository {
	return &requestRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const requestColumns = `
	id, student_id, tutor_id, course, session_date, duration_minutes, price,
	status, modality, comment, session_id, created_at, updated_at`

func scanRequest(row interface{ Scan(...interface{}) error }) (*models.Request, error) {
	var req models.Request
	err := row.Scan(
		&req.ID, &req.StudentID, &req.TutorID, &req.Course,
		&req.SessionDate, &req.DurationMinutes, &req.Price,
		&req.Status, &req.Modality, &req.Comment, &req.SessionID,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Create inserts a new tutoring request
func (r *requestRepository) Create(ctx context.Context, request *models.Request) error {
	if request.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate request id: %w", err)
		}
		request.ID = id
	}

	if request.Status == "" {
		request.Status = models.RequestPending
	}

	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now

	query := `
		INSERT INTO requests (
			id, student_id, tutor_id, course, session_date, duration_minutes, price,
			status, modality, comment, session_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.ExecContext(ctx, query,
		request.ID, request.StudentID, request.TutorID, request.Course,
		request.SessionDate, request.DurationMinutes, request.Price,
		request.Status, request.Modality, request.Comment, request.SessionID,
		request.CreatedAt, request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

// GetByID fetches a request by ID
func (r *requestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	query := `SELECT` + requestColumns + ` FROM requests WHERE id = $1`
	return scanRequest(r.QueryRowContext(ctx, query, id))
}

// UpdateStatus moves a request through its lifecycle
func (r *requestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error {
	query := `UPDATE requests SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("request %s not found", id)
	}

	return nil
}

// LinkSession attaches the session created when a request is accepted
func (r *requestRepository) LinkSession(ctx context.Context, id uuid.UUID, sessionID uuid.UUID) error {
	query := `UPDATE requests SET session_id = $2, updated_at = $3 WHERE id = $1`

	result, err := r.ExecContext(ctx, query, id, sessionID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to link session to request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("request %s not found", id)
	}

	return nil
}

func (r *requestRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	query := `SELECT COUNT(*) FROM requests WHERE student_id = $1`
	return r.CountContext(ctx, query, studentID)
}

func (r *requestRepository) CountByStudentWithStatus(ctx context.Context, studentID string, status models.RequestStatus) (int, error) {
	query := `SELECT COUNT(*) FROM requests WHERE student_id = $1 AND status = $2`
	return r.CountContext(ctx, query, studentID, status)
}
