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

// sessionRepository implements SessionRepository backed by Postgres.
type sessionRepository struct {
	*BaseRepository
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.Manager, logger *zap.Logger) SessionRepository {
	return &sessionRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const sessionColumns = `
	id, student_id, tutor_id, course, session_date, duration_minutes,
	price, status, modality, meeting_link, meeting_room_id, created_at, updated_at`

func scanSession(row interface{ Scan(...interface{}) error }) (*models.Session, error) {
	var s models.Session
	err := row.Scan(
		&s.ID, &s.StudentID, &s.TutorID, &s.Course, &s.SessionDate, &s.DurationMinutes,
		&s.Price, &s.Status, &s.Modality, &s.MeetingLink, &s.MeetingRoomID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) collectSessions(ctx context.Context, query string, args ...interface{}) ([]*models.Session, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// Create inserts a new session record
func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate session id: %w", err)
		}
		session.ID = id
	}

	if session.Status == "" {
		session.Status = models.SessionPending
	}

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	query := `
		INSERT INTO sessions (
			id, student_id, tutor_id, course, session_date, duration_minutes,
			price, status, modality, meeting_link, meeting_room_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.ExecContext(ctx, query,
		session.ID, session.StudentID, session.TutorID, session.Course,
		session.SessionDate, session.DurationMinutes, session.Price, session.Status,
		session.Modality, session.MeetingLink, session.MeetingRoomID,
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByID fetches a session by ID
func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	query := `SELECT` + sessionColumns + ` FROM sessions WHERE id = $1`
	return scanSession(r.QueryRowContext(ctx, query, id))
}

// UpdateStatus moves a session through its lifecycle
func (r *sessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.SessionStatus) error {
	query := `UPDATE sessions SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("session %s not found", id)
	}

	return nil
}

func (r *sessionRepository) CountByStudentWithStatus(ctx context.Context, studentID string, status models.SessionStatus) (int, error) {
	query := `SELECT COUNT(*) FROM sessions WHERE student_id = $1 AND status = $2`
	return r.CountContext(ctx, query, studentID, status)
}

func (r *sessionRepository) CountByTutorWithStatus(ctx context.Context, tutorID string, status models.SessionStatus) (int, error) {
	query := `SELECT COUNT(*) FROM sessions WHERE tutor_id = $1 AND status = $2`
	return r.CountContext(ctx, query, tutorID, status)
}

func (r *sessionRepository) CountCompletedByStudentSince(ctx context.Context, studentID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM sessions
		WHERE student_id = $1 AND status = $2 AND session_date >= $3`
	return r.CountContext(ctx, query, studentID, models.SessionCompleted, since)
}

func (r *sessionRepository) CountDistinctCompletedDaysSince(ctx context.Context, studentID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT session_date::date) FROM sessions
		WHERE student_id = $1 AND status = $2 AND session_date >= $3`
	return r.CountContext(ctx, query, studentID, models.SessionCompleted, since)
}

// ListCompletedByParticipant returns completed sessions with the user
// on either side, most recent first. An empty key never matches.
func (r *sessionRepository) ListCompletedByParticipant(ctx context.Context, studentKey, tutorKey string, limit int) ([]*models.Session, error) {
	query := `SELECT` + sessionColumns + `
		FROM sessions
		WHERE status = $1 AND (student_id = $2 OR tutor_id = $3)
		ORDER BY session_date DESC`

	args := []interface{}{models.SessionCompleted, studentKey, tutorKey}
	if limit > 0 {
		query += ` LIMIT $4`
		args = append(args, limit)
	}

	return r.collectSessions(ctx, query, args...)
}

// ListRecentAttendance returns the most recent completed or no-show
// sessions with the user on either side.
func (r *sessionRepository) ListRecentAttendance(ctx context.Context, studentKey, tutorKey string, limit int) ([]*models.Session, error) {
	query := `SELECT` + sessionColumns + `
		FROM sessions
		WHERE status IN ($1, $2) AND (student_id = $3 OR tutor_id = $4)
		ORDER BY session_date DESC`

	args := []interface{}{models.SessionCompleted, models.SessionNoShow, studentKey, tutorKey}
	if limit > 0 {
		query += ` LIMIT $5`
		args = append(args, limit)
	}

	return r.collectSessions(ctx, query, args...)
}

func (r *sessionRepository) SumCompletedDurationByStudent(ctx context.Context, studentID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(duration_minutes), 0) FROM sessions
		WHERE student_id = $1 AND status = $2`
	return r.CountContext(ctx, query, studentID, models.SessionCompleted)
}

func (r *sessionRepository) SumCompletedDurationByTutor(ctx context.Context, tutorID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(duration_minutes), 0) FROM sessions
		WHERE tutor_id = $1 AND status = $2`
	return r.CountContext(ctx, query, tutorID, models.SessionCompleted)
}

// ExistsCompletedBetween reports whether the student has completed at
// least one session with the tutor. Reviews require this pairing.
func (r *sessionRepository) ExistsCompletedBetween(ctx context.Context, studentID, tutorID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM sessions
			WHERE student_id = $1 AND tutor_id = $2 AND status = $3
		)`

	var exists bool
	err := r.QueryRowContext(ctx, query, studentID, tutorID, models.SessionCompleted).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}
