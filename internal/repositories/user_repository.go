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

// userRepository implements UserRepository backed by Postgres.
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const userColumns = `
	id, username, email, password_hash, student_id, is_tutor,
	program, learning_interests, learning_level, preferred_learning_style,
	preferred_mode, budget_range, availability,
	average_rating, rating_count, created_at, updated_at`

func (r *userRepository) scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.StudentID, &u.IsTutor,
		&u.Program, &u.LearningInterests, &u.LearningLevel, &u.PreferredLearningStyle,
		&u.PreferredMode, &u.BudgetRange, &u.Availability,
		&u.AverageRating, &u.RatingCount, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user record
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (
			id, username, email, password_hash, student_id, is_tutor,
			program, learning_interests, learning_level, preferred_learning_style,
			preferred_mode, budget_range, availability, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.StudentID, user.IsTutor,
		user.Program, user.LearningInterests, user.LearningLevel, user.PreferredLearningStyle,
		user.PreferredMode, user.BudgetRange, user.Availability, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID fetches a user by storage identifier
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.QueryRowContext(ctx, query, id))
}

// GetByStudentID fetches a user by stable student key
func (r *userRepository) GetByStudentID(ctx context.Context, studentID string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE student_id = $1`
	return r.scanUser(r.QueryRowContext(ctx, query, studentID))
}

// GetByUsername fetches a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.QueryRowContext(ctx, query, username))
}

// GetByEmail fetches a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.QueryRowContext(ctx, query, email))
}

// ResolveIdentifier tries the stable student key first, then the
// storage-level user ID, then the username. Tutor-side activity is
// keyed by username, so triggers fired for tutors resolve through the
// last step.
func (r *userRepository) ResolveIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	user, err := r.GetByStudentID(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !r.IsNotFound(err) {
		return nil, err
	}

	if id, parseErr := uuid.FromString(identifier); parseErr == nil {
		user, err = r.GetByID(ctx, id)
		if err == nil {
			return user, nil
		}
		if !r.IsNotFound(err) {
			return nil, err
		}
	}

	return r.GetByUsername(ctx, identifier)
}

// UpdateProfile updates the mutable profile fields of a user
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET
			program = $2,
			learning_interests = $3,
			learning_level = $4,
			preferred_learning_style = $5,
			preferred_mode = $6,
			budget_range = $7,
			availability = $8,
			is_tutor = $9,
			updated_at = $10
		WHERE id = $1`

	result, err := r.ExecContext(ctx, query,
		user.ID, user.Program, user.LearningInterests, user.LearningLevel,
		user.PreferredLearningStyle, user.PreferredMode, user.BudgetRange,
		user.Availability, user.IsTutor, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("user %s not found", user.ID)
	}

	return nil
}

// UpdateRating stores a tutor's recomputed rating aggregate
func (r *userRepository) UpdateRating(ctx context.Context, username string, average float64, count int) error {
	query := `
		UPDATE users SET average_rating = $2, rating_count = $3, updated_at = $4
		WHERE username = $1`

	_, err := r.ExecContext(ctx, query, username, average, count, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update tutor rating: %w", err)
	}

	return nil
}

// ListEarnedBadges returns the user's earned set, oldest first
func (r *userRepository) ListEarnedBadges(ctx context.Context, userID uuid.UUID) ([]models.EarnedBadge, error) {
	query := `
		SELECT ub.user_id, ub.badge_id, ub.earned_at, b.name
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
		ORDER BY ub.earned_at ASC`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list earned badges: %w", err)
	}
	defer rows.Close()

	var earned []models.EarnedBadge
	for rows.Next() {
		var e models.EarnedBadge
		if err := rows.Scan(&e.UserID, &e.BadgeID, &e.EarnedAt, &e.BadgeName); err != nil {
			return nil, err
		}
		earned = append(earned, e)
	}

	return earned, rows.Err()
}

// AddEarnedBadge conditionally appends to the earned set. The primary
// key on (user_id, badge_id) makes concurrent duplicate awards lose
// the race instead of double-inserting.
func (r *userRepository) AddEarnedBadge(ctx context.Context, userID, badgeID uuid.UUID, earnedAt time.Time) (bool, error) {
	query := `
		INSERT INTO user_badges (user_id, badge_id, earned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, badge_id) DO NOTHING`

	result, err := r.ExecContext(ctx, query, userID, badgeID, earnedAt)
	if err != nil {
		return false, fmt.Errorf("failed to record earned badge: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}
