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

// badgeRepository implements BadgeRepository backed by Postgres.
type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db *database.Manager, logger *zap.Logger) BadgeRepository {
	return &badgeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const badgeColumns = `
	id, name, description, icon, role, rarity,
	criteria_type, criteria_threshold, criteria_timeframe_days, criteria_consecutive,
	reward_points, reward_perks, created_at, updated_at`

func scanBadge(row interface{ Scan(...interface{}) error }) (*models.Badge, error) {
	var b models.Badge
	err := row.Scan(
		&b.ID, &b.Name, &b.Description, &b.Icon, &b.Role, &b.Rarity,
		&b.Criteria.Type, &b.Criteria.Threshold, &b.Criteria.TimeframeDays, &b.Criteria.Consecutive,
		&b.Reward.Points, &b.Reward.Perks, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns the full catalog in stable seeding order
func (r *badgeRepository) List(ctx context.Context) ([]*models.Badge, error) {
	query := `SELECT` + badgeColumns + ` FROM badges ORDER BY created_at ASC, name ASC`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var badges []*models.Badge
	for rows.Next() {
		badge, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		badges = append(badges, badge)
	}

	return badges, rows.Err()
}

// GetByName fetches a badge by its unique name
func (r *badgeRepository) GetByName(ctx context.Context, name string) (*models.Badge, error) {
	query := `SELECT` + badgeColumns + ` FROM badges WHERE name = $1`
	return scanBadge(r.QueryRowContext(ctx, query, name))
}

// UpsertByName creates or refreshes a badge definition. Existing rows
// keep their id and created_at so catalog order stays stable across
// restarts.
func (r *badgeRepository) UpsertByName(ctx context.Context, badge *models.Badge) error {
	if badge.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate badge id: %w", err)
		}
		badge.ID = id
	}

	now := time.Now()

	query := `
		INSERT INTO badges (
			id, name, description, icon, role, rarity,
			criteria_type, criteria_threshold, criteria_timeframe_days, criteria_consecutive,
			reward_points, reward_perks, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			icon = EXCLUDED.icon,
			role = EXCLUDED.role,
			rarity = EXCLUDED.rarity,
			criteria_type = EXCLUDED.criteria_type,
			criteria_threshold = EXCLUDED.criteria_threshold,
			criteria_timeframe_days = EXCLUDED.criteria_timeframe_days,
			criteria_consecutive = EXCLUDED.criteria_consecutive,
			reward_points = EXCLUDED.reward_points,
			reward_perks = EXCLUDED.reward_perks,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	err := r.QueryRowContext(ctx, query,
		badge.ID, badge.Name, badge.Description, badge.Icon, badge.Role, badge.Rarity,
		badge.Criteria.Type, badge.Criteria.Threshold, badge.Criteria.TimeframeDays, badge.Criteria.Consecutive,
		badge.Reward.Points, badge.Reward.Perks, now, now,
	).Scan(&badge.ID, &badge.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert badge %q: %w", badge.Name, err)
	}

	badge.UpdatedAt = now
	return nil
}
