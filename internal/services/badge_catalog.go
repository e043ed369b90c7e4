package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tutorhub/internal/config"
	"tutorhub/internal/models"
	"tutorhub/internal/repositories"

	"go.uber.org/zap"
)

// ===============================
// BADGE CATALOG SERVICE
// ===============================

// BadgeCatalogService owns the set of awardable badges. Every award
// pass reads the catalog through it, so rules added or changed at
// runtime are picked up without a restart (after Invalidate).
type BadgeCatalogService interface {
	// Seed upserts the default badge set. Existing badges with the
	// same name are updated in place, keeping their IDs.
	Seed(ctx context.Context) error

	// Rules returns the full catalog in stable order.
	Rules(ctx context.Context) ([]*models.Badge, error)

	// GetByName looks up a single badge rule.
	GetByName(ctx context.Context, name string) (*models.Badge, error)

	// Upsert adds or replaces a rule and invalidates the cache.
	Upsert(ctx context.Context, badge *models.Badge) error

	// Invalidate drops the cached catalog.
	Invalidate()
}

type badgeCatalogService struct {
	badges repositories.BadgeRepository
	config *config.BadgeConfig
	logger *zap.Logger

	mu        sync.RWMutex
	cached    []*models.Badge
	fetchedAt time.Time
}

// NewBadgeCatalogService creates the catalog service
func NewBadgeCatalogService(badges repositories.BadgeRepository, cfg *config.BadgeConfig, logger *zap.Logger) BadgeCatalogService {
	return &badgeCatalogService{
		badges: badges,
		config: cfg,
		logger: logger,
	}
}

func (s *badgeCatalogService) Seed(ctx context.Context) error {
	for _, badge := range defaultBadges() {
		badge := badge
		if err := s.badges.UpsertByName(ctx, &badge); err != nil {
			return fmt.Errorf("failed to seed badge %q: %w", badge.Name, err)
		}
	}

	s.Invalidate()
	s.logger.Info("badge catalog seeded", zap.Int("badges", len(defaultBadges())))
	return nil
}

func (s *badgeCatalogService) Rules(ctx context.Context) ([]*models.Badge, error) {
	ttl := s.config.CatalogCacheTTL

	s.mu.RLock()
	if s.cached != nil && (ttl <= 0 || time.Since(s.fetchedAt) < ttl) {
		cached := s.cached
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	badges, err := s.badges.List(ctx)
	if err != nil {
		return nil, NewInternalError("failed to load badge catalog")
	}

	s.mu.Lock()
	s.cached = badges
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return badges, nil
}

func (s *badgeCatalogService) GetByName(ctx context.Context, name string) (*models.Badge, error) {
	badge, err := s.badges.GetByName(ctx, name)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, EntityNotFoundError("badge", name)
		}
		return nil, NewInternalError("failed to load badge")
	}
	return badge, nil
}

func (s *badgeCatalogService) Upsert(ctx context.Context, badge *models.Badge) error {
	if badge.Name == "" {
		return InvalidInputError("name", "badge name is required")
	}
	if !badge.HasCriteria() {
		return InvalidInputError("criteria", "badge criteria type is required")
	}
	if !models.ValidateCriteriaType(string(badge.Criteria.Type)) {
		return InvalidInputError("criteria", "unknown badge criteria type")
	}

	if err := s.badges.UpsertByName(ctx, badge); err != nil {
		return NewInternalError("failed to save badge")
	}

	s.Invalidate()
	return nil
}

func (s *badgeCatalogService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// ===============================
// DEFAULT BADGE SET
// ===============================

func intPtr(v int) *int { return &v }

// defaultBadges returns the shipped badge rules. Seed upserts these by
// name so the set stays current across deploys.
func defaultBadges() []models.Badge {
	return []models.Badge{
		{
			Name:        "First Session",
			Description: "Complete your first tutoring session",
			Icon:        "🎯",
			Role:        models.RoleBoth,
			Rarity:      models.RarityCommon,
			Criteria:    models.BadgeCriteria{Type: models.CriteriaFirstSession, Threshold: 1},
			Reward:      models.BadgeReward{Points: 100},
		},
		{
			Name:        "Dedicated Learner",
			Description: "Complete 10 tutoring sessions",
			Icon:        "📚",
			Role:        models.RoleStudent,
			Rarity:      models.RarityCommon,
			Criteria:    models.BadgeCriteria{Type: models.CriteriaSessionsCompleted, Threshold: 10},
			Reward:      models.BadgeReward{Points: 500},
		},
		{
			Name:        "Expert Tutor",
			Description: "Host 20 tutoring sessions",
			Icon:        "👨‍🏫",
			Role:        models.RoleTutor,
			Rarity:      models.RarityRare,
			Criteria:    models.BadgeCriteria{Type: models.CriteriaSessionsHosted, Threshold: 20},
			Reward:      models.BadgeReward{Points: 1000},
		},
		{
			Name:        "Quick Learner",
			Description: "Complete 5 sessions within 2 weeks",
			Icon:        "⚡",
			Role:        models.RoleStudent,
			Rarity:      models.RarityRare,
			Criteria:    models.BadgeCriteria{Type: models.CriteriaQuickLearner, Threshold: 5, TimeframeDays: intPtr(14)},
			Reward:      models.BadgeReward{Points: 750},
		},
		{
			Name:        "Perfect Attendance",
			Description: "Complete 10 sessions without any no-shows",
			Icon:        "⭐",
			Role:        models.RoleBoth,
			Rarity:      models.RarityEpic,
			Criteria:    models.BadgeCriteria{Type: models.CriteriaPerfectAttendance, Threshold: 10},
			Reward:      models.BadgeReward{Points: 2000},
		},
		{
			Name:        "Time Master",
			Description: "Spend 1000 minutes in tutoring sessions",
			Icon:        "⏰",
			Role:        models.RoleBoth,
			Rarity:      models.RarityRare,
			Criteria:    models.BadgeCriteria{Type: models.CriteriaTotalDuration, Threshold: 1000},
			Reward:      models.BadgeReward{Points: 1500},
		},
		{
			Name:        "Resource Explorer",
			Description: "View 50 learning resources",
			Icon:        "🔍",
			Role:        models.RoleStudent,
			Rarity:      models.RarityCommon,
			Criteria:    models.BadgeCriteria{Type: models.CriteriaResourcesViewed, Threshold: 50},
			Reward:      models.BadgeReward{Points: 800},
		},
		{
			Name:        "Consistent Learner",
			Description: "Learn on 15 different days in a month",
			Icon:        "📅",
			Role:        models.RoleStudent,
			Rarity:      models.RarityRare,
			Criteria:    models.BadgeCriteria{Type: models.CriteriaConsistentLearner, Threshold: 15, TimeframeDays: intPtr(30)},
			Reward:      models.BadgeReward{Points: 1200},
		},
		{
			Name:        "Community Contributor",
			Description: "Host 10 sessions and share 5 resources",
			Icon:        "🤝",
			Role:        models.RoleTutor,
			Rarity:      models.RarityEpic,
			Criteria:    models.BadgeCriteria{Type: models.CriteriaCommunityContributor, Threshold: 15},
			Reward:      models.BadgeReward{Points: 2000},
		},
		{
			Name:        "Session Streak",
			Description: "Complete sessions for 7 consecutive days",
			Icon:        "🔥",
			Role:        models.RoleBoth,
			Rarity:      models.RarityLegendary,
			Criteria:    models.BadgeCriteria{Type: models.CriteriaSessionStreak, Threshold: 7},
			Reward:      models.BadgeReward{Points: 3000},
		},
		{
			Name:        "Helpful Guide",
			Description: "Receive 10 positive reviews as a tutor",
			Icon:        "💫",
			Role:        models.RoleTutor,
			Rarity:      models.RarityRare,
			Criteria:    models.BadgeCriteria{Type: models.CriteriaHelpfulTutor, Threshold: 10},
			Reward:      models.BadgeReward{Points: 1500},
		},
	}
}
