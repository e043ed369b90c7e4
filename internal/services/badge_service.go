package services

import (
	"context"
	"sync"
	"time"

	"tutorhub/internal/config"
	"tutorhub/internal/events"
	"tutorhub/internal/models"
	"tutorhub/internal/repositories"

	"go.uber.org/zap"
)

// ===============================
// BADGE SERVICE
// ===============================

// BadgeService is the award engine. Every domain trigger funnels into
// a full catalog re-evaluation for the affected user.
type BadgeService interface {
	// AwardEligible evaluates the whole catalog for the user and
	// grants every newly satisfied badge. The identifier may be a
	// student key or a user ID; an unresolvable identifier is a
	// silent no-op. Returns the names of badges awarded in this pass.
	AwardEligible(ctx context.Context, identifier string) ([]string, error)

	// Trigger is the event-facing facade. All trigger types, known or
	// not, route to a full re-evaluation. Errors are logged, never
	// propagated to the trigger site.
	Trigger(ctx context.Context, trigger events.TriggerType, identifier string) []string

	// ListEarned returns the user's earned badges, oldest first.
	ListEarned(ctx context.Context, identifier string) ([]models.EarnedBadge, error)
}

type badgeService struct {
	users     repositories.UserRepository
	sessions  repositories.SessionRepository
	requests  repositories.RequestRepository
	reviews   repositories.ReviewRepository
	resources repositories.ResourceRepository
	catalog   BadgeCatalogService
	eventBus  events.EventBus
	config    *config.BadgeConfig
	logger    *zap.Logger

	// userLocks serializes award passes per user so two concurrent
	// triggers cannot both evaluate and insert the same badge. The
	// user_badges conflict clause backstops anything that slips
	// through across processes.
	locksMu   sync.Mutex
	userLocks map[string]*sync.Mutex

	now func() time.Time
}

// NewBadgeService creates the award engine
func NewBadgeService(
	users repositories.UserRepository,
	sessions repositories.SessionRepository,
	requests repositories.RequestRepository,
	reviews repositories.ReviewRepository,
	resources repositories.ResourceRepository,
	catalog BadgeCatalogService,
	eventBus events.EventBus,
	cfg *config.BadgeConfig,
	logger *zap.Logger,
) BadgeService {
	return &badgeService{
		users:     users,
		sessions:  sessions,
		requests:  requests,
		reviews:   reviews,
		resources: resources,
		catalog:   catalog,
		eventBus:  eventBus,
		config:    cfg,
		logger:    logger,
		userLocks: make(map[string]*sync.Mutex),
		now:       time.Now,
	}
}

func (s *badgeService) AwardEligible(ctx context.Context, identifier string) ([]string, error) {
	if identifier == "" {
		return nil, nil
	}

	user, err := s.users.ResolveIdentifier(ctx, identifier)
	if err != nil {
		if repositories.IsNotFound(err) {
			s.logger.Debug("badge evaluation skipped, user not found",
				zap.String("identifier", identifier))
			return nil, nil
		}
		return nil, NewInternalError("failed to resolve user for badge evaluation")
	}

	lock := s.lockFor(user.ID.String())
	lock.Lock()
	defer lock.Unlock()

	badges, err := s.catalog.Rules(ctx)
	if err != nil {
		return nil, err
	}

	earned, err := s.users.ListEarnedBadges(ctx, user.ID)
	if err != nil {
		return nil, NewInternalError("failed to load earned badges")
	}
	earnedSet := make(map[string]bool, len(earned))
	for _, e := range earned {
		earnedSet[e.BadgeID.String()] = true
	}

	ec := &evalContext{
		user:       user,
		studentKey: user.StudentKey(),
		tutorKey:   user.TutorKey(),
		now:        s.now(),
		sessions:   s.sessions,
		requests:   s.requests,
		reviews:    s.reviews,
		resources:  s.resources,
		config:     s.config,
	}
	isStudent := user.IsStudent()

	var awarded []string
	for _, badge := range badges {
		if earnedSet[badge.ID.String()] {
			continue
		}
		if !badge.EligibleFor(isStudent, user.IsTutor) {
			continue
		}
		if !badge.HasCriteria() {
			continue
		}

		evaluate, ok := criterionEvaluators[badge.Criteria.Type]
		if !ok {
			s.logger.Warn("skipping badge with unknown criteria type",
				zap.String("badge", badge.Name),
				zap.String("criteria_type", string(badge.Criteria.Type)))
			continue
		}

		met, err := evaluate(ctx, ec, badge.Criteria)
		if err != nil {
			// Store failures surface to the trigger site, which
			// catches and logs so the primary action is unaffected.
			return awarded, NewInternalError("badge criteria evaluation failed").WithCause(err)
		}
		if !met {
			continue
		}

		earnedAt := s.now()
		inserted, err := s.users.AddEarnedBadge(ctx, user.ID, badge.ID, earnedAt)
		if err != nil {
			s.logger.Error("failed to record earned badge",
				zap.String("badge", badge.Name),
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
			continue
		}
		if !inserted {
			// Another process won the race; the badge is earned
			// either way, just not by this pass.
			continue
		}

		awarded = append(awarded, badge.Name)
		s.logger.Info("badge awarded",
			zap.String("badge", badge.Name),
			zap.String("username", user.Username),
			zap.String("rarity", string(badge.Rarity)))

		s.notifyAwarded(ctx, user, badge, earnedAt)
	}

	return awarded, nil
}

func (s *badgeService) Trigger(ctx context.Context, trigger events.TriggerType, identifier string) []string {
	s.logger.Debug("badge trigger received",
		zap.String("trigger", string(trigger)),
		zap.String("identifier", identifier))

	awarded, err := s.AwardEligible(ctx, identifier)
	if err != nil {
		s.logger.Error("badge evaluation failed",
			zap.String("trigger", string(trigger)),
			zap.String("identifier", identifier),
			zap.Error(err))
		return nil
	}
	return awarded
}

func (s *badgeService) ListEarned(ctx context.Context, identifier string) ([]models.EarnedBadge, error) {
	user, err := s.users.ResolveIdentifier(ctx, identifier)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, EntityNotFoundError("user", identifier)
		}
		return nil, NewInternalError("failed to resolve user")
	}

	earned, err := s.users.ListEarnedBadges(ctx, user.ID)
	if err != nil {
		return nil, NewInternalError("failed to load earned badges")
	}
	return earned, nil
}

func (s *badgeService) lockFor(key string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.userLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[key] = lock
	}
	return lock
}

func (s *badgeService) notifyAwarded(ctx context.Context, user *models.User, badge *models.Badge, earnedAt time.Time) {
	if s.eventBus == nil {
		return
	}

	event := events.NewBadgeAwardedEvent(
		user.ID.String(), user.Username,
		badge.ID.String(), badge.Name,
		string(badge.Rarity), badge.Reward.Points, earnedAt,
	)
	if err := s.eventBus.PublishAsync(ctx, event); err != nil {
		s.logger.Warn("failed to publish badge awarded event",
			zap.String("badge", badge.Name),
			zap.Error(err))
	}
}
