package services

import (
	"context"

	"tutorhub/internal/cache"
	"tutorhub/internal/config"
	"tutorhub/internal/database"
	"tutorhub/internal/events"
	"tutorhub/internal/repositories"

	"go.uber.org/zap"
)

// ===============================
// SERVICE COLLECTION
// ===============================

// ServiceCollection wires the repositories and services together and
// owns their shared infrastructure.
type ServiceCollection struct {
	Users         UserService
	Requests      RequestService
	Reviews       ReviewService
	Resources     ResourceService
	Badges        BadgeService
	BadgeCatalog  BadgeCatalogService
	Notifications NotificationService

	db       *database.Manager
	cache    cache.Cache
	eventBus events.EventBus
	logger   *zap.Logger
}

// NewServiceCollection builds the full service graph
func NewServiceCollection(
	db *database.Manager,
	cacheClient cache.Cache,
	eventBus events.EventBus,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	userRepo := repositories.NewUserRepository(db, logger)
	badgeRepo := repositories.NewBadgeRepository(db, logger)
	sessionRepo := repositories.NewSessionRepository(db, logger)
	requestRepo := repositories.NewRequestRepository(db, logger)
	reviewRepo := repositories.NewReviewRepository(db, logger)
	resourceRepo := repositories.NewResourceRepository(db, logger)

	catalog := NewBadgeCatalogService(badgeRepo, &cfg.Badges, logger)
	badges := NewBadgeService(
		userRepo, sessionRepo, requestRepo, reviewRepo, resourceRepo,
		catalog, eventBus, &cfg.Badges, logger,
	)

	notifications := NewNotificationService(logger)
	if err := notifications.Subscribe(eventBus); err != nil {
		return nil, err
	}

	return &ServiceCollection{
		Users:         NewUserService(userRepo, badges, eventBus, &cfg.Auth, logger),
		Requests:      NewRequestService(requestRepo, sessionRepo, userRepo, badges, logger),
		Reviews:       NewReviewService(reviewRepo, sessionRepo, userRepo, badges, cacheClient, logger),
		Resources:     NewResourceService(resourceRepo, userRepo, badges, logger),
		Badges:        badges,
		BadgeCatalog:  catalog,
		Notifications: notifications,
		db:            db,
		cache:         cacheClient,
		eventBus:      eventBus,
		logger:        logger,
	}, nil
}

// SeedBadgeCatalog upserts the default badge set. Called at startup.
func (sc *ServiceCollection) SeedBadgeCatalog(ctx context.Context) error {
	return sc.BadgeCatalog.Seed(ctx)
}

// Health reports the health of shared infrastructure.
func (sc *ServiceCollection) Health(ctx context.Context) map[string]string {
	health := make(map[string]string)

	if err := sc.db.Ping(ctx); err != nil {
		health["database"] = err.Error()
	} else {
		health["database"] = "ok"
	}

	if err := sc.cache.Health(ctx); err != nil {
		health["cache"] = err.Error()
	} else {
		health["cache"] = "ok"
	}

	if err := sc.eventBus.Health(); err != nil {
		health["events"] = err.Error()
	} else {
		health["events"] = "ok"
	}

	return health
}
