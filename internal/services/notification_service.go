package services

import (
	"context"

	"tutorhub/internal/events"

	"go.uber.org/zap"
)

// ===============================
// NOTIFICATION SERVICE
// ===============================

// NotificationService delivers badge notifications. Delivery is
// fire-and-forget: a failed notification never blocks or fails the
// award that produced it.
type NotificationService interface {
	// Subscribe attaches the service to the event bus.
	Subscribe(bus events.EventBus) error
}

type notificationService struct {
	logger *zap.Logger
}

// NewNotificationService creates the notification service
func NewNotificationService(logger *zap.Logger) NotificationService {
	return &notificationService{logger: logger}
}

func (s *notificationService) Subscribe(bus events.EventBus) error {
	handler := events.NewEventHandlerFunc("badge-notifications", s.handleBadgeAwarded)
	return bus.Subscribe(events.EventTypeBadgeAwarded, handler)
}

func (s *notificationService) handleBadgeAwarded(ctx context.Context, event events.Event) error {
	awarded, ok := event.(*events.BadgeAwardedEvent)
	if !ok {
		return nil
	}

	s.logger.Info("badge notification",
		zap.String("username", awarded.Username),
		zap.String("badge", awarded.BadgeName),
		zap.String("rarity", awarded.Rarity),
		zap.Int("points", awarded.Points),
		zap.Time("earned_at", awarded.EarnedAt))

	return nil
}
