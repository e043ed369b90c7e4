package events

import "time"

// TriggerType names a domain action that prompts a badge check.
// Every type routes to the same full-catalog re-evaluation; the
// distinction exists for logging and future per-event filtering.
type TriggerType string

const (
	TriggerUserRegistered   TriggerType = "USER_REGISTERED"
	TriggerProfileUpdated   TriggerType = "PROFILE_UPDATED"
	TriggerRequestSent      TriggerType = "REQUEST_SENT"
	TriggerRequestAccepted  TriggerType = "REQUEST_ACCEPTED"
	TriggerSessionCompleted TriggerType = "SESSION_COMPLETED"
	TriggerSessionHosted    TriggerType = "SESSION_HOSTED"
	TriggerReviewSubmitted  TriggerType = "REVIEW_SUBMITTED"
	TriggerResourceViewed   TriggerType = "RESOURCE_VIEWED"
	TriggerResourceShared   TriggerType = "RESOURCE_SHARED"
)

// Event type names published on the bus.
const (
	EventTypeBadgeAwarded   = "badge.awarded"
	EventTypeUserRegistered = "user.registered"
)

// BadgeAwardedEvent is emitted once per newly earned badge.
type BadgeAwardedEvent struct {
	BaseEvent
	Username  string    `json:"username"`
	BadgeID   string    `json:"badge_id"`
	BadgeName string    `json:"badge_name"`
	Rarity    string    `json:"rarity"`
	Points    int       `json:"points"`
	EarnedAt  time.Time `json:"earned_at"`
}

// NewBadgeAwardedEvent creates a new badge awarded event
func NewBadgeAwardedEvent(userID, username, badgeID, badgeName, rarity string, points int, earnedAt time.Time) *BadgeAwardedEvent {
	return &BadgeAwardedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventTypeBadgeAwarded,
			Timestamp: time.Now(),
			UserID:    userID,
		},
		Username:  username,
		BadgeID:   badgeID,
		BadgeName: badgeName,
		Rarity:    rarity,
		Points:    points,
		EarnedAt:  earnedAt,
	}
}

// UserRegisteredEvent is emitted after a successful registration.
type UserRegisteredEvent struct {
	BaseEvent
	Username string `json:"username"`
	Email    string `json:"email"`
	IsTutor  bool   `json:"is_tutor"`
}

// NewUserRegisteredEvent creates a new user registered event
func NewUserRegisteredEvent(userID, username, email string, isTutor bool) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventTypeUserRegistered,
			Timestamp: time.Now(),
			UserID:    userID,
		},
		Username: username,
		Email:    email,
		IsTutor:  isTutor,
	}
}
