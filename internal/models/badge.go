package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// CriteriaType tags the condition a badge checks. Each type has a
// dedicated evaluator; unknown types are skipped, never fatal.
type CriteriaType string

const (
	CriteriaRequestsSent         CriteriaType = "requests_sent"
	CriteriaRequestsAccepted     CriteriaType = "requests_accepted"
	CriteriaSessionsCompleted    CriteriaType = "sessions_completed"
	CriteriaSessionsHosted       CriteriaType = "sessions_hosted"
	CriteriaFirstSession         CriteriaType = "first_session"
	CriteriaFiveStarReviews      CriteriaType = "five_star_reviews"
	CriteriaConsecutiveSessions  CriteriaType = "consecutive_sessions"
	CriteriaQuickLearner         CriteriaType = "quick_learner"
	CriteriaHelpfulTutor         CriteriaType = "helpful_tutor"
	CriteriaEarlyAdopter         CriteriaType = "early_adopter"
	CriteriaPerfectAttendance    CriteriaType = "perfect_attendance"
	CriteriaTotalDuration        CriteriaType = "total_duration"
	CriteriaResourcesViewed      CriteriaType = "resources_viewed"
	CriteriaConsistentLearner    CriteriaType = "consistent_learner"
	CriteriaCommunityContributor CriteriaType = "community_contributor"
	CriteriaSessionStreak        CriteriaType = "session_streak"
)

// BadgeRole gates badge eligibility by the side of the marketplace
// the user acts on.
type BadgeRole string

const (
	RoleStudent BadgeRole = "student"
	RoleTutor   BadgeRole = "tutor"
	RoleBoth    BadgeRole = "both"
)

// BadgeRarity is cosmetic only; it never affects eligibility.
type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

// BadgeCriteria is the testable condition attached to a badge.
// Threshold is the count/sum the evaluator compares against;
// TimeframeDays scopes rolling-window criteria and is nil for the
// rest; Consecutive marks criteria that require adjacency.
type BadgeCriteria struct {
	Type          CriteriaType `json:"type" db:"criteria_type"`
	Threshold     int          `json:"threshold" db:"criteria_threshold" validate:"min=0"`
	TimeframeDays *int         `json:"timeframe_days,omitempty" db:"criteria_timeframe_days"`
	Consecutive   bool         `json:"consecutive" db:"criteria_consecutive"`
}

// BadgeReward is what earning the badge grants.
type BadgeReward struct {
	Points int         `json:"points" db:"reward_points" validate:"min=0"`
	Perks  StringArray `json:"perks" db:"reward_perks"`
}

// Badge is one achievement definition in the rule catalog. Badges are
// seeded at startup via an idempotent upsert by name and are
// read-only afterwards.
type Badge struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Name        string        `json:"name" db:"name" validate:"required,max=100"`
	Description string        `json:"description" db:"description" validate:"max=500"`
	Icon        string        `json:"icon" db:"icon"`
	Role        BadgeRole     `json:"role" db:"role" validate:"required,oneof=student tutor both"`
	Rarity      BadgeRarity   `json:"rarity" db:"rarity" validate:"required,oneof=common rare epic legendary"`
	Criteria    BadgeCriteria `json:"criteria"`
	Reward      BadgeReward   `json:"reward"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// EligibleFor reports whether the badge's role gate admits a user
// with the given identities. Student-only badges need a student key;
// tutor-only badges need the tutor flag.
func (b *Badge) EligibleFor(isStudent, isTutor bool) bool {
	switch b.Role {
	case RoleStudent:
		return isStudent
	case RoleTutor:
		return isTutor
	default:
		return true
	}
}

// HasCriteria reports whether the badge carries a usable criterion.
// Malformed catalog rows are skipped during evaluation.
func (b *Badge) HasCriteria() bool {
	return b.Criteria.Type != ""
}

// ValidateCriteriaType validates the criteria type enum
func ValidateCriteriaType(t string) bool {
	validTypes := []CriteriaType{
		CriteriaRequestsSent, CriteriaRequestsAccepted,
		CriteriaSessionsCompleted, CriteriaSessionsHosted,
		CriteriaFirstSession, CriteriaFiveStarReviews,
		CriteriaConsecutiveSessions, CriteriaQuickLearner,
		CriteriaHelpfulTutor, CriteriaEarlyAdopter,
		CriteriaPerfectAttendance, CriteriaTotalDuration,
		CriteriaResourcesViewed, CriteriaConsistentLearner,
		CriteriaCommunityContributor, CriteriaSessionStreak,
	}
	for _, valid := range validTypes {
		if CriteriaType(t) == valid {
			return true
		}
	}
	return false
}
