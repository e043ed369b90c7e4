package services

import (
	"context"
	"math"
	"time"

	"tutorhub/internal/config"
	"tutorhub/internal/models"
	"tutorhub/internal/repositories"
)

// ===============================
// CRITERION EVALUATION
// ===============================

// helpfulCommentPattern matches positive-sentiment review comments,
// case insensitive.
const helpfulCommentPattern = `helpful|great|awesome|excellent|amazing|very helpful`

// evalContext carries the resolved user and the data access needed by
// the criterion evaluators. Student-side activity is keyed by the
// stable student key, tutor-side activity by username. An empty
// student key never matches any row.
type evalContext struct {
	user       *models.User
	studentKey string
	tutorKey   string
	now        time.Time

	sessions  repositories.SessionRepository
	requests  repositories.RequestRepository
	reviews   repositories.ReviewRepository
	resources repositories.ResourceRepository
	config    *config.BadgeConfig
}

// criterionFunc is a pure predicate: does this user currently satisfy
// the criteria? Evaluators never write.
type criterionFunc func(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error)

// criterionEvaluators maps each criteria type to its evaluator. A rule
// whose type is missing here is skipped during awarding.
var criterionEvaluators = map[models.CriteriaType]criterionFunc{
	models.CriteriaRequestsSent:         evalRequestsSent,
	models.CriteriaRequestsAccepted:     evalRequestsAccepted,
	models.CriteriaSessionsCompleted:    evalSessionsCompleted,
	models.CriteriaSessionsHosted:       evalSessionsHosted,
	models.CriteriaFirstSession:         evalFirstSession,
	models.CriteriaFiveStarReviews:      evalFiveStarReviews,
	models.CriteriaConsecutiveSessions:  evalConsecutiveSessions,
	models.CriteriaQuickLearner:         evalQuickLearner,
	models.CriteriaHelpfulTutor:         evalHelpfulTutor,
	models.CriteriaEarlyAdopter:         evalEarlyAdopter,
	models.CriteriaPerfectAttendance:    evalPerfectAttendance,
	models.CriteriaTotalDuration:        evalTotalDuration,
	models.CriteriaResourcesViewed:      evalResourcesViewed,
	models.CriteriaConsistentLearner:    evalConsistentLearner,
	models.CriteriaCommunityContributor: evalCommunityContributor,
	models.CriteriaSessionStreak:        evalSessionStreak,
}

func evalRequestsSent(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error) {
	count, err := ec.requests.CountByStudent(ctx, ec.studentKey)
	if err != nil {
		return false, err
	}
	return count >= c.Threshold, nil
}

// evalRequestsAccepted counts requests currently in the accepted
// state. A request that later completes no longer counts.
func evalRequestsAccepted(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error) {
	count, err := ec.requests.CountByStudentWithStatus(ctx, ec.studentKey, models.RequestAccepted)
	if err != nil {
		return false, err
	}
	return count >= c.Threshold, nil
}

func evalSessionsCompleted(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error) {
	count, err := ec.sessions.CountByStudentWithStatus(ctx, ec.studentKey, models.SessionCompleted)
	if err != nil {
		return false, err
	}
	return count >= c.Threshold, nil
}

func evalSessionsHosted(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error) {
	count, err := ec.sessions.CountByTutorWithStatus(ctx, ec.tutorKey, models.SessionCompleted)
	if err != nil {
		return false, err
	}
	return count >= c.Threshold, nil
}

func evalFirstSession(ctx context.Context, ec *evalContext, _ models.BadgeCriteria) (bool, error) {
	sessions, err := ec.sessions.ListCompletedByParticipant(ctx, ec.studentKey, ec.tutorKey, 1)
	if err != nil {
		return false, err
	}
	return len(sessions) >= 1, nil
}

// evalFiveStarReviews counts five-star reviews received when the user
// is a tutor, and five-star reviews given otherwise.
func evalFiveStarReviews(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error) {
	var count int
	var err error
	if ec.user.IsTutor {
		count, err = ec.reviews.CountByTutorWithRating(ctx, ec.tutorKey, 5)
	} else {
		count, err = ec.reviews.CountByStudentWithRating(ctx, ec.studentKey, 5)
	}
	if err != nil {
		return false, err
	}
	return count >= c.Threshold, nil
}

// evalConsecutiveSessions looks at the most recent threshold completed
// sessions and requires every adjacent pair to be at most two days
// apart. Fewer than threshold sessions never satisfies.
func evalConsecutiveSessions(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error) {
	sessions, err := ec.sessions.ListCompletedByParticipant(ctx, ec.studentKey, ec.tutorKey, c.Threshold)
	if err != nil {
		return false, err
	}
	if len(sessions) < c.Threshold {
		return false, nil
	}

	for i := 1; i < len(sessions); i++ {
		gap := roundedDaysBetween(sessions[i-1].SessionDate, sessions[i].SessionDate)
		if gap > 2 {
			return false, nil
		}
	}
	return true, nil
}

// evalQuickLearner requires a timeframe; a rule without one is never
// satisfied.
func evalQuickLearner(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error) {
	if c.TimeframeDays == nil || *c.TimeframeDays <= 0 {
		return false, nil
	}

	since := ec.now.AddDate(0, 0, -*c.TimeframeDays)
	count, err := ec.sessions.CountCompletedByStudentSince(ctx, ec.studentKey, since)
	if err != nil {
		return false, err
	}
	return count >= c.Threshold, nil
}

func evalHelpfulTutor(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error) {
	count, err := ec.reviews.CountMatchingByTutor(ctx, ec.tutorKey, 4, helpfulCommentPattern)
	if err != nil {
		return false, err
	}
	return count >= c.Threshold, nil
}

// evalEarlyAdopter checks that the account was created on or after the
// platform launch date and within the early-adopter window.
func evalEarlyAdopter(_ context.Context, ec *evalContext, _ models.BadgeCriteria) (bool, error) {
	created := ec.user.CreatedAt
	if created.Before(ec.config.LaunchDate) {
		return false, nil
	}
	return ec.now.Sub(created) <= ec.config.EarlyAdopterWindow, nil
}

// evalPerfectAttendance inspects the most recent threshold sessions
// that were either completed or no-shows: all of them must be
// completed, with fewer than threshold on record never satisfying.
func evalPerfectAttendance(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error) {
	sessions, err := ec.sessions.ListRecentAttendance(ctx, ec.studentKey, ec.tutorKey, c.Threshold)
	if err != nil {
		return false, err
	}
	if len(sessions) < c.Threshold {
		return false, nil
	}

	completed := 0
	noShows := 0
	for _, s := range sessions {
		switch s.Status {
		case models.SessionCompleted:
			completed++
		case models.SessionNoShow:
			noShows++
		}
	}
	return completed >= c.Threshold && noShows == 0, nil
}

// evalTotalDuration sums completed-session minutes on the user's
// primary side: hosted sessions for tutors, attended for students.
func evalTotalDuration(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error) {
	var total int
	var err error
	if ec.user.IsTutor {
		total, err = ec.sessions.SumCompletedDurationByTutor(ctx, ec.tutorKey)
	} else {
		total, err = ec.sessions.SumCompletedDurationByStudent(ctx, ec.studentKey)
	}
	if err != nil {
		return false, err
	}
	return total >= c.Threshold, nil
}

func evalResourcesViewed(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error) {
	count, err := ec.resources.CountInteractionsByStudent(ctx, ec.studentKey, models.ActionViewed)
	if err != nil {
		return false, err
	}
	return count >= c.Threshold, nil
}

// evalConsistentLearner counts distinct days with at least one
// completed session inside the rolling window (default 30 days).
func evalConsistentLearner(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error) {
	timeframe := 30
	if c.TimeframeDays != nil && *c.TimeframeDays > 0 {
		timeframe = *c.TimeframeDays
	}

	since := ec.now.AddDate(0, 0, -timeframe)
	days, err := ec.sessions.CountDistinctCompletedDaysSince(ctx, ec.studentKey, since)
	if err != nil {
		return false, err
	}
	return days >= c.Threshold, nil
}

// evalCommunityContributor sums hosted completed sessions and shared
// resources. Either count alone can satisfy the threshold.
func evalCommunityContributor(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error) {
	hosted, err := ec.sessions.CountByTutorWithStatus(ctx, ec.tutorKey, models.SessionCompleted)
	if err != nil {
		return false, err
	}

	shared, err := ec.resources.CountUploadsByUploader(ctx, ec.user.Username)
	if err != nil {
		return false, err
	}

	return hosted+shared >= c.Threshold, nil
}

// evalSessionStreak walks all completed sessions newest first,
// incrementing the streak on exactly-one-day gaps and stopping at the
// first gap longer than a day. Same-day sessions neither extend nor
// break the streak.
func evalSessionStreak(ctx context.Context, ec *evalContext, c models.BadgeCriteria) (bool, error) {
	sessions, err := ec.sessions.ListCompletedByParticipant(ctx, ec.studentKey, ec.tutorKey, 0)
	if err != nil {
		return false, err
	}
	if len(sessions) < c.Threshold {
		return false, nil
	}

	streak := 1
	for i := 1; i < len(sessions); i++ {
		gap := flooredDaysBetween(sessions[i-1].SessionDate, sessions[i].SessionDate)
		if gap == 1 {
			streak++
			if streak >= c.Threshold {
				return true, nil
			}
		} else if gap > 1 {
			break
		}
	}
	return streak >= c.Threshold, nil
}

// ===============================
// DATE HELPERS
// ===============================

func roundedDaysBetween(a, b time.Time) int {
	return int(math.Round(math.Abs(a.Sub(b).Hours() / 24)))
}

func flooredDaysBetween(a, b time.Time) int {
	return int(math.Floor(math.Abs(a.Sub(b).Hours() / 24)))
}
