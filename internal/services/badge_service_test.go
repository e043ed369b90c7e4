package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tutorhub/internal/config"
	"tutorhub/internal/events"
	"tutorhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// captureEventBus records published events instead of dispatching them.
type captureEventBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *captureEventBus) Publish(ctx context.Context, event events.Event) error {
	return b.PublishAsync(ctx, event)
}

func (b *captureEventBus) PublishAsync(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
	return nil
}

func (b *captureEventBus) Subscribe(eventType string, handler events.EventHandler) error   { return nil }
func (b *captureEventBus) Unsubscribe(eventType string, handler events.EventHandler) error { return nil }
func (b *captureEventBus) Start(ctx context.Context) error                                 { return nil }
func (b *captureEventBus) Stop(ctx context.Context) error                                  { return nil }
func (b *captureEventBus) Health() error                                                   { return nil }

func (b *captureEventBus) eventsOfType(eventType string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var matched []events.Event
	for _, e := range b.published {
		if e.GetEventType() == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

type badgeFixture struct {
	store   *fakeStore
	bus     *captureEventBus
	catalog BadgeCatalogService
	service BadgeService
}

func newBadgeFixture(t *testing.T) *badgeFixture {
	t.Helper()

	store := newFakeStore()
	bus := &captureEventBus{}
	cfg := &config.BadgeConfig{
		LaunchDate:         testNow.AddDate(0, 0, -60),
		EarlyAdopterWindow: 90 * 24 * time.Hour,
	}
	logger := zap.NewNop()

	catalog := NewBadgeCatalogService(&fakeBadgeRepo{store: store}, cfg, logger)
	service := NewBadgeService(
		&fakeUserRepo{store: store},
		&fakeSessionRepo{store: store},
		&fakeRequestRepo{store: store},
		&fakeReviewRepo{store: store},
		&fakeResourceRepo{store: store},
		catalog, bus, cfg, logger,
	)
	service.(*badgeService).now = func() time.Time { return testNow }

	return &badgeFixture{store: store, bus: bus, catalog: catalog, service: service}
}

func (f *badgeFixture) seedBadge(t *testing.T, badge models.Badge) *models.Badge {
	t.Helper()
	require.NoError(t, (&fakeBadgeRepo{store: f.store}).UpsertByName(context.Background(), &badge))
	f.catalog.Invalidate()
	return &badge
}

func firstSessionBadge() models.Badge {
	return models.Badge{
		Name:     "First Session",
		Role:     models.RoleBoth,
		Rarity:   models.RarityCommon,
		Criteria: models.BadgeCriteria{Type: models.CriteriaFirstSession, Threshold: 1},
		Reward:   models.BadgeReward{Points: 100},
	}
}

func TestAwardEligibleGrantsSatisfiedBadge(t *testing.T) {
	f := newBadgeFixture(t)
	user := testStudent(f.store, "s100", "alice")
	f.seedBadge(t, firstSessionBadge())
	f.store.addCompletedSession("s100", "bob", daysAgo(1), 60)

	awarded, err := f.service.AwardEligible(context.Background(), "s100")
	require.NoError(t, err)
	assert.Equal(t, []string{"First Session"}, awarded)

	earned, err := f.service.ListEarned(context.Background(), "s100")
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, user.ID, earned[0].UserID)

	notifications := f.bus.eventsOfType(events.EventTypeBadgeAwarded)
	require.Len(t, notifications, 1)
	assert.Equal(t, user.ID.String(), notifications[0].GetUserID())
}

func TestAwardEligibleIsIdempotent(t *testing.T) {
	f := newBadgeFixture(t)
	testStudent(f.store, "s100", "alice")
	f.seedBadge(t, firstSessionBadge())
	f.store.addCompletedSession("s100", "bob", daysAgo(1), 60)

	first, err := f.service.AwardEligible(context.Background(), "s100")
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := f.service.AwardEligible(context.Background(), "s100")
	require.NoError(t, err)
	assert.Empty(t, second, "an earned badge is never re-awarded")

	earned, err := f.service.ListEarned(context.Background(), "s100")
	require.NoError(t, err)
	assert.Len(t, earned, 1)
	assert.Len(t, f.bus.eventsOfType(events.EventTypeBadgeAwarded), 1)
}

func TestAwardEligibleConcurrentTriggersAwardOnce(t *testing.T) {
	f := newBadgeFixture(t)
	testStudent(f.store, "s100", "alice")
	f.seedBadge(t, firstSessionBadge())
	f.store.addCompletedSession("s100", "bob", daysAgo(1), 60)

	const passes = 16
	results := make([][]string, passes)
	var wg sync.WaitGroup
	for i := 0; i < passes; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			awarded, err := f.service.AwardEligible(context.Background(), "s100")
			assert.NoError(t, err)
			results[i] = awarded
		}(i)
	}
	wg.Wait()

	total := 0
	for _, awarded := range results {
		total += len(awarded)
	}
	assert.Equal(t, 1, total, "exactly one pass wins the award")

	earned, err := f.service.ListEarned(context.Background(), "s100")
	require.NoError(t, err)
	assert.Len(t, earned, 1)
}

func TestAwardEligibleUnresolvableIdentifierIsNoOp(t *testing.T) {
	f := newBadgeFixture(t)
	f.seedBadge(t, firstSessionBadge())

	awarded, err := f.service.AwardEligible(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, awarded)

	awarded, err = f.service.AwardEligible(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, awarded)
}

func TestAwardEligibleResolvesIDAndUsername(t *testing.T) {
	f := newBadgeFixture(t)
	user := testStudent(f.store, "s100", "alice")
	f.seedBadge(t, firstSessionBadge())
	f.store.addCompletedSession("s100", "bob", daysAgo(1), 60)

	awarded, err := f.service.AwardEligible(context.Background(), user.ID.String())
	require.NoError(t, err)
	assert.Len(t, awarded, 1, "user ID resolves")

	f.store.addCompletedSession("s200", "carol", daysAgo(1), 60)
	tutor := testTutor(f.store, "carol")
	awarded, err = f.service.AwardEligible(context.Background(), tutor.Username)
	require.NoError(t, err)
	assert.Len(t, awarded, 1, "username resolves for tutor-side triggers")
}

func TestAwardEligibleRoleGating(t *testing.T) {
	f := newBadgeFixture(t)
	f.seedBadge(t, models.Badge{
		Name:     "Dedicated Learner",
		Role:     models.RoleStudent,
		Rarity:   models.RarityCommon,
		Criteria: models.BadgeCriteria{Type: models.CriteriaSessionsCompleted, Threshold: 1},
	})
	f.seedBadge(t, models.Badge{
		Name:     "Expert Tutor",
		Role:     models.RoleTutor,
		Rarity:   models.RarityRare,
		Criteria: models.BadgeCriteria{Type: models.CriteriaSessionsHosted, Threshold: 1},
	})

	// The tutor hosts a completed session with a student. Each side
	// only sees its own role's badge.
	testStudent(f.store, "s100", "alice")
	testTutor(f.store, "bob")
	f.store.addCompletedSession("s100", "bob", daysAgo(1), 60)

	awarded, err := f.service.AwardEligible(context.Background(), "s100")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dedicated Learner"}, awarded)

	awarded, err = f.service.AwardEligible(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"Expert Tutor"}, awarded)
}

func TestAwardEligibleSkipsMalformedAndUnknownRules(t *testing.T) {
	f := newBadgeFixture(t)
	testStudent(f.store, "s100", "alice")
	f.store.addCompletedSession("s100", "bob", daysAgo(1), 60)

	f.seedBadge(t, models.Badge{
		Name:   "No Criteria",
		Role:   models.RoleBoth,
		Rarity: models.RarityCommon,
	})
	f.seedBadge(t, models.Badge{
		Name:     "Unknown Criteria",
		Role:     models.RoleBoth,
		Rarity:   models.RarityCommon,
		Criteria: models.BadgeCriteria{Type: "time_traveler", Threshold: 1},
	})
	f.seedBadge(t, firstSessionBadge())

	awarded, err := f.service.AwardEligible(context.Background(), "s100")
	require.NoError(t, err)
	assert.Equal(t, []string{"First Session"}, awarded, "malformed rules are skipped, valid ones still award")
}

func TestAwardEligibleMultipleBadgesInOnePass(t *testing.T) {
	f := newBadgeFixture(t)
	testStudent(f.store, "s100", "alice")
	f.seedBadge(t, firstSessionBadge())
	f.seedBadge(t, models.Badge{
		Name:     "Time Master",
		Role:     models.RoleBoth,
		Rarity:   models.RarityRare,
		Criteria: models.BadgeCriteria{Type: models.CriteriaTotalDuration, Threshold: 100},
	})
	f.store.addCompletedSession("s100", "bob", daysAgo(1), 120)

	awarded, err := f.service.AwardEligible(context.Background(), "s100")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"First Session", "Time Master"}, awarded)
	assert.Len(t, f.bus.eventsOfType(events.EventTypeBadgeAwarded), 2)
}

// failingSessionRepo fails every read to exercise the error path.
type failingSessionRepo struct {
	fakeSessionRepo
	err error
}

func (r *failingSessionRepo) ListCompletedByParticipant(ctx context.Context, studentKey, tutorKey string, limit int) ([]*models.Session, error) {
	return nil, r.err
}

func TestAwardEligiblePropagatesEvaluatorFailure(t *testing.T) {
	f := newBadgeFixture(t)
	testStudent(f.store, "s100", "alice")
	f.seedBadge(t, firstSessionBadge())

	storeErr := errors.New("connection reset")
	svc := f.service.(*badgeService)
	svc.sessions = &failingSessionRepo{fakeSessionRepo: fakeSessionRepo{store: f.store}, err: storeErr}

	awarded, err := f.service.AwardEligible(context.Background(), "s100")
	require.Error(t, err)
	assert.Empty(t, awarded)

	serviceErr := GetServiceError(err)
	require.NotNil(t, serviceErr)
	assert.ErrorIs(t, err, storeErr)
}

func TestTriggerSwallowsErrors(t *testing.T) {
	f := newBadgeFixture(t)
	testStudent(f.store, "s100", "alice")
	f.seedBadge(t, firstSessionBadge())

	svc := f.service.(*badgeService)
	svc.sessions = &failingSessionRepo{fakeSessionRepo: fakeSessionRepo{store: f.store}, err: errors.New("connection reset")}

	awarded := f.service.Trigger(context.Background(), events.TriggerSessionCompleted, "s100")
	assert.Nil(t, awarded, "trigger sites never see evaluation failures")
}

func TestTriggerRoutesToFullEvaluation(t *testing.T) {
	f := newBadgeFixture(t)
	testStudent(f.store, "s100", "alice")
	f.seedBadge(t, firstSessionBadge())
	f.store.addCompletedSession("s100", "bob", daysAgo(1), 60)

	triggers := []events.TriggerType{
		events.TriggerUserRegistered,
		events.TriggerSessionCompleted,
		events.TriggerSessionHosted,
		events.TriggerRequestSent,
		events.TriggerRequestAccepted,
		events.TriggerReviewSubmitted,
		events.TriggerProfileUpdated,
		events.TriggerResourceViewed,
		events.TriggerResourceShared,
	}

	// The first trigger awards; every later one re-evaluates and finds
	// nothing new, regardless of type.
	awarded := f.service.Trigger(context.Background(), triggers[0], "s100")
	assert.Len(t, awarded, 1)
	for _, trigger := range triggers[1:] {
		assert.Empty(t, f.service.Trigger(context.Background(), trigger, "s100"))
	}
}

func TestListEarnedUnknownUser(t *testing.T) {
	f := newBadgeFixture(t)

	_, err := f.service.ListEarned(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}
