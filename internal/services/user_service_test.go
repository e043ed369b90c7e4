package services

import (
	"context"
	"testing"

	"tutorhub/internal/config"
	"tutorhub/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newUserFixture() (*fakeStore, *recordingBadgeService, UserService) {
	store := newFakeStore()
	badges := &recordingBadgeService{}
	svc := NewUserService(
		&fakeUserRepo{store: store},
		badges,
		&captureEventBus{},
		&config.AuthConfig{BCryptCost: bcrypt.MinCost, MinPasswordLength: 8},
		zap.NewNop(),
	)
	return store, badges, svc
}

func TestRegisterCreatesUserAndTriggersBadges(t *testing.T) {
	store, badges, svc := newUserFixture()

	user, err := svc.Register(context.Background(), &RegisterUserRequest{
		Email:     "alice@example.com",
		Username:  "alice",
		Password:  "correct-horse",
		StudentID: strPtr("s100"),
		Program:   "Computer Science",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.Len(t, store.users, 1)

	calls := badges.triggered()
	require.Len(t, calls, 1)
	assert.Equal(t, events.TriggerUserRegistered, calls[0].trigger)
	assert.Equal(t, "s100", calls[0].identifier, "registration triggers with the stable student key")
}

func TestRegisterTutorTriggersWithUserID(t *testing.T) {
	_, badges, svc := newUserFixture()

	user, err := svc.Register(context.Background(), &RegisterUserRequest{
		Email:    "bob@example.com",
		Username: "bob",
		Password: "correct-horse",
		IsTutor:  true,
	})
	require.NoError(t, err)

	calls := badges.triggered()
	require.Len(t, calls, 1)
	assert.Equal(t, user.ID.String(), calls[0].identifier, "users without a student key trigger by ID")
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	store, _, svc := newUserFixture()
	testStudent(store, "s100", "alice")

	_, err := svc.Register(context.Background(), &RegisterUserRequest{
		Email:    "alice@example.com",
		Username: "someone-else",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.True(t, IsConflictError(err), "duplicate email")

	_, err = svc.Register(context.Background(), &RegisterUserRequest{
		Email:    "new@example.com",
		Username: "alice",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.True(t, IsConflictError(err), "duplicate username")

	_, err = svc.Register(context.Background(), &RegisterUserRequest{
		Email:     "new@example.com",
		Username:  "newuser",
		Password:  "correct-horse",
		StudentID: strPtr("s100"),
	})
	require.Error(t, err)
	assert.True(t, IsConflictError(err), "duplicate student id")
}

func TestRegisterValidatesInput(t *testing.T) {
	_, badges, svc := newUserFixture()

	_, err := svc.Register(context.Background(), &RegisterUserRequest{
		Email:    "not-an-email",
		Username: "alice",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = svc.Register(context.Background(), &RegisterUserRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "short",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	assert.Empty(t, badges.triggered(), "failed registrations never trigger badges")
}

func TestGetByIdentifierAttachesEarnedBadges(t *testing.T) {
	store, _, svc := newUserFixture()
	user := testStudent(store, "s100", "alice")

	badgeID := mustUUID()
	_, err := (&fakeUserRepo{store: store}).AddEarnedBadge(context.Background(), user.ID, badgeID, testNow)
	require.NoError(t, err)

	loaded, err := svc.GetByIdentifier(context.Background(), "s100")
	require.NoError(t, err)
	require.Len(t, loaded.EarnedBadges, 1)
	assert.Equal(t, badgeID, loaded.EarnedBadges[0].BadgeID)

	_, err = svc.GetByIdentifier(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestUpdateProfileAppliesPartialFields(t *testing.T) {
	store, badges, svc := newUserFixture()
	user := testStudent(store, "s100", "alice")
	user.Program = "Mathematics"

	updated, err := svc.UpdateProfile(context.Background(), &UpdateProfileRequest{
		Identifier:        "s100",
		LearningInterests: []string{"calculus", "statistics"},
		LearningLevel:     strPtr("intermediate"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", updated.Program, "unset fields stay untouched")
	assert.Equal(t, []string{"calculus", "statistics"}, []string(updated.LearningInterests))
	require.NotNil(t, updated.LearningLevel)
	assert.Equal(t, "intermediate", *updated.LearningLevel)

	calls := badges.triggered()
	require.Len(t, calls, 1)
	assert.Equal(t, events.TriggerProfileUpdated, calls[0].trigger)
	assert.Equal(t, "s100", calls[0].identifier)
}
