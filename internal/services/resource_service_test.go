package services

import (
	"context"
	"testing"

	"tutorhub/internal/events"
	"tutorhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newResourceFixture() (*fakeStore, *recordingBadgeService, ResourceService) {
	store := newFakeStore()
	badges := &recordingBadgeService{}
	svc := NewResourceService(
		&fakeResourceRepo{store: store},
		&fakeUserRepo{store: store},
		badges,
		zap.NewNop(),
	)
	return store, badges, svc
}

func TestShareResourceRecordsUnderUsername(t *testing.T) {
	store, badges, svc := newResourceFixture()
	testStudent(store, "s100", "alice")

	upload, err := svc.Share(context.Background(), &ShareResourceRequest{
		Uploader: "s100",
		Title:    "Limits cheat sheet",
		Course:   "calculus",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", upload.Uploader, "uploads are keyed by username even when shared by student key")

	require.Len(t, store.interactions, 1)
	assert.Equal(t, models.ActionUploaded, store.interactions[0].Action)
	assert.Equal(t, "s100", store.interactions[0].StudentID)
	assert.Equal(t, upload.ID, store.interactions[0].ResourceID)

	calls := badges.triggered()
	require.Len(t, calls, 1)
	assert.Equal(t, events.TriggerResourceShared, calls[0].trigger)
	assert.Equal(t, "s100", calls[0].identifier)
}

func TestShareResourceByTutorUsername(t *testing.T) {
	store, badges, svc := newResourceFixture()
	tutor := testTutor(store, "bob")

	upload, err := svc.Share(context.Background(), &ShareResourceRequest{
		Uploader: "bob",
		Title:    "Worked integrals",
		Course:   "calculus",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", upload.Uploader)
	assert.Empty(t, store.interactions, "no student key means no interaction row")

	calls := badges.triggered()
	require.Len(t, calls, 1)
	assert.Equal(t, tutor.ID.String(), calls[0].identifier, "tutors without a student key trigger by ID")
}

func TestShareResourceUnknownUploader(t *testing.T) {
	_, badges, svc := newResourceFixture()

	_, err := svc.Share(context.Background(), &ShareResourceRequest{
		Uploader: "ghost",
		Title:    "Nothing",
		Course:   "calculus",
	})
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
	assert.Empty(t, badges.triggered())
}

func TestViewResourceRecordsInteraction(t *testing.T) {
	store, badges, svc := newResourceFixture()
	testStudent(store, "s100", "alice")
	resourceID := mustUUID()

	err := svc.View(context.Background(), &ViewResourceRequest{
		StudentID:  "s100",
		ResourceID: resourceID,
		Title:      "Limits cheat sheet",
		Course:     "calculus",
	})
	require.NoError(t, err)

	require.Len(t, store.interactions, 1)
	assert.Equal(t, models.ActionViewed, store.interactions[0].Action)
	assert.Equal(t, resourceID, store.interactions[0].ResourceID)

	calls := badges.triggered()
	require.Len(t, calls, 1)
	assert.Equal(t, events.TriggerResourceViewed, calls[0].trigger)
	assert.Equal(t, "s100", calls[0].identifier)
}

func TestDownloadResourceRecordsInteractionWithoutTrigger(t *testing.T) {
	store, badges, svc := newResourceFixture()
	testStudent(store, "s100", "alice")
	resourceID := mustUUID()

	err := svc.Download(context.Background(), &ViewResourceRequest{
		StudentID:  "s100",
		ResourceID: resourceID,
		Title:      "Limits cheat sheet",
		Course:     "calculus",
	})
	require.NoError(t, err)

	require.Len(t, store.interactions, 1)
	assert.Equal(t, models.ActionDownloaded, store.interactions[0].Action)
	assert.Empty(t, badges.triggered(), "downloads do not start an evaluation pass")
}
