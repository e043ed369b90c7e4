package services

import (
	"context"
	"testing"

	"tutorhub/internal/cache"
	"tutorhub/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReviewFixture() (*fakeStore, *recordingBadgeService, ReviewService) {
	store := newFakeStore()
	badges := &recordingBadgeService{}
	svc := NewReviewService(
		&fakeReviewRepo{store: store},
		&fakeSessionRepo{store: store},
		&fakeUserRepo{store: store},
		badges,
		cache.NewMemoryCache(zap.NewNop()),
		zap.NewNop(),
	)
	return store, badges, svc
}

func TestSubmitReviewRequiresCompletedSession(t *testing.T) {
	store, badges, svc := newReviewFixture()
	testStudent(store, "s100", "alice")
	testTutor(store, "bob")

	_, err := svc.Submit(context.Background(), &SubmitReviewRequest{
		StudentID: "s100",
		TutorID:   "bob",
		Rating:    5,
	})
	require.Error(t, err)
	assert.True(t, IsBusinessError(err))
	assert.Empty(t, badges.triggered())

	store.addCompletedSession("s100", "bob", daysAgo(1), 60)

	review, err := svc.Submit(context.Background(), &SubmitReviewRequest{
		StudentID: "s100",
		TutorID:   "bob",
		Rating:    5,
		Comment:   "Very helpful",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)

	calls := badges.triggered()
	require.Len(t, calls, 1)
	assert.Equal(t, events.TriggerReviewSubmitted, calls[0].trigger)
	assert.Equal(t, "s100", calls[0].identifier, "only the reviewing student is triggered")
}

func TestSubmitReviewReplacesPreviousAndRefreshesRating(t *testing.T) {
	store, _, svc := newReviewFixture()
	tutor := testTutor(store, "bob")
	testStudent(store, "s100", "alice")
	store.addCompletedSession("s100", "bob", daysAgo(1), 60)

	_, err := svc.Submit(context.Background(), &SubmitReviewRequest{
		StudentID: "s100", TutorID: "bob", Rating: 2, Comment: "rough start",
	})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), &SubmitReviewRequest{
		StudentID: "s100", TutorID: "bob", Rating: 5, Comment: "much better",
	})
	require.NoError(t, err)

	assert.Len(t, store.reviews, 1, "one review per tutor-student pair")
	assert.Equal(t, 5, store.reviews[0].Rating)
	assert.Equal(t, 5.0, tutor.AverageRating)
	assert.Equal(t, 1, tutor.RatingCount)
}

func TestSubmitReviewValidatesRating(t *testing.T) {
	store, _, svc := newReviewFixture()
	testStudent(store, "s100", "alice")
	testTutor(store, "bob")
	store.addCompletedSession("s100", "bob", daysAgo(1), 60)

	_, err := svc.Submit(context.Background(), &SubmitReviewRequest{
		StudentID: "s100", TutorID: "bob", Rating: 6,
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = svc.Submit(context.Background(), &SubmitReviewRequest{
		StudentID: "s100", TutorID: "bob", Rating: 0,
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestDeleteReviewRefreshesRating(t *testing.T) {
	store, _, svc := newReviewFixture()
	tutor := testTutor(store, "bob")
	testStudent(store, "s100", "alice")
	testStudent(store, "s200", "carol")
	store.addCompletedSession("s100", "bob", daysAgo(1), 60)
	store.addCompletedSession("s200", "bob", daysAgo(2), 60)

	_, err := svc.Submit(context.Background(), &SubmitReviewRequest{
		StudentID: "s100", TutorID: "bob", Rating: 5,
	})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), &SubmitReviewRequest{
		StudentID: "s200", TutorID: "bob", Rating: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 3.0, tutor.AverageRating)

	cached, err := svc.TutorRating(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 3.0, cached.AverageRating)

	require.NoError(t, svc.Delete(context.Background(), "bob", "s200"))

	assert.Len(t, store.reviews, 1)
	assert.Equal(t, 5.0, tutor.AverageRating)
	assert.Equal(t, 1, tutor.RatingCount)

	summary, err := svc.TutorRating(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 5.0, summary.AverageRating, "cache is invalidated on delete")
}

func TestDeleteReviewNotFound(t *testing.T) {
	_, _, svc := newReviewFixture()

	err := svc.Delete(context.Background(), "bob", "s100")
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))

	err = svc.Delete(context.Background(), "", "s100")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestTutorRatingUsesCacheUntilNextReview(t *testing.T) {
	store, _, svc := newReviewFixture()
	testStudent(store, "s100", "alice")
	testTutor(store, "bob")
	store.addCompletedSession("s100", "bob", daysAgo(1), 60)

	_, err := svc.Submit(context.Background(), &SubmitReviewRequest{
		StudentID: "s100", TutorID: "bob", Rating: 4,
	})
	require.NoError(t, err)

	summary, err := svc.TutorRating(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 4.0, summary.AverageRating)
	assert.Equal(t, 1, summary.RatingCount)

	// Bypass the service to mutate the underlying data: the cached
	// summary keeps serving until a new review invalidates it.
	store.reviews[0].Rating = 2

	cached, err := svc.TutorRating(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 4.0, cached.AverageRating)

	store.reviews[0].Rating = 4
	testStudent(store, "s200", "carol")
	store.addCompletedSession("s200", "bob", daysAgo(1), 60)
	_, err = svc.Submit(context.Background(), &SubmitReviewRequest{
		StudentID: "s200", TutorID: "bob", Rating: 2,
	})
	require.NoError(t, err)

	fresh, err := svc.TutorRating(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 3.0, fresh.AverageRating)
	assert.Equal(t, 2, fresh.RatingCount)
}

func TestTutorRatingNoReviews(t *testing.T) {
	_, _, svc := newReviewFixture()

	summary, err := svc.TutorRating(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.AverageRating)
	assert.Equal(t, 0, summary.RatingCount)
}
