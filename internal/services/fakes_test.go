package services

import (
	"context"
	"database/sql"
	"regexp"
	"sort"
	"sync"
	"time"

	"tutorhub/internal/events"
	"tutorhub/internal/models"

	"github.com/gofrs/uuid"
)

// fakeStore is an in-memory stand-in for the Postgres repositories.
// It mirrors the query semantics the services rely on, including the
// "empty key never matches" participant predicates.
type fakeStore struct {
	mu sync.Mutex

	users        []*models.User
	earned       map[uuid.UUID][]models.EarnedBadge
	badges       []*models.Badge
	sessions     []*models.Session
	requests     []*models.Request
	reviews      []*models.Review
	uploads      []*models.Upload
	interactions []*models.ResourceInteraction
}

func newFakeStore() *fakeStore {
	return &fakeStore{earned: make(map[uuid.UUID][]models.EarnedBadge)}
}

func mustUUID() uuid.UUID {
	id, err := uuid.NewV4()
	if err != nil {
		panic(err)
	}
	return id
}

func (f *fakeStore) addUser(user *models.User) *models.User {
	if user.ID == uuid.Nil {
		user.ID = mustUUID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	f.users = append(f.users, user)
	return user
}

func (f *fakeStore) addCompletedSession(studentKey, tutorKey string, date time.Time, minutes int) {
	f.addSession(studentKey, tutorKey, date, minutes, models.SessionCompleted)
}

func (f *fakeStore) addSession(studentKey, tutorKey string, date time.Time, minutes int, status models.SessionStatus) {
	f.sessions = append(f.sessions, &models.Session{
		ID:              mustUUID(),
		StudentID:       studentKey,
		TutorID:         tutorKey,
		Course:          "calculus",
		SessionDate:     date,
		DurationMinutes: minutes,
		Status:          status,
	})
}

// ===============================
// BADGE SERVICE STUB
// ===============================

type triggerCall struct {
	trigger    events.TriggerType
	identifier string
}

// recordingBadgeService captures trigger calls without evaluating.
type recordingBadgeService struct {
	mu    sync.Mutex
	calls []triggerCall
}

func (s *recordingBadgeService) AwardEligible(ctx context.Context, identifier string) ([]string, error) {
	return nil, nil
}

func (s *recordingBadgeService) Trigger(ctx context.Context, trigger events.TriggerType, identifier string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, triggerCall{trigger: trigger, identifier: identifier})
	return nil
}

func (s *recordingBadgeService) ListEarned(ctx context.Context, identifier string) ([]models.EarnedBadge, error) {
	return nil, nil
}

func (s *recordingBadgeService) triggered() []triggerCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]triggerCall(nil), s.calls...)
}

// ===============================
// USER REPOSITORY
// ===============================

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.store.addUser(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range r.store.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) GetByStudentID(ctx context.Context, studentID string) (*models.User, error) {
	for _, u := range r.store.users {
		if u.StudentID != nil && *u.StudentID == studentID {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range r.store.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.store.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) ResolveIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if user, err := r.GetByStudentID(ctx, identifier); err == nil {
		return user, nil
	}
	if id, err := uuid.FromString(identifier); err == nil {
		if user, err := r.GetByID(ctx, id); err == nil {
			return user, nil
		}
	}
	return r.GetByUsername(ctx, identifier)
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	for i, u := range r.store.users {
		if u.ID == user.ID {
			r.store.users[i] = user
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeUserRepo) UpdateRating(ctx context.Context, username string, average float64, count int) error {
	for _, u := range r.store.users {
		if u.Username == username {
			u.AverageRating = average
			u.RatingCount = count
		}
	}
	return nil
}

func (r *fakeUserRepo) ListEarnedBadges(ctx context.Context, userID uuid.UUID) ([]models.EarnedBadge, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	earned := make([]models.EarnedBadge, len(r.store.earned[userID]))
	copy(earned, r.store.earned[userID])
	return earned, nil
}

func (r *fakeUserRepo) AddEarnedBadge(ctx context.Context, userID, badgeID uuid.UUID, earnedAt time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.earned[userID] {
		if e.BadgeID == badgeID {
			return false, nil
		}
	}
	r.store.earned[userID] = append(r.store.earned[userID], models.EarnedBadge{
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: earnedAt,
	})
	return true, nil
}

// ===============================
// BADGE REPOSITORY
// ===============================

type fakeBadgeRepo struct{ store *fakeStore }

func (r *fakeBadgeRepo) List(ctx context.Context) ([]*models.Badge, error) {
	return append([]*models.Badge(nil), r.store.badges...), nil
}

func (r *fakeBadgeRepo) GetByName(ctx context.Context, name string) (*models.Badge, error) {
	for _, b := range r.store.badges {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeBadgeRepo) UpsertByName(ctx context.Context, badge *models.Badge) error {
	for i, b := range r.store.badges {
		if b.Name == badge.Name {
			badge.ID = b.ID
			r.store.badges[i] = badge
			return nil
		}
	}
	if badge.ID == uuid.Nil {
		badge.ID = mustUUID()
	}
	r.store.badges = append(r.store.badges, badge)
	return nil
}

// ===============================
// SESSION REPOSITORY
// ===============================

type fakeSessionRepo struct{ store *fakeStore }

func (r *fakeSessionRepo) Create(ctx context.Context, session *models.Session) error {
	if session.ID == uuid.Nil {
		session.ID = mustUUID()
	}
	r.store.sessions = append(r.store.sessions, session)
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	for _, s := range r.store.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeSessionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.SessionStatus) error {
	for _, s := range r.store.sessions {
		if s.ID == id {
			s.Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeSessionRepo) CountByStudentWithStatus(ctx context.Context, studentID string, status models.SessionStatus) (int, error) {
	count := 0
	for _, s := range r.store.sessions {
		if s.StudentID == studentID && studentID != "" && s.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeSessionRepo) CountByTutorWithStatus(ctx context.Context, tutorID string, status models.SessionStatus) (int, error) {
	count := 0
	for _, s := range r.store.sessions {
		if s.TutorID == tutorID && tutorID != "" && s.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeSessionRepo) CountCompletedByStudentSince(ctx context.Context, studentID string, since time.Time) (int, error) {
	count := 0
	for _, s := range r.store.sessions {
		if s.StudentID == studentID && studentID != "" && s.Status == models.SessionCompleted && !s.SessionDate.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeSessionRepo) CountDistinctCompletedDaysSince(ctx context.Context, studentID string, since time.Time) (int, error) {
	days := make(map[string]bool)
	for _, s := range r.store.sessions {
		if s.StudentID == studentID && studentID != "" && s.Status == models.SessionCompleted && !s.SessionDate.Before(since) {
			days[s.SessionDate.Format("2006-01-02")] = true
		}
	}
	return len(days), nil
}

func (r *fakeSessionRepo) participantSessions(studentKey, tutorKey string, statuses ...models.SessionStatus) []*models.Session {
	var matched []*models.Session
	for _, s := range r.store.sessions {
		participant := (studentKey != "" && s.StudentID == studentKey) || (tutorKey != "" && s.TutorID == tutorKey)
		if !participant {
			continue
		}
		for _, status := range statuses {
			if s.Status == status {
				matched = append(matched, s)
				break
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SessionDate.After(matched[j].SessionDate)
	})
	return matched
}

func (r *fakeSessionRepo) ListCompletedByParticipant(ctx context.Context, studentKey, tutorKey string, limit int) ([]*models.Session, error) {
	matched := r.participantSessions(studentKey, tutorKey, models.SessionCompleted)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeSessionRepo) ListRecentAttendance(ctx context.Context, studentKey, tutorKey string, limit int) ([]*models.Session, error) {
	matched := r.participantSessions(studentKey, tutorKey, models.SessionCompleted, models.SessionNoShow)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeSessionRepo) SumCompletedDurationByStudent(ctx context.Context, studentID string) (int, error) {
	total := 0
	for _, s := range r.store.sessions {
		if s.StudentID == studentID && studentID != "" && s.Status == models.SessionCompleted {
			total += s.DurationMinutes
		}
	}
	return total, nil
}

func (r *fakeSessionRepo) SumCompletedDurationByTutor(ctx context.Context, tutorID string) (int, error) {
	total := 0
	for _, s := range r.store.sessions {
		if s.TutorID == tutorID && tutorID != "" && s.Status == models.SessionCompleted {
			total += s.DurationMinutes
		}
	}
	return total, nil
}

func (r *fakeSessionRepo) ExistsCompletedBetween(ctx context.Context, studentID, tutorID string) (bool, error) {
	for _, s := range r.store.sessions {
		if s.StudentID == studentID && s.TutorID == tutorID && s.Status == models.SessionCompleted {
			return true, nil
		}
	}
	return false, nil
}

// ===============================
// REQUEST REPOSITORY
// ===============================

type fakeRequestRepo struct{ store *fakeStore }

func (r *fakeRequestRepo) Create(ctx context.Context, request *models.Request) error {
	if request.ID == uuid.Nil {
		request.ID = mustUUID()
	}
	if request.Status == "" {
		request.Status = models.RequestPending
	}
	r.store.requests = append(r.store.requests, request)
	return nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	for _, req := range r.store.requests {
		if req.ID == id {
			return req, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeRequestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error {
	for _, req := range r.store.requests {
		if req.ID == id {
			req.Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeRequestRepo) LinkSession(ctx context.Context, id uuid.UUID, sessionID uuid.UUID) error {
	for _, req := range r.store.requests {
		if req.ID == id {
			req.SessionID = &sessionID
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeRequestRepo) CountByStudent(ctx context.Context, studentID string) (int, error) {
	count := 0
	for _, req := range r.store.requests {
		if req.StudentID == studentID && studentID != "" {
			count++
		}
	}
	return count, nil
}

func (r *fakeRequestRepo) CountByStudentWithStatus(ctx context.Context, studentID string, status models.RequestStatus) (int, error) {
	count := 0
	for _, req := range r.store.requests {
		if req.StudentID == studentID && studentID != "" && req.Status == status {
			count++
		}
	}
	return count, nil
}

// ===============================
// REVIEW REPOSITORY
// ===============================

type fakeReviewRepo struct{ store *fakeStore }

func (r *fakeReviewRepo) Upsert(ctx context.Context, review *models.Review) error {
	for i, existing := range r.store.reviews {
		if existing.TutorID == review.TutorID && existing.StudentID == review.StudentID {
			review.ID = existing.ID
			r.store.reviews[i] = review
			return nil
		}
	}
	if review.ID == uuid.Nil {
		review.ID = mustUUID()
	}
	r.store.reviews = append(r.store.reviews, review)
	return nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, tutorID, studentID string) error {
	for i, existing := range r.store.reviews {
		if existing.TutorID == tutorID && existing.StudentID == studentID {
			r.store.reviews = append(r.store.reviews[:i], r.store.reviews[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeReviewRepo) CountByTutorWithRating(ctx context.Context, tutorID string, rating int) (int, error) {
	count := 0
	for _, rev := range r.store.reviews {
		if rev.TutorID == tutorID && rev.Rating == rating {
			count++
		}
	}
	return count, nil
}

func (r *fakeReviewRepo) CountByStudentWithRating(ctx context.Context, studentID string, rating int) (int, error) {
	count := 0
	for _, rev := range r.store.reviews {
		if rev.StudentID == studentID && rev.Rating == rating {
			count++
		}
	}
	return count, nil
}

func (r *fakeReviewRepo) CountMatchingByTutor(ctx context.Context, tutorID string, minRating int, pattern string) (int, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, rev := range r.store.reviews {
		if rev.TutorID == tutorID && rev.Rating >= minRating && re.MatchString(rev.Comment) {
			count++
		}
	}
	return count, nil
}

func (r *fakeReviewRepo) RatingSummary(ctx context.Context, tutorID string) (*models.RatingSummary, error) {
	sum, count := 0, 0
	for _, rev := range r.store.reviews {
		if rev.TutorID == tutorID {
			sum += rev.Rating
			count++
		}
	}
	summary := &models.RatingSummary{TutorID: tutorID, RatingCount: count}
	if count > 0 {
		summary.AverageRating = float64(sum) / float64(count)
	}
	return summary, nil
}

// ===============================
// RESOURCE REPOSITORY
// ===============================

type fakeResourceRepo struct{ store *fakeStore }

func (r *fakeResourceRepo) CreateUpload(ctx context.Context, upload *models.Upload) error {
	if upload.ID == uuid.Nil {
		upload.ID = mustUUID()
	}
	r.store.uploads = append(r.store.uploads, upload)
	return nil
}

func (r *fakeResourceRepo) CountUploadsByUploader(ctx context.Context, uploader string) (int, error) {
	count := 0
	for _, u := range r.store.uploads {
		if u.Uploader == uploader && uploader != "" {
			count++
		}
	}
	return count, nil
}

func (r *fakeResourceRepo) RecordInteraction(ctx context.Context, interaction *models.ResourceInteraction) error {
	if interaction.ID == uuid.Nil {
		interaction.ID = mustUUID()
	}
	r.store.interactions = append(r.store.interactions, interaction)
	return nil
}

func (r *fakeResourceRepo) CountInteractionsByStudent(ctx context.Context, studentID string, action models.InteractionAction) (int, error) {
	count := 0
	for _, i := range r.store.interactions {
		if i.StudentID == studentID && studentID != "" && i.Action == action {
			count++
		}
	}
	return count, nil
}
