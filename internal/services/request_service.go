package services

import (
	"context"

	"tutorhub/internal/events"
	"tutorhub/internal/models"
	"tutorhub/internal/repositories"
	"tutorhub/internal/validation"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// ===============================
// REQUEST SERVICE
// ===============================

// RequestService handles the request-to-session lifecycle. Accepting a
// request materializes a session; completing it closes the session and
// fires completion triggers for both participants.
type RequestService interface {
	Send(ctx context.Context, req *SendRequestRequest) (*models.Request, error)
	UpdateStatus(ctx context.Context, req *UpdateRequestStatusRequest) (*models.Request, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error)
}

type requestService struct {
	requests repositories.RequestRepository
	sessions repositories.SessionRepository
	users    repositories.UserRepository
	badges   BadgeService
	logger   *zap.Logger
}

// NewRequestService creates the request service
func NewRequestService(
	requests repositories.RequestRepository,
	sessions repositories.SessionRepository,
	users repositories.UserRepository,
	badges BadgeService,
	logger *zap.Logger,
) RequestService {
	return &requestService{
		requests: requests,
		sessions: sessions,
		users:    users,
		badges:   badges,
		logger:   logger,
	}
}

func (s *requestService) Send(ctx context.Context, req *SendRequestRequest) (*models.Request, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid request", err)
	}

	student, err := s.users.GetByStudentID(ctx, req.StudentID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, EntityNotFoundError("student", req.StudentID)
		}
		return nil, NewInternalError("failed to load student")
	}

	tutor, err := s.users.GetByUsername(ctx, req.TutorID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, EntityNotFoundError("tutor", req.TutorID)
		}
		return nil, NewInternalError("failed to load tutor")
	}
	if !tutor.IsTutor {
		return nil, NewBusinessError("requested user is not a tutor", "NOT_A_TUTOR")
	}

	request := &models.Request{
		StudentID:       student.StudentKey(),
		TutorID:         tutor.TutorKey(),
		Course:          req.Course,
		SessionDate:     req.SessionDate,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Modality:        req.Modality,
		Comment:         req.Comment,
		Status:          models.RequestPending,
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, NewInternalError("failed to create request")
	}

	s.logger.Info("session request sent",
		zap.String("student_id", request.StudentID),
		zap.String("tutor_id", request.TutorID),
		zap.String("course", request.Course))

	s.badges.Trigger(ctx, events.TriggerRequestSent, request.StudentID)

	return request, nil
}

func (s *requestService) UpdateStatus(ctx context.Context, req *UpdateRequestStatusRequest) (*models.Request, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid status update", err)
	}
	if !models.ValidateRequestStatus(string(req.Status)) {
		return nil, InvalidInputError("status", "unknown request status")
	}

	request, err := s.requests.GetByID(ctx, req.RequestID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, EntityNotFoundError("request", req.RequestID)
		}
		return nil, NewInternalError("failed to load request")
	}

	if !validRequestTransition(request.Status, req.Status) {
		return nil, InvalidTransitionError("request", string(request.Status), string(req.Status))
	}

	if err := s.requests.UpdateStatus(ctx, request.ID, req.Status); err != nil {
		return nil, NewInternalError("failed to update request status")
	}
	request.Status = req.Status

	switch req.Status {
	case models.RequestAccepted:
		if err := s.acceptRequest(ctx, request); err != nil {
			return nil, err
		}
	case models.RequestCompleted:
		if err := s.completeRequest(ctx, request); err != nil {
			return nil, err
		}
	}

	return request, nil
}

func (s *requestService) GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, EntityNotFoundError("request", id)
		}
		return nil, NewInternalError("failed to load request")
	}
	return request, nil
}

// acceptRequest materializes the scheduled session and links it back.
func (s *requestService) acceptRequest(ctx context.Context, request *models.Request) error {
	session := &models.Session{
		StudentID:       request.StudentID,
		TutorID:         request.TutorID,
		Course:          request.Course,
		SessionDate:     request.SessionDate,
		DurationMinutes: request.DurationMinutes,
		Price:           request.Price,
		Modality:        request.Modality,
		Status:          models.SessionScheduled,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return NewInternalError("failed to create session")
	}
	if err := s.requests.LinkSession(ctx, request.ID, session.ID); err != nil {
		return NewInternalError("failed to link session to request")
	}
	request.SessionID = &session.ID

	s.logger.Info("request accepted, session scheduled",
		zap.String("request_id", request.ID.String()),
		zap.String("session_id", session.ID.String()))

	s.badges.Trigger(ctx, events.TriggerRequestAccepted, request.StudentID)

	return nil
}

// completeRequest closes the linked session and fires completion
// triggers for the student and the hosting tutor.
func (s *requestService) completeRequest(ctx context.Context, request *models.Request) error {
	if request.SessionID == nil {
		return NewBusinessError("request has no linked session", "NO_LINKED_SESSION")
	}

	if err := s.sessions.UpdateStatus(ctx, *request.SessionID, models.SessionCompleted); err != nil {
		return NewInternalError("failed to complete session")
	}

	s.logger.Info("session completed",
		zap.String("request_id", request.ID.String()),
		zap.String("session_id", request.SessionID.String()))

	s.badges.Trigger(ctx, events.TriggerSessionCompleted, request.StudentID)
	s.badges.Trigger(ctx, events.TriggerSessionHosted, request.TutorID)

	return nil
}

// validRequestTransition encodes the allowed lifecycle moves.
func validRequestTransition(from, to models.RequestStatus) bool {
	switch from {
	case models.RequestPending:
		return to == models.RequestAccepted || to == models.RequestRejected || to == models.RequestCancelled
	case models.RequestAccepted:
		return to == models.RequestCompleted || to == models.RequestCancelled
	default:
		return false
	}
}
