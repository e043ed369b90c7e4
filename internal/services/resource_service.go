package services

import (
	"context"

	"tutorhub/internal/events"
	"tutorhub/internal/models"
	"tutorhub/internal/repositories"
	"tutorhub/internal/validation"

	"go.uber.org/zap"
)

// ===============================
// RESOURCE SERVICE
// ===============================

// ResourceService tracks shared learning resources and student
// interactions with them.
type ResourceService interface {
	Share(ctx context.Context, req *ShareResourceRequest) (*models.Upload, error)
	View(ctx context.Context, req *ViewResourceRequest) error
	Download(ctx context.Context, req *ViewResourceRequest) error
}

type resourceService struct {
	resources repositories.ResourceRepository
	users     repositories.UserRepository
	badges    BadgeService
	logger    *zap.Logger
}

// NewResourceService creates the resource service
func NewResourceService(resources repositories.ResourceRepository, users repositories.UserRepository, badges BadgeService, logger *zap.Logger) ResourceService {
	return &resourceService{
		resources: resources,
		users:     users,
		badges:    badges,
		logger:    logger,
	}
}

func (s *resourceService) Share(ctx context.Context, req *ShareResourceRequest) (*models.Upload, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid resource", err)
	}

	user, err := s.users.ResolveIdentifier(ctx, req.Uploader)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, EntityNotFoundError("user", req.Uploader)
		}
		return nil, NewInternalError("failed to load uploader")
	}

	// Uploads are recorded under the username; the badge trigger uses
	// the stable key so the check resolves the same account.
	upload := &models.Upload{
		Title:    req.Title,
		Course:   req.Course,
		Uploader: user.Username,
	}
	if err := s.resources.CreateUpload(ctx, upload); err != nil {
		return nil, NewInternalError("failed to record upload")
	}

	// Students also get the upload tracked as an interaction, so their
	// activity feed shows it alongside views and downloads.
	if key := user.StudentKey(); key != "" {
		interaction := &models.ResourceInteraction{
			StudentID:  key,
			ResourceID: upload.ID,
			Title:      upload.Title,
			Course:     upload.Course,
			Action:     models.ActionUploaded,
		}
		if err := s.resources.RecordInteraction(ctx, interaction); err != nil {
			s.logger.Warn("failed to record upload interaction",
				zap.String("student_id", key),
				zap.Error(err))
		}
	}

	s.logger.Info("resource shared",
		zap.String("uploader", user.Username),
		zap.String("title", req.Title))

	s.badges.Trigger(ctx, events.TriggerResourceShared, badgeIdentifier(user))

	return upload, nil
}

func (s *resourceService) View(ctx context.Context, req *ViewResourceRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return NewValidationError("invalid view", err)
	}

	interaction := &models.ResourceInteraction{
		StudentID:  req.StudentID,
		ResourceID: req.ResourceID,
		Title:      req.Title,
		Course:     req.Course,
		Action:     models.ActionViewed,
	}
	if err := s.resources.RecordInteraction(ctx, interaction); err != nil {
		return NewInternalError("failed to record interaction")
	}

	s.badges.Trigger(ctx, events.TriggerResourceViewed, req.StudentID)

	return nil
}

// Download records a download interaction. Downloads do not feed any
// badge rule, so no evaluation pass is kicked off.
func (s *resourceService) Download(ctx context.Context, req *ViewResourceRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return NewValidationError("invalid download", err)
	}

	interaction := &models.ResourceInteraction{
		StudentID:  req.StudentID,
		ResourceID: req.ResourceID,
		Title:      req.Title,
		Course:     req.Course,
		Action:     models.ActionDownloaded,
	}
	if err := s.resources.RecordInteraction(ctx, interaction); err != nil {
		return NewInternalError("failed to record interaction")
	}

	return nil
}
