package services

import (
	"context"

	"tutorhub/internal/config"
	"tutorhub/internal/events"
	"tutorhub/internal/models"
	"tutorhub/internal/repositories"
	"tutorhub/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ===============================
// USER SERVICE
// ===============================

// UserService manages accounts and learning profiles.
type UserService interface {
	Register(ctx context.Context, req *RegisterUserRequest) (*models.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*models.User, error)
}

type userService struct {
	users    repositories.UserRepository
	badges   BadgeService
	eventBus events.EventBus
	config   *config.AuthConfig
	logger   *zap.Logger
}

// NewUserService creates the user service
func NewUserService(users repositories.UserRepository, badges BadgeService, eventBus events.EventBus, cfg *config.AuthConfig, logger *zap.Logger) UserService {
	return &userService{
		users:    users,
		badges:   badges,
		eventBus: eventBus,
		config:   cfg,
		logger:   logger,
	}
}

func (s *userService) Register(ctx context.Context, req *RegisterUserRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid registration", err)
	}

	if existing, err := s.users.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, EntityAlreadyExistsError("user", "email", req.Email)
	} else if err != nil && !repositories.IsNotFound(err) {
		return nil, NewInternalError("failed to check email availability")
	}

	if existing, err := s.users.GetByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, EntityAlreadyExistsError("user", "username", req.Username)
	} else if err != nil && !repositories.IsNotFound(err) {
		return nil, NewInternalError("failed to check username availability")
	}

	if req.StudentID != nil && *req.StudentID != "" {
		if existing, err := s.users.GetByStudentID(ctx, *req.StudentID); err == nil && existing != nil {
			return nil, EntityAlreadyExistsError("user", "student_id", *req.StudentID)
		} else if err != nil && !repositories.IsNotFound(err) {
			return nil, NewInternalError("failed to check student id availability")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		return nil, NewInternalError("failed to hash password")
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		StudentID:    req.StudentID,
		IsTutor:      req.IsTutor,
		Program:      req.Program,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, NewInternalError("failed to create user")
	}

	s.logger.Info("user registered",
		zap.String("username", user.Username),
		zap.Bool("is_tutor", user.IsTutor))

	if s.eventBus != nil {
		event := events.NewUserRegisteredEvent(user.ID.String(), user.Username, user.Email, user.IsTutor)
		if err := s.eventBus.PublishAsync(ctx, event); err != nil {
			s.logger.Warn("failed to publish user registered event", zap.Error(err))
		}
	}

	s.badges.Trigger(ctx, events.TriggerUserRegistered, badgeIdentifier(user))

	return user, nil
}

func (s *userService) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if identifier == "" {
		return nil, InvalidInputError("identifier", "identifier is required")
	}

	user, err := s.users.ResolveIdentifier(ctx, identifier)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, EntityNotFoundError("user", identifier)
		}
		return nil, NewInternalError("failed to load user")
	}

	earned, err := s.users.ListEarnedBadges(ctx, user.ID)
	if err != nil {
		return nil, NewInternalError("failed to load earned badges")
	}
	user.EarnedBadges = earned

	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid profile update", err)
	}

	user, err := s.users.ResolveIdentifier(ctx, req.Identifier)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, EntityNotFoundError("user", req.Identifier)
		}
		return nil, NewInternalError("failed to load user")
	}

	if req.Program != nil {
		user.Program = *req.Program
	}
	if req.LearningInterests != nil {
		user.LearningInterests = req.LearningInterests
	}
	if req.LearningLevel != nil {
		user.LearningLevel = req.LearningLevel
	}
	if req.PreferredLearningStyle != nil {
		user.PreferredLearningStyle = req.PreferredLearningStyle
	}
	if req.PreferredMode != nil {
		user.PreferredMode = req.PreferredMode
	}
	if req.BudgetRange != nil {
		user.BudgetRange = req.BudgetRange
	}
	if req.Availability != nil {
		user.Availability = req.Availability
	}
	if req.IsTutor != nil {
		user.IsTutor = *req.IsTutor
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, NewInternalError("failed to update profile")
	}

	s.badges.Trigger(ctx, events.TriggerProfileUpdated, badgeIdentifier(user))

	return user, nil
}

// badgeIdentifier picks the identifier passed to badge triggers: the
// stable student key when present, otherwise the user ID.
func badgeIdentifier(user *models.User) string {
	if key := user.StudentKey(); key != "" {
		return key
	}
	return user.ID.String()
}
