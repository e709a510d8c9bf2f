package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var errOwnerOnly = shared.NewDomainError("FORBIDDEN", "Only the account owner can manage users")

// UserService manages the users of an artisan account
type UserService struct {
	userRepo    identity.UserRepository
	jwtService  *auth.JWTService
	revocations auth.RevocationStore
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	revocations auth.RevocationStore,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		revocations: revocations,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// InviteUser adds an EMPLOYEE to the account. Only the OWNER may invite.
func (s *UserService) InviteUser(ctx context.Context, tenantID, actorID uuid.UUID, input InviteUserInput) (*UserDTO, error) {
	if err := s.requireOwner(ctx, tenantID, actorID); err != nil {
		return nil, err
	}

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	input.Email = email

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account already uses this email")
	}

	user, err := identity.NewUser(tenantID, input.Email, input.Password, input.DisplayName, identity.UserRoleEmployee)
	if err != nil {
		return nil, err
	}
	user.SetCreatedBy(actorID)

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save invited user", zap.Error(err))
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("User invited",
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", user.ID.String()))

	dto := ToUserDTO(user)
	return &dto, nil
}

// ListUsers returns every user of the account
func (s *UserService) ListUsers(ctx context.Context, tenantID uuid.UUID) ([]UserDTO, error) {
	users, err := s.userRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = ToUserDTO(&users[i])
	}
	return dtos, nil
}

// DisableUser blocks a user and revokes every token already issued to them
func (s *UserService) DisableUser(ctx context.Context, tenantID, actorID, userID uuid.UUID) (*UserDTO, error) {
	if err := s.requireOwner(ctx, tenantID, actorID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if err := user.Disable(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if err := s.revocations.RevokeUserSessions(ctx, user.ID.String(), s.jwtService.RefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to revoke tokens of disabled user", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	s.publish(ctx, user)

	s.logger.Info("User disabled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", user.ID.String()))

	dto := ToUserDTO(user)
	return &dto, nil
}

// EnableUser lets a disabled user log in again
func (s *UserService) EnableUser(ctx context.Context, tenantID, actorID, userID uuid.UUID) (*UserDTO, error) {
	if err := s.requireOwner(ctx, tenantID, actorID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if err := user.Enable(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User enabled", zap.String("user_id", user.ID.String()))
	dto := ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) requireOwner(ctx context.Context, tenantID, actorID uuid.UUID) error {
	actor, err := s.userRepo.FindByID(ctx, tenantID, actorID)
	if err != nil {
		return err
	}
	if !actor.IsOwner() {
		return errOwnerOnly
	}
	return nil
}

func (s *UserService) publish(ctx context.Context, user *identity.User) {
	events := user.GetDomainEvents()
	if s.eventBus != nil && len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish user events", zap.Error(err))
		}
	}
	user.ClearDomainEvents()
}
