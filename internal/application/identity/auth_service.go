package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"github.com/monartisan/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// normalizeEmail returns the stored form of a login email
func normalizeEmail(raw string) (string, error) {
	email, err := valueobject.NormalizeEmail(raw)
	if err != nil {
		return "", shared.NewDomainError("INVALID_EMAIL", err.Error())
	}
	return email, nil
}

// AuthService handles sign-up, authentication and token lifecycle
type AuthService struct {
	artisanRepo identity.ArtisanRepository
	userRepo    identity.UserRepository
	txManager   shared.TransactionManager
	jwtService  *auth.JWTService
	revocations auth.RevocationStore
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	artisanRepo identity.ArtisanRepository,
	userRepo identity.UserRepository,
	txManager shared.TransactionManager,
	jwtService *auth.JWTService,
	revocations auth.RevocationStore,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		artisanRepo: artisanRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		jwtService:  jwtService,
		revocations: revocations,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Register creates an artisan account and its OWNER user, then signs the owner in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
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

	artisan, err := identity.NewArtisan(input.BusinessName, input.Email)
	if err != nil {
		return nil, err
	}
	if input.SIRET != "" || input.Trade != "" || input.Phone != "" {
		if err := artisan.UpdateProfile(identity.ProfileUpdate{
			Name:             artisan.Name,
			SIRET:            input.SIRET,
			Email:            artisan.Email,
			Phone:            input.Phone,
			Trade:            input.Trade,
			PaymentTermsDays: artisan.PaymentTermsDays,
		}); err != nil {
			return nil, err
		}
	}
	if artisan.SIRET != "" {
		taken, err := s.artisanRepo.ExistsBySIRET(ctx, artisan.SIRET)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, shared.NewDomainError("SIRET_TAKEN", "An account already uses this SIRET")
		}
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = artisan.Name
	}
	owner, err := identity.NewUser(artisan.TenantID(), input.Email, input.Password, displayName, identity.UserRoleOwner)
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.artisanRepo.Save(ctx, artisan); err != nil {
			return err
		}
		return s.userRepo.Save(ctx, owner)
	})
	if err != nil {
		s.logger.Error("Failed to register artisan", zap.String("email", owner.Email), zap.Error(err))
		return nil, err
	}
	s.publish(ctx, artisan.GetDomainEvents()...)
	s.publish(ctx, owner.GetDomainEvents()...)
	artisan.ClearDomainEvents()
	owner.ClearDomainEvents()

	s.logger.Info("Artisan registered",
		zap.String("tenant_id", artisan.ID.String()),
		zap.String("user_id", owner.ID.String()))

	return s.issueTokens(owner)
}

// Login authenticates a user by email and password and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, errInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown email", zap.String("ip", input.IP))
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt",
			zap.String("user_id", user.ID.String()),
			zap.String("ip", input.IP))
		return nil, errInvalidCredentials
	}
	if !user.CanLogin() {
		s.logger.Warn("Login attempt for disabled account", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "Account has been disabled")
	}
	if err := s.ensureTenantActive(ctx, user.TenantID); err != nil {
		return nil, err
	}

	user.RecordLogin()
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()),
		zap.String("ip", input.IP))

	return s.issueTokens(user)
}

// Refresh exchanges a refresh token for a new pair. The presented refresh
// token is revoked so each one can be used once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	if err := s.checkRevocation(ctx, claims); err != nil {
		return nil, err
	}

	tenantID, err := claims.GetTenantUUID()
	if err != nil {
		return nil, mapTokenError(auth.ErrInvalidClaims)
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, mapTokenError(auth.ErrInvalidClaims)
	}

	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, mapTokenError(auth.ErrInvalidToken)
		}
		return nil, err
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "Account has been disabled")
	}
	if err := s.ensureTenantActive(ctx, tenantID); err != nil {
		return nil, err
	}

	if err := s.revocations.RevokeToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke rotated refresh token", zap.Error(err))
		return nil, err
	}

	return s.issueTokens(user)
}

// Logout revokes the access token, and the refresh token when provided,
// until they expire
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	claims, err := s.jwtService.ValidateAccessToken(input.AccessToken)
	if err != nil {
		return mapTokenError(err)
	}
	if err := s.revocations.RevokeToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke access token", zap.Error(err))
		return err
	}

	if input.RefreshToken != "" {
		refresh, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err == nil && refresh.UserID == claims.UserID {
			if err := s.revocations.RevokeToken(ctx, refresh.ID, refresh.RemainingTTL()); err != nil {
				s.logger.Warn("Failed to revoke refresh token", zap.Error(err))
			}
		}
	}

	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// Me returns the current user and the artisan profile
func (s *AuthService) Me(ctx context.Context, tenantID, userID uuid.UUID) (*MeResult, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	artisan, err := s.artisanRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &MeResult{
		User:    ToUserDTO(user),
		Artisan: ToArtisanDTO(artisan),
	}, nil
}

// ChangePassword changes the current user's password. Tokens issued before
// the change are revoked.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.TenantID, input.UserID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	if err := s.revocations.RevokeUserSessions(ctx, user.ID.String(), s.jwtService.RefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to revoke tokens after password change", zap.Error(err))
	}

	s.logger.Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

// Authenticate validates an access token for the HTTP middleware: signature,
// expiry, revocation and tenant status.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, mapTokenError(err)
	}
	if err := s.checkRevocation(ctx, claims); err != nil {
		return nil, err
	}
	tenantID, err := claims.GetTenantUUID()
	if err != nil {
		return nil, mapTokenError(auth.ErrInvalidClaims)
	}
	if err := s.ensureTenantActive(ctx, tenantID); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *AuthService) checkRevocation(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.revocations.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return mapTokenError(auth.ErrTokenRevoked)
	}
	invalidated, err := s.revocations.IsSessionRevoked(ctx, claims.UserID, claims.IssuedAtTime())
	if err != nil {
		return err
	}
	if invalidated {
		return mapTokenError(auth.ErrTokenRevoked)
	}
	return nil
}

func (s *AuthService) ensureTenantActive(ctx context.Context, tenantID uuid.UUID) error {
	artisan, err := s.artisanRepo.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return errInvalidCredentials
		}
		return err
	}
	if !artisan.IsActive() {
		s.logger.Warn("Access attempt for suspended artisan", zap.String("tenant_id", tenantID.String()))
		return shared.ErrTenantSuspended
	}
	return nil
}

func (s *AuthService) issueTokens(user *identity.User) (*AuthResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.Subject{
		TenantID: user.TenantID,
		UserID:   user.ID,
		Email:    user.Email,
		Role:     string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return newAuthResult(pair, user), nil
}

func (s *AuthService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish identity events", zap.Error(err))
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	case errors.Is(err, auth.ErrTokenRevoked):
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingTenantID),
		errors.Is(err, auth.ErrMissingUserID):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Token validation failed")
	}
}
