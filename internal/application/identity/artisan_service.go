package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// LogoStore stores artisan logos and returns their object key
type LogoStore interface {
	UploadLogo(ctx context.Context, tenantID uuid.UUID, data []byte) (string, error)
}

// ArtisanService manages the artisan business profile and account status
type ArtisanService struct {
	artisanRepo identity.ArtisanRepository
	logos       LogoStore
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewArtisanService creates a new artisan service
func NewArtisanService(
	artisanRepo identity.ArtisanRepository,
	logos LogoStore,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ArtisanService {
	return &ArtisanService{
		artisanRepo: artisanRepo,
		logos:       logos,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// GetProfile returns the artisan profile
func (s *ArtisanService) GetProfile(ctx context.Context, tenantID uuid.UUID) (*ArtisanDTO, error) {
	artisan, err := s.artisanRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	dto := ToArtisanDTO(artisan)
	return &dto, nil
}

// UpdateProfile replaces the editable business profile
func (s *ArtisanService) UpdateProfile(ctx context.Context, tenantID uuid.UUID, input UpdateProfileInput) (*ArtisanDTO, error) {
	artisan, err := s.artisanRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	address, err := valueobject.NewAddress(input.Street, input.Complement, input.PostalCode, input.City, input.Country)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}

	oldSIRET := artisan.SIRET
	if err := artisan.UpdateProfile(identity.ProfileUpdate{
		Name:             input.Name,
		LegalName:        input.LegalName,
		SIRET:            input.SIRET,
		VATNumber:        input.VATNumber,
		Email:            input.Email,
		Phone:            input.Phone,
		Address:          address,
		Trade:            input.Trade,
		IBAN:             input.IBAN,
		PaymentTermsDays: input.PaymentTermsDays,
		DefaultVATRate:   input.DefaultVATRate,
		QuotePrefix:      input.QuotePrefix,
		InvoicePrefix:    input.InvoicePrefix,
	}); err != nil {
		return nil, err
	}

	if artisan.SIRET != "" && artisan.SIRET != oldSIRET {
		taken, err := s.artisanRepo.ExistsBySIRET(ctx, artisan.SIRET)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, shared.NewDomainError("SIRET_TAKEN", "An account already uses this SIRET")
		}
	}

	if err := s.artisanRepo.Save(ctx, artisan); err != nil {
		s.logger.Error("Failed to update artisan profile", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Artisan profile updated", zap.String("tenant_id", tenantID.String()))
	dto := ToArtisanDTO(artisan)
	return &dto, nil
}

// UploadLogo stores a new logo printed on quotes and invoices
func (s *ArtisanService) UploadLogo(ctx context.Context, tenantID uuid.UUID, data []byte) (*ArtisanDTO, error) {
	if len(data) == 0 {
		return nil, shared.NewDomainError("INVALID_LOGO", "Logo file is empty")
	}
	artisan, err := s.artisanRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	key, err := s.logos.UploadLogo(ctx, tenantID, data)
	if err != nil {
		return nil, err
	}
	artisan.SetLogo(key)
	if err := s.artisanRepo.Save(ctx, artisan); err != nil {
		return nil, err
	}

	s.logger.Info("Artisan logo uploaded", zap.String("tenant_id", tenantID.String()), zap.Int("bytes", len(data)))
	dto := ToArtisanDTO(artisan)
	return &dto, nil
}

// PublicProfile returns the profile shown to clients on the portal
func (s *ArtisanService) PublicProfile(ctx context.Context, tenantID uuid.UUID) (*PublicProfileDTO, error) {
	artisan, err := s.artisanRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	dto := ToPublicProfileDTO(artisan)
	return &dto, nil
}

// ValidateTenant rejects unknown and suspended artisan accounts
func (s *ArtisanService) ValidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	artisan, err := s.artisanRepo.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if !artisan.IsActive() {
		return shared.ErrTenantSuspended
	}
	return nil
}

// Suspend blocks every user of the artisan account
func (s *ArtisanService) Suspend(ctx context.Context, tenantID uuid.UUID) (*ArtisanDTO, error) {
	return s.transition(ctx, tenantID, "suspended", (*identity.Artisan).Suspend)
}

// Activate lifts a suspension
func (s *ArtisanService) Activate(ctx context.Context, tenantID uuid.UUID) (*ArtisanDTO, error) {
	return s.transition(ctx, tenantID, "activated", (*identity.Artisan).Activate)
}

func (s *ArtisanService) transition(ctx context.Context, tenantID uuid.UUID, action string, apply func(*identity.Artisan) error) (*ArtisanDTO, error) {
	artisan, err := s.artisanRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := apply(artisan); err != nil {
		return nil, err
	}
	if err := s.artisanRepo.Save(ctx, artisan); err != nil {
		return nil, err
	}
	if s.eventBus != nil {
		if err := s.eventBus.Publish(ctx, artisan.GetDomainEvents()...); err != nil {
			s.logger.Warn("Failed to publish artisan events", zap.Error(err))
		}
	}
	artisan.ClearDomainEvents()

	s.logger.Info("Artisan "+action, zap.String("tenant_id", tenantID.String()))
	dto := ToArtisanDTO(artisan)
	return &dto, nil
}
