package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/application/identity"
	"github.com/shopspring/decimal"
)

const maxLogoBytes = 2 << 20

var logoContentTypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/svg+xml": true,
}

// ArtisanService is the artisan profile API used by ArtisanHandler
type ArtisanService interface {
	GetProfile(ctx context.Context, tenantID uuid.UUID) (*identity.ArtisanDTO, error)
	UpdateProfile(ctx context.Context, tenantID uuid.UUID, input identity.UpdateProfileInput) (*identity.ArtisanDTO, error)
	UploadLogo(ctx context.Context, tenantID uuid.UUID, data []byte) (*identity.ArtisanDTO, error)
	PublicProfile(ctx context.Context, tenantID uuid.UUID) (*identity.PublicProfileDTO, error)
	Suspend(ctx context.Context, tenantID uuid.UUID) (*identity.ArtisanDTO, error)
	Activate(ctx context.Context, tenantID uuid.UUID) (*identity.ArtisanDTO, error)
}

// ArtisanHandler handles the artisan business profile
type ArtisanHandler struct {
	BaseHandler
	artisanService ArtisanService
}

// NewArtisanHandler creates a new ArtisanHandler
func NewArtisanHandler(artisanService ArtisanService) *ArtisanHandler {
	return &ArtisanHandler{artisanService: artisanService}
}

// UpdateProfileRequest replaces the business profile
// @Description Artisan profile payload
type UpdateProfileRequest struct {
	Name             string           `json:"name" binding:"required,min=2,max=200" example:"Plomberie Durand"`
	LegalName        string           `json:"legal_name" binding:"max=200" example:"Durand Marc EI"`
	SIRET            string           `json:"siret" binding:"omitempty,siret" example:"73282932000074"`
	VATNumber        string           `json:"vat_number" binding:"max=20" example:"FR44732829320"`
	Email            string           `json:"email" binding:"required,mailbox"`
	Phone            string           `json:"phone" binding:"omitempty,phone"`
	Street           string           `json:"street" binding:"max=200"`
	Complement       string           `json:"complement" binding:"max=200"`
	PostalCode       string           `json:"postal_code" binding:"max=10"`
	City             string           `json:"city" binding:"max=100"`
	Country          string           `json:"country" binding:"omitempty,len=2" example:"FR"`
	Trade            string           `json:"trade" binding:"max=100"`
	IBAN             string           `json:"iban" binding:"max=34"`
	PaymentTermsDays int              `json:"payment_terms_days" binding:"omitempty,min=0,max=60" example:"30"`
	DefaultVATRate   *decimal.Decimal `json:"default_vat_rate" swaggertype:"string" example:"10"`
	QuotePrefix      string           `json:"quote_prefix" binding:"omitempty,max=10,alphanum" example:"DEV"`
	InvoicePrefix    string           `json:"invoice_prefix" binding:"omitempty,max=10,alphanum" example:"FAC"`
}

// GetProfile godoc
// @ID           getArtisanProfile
// @Summary      Get the artisan profile
// @Tags         artisan
// @Produce      json
// @Success      200 {object} APIResponse[identity.ArtisanDTO]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /artisan [get]
func (h *ArtisanHandler) GetProfile(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	profile, err := h.artisanService.GetProfile(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// UpdateProfile godoc
// @ID           updateArtisanProfile
// @Summary      Update the artisan profile
// @Description  Business identity, numbering prefixes and invoicing defaults. Owner only.
// @Tags         artisan
// @Accept       json
// @Produce      json
// @Param        request body UpdateProfileRequest true "Profile"
// @Success      200 {object} APIResponse[identity.ArtisanDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /artisan [put]
func (h *ArtisanHandler) UpdateProfile(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	profile, err := h.artisanService.UpdateProfile(c.Request.Context(), tenantID, identity.UpdateProfileInput{
		Name:             req.Name,
		LegalName:        req.LegalName,
		SIRET:            req.SIRET,
		VATNumber:        req.VATNumber,
		Email:            req.Email,
		Phone:            req.Phone,
		Street:           req.Street,
		Complement:       req.Complement,
		PostalCode:       req.PostalCode,
		City:             req.City,
		Country:          req.Country,
		Trade:            req.Trade,
		IBAN:             req.IBAN,
		PaymentTermsDays: req.PaymentTermsDays,
		DefaultVATRate:   req.DefaultVATRate,
		QuotePrefix:      req.QuotePrefix,
		InvoicePrefix:    req.InvoicePrefix,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// UploadLogo godoc
// @ID           uploadArtisanLogo
// @Summary      Upload the artisan logo
// @Description  PNG, JPEG or SVG up to 2 MB, printed on generated documents
// @Tags         artisan
// @Accept       multipart/form-data
// @Produce      json
// @Param        logo formData file true "Logo image"
// @Success      200 {object} APIResponse[identity.ArtisanDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /artisan/logo [post]
func (h *ArtisanHandler) UploadLogo(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("logo")
	if err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_LOGO", "A logo file is required")
		return
	}
	defer file.Close()

	if header.Size > maxLogoBytes {
		h.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Logo must not exceed 2 MB")
		return
	}
	if !logoContentTypes[header.Header.Get("Content-Type")] {
		h.Error(c, http.StatusBadRequest, "INVALID_LOGO", "Logo must be a PNG, JPEG or SVG image")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxLogoBytes+1))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if len(data) > maxLogoBytes {
		h.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Logo must not exceed 2 MB")
		return
	}

	profile, err := h.artisanService.UploadLogo(c.Request.Context(), tenantID, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// PublicProfile godoc
// @ID           getPublicArtisanProfile
// @Summary      Public artisan card
// @Description  Contact details shown to clients. No authentication.
// @Tags         public
// @Produce      json
// @Param        id path string true "Artisan ID" format(uuid)
// @Success      200 {object} APIResponse[identity.PublicProfileDTO]
// @Failure      404 {object} ErrorResponse
// @Router       /public/artisans/{id} [get]
func (h *ArtisanHandler) PublicProfile(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	profile, err := h.artisanService.PublicProfile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// Suspend godoc
// @ID           suspendArtisan
// @Summary      Suspend an artisan account
// @Description  Platform administration. Every user of the account is refused until reactivation.
// @Tags         admin
// @Produce      json
// @Param        id path string true "Artisan ID" format(uuid)
// @Param        X-Admin-Key header string true "Platform admin key"
// @Success      200 {object} APIResponse[identity.ArtisanDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /admin/artisans/{id}/suspend [post]
func (h *ArtisanHandler) Suspend(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	profile, err := h.artisanService.Suspend(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// Activate godoc
// @ID           activateArtisan
// @Summary      Reactivate a suspended artisan account
// @Tags         admin
// @Produce      json
// @Param        id path string true "Artisan ID" format(uuid)
// @Param        X-Admin-Key header string true "Platform admin key"
// @Success      200 {object} APIResponse[identity.ArtisanDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /admin/artisans/{id}/activate [post]
func (h *ArtisanHandler) Activate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	profile, err := h.artisanService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}
