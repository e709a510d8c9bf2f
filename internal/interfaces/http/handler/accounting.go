package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	accountingapp "github.com/monartisan/backend/internal/application/accounting"
	"github.com/monartisan/backend/internal/domain/accounting"
	"github.com/monartisan/backend/internal/domain/shared"
)

// AccountingService is the bookkeeping API used by AccountingHandler
type AccountingService interface {
	CreateManualEntry(ctx context.Context, tenantID, userID uuid.UUID, req accountingapp.ManualEntryRequest) (*accountingapp.EntryResponse, error)
	GetEntry(ctx context.Context, tenantID, id uuid.UUID) (*accountingapp.EntryResponse, error)
	ListEntries(ctx context.Context, tenantID uuid.UUID, filter accountingapp.ListFilter) (*shared.Paginated[accountingapp.EntryResponse], error)
	ReverseEntry(ctx context.Context, tenantID, id uuid.UUID, req accountingapp.ReverseRequest) (*accountingapp.EntryResponse, error)
	TrialBalance(ctx context.Context, tenantID uuid.UUID, req accountingapp.PeriodRequest) (*accounting.TrialBalance, error)
}

// AccountingHandler exposes the double-entry journal
type AccountingHandler struct {
	BaseHandler
	accountingService AccountingService
}

// NewAccountingHandler creates a new AccountingHandler
func NewAccountingHandler(accountingService AccountingService) *AccountingHandler {
	return &AccountingHandler{accountingService: accountingService}
}

// CreateEntry godoc
// @ID           createJournalEntry
// @Summary      Record a manual journal entry
// @Description  Debits and credits must balance
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Param        request body accountingapp.ManualEntryRequest true "Entry"
// @Success      201 {object} APIResponse[accountingapp.EntryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accounting/entries [post]
func (h *AccountingHandler) CreateEntry(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req accountingapp.ManualEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.accountingService.CreateManualEntry(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// GetEntry godoc
// @ID           getJournalEntry
// @Summary      Get a journal entry
// @Tags         accounting
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} APIResponse[accountingapp.EntryResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accounting/entries/{id} [get]
func (h *AccountingHandler) GetEntry(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	entry, err := h.accountingService.GetEntry(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// ListEntries godoc
// @ID           listJournalEntries
// @Summary      List journal entries
// @Tags         accounting
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        journal query string false "SALES, PURCHASES, BANK or MISC"
// @Param        from query string false "Dated on or after (YYYY-MM-DD)"
// @Param        to query string false "Dated on or before (YYYY-MM-DD)"
// @Param        source_type query string false "Originating document type"
// @Param        source_id query string false "Originating document ID" format(uuid)
// @Success      200 {object} APIResponse[[]accountingapp.EntryResponse]
// @Security     BearerAuth
// @Router       /accounting/entries [get]
func (h *AccountingHandler) ListEntries(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter accountingapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.SourceID, ok = h.queryUUID(c, "source_id"); !ok {
		return
	}
	page, err := h.accountingService.ListEntries(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(&h.BaseHandler, c, page)
}

// ReverseEntry godoc
// @ID           reverseJournalEntry
// @Summary      Reverse a journal entry
// @Description  Posts the mirror entry. An entry is reversed once.
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Param        request body accountingapp.ReverseRequest false "Label and date"
// @Success      201 {object} APIResponse[accountingapp.EntryResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accounting/entries/{id}/reverse [post]
func (h *AccountingHandler) ReverseEntry(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req accountingapp.ReverseRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.accountingService.ReverseEntry(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// TrialBalance godoc
// @ID           getTrialBalance
// @Summary      Trial balance
// @Description  Debit and credit totals per account over a period
// @Tags         accounting
// @Produce      json
// @Param        from query string false "Period start (YYYY-MM-DD)"
// @Param        to query string false "Period end (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[accounting.TrialBalance]
// @Security     BearerAuth
// @Router       /accounting/trial-balance [get]
func (h *AccountingHandler) TrialBalance(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req accountingapp.PeriodRequest
	if !h.bindQuery(c, &req) {
		return
	}
	tb, err := h.accountingService.TrialBalance(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tb)
}
