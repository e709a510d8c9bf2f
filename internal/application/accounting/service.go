package accounting

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/accounting"
	"github.com/monartisan/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service exposes the general ledger: manual entries, listings and the
// trial balance. Automatic postings are written by the invoice and supplier
// services.
type Service struct {
	journalRepo accounting.JournalEntryRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new accounting service
func NewService(journalRepo accounting.JournalEntryRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		journalRepo: journalRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateManualEntry records a balanced entry typed in by the artisan
func (s *Service) CreateManualEntry(ctx context.Context, tenantID, userID uuid.UUID, req ManualEntryRequest) (*EntryResponse, error) {
	date := s.now()
	if req.Date != nil {
		date = *req.Date
	}
	lines := make([]accounting.EntryLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = accounting.EntryLine{
			Account: strings.TrimSpace(l.Account),
			Label:   strings.TrimSpace(l.Label),
			Debit:   l.Debit,
			Credit:  l.Credit,
		}
	}
	entry, err := accounting.NewJournalEntry(tenantID, accounting.Journal(strings.ToUpper(req.Journal)), date, req.Label, lines)
	if err != nil {
		return nil, err
	}
	entry.SourceType = accounting.SourceManual
	if err := s.journalRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Manual journal entry created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", userID.String()),
		zap.String("entry_id", entry.ID.String()),
		zap.String("journal", string(entry.Journal)),
		zap.String("amount", entry.TotalDebit().StringFixed(2)))
	response := ToEntryResponse(entry)
	return &response, nil
}

// GetEntry returns one entry
func (s *Service) GetEntry(ctx context.Context, tenantID, id uuid.UUID) (*EntryResponse, error) {
	entry, err := s.journalRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToEntryResponse(entry)
	return &response, nil
}

// ListEntries returns entries, newest first
func (s *Service) ListEntries(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (*shared.Paginated[EntryResponse], error) {
	if err := checkRange(filter.From, filter.To); err != nil {
		return nil, err
	}
	domainFilter := accounting.EntryFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "date",
			OrderDir: "desc",
		}.Normalize(),
		From:       filter.From,
		To:         filter.To,
		SourceType: strings.ToUpper(filter.SourceType),
		SourceID:   filter.SourceID,
	}
	if filter.Journal != "" {
		j := accounting.Journal(strings.ToUpper(filter.Journal))
		domainFilter.Journal = &j
	}

	entries, total, err := s.journalRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]EntryResponse, len(entries))
	for i := range entries {
		items[i] = ToEntryResponse(&entries[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// ReverseEntry posts the mirror of an entry. Reversals cannot be reversed.
func (s *Service) ReverseEntry(ctx context.Context, tenantID, id uuid.UUID, req ReverseRequest) (*EntryResponse, error) {
	entry, err := s.journalRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if entry.ReversalOf != nil {
		return nil, shared.NewDomainError("INVALID_STATE", "A reversal cannot be reversed")
	}
	date := s.now()
	if req.Date != nil {
		date = *req.Date
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = "Extourne : " + entry.Label
	}
	rev, err := entry.Reverse(date, label)
	if err != nil {
		return nil, err
	}
	if err := s.journalRepo.Create(ctx, rev); err != nil {
		return nil, err
	}

	s.logger.Info("Journal entry reversed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("entry_id", id.String()),
		zap.String("reversal_id", rev.ID.String()))
	response := ToEntryResponse(rev)
	return &response, nil
}

// TrialBalance aggregates every entry of the period per account. An
// unbalanced ledger is reported, not rejected.
func (s *Service) TrialBalance(ctx context.Context, tenantID uuid.UUID, req PeriodRequest) (*accounting.TrialBalance, error) {
	if err := checkRange(req.From, req.To); err != nil {
		return nil, err
	}
	entries, err := s.journalRepo.FindForPeriod(ctx, tenantID, req.From, req.To)
	if err != nil {
		return nil, err
	}
	tb := accounting.ComputeTrialBalance(entries, req.From, req.To)
	if !tb.Balanced {
		s.logger.Warn("Trial balance is not balanced",
			zap.String("tenant_id", tenantID.String()),
			zap.String("difference", tb.Difference.StringFixed(2)),
			zap.Bool("critical", tb.Critical))
	}
	return &tb, nil
}

func checkRange(from, to *time.Time) error {
	if from != nil && to != nil && to.Before(*from) {
		return shared.NewDomainError("INVALID_RANGE", "End date must not be before start date")
	}
	return nil
}
