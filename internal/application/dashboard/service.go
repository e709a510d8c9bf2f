// Package dashboard builds the artisan's home page figures.
package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	interventionapp "github.com/monartisan/backend/internal/application/intervention"
	"github.com/monartisan/backend/internal/domain/intervention"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/quote"
	"github.com/monartisan/backend/internal/domain/review"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	upcomingWindow = 7 * 24 * time.Hour
	upcomingLimit  = 20
)

// PeriodRequest bounds the revenue figures; defaults to the current month
type PeriodRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// Summary is the dashboard payload
type Summary struct {
	From           time.Time                              `json:"from"`
	To             time.Time                              `json:"to"`
	Invoiced       decimal.Decimal                        `json:"invoiced"`
	Collected      decimal.Decimal                        `json:"collected"`
	Outstanding    decimal.Decimal                        `json:"outstanding"`
	OverdueCount   int64                                  `json:"overdue_count"`
	QuotesPending  int64                                  `json:"quotes_pending"`
	QuotesAccepted int64                                  `json:"quotes_accepted"`
	QuotesRejected int64                                  `json:"quotes_rejected"`
	ConversionRate decimal.Decimal                        `json:"conversion_rate"` // percent, 1 decimal
	Upcoming       []interventionapp.InterventionResponse `json:"upcoming_interventions"`
	Rating         review.Stats                           `json:"rating"`
}

// Service computes dashboard summaries
type Service struct {
	invoiceRepo      invoice.InvoiceRepository
	quoteRepo        quote.QuoteRepository
	interventionRepo intervention.InterventionRepository
	reviewRepo       review.ReviewRepository
	logger           *zap.Logger
	now              func() time.Time
}

// NewService creates a new dashboard service
func NewService(
	invoiceRepo invoice.InvoiceRepository,
	quoteRepo quote.QuoteRepository,
	interventionRepo intervention.InterventionRepository,
	reviewRepo review.ReviewRepository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		invoiceRepo:      invoiceRepo,
		quoteRepo:        quoteRepo,
		interventionRepo: interventionRepo,
		reviewRepo:       reviewRepo,
		logger:           logger,
		now:              time.Now,
	}
}

// Summary returns the figures of a tenant for the requested period
func (s *Service) Summary(ctx context.Context, tenantID uuid.UUID, req PeriodRequest) (*Summary, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now
	if req.From != nil {
		from = *req.From
	}
	if req.To != nil {
		to = *req.To
	}
	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_RANGE", "End date must not be before start date")
	}

	sum, err := s.invoiceRepo.Summarize(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	counts, err := s.quoteRepo.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	histogram, err := s.reviewRepo.RatingHistogram(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.upcoming(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}

	accepted := counts[quote.QuoteStatusAccepted] + counts[quote.QuoteStatusInvoiced]
	rejected := counts[quote.QuoteStatusRejected]
	return &Summary{
		From:           from,
		To:             to,
		Invoiced:       sum.Invoiced,
		Collected:      sum.Collected,
		Outstanding:    sum.Outstanding,
		OverdueCount:   sum.OverdueCount,
		QuotesPending:  counts[quote.QuoteStatusSent],
		QuotesAccepted: accepted,
		QuotesRejected: rejected,
		ConversionRate: ConversionRate(accepted, rejected),
		Upcoming:       upcoming,
		Rating:         review.ComputeStats(histogram),
	}, nil
}

// ConversionRate is accepted / (accepted + rejected) in percent. Quotes still
// waiting or expired are not decisions and do not count.
func ConversionRate(accepted, rejected int64) decimal.Decimal {
	decided := accepted + rejected
	if decided == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(accepted * 100).Div(decimal.NewFromInt(decided)).Round(1)
}

func (s *Service) upcoming(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]interventionapp.InterventionResponse, error) {
	status := intervention.InterventionStatusScheduled
	end := now.Add(upcomingWindow)
	filter := intervention.InterventionFilter{
		Filter: shared.Filter{
			Page:     1,
			PageSize: upcomingLimit,
			OrderBy:  "scheduled_start",
			OrderDir: "asc",
		}.Normalize(),
		Status: &status,
		From:   &now,
		To:     &end,
	}
	items, _, err := s.interventionRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]interventionapp.InterventionResponse, len(items))
	for i := range items {
		out[i] = interventionapp.ToInterventionResponse(&items[i])
	}
	return out, nil
}
