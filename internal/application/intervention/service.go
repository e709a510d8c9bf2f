package intervention

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/intervention"
	"github.com/monartisan/backend/internal/domain/quote"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

const (
	// ReminderLead is the default delay before the start at which a client
	// is reminded
	ReminderLead       = 24 * time.Hour
	reminderBatchSize  = 200
	agendaMaxRange     = 93 * 24 * time.Hour
	agendaMaxItems     = 1000
	scheduleLockTTL    = 10 * time.Second
	scheduleLockPrefix = "agenda:"
)

// Reminder notifies a client of an upcoming intervention
type Reminder interface {
	RemindIntervention(ctx context.Context, i *intervention.Intervention, c *client.Client) error
}

// Service handles scheduling of interventions
type Service struct {
	interventionRepo intervention.InterventionRepository
	clientRepo       client.ClientRepository
	quoteRepo        quote.QuoteRepository
	userRepo         identity.UserRepository
	locker           shared.Locker
	reminder         Reminder
	reminderLead     time.Duration
	eventBus         shared.EventPublisher
	logger           *zap.Logger
	now              func() time.Time
}

// NewService creates a new intervention service. locker may be nil.
func NewService(
	interventionRepo intervention.InterventionRepository,
	clientRepo client.ClientRepository,
	quoteRepo quote.QuoteRepository,
	userRepo identity.UserRepository,
	locker shared.Locker,
	reminder Reminder,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		interventionRepo: interventionRepo,
		clientRepo:       clientRepo,
		quoteRepo:        quoteRepo,
		userRepo:         userRepo,
		locker:           locker,
		reminder:         reminder,
		reminderLead:     ReminderLead,
		eventBus:         eventBus,
		logger:           logger,
		now:              time.Now,
	}
}

// SetReminderLead changes how long before the start clients are reminded
func (s *Service) SetReminderLead(d time.Duration) {
	if d > 0 {
		s.reminderLead = d
	}
}

// Schedule plans a new intervention, refusing slots that overlap another
// active intervention of the same technician
func (s *Service) Schedule(ctx context.Context, tenantID, userID uuid.UUID, req ScheduleRequest) (*InterventionResponse, error) {
	c, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, req.ClientID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, tenantID, req.QuoteID, req.TechnicianID); err != nil {
		return nil, err
	}
	address, err := valueobject.NewAddress(req.Street, req.Complement, req.PostalCode, req.City, req.Country)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}
	if address.IsEmpty() {
		address = c.Address
	}

	i, err := intervention.NewIntervention(tenantID, req.ClientID, req.Title, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	i.SetDetails(req.Description, address, req.QuoteID, req.TechnicianID)
	i.SetCreatedBy(userID)

	err = s.withAgendaLock(ctx, tenantID, req.TechnicianID, func() error {
		if err := s.checkConflict(ctx, tenantID, req.TechnicianID, req.Start, req.End, nil); err != nil {
			return err
		}
		return s.interventionRepo.Save(ctx, i)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, i)

	s.logger.Info("Intervention scheduled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("intervention_id", i.ID.String()),
		zap.Time("start", i.ScheduledStart))
	response := ToInterventionResponse(i)
	return &response, nil
}

// Get returns an intervention of the tenant
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*InterventionResponse, error) {
	i, err := s.interventionRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToInterventionResponse(i)
	return &response, nil
}

// List returns a page of interventions ordered by start
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (*shared.Paginated[InterventionResponse], error) {
	domainFilter := intervention.InterventionFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "scheduled_start",
			OrderDir: "asc",
		}.Normalize(),
		ClientID:     filter.ClientID,
		TechnicianID: filter.TechnicianID,
		From:         filter.From,
		To:           filter.To,
	}
	if filter.Status != "" {
		status := intervention.InterventionStatus(filter.Status)
		domainFilter.Status = &status
	}

	list, total, err := s.interventionRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]InterventionResponse, len(list))
	for idx := range list {
		items[idx] = ToInterventionResponse(&list[idx])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Agenda returns the interventions of a date range grouped by day
func (s *Service) Agenda(ctx context.Context, tenantID uuid.UUID, req AgendaRequest) ([]AgendaDay, error) {
	from := req.From
	to := req.To
	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_RANGE", "End of range must not be before its start")
	}
	// the end date is inclusive
	to = to.AddDate(0, 0, 1)
	if to.Sub(from) > agendaMaxRange {
		return nil, shared.NewDomainError("INVALID_RANGE", "Agenda range cannot exceed three months")
	}

	list, _, err := s.interventionRepo.FindAllForTenant(ctx, tenantID, intervention.InterventionFilter{
		Filter:       shared.Filter{Page: 1, PageSize: agendaMaxItems, OrderBy: "scheduled_start", OrderDir: "asc"},
		TechnicianID: req.TechnicianID,
		From:         &from,
		To:           &to,
	})
	if err != nil {
		return nil, err
	}

	byDay := make(map[string][]InterventionResponse)
	for idx := range list {
		if list[idx].Status == intervention.InterventionStatusCancelled {
			continue
		}
		day := list[idx].ScheduledStart.Format("2006-01-02")
		byDay[day] = append(byDay[day], ToInterventionResponse(&list[idx]))
	}
	days := make([]AgendaDay, 0, len(byDay))
	for day, items := range byDay {
		sort.Slice(items, func(a, b int) bool { return items[a].ScheduledStart.Before(items[b].ScheduledStart) })
		days = append(days, AgendaDay{Date: day, Interventions: items})
	}
	sort.Slice(days, func(a, b int) bool { return days[a].Date < days[b].Date })
	return days, nil
}

// Reschedule moves an intervention to a new slot
func (s *Service) Reschedule(ctx context.Context, tenantID, id uuid.UUID, req RescheduleRequest) (*InterventionResponse, error) {
	i, err := s.interventionRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	err = s.withAgendaLock(ctx, tenantID, i.TechnicianID, func() error {
		if err := i.Reschedule(req.Start, req.End); err != nil {
			return err
		}
		if err := s.checkConflict(ctx, tenantID, i.TechnicianID, req.Start, req.End, &i.ID); err != nil {
			return err
		}
		return s.interventionRepo.Save(ctx, i)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, i)
	response := ToInterventionResponse(i)
	return &response, nil
}

// Start marks an intervention as in progress
func (s *Service) Start(ctx context.Context, tenantID, id uuid.UUID) (*InterventionResponse, error) {
	return s.transition(ctx, tenantID, id, func(i *intervention.Intervention) error { return i.Start() })
}

// Complete closes an intervention with its report
func (s *Service) Complete(ctx context.Context, tenantID, id uuid.UUID, report string) (*InterventionResponse, error) {
	return s.transition(ctx, tenantID, id, func(i *intervention.Intervention) error { return i.Complete(report) })
}

// Cancel cancels a scheduled intervention
func (s *Service) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*InterventionResponse, error) {
	return s.transition(ctx, tenantID, id, func(i *intervention.Intervention) error { return i.Cancel() })
}

func (s *Service) transition(ctx context.Context, tenantID, id uuid.UUID, apply func(i *intervention.Intervention) error) (*InterventionResponse, error) {
	i, err := s.interventionRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(i); err != nil {
		return nil, err
	}
	if err := s.interventionRepo.Save(ctx, i); err != nil {
		return nil, err
	}
	s.publish(ctx, i)

	s.logger.Info("Intervention status changed",
		zap.String("intervention_id", i.ID.String()),
		zap.String("status", string(i.Status)))
	response := ToInterventionResponse(i)
	return &response, nil
}

// SendReminders reminds clients of interventions starting within the
// reminder lead time and returns how many reminders were sent
func (s *Service) SendReminders(ctx context.Context) (int, error) {
	now := s.now()
	candidates, err := s.interventionRepo.FindReminderCandidates(ctx, now, now.Add(s.reminderLead), reminderBatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for idx := range candidates {
		i := &candidates[idx]
		if !i.NeedsReminder(now, s.reminderLead) {
			continue
		}
		c, err := s.clientRepo.FindByIDForTenant(ctx, i.TenantID, i.ClientID)
		if err != nil {
			s.logger.Warn("Reminder skipped: client not found",
				zap.String("intervention_id", i.ID.String()),
				zap.Error(err))
			continue
		}
		if err := s.reminder.RemindIntervention(ctx, i, c); err != nil {
			s.logger.Warn("Failed to send intervention reminder",
				zap.String("intervention_id", i.ID.String()),
				zap.Error(err))
			continue
		}
		i.MarkReminderSent(now)
		if err := s.interventionRepo.Save(ctx, i); err != nil {
			s.logger.Error("Failed to record reminder",
				zap.String("intervention_id", i.ID.String()),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *Service) checkReferences(ctx context.Context, tenantID uuid.UUID, quoteID, technicianID *uuid.UUID) error {
	if quoteID != nil {
		if _, err := s.quoteRepo.FindByIDForTenant(ctx, tenantID, *quoteID); err != nil {
			return err
		}
	}
	if technicianID != nil {
		u, err := s.userRepo.FindByID(ctx, tenantID, *technicianID)
		if err != nil {
			return err
		}
		if !u.CanLogin() {
			return shared.NewDomainError("INVALID_TECHNICIAN", "Technician account is disabled")
		}
	}
	return nil
}

func (s *Service) checkConflict(ctx context.Context, tenantID uuid.UUID, technicianID *uuid.UUID, start, end time.Time, excludeID *uuid.UUID) error {
	overlapping, err := s.interventionRepo.FindOverlapping(ctx, tenantID, technicianID, start, end, excludeID)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		other := overlapping[0]
		return shared.NewDomainError("SCHEDULE_CONFLICT", fmt.Sprintf("Slot overlaps intervention %q (%s - %s)",
			other.Title, other.ScheduledStart.Format("02/01/2006 15:04"), other.ScheduledEnd.Format("15:04")))
	}
	return nil
}

// withAgendaLock serialises conflict check and save for one technician
func (s *Service) withAgendaLock(ctx context.Context, tenantID uuid.UUID, technicianID *uuid.UUID, fn func() error) error {
	if s.locker == nil {
		return fn()
	}
	key := scheduleLockPrefix + tenantID.String()
	if technicianID != nil {
		key += ":" + technicianID.String()
	}
	lock, err := s.locker.Acquire(ctx, key, scheduleLockTTL)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release(context.WithoutCancel(ctx)) }()
	return fn()
}

func (s *Service) publish(ctx context.Context, i *intervention.Intervention) {
	events := i.GetDomainEvents()
	if s.eventBus != nil && len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish intervention events", zap.Error(err))
		}
	}
	i.ClearDomainEvents()
}
