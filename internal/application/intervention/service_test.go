package intervention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/intervention"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
	"github.com/monartisan/backend/internal/infrastructure/cache"
	"github.com/monartisan/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingReminder struct {
	reminded []uuid.UUID
	err      error
}

func (r *recordingReminder) RemindIntervention(_ context.Context, i *intervention.Intervention, _ *client.Client) error {
	if r.err != nil {
		return r.err
	}
	r.reminded = append(r.reminded, i.ID)
	return nil
}

type fixture struct {
	interventions *testutil.MockInterventionRepository
	clients       *testutil.MockClientRepository
	quotes        *testutil.MockQuoteRepository
	users         *testutil.MockUserRepository
	reminder      *recordingReminder
	events        *testutil.RecordingPublisher
	svc           *Service
	tenantID      uuid.UUID
	client        *client.Client
	now           time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tenantID := uuid.New()
	c, err := client.NewClient(tenantID, client.Details{
		Type: client.ClientTypeIndividual, LastName: "Bernard", Email: "paul.bernard@example.fr", Phone: "06 12 34 56 78",
		Address: mustAddress(t, "8 avenue Foch", "75016", "Paris"),
	})
	require.NoError(t, err)

	f := &fixture{
		interventions: new(testutil.MockInterventionRepository),
		clients:       new(testutil.MockClientRepository),
		quotes:        new(testutil.MockQuoteRepository),
		users:         new(testutil.MockUserRepository),
		reminder:      &recordingReminder{},
		events:        &testutil.RecordingPublisher{},
		tenantID:      tenantID,
		client:        c,
		now:           time.Date(2026, 5, 12, 8, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.interventions, f.clients, f.quotes, f.users, cache.NewLocalLocker(), f.reminder, f.events, nil)
	f.svc.now = func() time.Time { return f.now }
	f.clients.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	return f
}

func (f *fixture) scheduled(t *testing.T, start time.Time) *intervention.Intervention {
	t.Helper()
	i, err := intervention.NewIntervention(f.tenantID, f.client.ID, "Entretien chaudière", start, start.Add(2*time.Hour))
	require.NoError(t, err)
	i.ClearDomainEvents()
	return i
}

func mustAddress(t *testing.T, street, postalCode, city string) valueobject.Address {
	t.Helper()
	a, err := valueobject.NewAddress(street, "", postalCode, city, "FR")
	require.NoError(t, err)
	return a
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

func TestService_Schedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := f.now.Add(48 * time.Hour)
	f.interventions.On("FindOverlapping", ctx, f.tenantID, (*uuid.UUID)(nil), start, start.Add(3*time.Hour), (*uuid.UUID)(nil)).
		Return([]intervention.Intervention{}, nil)
	f.interventions.On("Save", ctx, mock.AnythingOfType("*intervention.Intervention")).Return(nil)

	resp, err := f.svc.Schedule(ctx, f.tenantID, uuid.New(), ScheduleRequest{
		ClientID: f.client.ID,
		Title:    "Entretien chaudière",
		Start:    start,
		End:      start.Add(3 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, intervention.InterventionStatusScheduled, resp.Status)
	assert.Equal(t, "Paris", resp.Address.City, "falls back to the client address")
	assert.Equal(t, []string{intervention.EventTypeInterventionScheduled}, f.events.EventTypes())
}

func TestService_Schedule_Conflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	technician, err := identity.NewUser(f.tenantID, "theo@plomberie.fr", "Technicien2026", "Théo", identity.UserRoleEmployee)
	require.NoError(t, err)
	f.users.On("FindByID", ctx, f.tenantID, technician.ID).Return(technician, nil)

	start := f.now.Add(24 * time.Hour)
	busy := f.scheduled(t, start.Add(-time.Hour))
	f.interventions.On("FindOverlapping", ctx, f.tenantID, &technician.ID, start, start.Add(time.Hour), (*uuid.UUID)(nil)).
		Return([]intervention.Intervention{*busy}, nil)

	_, err = f.svc.Schedule(ctx, f.tenantID, uuid.New(), ScheduleRequest{
		ClientID:     f.client.ID,
		TechnicianID: &technician.ID,
		Title:        "Fuite sous évier",
		Start:        start,
		End:          start.Add(time.Hour),
	})
	assertCode(t, err, "SCHEDULE_CONFLICT")
	f.interventions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Empty(t, f.events.EventTypes())
}

func TestService_Schedule_InvalidSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := f.now.Add(24 * time.Hour)

	_, err := f.svc.Schedule(ctx, f.tenantID, uuid.New(), ScheduleRequest{
		ClientID: f.client.ID,
		Title:    "Fuite",
		Start:    start,
		End:      start.Add(-time.Hour),
	})
	assertCode(t, err, "INVALID_SLOT")
}

func TestService_Reschedule_ExcludesItself(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	i := f.scheduled(t, f.now.Add(24*time.Hour))
	newStart := i.ScheduledStart.Add(time.Hour)
	f.interventions.On("FindByIDForTenant", ctx, f.tenantID, i.ID).Return(i, nil)
	f.interventions.On("FindOverlapping", ctx, f.tenantID, (*uuid.UUID)(nil), newStart, newStart.Add(2*time.Hour), &i.ID).
		Return([]intervention.Intervention{}, nil)
	f.interventions.On("Save", ctx, i).Return(nil)

	resp, err := f.svc.Reschedule(ctx, f.tenantID, i.ID, RescheduleRequest{Start: newStart, End: newStart.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, newStart, resp.ScheduledStart)
	assert.Equal(t, []string{intervention.EventTypeInterventionRescheduled}, f.events.EventTypes())
}

func TestService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	i := f.scheduled(t, f.now)
	f.interventions.On("FindByIDForTenant", ctx, f.tenantID, i.ID).Return(i, nil)
	f.interventions.On("Save", ctx, i).Return(nil)

	_, err := f.svc.Complete(ctx, f.tenantID, i.ID, "too early")
	assertCode(t, err, "INVALID_STATE")

	resp, err := f.svc.Start(ctx, f.tenantID, i.ID)
	require.NoError(t, err)
	assert.Equal(t, intervention.InterventionStatusInProgress, resp.Status)

	_, err = f.svc.Cancel(ctx, f.tenantID, i.ID)
	assertCode(t, err, "INVALID_STATE")

	resp, err = f.svc.Complete(ctx, f.tenantID, i.ID, "Chaudière détartrée, joint remplacé")
	require.NoError(t, err)
	assert.Equal(t, intervention.InterventionStatusCompleted, resp.Status)
	assert.Equal(t, "Chaudière détartrée, joint remplacé", resp.Report)
}

func TestService_Agenda(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day1 := time.Date(2026, 5, 13, 0, 0, 0, 0, time.UTC)
	afternoon := f.scheduled(t, day1.Add(14*time.Hour))
	morning := f.scheduled(t, day1.Add(9*time.Hour))
	nextDay := f.scheduled(t, day1.Add(33*time.Hour))
	cancelled := f.scheduled(t, day1.Add(10*time.Hour))
	require.NoError(t, cancelled.Cancel())

	f.interventions.On("FindAllForTenant", ctx, f.tenantID, mock.MatchedBy(func(fl intervention.InterventionFilter) bool {
		return fl.From != nil && fl.From.Equal(day1) && fl.To != nil && fl.To.Equal(day1.AddDate(0, 0, 2))
	})).Return([]intervention.Intervention{*afternoon, *morning, *nextDay, *cancelled}, int64(4), nil)

	days, err := f.svc.Agenda(ctx, f.tenantID, AgendaRequest{From: day1, To: day1.AddDate(0, 0, 1)})
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-05-13", days[0].Date)
	require.Len(t, days[0].Interventions, 2)
	assert.Equal(t, morning.ID, days[0].Interventions[0].ID)
	assert.Equal(t, afternoon.ID, days[0].Interventions[1].ID)
	assert.Equal(t, "2026-05-14", days[1].Date)
}

func TestService_Agenda_InvalidRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Agenda(ctx, f.tenantID, AgendaRequest{From: f.now, To: f.now.AddDate(0, 0, -1)})
	assertCode(t, err, "INVALID_RANGE")

	_, err = f.svc.Agenda(ctx, f.tenantID, AgendaRequest{From: f.now, To: f.now.AddDate(0, 6, 0)})
	assertCode(t, err, "INVALID_RANGE")
}

func TestService_SendReminders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soon := f.scheduled(t, f.now.Add(20*time.Hour))
	already := f.scheduled(t, f.now.Add(10*time.Hour))
	already.MarkReminderSent(f.now.Add(-time.Hour))

	f.interventions.On("FindReminderCandidates", ctx, f.now, f.now.Add(ReminderLead), reminderBatchSize).
		Return([]intervention.Intervention{*soon, *already}, nil)
	f.interventions.On("Save", ctx, mock.AnythingOfType("*intervention.Intervention")).Return(nil)

	count, err := f.svc.SendReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []uuid.UUID{soon.ID}, f.reminder.reminded)

	saved := f.interventions.Calls[1].Arguments.Get(1).(*intervention.Intervention)
	require.NotNil(t, saved.ReminderSentAt)
	assert.Equal(t, f.now, *saved.ReminderSentAt)
}

func TestService_SendReminders_DeliveryFailureLeavesUnmarked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.reminder.err = errors.New("smtp down")
	soon := f.scheduled(t, f.now.Add(2*time.Hour))
	f.interventions.On("FindReminderCandidates", ctx, f.now, f.now.Add(ReminderLead), reminderBatchSize).
		Return([]intervention.Intervention{*soon}, nil)

	count, err := f.svc.SendReminders(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	f.interventions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
