package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/accounting"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/dataexchange"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/intervention"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/notification"
	"github.com/monartisan/backend/internal/domain/quote"
	"github.com/monartisan/backend/internal/domain/review"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/domain/supplier"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Repository mocks
// =============================================================================

// MockArtisanRepository is a mock implementation of identity.ArtisanRepository
type MockArtisanRepository struct {
	mock.Mock
}

func (m *MockArtisanRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Artisan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Artisan), args.Error(1)
}

func (m *MockArtisanRepository) Save(ctx context.Context, artisan *identity.Artisan) error {
	args := m.Called(ctx, artisan)
	return args.Error(0)
}

func (m *MockArtisanRepository) ExistsBySIRET(ctx context.Context, siret string) (bool, error) {
	args := m.Called(ctx, siret)
	return args.Bool(0), args.Error(1)
}

func (m *MockArtisanRepository) NextDocumentNumber(ctx context.Context, tenantID uuid.UUID, kind identity.DocumentKind, year int) (int, error) {
	args := m.Called(ctx, tenantID, kind, year)
	return args.Int(0), args.Error(1)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]identity.User, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockClientRepository is a mock implementation of client.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*client.Client, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]client.Client, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]client.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) FindByEmailForTenant(ctx context.Context, tenantID uuid.UUID, email string) (*client.Client, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]client.Client, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]client.Client), args.Error(1)
}

func (m *MockClientRepository) FindByPortalToken(ctx context.Context, token string) (*client.Client, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockQuoteRepository is a mock implementation of quote.QuoteRepository
type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*quote.Quote, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quote.Quote), args.Error(1)
}

func (m *MockQuoteRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter quote.QuoteFilter) ([]quote.Quote, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]quote.Quote), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuoteRepository) FindExpirable(ctx context.Context, before time.Time, limit int) ([]quote.Quote, error) {
	args := m.Called(ctx, before, limit)
	return args.Get(0).([]quote.Quote), args.Error(1)
}

func (m *MockQuoteRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[quote.QuoteStatus]int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(map[quote.QuoteStatus]int64), args.Error(1)
}

func (m *MockQuoteRepository) Save(ctx context.Context, q *quote.Quote) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuoteRepository) SaveWithLock(ctx context.Context, q *quote.Quote) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of invoice.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter invoice.InvoiceFilter) ([]invoice.Invoice, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]invoice.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) FindOverdueCandidates(ctx context.Context, dueBefore time.Time, limit int) ([]invoice.Invoice, error) {
	args := m.Called(ctx, dueBefore, limit)
	return args.Get(0).([]invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountByClient(ctx context.Context, tenantID, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Summarize(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*invoice.Summary, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Summary), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockInterventionRepository is a mock implementation of intervention.InterventionRepository
type MockInterventionRepository struct {
	mock.Mock
}

func (m *MockInterventionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*intervention.Intervention, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*intervention.Intervention), args.Error(1)
}

func (m *MockInterventionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter intervention.InterventionFilter) ([]intervention.Intervention, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]intervention.Intervention), args.Get(1).(int64), args.Error(2)
}

func (m *MockInterventionRepository) FindOverlapping(ctx context.Context, tenantID uuid.UUID, technicianID *uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]intervention.Intervention, error) {
	args := m.Called(ctx, tenantID, technicianID, start, end, excludeID)
	return args.Get(0).([]intervention.Intervention), args.Error(1)
}

func (m *MockInterventionRepository) FindReminderCandidates(ctx context.Context, from, to time.Time, limit int) ([]intervention.Intervention, error) {
	args := m.Called(ctx, from, to, limit)
	return args.Get(0).([]intervention.Intervention), args.Error(1)
}

func (m *MockInterventionRepository) Save(ctx context.Context, i *intervention.Intervention) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

// MockSupplierRepository is a mock implementation of supplier.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*supplier.Supplier, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]supplier.Supplier, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]supplier.Supplier), args.Get(1).(int64), args.Error(2)
}

func (m *MockSupplierRepository) Save(ctx context.Context, s *supplier.Supplier) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSupplierRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockSupplierOrderRepository is a mock implementation of supplier.SupplierOrderRepository
type MockSupplierOrderRepository struct {
	mock.Mock
}

func (m *MockSupplierOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*supplier.SupplierOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.SupplierOrder), args.Error(1)
}

func (m *MockSupplierOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter supplier.OrderFilter) ([]supplier.SupplierOrder, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]supplier.SupplierOrder), args.Get(1).(int64), args.Error(2)
}

func (m *MockSupplierOrderRepository) CountBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, supplierID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierOrderRepository) Save(ctx context.Context, o *supplier.SupplierOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

// MockReviewRepository is a mock implementation of review.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*review.Review, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter review.ReviewFilter) ([]review.Review, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]review.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) ExistsForIntervention(ctx context.Context, tenantID, clientID uuid.UUID, interventionID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, clientID, interventionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) RatingHistogram(ctx context.Context, tenantID uuid.UUID) (map[int]int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(map[int]int64), args.Error(1)
}

func (m *MockReviewRepository) Save(ctx context.Context, r *review.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockNotificationRepository is a mock implementation of notification.NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*notification.Notification, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter notification.NotificationFilter) ([]notification.Notification, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]notification.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) FindRetryable(ctx context.Context, maxAttempts, limit int) ([]notification.Notification, error) {
	args := m.Called(ctx, maxAttempts, limit)
	return args.Get(0).([]notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockJournalEntryRepository is a mock implementation of accounting.JournalEntryRepository
type MockJournalEntryRepository struct {
	mock.Mock
}

func (m *MockJournalEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*accounting.JournalEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter accounting.EntryFilter) ([]accounting.JournalEntry, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]accounting.JournalEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockJournalEntryRepository) FindForPeriod(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) ([]accounting.JournalEntry, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) Create(ctx context.Context, e *accounting.JournalEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// MockImportRunRepository is a mock implementation of dataexchange.ImportRunRepository
type MockImportRunRepository struct {
	mock.Mock
}

func (m *MockImportRunRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]dataexchange.ImportRun, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]dataexchange.ImportRun), args.Get(1).(int64), args.Error(2)
}

func (m *MockImportRunRepository) Save(ctx context.Context, run *dataexchange.ImportRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// =============================================================================
// Infrastructure fakes
// =============================================================================

// FakeTxManager runs the callback inline and counts transactions
type FakeTxManager struct {
	mu    sync.Mutex
	calls int
}

func (f *FakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return fn(ctx)
}

// Calls returns how many transactions were opened
func (f *FakeTxManager) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// RecordingPublisher keeps every published event
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.Err
}

// Events returns the published events
func (p *RecordingPublisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

// EventTypes returns the types of the published events in order
func (p *RecordingPublisher) EventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

// MockSender is a mock implementation of notification.Sender
type MockSender struct {
	mock.Mock
	channel notification.Channel
}

// NewMockSender creates a sender mock for a channel
func NewMockSender(channel notification.Channel) *MockSender {
	return &MockSender{channel: channel}
}

func (m *MockSender) Channel() notification.Channel {
	return m.channel
}

func (m *MockSender) Send(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
