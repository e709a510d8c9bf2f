package client

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/client"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	clients  *testutil.MockClientRepository
	invoices *testutil.MockInvoiceRepository
	events   *testutil.RecordingPublisher
	svc      *Service
	tenantID uuid.UUID
	userID   uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		clients:  new(testutil.MockClientRepository),
		invoices: new(testutil.MockInvoiceRepository),
		events:   &testutil.RecordingPublisher{},
		tenantID: uuid.New(),
		userID:   uuid.New(),
	}
	f.svc = NewService(f.clients, f.invoices, f.events, "https://portail.monartisan.fr/p/", nil)
	return f
}

func (f *fixture) existing(t *testing.T) *client.Client {
	t.Helper()
	c, err := client.NewClient(f.tenantID, client.Details{
		Type: client.ClientTypeIndividual, FirstName: "Julie", LastName: "Durand", Email: "julie@example.fr",
	})
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

func TestService_Create(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.clients.On("Save", ctx, mock.AnythingOfType("*client.Client")).Return(nil)

	resp, err := f.svc.Create(ctx, f.tenantID, f.userID, ClientRequest{
		Type:        "company",
		CompanyName: "Boulangerie Morel",
		Email:       "Contact@Morel.fr",
		Phone:       "04 78 62 12 34",
		Street:      "1 rue Neuve",
		PostalCode:  "69001",
		City:        "Lyon",
	})
	require.NoError(t, err)
	assert.Equal(t, client.ClientTypeCompany, resp.Type)
	assert.Equal(t, "Boulangerie Morel", resp.DisplayName)
	assert.Equal(t, "contact@morel.fr", resp.Email)
	assert.Equal(t, "+33478621234", resp.Phone)
	assert.Equal(t, "FR", resp.Address.Country)
	assert.Equal(t, []string{client.EventTypeClientCreated}, f.events.EventTypes())

	saved := f.clients.Calls[0].Arguments.Get(1).(*client.Client)
	assert.Equal(t, f.tenantID, saved.TenantID)
	require.NotNil(t, saved.CreatedBy)
	assert.Equal(t, f.userID, *saved.CreatedBy)
	assert.Equal(t, "boulangerie morel contact@morel.fr +33478621234 lyon", saved.SearchKey)
}

func TestService_Create_Validation(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		req  ClientRequest
		code string
	}{
		{"company without name", ClientRequest{Type: "COMPANY", LastName: "Morel"}, "INVALID_CLIENT"},
		{"individual without last name", ClientRequest{Type: "INDIVIDUAL", FirstName: "Julie"}, "INVALID_CLIENT"},
		{"bad phone", ClientRequest{Type: "INDIVIDUAL", LastName: "Durand", Phone: "12"}, "INVALID_PHONE"},
		{"bad postal code", ClientRequest{Type: "INDIVIDUAL", LastName: "Durand", Street: "1 rue X", PostalCode: "6900", City: "Lyon"}, "INVALID_ADDRESS"},
		{"bad type", ClientRequest{Type: "OTHER", LastName: "Durand"}, "INVALID_CLIENT_TYPE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Create(ctx, f.tenantID, f.userID, tc.req)
			assertCode(t, err, tc.code)
			f.clients.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestService_GetOtherTenantIsNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.New()
	f.clients.On("FindByIDForTenant", ctx, f.tenantID, id).Return(nil, shared.ErrNotFound)

	_, err := f.svc.Get(ctx, f.tenantID, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_ListFoldsSearch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.existing(t)

	f.clients.On("FindAllForTenant", ctx, f.tenantID, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Search == "helene" && filter.Page == 1 && filter.PageSize == 100 && filter.Filters["type"] == "INDIVIDUAL"
	})).Return([]client.Client{*c}, int64(101), nil)

	page, err := f.svc.List(ctx, f.tenantID, ListFilter{Search: "  Hélène ", PageSize: 500, Type: "INDIVIDUAL"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Julie Durand", page.Items[0].DisplayName)
	assert.Equal(t, 2, page.TotalPages)
}

func TestService_Update(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.existing(t)
	f.clients.On("FindByIDForTenant", ctx, f.tenantID, c.ID).Return(c, nil)
	f.clients.On("Save", ctx, c).Return(nil)

	resp, err := f.svc.Update(ctx, f.tenantID, c.ID, ClientRequest{
		Type: "INDIVIDUAL", FirstName: "Julie", LastName: "Martin", Email: "julie@example.fr",
	})
	require.NoError(t, err)
	assert.Equal(t, "Julie Martin", resp.DisplayName)
	assert.Equal(t, []string{client.EventTypeClientUpdated}, f.events.EventTypes())
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("refused with invoices", func(t *testing.T) {
		f := newFixture()
		c := f.existing(t)
		f.clients.On("FindByIDForTenant", ctx, f.tenantID, c.ID).Return(c, nil)
		f.invoices.On("CountByClient", ctx, f.tenantID, c.ID).Return(int64(2), nil)

		err := f.svc.Delete(ctx, f.tenantID, c.ID)
		assertCode(t, err, "HAS_INVOICES")
		f.clients.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deleted without invoices", func(t *testing.T) {
		f := newFixture()
		c := f.existing(t)
		f.clients.On("FindByIDForTenant", ctx, f.tenantID, c.ID).Return(c, nil)
		f.invoices.On("CountByClient", ctx, f.tenantID, c.ID).Return(int64(0), nil)
		f.clients.On("DeleteForTenant", ctx, f.tenantID, c.ID).Return(nil)

		require.NoError(t, f.svc.Delete(ctx, f.tenantID, c.ID))
		f.clients.AssertExpectations(t)
	})
}

func TestService_Portal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.existing(t)
	f.clients.On("FindByIDForTenant", ctx, f.tenantID, c.ID).Return(c, nil)
	f.clients.On("Save", ctx, c).Return(nil)

	first, err := f.svc.EnablePortal(ctx, f.tenantID, c.ID)
	require.NoError(t, err)
	assert.Len(t, first.Token, 64)
	assert.Equal(t, "https://portail.monartisan.fr/p/"+first.Token, first.URL)
	assert.True(t, c.CanUsePortal(first.Token))

	second, err := f.svc.EnablePortal(ctx, f.tenantID, c.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
	assert.False(t, c.CanUsePortal(first.Token))

	require.NoError(t, f.svc.DisablePortal(ctx, f.tenantID, c.ID))
	assert.False(t, c.CanUsePortal(second.Token))
}
