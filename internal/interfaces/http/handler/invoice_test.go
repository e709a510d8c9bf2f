package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	clientapp "github.com/monartisan/backend/internal/application/client"
	documentapp "github.com/monartisan/backend/internal/application/document"
	invoiceapp "github.com/monartisan/backend/internal/application/invoice"
	"github.com/monartisan/backend/internal/domain/invoice"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockInvoiceService struct{ mock.Mock }

func (m *mockInvoiceService) one(args mock.Arguments) (*invoiceapp.InvoiceResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoiceapp.InvoiceResponse), args.Error(1)
}

func (m *mockInvoiceService) Create(ctx context.Context, tenantID, userID uuid.UUID, req invoiceapp.InvoiceRequest) (*invoiceapp.InvoiceResponse, error) {
	return m.one(m.Called(ctx, tenantID, userID, req))
}

func (m *mockInvoiceService) Get(ctx context.Context, tenantID, id uuid.UUID) (*invoiceapp.InvoiceResponse, error) {
	return m.one(m.Called(ctx, tenantID, id))
}

func (m *mockInvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter invoiceapp.ListFilter) (*shared.Paginated[invoiceapp.InvoiceResponse], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[invoiceapp.InvoiceResponse]), args.Error(1)
}

func (m *mockInvoiceService) Update(ctx context.Context, tenantID, id uuid.UUID, req invoiceapp.InvoiceRequest) (*invoiceapp.InvoiceResponse, error) {
	return m.one(m.Called(ctx, tenantID, id, req))
}

func (m *mockInvoiceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockInvoiceService) Issue(ctx context.Context, tenantID, id uuid.UUID) (*invoiceapp.InvoiceResponse, error) {
	return m.one(m.Called(ctx, tenantID, id))
}

func (m *mockInvoiceService) RecordPayment(ctx context.Context, tenantID, id uuid.UUID, req invoiceapp.PaymentRequest) (*invoiceapp.InvoiceResponse, error) {
	return m.one(m.Called(ctx, tenantID, id, req))
}

func (m *mockInvoiceService) Cancel(ctx context.Context, tenantID, id uuid.UUID, reason string) (*invoiceapp.InvoiceResponse, error) {
	return m.one(m.Called(ctx, tenantID, id, reason))
}

func (m *mockInvoiceService) RenderPDF(ctx context.Context, tenantID, id uuid.UUID) (*documentapp.Rendered, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.Rendered), args.Error(1)
}

func TestInvoiceHandler_RecordPayment(t *testing.T) {
	tenantID, id := uuid.New(), uuid.New()
	target := "/invoices/" + id.String() + "/payments"

	t.Run("partial payment", func(t *testing.T) {
		svc := new(mockInvoiceService)
		svc.On("RecordPayment", mock.Anything, tenantID, id, mock.MatchedBy(func(req invoiceapp.PaymentRequest) bool {
			return req.Amount.Equal(decimal.RequireFromString("150.50")) && req.Method == "CHEQUE"
		})).Return(&invoiceapp.InvoiceResponse{ID: id, Status: invoice.InvoiceStatusPartiallyPaid}, nil)

		w := perform(t, http.MethodPost, "/invoices/:id/payments", target, NewInvoiceHandler(svc).RecordPayment,
			`{"amount":"150.50","method":"CHEQUE","reference":"CHQ 0012"}`, tenantID, uuid.New())

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "PARTIALLY_PAID", decode(t, w).Data.(map[string]any)["status"])
	})

	t.Run("unknown method", func(t *testing.T) {
		svc := new(mockInvoiceService)
		w := perform(t, http.MethodPost, "/invoices/:id/payments", target, NewInvoiceHandler(svc).RecordPayment,
			`{"amount":"10","method":"BITCOIN"}`, tenantID, uuid.New())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("overpayment", func(t *testing.T) {
		svc := new(mockInvoiceService)
		svc.On("RecordPayment", mock.Anything, tenantID, id, mock.Anything).
			Return(nil, shared.NewDomainError("EXCEEDS_OUTSTANDING", "Payment exceeds the amount due"))

		w := perform(t, http.MethodPost, "/invoices/:id/payments", target, NewInvoiceHandler(svc).RecordPayment,
			`{"amount":"99999","method":"CASH"}`, tenantID, uuid.New())

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestInvoiceHandler_Cancel(t *testing.T) {
	tenantID, id := uuid.New(), uuid.New()
	target := "/invoices/" + id.String() + "/cancel"
	svc := new(mockInvoiceService)
	svc.On("Cancel", mock.Anything, tenantID, id, "Erreur de client").
		Return(&invoiceapp.InvoiceResponse{ID: id, Status: invoice.InvoiceStatusCancelled}, nil)

	w := perform(t, http.MethodPost, "/invoices/:id/cancel", target, NewInvoiceHandler(svc).Cancel, nil, tenantID, uuid.New())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, http.MethodPost, "/invoices/:id/cancel", target, NewInvoiceHandler(svc).Cancel,
		map[string]string{"reason": "Erreur de client"}, tenantID, uuid.New())
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertNumberOfCalls(t, "Cancel", 1)
}

func TestInvoiceHandler_DeleteIssued(t *testing.T) {
	tenantID, id := uuid.New(), uuid.New()
	svc := new(mockInvoiceService)
	svc.On("Delete", mock.Anything, tenantID, id).Return(shared.ErrInvalidState)

	w := perform(t, http.MethodDelete, "/invoices/:id", "/invoices/"+id.String(), NewInvoiceHandler(svc).Delete, nil, tenantID, uuid.New())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

type mockClientService struct{ mock.Mock }

func (m *mockClientService) one(args mock.Arguments) (*clientapp.ClientResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clientapp.ClientResponse), args.Error(1)
}

func (m *mockClientService) Create(ctx context.Context, tenantID, userID uuid.UUID, req clientapp.ClientRequest) (*clientapp.ClientResponse, error) {
	return m.one(m.Called(ctx, tenantID, userID, req))
}

func (m *mockClientService) Get(ctx context.Context, tenantID, id uuid.UUID) (*clientapp.ClientResponse, error) {
	return m.one(m.Called(ctx, tenantID, id))
}

func (m *mockClientService) List(ctx context.Context, tenantID uuid.UUID, filter clientapp.ListFilter) (*shared.Paginated[clientapp.ClientResponse], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[clientapp.ClientResponse]), args.Error(1)
}

func (m *mockClientService) Update(ctx context.Context, tenantID, id uuid.UUID, req clientapp.ClientRequest) (*clientapp.ClientResponse, error) {
	return m.one(m.Called(ctx, tenantID, id, req))
}

func (m *mockClientService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockClientService) EnablePortal(ctx context.Context, tenantID, id uuid.UUID) (*clientapp.PortalAccessResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clientapp.PortalAccessResponse), args.Error(1)
}

func (m *mockClientService) DisablePortal(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func TestClientHandler(t *testing.T) {
	tenantID, userID, id := uuid.New(), uuid.New(), uuid.New()

	t.Run("create with french phone", func(t *testing.T) {
		svc := new(mockClientService)
		svc.On("Create", mock.Anything, tenantID, userID, mock.MatchedBy(func(req clientapp.ClientRequest) bool {
			return req.Type == "INDIVIDUAL" && req.LastName == "Martin"
		})).Return(&clientapp.ClientResponse{ID: id, DisplayName: "Claire Martin"}, nil)

		w := perform(t, http.MethodPost, "/clients", "/clients", NewClientHandler(svc).Create,
			`{"type":"INDIVIDUAL","first_name":"Claire","last_name":"Martin","phone":"01 42 68 53 00"}`, tenantID, userID)

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("unknown type", func(t *testing.T) {
		svc := new(mockClientService)
		w := perform(t, http.MethodPost, "/clients", "/clients", NewClientHandler(svc).Create,
			`{"type":"ALIEN","last_name":"Martin"}`, tenantID, userID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("enable portal", func(t *testing.T) {
		svc := new(mockClientService)
		svc.On("EnablePortal", mock.Anything, tenantID, id).
			Return(&clientapp.PortalAccessResponse{ClientID: id, Token: "tok_abc"}, nil)

		w := perform(t, http.MethodPost, "/clients/:id/portal", "/clients/"+id.String()+"/portal", NewClientHandler(svc).EnablePortal, nil, tenantID, userID)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "tok_abc", decode(t, w).Data.(map[string]any)["token"])
	})

	t.Run("delete client with invoices", func(t *testing.T) {
		svc := new(mockClientService)
		svc.On("Delete", mock.Anything, tenantID, id).Return(shared.NewDomainError("HAS_INVOICES", "Client has invoices"))

		w := perform(t, http.MethodDelete, "/clients/:id", "/clients/"+id.String(), NewClientHandler(svc).Delete, nil, tenantID, userID)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("disable portal", func(t *testing.T) {
		svc := new(mockClientService)
		svc.On("DisablePortal", mock.Anything, tenantID, id).Return(nil)

		w := perform(t, http.MethodDelete, "/clients/:id/portal", "/clients/"+id.String()+"/portal", NewClientHandler(svc).DisablePortal, nil, tenantID, userID)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
