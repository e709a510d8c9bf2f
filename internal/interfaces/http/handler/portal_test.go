package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	documentapp "github.com/monartisan/backend/internal/application/document"
	interventionapp "github.com/monartisan/backend/internal/application/intervention"
	invoiceapp "github.com/monartisan/backend/internal/application/invoice"
	"github.com/monartisan/backend/internal/application/portal"
	quoteapp "github.com/monartisan/backend/internal/application/quote"
	reviewapp "github.com/monartisan/backend/internal/application/review"
	"github.com/monartisan/backend/internal/domain/quote"
	"github.com/monartisan/backend/internal/domain/review"
	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/monartisan/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPortalService struct{ mock.Mock }

func (m *mockPortalService) Overview(ctx context.Context, sess *portal.Session) (*portal.Overview, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portal.Overview), args.Error(1)
}

func (m *mockPortalService) ListQuotes(ctx context.Context, sess *portal.Session, req portal.PageRequest) (*shared.Paginated[quoteapp.QuoteResponse], error) {
	args := m.Called(ctx, sess, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[quoteapp.QuoteResponse]), args.Error(1)
}

func (m *mockPortalService) GetQuote(ctx context.Context, sess *portal.Session, id uuid.UUID) (*quoteapp.QuoteResponse, error) {
	args := m.Called(ctx, sess, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quoteapp.QuoteResponse), args.Error(1)
}

func (m *mockPortalService) AcceptQuote(ctx context.Context, sess *portal.Session, id uuid.UUID) (*quoteapp.QuoteResponse, error) {
	args := m.Called(ctx, sess, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quoteapp.QuoteResponse), args.Error(1)
}

func (m *mockPortalService) RejectQuote(ctx context.Context, sess *portal.Session, id uuid.UUID, req portal.RejectRequest) (*quoteapp.QuoteResponse, error) {
	args := m.Called(ctx, sess, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quoteapp.QuoteResponse), args.Error(1)
}

func (m *mockPortalService) ListInvoices(ctx context.Context, sess *portal.Session, req portal.PageRequest) (*shared.Paginated[invoiceapp.InvoiceResponse], error) {
	args := m.Called(ctx, sess, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[invoiceapp.InvoiceResponse]), args.Error(1)
}

func (m *mockPortalService) GetInvoice(ctx context.Context, sess *portal.Session, id uuid.UUID) (*invoiceapp.InvoiceResponse, error) {
	args := m.Called(ctx, sess, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoiceapp.InvoiceResponse), args.Error(1)
}

func (m *mockPortalService) DownloadDocument(ctx context.Context, sess *portal.Session, kind documentapp.Kind, id uuid.UUID) (*documentapp.Link, error) {
	args := m.Called(ctx, sess, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.Link), args.Error(1)
}

func (m *mockPortalService) ListInterventions(ctx context.Context, sess *portal.Session, req portal.PageRequest) (*shared.Paginated[interventionapp.InterventionResponse], error) {
	args := m.Called(ctx, sess, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[interventionapp.InterventionResponse]), args.Error(1)
}

func (m *mockPortalService) SubmitReview(ctx context.Context, sess *portal.Session, req reviewapp.SubmitRequest) (*reviewapp.ReviewResponse, error) {
	args := m.Called(ctx, sess, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reviewapp.ReviewResponse), args.Error(1)
}

// servePortal runs one request with sess installed the way PortalAuth does
func servePortal(method, route, target string, h gin.HandlerFunc, sess *portal.Session, body string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, route, func(c *gin.Context) {
		if sess != nil {
			c.Set(middleware.PortalSessionKey, sess)
		}
		c.Next()
	}, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPortalHandler_RequiresSession(t *testing.T) {
	svc := new(mockPortalService)
	w := servePortal(http.MethodGet, "/portal", "/portal", NewPortalHandler(svc).Overview, nil, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_PORTAL_TOKEN", decode(t, w).Error.Code)
	svc.AssertNotCalled(t, "Overview", mock.Anything, mock.Anything)
}

func TestPortalHandler_Overview(t *testing.T) {
	sess := &portal.Session{}
	svc := new(mockPortalService)
	svc.On("Overview", mock.Anything, sess).Return(&portal.Overview{
		Client: portal.ClientProfile{ID: uuid.New(), DisplayName: "Mme Martin"},
	}, nil)

	w := servePortal(http.MethodGet, "/portal", "/portal", NewPortalHandler(svc).Overview, sess, "")

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, "Mme Martin", data["client"].(map[string]any)["display_name"])
}

func TestPortalHandler_Quotes(t *testing.T) {
	sess := &portal.Session{}
	id := uuid.New()

	t.Run("list pages", func(t *testing.T) {
		svc := new(mockPortalService)
		svc.On("ListQuotes", mock.Anything, sess, portal.PageRequest{Page: 2, PageSize: 10}).
			Return(&shared.Paginated[quoteapp.QuoteResponse]{Total: 12, Page: 2, PageSize: 10}, nil)

		w := servePortal(http.MethodGet, "/portal/quotes", "/portal/quotes?page=2&page_size=10", NewPortalHandler(svc).ListQuotes, sess, "")

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Empty(t, resp.Data)
		assert.Equal(t, 2, resp.Meta.TotalPages)
	})

	t.Run("accept", func(t *testing.T) {
		svc := new(mockPortalService)
		svc.On("AcceptQuote", mock.Anything, sess, id).Return(&quoteapp.QuoteResponse{ID: id, Status: quote.QuoteStatusAccepted}, nil)

		w := servePortal(http.MethodPost, "/portal/quotes/:id/accept", "/portal/quotes/"+id.String()+"/accept", NewPortalHandler(svc).AcceptQuote, sess, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ACCEPTED", decode(t, w).Data.(map[string]any)["status"])
	})

	t.Run("reject with reason", func(t *testing.T) {
		svc := new(mockPortalService)
		svc.On("RejectQuote", mock.Anything, sess, id, portal.RejectRequest{Reason: "Délai trop long"}).
			Return(&quoteapp.QuoteResponse{ID: id, Status: quote.QuoteStatusRejected}, nil)

		w := servePortal(http.MethodPost, "/portal/quotes/:id/reject", "/portal/quotes/"+id.String()+"/reject", NewPortalHandler(svc).RejectQuote, sess, `{"reason":"Délai trop long"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("quote of another client", func(t *testing.T) {
		svc := new(mockPortalService)
		svc.On("GetQuote", mock.Anything, sess, id).Return(nil, shared.ErrNotFound)

		w := servePortal(http.MethodGet, "/portal/quotes/:id", "/portal/quotes/"+id.String(), NewPortalHandler(svc).GetQuote, sess, "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("download", func(t *testing.T) {
		svc := new(mockPortalService)
		svc.On("DownloadDocument", mock.Anything, sess, documentapp.KindQuote, id).
			Return(&documentapp.Link{URL: "https://files.example/signed"}, nil)

		w := servePortal(http.MethodGet, "/portal/quotes/:id/pdf", "/portal/quotes/"+id.String()+"/pdf", NewPortalHandler(svc).QuotePDF, sess, "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://files.example/signed", decode(t, w).Data.(map[string]any)["url"])
	})
}

func TestPortalHandler_SubmitReview(t *testing.T) {
	sess := &portal.Session{}

	t.Run("created", func(t *testing.T) {
		svc := new(mockPortalService)
		svc.On("SubmitReview", mock.Anything, sess, mock.MatchedBy(func(req reviewapp.SubmitRequest) bool {
			return req.Rating == 5 && req.Comment == "Travail soigné"
		})).Return(&reviewapp.ReviewResponse{ID: uuid.New(), Rating: 5, Status: review.ReviewStatusPending}, nil)

		w := servePortal(http.MethodPost, "/portal/reviews", "/portal/reviews", NewPortalHandler(svc).SubmitReview, sess, `{"rating":5,"comment":"Travail soigné"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "PENDING", decode(t, w).Data.(map[string]any)["status"])
	})

	t.Run("rating out of range", func(t *testing.T) {
		svc := new(mockPortalService)

		w := servePortal(http.MethodPost, "/portal/reviews", "/portal/reviews", NewPortalHandler(svc).SubmitReview, sess, `{"rating":6}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "SubmitReview", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already reviewed", func(t *testing.T) {
		svc := new(mockPortalService)
		svc.On("SubmitReview", mock.Anything, sess, mock.Anything).
			Return(nil, shared.NewDomainError("ALREADY_REVIEWED", "This intervention was already reviewed"))

		w := servePortal(http.MethodPost, "/portal/reviews", "/portal/reviews", NewPortalHandler(svc).SubmitReview, sess, `{"rating":4}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
