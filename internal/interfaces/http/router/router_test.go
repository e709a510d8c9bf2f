package router

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func reply(body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, body)
	}
}

func TestNewRouter(t *testing.T) {
	assert.Equal(t, "v1", NewRouter(gin.New()).apiVersion)
	assert.Equal(t, "v2", NewRouter(gin.New(), WithAPIVersion("v2")).apiVersion)
}

func TestRouter_SetupMountsGroupsUnderVersion(t *testing.T) {
	engine := gin.New()
	quotes := NewDomainGroup("quotes", "/quotes").
		GET("", reply("list")).
		POST("/:id/send", reply("sent"))
	suppliers := NewDomainGroup("suppliers", "/suppliers").
		PUT("/:id", reply("updated")).
		DELETE("/:id", reply("deleted"))

	NewRouter(engine, WithAPIVersion("v2")).Register(quotes).Register(suppliers).Setup()

	tests := []struct {
		method, target, body string
	}{
		{http.MethodGet, "/api/v2/quotes", "list"},
		{http.MethodPost, "/api/v2/quotes/42/send", "sent"},
		{http.MethodPut, "/api/v2/suppliers/7", "updated"},
		{http.MethodDelete, "/api/v2/suppliers/7", "deleted"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := serve(engine, tt.method, tt.target)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/quotes").Code)
}

func TestDomainGroup_MiddlewareAppliesToEveryRoute(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("clients", "/clients").GET("", reply("list"))
	g.Use(func(c *gin.Context) {
		c.Header("X-Tenant-Checked", "yes")
		c.Next()
	})
	g.GET("/:id", reply("one"))

	NewRouter(engine).Register(g).Setup()

	for _, target := range []string{"/api/v1/clients", "/api/v1/clients/1"} {
		w := serve(engine, http.MethodGet, target)
		assert.Equal(t, "yes", w.Header().Get("X-Tenant-Checked"), target)
	}
}

func TestDomainGroup_Routes(t *testing.T) {
	g := NewDomainGroup("invoices", "/invoices").
		GET("", reply("")).
		POST("/:id/payments", reply(""))

	assert.Equal(t, "invoices", g.Name())
	assert.Equal(t, "/invoices", g.Prefix())
	assert.Equal(t, []Route{
		{Method: http.MethodGet, Path: "/invoices"},
		{Method: http.MethodPost, Path: "/invoices/:id/payments"},
	}, g.Routes())
}
