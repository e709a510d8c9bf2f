package router

import (
	"github.com/gin-gonic/gin"
	"github.com/monartisan/backend/internal/interfaces/http/handler"
)

// Handlers holds every HTTP handler served under the versioned API
type Handlers struct {
	Auth         *handler.AuthHandler
	Artisan      *handler.ArtisanHandler
	User         *handler.UserHandler
	Client       *handler.ClientHandler
	Quote        *handler.QuoteHandler
	Invoice      *handler.InvoiceHandler
	Intervention *handler.InterventionHandler
	Supplier     *handler.SupplierHandler
	Review       *handler.ReviewHandler
	Notification *handler.NotificationHandler
	Portal       *handler.PortalHandler
	Webhook      *handler.PaymentWebhookHandler
	Accounting   *handler.AccountingHandler
	Dashboard    *handler.DashboardHandler
	DataExchange *handler.DataExchangeHandler
	System       *handler.SystemHandler
}

// Middlewares are the chains applied to each API surface
type Middlewares struct {
	// Public guards unauthenticated endpoints (login, public card)
	Public []gin.HandlerFunc
	// Protected authenticates artisan users and binds the tenant
	Protected []gin.HandlerFunc
	// Owner restricts account management to the OWNER role
	Owner gin.HandlerFunc
	// Portal authenticates end clients by their portal token
	Portal []gin.HandlerFunc
	// Admin guards platform administration
	Admin gin.HandlerFunc
}

func (m Middlewares) owner() []gin.HandlerFunc {
	if m.Owner == nil {
		return nil
	}
	return []gin.HandlerFunc{m.Owner}
}

func (m Middlewares) admin() []gin.HandlerFunc {
	if m.Admin == nil {
		return nil
	}
	return []gin.HandlerFunc{m.Admin}
}

func with(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	out = append(out, mw...)
	return append(out, h)
}

// RegisterAPI registers every domain group on r
func RegisterAPI(r *Router, h Handlers, mw Middlewares) {
	owner := mw.owner()

	// Identity
	authRoutes := NewDomainGroup("auth", "/auth").Use(mw.Public...)
	authRoutes.POST("/register", h.Auth.Register)
	authRoutes.POST("/login", h.Auth.Login)
	authRoutes.POST("/refresh", h.Auth.Refresh)

	sessionRoutes := NewDomainGroup("session", "/auth").Use(mw.Protected...)
	sessionRoutes.POST("/logout", h.Auth.Logout)
	sessionRoutes.GET("/me", h.Auth.Me)
	sessionRoutes.PUT("/password", h.Auth.ChangePassword)

	artisanRoutes := NewDomainGroup("artisan", "/artisan").Use(mw.Protected...)
	artisanRoutes.GET("", h.Artisan.GetProfile)
	artisanRoutes.PUT("", with(owner, h.Artisan.UpdateProfile)...)
	artisanRoutes.POST("/logo", with(owner, h.Artisan.UploadLogo)...)

	userRoutes := NewDomainGroup("users", "/users").Use(mw.Protected...).Use(owner...)
	userRoutes.POST("", h.User.Invite)
	userRoutes.GET("", h.User.List)
	userRoutes.POST("/:id/disable", h.User.Disable)
	userRoutes.POST("/:id/enable", h.User.Enable)

	// Clients
	clientRoutes := NewDomainGroup("clients", "/clients").Use(mw.Protected...)
	clientRoutes.POST("", h.Client.Create)
	clientRoutes.GET("", h.Client.List)
	clientRoutes.GET("/:id", h.Client.Get)
	clientRoutes.PUT("/:id", h.Client.Update)
	clientRoutes.DELETE("/:id", h.Client.Delete)
	clientRoutes.POST("/:id/portal", h.Client.EnablePortal)
	clientRoutes.DELETE("/:id/portal", h.Client.DisablePortal)

	// Quotes
	quoteRoutes := NewDomainGroup("quotes", "/quotes").Use(mw.Protected...)
	quoteRoutes.POST("", h.Quote.Create)
	quoteRoutes.GET("", h.Quote.List)
	quoteRoutes.GET("/:id", h.Quote.Get)
	quoteRoutes.PUT("/:id", h.Quote.Update)
	quoteRoutes.POST("/:id/send", h.Quote.Send)
	quoteRoutes.POST("/:id/accept", h.Quote.Accept)
	quoteRoutes.POST("/:id/reject", h.Quote.Reject)
	quoteRoutes.POST("/:id/cancel", h.Quote.Cancel)
	quoteRoutes.POST("/:id/convert", h.Quote.Convert)
	quoteRoutes.POST("/:id/duplicate", h.Quote.Duplicate)
	quoteRoutes.GET("/:id/pdf", h.Quote.PDF)

	// Invoices
	invoiceRoutes := NewDomainGroup("invoices", "/invoices").Use(mw.Protected...)
	invoiceRoutes.POST("", h.Invoice.Create)
	invoiceRoutes.GET("", h.Invoice.List)
	invoiceRoutes.GET("/:id", h.Invoice.Get)
	invoiceRoutes.PUT("/:id", h.Invoice.Update)
	invoiceRoutes.DELETE("/:id", h.Invoice.Delete)
	invoiceRoutes.POST("/:id/issue", h.Invoice.Issue)
	invoiceRoutes.POST("/:id/payments", h.Invoice.RecordPayment)
	invoiceRoutes.POST("/:id/cancel", h.Invoice.Cancel)
	invoiceRoutes.GET("/:id/pdf", h.Invoice.PDF)

	// Interventions
	interventionRoutes := NewDomainGroup("interventions", "/interventions").Use(mw.Protected...)
	interventionRoutes.POST("", h.Intervention.Schedule)
	interventionRoutes.GET("", h.Intervention.List)
	interventionRoutes.GET("/:id", h.Intervention.Get)
	interventionRoutes.POST("/:id/reschedule", h.Intervention.Reschedule)
	interventionRoutes.POST("/:id/start", h.Intervention.Start)
	interventionRoutes.POST("/:id/complete", h.Intervention.Complete)
	interventionRoutes.POST("/:id/cancel", h.Intervention.Cancel)

	agendaRoutes := NewDomainGroup("agenda", "/agenda").Use(mw.Protected...)
	agendaRoutes.GET("", h.Intervention.Agenda)

	// Suppliers and supplier orders
	supplierRoutes := NewDomainGroup("suppliers", "/suppliers").Use(mw.Protected...)
	supplierRoutes.POST("", h.Supplier.CreateSupplier)
	supplierRoutes.GET("", h.Supplier.ListSuppliers)
	supplierRoutes.GET("/:id", h.Supplier.GetSupplier)
	supplierRoutes.PUT("/:id", h.Supplier.UpdateSupplier)
	supplierRoutes.DELETE("/:id", h.Supplier.DeleteSupplier)

	orderRoutes := NewDomainGroup("supplier-orders", "/supplier-orders").Use(mw.Protected...)
	orderRoutes.POST("", h.Supplier.CreateOrder)
	orderRoutes.GET("", h.Supplier.ListOrders)
	orderRoutes.GET("/:id", h.Supplier.GetOrder)
	orderRoutes.PUT("/:id", h.Supplier.UpdateOrder)
	orderRoutes.POST("/:id/send", h.Supplier.SendOrder)
	orderRoutes.POST("/:id/confirm", h.Supplier.ConfirmOrder)
	orderRoutes.POST("/:id/receive", h.Supplier.ReceiveOrder)
	orderRoutes.POST("/:id/cancel", h.Supplier.CancelOrder)
	orderRoutes.GET("/:id/pdf", h.Supplier.OrderPDF)

	// Reviews
	reviewRoutes := NewDomainGroup("reviews", "/reviews").Use(mw.Protected...)
	reviewRoutes.GET("", h.Review.List)
	reviewRoutes.GET("/stats", h.Review.Stats)
	reviewRoutes.GET("/:id", h.Review.Get)
	reviewRoutes.POST("/:id/publish", h.Review.Publish)
	reviewRoutes.POST("/:id/hide", h.Review.Hide)
	reviewRoutes.POST("/:id/reply", h.Review.Reply)

	// Notifications
	notificationRoutes := NewDomainGroup("notifications", "/notifications").Use(mw.Protected...)
	notificationRoutes.POST("", h.Notification.Send)
	notificationRoutes.GET("", h.Notification.List)
	notificationRoutes.POST("/:id/read", h.Notification.MarkRead)

	// Accounting
	accountingRoutes := NewDomainGroup("accounting", "/accounting").Use(mw.Protected...)
	accountingRoutes.GET("/entries", h.Accounting.ListEntries)
	accountingRoutes.GET("/entries/:id", h.Accounting.GetEntry)
	accountingRoutes.POST("/entries", with(owner, h.Accounting.CreateEntry)...)
	accountingRoutes.POST("/entries/:id/reverse", with(owner, h.Accounting.ReverseEntry)...)
	accountingRoutes.GET("/trial-balance", h.Accounting.TrialBalance)

	dashboardRoutes := NewDomainGroup("dashboard", "/dashboard").Use(mw.Protected...)
	dashboardRoutes.GET("", h.Dashboard.Summary)

	// Import and export
	importRoutes := NewDomainGroup("import", "/import").Use(mw.Protected...)
	importRoutes.POST("/clients", h.DataExchange.ImportClients)
	importRoutes.GET("/runs", h.DataExchange.ListImportRuns)

	exportRoutes := NewDomainGroup("export", "/export").Use(mw.Protected...)
	exportRoutes.GET("/clients", h.DataExchange.ExportClients)
	exportRoutes.GET("/invoices", h.DataExchange.ExportInvoices)

	// Client portal, by header token or by link
	r.Register(portalGroup("portal", "/portal", h.Portal, mw.Portal))
	r.Register(portalGroup("portal-link", "/p/:token", h.Portal, mw.Portal))

	publicRoutes := NewDomainGroup("public", "/public").Use(mw.Public...)
	publicRoutes.GET("/artisans/:id", h.Artisan.PublicProfile)

	webhookRoutes := NewDomainGroup("webhooks", "/webhooks")
	webhookRoutes.POST("/payments/:provider", h.Webhook.HandlePaymentWebhook)

	adminRoutes := NewDomainGroup("admin", "/admin").Use(mw.admin()...)
	adminRoutes.POST("/artisans/:id/suspend", h.Artisan.Suspend)
	adminRoutes.POST("/artisans/:id/activate", h.Artisan.Activate)

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.System.GetSystemInfo)
	systemRoutes.GET("/ping", h.System.Ping)

	r.Register(authRoutes).
		Register(sessionRoutes).
		Register(artisanRoutes).
		Register(userRoutes).
		Register(clientRoutes).
		Register(quoteRoutes).
		Register(invoiceRoutes).
		Register(interventionRoutes).
		Register(agendaRoutes).
		Register(supplierRoutes).
		Register(orderRoutes).
		Register(reviewRoutes).
		Register(notificationRoutes).
		Register(accountingRoutes).
		Register(dashboardRoutes).
		Register(importRoutes).
		Register(exportRoutes).
		Register(publicRoutes).
		Register(webhookRoutes).
		Register(adminRoutes).
		Register(systemRoutes)
}

func portalGroup(name, prefix string, h *handler.PortalHandler, mw []gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup(name, prefix).Use(mw...)
	g.GET("", h.Overview)
	g.GET("/quotes", h.ListQuotes)
	g.GET("/quotes/:id", h.GetQuote)
	g.POST("/quotes/:id/accept", h.AcceptQuote)
	g.POST("/quotes/:id/reject", h.RejectQuote)
	g.GET("/quotes/:id/pdf", h.QuotePDF)
	g.GET("/invoices", h.ListInvoices)
	g.GET("/invoices/:id", h.GetInvoice)
	g.GET("/invoices/:id/pdf", h.InvoicePDF)
	g.GET("/interventions", h.ListInterventions)
	g.POST("/reviews", h.SubmitReview)
	return g
}

// RegisterHealthRoutes mounts the liveness and readiness checks on the engine root
func RegisterHealthRoutes(engine *gin.Engine, system *handler.SystemHandler) {
	engine.GET("/health", system.Health)
	engine.GET("/ready", system.Ready)
}
