package main

import (
	"context"
	"fmt"
	"time"

	accountingapp "github.com/monartisan/backend/internal/application/accounting"
	clientapp "github.com/monartisan/backend/internal/application/client"
	dashboardapp "github.com/monartisan/backend/internal/application/dashboard"
	dataexchangeapp "github.com/monartisan/backend/internal/application/dataexchange"
	documentapp "github.com/monartisan/backend/internal/application/document"
	identityapp "github.com/monartisan/backend/internal/application/identity"
	interventionapp "github.com/monartisan/backend/internal/application/intervention"
	invoiceapp "github.com/monartisan/backend/internal/application/invoice"
	notificationapp "github.com/monartisan/backend/internal/application/notification"
	"github.com/monartisan/backend/internal/application/numbering"
	paymentapp "github.com/monartisan/backend/internal/application/payment"
	portalapp "github.com/monartisan/backend/internal/application/portal"
	quoteapp "github.com/monartisan/backend/internal/application/quote"
	reviewapp "github.com/monartisan/backend/internal/application/review"
	supplierapp "github.com/monartisan/backend/internal/application/supplier"
	"github.com/monartisan/backend/internal/domain/notification"
	"github.com/monartisan/backend/internal/infrastructure/auth"
	"github.com/monartisan/backend/internal/infrastructure/cache"
	"github.com/monartisan/backend/internal/infrastructure/config"
	"github.com/monartisan/backend/internal/infrastructure/event"
	notificationinfra "github.com/monartisan/backend/internal/infrastructure/notification"
	"github.com/monartisan/backend/internal/infrastructure/persistence"
	"github.com/monartisan/backend/internal/infrastructure/persistence/tenant"
	"github.com/monartisan/backend/internal/infrastructure/printing"
	"github.com/monartisan/backend/internal/infrastructure/scheduler"
	"github.com/monartisan/backend/internal/infrastructure/storage"
	"github.com/monartisan/backend/internal/infrastructure/telemetry"
	"github.com/monartisan/backend/internal/interfaces/http/handler"
	"github.com/monartisan/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const notificationDedupTTL = 24 * time.Hour

// application holds the services shared by the HTTP layer and the
// background workers
type application struct {
	log *zap.Logger

	jwtService  *auth.JWTService
	revocations auth.RevocationStore
	bus         *event.InMemoryEventBus
	renderer    *printing.ChromedpRenderer
	scheduler   *scheduler.Scheduler
	trigger     *scheduler.Trigger

	authService         *identityapp.AuthService
	artisanService      *identityapp.ArtisanService
	userService         *identityapp.UserService
	clientService       *clientapp.Service
	quoteService        *quoteapp.Service
	invoiceService      *invoiceapp.Service
	interventionService *interventionapp.Service
	supplierService     *supplierapp.Service
	reviewService       *reviewapp.Service
	notificationService *notificationapp.Service
	portalService       *portalapp.Service
	webhookService      *paymentapp.WebhookService
	accountingService   *accountingapp.Service
	dashboardService    *dashboardapp.Service
	dataExchangeService *dataexchangeapp.Service
}

func buildApp(ctx context.Context, cfg *config.Config, db *persistence.Database, backends *cache.Backends, meter metric.Meter, log *zap.Logger) (*application, error) {
	app := &application{log: log}

	if err := tenant.EnableAutoTenantFilter(db.DB, false); err != nil {
		return nil, fmt.Errorf("register tenant filter: %w", err)
	}

	// Repositories
	artisanRepo := persistence.NewGormArtisanRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	quoteRepo := persistence.NewGormQuoteRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	interventionRepo := persistence.NewGormInterventionRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	orderRepo := persistence.NewGormSupplierOrderRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	journalRepo := persistence.NewGormJournalEntryRepository(db.DB)
	importRunRepo := persistence.NewGormImportRunRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Coordination
	app.bus = event.NewInMemoryEventBus(log, event.WithAsyncDispatch())
	app.jwtService = auth.NewJWTService(cfg.JWT)
	if backends.Client != nil {
		app.revocations = auth.NewRedisRevocationStore(backends.Client)
	} else {
		app.revocations = auth.NewMemoryRevocationStore()
	}
	sequencer := numbering.NewSequencer(artisanRepo, txManager, backends.Locker)

	// Documents
	objects, err := newObjectStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	templates, err := printing.NewTemplateEngine()
	if err != nil {
		return nil, fmt.Errorf("load document templates: %w", err)
	}
	app.renderer, err = printing.NewChromedpRenderer(printing.ConfigFromPDF(cfg.PDF, log))
	if err != nil {
		return nil, fmt.Errorf("create pdf renderer: %w", err)
	}
	documents := documentapp.NewService(artisanRepo, clientRepo, supplierRepo, templates, app.renderer, objects, cfg.Storage.PresignTTL, log)

	// Notifications
	var senders []notification.Sender
	if cfg.Notification.SMTPHost != "" {
		senders = append(senders, notificationinfra.NewSMTPSender(cfg.Notification))
	}
	if cfg.Notification.SMSEndpoint != "" {
		senders = append(senders, notificationinfra.NewHTTPSMSSender(cfg.Notification))
	}
	app.notificationService = notificationapp.NewService(notificationRepo, clientRepo, artisanRepo, senders, cfg.Portal.BaseURL, log)

	// Services
	app.authService = identityapp.NewAuthService(artisanRepo, userRepo, txManager, app.jwtService, app.revocations, app.bus, log)
	app.artisanService = identityapp.NewArtisanService(artisanRepo, documents, app.bus, log)
	app.userService = identityapp.NewUserService(userRepo, app.jwtService, app.revocations, app.bus, log)
	app.clientService = clientapp.NewService(clientRepo, invoiceRepo, app.bus, cfg.Portal.BaseURL, log)
	app.quoteService = quoteapp.NewService(quoteRepo, clientRepo, invoiceRepo, artisanRepo, sequencer, txManager, documents, app.bus, log)
	app.invoiceService = invoiceapp.NewService(invoiceRepo, clientRepo, artisanRepo, journalRepo, sequencer, txManager, documents, app.bus, log)
	app.interventionService = interventionapp.NewService(interventionRepo, clientRepo, quoteRepo, userRepo, backends.Locker, app.notificationService, app.bus, log)
	app.interventionService.SetReminderLead(cfg.Scheduler.ReminderLeadTime)
	app.supplierService = supplierapp.NewService(supplierRepo, orderRepo, interventionRepo, artisanRepo, journalRepo, sequencer, txManager, documents, app.bus, log)
	app.reviewService = reviewapp.NewService(reviewRepo, interventionRepo, app.bus, log)
	app.portalService = portalapp.NewService(clientRepo, artisanRepo, quoteRepo, invoiceRepo, interventionRepo,
		app.quoteService, app.invoiceService, app.reviewService, documents, log)
	app.webhookService = paymentapp.NewWebhookService(paymentapp.WebhookServiceConfig{
		Secret:         cfg.Payment.WebhookSecret,
		StripeSecret:   cfg.Payment.StripeWebhookSecret,
		Currency:       cfg.Payment.Currency,
		IdempotencyTTL: cfg.Payment.IdempotencyTTL,
		Invoices:       app.invoiceService,
		Store:          backends.Idempotency,
		Logger:         log,
	})
	app.accountingService = accountingapp.NewService(journalRepo, log)
	app.dashboardService = dashboardapp.NewService(invoiceRepo, quoteRepo, interventionRepo, reviewRepo, log)
	app.dataExchangeService = dataexchangeapp.NewService(clientRepo, invoiceRepo, importRunRepo, app.bus, log)

	// Event subscribers
	notifier := event.NewIdempotentHandler("notifications",
		notificationapp.NewEventHandler(app.notificationService),
		backends.Idempotency, notificationDedupTTL, log)
	app.bus.Subscribe(notifier, notifier.EventTypes()...)

	businessMetrics, err := telemetry.NewBusinessMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create business metrics: %w", err)
	}
	app.bus.Subscribe(businessMetrics, businessMetrics.EventTypes()...)

	if err := app.buildScheduler(cfg, backends, meter); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *application) buildScheduler(cfg *config.Config, backends *cache.Backends, meter metric.Meter) error {
	if !cfg.Scheduler.Enabled {
		return nil
	}

	schedCfg := scheduler.DefaultSchedulerConfig()
	if cfg.Scheduler.JobTimeout > 0 {
		schedCfg.JobTimeout = cfg.Scheduler.JobTimeout
	}
	a.scheduler = scheduler.NewScheduler(schedCfg, a.log)

	duration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "scheduler_job_duration_seconds",
		Description: "Duration of scheduled job runs",
		Unit:        "s",
	})
	if err != nil {
		return fmt.Errorf("create scheduler histogram: %w", err)
	}
	a.scheduler.SetDurationHistogram(duration)

	jobs := []scheduler.Job{
		{Name: scheduler.JobMarkOverdueInvoices, Interval: cfg.Scheduler.OverdueInterval, Run: a.invoiceService.MarkOverdue},
		{Name: scheduler.JobExpireQuotes, Interval: cfg.Scheduler.QuoteExpiryInterval, Run: a.quoteService.ExpireOverdue},
		{Name: scheduler.JobSendReminders, Interval: cfg.Scheduler.ReminderInterval, Run: a.interventionService.SendReminders},
		{Name: scheduler.JobRetryNotifications, Interval: cfg.Scheduler.NotificationRetryTick, Run: a.notificationService.RetryFailed},
	}
	for _, job := range jobs {
		if err := a.scheduler.Register(job); err != nil {
			return fmt.Errorf("register job %s: %w", job.Name, err)
		}
	}

	a.trigger = scheduler.NewTrigger(scheduler.DefaultTriggerConfig(), a.scheduler, backends.Locker, a.log)
	return nil
}

func (a *application) start(ctx context.Context) error {
	if err := a.bus.Start(ctx); err != nil {
		return err
	}
	if a.scheduler == nil {
		a.log.Info("Scheduler disabled")
		return nil
	}
	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}
	return a.trigger.Start(ctx)
}

func (a *application) stop(ctx context.Context) {
	if a.trigger != nil {
		if err := a.trigger.Stop(ctx); err != nil {
			a.log.Warn("Failed to stop scheduler trigger", zap.Error(err))
		}
		if err := a.scheduler.Stop(ctx); err != nil {
			a.log.Warn("Failed to stop scheduler", zap.Error(err))
		}
	}
	if err := a.bus.Stop(ctx); err != nil {
		a.log.Warn("Failed to drain event bus", zap.Error(err))
	}
	if err := a.renderer.Close(); err != nil {
		a.log.Warn("Failed to close pdf renderer", zap.Error(err))
	}
}

func (a *application) handlers(system *handler.SystemHandler) router.Handlers {
	return router.Handlers{
		Auth:         handler.NewAuthHandler(a.authService),
		Artisan:      handler.NewArtisanHandler(a.artisanService),
		User:         handler.NewUserHandler(a.userService),
		Client:       handler.NewClientHandler(a.clientService),
		Quote:        handler.NewQuoteHandler(a.quoteService),
		Invoice:      handler.NewInvoiceHandler(a.invoiceService),
		Intervention: handler.NewInterventionHandler(a.interventionService),
		Supplier:     handler.NewSupplierHandler(a.supplierService),
		Review:       handler.NewReviewHandler(a.reviewService),
		Notification: handler.NewNotificationHandler(a.notificationService),
		Portal:       handler.NewPortalHandler(a.portalService),
		Webhook:      handler.NewPaymentWebhookHandler(a.webhookService),
		Accounting:   handler.NewAccountingHandler(a.accountingService),
		Dashboard:    handler.NewDashboardHandler(a.dashboardService),
		DataExchange: handler.NewDataExchangeHandler(a.dataExchangeService),
		System:       system,
	}
}

// newObjectStorage uses S3 when a bucket is configured and keeps documents
// in memory otherwise
func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (documentapp.ObjectStorage, error) {
	if cfg.Storage.Bucket == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("storage bucket is required in production")
		}
		log.Warn("No storage bucket configured, documents are kept in memory")
		return storage.NewMemoryObjectStorage("http://localhost:" + cfg.App.Port + "/files"), nil
	}
	s3, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("create object storage: %w", err)
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure storage bucket: %w", err)
	}
	return s3, nil
}
