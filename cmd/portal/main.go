package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/oncallchat/portal/pkg/api"
	"github.com/oncallchat/portal/pkg/apikeys"
	"github.com/oncallchat/portal/pkg/auth"
	"github.com/oncallchat/portal/pkg/backend"
	"github.com/oncallchat/portal/pkg/billing"
	"github.com/oncallchat/portal/pkg/chatbots"
	"github.com/oncallchat/portal/pkg/config"
	"github.com/oncallchat/portal/pkg/httputil"
	"github.com/oncallchat/portal/pkg/leads"
	"github.com/oncallchat/portal/pkg/middleware"
	"github.com/oncallchat/portal/pkg/notify"
	"github.com/oncallchat/portal/pkg/observability"
	"github.com/oncallchat/portal/pkg/orgs"
	"github.com/oncallchat/portal/pkg/storage"
)

// usageResetSchedule runs at midnight on the first of every month
const usageResetSchedule = "0 0 1 * *"

func main() {
	// Optional .env for local development; the real environment wins
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	db, err := storage.OpenPostgres(cfg.Database)
	if err != nil {
		logger.WithError(err).Error("failed to open database")
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.RunMigrations(context.Background(), db); err != nil {
		logger.WithError(err).Error("failed to run migrations")
		os.Exit(1)
	}

	redisClient, err := storage.OpenRedis(cfg.Redis)
	if err != nil {
		logger.WithError(err).Error("failed to open redis")
		os.Exit(1)
	}
	if redisClient == nil {
		logger.Warn("no redis configured, rate limiting disabled")
	}

	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	authService := auth.NewPostgresService(db)
	orgService := orgs.NewPostgresService(db)
	chatbotService := chatbots.NewPostgresService(db, orgService)
	keyService := apikeys.NewPostgresService(db)

	queue := notify.NewQueue(
		cfg.Notify.Workers,
		cfg.Notify.BufferSize,
		notify.NewRetryPolicy(notify.DefaultRetryConfig()),
		logger,
		notify.NewMetrics(registry),
	)
	queue.Start()

	slack := notify.NewSlackNotifier(cfg.Slack.SignupWebhookURL, cfg.Slack.LeadsWebhookURL, queue, logger)

	var intakeClient *leads.Client
	if cfg.LeadIntake.URL != "" {
		intakeClient = leads.NewClient(cfg.LeadIntake.URL, logger)
	} else {
		logger.Warn("no lead intake configured, captured leads stay local")
	}
	leadForwarder := notify.NewLeadForwarder(queue, intakeClient, slack, logger)

	var backendClient *backend.Client
	if cfg.Backend.URL != "" {
		opts := []backend.Option{}
		if cfg.Backend.APIKey != "" {
			opts = append(opts, backend.WithAPIKey(cfg.Backend.APIKey))
		}
		backendClient = backend.NewClient(cfg.Backend.URL, opts...)
	} else {
		logger.Warn("no backend configured, tenant provisioning disabled")
	}
	provisioner := notify.NewProvisioner(queue, backendClient, logger)

	var billingManager *billing.Manager
	var webhookHandler http.Handler
	if cfg.Stripe.Enabled() {
		stripeClient := billing.NewStripeClient(cfg.Stripe.SecretKey)
		prices := billing.PriceTable{
			Starter:    cfg.Stripe.PriceStarter,
			Pro:        cfg.Stripe.PricePro,
			Enterprise: cfg.Stripe.PriceEnterprise,
		}
		urls := billing.URLs{
			CheckoutSuccess: cfg.Stripe.CheckoutSuccessURL,
			CheckoutCancel:  cfg.Stripe.CheckoutCancelURL,
			PortalReturn:    cfg.Stripe.PortalReturnURL,
		}
		billingManager = billing.NewManager(stripeClient, orgService, prices, urls, logger)
		reconciler := billing.NewReconciler(orgService, stripeClient, prices, logger)
		webhookHandler = billing.NewWebhookHandler(cfg.Stripe.WebhookSecret, reconciler, metrics, logger)
	} else {
		logger.Warn("no stripe key configured, billing disabled")
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(usageResetSchedule, func() {
		reset, err := chatbotService.ResetMonthlyUsage()
		if err != nil {
			logger.WithError(err).Error("monthly usage reset failed")
			return
		}
		logger.WithField("chatbots", reset).Info("monthly usage counters reset")
	}); err != nil {
		logger.WithError(err).Error("failed to schedule usage reset")
		os.Exit(1)
	}
	if metrics != nil {
		scheduler.AddFunc("@every 1m", func() {
			metrics.UpdateDBStats(db)
			metrics.UpdateEntityCounts(context.Background(), db)
		})
	}
	scheduler.Start()

	router := mux.NewRouter()
	router.Use(httputil.RequestIDMiddleware)
	router.Use(httputil.LoggingMiddleware(logger))
	router.Use(httputil.RecoveryMiddleware(logger))
	router.Use(httputil.CORSMiddleware(cfg.Server.CORSOrigins))
	if metrics != nil {
		router.Use(observability.HTTPMetricsMiddleware(metrics))
	}

	session := middleware.NewSessionMiddleware(authService, orgService)
	rateLimit := middleware.NewOrgRateLimitMiddleware(redisClient, &middleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
		WindowDuration:    cfg.RateLimit.WindowDuration,
	}, logger)

	server := api.NewServer(api.Deps{
		Auth:        authService,
		Orgs:        orgService,
		Chatbots:    chatbotService,
		Keys:        keyService,
		Billing:     billingManager,
		Webhook:     webhookHandler,
		Slack:       slack,
		Provisioner: provisioner,
		Leads:       leadForwarder,
		Metrics:     metrics,
		Logger:      logger,
	})
	server.RegisterRoutes(router, session, rateLimit)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, redisClient))
	observability.RegisterMetricsEndpoint(healthMux, registry)
	healthServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return healthServer.Shutdown(ctx)
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		scheduler.Stop()
		queue.Close()
		return nil
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		if redisClient != nil {
			return redisClient.Close()
		}
		return nil
	})

	var group errgroup.Group
	group.Go(func() error {
		logger.WithField("addr", httpServer.Addr).Info("portal listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health endpoint listening")
		if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(shutdown.WaitForShutdown)

	if err := group.Wait(); err != nil {
		logger.WithError(err).Error("portal exited with error")
		os.Exit(1)
	}
}
