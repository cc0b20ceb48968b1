package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/leads-dashboard/internal/auth"
	"github.com/octobees/leads-dashboard/internal/config"
	"github.com/octobees/leads-dashboard/internal/database"
	"github.com/octobees/leads-dashboard/internal/handler"
	"github.com/octobees/leads-dashboard/internal/logger"
	middlewarepkg "github.com/octobees/leads-dashboard/internal/middleware"
	"github.com/octobees/leads-dashboard/internal/provider"
	"github.com/octobees/leads-dashboard/internal/repository"
	"github.com/octobees/leads-dashboard/internal/router"
	"github.com/octobees/leads-dashboard/internal/service"
)

const serviceName = "leads-dashboard"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	storeOpts := []repository.StoreOption{repository.WithLogger(zlog.Named("store"))}
	var usersRepo repository.UsersRepository = repository.NewMemoryUsersRepository()
	var records *repository.PGXRecordRepository

	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, database.PoolConfig{URL: cfg.DatabaseURL, MaxConns: cfg.DatabaseMaxConns})
		if err != nil {
			zlog.Fatal("failed to connect database", zap.Error(err))
		}
		defer pool.Close()

		records = repository.NewPGXRecordRepository(pool)
		if err := records.EnsureSchema(ctx); err != nil {
			zlog.Fatal("failed to prepare record schema", zap.Error(err))
		}
		pgUsers := repository.NewPGXUsersRepository(pool)
		if err := pgUsers.EnsureSchema(ctx); err != nil {
			zlog.Fatal("failed to prepare users schema", zap.Error(err))
		}
		usersRepo = pgUsers
		storeOpts = append(storeOpts, repository.WithRecordSink(records))
	} else {
		zlog.Info("DATABASE_URL not set, keeping data in memory only")
	}

	store := repository.NewStore(storeOpts...)
	if records != nil {
		if err := store.Restore(ctx, records); err != nil {
			zlog.Fatal("failed to restore records", zap.Error(err))
		}
	}

	dataProvider, err := buildProvider(context.Background(), cfg)
	if err != nil {
		zlog.Fatal("failed to build data provider", zap.Error(err))
	}

	var normalizerOpts []service.NormalizerOption
	if cfg.VerifyContactChannels {
		normalizerOpts = append(normalizerOpts,
			service.WithSystemMXResolver(),
			service.WithLinkChecker(&http.Client{Timeout: cfg.LinkCheckTimeout}),
		)
		zlog.Info("contact channel verification enabled", zap.Duration("link_timeout", cfg.LinkCheckTimeout))
	}
	normalizer := service.NewContactNormalizer(cfg.PhoneRegion, normalizerOpts...)

	emailOpts := []service.EmailOption{
		service.WithSenderName(cfg.SenderName),
		service.WithEmailLogger(zlog.Named("email")),
	}
	if cfg.GeminiAPIKey != "" {
		rewriter, err := provider.NewGeminiRewriter(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			zlog.Fatal("failed to create gemini rewriter", zap.Error(err))
		}
		defer rewriter.Close()
		emailOpts = append(emailOpts, service.WithRewriter(rewriter))
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	authService := service.NewAuthService(usersRepo, jwtManager)
	leadsService := service.NewLeadsService(store, dataProvider,
		service.WithNormalizer(normalizer),
		service.WithLeadsLogger(zlog.Named("leads")),
	)
	companiesService := service.NewCompaniesService(store, normalizer)
	emailService := service.NewEmailService(store, emailOpts...)
	analyticsService := service.NewAnalyticsService(store, leadsService.ProviderName())
	zlog.Info("data provider configured", zap.String("provider", leadsService.ProviderName()))

	if cfg.AdminPassword != "" {
		created, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			zlog.Fatal("failed to seed admin user", zap.Error(err))
		}
		if created {
			zlog.Info("admin user created", zap.String("email", cfg.AdminEmail))
		}
	} else if cfg.AuthEnabled {
		zlog.Warn("AUTH_ENABLED is set but ADMIN_PASSWORD is empty, no admin account was seeded")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(zlog.Named("http")))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Leads:       handler.NewLeadsHandler(leadsService),
		Scrape:      handler.NewScrapeHandler(leadsService),
		Enrich:      handler.NewEnrichHandler(leadsService),
		Companies:   handler.NewCompaniesHandler(companiesService),
		AdminUpload: handler.NewAdminUploadHandler(companiesService),
		Email:       handler.NewEmailHandler(emailService),
		Analytics:   handler.NewAnalyticsHandler(analyticsService),
	})

	serverErr := make(chan error, 1)
	go func() {
		zlog.Info("http server listening", zap.String("port", cfg.Port))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		zlog.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildProvider(ctx context.Context, cfg *config.Config) (provider.DataProvider, error) {
	switch cfg.DataProvider {
	case config.ProviderWorker:
		client, err := provider.NewWorkerClient(ctx, nil, cfg.WorkerBaseURL)
		if err != nil {
			return nil, err
		}
		return provider.NewWorkerProvider(client), nil
	default:
		opts := []provider.MockOption{provider.WithLatency(cfg.SimulatedLatency)}
		if cfg.MockSeed != 0 {
			opts = append(opts, provider.WithSeed(cfg.MockSeed))
		}
		return provider.NewMockProvider(opts...), nil
	}
}
