package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/medsupply/cotizaciones-api/api/middleware"
	"github.com/medsupply/cotizaciones-api/api/routes"
	"github.com/medsupply/cotizaciones-api/internal/auth"
	"github.com/medsupply/cotizaciones-api/internal/catalog"
	"github.com/medsupply/cotizaciones-api/internal/clients"
	"github.com/medsupply/cotizaciones-api/internal/quotations"
	"github.com/medsupply/cotizaciones-api/internal/reports"
	"github.com/medsupply/cotizaciones-api/internal/shipments"
	"github.com/medsupply/cotizaciones-api/internal/users"
	"github.com/medsupply/cotizaciones-api/pkg/config"
	"github.com/medsupply/cotizaciones-api/pkg/db"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
	"github.com/medsupply/cotizaciones-api/pkg/metrics"
	"github.com/medsupply/cotizaciones-api/pkg/migrate"
	"github.com/medsupply/cotizaciones-api/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	startedAt := time.Now()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		return 1
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.LogFormat == "console",
	})

	// Amounts are numbers on the wire, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		return 1
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		_ = dbClient.Close()
		return 1
	}

	var (
		redisClient      *redis.Client
		rateLimitStore   middleware.RateLimitStore
		idempotencyStore redis.IdempotencyStore
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			_ = dbClient.Close()
			return 1
		}
		rateLimitStore = redisClient
		idempotencyStore = redisClient
	} else {
		logg.Warn(ctx, "redis disabled: login rate limiting and idempotency keys are off")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	deps, err := buildDeps(cfg, logg, dbClient, appMetrics)
	if err != nil {
		logg.Error(ctx, "failed to wire services", err)
		_ = dbClient.Close()
		return 1
	}
	deps.RateLimitStore = rateLimitStore
	deps.IdempotencyStore = idempotencyStore
	deps.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	deps.StartedAt = startedAt

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": dbClient.Dialect(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	closeErr := server.Shutdown(shutdownCtx)
	if redisClient != nil {
		closeErr = multierr.Append(closeErr, redisClient.Close())
	}
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(serverCtx, "error during shutdown", closeErr)
		exitCode = 1
	}
	logg.Info(serverCtx, "api server stopped")
	return exitCode
}

func buildDeps(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, appMetrics *metrics.Metrics) (routes.Deps, error) {
	gormDB := dbClient.DB()

	userRepo := users.NewRepository(gormDB)
	userService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		return routes.Deps{}, err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		JWTConfig: cfg.JWT,
		Logger:    logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	clientService, err := clients.NewService(clients.NewRepository(gormDB))
	if err != nil {
		return routes.Deps{}, err
	}

	catalogRepo := catalog.NewRepository(gormDB)
	productService, err := catalog.NewProductService(catalogRepo)
	if err != nil {
		return routes.Deps{}, err
	}
	categoryService, err := catalog.NewCategoryService(catalogRepo)
	if err != nil {
		return routes.Deps{}, err
	}

	quotationService, err := quotations.NewService(quotations.NewRepository(gormDB), dbClient, appMetrics, logg)
	if err != nil {
		return routes.Deps{}, err
	}
	shipmentService, err := shipments.NewService(shipments.NewRepository(gormDB), dbClient, appMetrics, logg)
	if err != nil {
		return routes.Deps{}, err
	}
	reportService, err := reports.NewService(reports.NewRepository(gormDB))
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		Metrics:    appMetrics,
		Auth:       authService,
		Users:      userService,
		Clients:    clientService,
		Products:   productService,
		Categories: categoryService,
		Quotations: quotationService,
		Renderer:   quotations.NewDocumentRenderer(cfg.Company),
		Shipments:  shipmentService,
		Reports:    reportService,
	}, nil
}
