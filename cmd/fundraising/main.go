package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/fundraising/internal/exchangerate"
	"github.com/richxcame/fundraising/internal/fundraising"
	"github.com/richxcame/fundraising/pkg/common"
	"github.com/richxcame/fundraising/pkg/config"
	"github.com/richxcame/fundraising/pkg/database"
	"github.com/richxcame/fundraising/pkg/health"
	"github.com/richxcame/fundraising/pkg/httpclient"
	"github.com/richxcame/fundraising/pkg/logger"
	"github.com/richxcame/fundraising/pkg/middleware"
	"github.com/richxcame/fundraising/pkg/redis"
	"github.com/richxcame/fundraising/pkg/resilience"
	"go.uber.org/zap"
)

const (
	serviceName = "fundraising"
	version     = "1.0.0"

	// fetchBackoff is the first pause between exchange rate API attempts.
	fetchBackoff = 200 * time.Millisecond
)

func main() {
	// Load configuration
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment, cfg.Server.ServiceName); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Server.Environment,
			Release:     serviceName + "@" + version,
		}); err != nil {
			logger.Warn("failed to initialize sentry", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	checks := map[string]func() error{
		"database": nil,
		"redis":    nil,
	}

	// Storage
	var (
		boxes  fundraising.BoxRepository
		events fundraising.EventRepository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err := database.Open(ctx, &cfg.Database)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer database.Close(db)

		if err := database.Migrate(db, fundraising.Migrations, fundraising.MigrationsDir); err != nil {
			logger.Fatal("failed to migrate database", zap.Error(err))
		}
		repo := fundraising.NewRepository(db)
		boxes, events = repo, repo
		checks["database"] = health.DatabaseChecker(db)
	default:
		logger.Warn("using in-memory storage; data is lost on restart")
		repo := fundraising.NewMemoryRepository()
		boxes, events = repo, repo
	}

	// Exchange rates
	source, err := rateSource(cfg)
	if err != nil {
		logger.Fatal("failed to configure exchange rate source", zap.Error(err))
	}
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()

		source = exchangerate.NewRedisSource(source, redisClient, cfg.ExchangeRate.RedisKeyPrefix, cfg.ExchangeRate.RefreshInterval)
		checks["redis"] = health.PingChecker(redisClient)
	}

	cache := exchangerate.NewCache(source, exchangerate.CacheConfig{
		BaseCurrency:    cfg.ExchangeRate.BaseCurrency,
		RefreshInterval: cfg.ExchangeRate.RefreshInterval,
		FetchTimeout:    refreshBudget(cfg.ExchangeRate),
	})
	converter := exchangerate.NewConverter(cache)
	checks["exchange_rates"] = health.ContextChecker(cache.Ready)

	// The first table is fetched lazily when warm-up fails.
	if err := cache.Refresh(ctx); err != nil {
		logger.Warn("initial exchange rate fetch failed", zap.Error(err))
	}

	policy, err := fundraising.NewCurrencyPolicy(cfg.Ledger.CurrencyPolicy, cache, cfg.Ledger.AllowedCurrencies)
	if err != nil {
		logger.Fatal("failed to configure currency policy", zap.Error(err))
	}

	// Services and handlers
	boxService := fundraising.NewBoxService(boxes, events, policy, converter, fundraising.BoxConfig{
		AllowForceUnregister: cfg.Ledger.AllowForceUnregister,
		KeepUnconvertible:    cfg.Ledger.KeepUnconvertible,
	})
	eventService := fundraising.NewEventService(events, policy)
	handler := fundraising.NewHandler(boxService, eventService)
	ratesHandler := exchangerate.NewHandler(cache, converter)

	router := newRouter(cfg)
	router.GET("/healthz", common.HealthCheckWithDeps(serviceName, version, checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	if cfg.Server.RequestTimeout > 0 {
		api.Use(middleware.RequestTimeout(time.Duration(cfg.Server.RequestTimeout) * time.Second))
	}
	handler.RegisterRoutes(api)
	ratesHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("fundraising service starting",
			zap.String("port", cfg.Server.Port),
			zap.String("storage", cfg.Database.Driver),
			zap.String("rate_source", cfg.ExchangeRate.Source),
			zap.String("currency_policy", cfg.Ledger.CurrencyPolicy),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down fundraising service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}

func newRouter(cfg *config.Config) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(serviceName))
	router.Use(middleware.SecurityHeaders())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitOrigins(cfg.Server.CORSOrigins)
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Correlation-ID"}
	router.Use(cors.New(corsConfig))

	if cfg.Sentry.DSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	return router
}

// rateSource builds the upstream rate source named by EXCHANGE_RATE_SOURCE
func rateSource(cfg *config.Config) (exchangerate.RateSource, error) {
	rc := cfg.ExchangeRate
	if rc.Source == "static" {
		raw, err := config.ParseRates(rc.StaticRates)
		if err != nil {
			return nil, err
		}
		static, err := exchangerate.NewStaticSource(rc.BaseCurrency, raw)
		if err != nil {
			return nil, err
		}
		return static, nil
	}

	breaker := resilience.NewCircuitBreaker(
		resilience.BreakerSettings("exchange-rate-api", rc.BreakerFailures, time.Duration(rc.BreakerTimeout)*time.Second),
		resilience.GracefulDegradation("exchange-rate-api"),
	)
	client := httpclient.NewClient(rc.BaseURL, rc.FetchTimeout).Apply(
		httpclient.WithRetryAttempts(rc.RetryAttempts, fetchBackoff),
		httpclient.WithBreaker(breaker),
	)
	return exchangerate.NewHTTPSource(client, rc.APIKey), nil
}

// refreshBudget bounds one cache refresh. FetchTimeout limits each HTTP
// attempt, so the refresh has room for every retry and the backoff between.
func refreshBudget(rc config.ExchangeRateConfig) time.Duration {
	if rc.Source == "static" {
		return rc.FetchTimeout
	}
	return httpclient.RetryAttemptsConfig(rc.RetryAttempts, fetchBackoff).Budget(rc.FetchTimeout)
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
