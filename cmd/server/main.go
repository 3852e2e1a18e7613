package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taa-signals/internal/bot"
	"taa-signals/internal/cache"
	"taa-signals/internal/catalog"
	"taa-signals/internal/config"
	"taa-signals/internal/db"
	"taa-signals/internal/handler"
	"taa-signals/internal/job"
	"taa-signals/internal/logging"
	"taa-signals/internal/provider"
	"taa-signals/internal/repository"
	"taa-signals/internal/service"
	"taa-signals/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	_ "taa-signals/docs"
)

var (
	loadEnvFunc          = godotenv.Load
	initLoggingFunc      = logging.Init
	loadConfigFunc       = config.Load
	initPostgresFunc     = db.InitPostgres
	closePostgresFunc    = db.Close
	initRedisFunc        = cache.InitRedis
	initTracerFunc       = tracing.InitTracer
	startTelegramBotFunc = bot.StartTelegramBot
	startSchedulerFunc   = func(s *job.Scheduler, ctx context.Context) { go s.Start(ctx) }
	newHandlerFunc       = handler.New
	newRouterFunc        = gin.Default
	setupSignalNotify    = signal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc  = func(srv *http.Server) error { return srv.ListenAndServe() }

	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           TAA Signals API
// @version         1.0
// @description     Trend-following tactical asset allocation signals and backtests.

// @host      localhost:8080
// @BasePath  /
func main() {
	_ = loadEnvFunc()

	logger := initLoggingFunc(os.Getenv("LOG_LEVEL"))
	defer func() { _ = logger.Sync() }()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := initPostgresFunc(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer closePostgresFunc()

	var store cache.Store
	if err := initRedisFunc(ctx, cfg.RedisURL); err != nil {
		logger.Warn("redis unavailable, caching disabled", zap.Error(err))
	} else if cache.Client != nil {
		store = cache.Client
	}

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{Enabled: cfg.TracingEnabled, Endpoint: cfg.OTLPEndpoint})
	if err != nil {
		logger.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("error shutting down tracer provider", zap.Error(err))
		}
	}()

	var pool repository.PgxPool
	if db.Pool != nil {
		pool = db.Pool
	}
	priceRepo := repository.NewPriceRepository(pool, tracer)
	prefRepo := repository.NewPreferenceRepository(pool, tracer)

	tiingo := provider.NewTiingoProvider(tracer, logger, cfg.TiingoAPIKeys, cfg.TiingoRatePerMin)
	yahoo := provider.NewYahooProvider(tracer, logger)
	etfCatalog := catalog.Default()

	signalService := service.NewSignalService(tracer, logger, tiingo, store, cfg.SignalCacheTTL, cfg.SignalWorkers)
	backtestService := service.NewBacktestService(tracer, logger, priceRepo, store, cfg.SignalCacheTTL, cfg.RiskFreeRate, cfg.SignalWorkers)
	prefService := service.NewPreferenceService(tracer, logger, prefRepo)
	etfService := service.NewETFService(tracer, etfCatalog, priceRepo)
	allocationService := service.NewAllocationService(tracer, logger, yahoo)
	ingestService := service.NewIngestService(tracer, logger, tiingo, priceRepo, cfg.IngestStartDate, cfg.SignalWorkers)

	telegram, err := startTelegramBotFunc(cfg.TelegramBotToken, logger, &bot.Commands{
		Signals:   signalService,
		Backtests: backtestService,
		Prefs:     prefService,
	})
	if err != nil {
		logger.Error("telegram bot disabled", zap.Error(err))
	}
	var notifier service.Notifier
	if telegram != nil && cfg.TelegramChatID != 0 {
		notifier = bot.NewTelegramNotifier(telegram, cfg.TelegramChatID, logger)
	}
	alertService := service.NewAlertService(tracer, logger, priceRepo, prefRepo, notifier)

	scheduler := job.NewScheduler(tracer, logger)
	ingestJob := job.NewIngestJob(tracer, logger, ingestService, etfService.Universe)
	alertJob := job.NewAlertJob(tracer, logger, alertService)
	if err := scheduler.Register("ingest", cfg.IngestCron, ingestJob.RunOnce); err != nil {
		logger.Fatal("failed to schedule ingestion", zap.Error(err))
	}
	if err := scheduler.Register("alerts", cfg.AlertCron, alertJob.RunOnce); err != nil {
		logger.Fatal("failed to schedule alerts", zap.Error(err))
	}
	startSchedulerFunc(scheduler, ctx)

	h := newHandlerFunc(tracer, logger, signalService, backtestService, prefService, etfService, allocationService)
	h.SetIngestRunner(ingestService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.ServiceName))
	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("addr", cfg.HTTPAddr))

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info("shutting down server")

	cancel()
	if telegram != nil {
		telegram.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
