package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptopulse/internal/analysis"
	"cryptopulse/internal/auth"
	"cryptopulse/internal/bot"
	"cryptopulse/internal/cache"
	"cryptopulse/internal/config"
	"cryptopulse/internal/handler"
	"cryptopulse/internal/job"
	"cryptopulse/internal/logging"
	"cryptopulse/internal/provider"
	"cryptopulse/internal/service"
	"cryptopulse/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "cryptopulse/docs"
)

var (
	loadEnvFunc              = godotenv.Load
	loadConfigFunc           = config.Load
	setupLoggingFunc         = logging.Setup
	connectRedisFunc         = cache.Connect
	initTracerFunc           = tracing.InitTracer
	newCoinGeckoProviderFunc = func(tracer trace.Tracer, baseURL string) service.MarketProvider {
		return provider.NewCoinGeckoProvider(tracer, baseURL)
	}
	newExchangeRateProviderFunc = func(tracer trace.Tracer, baseURL string) service.RateProvider {
		return provider.NewExchangeRateProvider(tracer, baseURL)
	}
	newSnapshotServiceFunc = service.NewSnapshotService
	newGeneratorFunc       = analysis.NewGenerator
	newSnapshotPollerFunc  = job.NewSnapshotPoller
	startPollerFunc        = func(p *job.SnapshotPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.New
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           CryptoPulse API
// @version         1.0
// @description     Cryptocurrency prices, exchange rates and rule-based market narratives.

// @host      localhost:8080
// @BasePath  /
func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()
	setupLoggingFunc(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, "cryptopulse-server")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	// Redis is optional; without it every read goes upstream
	var redisClient service.RedisClient
	if cfg.CacheEnabled {
		client, err := connectRedisFunc(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, snapshot cache disabled")
		} else {
			redisClient = client
			defer client.Close()
		}
	}

	// Providers, snapshot service and narrative generator
	markets := newCoinGeckoProviderFunc(tracer, cfg.CoinGeckoBaseURL)
	rates := newExchangeRateProviderFunc(tracer, cfg.ExchangeRateBaseURL)
	snapshots := newSnapshotServiceFunc(tracer, markets, rates, redisClient)
	generator := newGeneratorFunc(tracer, snapshots, snapshots, cfg.SummaryCoinLimit)

	// Keep the cache warm (background goroutines, stopped by ctx cancel)
	poller := newSnapshotPollerFunc(tracer, snapshots, job.PollerConfig{
		Currency:          cfg.DefaultCurrency,
		Base:              cfg.BaseCurrency,
		SummaryLimit:      cfg.SummaryCoinLimit,
		DashboardLimit:    cfg.DashboardCoinLimit,
		PollSecs:          cfg.PollSecs,
		DashboardPollSecs: cfg.DashboardPollSecs,
	})
	startPollerFunc(poller, ctx)

	// Start Telegram bot
	cmds := bot.NewCommands(snapshots, generator, cfg.DefaultCurrency, cfg.BaseCurrency, cfg.SummaryCoinLimit)
	if err := startTelegramBotFunc(ctx, cfg.TelegramBotToken, cmds); err != nil {
		log.Error().Err(err).Msg("telegram bot disabled")
	}

	// Create handlers and routes
	h := newHandlerFunc(tracer, snapshots, generator, auth.New(cfg.DemoEmail, cfg.DemoPassword), handler.Defaults{
		Currency:     cfg.DefaultCurrency,
		Base:         cfg.BaseCurrency,
		SummaryLimit: cfg.SummaryCoinLimit,
	})

	r := newRouterFunc()
	r.Use(gin.Recovery(), handler.RequestLogger())
	r.Use(otelgin.Middleware("cryptopulse"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info().Msg("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting")
}
