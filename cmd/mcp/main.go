package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"strconv"
	"syscall"
	"time"

	"cryptopulse/internal/analysis"
	"cryptopulse/internal/cache"
	"cryptopulse/internal/config"
	"cryptopulse/internal/logging"
	"cryptopulse/internal/mcpserver"
	"cryptopulse/internal/provider"
	"cryptopulse/internal/service"
	"cryptopulse/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
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
	runStdioFunc = func(ctx context.Context, server *mcp.Server) error {
		return server.Run(ctx, &mcp.StdioTransport{})
	}
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()
	// stdout carries the protocol; logs go to stderr
	setupLoggingFunc(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, "cryptopulse-mcp")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

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

	markets := newCoinGeckoProviderFunc(tracer, cfg.CoinGeckoBaseURL)
	rates := newExchangeRateProviderFunc(tracer, cfg.ExchangeRateBaseURL)
	snapshots := service.NewSnapshotService(tracer, markets, rates, redisClient)
	generator := analysis.NewGenerator(tracer, snapshots, snapshots, cfg.SummaryCoinLimit)
	server := mcpserver.New(tracer, snapshots, generator, cfg.DefaultCurrency, cfg.BaseCurrency)

	if cfg.MCPTransport == "http" {
		serveHTTP(cfg, server)
		return
	}

	log.Info().Msg("MCP server running on stdio")
	if err := runStdioFunc(ctx, server); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("MCP stdio session ended")
	}
}

func serveHTTP(cfg *config.Config, server *mcp.Server) {
	addr := net.JoinHostPort(cfg.MCPHTTPBind, strconv.Itoa(cfg.MCPHTTPPort))
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Info().Str("addr", addr).Msg("MCP streamable HTTP server listening on /mcp")
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info().Msg("shutting down MCP server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Error().Err(err).Msg("MCP server forced to shutdown")
	}
}
