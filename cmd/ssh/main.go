package main

import (
	"context"
	"net"
	"os"
	ossignal "os/signal"
	"strconv"
	"syscall"
	"time"

	"cryptopulse/internal/analysis"
	"cryptopulse/internal/auth"
	"cryptopulse/internal/cache"
	"cryptopulse/internal/config"
	"cryptopulse/internal/logging"
	"cryptopulse/internal/provider"
	"cryptopulse/internal/service"
	"cryptopulse/internal/tui"
	"cryptopulse/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	wishlogging "github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
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
	newSnapshotServiceFunc = service.NewSnapshotService
	newGeneratorFunc       = analysis.NewGenerator
	newWishServerFunc      = wish.NewServer
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
)

// passwordHandler accepts the demo credential, with the SSH user as the email.
func passwordHandler(creds auth.Credentials) ssh.PasswordHandler {
	return func(ctx ssh.Context, password string) bool {
		return checkLogin(creds, ctx.User(), password, ctx.RemoteAddr().String())
	}
}

func checkLogin(creds auth.Credentials, user, password, remote string) bool {
	if !creds.Check(user, password) {
		log.Warn().Str("user", user).Str("remote", remote).Msg("SSH auth denied")
		return false
	}
	log.Info().Str("user", user).Str("remote", remote).Msg("SSH auth accepted")
	return true
}

// teaHandler builds one dashboard per session.
func teaHandler(svc tui.Services) bubbletea.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		sessionSvc := svc
		sessionSvc.Username = s.User()

		model := tui.NewModel(sessionSvc)
		pty, _, _ := s.Pty()
		model.SetSize(pty.Window.Width, pty.Window.Height)

		return model, []tea.ProgramOption{tea.WithAltScreen()}
	}
}

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()
	setupLoggingFunc(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, "cryptopulse-ssh")
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
	snapshots := newSnapshotServiceFunc(tracer, markets, rates, redisClient)
	generator := newGeneratorFunc(tracer, snapshots, snapshots, cfg.SummaryCoinLimit)

	svc := tui.Services{
		Snapshots:      snapshots,
		Analyzer:       generator,
		Currency:       cfg.DefaultCurrency,
		Base:           cfg.BaseCurrency,
		SummaryLimit:   cfg.SummaryCoinLimit,
		DashboardLimit: cfg.DashboardCoinLimit,
		Refresh:        time.Duration(cfg.PollSecs) * time.Second,
	}

	// Build Wish SSH server
	addr := net.JoinHostPort(cfg.SSHHost, strconv.Itoa(cfg.SSHPort))

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPasswordAuth(passwordHandler(auth.New(cfg.DemoEmail, cfg.DemoPassword))),
		wish.WithMiddleware(
			bubbletea.Middleware(teaHandler(svc)),
			wishlogging.Middleware(),
		),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create SSH server")
	}

	if srv != nil {
		go func() {
			log.Info().Str("addr", addr).Str("login", cfg.DemoEmail).Msg("SSH dashboard listening")
			if err := srv.ListenAndServe(); err != nil && err != ssh.ErrServerClosed {
				log.Error().Err(err).Msg("SSH server stopped")
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info().Msg("shutting down SSH server")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("SSH server shutdown error")
		}
	}

	log.Info().Msg("SSH server exited")
}
