package handler

import (
	"context"
	"errors"
	"net/http"

	"cryptopulse/internal/analysis"
	"cryptopulse/internal/auth"
	"cryptopulse/internal/domain"
	"cryptopulse/internal/provider"
	"cryptopulse/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// SnapshotReader serves raw market snapshots.
type SnapshotReader interface {
	GetMarkets(ctx context.Context, currency string, limit int) ([]domain.MarketCoin, error)
	GetCoinDetail(ctx context.Context, id string) (*domain.CoinDetail, error)
	GetExchangeRates(ctx context.Context, base string) ([]domain.ExchangeRate, error)
}

// Analyzer produces narrative analysis, falling back instead of failing.
type Analyzer interface {
	MarketSummary(ctx context.Context, currency, base string) analysis.Outcome
	CoinAnalysis(ctx context.Context, coinID string) analysis.Outcome
}

// Defaults fill in omitted query parameters.
type Defaults struct {
	Currency     string
	Base         string
	SummaryLimit int
}

type Handler struct {
	tracer    trace.Tracer
	snapshots SnapshotReader
	analyzer  Analyzer
	creds     auth.Credentials
	defaults  Defaults
}

func New(tracer trace.Tracer, snapshots SnapshotReader, analyzer Analyzer, creds auth.Credentials, defaults Defaults) *Handler {
	if defaults.Currency == "" {
		defaults.Currency = "usd"
	}
	if defaults.Base == "" {
		defaults.Base = "USD"
	}
	if defaults.SummaryLimit <= 0 {
		defaults.SummaryLimit = 6
	}
	return &Handler{
		tracer:    tracer,
		snapshots: snapshots,
		analyzer:  analyzer,
		creds:     creds,
		defaults:  defaults,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/markets", h.GetMarkets)
	api.GET("/coins/:id", h.GetCoin)
	api.GET("/rates", h.GetRates)
	api.GET("/analysis/market", h.GetMarketAnalysis)
	api.GET("/analysis/coins/:id", h.GetCoinAnalysis)
	api.POST("/login", h.Login)
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedCurrency), errors.Is(err, service.ErrInvalidLimit):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}
