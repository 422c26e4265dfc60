// Package mcpserver exposes the market narratives and exchange rates as MCP tools.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"cryptopulse/internal/analysis"
	"cryptopulse/internal/domain"
	"cryptopulse/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	serverName    = "cryptopulse"
	serverVersion = "1.0.0"
)

type Snapshots interface {
	GetExchangeRates(ctx context.Context, base string) ([]domain.ExchangeRate, error)
}

type Analyzer interface {
	MarketSummary(ctx context.Context, currency, base string) analysis.Outcome
	CoinAnalysis(ctx context.Context, coinID string) analysis.Outcome
}

type MarketSummaryInput struct {
	Currency string `json:"currency,omitempty" jsonschema:"quote currency code: inr, usd, eur, gbp, jpy or btc (default usd)"`
}

type CoinAnalysisInput struct {
	CoinID string `json:"coin_id" jsonschema:"CoinGecko coin id, for example bitcoin or ethereum"`
}

type ExchangeRatesInput struct {
	Base string `json:"base,omitempty" jsonschema:"base currency code, for example USD (default USD)"`
}

type AnalysisOutput struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
	Sentiment string   `json:"sentiment"`
	Fallback  bool     `json:"fallback" jsonschema:"true when upstream data was unavailable and the fixed fallback text was returned"`
}

type ExchangeRatesOutput struct {
	Base  string                `json:"base"`
	Rates []domain.ExchangeRate `json:"rates"`
}

type tools struct {
	tracer    trace.Tracer
	snapshots Snapshots
	analyzer  Analyzer
	currency  string
	base      string
}

// New builds the MCP server with the market_summary, coin_analysis and
// exchange_rates tools registered.
func New(tracer trace.Tracer, snapshots Snapshots, analyzer Analyzer, currency, base string) *mcp.Server {
	if currency == "" {
		currency = "usd"
	}
	if base == "" {
		base = "USD"
	}
	t := &tools{tracer: tracer, snapshots: snapshots, analyzer: analyzer, currency: currency, base: base}

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_summary",
		Description: "Summarise the top cryptocurrencies by market cap: a narrative, five key points and a bullish/bearish/neutral sentiment.",
	}, t.marketSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "coin_analysis",
		Description: "Analyse one cryptocurrency: 24h momentum, market-cap tier, supply utilisation and sentiment.",
	}, t.coinAnalysis)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "exchange_rates",
		Description: "Fiat exchange rates for USD, EUR, GBP, JPY, INR, CNY, CAD and AUD relative to a base currency.",
	}, t.exchangeRates)

	return server
}

func toOutput(out analysis.Outcome) AnalysisOutput {
	return AnalysisOutput{
		Summary:   out.Result.Summary,
		KeyPoints: out.Result.KeyPoints,
		Sentiment: string(out.Result.Sentiment),
		Fallback:  out.Fallback,
	}
}

func (t *tools) marketSummary(ctx context.Context, req *mcp.CallToolRequest, in MarketSummaryInput) (*mcp.CallToolResult, AnalysisOutput, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.market-summary")
	defer span.End()

	currency := in.Currency
	if strings.TrimSpace(currency) == "" {
		currency = t.currency
	}
	code, err := service.NormalizeCurrency(currency)
	if err != nil {
		return nil, AnalysisOutput{}, fmt.Errorf("%w (supported: %s)", err, strings.Join(domain.QuoteCodes(), ", "))
	}
	span.SetAttributes(attribute.String("currency", code))

	out := t.analyzer.MarketSummary(ctx, code, t.base)
	log.Debug().Str("tool", "market_summary").Str("currency", code).Bool("fallback", out.Fallback).Msg("tool call")
	return nil, toOutput(out), nil
}

func (t *tools) coinAnalysis(ctx context.Context, req *mcp.CallToolRequest, in CoinAnalysisInput) (*mcp.CallToolResult, AnalysisOutput, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.coin-analysis")
	defer span.End()

	id := strings.ToLower(strings.TrimSpace(in.CoinID))
	if id == "" {
		return nil, AnalysisOutput{}, fmt.Errorf("coin_id is required")
	}
	span.SetAttributes(attribute.String("coin_id", id))

	out := t.analyzer.CoinAnalysis(ctx, id)
	log.Debug().Str("tool", "coin_analysis").Str("coin", id).Bool("fallback", out.Fallback).Msg("tool call")
	return nil, toOutput(out), nil
}

func (t *tools) exchangeRates(ctx context.Context, req *mcp.CallToolRequest, in ExchangeRatesInput) (*mcp.CallToolResult, ExchangeRatesOutput, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.exchange-rates")
	defer span.End()

	base := in.Base
	if strings.TrimSpace(base) == "" {
		base = t.base
	}
	code, err := service.NormalizeBase(base)
	if err != nil {
		return nil, ExchangeRatesOutput{}, fmt.Errorf("%w (supported: %s)", err, strings.Join(domain.FiatCodes(), ", "))
	}
	span.SetAttributes(attribute.String("base", code))

	rates, err := t.snapshots.GetExchangeRates(ctx, code)
	if err != nil {
		span.RecordError(err)
		return nil, ExchangeRatesOutput{}, fmt.Errorf("fetch exchange rates: %w", err)
	}
	return nil, ExchangeRatesOutput{Base: code, Rates: rates}, nil
}
