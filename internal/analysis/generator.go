package analysis

import (
	"context"
	"fmt"

	"cryptopulse/internal/domain"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MarketSource supplies coin listings and single-coin details.
type MarketSource interface {
	GetMarkets(ctx context.Context, currency string, limit int) ([]domain.MarketCoin, error)
	GetCoinDetail(ctx context.Context, id string) (*domain.CoinDetail, error)
}

// RateSource supplies currency exchange rates.
type RateSource interface {
	GetExchangeRates(ctx context.Context, base string) ([]domain.ExchangeRate, error)
}

// Outcome is either a generated result or the designated fallback. Err holds
// the cause when Fallback is set; callers never need to handle it to stay
// correct.
type Outcome struct {
	Result   domain.AnalysisResult `json:"result"`
	Fallback bool                  `json:"fallback"`
	Err      error                 `json:"-"`
}

// Generator fetches fresh snapshots and runs the narrative generators on them.
// It holds no state between calls.
type Generator struct {
	tracer    trace.Tracer
	markets   MarketSource
	rates     RateSource
	coinLimit int
}

func NewGenerator(tracer trace.Tracer, markets MarketSource, rates RateSource, coinLimit int) *Generator {
	if coinLimit <= 0 {
		coinLimit = 6
	}
	return &Generator{tracer: tracer, markets: markets, rates: rates, coinLimit: coinLimit}
}

// MarketSummary summarises the top coins quoted in currency. Rates for base
// are fetched as supporting context; a failure fetching either yields the
// fallback.
func (g *Generator) MarketSummary(ctx context.Context, currency, base string) (out Outcome) {
	ctx, span := g.tracer.Start(ctx, "analysis.market-summary")
	defer span.End()
	span.SetAttributes(attribute.String("currency", currency), attribute.String("base", base))

	defer func() {
		if r := recover(); r != nil {
			out = fallbackOutcome(MarketFallback(), fmt.Errorf("market summary panic: %v", r))
		}
		if out.Fallback {
			span.RecordError(out.Err)
			log.Warn().Err(out.Err).Str("currency", currency).Msg("serving market summary fallback")
		}
	}()

	coins, err := g.markets.GetMarkets(ctx, currency, g.coinLimit)
	if err != nil {
		return fallbackOutcome(MarketFallback(), fmt.Errorf("fetch markets: %w", err))
	}
	if _, err := g.rates.GetExchangeRates(ctx, base); err != nil {
		return fallbackOutcome(MarketFallback(), fmt.Errorf("fetch exchange rates: %w", err))
	}

	result, err := MarketSummary(domain.Trends(coins))
	if err != nil {
		return fallbackOutcome(MarketFallback(), err)
	}
	span.SetAttributes(attribute.String("sentiment", string(result.Sentiment)))
	return Outcome{Result: result}
}

// CoinAnalysis analyses a single coin by CoinGecko id.
func (g *Generator) CoinAnalysis(ctx context.Context, coinID string) (out Outcome) {
	ctx, span := g.tracer.Start(ctx, "analysis.coin-analysis")
	defer span.End()
	span.SetAttributes(attribute.String("coin_id", coinID))

	defer func() {
		if r := recover(); r != nil {
			out = fallbackOutcome(CoinFallback(), fmt.Errorf("coin analysis panic: %v", r))
		}
		if out.Fallback {
			span.RecordError(out.Err)
			log.Warn().Err(out.Err).Str("coin", coinID).Msg("serving coin analysis fallback")
		}
	}()

	coin, err := g.markets.GetCoinDetail(ctx, coinID)
	if err != nil {
		return fallbackOutcome(CoinFallback(), fmt.Errorf("fetch coin %s: %w", coinID, err))
	}
	if coin == nil {
		return fallbackOutcome(CoinFallback(), fmt.Errorf("coin %s: %w", coinID, ErrMalformedCoin))
	}

	result, err := CoinAnalysis(*coin)
	if err != nil {
		return fallbackOutcome(CoinFallback(), err)
	}
	span.SetAttributes(attribute.String("sentiment", string(result.Sentiment)))
	return Outcome{Result: result}
}

func fallbackOutcome(result domain.AnalysisResult, err error) Outcome {
	return Outcome{Result: result, Fallback: true, Err: err}
}
