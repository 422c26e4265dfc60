package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cryptopulse/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const exchangeRateBaseURL = "https://api.exchangerate-api.com/v4"

// ExchangeRateProvider fetches fiat rates from the exchangerate-api.com v4 endpoint.
type ExchangeRateProvider struct {
	client *resty.Client
	tracer trace.Tracer
}

func NewExchangeRateProvider(tracer trace.Tracer, baseURL string) *ExchangeRateProvider {
	if baseURL == "" {
		baseURL = exchangeRateBaseURL
	}
	return &ExchangeRateProvider{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(30*time.Second).
			SetHeader("Accept", "application/json"),
		tracer: tracer,
	}
}

type latestRatesResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// FetchRates returns rates against base for the display currencies, in display order.
// Currencies the upstream omits are skipped.
func (p *ExchangeRateProvider) FetchRates(ctx context.Context, base string) ([]domain.ExchangeRate, error) {
	ctx, span := p.tracer.Start(ctx, "exchangerate.fetch-rates")
	defer span.End()

	base = strings.ToUpper(strings.TrimSpace(base))
	span.SetAttributes(attribute.String("base", base))
	if base == "" {
		return nil, fmt.Errorf("base currency is required")
	}

	var out latestRatesResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("base", base).
		SetResult(&out).
		Get("/latest/{base}")
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch rates for %s: %w", base, err)
	}
	if resp.IsError() {
		body := resp.String()
		if len(body) > 1024 {
			body = body[:1024]
		}
		apiErr := &APIError{Service: "exchangerate", StatusCode: resp.StatusCode(), Body: body}
		span.RecordError(apiErr)
		return nil, fmt.Errorf("fetch rates for %s: %w", base, apiErr)
	}

	rates := make([]domain.ExchangeRate, 0, len(domain.FiatCurrencies))
	for _, c := range domain.FiatCurrencies {
		rate, ok := out.Rates[c.Code]
		if !ok {
			continue
		}
		rates = append(rates, domain.ExchangeRate{
			Currency: c.Code,
			Rate:     rate,
			Name:     c.Name,
			Symbol:   c.Symbol,
		})
	}
	return rates, nil
}
