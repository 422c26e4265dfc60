package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cryptopulse/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// ErrNotFound is returned when the upstream reports an unknown resource.
var ErrNotFound = errors.New("not found")

// APIError is a non-200 upstream response.
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Service, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// CoinGeckoProvider fetches market listings and coin details from the CoinGecko free API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewCoinGeckoProvider(tracer trace.Tracer, baseURL string) *CoinGeckoProvider {
	if baseURL == "" {
		baseURL = coingeckoBaseURL
	}
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

// FetchMarkets returns the top coins by market cap quoted in currency.
func (p *CoinGeckoProvider) FetchMarkets(ctx context.Context, currency string, perPage int) ([]domain.MarketCoin, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-markets")
	defer span.End()
	span.SetAttributes(attribute.String("currency", currency), attribute.Int("per_page", perPage))

	q := url.Values{}
	q.Set("vs_currency", strings.ToLower(currency))
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", "1")
	q.Set("sparkline", "false")
	q.Set("locale", "en")

	body, err := p.doRequest(ctx, p.baseURL+"/coins/markets?"+q.Encode())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch markets: %w", err)
	}

	var coins []domain.MarketCoin
	if err := json.Unmarshal(body, &coins); err != nil {
		return nil, fmt.Errorf("parse markets: %w", err)
	}
	return coins, nil
}

// FetchCoinDetail returns the extended snapshot for one CoinGecko id.
func (p *CoinGeckoProvider) FetchCoinDetail(ctx context.Context, id string) (*domain.CoinDetail, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-coin-detail")
	defer span.End()
	span.SetAttributes(attribute.String("coin_id", id))

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("coin id is required")
	}

	u := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&community_data=false&developer_data=false",
		p.baseURL, url.PathEscape(strings.ToLower(id)))

	body, err := p.doRequest(ctx, u)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch coin %s: %w", id, err)
	}

	// Response shape: {"id": "...", "market_cap_rank": 1, "image": {"large": "..."},
	//   "market_data": {"current_price": {"usd": 1}, "max_supply": null, ...}}
	var raw struct {
		ID            string  `json:"id"`
		Name          string  `json:"name"`
		Symbol        *string `json:"symbol"`
		MarketCapRank *int    `json:"market_cap_rank"`
		Image         struct {
			Large string `json:"large"`
		} `json:"image"`
		MarketData struct {
			CurrentPrice             map[string]float64 `json:"current_price"`
			MarketCap                map[string]float64 `json:"market_cap"`
			TotalVolume              map[string]float64 `json:"total_volume"`
			PriceChangePercentage24h *float64           `json:"price_change_percentage_24h"`
			CirculatingSupply        *float64           `json:"circulating_supply"`
			MaxSupply                *float64           `json:"max_supply"`
		} `json:"market_data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse coin %s: %w", id, err)
	}
	if raw.Symbol == nil {
		return nil, fmt.Errorf("parse coin %s: response has no symbol", id)
	}

	detail := &domain.CoinDetail{
		ID:                    raw.ID,
		Name:                  raw.Name,
		Symbol:                *raw.Symbol,
		Image:                 raw.Image.Large,
		PriceChangePercent24h: raw.MarketData.PriceChangePercentage24h,
		MaxSupply:             raw.MarketData.MaxSupply,
		CurrentPrice:          raw.MarketData.CurrentPrice,
		MarketCap:             raw.MarketData.MarketCap,
		TotalVolume:           raw.MarketData.TotalVolume,
	}
	if raw.MarketCapRank != nil {
		detail.MarketCapRank = *raw.MarketCapRank
	}
	if raw.MarketData.CirculatingSupply != nil {
		detail.CirculatingSupply = *raw.MarketData.CirculatingSupply
	}
	return detail, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &APIError{Service: "coingecko", StatusCode: resp.StatusCode, Body: string(body)}
	}

	return io.ReadAll(resp.Body)
}
