package domain

import (
	"math"
	"strings"
)

// MarketCoin is one row of the CoinGecko /coins/markets listing.
type MarketCoin struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             float64  `json:"current_price"`
	MarketCap                float64  `json:"market_cap"`
	MarketCapRank            int      `json:"market_cap_rank"`
	TotalVolume              float64  `json:"total_volume"`
	High24h                  float64  `json:"high_24h"`
	Low24h                   float64  `json:"low_24h"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	CirculatingSupply        float64  `json:"circulating_supply"`
	MaxSupply                *float64 `json:"max_supply"`
}

// Change24h returns the 24h percent change, NaN when the upstream value is missing.
func (c MarketCoin) Change24h() float64 {
	if c.PriceChangePercentage24h == nil {
		return math.NaN()
	}
	return *c.PriceChangePercentage24h
}

// Trend projects the listing row to the shape used by market analysis.
func (c MarketCoin) Trend() CoinTrend {
	return CoinTrend{
		Name:             c.Name,
		Price:            c.CurrentPrice,
		ChangePercent24h: c.Change24h(),
	}
}

// Trends projects a whole listing, preserving order.
func Trends(coins []MarketCoin) []CoinTrend {
	out := make([]CoinTrend, 0, len(coins))
	for _, c := range coins {
		out = append(out, c.Trend())
	}
	return out
}

// CoinTrend is one coin's snapshot used for aggregate analysis.
type CoinTrend struct {
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	ChangePercent24h float64 `json:"change_percent_24h"`
}

// CoinDetail is one coin's extended snapshot used for single-coin analysis.
// Nil pointers mark values the upstream did not report.
type CoinDetail struct {
	ID                    string             `json:"id"`
	Name                  string             `json:"name"`
	Symbol                string             `json:"symbol"`
	Image                 string             `json:"image,omitempty"`
	PriceChangePercent24h *float64           `json:"price_change_percent_24h"`
	MarketCapRank         int                `json:"market_cap_rank"`
	CirculatingSupply     float64            `json:"circulating_supply"`
	MaxSupply             *float64           `json:"max_supply"`
	CurrentPrice          map[string]float64 `json:"current_price,omitempty"`
	MarketCap             map[string]float64 `json:"market_cap,omitempty"`
	TotalVolume           map[string]float64 `json:"total_volume,omitempty"`
}

// PriceIn returns the current price quoted in currency (lower-case code).
func (d CoinDetail) PriceIn(currency string) (float64, bool) {
	v, ok := d.CurrentPrice[currency]
	return v, ok
}

// FilterCoins keeps the coins whose name or symbol contains query, ignoring
// case. An empty query returns the listing unchanged.
func FilterCoins(coins []MarketCoin, query string) []MarketCoin {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return coins
	}
	out := make([]MarketCoin, 0, len(coins))
	for _, c := range coins {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Symbol), q) {
			out = append(out, c)
		}
	}
	return out
}
