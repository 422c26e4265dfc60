package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"cryptopulse/internal/domain"
)

var (
	ErrNoCoins           = errors.New("no coins in snapshot")
	ErrMalformedSnapshot = errors.New("snapshot has non-numeric price changes")
)

const (
	MarketFallbackSummary  = "Unable to generate market summary at this time."
	MarketFallbackKeyPoint = "Market data analysis temporarily unavailable"

	currencyContextKeyPoint = "Currency markets stable with USD as base reference"
	noTopPerformer          = "N/A"
)

var marketClosing = map[domain.Sentiment]string{
	domain.SentimentBullish: "Strong upward momentum observed across major assets.",
	domain.SentimentBearish: "Market correction underway with significant selling pressure.",
	domain.SentimentNeutral: "Mixed signals with balanced buying and selling activity.",
}

// MarketFallback is the result served when a market summary cannot be built.
func MarketFallback() domain.AnalysisResult {
	return domain.AnalysisResult{
		Summary:   MarketFallbackSummary,
		KeyPoints: []string{MarketFallbackKeyPoint},
		Sentiment: domain.SentimentNeutral,
	}
}

// MarketSummary builds the market-level narrative. It returns ErrNoCoins for
// an empty snapshot and ErrMalformedSnapshot when the average change is not a
// finite number. The input slice is not modified.
func MarketSummary(coins []domain.CoinTrend) (domain.AnalysisResult, error) {
	total := len(coins)
	if total == 0 {
		return domain.AnalysisResult{}, ErrNoCoins
	}

	var positive, negative int
	var sum float64
	for _, c := range coins {
		switch {
		case c.ChangePercent24h > 0:
			positive++
		case c.ChangePercent24h < 0:
			negative++
		}
		sum += c.ChangePercent24h
	}
	avg := sum / float64(total)
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		return domain.AnalysisResult{}, fmt.Errorf("average change %v: %w", avg, ErrMalformedSnapshot)
	}

	sentiment := ClassifyMarket(avg)

	summary := fmt.Sprintf(
		"Current market shows %s sentiment with %d out of %d top cryptocurrencies gaining value. Average 24h change is %s%%. %s",
		sentiment, positive, total, fixed2(avg), marketClosing[sentiment],
	)

	keyPoints := []string{
		fmt.Sprintf("%d cryptocurrencies up, %d down", positive, negative),
		fmt.Sprintf("Average 24h change: %s%%", signedNonNegative(avg)),
		"Market sentiment: " + strings.ToUpper(string(sentiment)),
		"Top performer: " + topPerformer(coins),
		currencyContextKeyPoint,
	}

	return domain.AnalysisResult{Summary: summary, KeyPoints: keyPoints, Sentiment: sentiment}, nil
}

// SummarizeMarket is MarketSummary with the fallback applied on error.
func SummarizeMarket(coins []domain.CoinTrend) domain.AnalysisResult {
	result, err := MarketSummary(coins)
	if err != nil {
		return MarketFallback()
	}
	return result
}

// topPerformer returns the name of the coin with the highest change; the
// earliest coin wins ties.
func topPerformer(coins []domain.CoinTrend) string {
	best := -1
	for i, c := range coins {
		if math.IsNaN(c.ChangePercent24h) {
			continue
		}
		if best < 0 || c.ChangePercent24h > coins[best].ChangePercent24h {
			best = i
		}
	}
	if best < 0 || coins[best].Name == "" {
		return noTopPerformer
	}
	return coins[best].Name
}

// Aggregate computes dashboard totals over a listing. Coins without a
// reported change count as neither gainers nor losers.
func Aggregate(coins []domain.MarketCoin) domain.MarketStats {
	stats := domain.MarketStats{Coins: len(coins)}
	for _, c := range coins {
		stats.TotalMarketCap += c.MarketCap
		stats.TotalVolume += c.TotalVolume
		change := c.Change24h()
		switch {
		case change > 0:
			stats.Gainers++
		case change < 0:
			stats.Losers++
		}
	}
	return stats
}
