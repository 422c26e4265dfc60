package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"cryptopulse/internal/domain"
)

var ErrMalformedCoin = errors.New("coin record missing name")

const (
	CoinFallbackSummary  = "Unable to generate coin analysis at this time."
	CoinFallbackKeyPoint = "Coin data analysis temporarily unavailable"

	unrankedPosition = 999
	noMaxSupplyLine  = "No maximum supply limit defined"
)

var coinClause = map[domain.Sentiment]string{
	domain.SentimentBullish: "demonstrates strong buying pressure and positive market sentiment",
	domain.SentimentBearish: "faces selling pressure with declining market confidence",
	domain.SentimentNeutral: "maintains stable trading activity with mixed market signals",
}

var coinRemark = map[domain.Sentiment]string{
	domain.SentimentBullish: "Strong upward momentum suggests positive investor confidence",
	domain.SentimentBearish: "Downward pressure indicates market concerns or profit-taking",
	domain.SentimentNeutral: "Stable price action reflects balanced market dynamics",
}

// CoinFallback is the result served when a coin analysis cannot be built.
func CoinFallback() domain.AnalysisResult {
	return domain.AnalysisResult{
		Summary:   CoinFallbackSummary,
		KeyPoints: []string{CoinFallbackKeyPoint},
		Sentiment: domain.SentimentNeutral,
	}
}

// SupplyRatio returns circulating supply as a percentage of max supply. ok is
// false when no maximum is defined.
func SupplyRatio(coin domain.CoinDetail) (ratio float64, ok bool) {
	if coin.MaxSupply == nil || *coin.MaxSupply == 0 {
		return 0, false
	}
	return coin.CirculatingSupply / *coin.MaxSupply * 100, true
}

// CoinAnalysis builds the single-coin narrative. A missing or non-finite 24h
// change counts as 0 and a missing rank as 999. An empty symbol renders as "()".
func CoinAnalysis(coin domain.CoinDetail) (domain.AnalysisResult, error) {
	if strings.TrimSpace(coin.Name) == "" {
		return domain.AnalysisResult{}, ErrMalformedCoin
	}

	change := 0.0
	if coin.PriceChangePercent24h != nil && !math.IsNaN(*coin.PriceChangePercent24h) && !math.IsInf(*coin.PriceChangePercent24h, 0) {
		change = *coin.PriceChangePercent24h
	}
	rank := coin.MarketCapRank
	if rank <= 0 {
		rank = unrankedPosition
	}

	sentiment := ClassifyCoin(change)
	tier := TierForRank(rank)
	symbol := strings.ToUpper(coin.Symbol)

	summary := fmt.Sprintf(
		"%s (%s) is currently showing %s momentum with a %s%% change in the last 24 hours. As a %s cryptocurrency ranked #%d by market cap, it %s.",
		coin.Name, symbol, sentiment, signedPositive(change), tier, rank, coinClause[sentiment],
	)

	supplyLine := noMaxSupplyLine
	if ratio, ok := SupplyRatio(coin); ok {
		supplyLine = fmt.Sprintf("Supply utilization: %.1f%% of max supply in circulation", ratio)
	}

	keyPoints := []string{
		fmt.Sprintf("Current rank: #%d by market capitalization", rank),
		fmt.Sprintf("24-hour price change: %s%%", signedPositive(change)),
		"Market sentiment: " + strings.ToUpper(string(sentiment)),
		supplyLine,
		fmt.Sprintf("Classification: %s cryptocurrency", capitalize(string(tier))),
		coinRemark[sentiment],
	}

	return domain.AnalysisResult{Summary: summary, KeyPoints: keyPoints, Sentiment: sentiment}, nil
}

// SummarizeCoin is CoinAnalysis with the fallback applied on error.
func SummarizeCoin(coin domain.CoinDetail) domain.AnalysisResult {
	result, err := CoinAnalysis(coin)
	if err != nil {
		return CoinFallback()
	}
	return result
}
