// Package analysis turns market snapshots into sentiment labels and
// narrative summaries.
package analysis

import "cryptopulse/internal/domain"

// Thresholds are percent changes; comparisons are strict.
const (
	MarketBullishThreshold = 2.0
	MarketBearishThreshold = -2.0
	CoinBullishThreshold   = 5.0
	CoinBearishThreshold   = -5.0
)

// Classify maps a signed percent change to a sentiment. NaN never satisfies
// either comparison and so classifies as neutral.
func Classify(change, bullishThreshold, bearishThreshold float64) domain.Sentiment {
	if change > bullishThreshold {
		return domain.SentimentBullish
	}
	if change < bearishThreshold {
		return domain.SentimentBearish
	}
	return domain.SentimentNeutral
}

// ClassifyMarket classifies an average change across many coins.
func ClassifyMarket(averageChange float64) domain.Sentiment {
	return Classify(averageChange, MarketBullishThreshold, MarketBearishThreshold)
}

// ClassifyCoin classifies a single coin's 24h change.
func ClassifyCoin(change float64) domain.Sentiment {
	return Classify(change, CoinBullishThreshold, CoinBearishThreshold)
}

// TierForRank buckets a market-cap rank.
func TierForRank(rank int) domain.RankTier {
	switch {
	case rank <= 10:
		return domain.TierTop
	case rank <= 50:
		return domain.TierEstablished
	case rank <= 100:
		return domain.TierMidCap
	default:
		return domain.TierEmerging
	}
}
