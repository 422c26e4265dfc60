package domain

// Sentiment is a coarse classification of price-trend direction.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentBullish, SentimentBearish, SentimentNeutral:
		return true
	}
	return false
}

// RankTier classifies a coin's market-cap rank.
type RankTier string

const (
	TierTop         RankTier = "top-tier"
	TierEstablished RankTier = "established"
	TierMidCap      RankTier = "mid-cap"
	TierEmerging    RankTier = "emerging"
)

// AnalysisResult is the output of one narrative generation call.
type AnalysisResult struct {
	Summary   string    `json:"summary"`
	KeyPoints []string  `json:"keyPoints"`
	Sentiment Sentiment `json:"sentiment"`
}

// MarketStats aggregates a dashboard listing.
type MarketStats struct {
	Coins          int     `json:"coins"`
	Gainers        int     `json:"gainers"`
	Losers         int     `json:"losers"`
	TotalMarketCap float64 `json:"total_market_cap"`
	TotalVolume    float64 `json:"total_volume"`
}
