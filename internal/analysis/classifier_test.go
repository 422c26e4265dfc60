package analysis

import (
	"math"
	"testing"

	"cryptopulse/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMarketThresholds(t *testing.T) {
	tests := []struct {
		name   string
		change float64
		want   domain.Sentiment
	}{
		{"well above", 7.5, domain.SentimentBullish},
		{"just above", 2.0001, domain.SentimentBullish},
		{"upper boundary is neutral", 2, domain.SentimentNeutral},
		{"zero", 0, domain.SentimentNeutral},
		{"lower boundary is neutral", -2, domain.SentimentNeutral},
		{"just below", -2.0001, domain.SentimentBearish},
		{"well below", -12, domain.SentimentBearish},
		{"NaN", math.NaN(), domain.SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyMarket(tt.change))
		})
	}
}

func TestClassifyCoinThresholds(t *testing.T) {
	tests := []struct {
		name   string
		change float64
		want   domain.Sentiment
	}{
		{"above", 5.01, domain.SentimentBullish},
		{"upper boundary is neutral", 5, domain.SentimentNeutral},
		{"market bullish is coin neutral", 3, domain.SentimentNeutral},
		{"lower boundary is neutral", -5, domain.SentimentNeutral},
		{"below", -5.01, domain.SentimentBearish},
		{"NaN", math.NaN(), domain.SentimentNeutral},
		{"+Inf", math.Inf(1), domain.SentimentBullish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCoin(tt.change))
		})
	}
}

func TestClassifyCustomThresholds(t *testing.T) {
	assert.Equal(t, domain.SentimentBullish, Classify(1.5, 1, -1))
	assert.Equal(t, domain.SentimentBearish, Classify(-1.5, 1, -1))
	assert.Equal(t, domain.SentimentNeutral, Classify(1, 1, -1))
}

func TestTierForRank(t *testing.T) {
	cases := map[int]domain.RankTier{
		1:   domain.TierTop,
		10:  domain.TierTop,
		11:  domain.TierEstablished,
		50:  domain.TierEstablished,
		51:  domain.TierMidCap,
		100: domain.TierMidCap,
		101: domain.TierEmerging,
		999: domain.TierEmerging,
	}
	for rank, want := range cases {
		assert.Equal(t, want, TierForRank(rank), "rank %d", rank)
	}
}
