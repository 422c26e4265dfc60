package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cryptopulse/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	marketCacheTTL = 90 * time.Second
	rateCacheTTL   = 90 * time.Second
	coinCacheTTL   = 60 * time.Second

	// MaxMarketLimit is the largest page CoinGecko serves for /coins/markets.
	MaxMarketLimit = 250
)

// ErrInvalidLimit is returned for a listing size outside 1..MaxMarketLimit.
var ErrInvalidLimit = errors.New("invalid limit")

type MarketProvider interface {
	FetchMarkets(ctx context.Context, currency string, perPage int) ([]domain.MarketCoin, error)
	FetchCoinDetail(ctx context.Context, id string) (*domain.CoinDetail, error)
}

type RateProvider interface {
	FetchRates(ctx context.Context, base string) ([]domain.ExchangeRate, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SnapshotService serves raw market snapshots, reading through a short-lived
// Redis cache that the poller keeps warm. A nil redis disables caching.
type SnapshotService struct {
	tracer  trace.Tracer
	markets MarketProvider
	rates   RateProvider
	redis   RedisClient
}

func NewSnapshotService(
	tracer trace.Tracer,
	markets MarketProvider,
	rates RateProvider,
	redisClient RedisClient,
) *SnapshotService {
	return &SnapshotService{
		tracer:  tracer,
		markets: markets,
		rates:   rates,
		redis:   redisClient,
	}
}

// NormalizeCurrency validates a quote currency and returns its lower-case code.
func NormalizeCurrency(currency string) (string, error) {
	c, ok := domain.LookupQuote(currency)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, currency)
	}
	return c.Code, nil
}

// NormalizeBase validates an exchange-rate base and returns its upper-case code.
func NormalizeBase(base string) (string, error) {
	c, ok := domain.LookupFiat(base)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, base)
	}
	return c.Code, nil
}

// GetMarkets returns the top limit coins by market cap quoted in currency.
func (s *SnapshotService) GetMarkets(ctx context.Context, currency string, limit int) ([]domain.MarketCoin, error) {
	ctx, span := s.tracer.Start(ctx, "snapshot-service.get-markets")
	defer span.End()

	currency, err := NormalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	if limit < 1 || limit > MaxMarketLimit {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	span.SetAttributes(attribute.String("currency", currency), attribute.Int("limit", limit))

	key := marketsKey(currency, limit)
	if s.redis != nil {
		var cached []domain.MarketCoin
		hit, err := s.getCache(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("redis cache read error")
		}
		if hit {
			return cached, nil
		}
	}

	return s.refreshMarkets(ctx, currency, limit)
}

// RefreshMarkets fetches a listing from upstream and caches it.
func (s *SnapshotService) RefreshMarkets(ctx context.Context, currency string, limit int) error {
	ctx, span := s.tracer.Start(ctx, "snapshot-service.refresh-markets")
	defer span.End()

	currency, err := NormalizeCurrency(currency)
	if err != nil {
		return err
	}
	if limit < 1 || limit > MaxMarketLimit {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	coins, err := s.refreshMarkets(ctx, currency, limit)
	if err != nil {
		span.RecordError(err)
		return err
	}
	log.Debug().Str("currency", currency).Int("coins", len(coins)).Msg("refreshed markets")
	return nil
}

func (s *SnapshotService) refreshMarkets(ctx context.Context, currency string, limit int) ([]domain.MarketCoin, error) {
	coins, err := s.markets.FetchMarkets(ctx, currency, limit)
	if err != nil {
		return nil, err
	}
	if s.redis != nil {
		key := marketsKey(currency, limit)
		if err := s.setCache(ctx, key, coins, marketCacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("redis cache write error")
		}
	}
	return coins, nil
}

// GetCoinDetail returns the extended snapshot for a CoinGecko id.
func (s *SnapshotService) GetCoinDetail(ctx context.Context, id string) (*domain.CoinDetail, error) {
	ctx, span := s.tracer.Start(ctx, "snapshot-service.get-coin-detail")
	defer span.End()

	id = strings.ToLower(strings.TrimSpace(id))
	span.SetAttributes(attribute.String("coin_id", id))
	if id == "" {
		return nil, fmt.Errorf("coin id is required")
	}

	key := "coin:" + id
	if s.redis != nil {
		var cached domain.CoinDetail
		hit, err := s.getCache(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("redis cache read error")
		}
		if hit {
			return &cached, nil
		}
	}

	detail, err := s.markets.FetchCoinDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.redis != nil && detail != nil {
		if err := s.setCache(ctx, key, detail, coinCacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("redis cache write error")
		}
	}
	return detail, nil
}

// GetExchangeRates returns the display-table rates relative to base.
func (s *SnapshotService) GetExchangeRates(ctx context.Context, base string) ([]domain.ExchangeRate, error) {
	ctx, span := s.tracer.Start(ctx, "snapshot-service.get-exchange-rates")
	defer span.End()

	base, err := NormalizeBase(base)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("base", base))

	key := "rates:" + base
	if s.redis != nil {
		var cached []domain.ExchangeRate
		hit, err := s.getCache(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("redis cache read error")
		}
		if hit {
			return cached, nil
		}
	}

	return s.refreshRates(ctx, base)
}

// RefreshRates fetches rates for base from upstream and caches them.
func (s *SnapshotService) RefreshRates(ctx context.Context, base string) error {
	ctx, span := s.tracer.Start(ctx, "snapshot-service.refresh-rates")
	defer span.End()

	base, err := NormalizeBase(base)
	if err != nil {
		return err
	}

	rates, err := s.refreshRates(ctx, base)
	if err != nil {
		span.RecordError(err)
		return err
	}
	log.Debug().Str("base", base).Int("rates", len(rates)).Msg("refreshed exchange rates")
	return nil
}

func (s *SnapshotService) refreshRates(ctx context.Context, base string) ([]domain.ExchangeRate, error) {
	rates, err := s.rates.FetchRates(ctx, base)
	if err != nil {
		return nil, err
	}
	if s.redis != nil {
		key := "rates:" + base
		if err := s.setCache(ctx, key, rates, rateCacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("redis cache write error")
		}
	}
	return rates, nil
}

func marketsKey(currency string, limit int) string {
	return "markets:" + currency + ":" + strconv.Itoa(limit)
}

func (s *SnapshotService) setCache(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

func (s *SnapshotService) getCache(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}
