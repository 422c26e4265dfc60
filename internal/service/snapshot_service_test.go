package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cryptopulse/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func float64Ptr(v float64) *float64 { return &v }

func TestSnapshotService_GetMarketsCacheHit(t *testing.T) {
	t.Parallel()

	redis := newFakeRedis()
	cached := []domain.MarketCoin{{ID: "bitcoin", Name: "Bitcoin", CurrentPrice: 123.45}}
	data, _ := json.Marshal(cached)
	_ = redis.Set(context.Background(), "markets:usd:6", data, 0)

	markets := &mockMarkets{}
	svc := NewSnapshotService(testTracer, markets, &mockRates{}, redis)

	got, err := svc.GetMarkets(context.Background(), "USD", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].CurrentPrice != 123.45 {
		t.Fatalf("unexpected coins: %+v", got)
	}
	if markets.fetchMarketsCalls != 0 {
		t.Fatalf("expected no upstream call, got %d", markets.fetchMarketsCalls)
	}
}

func TestSnapshotService_GetMarketsFetchesOnMiss(t *testing.T) {
	t.Parallel()

	markets := &mockMarkets{
		coins: []domain.MarketCoin{{ID: "bitcoin", Name: "Bitcoin", PriceChangePercentage24h: float64Ptr(1.5)}},
	}
	redis := newFakeRedis()
	svc := NewSnapshotService(testTracer, markets, &mockRates{}, redis)

	got, err := svc.GetMarkets(context.Background(), "inr", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Change24h() != 1.5 {
		t.Fatalf("unexpected coins: %+v", got)
	}
	if markets.fetchMarketsCalls != 1 || markets.lastCurrency != "inr" || markets.lastPerPage != 6 {
		t.Fatalf("unexpected fetch args: %+v", markets)
	}
	if _, ok := redis.data["markets:inr:6"]; !ok {
		t.Fatal("markets not cached")
	}
	if redis.ttl["markets:inr:6"] != marketCacheTTL {
		t.Fatalf("unexpected ttl: %v", redis.ttl["markets:inr:6"])
	}
}

func TestSnapshotService_GetMarketsValidation(t *testing.T) {
	t.Parallel()

	svc := NewSnapshotService(testTracer, &mockMarkets{}, &mockRates{}, nil)

	if _, err := svc.GetMarkets(context.Background(), "xyz", 6); !errors.Is(err, domain.ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
	for _, limit := range []int{0, -1, MaxMarketLimit + 1} {
		if _, err := svc.GetMarkets(context.Background(), "usd", limit); !errors.Is(err, ErrInvalidLimit) {
			t.Fatalf("limit %d: expected ErrInvalidLimit, got %v", limit, err)
		}
	}
}

func TestSnapshotService_GetMarketsWithoutRedis(t *testing.T) {
	t.Parallel()

	markets := &mockMarkets{coins: []domain.MarketCoin{{ID: "bitcoin"}}}
	svc := NewSnapshotService(testTracer, markets, &mockRates{}, nil)

	for i := 0; i < 2; i++ {
		if _, err := svc.GetMarkets(context.Background(), "usd", 6); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if markets.fetchMarketsCalls != 2 {
		t.Fatalf("expected every call to go upstream, got %d", markets.fetchMarketsCalls)
	}
}

func TestSnapshotService_GetMarketsIgnoresBrokenCache(t *testing.T) {
	t.Parallel()

	redis := newFakeRedis()
	redis.getErr = errors.New("connection refused")
	redis.setErr = errors.New("connection refused")
	markets := &mockMarkets{coins: []domain.MarketCoin{{ID: "bitcoin"}}}
	svc := NewSnapshotService(testTracer, markets, &mockRates{}, redis)

	got, err := svc.GetMarkets(context.Background(), "usd", 6)
	if err != nil {
		t.Fatalf("cache errors should not fail the call: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected coins: %+v", got)
	}
}

func TestSnapshotService_GetMarketsUpstreamError(t *testing.T) {
	t.Parallel()

	upstream := errors.New("boom")
	svc := NewSnapshotService(testTracer, &mockMarkets{marketsErr: upstream}, &mockRates{}, newFakeRedis())

	if _, err := svc.GetMarkets(context.Background(), "usd", 6); !errors.Is(err, upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestSnapshotService_RefreshMarketsCaches(t *testing.T) {
	t.Parallel()

	markets := &mockMarkets{coins: []domain.MarketCoin{{ID: "bitcoin"}, {ID: "ethereum"}}}
	redis := newFakeRedis()
	svc := NewSnapshotService(testTracer, markets, &mockRates{}, redis)

	if err := svc.RefreshMarkets(context.Background(), "usd", 250); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var cached []domain.MarketCoin
	if err := json.Unmarshal(redis.data["markets:usd:250"], &cached); err != nil {
		t.Fatalf("cached payload not json: %v", err)
	}
	if len(cached) != 2 {
		t.Fatalf("expected 2 cached coins, got %d", len(cached))
	}
}

func TestSnapshotService_GetCoinDetail(t *testing.T) {
	t.Parallel()

	markets := &mockMarkets{detail: &domain.CoinDetail{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc"}}
	redis := newFakeRedis()
	svc := NewSnapshotService(testTracer, markets, &mockRates{}, redis)

	got, err := svc.GetCoinDetail(context.Background(), " Bitcoin ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Bitcoin" || markets.lastCoinID != "bitcoin" {
		t.Fatalf("unexpected detail %+v for id %q", got, markets.lastCoinID)
	}

	if _, err := svc.GetCoinDetail(context.Background(), "bitcoin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if markets.fetchDetailCalls != 1 {
		t.Fatalf("expected second call to hit cache, got %d upstream calls", markets.fetchDetailCalls)
	}

	if _, err := svc.GetCoinDetail(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestSnapshotService_GetExchangeRates(t *testing.T) {
	t.Parallel()

	rates := &mockRates{rates: []domain.ExchangeRate{{Currency: "EUR", Rate: 0.9}}}
	redis := newFakeRedis()
	svc := NewSnapshotService(testTracer, &mockMarkets{}, rates, redis)

	got, err := svc.GetExchangeRates(context.Background(), "usd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || rates.lastBase != "USD" {
		t.Fatalf("unexpected rates %+v for base %s", got, rates.lastBase)
	}
	if _, ok := redis.data["rates:USD"]; !ok {
		t.Fatal("rates not cached")
	}

	if _, err := svc.GetExchangeRates(context.Background(), "XYZ"); !errors.Is(err, domain.ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
}

func TestSnapshotService_RefreshRatesError(t *testing.T) {
	t.Parallel()

	upstream := errors.New("rates down")
	svc := NewSnapshotService(testTracer, &mockMarkets{}, &mockRates{err: upstream}, newFakeRedis())

	if err := svc.RefreshRates(context.Background(), "USD"); !errors.Is(err, upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

type mockMarkets struct {
	coins      []domain.MarketCoin
	marketsErr error
	detail     *domain.CoinDetail
	detailErr  error

	fetchMarketsCalls int
	fetchDetailCalls  int
	lastCurrency      string
	lastPerPage       int
	lastCoinID        string
}

func (m *mockMarkets) FetchMarkets(ctx context.Context, currency string, perPage int) ([]domain.MarketCoin, error) {
	m.fetchMarketsCalls++
	m.lastCurrency = currency
	m.lastPerPage = perPage
	if m.marketsErr != nil {
		return nil, m.marketsErr
	}
	return m.coins, nil
}

func (m *mockMarkets) FetchCoinDetail(ctx context.Context, id string) (*domain.CoinDetail, error) {
	m.fetchDetailCalls++
	m.lastCoinID = id
	if m.detailErr != nil {
		return nil, m.detailErr
	}
	return m.detail, nil
}

type mockRates struct {
	rates    []domain.ExchangeRate
	err      error
	lastBase string
}

func (m *mockRates) FetchRates(ctx context.Context, base string) ([]domain.ExchangeRate, error) {
	m.lastBase = base
	if m.err != nil {
		return nil, m.err
	}
	return m.rates, nil
}

type fakeRedis struct {
	data   map[string][]byte
	ttl    map[string]time.Duration
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte), ttl: make(map[string]time.Duration)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}
