package config

import "testing"

var allKeys = []string{
	"HTTP_ADDR", "REDIS_URL", "CACHE_ENABLED", "LOG_LEVEL", "POLL_SECS", "DASHBOARD_POLL_SECS",
	"DEFAULT_CURRENCY", "BASE_CURRENCY", "SUMMARY_COIN_LIMIT", "DASHBOARD_COIN_LIMIT",
	"COINGECKO_BASE_URL", "EXCHANGE_RATE_BASE_URL", "TELEGRAM_BOT_TOKEN",
	"SSH_HOST", "SSH_PORT", "SSH_HOST_KEY_PATH", "DEMO_EMAIL", "DEMO_PASSWORD",
	"MCP_TRANSPORT", "MCP_HTTP_BIND", "MCP_HTTP_PORT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.HTTPAddr != ":8080" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.CacheEnabled || cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected cache enabled on localhost, got %v %s", cfg.CacheEnabled, cfg.RedisURL)
	}
	if cfg.PollSecs != 30 || cfg.DashboardPollSecs != 60 {
		t.Fatalf("unexpected poll defaults: %d %d", cfg.PollSecs, cfg.DashboardPollSecs)
	}
	if cfg.DefaultCurrency != "usd" || cfg.BaseCurrency != "USD" {
		t.Fatalf("unexpected currencies: %s %s", cfg.DefaultCurrency, cfg.BaseCurrency)
	}
	if cfg.SummaryCoinLimit != 6 || cfg.DashboardCoinLimit != 250 {
		t.Fatalf("unexpected limits: %d %d", cfg.SummaryCoinLimit, cfg.DashboardCoinLimit)
	}
	if cfg.SSHPort != 23234 || cfg.DemoEmail != "admin@crypto.com" || cfg.DemoPassword != "crypto123" {
		t.Fatalf("unexpected ssh/demo defaults: %+v", cfg)
	}
	if cfg.MCPTransport != "stdio" || cfg.MCPHTTPBind != "127.0.0.1" || cfg.MCPHTTPPort != 8090 {
		t.Fatalf("unexpected mcp defaults: %+v", cfg)
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("POLL_SECS", "15")
	t.Setenv("DEFAULT_CURRENCY", "INR")
	t.Setenv("BASE_CURRENCY", "eur")
	t.Setenv("SUMMARY_COIN_LIMIT", "10")
	t.Setenv("MCP_TRANSPORT", "HTTP")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.PollSecs != 15 || cfg.SummaryCoinLimit != 10 {
		t.Fatalf("unexpected ints: %d %d", cfg.PollSecs, cfg.SummaryCoinLimit)
	}
	if cfg.DefaultCurrency != "inr" || cfg.BaseCurrency != "EUR" {
		t.Fatalf("currencies should be normalised: %s %s", cfg.DefaultCurrency, cfg.BaseCurrency)
	}
	if cfg.MCPTransport != "http" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected transport/level: %s %s", cfg.MCPTransport, cfg.LogLevel)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("POLL_SECS", "bad")
	t.Setenv("DASHBOARD_POLL_SECS", "-5")
	t.Setenv("DASHBOARD_COIN_LIMIT", "1000")
	t.Setenv("MCP_TRANSPORT", "grpc")

	cfg := Load()
	if cfg.PollSecs != 30 || cfg.DashboardPollSecs != 60 {
		t.Fatalf("invalid poll secs should fall back, got %d %d", cfg.PollSecs, cfg.DashboardPollSecs)
	}
	if cfg.DashboardCoinLimit != 250 {
		t.Fatalf("out of range limit should fall back, got %d", cfg.DashboardCoinLimit)
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("unsupported transport should fall back, got %s", cfg.MCPTransport)
	}
}

func TestLoadCacheDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_ENABLED", "false")

	cfg := Load()
	if cfg.CacheEnabled {
		t.Fatal("expected cache disabled")
	}
	if cfg.RedisURL != "" {
		t.Fatalf("redis url should stay empty when cache disabled, got %s", cfg.RedisURL)
	}
}

func TestLoadUnsupportedCurrenciesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_CURRENCY", "doge")
	t.Setenv("BASE_CURRENCY", "sgd")

	cfg := Load()
	if cfg.DefaultCurrency != "usd" {
		t.Fatalf("unsupported quote currency should fall back, got %s", cfg.DefaultCurrency)
	}
	if cfg.BaseCurrency != "USD" {
		t.Fatalf("unsupported base currency should fall back, got %s", cfg.BaseCurrency)
	}
}

func TestLoadAcceptsQuoteOnlyCurrency(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_CURRENCY", "BTC")
	t.Setenv("BASE_CURRENCY", "cny")

	cfg := Load()
	if cfg.DefaultCurrency != "btc" || cfg.BaseCurrency != "CNY" {
		t.Fatalf("unexpected currencies: %s %s", cfg.DefaultCurrency, cfg.BaseCurrency)
	}
}
