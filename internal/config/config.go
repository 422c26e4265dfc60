package config

import (
	"os"
	"strconv"
	"strings"

	"cryptopulse/internal/domain"

	"github.com/rs/zerolog/log"
)

type Config struct {
	HTTPAddr     string
	RedisURL     string
	CacheEnabled bool
	LogLevel     string

	PollSecs          int
	DashboardPollSecs int

	DefaultCurrency    string
	BaseCurrency       string
	SummaryCoinLimit   int
	DashboardCoinLimit int

	CoinGeckoBaseURL    string
	ExchangeRateBaseURL string

	TelegramBotToken string

	SSHHost        string
	SSHPort        int
	SSHHostKeyPath string

	DemoEmail    string
	DemoPassword string

	MCPTransport string
	MCPHTTPBind  string
	MCPHTTPPort  int
}

func Load() *Config {
	cfg := &Config{
		HTTPAddr:            strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		RedisURL:            strings.TrimSpace(os.Getenv("REDIS_URL")),
		LogLevel:            strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		CoinGeckoBaseURL:    strings.TrimSpace(os.Getenv("COINGECKO_BASE_URL")),
		ExchangeRateBaseURL: strings.TrimSpace(os.Getenv("EXCHANGE_RATE_BASE_URL")),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		SSHHost:             strings.TrimSpace(os.Getenv("SSH_HOST")),
		SSHHostKeyPath:      strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH")),
		DemoEmail:           strings.TrimSpace(os.Getenv("DEMO_EMAIL")),
		DemoPassword:        os.Getenv("DEMO_PASSWORD"),
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.TelegramBotToken == "" {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN not set, telegram bot disabled")
	}

	cfg.CacheEnabled = !strings.EqualFold(strings.TrimSpace(os.Getenv("CACHE_ENABLED")), "false")
	if cfg.CacheEnabled && cfg.RedisURL == "" {
		log.Warn().Msg("REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.PollSecs = positiveInt("POLL_SECS", 30)
	cfg.DashboardPollSecs = positiveInt("DASHBOARD_POLL_SECS", 60)
	cfg.SummaryCoinLimit = boundedInt("SUMMARY_COIN_LIMIT", 6, 250)
	cfg.DashboardCoinLimit = boundedInt("DASHBOARD_COIN_LIMIT", 250, 250)

	cfg.DefaultCurrency = strings.ToLower(strings.TrimSpace(os.Getenv("DEFAULT_CURRENCY")))
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "usd"
	}
	if _, ok := domain.LookupQuote(cfg.DefaultCurrency); !ok {
		log.Warn().Str("DEFAULT_CURRENCY", cfg.DefaultCurrency).Strs("supported", domain.QuoteCodes()).Msg("unsupported quote currency, defaulting to usd")
		cfg.DefaultCurrency = "usd"
	}
	cfg.BaseCurrency = strings.ToUpper(strings.TrimSpace(os.Getenv("BASE_CURRENCY")))
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = "USD"
	}
	if _, ok := domain.LookupFiat(cfg.BaseCurrency); !ok {
		log.Warn().Str("BASE_CURRENCY", cfg.BaseCurrency).Strs("supported", domain.FiatCodes()).Msg("unsupported base currency, defaulting to USD")
		cfg.BaseCurrency = "USD"
	}

	if cfg.SSHHost == "" {
		cfg.SSHHost = "0.0.0.0"
	}
	cfg.SSHPort = positiveInt("SSH_PORT", 23234)
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/id_ed25519"
	}

	if cfg.DemoEmail == "" {
		cfg.DemoEmail = "admin@crypto.com"
	}
	if cfg.DemoPassword == "" {
		cfg.DemoPassword = "crypto123"
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Warn().Str("MCP_TRANSPORT", cfg.MCPTransport).Msg("unsupported MCP transport, defaulting to stdio")
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}
	cfg.MCPHTTPPort = positiveInt("MCP_HTTP_PORT", 8090)

	return cfg
}

func positiveInt(key string, def int) int {
	return boundedInt(key, def, 0)
}

// boundedInt reads a positive integer; max <= 0 means unbounded.
func boundedInt(key string, def, max int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || (max > 0 && n > max) {
		log.Warn().Str(key, v).Int("default", def).Msg("invalid value, using default")
		return def
	}
	return n
}
