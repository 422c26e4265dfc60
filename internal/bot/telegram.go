package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cryptopulse/internal/analysis"
	"cryptopulse/internal/domain"
	"cryptopulse/internal/format"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

type Snapshots interface {
	GetMarkets(ctx context.Context, currency string, limit int) ([]domain.MarketCoin, error)
	GetExchangeRates(ctx context.Context, base string) ([]domain.ExchangeRate, error)
}

type Analyzer interface {
	MarketSummary(ctx context.Context, currency, base string) analysis.Outcome
	CoinAnalysis(ctx context.Context, coinID string) analysis.Outcome
}

// Commands renders the bot's replies. It has no telegram dependency so the
// text can be tested directly.
type Commands struct {
	snapshots Snapshots
	analyzer  Analyzer
	currency  string
	base      string
	limit     int
}

func NewCommands(snapshots Snapshots, analyzer Analyzer, currency, base string, limit int) *Commands {
	if limit <= 0 {
		limit = 6
	}
	return &Commands{
		snapshots: snapshots,
		analyzer:  analyzer,
		currency:  currency,
		base:      base,
		limit:     limit,
	}
}

func (c *Commands) argOr(args []string, def string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0])
	}
	return def
}

// Summary replies to /summary [currency].
func (c *Commands) Summary(ctx context.Context, args []string) string {
	currency := strings.ToLower(c.argOr(args, c.currency))
	if _, ok := domain.LookupQuote(currency); !ok {
		return fmt.Sprintf("Unknown currency: %s\nSupported: %s", currency, strings.Join(domain.QuoteCodes(), ", "))
	}
	out := c.analyzer.MarketSummary(ctx, currency, c.base)
	return renderAnalysis("Market summary ("+strings.ToUpper(currency)+")", out.Result)
}

// Coin replies to /coin <id>.
func (c *Commands) Coin(ctx context.Context, args []string) string {
	id := strings.ToLower(c.argOr(args, ""))
	if id == "" {
		return "Usage: /coin bitcoin"
	}
	out := c.analyzer.CoinAnalysis(ctx, id)
	return renderAnalysis("Coin analysis: "+id, out.Result)
}

// Prices replies to /prices [currency] with the live top list.
func (c *Commands) Prices(ctx context.Context, args []string) string {
	currency := strings.ToLower(c.argOr(args, c.currency))
	coins, err := c.snapshots.GetMarkets(ctx, currency, c.limit)
	if err != nil {
		return fmt.Sprintf("Error fetching prices: %v", err)
	}
	if len(coins) == 0 {
		return "No market data available right now."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Top %d by market cap (%s)\n", len(coins), strings.ToUpper(currency))
	for i, coin := range coins {
		fmt.Fprintf(&b, "%d. %s (%s)  %s  %s\n",
			i+1, coin.Name, strings.ToUpper(coin.Symbol),
			format.Price(coin.CurrentPrice, currency), format.Change(coin.Change24h()))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Rates replies to /rates [base].
func (c *Commands) Rates(ctx context.Context, args []string) string {
	base := strings.ToUpper(c.argOr(args, c.base))
	rates, err := c.snapshots.GetExchangeRates(ctx, base)
	if err != nil {
		return fmt.Sprintf("Error fetching exchange rates: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Exchange rates (1 %s)\n", base)
	for _, r := range rates {
		fmt.Fprintf(&b, "%s %s %.4f  %s\n", r.Currency, r.Symbol, r.Rate, r.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderAnalysis(title string, r domain.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nSentiment: %s\n\n%s\n", title, strings.ToUpper(string(r.Sentiment)), r.Summary)
	for _, kp := range r.KeyPoints {
		b.WriteString("\n• " + kp)
	}
	return b.String()
}

// StartTelegramBot registers the commands and starts long polling in the
// background until ctx is cancelled. An empty token skips startup.
func StartTelegramBot(ctx context.Context, token string, cmds *Commands) error {
	if token == "" {
		log.Info().Msg("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	b.Handle("/summary", func(c tele.Context) error {
		return c.Send(cmds.Summary(ctx, c.Args()))
	})
	b.Handle("/coin", func(c tele.Context) error {
		return c.Send(cmds.Coin(ctx, c.Args()))
	})
	b.Handle("/prices", func(c tele.Context) error {
		return c.Send(cmds.Prices(ctx, c.Args()))
	})
	b.Handle("/rates", func(c tele.Context) error {
		return c.Send(cmds.Rates(ctx, c.Args()))
	})

	go func() {
		<-ctx.Done()
		b.Stop()
	}()

	log.Info().Str("bot", b.Me.Username).Msg("telegram bot started")
	go b.Start()
	return nil
}
