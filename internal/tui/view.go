package tui

import (
	"fmt"
	"strings"

	"cryptopulse/internal/analysis"
	"cryptopulse/internal/domain"
	"cryptopulse/internal/format"

	"github.com/charmbracelet/lipgloss"
)

var tabNames = [viewCount]string{"Live Prices", "Dashboard", "Exchange Rates"}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")

	switch {
	case m.err != nil && len(m.prices) == 0:
		b.WriteString(errorStyle.Render("Error loading market data: " + m.err.Error()))
	case m.loading && len(m.prices) == 0:
		b.WriteString(m.spinner.View() + " Loading market data...")
	default:
		switch m.view {
		case viewPrices:
			b.WriteString(m.pricesView())
		case viewDashboard:
			b.WriteString(m.dashboardView())
		case viewRates:
			b.WriteString(m.ratesView())
		}
	}

	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(m.footer()))
	return b.String()
}

func (m *Model) header() string {
	tabs := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if view(i) == m.view {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	title := titleStyle.Render("CryptoPulse")
	return lipgloss.JoinHorizontal(lipgloss.Top, append([]string{title}, tabs...)...)
}

func (m *Model) footer() string {
	status := "currency " + strings.ToUpper(m.Currency())
	if m.svc.Username != "" {
		status = m.svc.Username + "  " + status
	}
	if !m.updatedAt.IsZero() {
		status += "  updated " + m.updatedAt.Format("15:04:05")
	}
	if m.loading {
		status += "  " + m.spinner.View()
	}
	if m.err != nil {
		status += "  last refresh failed"
	}
	return status + "\n" + keys.helpLine(m.view, m.filtering)
}

func changeCell(pct float64) string {
	s := format.Change(pct)
	switch {
	case pct > 0:
		return upStyle.Render(s)
	case pct < 0:
		return downStyle.Render(s)
	default:
		return s
	}
}

func (m *Model) pricesView() string {
	currency := m.Currency()
	var rows strings.Builder
	rows.WriteString(headerStyle.Render(fmt.Sprintf("%-4s %-2s%-22s %18s %10s", "#", "", "Coin", "Price", "24h")))
	for i, c := range m.prices {
		rows.WriteString(fmt.Sprintf("\n%-4d %s%-22s %18s %10s",
			i+1,
			m.star(c.ID),
			truncate(c.Name+" ("+strings.ToUpper(c.Symbol)+")", 22),
			format.Price(c.CurrentPrice, currency),
			changeCell(c.Change24h()),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(rows.String()),
		panelStyle.Width(min(m.width-2, 100)).Render(renderAnalysis(m.analysis)),
	)
}

func renderAnalysis(out analysis.Outcome) string {
	r := out.Result
	if r.Summary == "" {
		return mutedStyle.Render("Analysis pending...")
	}

	sentiment := strings.ToUpper(string(r.Sentiment))
	switch r.Sentiment {
	case domain.SentimentBullish:
		sentiment = upStyle.Render(sentiment)
	case domain.SentimentBearish:
		sentiment = downStyle.Render(sentiment)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Market Analysis") + "  " + sentiment + "\n")
	b.WriteString(r.Summary + "\n")
	for _, kp := range r.KeyPoints {
		b.WriteString("\n• " + kp)
	}
	return b.String()
}

// star marks favorites; the blank keeps columns aligned.
func (m *Model) star(id string) string {
	if m.favorites[id] {
		return starStyle.Render("★") + " "
	}
	return "  "
}

func (m *Model) dashboardView() string {
	coins := m.visibleCoins()
	stats := analysis.Aggregate(coins)
	currency := m.Currency()

	summary := fmt.Sprintf("Coins %d   Gainers %s   Losers %s   Market cap %s   24h volume %s",
		stats.Coins,
		upStyle.Render(fmt.Sprint(stats.Gainers)),
		downStyle.Render(fmt.Sprint(stats.Losers)),
		format.Compact(stats.TotalMarketCap),
		format.Compact(stats.TotalVolume),
	)

	search := ""
	switch {
	case m.filtering:
		search = m.filter.View() + "\n"
	case m.filter.Value() != "":
		search = mutedStyle.Render(fmt.Sprintf("Search: %s (%d of %d)", m.filter.Value(), len(coins), len(m.dashboard))) + "\n"
	}

	var rows strings.Builder
	rows.WriteString(headerStyle.Render(fmt.Sprintf("%-5s %-2s%-22s %18s %10s %12s", "Rank", "", "Coin", "Price", "24h", "Market cap")))
	if len(coins) == 0 {
		rows.WriteString("\n" + mutedStyle.Render("No coins match"))
	}
	start := min(m.offset, len(coins))
	end := min(start+m.visibleRows(), len(coins))
	for i, c := range coins[start:end] {
		name := truncate(c.Name, 22)
		if start+i == m.cursor && !m.filtering {
			name = cursorStyle.Render(fmt.Sprintf("%-22s", name))
		}
		rows.WriteString(fmt.Sprintf("\n%-5d %s%-22s %18s %10s %12s",
			c.MarketCapRank,
			m.star(c.ID),
			name,
			format.Price(c.CurrentPrice, currency),
			changeCell(c.Change24h()),
			format.Compact(c.MarketCap),
		))
	}

	return summary + "\n" + search + panelStyle.Render(rows.String())
}

func (m *Model) ratesView() string {
	var rows strings.Builder
	rows.WriteString(headerStyle.Render(fmt.Sprintf("Exchange rates (1 %s)", m.svc.Base)))
	for _, r := range m.rates {
		rows.WriteString(fmt.Sprintf("\n%-4s %-3s %14.4f  %s", r.Currency, r.Symbol, r.Rate, r.Name))
	}
	return panelStyle.Render(rows.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
