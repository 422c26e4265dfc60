// Package format renders prices and large quantities for the text surfaces.
package format

import (
	"fmt"
	"math"
	"strings"

	"cryptopulse/internal/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Price renders price in currency with its symbol. Sub-unit prices keep four
// decimals; BTC keeps eight; JPY has none.
func Price(price float64, currency string) string {
	c, ok := domain.LookupQuote(currency)
	if !ok {
		return strings.ToUpper(currency) + " " + grouped(price, 2)
	}

	switch {
	case c.Decimals != nil && *c.Decimals > 2:
		return c.Symbol + fmt.Sprintf("%.*f", *c.Decimals, price)
	case math.Abs(price) < 1:
		return c.Symbol + fmt.Sprintf("%.4f", price)
	case c.Decimals != nil:
		return c.Symbol + grouped(price, *c.Decimals)
	default:
		return c.Symbol + grouped(price, 2)
	}
}

// grouped renders v with thousands separators and exactly decimals fraction digits.
func grouped(v float64, decimals int) string {
	return printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(decimals),
		number.MaxFractionDigits(decimals),
	))
}

// Compact abbreviates n with T, B, M or K suffixes.
func Compact(n float64) string {
	abs := math.Abs(n)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", n/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", n/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", n/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", n/1e3)
	default:
		return fmt.Sprintf("%.0f", n)
	}
}

// Change renders a percent change with an explicit sign, or "N/A" when unknown.
func Change(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "N/A"
	}
	if pct > 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}
