package domain

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedCurrency is returned for a currency code outside the display tables.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// ExchangeRate is one currency's rate relative to a base currency.
type ExchangeRate struct {
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
}

// Currency is display metadata for a currency code.
type Currency struct {
	Code     string `yaml:"code" json:"code"`
	Name     string `yaml:"name" json:"name"`
	Symbol   string `yaml:"symbol" json:"symbol"`
	Decimals *int   `yaml:"decimals,omitempty" json:"decimals,omitempty"`
}

//go:embed currencies.yaml
var currenciesYAML []byte

var (
	// QuoteCurrencies lists the vs_currency codes coin prices can be quoted in.
	QuoteCurrencies []Currency
	// FiatCurrencies lists the currencies shown in the exchange-rate table, in display order.
	FiatCurrencies []Currency

	quoteByCode map[string]Currency
	fiatByCode  map[string]Currency
)

func init() {
	if err := loadCurrencies(currenciesYAML); err != nil {
		panic(err)
	}
}

func loadCurrencies(data []byte) error {
	var table struct {
		Quote []Currency `yaml:"quote"`
		Fiat  []Currency `yaml:"fiat"`
	}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("parse currency table: %w", err)
	}

	QuoteCurrencies = table.Quote
	FiatCurrencies = table.Fiat
	quoteByCode = make(map[string]Currency, len(table.Quote))
	for _, c := range table.Quote {
		quoteByCode[c.Code] = c
	}
	fiatByCode = make(map[string]Currency, len(table.Fiat))
	for _, c := range table.Fiat {
		fiatByCode[c.Code] = c
	}
	return nil
}

// LookupQuote returns the quote currency for a case-insensitive code.
func LookupQuote(code string) (Currency, bool) {
	c, ok := quoteByCode[strings.ToLower(strings.TrimSpace(code))]
	return c, ok
}

// LookupFiat returns the fiat currency for a case-insensitive code.
func LookupFiat(code string) (Currency, bool) {
	c, ok := fiatByCode[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// QuoteCodes returns the supported vs_currency codes in display order.
func QuoteCodes() []string {
	codes := make([]string, 0, len(QuoteCurrencies))
	for _, c := range QuoteCurrencies {
		codes = append(codes, c.Code)
	}
	return codes
}

// FiatCodes returns the exchange-rate table codes in display order.
func FiatCodes() []string {
	codes := make([]string, 0, len(FiatCurrencies))
	for _, c := range FiatCurrencies {
		codes = append(codes, c.Code)
	}
	return codes
}
