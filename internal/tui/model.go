// Package tui is the terminal dashboard served over SSH: live prices with the
// market narrative, the full market-cap listing and the exchange-rate table.
package tui

import (
	"context"
	"time"

	"cryptopulse/internal/analysis"
	"cryptopulse/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type Snapshots interface {
	GetMarkets(ctx context.Context, currency string, limit int) ([]domain.MarketCoin, error)
	GetExchangeRates(ctx context.Context, base string) ([]domain.ExchangeRate, error)
}

type Analyzer interface {
	MarketSummary(ctx context.Context, currency, base string) analysis.Outcome
}

// Services is everything one dashboard session reads from.
type Services struct {
	Snapshots      Snapshots
	Analyzer       Analyzer
	Currency       string
	Base           string
	SummaryLimit   int
	DashboardLimit int
	Refresh        time.Duration
	Username       string
}

type view int

const (
	viewPrices view = iota
	viewDashboard
	viewRates
	viewCount
)

const fetchTimeout = 20 * time.Second

var defaultFavorites = []string{"bitcoin", "ethereum"}

type snapshotMsg struct {
	currency  string
	prices    []domain.MarketCoin
	dashboard []domain.MarketCoin
	rates     []domain.ExchangeRate
	analysis  analysis.Outcome
	err       error
	at        time.Time
}

type tickMsg time.Time

// Model is the bubbletea model for one session. All state lives here.
type Model struct {
	svc Services

	view       view
	currencies []string
	currency   int

	loading   bool
	spinner   spinner.Model
	prices    []domain.MarketCoin
	dashboard []domain.MarketCoin
	rates     []domain.ExchangeRate
	analysis  analysis.Outcome
	err       error
	updatedAt time.Time

	// dashboard selection, filter and favorites are per session
	filter    textinput.Model
	filtering bool
	favorites map[string]bool
	cursor    int

	offset int
	width  int
	height int
}

func NewModel(svc Services) *Model {
	if svc.SummaryLimit <= 0 {
		svc.SummaryLimit = 6
	}
	if svc.DashboardLimit <= 0 {
		svc.DashboardLimit = 250
	}
	if svc.Refresh <= 0 {
		svc.Refresh = 30 * time.Second
	}
	if svc.Base == "" {
		svc.Base = "USD"
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.Placeholder = "name or symbol"
	ti.CharLimit = 32

	favorites := make(map[string]bool, len(defaultFavorites))
	for _, id := range defaultFavorites {
		favorites[id] = true
	}

	m := &Model{
		svc:        svc,
		currencies: domain.QuoteCodes(),
		spinner:    s,
		filter:     ti,
		favorites:  favorites,
		loading:    true,
		width:      100,
		height:     30,
	}
	for i, c := range m.currencies {
		if c == svc.Currency {
			m.currency = i
		}
	}
	return m
}

func (m *Model) SetSize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
}

func (m *Model) Currency() string {
	if len(m.currencies) == 0 {
		return "usd"
	}
	return m.currencies[m.currency]
}

// Filter is the active dashboard search text.
func (m *Model) Filter() string {
	return m.filter.Value()
}

// IsFavorite reports whether the coin id is starred in this session.
func (m *Model) IsFavorite(id string) bool {
	return m.favorites[id]
}

// visibleCoins is the dashboard listing after the search filter.
func (m *Model) visibleCoins() []domain.MarketCoin {
	return domain.FilterCoins(m.dashboard, m.filter.Value())
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch(), m.tick())
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.svc.Refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// fetch loads every view's data for the current currency in one command.
func (m *Model) fetch() tea.Cmd {
	svc := m.svc
	currency := m.Currency()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		msg := snapshotMsg{currency: currency, at: time.Now()}
		msg.prices, msg.err = svc.Snapshots.GetMarkets(ctx, currency, svc.SummaryLimit)
		if msg.err != nil {
			return msg
		}
		msg.dashboard, msg.err = svc.Snapshots.GetMarkets(ctx, currency, svc.DashboardLimit)
		if msg.err != nil {
			return msg
		}
		msg.rates, msg.err = svc.Snapshots.GetExchangeRates(ctx, svc.Base)
		if msg.err != nil {
			return msg
		}
		msg.analysis = svc.Analyzer.MarketSummary(ctx, currency, svc.Base)
		return msg
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		return m, tea.Batch(m.fetch(), m.tick())

	case snapshotMsg:
		if msg.currency != m.Currency() {
			// stale response for a currency the user has moved away from
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.prices = msg.prices
			m.dashboard = msg.dashboard
			m.rates = msg.rates
			m.analysis = msg.analysis
			m.updatedAt = msg.at
			m.clampCursor()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.NextTab):
		m.view = (m.view + 1) % viewCount
	case key.Matches(msg, keys.Prices):
		m.view = viewPrices
	case key.Matches(msg, keys.Board):
		m.view = viewDashboard
	case key.Matches(msg, keys.Rates):
		m.view = viewRates
	case key.Matches(msg, keys.Currency):
		m.currency = (m.currency + 1) % len(m.currencies)
		m.loading = true
		m.offset = 0
		return m, m.fetch()
	case key.Matches(msg, keys.Refresh):
		m.loading = true
		return m, m.fetch()
	case key.Matches(msg, keys.Filter):
		m.view = viewDashboard
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(msg, keys.Cancel):
		if m.filter.Value() != "" {
			m.filter.Reset()
			m.cursor, m.offset = 0, 0
		}
	case key.Matches(msg, keys.Favorite):
		if m.view == viewDashboard {
			m.toggleFavorite()
		}
	case key.Matches(msg, keys.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, keys.Down):
		m.cursor++
		m.clampCursor()
	}
	return m, nil
}

// handleFilterKey routes keys to the search box until it is applied or cleared.
func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, keys.Confirm):
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case key.Matches(msg, keys.Cancel):
		m.filtering = false
		m.filter.Blur()
		m.filter.Reset()
		m.cursor, m.offset = 0, 0
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.cursor, m.offset = 0, 0
	return m, cmd
}

func (m *Model) toggleFavorite() {
	coins := m.visibleCoins()
	if m.cursor < 0 || m.cursor >= len(coins) {
		return
	}
	id := coins[m.cursor].ID
	if m.favorites[id] {
		delete(m.favorites, id)
		return
	}
	m.favorites[id] = true
}

func (m *Model) visibleRows() int {
	rows := m.height - 8
	if rows < 1 {
		rows = 1
	}
	return rows
}

// clampCursor keeps the selection inside the filtered listing and scrolls it
// into view.
func (m *Model) clampCursor() {
	n := len(m.visibleCoins())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	last := max(n-rows, 0)
	if m.offset > last {
		m.offset = last
	}
}
