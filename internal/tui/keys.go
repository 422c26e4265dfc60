package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextTab  key.Binding
	Prices   key.Binding
	Board    key.Binding
	Rates    key.Binding
	Currency key.Binding
	Refresh  key.Binding
	Up       key.Binding
	Down     key.Binding
	Filter   key.Binding
	Favorite key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
	Prices:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "prices")),
	Board:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "dashboard")),
	Rates:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "rates")),
	Currency: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "currency")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll")),
	Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Favorite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
	Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) helpLine(v view, filtering bool) string {
	bindings := []key.Binding{k.NextTab, k.Currency, k.Refresh, k.Up, k.Quit}
	switch {
	case filtering:
		bindings = []key.Binding{k.Confirm, k.Cancel}
	case v == viewDashboard:
		bindings = []key.Binding{k.NextTab, k.Filter, k.Favorite, k.Up, k.Currency, k.Quit}
	}
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
