package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Quit        key.Binding
	Search      key.Binding
	Sort        key.Binding
	Filter      key.Binding
	ClearFilter key.Binding
	PrevPage    key.Binding
	NextPage    key.Binding
	Up          key.Binding
	Down        key.Binding
	Grow        key.Binding
	Shrink      key.Binding
	Toggle      key.Binding
	ToggleAll   key.Binding
	Columns     key.Binding
	ExportCSV   key.Binding
	ExportYAML  key.Binding
	Review      key.Binding
	Prune       key.Binding
	SavePrefs   key.Binding
	Reload      key.Binding
	Apply       key.Binding
	Cancel      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Sort:        key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "sort")),
		Filter:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "category")),
		ClearFilter: key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "clear filters")),
		PrevPage:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "page")),
		NextPage:    key.NewBinding(key.WithKeys("right", "l")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("j/k", "navigate")),
		Down:        key.NewBinding(key.WithKeys("down", "j")),
		Grow:        key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "rows")),
		Shrink:      key.NewBinding(key.WithKeys("-")),
		Toggle:      key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "select")),
		ToggleAll:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
		Columns:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "columns")),
		ExportCSV:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "csv")),
		ExportYAML:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yaml")),
		Review:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "mark reviewed")),
		Prune:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "prune")),
		SavePrefs:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save view")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Apply:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Search, k.Sort, k.Filter, k.PrevPage, k.Grow, k.Toggle, k.ToggleAll,
		k.Columns, k.ExportCSV, k.ExportYAML, k.Review, k.Quit,
	}
}

func (k keyMap) SearchHelp() []key.Binding {
	return []key.Binding{k.Apply, k.Cancel}
}

var (
	helpKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	helpDescStyle = lipgloss.NewStyle().Faint(true)
)

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" && h.Desc == "" {
			continue
		}
		parts = append(parts, helpKeyStyle.Render(h.Key)+" "+helpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
