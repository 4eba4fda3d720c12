package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/jaskgrid/internal/grid"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	currentPage   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// cell pads or truncates s to width w using the column alignment.
func cell(s string, w int, align grid.Align) string {
	if w <= 0 {
		w = lipgloss.Width(s)
	}
	pos := lipgloss.Left
	switch align {
	case grid.AlignCenter:
		pos = lipgloss.Center
	case grid.AlignRight:
		pos = lipgloss.Right
	}
	if r := []rune(s); len(r) > w {
		s = string(r[:w-1]) + "…"
	}
	return lipgloss.NewStyle().Width(w).Align(pos).Render(s)
}
