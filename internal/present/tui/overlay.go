package tui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss/v2"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
)

var confirmStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("196")).
	Padding(0, 2)

// overlay dims base and centers fg over it on a termW x termH canvas. The
// dialog is measured from fg and clamped to the canvas.
func overlay(base, fg string, termW, termH int) string {
	if termW <= 0 {
		termW = fallbackWidth
	}
	if termH <= 0 {
		termH = fallbackHeight
	}
	w := min(lipgloss.Width(fg), termW)
	h := min(lipgloss.Height(fg), termH)

	back := lipgloss.NewLayer(lipgloss.NewStyle().Faint(true).Render(base)).
		Width(termW).
		Height(termH)
	front := lipgloss.NewLayer(fg).
		Width(w).
		Height(h).
		X(max(0, (termW-w)/2)).
		Y(max(0, (termH-h)/2))
	return lipgloss.NewCanvas(back, front).Render()
}

// confirmDialog asks before a note is deleted.
func confirmDialog(title string) string {
	if title == "" {
		title = "Untitled"
	}
	return confirmStyle.Render("Delete " + strconv.Quote(title) + "?\n\ny confirm • any other key cancels")
}
