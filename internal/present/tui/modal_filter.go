package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

// filterModal is a foreground modal with inputs to filter the list view.
type filterModal struct {
	query  textinput.Model
	since  textinput.Model
	until  textinput.Model
	width  int
	height int
	padX   int
	padY   int
	box    lipglossv2.Style
	focus  int
}

func newFilterModal(query, since, until string, termW, termH int) *filterModal {
	m := &filterModal{padX: 2, padY: 1}
	m.query = newFilterInput("search: ", "words in title or content", query)
	m.since = newFilterInput("since: ", "2h | 2026-10-01T14:30", since)
	m.until = newFilterInput("until: ", "3d | 2026-10-18", until)
	m.setFocus(0)
	m.resizeForTerm(termW, termH)
	return m
}

func newFilterInput(prompt, placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	ti.SetValue(value)
	return ti
}

func (m *filterModal) inputs() []*textinput.Model {
	return []*textinput.Model{&m.query, &m.since, &m.until}
}

func (m *filterModal) resizeForTerm(termW, termH int) {
	if termW <= 0 || termH <= 0 {
		termW, termH = 80, 24
	}
	w := int(float64(termW) * 0.6)
	if termW < 80 {
		w = termW - 4
	}
	if w < 46 {
		w = max(42, termW-2)
	}
	if w > 90 {
		w = 90
	}
	h := 11
	if termH < 14 {
		h = max(9, termH-1)
	}
	m.width, m.height = w, h
	m.box = lipglossv2.NewStyle().
		Width(w).
		Height(h).
		Padding(m.padY, m.padX).
		Border(lipglossv2.RoundedBorder()).
		BorderForeground(lipglossv2.Color("63"))

	innerW := w - 2 - m.padX*2
	minW := 12
	if innerW < minW {
		innerW = minW
	}
	for _, in := range m.inputs() {
		in.Width = max(minW, innerW-lipgloss.Width(in.Prompt))
	}
}

func (m *filterModal) setFocus(idx int) {
	m.focus = idx
	for i, in := range m.inputs() {
		if i == idx {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (m *filterModal) values() (query, since, until string) {
	return strings.TrimSpace(m.query.Value()), strings.TrimSpace(m.since.Value()), strings.TrimSpace(m.until.Value())
}

func (m *filterModal) update(msg tea.Msg) (*filterModal, tea.Cmd) {
	n := len(m.inputs())
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.resizeForTerm(x.Width, x.Height)
		return m, nil
	case tea.KeyMsg:
		switch x.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % n)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + n - 1) % n)
			return m, nil
		}
	}
	in := m.inputs()[m.focus]
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m *filterModal) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("Filter notes")
	help := lipgloss.NewStyle().Faint(true).Render("enter=apply • esc=cancel • tab=next • ctrl+x=clear")
	body := strings.Join([]string{
		header,
		"",
		m.query.View(),
		m.since.View(),
		m.until.View(),
		"",
		help,
	}, "\n")
	return m.box.Render(body)
}
