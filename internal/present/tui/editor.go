package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/mithrel/oceannotes/internal/autosave"
	"github.com/mithrel/oceannotes/internal/notes"
	"github.com/mithrel/oceannotes/internal/present/format"
)

const (
	focusTitle = iota
	focusBody
)

// editorModel edits one note through an autosave session. It is used by
// pointer so session callbacks and the model see the same state.
type editorModel struct {
	ctx     context.Context
	store   Store
	sess    *autosave.Session
	unsub   func()
	state   autosave.State
	title   textinput.Model
	body    textarea.Model
	preview viewport.Model

	focus         int
	showPreview   bool
	confirmDelete bool
	closing       bool
	deleted       bool
	done          bool
	status        string
	width         int
	height        int
}

func newEditorModel(ctx context.Context, st Store, n notes.Note, sched autosave.Scheduler, exec autosave.Executor, opts ...autosave.Option) *editorModel {
	m := &editorModel{ctx: ctx, store: st}
	m.sess = autosave.New(ctx, st, n, sched, exec, opts...)
	m.state = m.sess.State()
	m.unsub = m.sess.Subscribe(func(s autosave.State) { m.state = s })

	m.title = textinput.New()
	m.title.Prompt = "Title: "
	m.title.Placeholder = "Untitled"
	m.title.SetValue(n.Title)

	m.body = textarea.New()
	m.body.Placeholder = "Write in markdown…"
	m.body.ShowLineNumbers = false
	m.body.CharLimit = 0
	m.body.SetValue(n.Content)

	m.preview = viewport.New(80, 10)
	m.setFocus(focusBody)
	m.resize(80, 24)
	return m
}

func (m *editorModel) setFocus(f int) {
	m.focus = f
	if f == focusTitle {
		m.title.Focus()
		m.body.Blur()
		return
	}
	m.title.Blur()
	m.body.Focus()
}

func (m *editorModel) resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	m.width, m.height = w, h
	m.title.Width = max(10, w-lipgloss.Width(m.title.Prompt)-1)
	bodyH := max(3, h-4)
	if m.showPreview {
		half := max(20, w/2)
		m.body.SetWidth(half - 1)
		m.preview.Width = max(10, w-half)
		m.preview.Height = bodyH
	} else {
		m.body.SetWidth(w)
	}
	m.body.SetHeight(bodyH)
	m.refreshPreview()
}

func (m *editorModel) refreshPreview() {
	if !m.showPreview {
		return
	}
	out, err := format.PreviewMarkdown(m.body.Value(), max(20, m.preview.Width-2))
	if err != nil {
		out = m.body.Value()
	}
	m.preview.SetContent(out)
}

// sync pushes the widgets' values into the session as one edit.
func (m *editorModel) sync() {
	m.sess.SetBuffer(m.title.Value(), m.body.Value())
}

func (m *editorModel) Init() tea.Cmd { return textarea.Blink }

func (m *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runMsg:
		msg()
		return m, m.maybeFinish()
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case deleteResultMsg:
		if msg.err != nil {
			m.status = "Delete failed: " + msg.err.Error()
			return m, nil
		}
		m.deleted = true
		return m, m.finish()
	case tea.KeyMsg:
		if m.confirmDelete {
			return m, m.handleConfirm(msg)
		}
		switch msg.String() {
		case "ctrl+s":
			if err := m.sess.Save(); err != nil {
				m.status = err.Error()
			}
			return m, nil
		case "tab", "shift+tab":
			if m.focus == focusTitle {
				m.setFocus(focusBody)
			} else {
				m.setFocus(focusTitle)
			}
			return m, nil
		case "ctrl+p":
			m.showPreview = !m.showPreview
			m.resize(m.width, m.height)
			return m, nil
		case "ctrl+d":
			m.confirmDelete = true
			m.status = "Delete this note? (y/n)"
			return m, nil
		case "esc", "ctrl+c", "ctrl+q":
			m.closing = true
			// queues behind a running write, no-op when clean
			_ = m.sess.Save()
			return m, m.maybeFinish()
		}
	}

	var cmd tea.Cmd
	if m.focus == focusTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.body, cmd = m.body.Update(msg)
	}
	m.sync()
	m.refreshPreview()
	return m, cmd
}

func (m *editorModel) handleConfirm(msg tea.KeyMsg) tea.Cmd {
	m.confirmDelete = false
	m.status = ""
	if strings.EqualFold(msg.String(), "y") {
		// no autosave may follow the delete
		m.sess.Close()
		m.status = "Deleting…"
		return deleteCmd(m.ctx, m.store, m.sess.ID())
	}
	return nil
}

// maybeFinish ends the session once a requested close has nothing left to
// write. A failed save leaves the editor open so the error is visible.
func (m *editorModel) maybeFinish() tea.Cmd {
	if !m.closing || m.done {
		return nil
	}
	if m.state.Saving {
		return nil
	}
	if m.state.Err != nil && m.sess.Dirty() {
		m.closing = false
		return nil
	}
	return m.finish()
}

func (m *editorModel) finish() tea.Cmd {
	m.done = true
	if m.unsub != nil {
		m.unsub()
	}
	m.sess.Close()
	id, deleted := m.sess.ID(), m.deleted
	return func() tea.Msg { return editorClosedMsg{id: id, deleted: deleted} }
}

var (
	editorHelp   = lipgloss.NewStyle().Faint(true)
	editorStatus = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	editorError  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func (m *editorModel) View() string {
	body := m.body.View()
	if m.showPreview {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", m.preview.View())
	}
	status := saveStatus(m.state)
	style := editorStatus
	if m.state.Err != nil {
		style = editorError
	}
	if m.status != "" {
		status = m.status + " • " + status
	}
	help := editorHelp.Render("ctrl+s save • tab switch field • ctrl+p preview • ctrl+d delete • esc close")
	view := strings.Join([]string{m.title.View(), body, style.Render(status), help}, "\n")
	if m.confirmDelete {
		return overlay(view, confirmDialog(m.title.Value()), m.width, m.height)
	}
	return view
}

// EditorOptions configures RunEditor.
type EditorOptions struct {
	Autosave []autosave.Option
	Log      *zap.Logger
}

// RunEditor opens the interactive editor for n until the user closes it.
func RunEditor(ctx context.Context, st Store, n notes.Note, opts EditorOptions) error {
	ref := &programRef{}
	d := ref.dispatcher()
	m := newEditorModel(ctx, st, n, d, d, opts.Autosave...)
	p := tea.NewProgram(standalone{m}, tea.WithAltScreen(), tea.WithContext(ctx))
	ref.p = p
	_, err := p.Run()
	if !m.done {
		m.sess.Close()
	}
	if opts.Log != nil && m.state.Err != nil {
		opts.Log.Warn("editor closed with unsaved changes", zap.String("id", n.ID), zap.Error(m.state.Err))
	}
	return err
}

// standalone quits the program once its editor reports it is done.
type standalone struct{ *editorModel }

func (s standalone) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(editorClosedMsg); ok {
		return s, tea.Quit
	}
	_, cmd := s.editorModel.Update(msg)
	return s, cmd
}
