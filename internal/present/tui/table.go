package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/oceannotes/internal/autosave"
	"github.com/mithrel/oceannotes/internal/notes"
	"github.com/mithrel/oceannotes/internal/present/format"
	"github.com/mithrel/oceannotes/internal/util"
)

// Options configures the note browser.
type Options struct {
	Headers         bool
	Sort            notes.SortMode
	Query           string
	Since, Until    string
	InitialStatus   string
	InitialDuration time.Duration
	Autosave        []autosave.Option
}

// RenderTable opens an interactive Bubble Tea table to browse, open, create
// and delete notes. ns is the initial listing; the table reloads from st
// after every change.
func RenderTable(ctx context.Context, st Store, ns []notes.Note, opts Options) error {
	ref := &programRef{}
	m := newModel(ctx, st, ns, opts, ref)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	ref.p = p
	final, err := p.Run()
	if fm, ok := final.(*model); ok && fm.editor != nil && !fm.editor.done {
		fm.editor.sess.Close()
	}
	return err
}

type model struct {
	ctx     context.Context
	store   Store
	ref     *programRef
	opts    Options
	table   table.Model
	all     []notes.Note
	visible []notes.Note
	sort    notes.SortMode
	query   string
	since   string
	until   string

	editor        *editorModel
	filter        *filterModal
	viewer        *noteModal
	confirmDelete string

	width        int
	height       int
	status       string
	lastDuration time.Duration
}

func newModel(ctx context.Context, st Store, ns []notes.Note, opts Options, ref *programRef) *model {
	mode := opts.Sort
	if mode == "" {
		mode = notes.SortUpdatedDesc
	}
	m := &model{
		ctx:          ctx,
		store:        st,
		ref:          ref,
		opts:         opts,
		all:          ns,
		sort:         mode,
		query:        opts.Query,
		since:        opts.Since,
		until:        opts.Until,
		status:       opts.InitialStatus,
		lastDuration: opts.InitialDuration,
	}
	m.initTable()
	return m
}

func (m *model) initTable() {
	cols := m.columnsFor(m.opts.Headers, 12, 40, 30, 16)
	m.table = table.New(table.WithColumns(cols), table.WithFocused(true))
	m.applyFilters()
	m.applyStyles()
}

// applyFilters recomputes the visible rows from the full listing.
func (m *model) applyFilters() {
	vis := notes.Filter(m.all, m.query)
	if m.since != "" || m.until != "" {
		since, until, err := util.TimeRange(m.since, m.until, time.Now())
		if err != nil {
			m.status = "Bad time filter: " + err.Error()
		} else {
			vis = notes.UpdatedBetween(vis, since, until)
		}
	}
	notes.SortBy(vis, m.sort)
	m.visible = vis
	m.updateRows()
}

func (m *model) updateRows() {
	rows := make([]table.Row, 0, len(m.visible))
	for _, n := range m.visible {
		rows = append(rows, table.Row{
			n.ID,
			n.Title,
			format.Snippet(n.Content),
			n.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func (m *model) selected() (notes.Note, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return notes.Note{}, false
	}
	return m.visible[idx], true
}

func (m *model) openEditor(n notes.Note) tea.Cmd {
	d := m.ref.dispatcher()
	m.editor = newEditorModel(m.ctx, m.store, n, d, d, m.opts.Autosave...)
	m.editor.resize(m.width, m.height)
	return m.editor.Init()
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.applyLayout()
		if m.editor != nil {
			m.editor.resize(ws.Width, ws.Height)
		}
		if m.viewer != nil {
			m.viewer.resizeForTerm(ws.Width, ws.Height)
		}
		if m.filter != nil {
			m.filter.resizeForTerm(ws.Width, ws.Height)
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case editorClosedMsg:
		m.editor = nil
		if msg.deleted {
			m.status = "Deleted " + msg.id
		}
		return m, listCmd(m.ctx, m.store)
	case listResultMsg:
		if msg.err != nil {
			m.status = "Reload failed: " + msg.err.Error()
			return m, nil
		}
		m.all = msg.notes
		m.lastDuration = msg.dur
		m.applyFilters()
		return m, nil
	case createResultMsg:
		if msg.err != nil {
			m.status = "Create failed: " + msg.err.Error()
			return m, nil
		}
		m.lastDuration = msg.dur
		return m, m.openEditor(msg.note)
	case openResultMsg:
		if msg.err != nil {
			m.status = "Open failed: " + msg.err.Error()
			return m, listCmd(m.ctx, m.store)
		}
		return m, m.openEditor(msg.note)
	}

	if m.editor != nil {
		_, cmd := m.editor.Update(msg)
		return m, cmd
	}
	if run, ok := msg.(runMsg); ok {
		// late callback from a closed session
		run()
		return m, nil
	}

	switch msg := msg.(type) {
	case deleteResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Delete failed: %v", msg.err)
			m.lastDuration = msg.dur
			return m, nil
		}
		m.status = "Deleted " + msg.id
		m.lastDuration = msg.dur
		return m, listCmd(m.ctx, m.store)
	case tea.KeyMsg:
		if m.viewer != nil {
			switch msg.String() {
			case "q", "esc", "v":
				m.viewer = nil
				return m, nil
			}
			var cmd tea.Cmd
			m.viewer, cmd = m.viewer.update(msg)
			return m, cmd
		}
		if m.filter != nil {
			return m, m.updateFilter(msg)
		}
		if m.confirmDelete != "" {
			id := m.confirmDelete
			m.confirmDelete = ""
			if strings.EqualFold(msg.String(), "y") {
				m.status = fmt.Sprintf("Deleting %s…", id)
				return m, deleteCmd(m.ctx, m.store, id)
			}
			m.status = ""
			return m, nil
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c", "ctrl+q":
			return m, tea.Quit
		case "enter":
			if n, ok := m.selected(); ok {
				return m, openCmd(m.ctx, m.store, n.ID)
			}
			return m, nil
		case "n":
			return m, createCmd(m.ctx, m.store, "Untitled note")
		case "v", " ":
			if n, ok := m.selected(); ok {
				m.viewer = newNoteModal(n, m.width, m.height)
			}
			return m, nil
		case "d":
			if n, ok := m.selected(); ok {
				m.confirmDelete = n.ID
				m.status = fmt.Sprintf("Delete %q? (y/n)", n.Title)
			}
			return m, nil
		case "/":
			m.filter = newFilterModal(m.query, m.since, m.until, m.width, m.height)
			return m, nil
		case "s":
			m.sort = nextSort(m.sort)
			m.status = "Sort: " + string(m.sort)
			m.applyFilters()
			return m, nil
		case "r":
			return m, listCmd(m.ctx, m.store)
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+q":
		m.filter = nil
		return nil
	case "ctrl+x":
		m.filter = nil
		m.query, m.since, m.until = "", "", ""
		m.applyFilters()
		return nil
	case "enter":
		m.query, m.since, m.until = m.filter.values()
		m.filter = nil
		m.status = ""
		m.applyFilters()
		return nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.update(msg)
	return cmd
}

func nextSort(cur notes.SortMode) notes.SortMode {
	for i, s := range notes.SortModes {
		if s == cur {
			return notes.SortModes[(i+1)%len(notes.SortModes)]
		}
	}
	return notes.SortUpdatedDesc
}

func (m *model) renderFooter() string {
	left := "↑/↓ navigate • enter=edit • n=new • v=view • d=delete • /=filter • s=sort • q=exit"

	var right string
	if m.status != "" {
		if m.lastDuration > 0 {
			right = fmt.Sprintf("%s (%s) • ", m.status, m.lastDuration.Round(time.Microsecond))
		} else {
			right = m.status + " • "
		}
	}
	if len(m.visible) != len(m.all) {
		right += fmt.Sprintf("%d/%d notes ", len(m.visible), len(m.all))
	} else {
		right += fmt.Sprintf("%d notes ", len(m.all))
	}

	width := m.table.Width()
	space := width - lipgloss.Width(left) - lipgloss.Width(right)
	if space < 1 {
		space = 1
	}
	return left + strings.Repeat(" ", space) + right
}

func (m *model) View() string {
	if m.editor != nil {
		return m.editor.View()
	}
	var base string
	if len(m.visible) == 0 {
		base = "(no notes) press n to create one\n" + m.renderFooter() + "\n"
	} else {
		base = m.table.View() + "\n" + m.renderFooter() + "\n"
	}
	switch {
	case m.viewer != nil:
		return overlay(base, m.viewer.View(), m.width, m.height)
	case m.filter != nil:
		return overlay(base, m.filter.View(), m.width, m.height)
	case m.confirmDelete != "":
		return overlay(base, confirmDialog(m.titleOf(m.confirmDelete)), m.width, m.height)
	}
	return base
}

func (m *model) titleOf(id string) string {
	for _, n := range m.all {
		if n.ID == id {
			return n.Title
		}
	}
	return id
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	h := max(6, m.height-1)
	m.table.SetHeight(h)
	m.table.SetWidth(m.width)
	pad := 4
	avail := m.width - pad
	if avail < 40 {
		return
	}
	minIDWidth := 8
	fullIDWidth := 36
	idW := fullIDWidth
	if avail < fullIDWidth+60 {
		idW = minIDWidth
	}
	updatedW := 16
	rem := avail - idW - updatedW
	if rem < 20 {
		rem = 20
	}
	snippetW := rem / 2
	titleW := rem - snippetW
	if titleW < 8 {
		titleW = 8
	}
	if snippetW < 8 {
		snippetW = 8
	}
	m.table.SetColumns(m.columnsFor(m.opts.Headers, idW, titleW, snippetW, updatedW))
}

func (m *model) applyStyles() {
	s := table.DefaultStyles()
	if m.opts.Headers {
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
	} else {
		// Minimize header prominence when disabled
		s.Header = s.Header.
			BorderBottom(false).
			Bold(false)
	}
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
}

// columnsFor returns columns with or without titles based on headers flag.
func (m *model) columnsFor(headers bool, idW, titleW, snippetW, updatedW int) []table.Column {
	if headers {
		return []table.Column{
			{Title: "ID", Width: idW},
			{Title: "Title", Width: titleW},
			{Title: "Snippet", Width: snippetW},
			{Title: "Updated", Width: updatedW},
		}
	}
	return []table.Column{
		{Title: "", Width: idW},
		{Title: "", Width: titleW},
		{Title: "", Width: snippetW},
		{Title: "", Width: updatedW},
	}
}
