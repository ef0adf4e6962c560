package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mithrel/oceannotes/internal/notes"
)

// Store is the slice of the note store the TUI drives.
type Store interface {
	List(ctx context.Context) ([]notes.Note, error)
	Get(ctx context.Context, id string) (notes.Note, error)
	Create(ctx context.Context, title, content string) (notes.Note, error)
	Update(ctx context.Context, id string, p notes.Patch) (notes.Note, error)
	Delete(ctx context.Context, id string) error
}

// listResultMsg conveys the outcome of reloading the list.
type listResultMsg struct {
	notes []notes.Note
	err   error
	dur   time.Duration
}

// deleteResultMsg conveys the outcome of a delete operation back to Update.
type deleteResultMsg struct {
	id  string
	err error
	dur time.Duration
}

// createResultMsg carries a freshly created note to open in the editor.
type createResultMsg struct {
	note notes.Note
	err  error
	dur  time.Duration
}

// openResultMsg carries the latest persisted copy of a note to edit.
type openResultMsg struct {
	note notes.Note
	err  error
}

// editorClosedMsg is emitted by the editor once its session has ended.
type editorClosedMsg struct {
	id      string
	deleted bool
}

func listCmd(ctx context.Context, st Store) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ns, err := st.List(ctx)
		return listResultMsg{notes: ns, err: err, dur: time.Since(start)}
	}
}

func deleteCmd(ctx context.Context, st Store, id string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := st.Delete(ctx, id)
		return deleteResultMsg{id: id, err: err, dur: time.Since(start)}
	}
}

func createCmd(ctx context.Context, st Store, title string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		n, err := st.Create(ctx, title, "")
		return createResultMsg{note: n, err: err, dur: time.Since(start)}
	}
}

func openCmd(ctx context.Context, st Store, id string) tea.Cmd {
	return func() tea.Msg {
		n, err := st.Get(ctx, id)
		return openResultMsg{note: n, err: err}
	}
}
