package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mithrel/oceannotes/internal/autosave"
	"github.com/mithrel/oceannotes/internal/eventloop"
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// runMsg carries a callback from a timer or background save back onto the
// program's Update loop, which is the editing session's thread.
type runMsg func()

// programRef lets the dispatcher reach a program created after the model.
type programRef struct{ p *tea.Program }

func (r *programRef) post(fn func()) {
	if r.p != nil {
		r.p.Send(runMsg(fn))
	}
}

func (r *programRef) dispatcher() *eventloop.Dispatcher {
	return eventloop.NewDispatcher(r.post)
}

// saveStatus is the one-line indicator shown under the editor.
func saveStatus(s autosave.State) string {
	var b strings.Builder
	switch {
	case s.Err != nil:
		b.WriteString(fmt.Sprintf("Save failed: %v", s.Err))
	case s.Saving:
		b.WriteString("Saving…")
	case s.Dirty:
		b.WriteString("Unsaved changes…")
	default:
		b.WriteString("All changes saved.")
	}
	if !s.UpdatedAt.IsZero() {
		b.WriteString(" • Last saved: ")
		b.WriteString(lastSaved(s.UpdatedAt, time.Now()))
	}
	return b.String()
}

// lastSaved shows a clock time for today and a date otherwise.
func lastSaved(t, now time.Time) string {
	t = t.Local()
	now = now.Local()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04:05")
	}
	return t.Format("2006-01-02 15:04")
}
