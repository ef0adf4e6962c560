package present

import (
	"context"
	"errors"
	"io"

	"github.com/mithrel/oceannotes/internal/notes"
	"github.com/mithrel/oceannotes/internal/present/format"
	"github.com/mithrel/oceannotes/internal/present/tui"
	"github.com/mithrel/oceannotes/internal/render"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeNDJSON
	ModeTUI
	ModeHTML
)

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
	Renderer   render.Renderer
	TUI        tui.Options
}

// ParseMode parses a string like "plain", "pretty", "json", "ndjson", "tui", "html".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "plain":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "json":
		return ModeJSON, true
	case "ndjson":
		return ModeNDJSON, true
	case "tui":
		return ModeTUI, true
	case "html":
		return ModeHTML, true
	default:
		return ModePlain, false
	}
}

// RenderNotes renders a list of notes according to options. The TUI mode
// needs st to open, create and delete notes interactively.
func RenderNotes(ctx context.Context, w io.Writer, st tui.Store, ns []notes.Note, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONNotes(w, ns, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONNotes(w, ns)
	case ModeTUI:
		t := opts.TUI
		t.Headers = opts.Headers
		return tui.RenderTable(ctx, st, ns, t)
	case ModeHTML:
		return errors.New("html output is only supported for a single note")
	default:
		// Pretty list falls back to plain; glamour is used per note.
		return format.WritePlainNotes(w, ns, opts.Headers)
	}
}

// RenderNote renders a single note according to options.
func RenderNote(w io.Writer, n notes.Note, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONNote(w, n, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONNote(w, n)
	case ModePretty:
		return format.WritePrettyNote(w, n)
	case ModeHTML:
		return format.WriteHTMLNote(w, n.Title, n.Content, opts.Renderer)
	case ModeTUI:
		return errors.New("tui output is not supported for a single note; use note edit")
	default:
		return format.WritePlainNote(w, n, opts.Headers)
	}
}
