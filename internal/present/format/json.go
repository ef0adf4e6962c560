package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/oceannotes/internal/notes"
)

// noteJSON adds the content hash clients use for change detection.
type noteJSON struct {
	notes.Note
	Hash string `json:"hash"`
}

func withHash(n notes.Note) noteJSON { return noteJSON{Note: n, Hash: n.Hash()} }

func WriteJSONNotes(w io.Writer, ns []notes.Note, indent bool) error {
	out := make([]noteJSON, 0, len(ns))
	for _, n := range ns {
		out = append(out, withHash(n))
	}
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func WriteJSONNote(w io.Writer, n notes.Note, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(withHash(n))
}
