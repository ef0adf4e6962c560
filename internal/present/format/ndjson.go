package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/oceannotes/internal/notes"
)

// WriteNDJSONNotes writes notes as newline-delimited JSON objects.
func WriteNDJSONNotes(w io.Writer, ns []notes.Note) error {
	enc := json.NewEncoder(w)
	for _, n := range ns {
		if err := enc.Encode(withHash(n)); err != nil {
			return err
		}
	}
	return nil
}

// WriteNDJSONNote writes a single note as one JSON line.
func WriteNDJSONNote(w io.Writer, n notes.Note) error {
	return json.NewEncoder(w).Encode(withHash(n))
}
