package notes

import (
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"
)

// Note is the only persisted entity. ID and CreatedAt never change after
// creation; UpdatedAt moves forward on every successful mutation.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch carries the fields an update sets; nil fields keep their value.
type Patch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Hash returns a deterministic BLAKE3 hash over every field of the note.
func (n Note) Hash() string {
	h := blake3.New()

	h.Write([]byte(n.ID))
	h.Write([]byte{0})
	h.Write([]byte(n.Title))
	h.Write([]byte{0})
	h.Write([]byte(n.Content))
	h.Write([]byte{0})

	// Timestamps in RFC3339Nano (UTC)
	if !n.CreatedAt.IsZero() {
		h.Write([]byte(n.CreatedAt.UTC().Format(time.RFC3339Nano)))
	}
	h.Write([]byte{0})
	if !n.UpdatedAt.IsZero() {
		h.Write([]byte(n.UpdatedAt.UTC().Format(time.RFC3339Nano)))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Str is a convenience for building a Patch from literals.
func Str(s string) *string { return &s }
