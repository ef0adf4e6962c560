package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/mithrel/oceannotes/internal/notes"
)

// PreviewMarkdown renders note content for a terminal of the given width.
func PreviewMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// WritePrettyNote renders a single note with markdown formatting using glamour.
func WritePrettyNote(w io.Writer, n notes.Note) error {
	md := fmt.Sprintf(`# %s

> **ID:** %s | **Updated:** %s

---

%s
`, n.Title, n.ID, n.UpdatedAt.Local().Format(time.RFC3339), strings.TrimSpace(n.Content))

	out, err := PreviewMarkdown(md, 80)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
