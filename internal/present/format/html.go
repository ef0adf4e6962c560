package format

import (
	"fmt"
	"html"
	"io"

	"github.com/mithrel/oceannotes/internal/render"
)

// WriteHTMLNote writes the note as a standalone HTML fragment: an escaped
// title heading followed by the rendered content.
func WriteHTMLNote(w io.Writer, title, content string, r render.Renderer) error {
	_, err := fmt.Fprintf(w, "<article>\n<header><h1>%s</h1></header>\n%s\n</article>\n",
		html.EscapeString(title), r.Render(content))
	return err
}
