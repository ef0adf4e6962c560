package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mithrel/oceannotes/internal/notes"
)

// TSV columns: id, title, updated (RFC3339, local), first content line
var headerLine = "id\ttitle\tupdated\tsnippet\n"

const snippetLen = 48

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

// Snippet returns the first non-blank line of content, truncated.
func Snippet(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > snippetLen {
			return string(r[:snippetLen-1]) + "…"
		}
		return line
	}
	return ""
}

func plainLine(n notes.Note) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\n",
		esc(n.ID), esc(n.Title), n.UpdatedAt.Local().Format(time.RFC3339), esc(Snippet(n.Content)))
}

func WritePlainNotes(w io.Writer, ns []notes.Note, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, headerLine)
	}
	for _, n := range ns {
		_, _ = io.WriteString(tw, plainLine(n))
	}
	return tw.Flush()
}

// WritePlainNote prints the header block followed by the raw content.
func WritePlainNote(w io.Writer, n notes.Note, headers bool) error {
	if headers {
		if _, err := fmt.Fprintf(w, "ID:      %s\nTitle:   %s\nCreated: %s\nUpdated: %s\n\n",
			n.ID, n.Title, n.CreatedAt.Local().Format(time.RFC3339), n.UpdatedAt.Local().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	content := n.Content
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	_, err := io.WriteString(w, content)
	return err
}
