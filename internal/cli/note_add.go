package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/oceannotes/internal/editor"
	"github.com/mithrel/oceannotes/internal/present/tui"
)

// newNoteAddCmd registers `note add`, but doesn't own wiring; parent calls it.
func newNoteAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new note",
		Args:  cobra.ArbitraryArgs,
		RunE:  runNoteAdd, // shared with parent
	}
	addNoteAddFlags(cmd)
	return cmd
}

func addNoteAddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("content", "c", "", "note content for one-liner add")
	cmd.Flags().Bool("edit", false, "open the new note in the interactive editor")
}

// runNoteAdd is the default behavior used by both parent RunE and `note add`.
func runNoteAdd(cmd *cobra.Command, args []string) error {
	app := getApp(cmd)
	ctx := cmd.Context()
	content, _ := cmd.Flags().GetString("content")
	openEditor, _ := cmd.Flags().GetBool("edit")

	// One-liner flow
	if len(args) > 0 {
		title := strings.TrimSpace(strings.Join(args, " "))
		n, err := app.Store.Create(ctx, title, content)
		if err != nil {
			return err
		}
		if openEditor {
			return tui.RunEditor(ctx, app.Store, n, tui.EditorOptions{Autosave: app.AutosaveOptions(), Log: app.Log})
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n.ID, n.Title)
		return nil
	}

	// Editor flow: nothing is stored until the buffer has a title.
	title, body, changed, err := editor.EditNote(ctx, "", "", content)
	if err != nil {
		return err
	}
	if !changed && content == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No edits; nothing added.")
		return nil
	}
	if title == "" {
		title = editor.FirstLine(body)
	}
	if title == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Note aborted: empty content.")
		return nil
	}
	n, err := app.Store.Create(ctx, title, body)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n.ID, n.Title)
	return nil
}
