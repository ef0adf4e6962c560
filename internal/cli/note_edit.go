package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/oceannotes/internal/editor"
	"github.com/mithrel/oceannotes/internal/notes"
	"github.com/mithrel/oceannotes/internal/present/tui"
)

func newNoteEditCmd() *cobra.Command {
	var external bool
	cmd := &cobra.Command{
		Use:               "edit <id>",
		Short:             "Edit an existing note",
		Long:              "Without flags the note opens in the interactive editor, which autosaves shortly after you stop typing.\n--title and --content apply a one-shot update; --external uses $VISUAL/$EDITOR.",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeNoteIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			ctx := cmd.Context()
			cur, err := app.Store.Get(ctx, args[0])
			if err != nil {
				return err
			}

			var patch notes.Patch
			if cmd.Flags().Changed("title") {
				t, _ := cmd.Flags().GetString("title")
				patch.Title = &t
			}
			if cmd.Flags().Changed("content") {
				c, _ := cmd.Flags().GetString("content")
				patch.Content = &c
			}
			if patch.Title != nil || patch.Content != nil {
				n, err := app.Store.Update(ctx, cur.ID, patch)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n.ID, n.Title)
				return nil
			}

			if !external {
				return tui.RunEditor(ctx, app.Store, cur, tui.EditorOptions{Autosave: app.AutosaveOptions(), Log: app.Log})
			}

			title, body, changed, err := editor.EditNote(ctx, cur.ID, cur.Title, cur.Content)
			if err != nil {
				return err
			}
			if !changed {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
				return nil
			}
			if title == "" && strings.TrimSpace(body) == "" {
				if app.Cfg.GetBool("editor.delete_empty") {
					if err := app.Store.Delete(ctx, cur.ID); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Note ID %s deleted (left empty).\n", cur.ID)
					return nil
				}
				return fmt.Errorf("edit aborted: empty content")
			}
			if title == "" {
				title = editor.FirstLine(body)
			}
			n, err := app.Store.Update(ctx, cur.ID, notes.Patch{Title: &title, Content: &body})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n.ID, n.Title)
			return nil
		},
	}
	cmd.Flags().String("title", "", "set the title without opening an editor")
	cmd.Flags().String("content", "", "set the content without opening an editor")
	cmd.Flags().BoolVar(&external, "external", false, "edit in $VISUAL/$EDITOR instead of the interactive editor")
	return cmd
}
