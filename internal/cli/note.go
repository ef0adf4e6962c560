package cli

import (
	"github.com/spf13/cobra"
)

// newNoteCmd defines the parent "note" command.
// Running "ocean-cli note <title>" adds a note.
func newNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note [title]",
		Short: "Work with notes (default: add one-liner)",
		Args:  cobra.ArbitraryArgs,
		RunE:  runNoteAdd,
	}
	addNoteAddFlags(cmd)

	// Attach subcommands under note
	cmd.AddCommand(newNoteAddCmd())
	cmd.AddCommand(newNoteEditCmd())
	cmd.AddCommand(newNoteShowCmd())
	cmd.AddCommand(newNoteListCmd())
	cmd.AddCommand(newNoteDeleteCmd())

	return cmd
}
