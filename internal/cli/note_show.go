package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/oceannotes/internal/present"
)

func newNoteShowCmd() *cobra.Command {
	var (
		outputMode string
		noHeaders  bool
	)
	cmd := &cobra.Command{
		Use:               "show <id>",
		Short:             "Display a note",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeNoteIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			n, err := app.Store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			mode, ok := present.ParseMode(strings.ToLower(outputMode))
			if !ok || mode == present.ModeTUI {
				return fmt.Errorf("invalid --output: %s", outputMode)
			}
			opts := present.Options{Mode: mode, Headers: !noHeaders, Renderer: app.Renderer()}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderNote(w, n, opts)
			})
		},
	}
	cmd.Flags().StringVar(&outputMode, "output", defaultShowOutput(), "output mode: plain|pretty|json|ndjson|html")
	cmd.Flags().BoolVar(&noHeaders, "noheaders", false, "print only the content (plain)")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"plain", "pretty", "json", "ndjson", "html"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

