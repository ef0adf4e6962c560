package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mithrel/oceannotes/internal/render"
)

func newRenderCmd() *cobra.Command {
	var sanitize bool
	var maxHeading int
	cmd := &cobra.Command{
		Use:         "render [file|-]",
		Short:       "Render note markup to HTML",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipApp: "1"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			src, err := io.ReadAll(in)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-heading") {
				maxHeading = getConfig(cmd).GetInt("render.max_heading")
			}
			html := render.Renderer{MaxHeading: maxHeading}.Render(string(src))
			if sanitize {
				html = render.Sanitize(html)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
			return err
		},
	}
	cmd.Flags().BoolVar(&sanitize, "sanitize", false, "pass the output through the HTML whitelist")
	cmd.Flags().IntVar(&maxHeading, "max-heading", render.MaxHeading, "deepest heading level to emit (1-6)")
	return cmd
}
