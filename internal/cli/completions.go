package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/oceannotes/internal/util"
)

const maxIDCompletions = 20

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
	}

	gen := []struct {
		shell string
		run   func(cmd *cobra.Command) error
	}{
		{"bash", func(cmd *cobra.Command) error { return cmd.Root().GenBashCompletion(cmd.OutOrStdout()) }},
		{"zsh", func(cmd *cobra.Command) error { return cmd.Root().GenZshCompletion(cmd.OutOrStdout()) }},
		{"fish", func(cmd *cobra.Command) error { return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true) }},
	}
	for _, g := range gen {
		run := g.run
		cmd.AddCommand(&cobra.Command{
			Use:         g.shell,
			Short:       fmt.Sprintf("Generate %s completions", g.shell),
			Args:        cobra.NoArgs,
			Annotations: map[string]string{skipApp: "config"},
			RunE:        func(cmd *cobra.Command, args []string) error { return run(cmd) },
		})
	}
	return cmd
}

// completeNoteIDs offers note ids ranked by a fuzzy match of the typed text
// against "id title". Descriptions carry the title.
func completeNoteIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// completion runs without PersistentPreRunE
	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	app := getApp(cmd)
	defer app.Close()
	ns, err := app.Store.List(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	taken := make(map[string]bool, len(args))
	for _, a := range args {
		taken[a] = true
	}
	cands := make([]string, 0, len(ns))
	titles := make(map[string]string, len(ns))
	for _, n := range ns {
		if taken[n.ID] {
			continue
		}
		key := n.ID + " " + n.Title
		cands = append(cands, key)
		titles[key] = n.Title
	}
	ranked := util.ScoreCompletions(toComplete, cands, maxIDCompletions)
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		id, _, _ := strings.Cut(r, " ")
		out = append(out, id+"\t"+titles[r])
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
