package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/oceannotes/internal/notes"
	"github.com/mithrel/oceannotes/internal/present"
	"github.com/mithrel/oceannotes/internal/present/tui"
	"github.com/mithrel/oceannotes/internal/util"
)

// FilterOpts holds the selection flags shared by list-like commands.
type FilterOpts struct {
	Query string
	Fuzzy bool
	Since string
	Until string
}

func addFilterFlags(cmd *cobra.Command, f *FilterOpts) {
	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "only notes whose title or content contains this text")
	cmd.Flags().BoolVar(&f.Fuzzy, "fuzzy", false, "fuzzy-match --query against titles, best match first")
	cmd.Flags().StringVar(&f.Since, "since", "", "only notes updated at or after this time (e.g. 2d, 2026-01-02)")
	cmd.Flags().StringVar(&f.Until, "until", "", "only notes updated at or before this time")
}

// apply narrows ns by the filter flags.
func (f FilterOpts) apply(ns []notes.Note, now time.Time) ([]notes.Note, error) {
	if f.Fuzzy {
		ns = notes.FuzzyFilter(ns, f.Query)
	} else {
		ns = notes.Filter(ns, f.Query)
	}
	if f.Since == "" && f.Until == "" {
		return ns, nil
	}
	since, until, err := util.TimeRange(f.Since, f.Until, now)
	if err != nil {
		return nil, err
	}
	return notes.UpdatedBetween(ns, since, until), nil
}

func newNoteListCmd() *cobra.Command {
	var filters FilterOpts
	var outputMode string
	var sortMode string
	var noHeaders bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			mode, ok := present.ParseMode(strings.ToLower(outputMode))
			if !ok || mode == present.ModeHTML {
				return fmt.Errorf("invalid --output: %s", outputMode)
			}
			if sortMode == "" {
				sortMode = app.Cfg.GetString("list.sort")
			}
			order, err := notes.ParseSortMode(sortMode)
			if err != nil {
				return err
			}

			start := time.Now()
			all, err := app.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			dur := time.Since(start)

			if mode == present.ModeTUI {
				// the browser applies filters itself so they can be edited live
				opts := present.Options{
					Mode:    mode,
					Headers: !noHeaders,
					TUI: tui.Options{
						Sort:            order,
						Query:           filters.Query,
						Since:           filters.Since,
						Until:           filters.Until,
						InitialStatus:   "loaded successfully",
						InitialDuration: dur,
						Autosave:        app.AutosaveOptions(),
					},
				}
				return present.RenderNotes(cmd.Context(), cmd.OutOrStdout(), app.Store, all, opts)
			}

			ns, err := filters.apply(all, time.Now())
			if err != nil {
				return err
			}
			if !filters.Fuzzy || filters.Query == "" {
				notes.SortBy(ns, order)
			}
			opts := present.Options{
				Mode:       mode,
				JSONIndent: false, // pretty-print via external tools like jq
				Headers:    !noHeaders,
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderNotes(cmd.Context(), w, app.Store, ns, opts)
			})
		},
	}
	addFilterFlags(cmd, &filters)
	cmd.Flags().StringVar(&outputMode, "output", defaultListOutput(), "output mode: plain|json|ndjson|tui")
	cmd.Flags().StringVar(&sortMode, "sort", "", "sort order: updated_desc|updated_asc|title_asc (default from list.sort)")
	cmd.Flags().BoolVar(&noHeaders, "noheaders", false, "hide column headers (plain/tui)")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"plain", "json", "ndjson", "tui"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("sort", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, len(notes.SortModes))
		for i, m := range notes.SortModes {
			out[i] = string(m)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
