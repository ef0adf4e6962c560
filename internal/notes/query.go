package notes

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mithrel/oceannotes/internal/util"
)

// SortMode orders a note listing.
type SortMode string

const (
	SortUpdatedDesc SortMode = "updated_desc"
	SortUpdatedAsc  SortMode = "updated_asc"
	SortTitleAsc    SortMode = "title_asc"
)

// SortModes lists the accepted modes, default first.
var SortModes = []SortMode{SortUpdatedDesc, SortUpdatedAsc, SortTitleAsc}

// ParseSortMode accepts the mode names above; empty selects updated_desc.
func ParseSortMode(s string) (SortMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortUpdatedDesc, nil
	}
	for _, m := range SortModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown sort mode %q", ErrValidation, s)
}

// Filter keeps notes whose title or content contains query, case-insensitively.
// An empty query returns a copy of the input.
func Filter(ns []Note, query string) []Note {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Note, 0, len(ns))
	for _, n := range ns {
		if q == "" || strings.Contains(strings.ToLower(n.Title+"\n"+n.Content), q) {
			out = append(out, n)
		}
	}
	return out
}

// FuzzyFilter ranks notes by fuzzy title match, best first. Notes that do
// not match at all are dropped.
func FuzzyFilter(ns []Note, query string) []Note {
	if strings.TrimSpace(query) == "" {
		return append([]Note(nil), ns...)
	}
	titles := make([]string, len(ns))
	for i, n := range ns {
		titles[i] = n.Title
	}
	idx := util.RankIndices(query, titles)
	out := make([]Note, 0, len(idx))
	for _, i := range idx {
		out = append(out, ns[i])
	}
	return out
}

// SortBy sorts ns in place. Ties fall back to id so output is stable.
func SortBy(ns []Note, mode SortMode) {
	less := func(a, b Note) bool { return a.UpdatedAt.After(b.UpdatedAt) }
	switch mode {
	case SortUpdatedAsc:
		less = func(a, b Note) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case SortTitleAsc:
		less = func(a, b Note) bool {
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if at != bt {
				return at < bt
			}
			return a.Title < b.Title
		}
	}
	sort.SliceStable(ns, func(i, j int) bool {
		if less(ns[i], ns[j]) {
			return true
		}
		if less(ns[j], ns[i]) {
			return false
		}
		return ns[i].ID < ns[j].ID
	})
}

// UpdatedBetween keeps notes whose UpdatedAt lies in [since, until]. A zero
// bound is open.
func UpdatedBetween(ns []Note, since, until time.Time) []Note {
	out := make([]Note, 0, len(ns))
	for _, n := range ns {
		if !since.IsZero() && n.UpdatedAt.Before(since) {
			continue
		}
		if !until.IsZero() && n.UpdatedAt.After(until) {
			continue
		}
		out = append(out, n)
	}
	return out
}
