package notes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNotes() []Note {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []Note{
		{ID: "a", Title: "Shopping list", Content: "- Milk\n- Eggs", UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "b", Title: "markdown tips", Content: "Use **bold**", UpdatedAt: base},
		{ID: "c", Title: "Meeting", Content: "call Bob about eggs", UpdatedAt: base.Add(time.Hour)},
		{ID: "d", Title: "Meeting", Content: "", UpdatedAt: base.Add(time.Hour)},
	}
}

func ids(ns []Note) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

func TestParseSortMode(t *testing.T) {
	m, err := ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortUpdatedDesc, m)

	m, err = ParseSortMode(" Title_Asc ")
	require.NoError(t, err)
	assert.Equal(t, SortTitleAsc, m)

	_, err = ParseSortMode("random")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSortBy(t *testing.T) {
	tests := []struct {
		mode SortMode
		want []string
	}{
		{SortUpdatedDesc, []string{"a", "c", "d", "b"}},
		{SortUpdatedAsc, []string{"b", "c", "d", "a"}},
		{SortTitleAsc, []string{"b", "c", "d", "a"}},
	}
	for _, tc := range tests {
		t.Run(string(tc.mode), func(t *testing.T) {
			ns := sampleNotes()
			SortBy(ns, tc.mode)
			assert.Equal(t, tc.want, ids(ns))
		})
	}
}

func TestFilter(t *testing.T) {
	ns := sampleNotes()
	assert.Equal(t, []string{"a", "c"}, ids(Filter(ns, "EGGS")))
	assert.Equal(t, []string{"b"}, ids(Filter(ns, "markdown")))
	assert.Len(t, Filter(ns, "  "), len(ns))
	assert.Empty(t, Filter(ns, "zebra"))
}

func TestFuzzyFilter(t *testing.T) {
	ns := sampleNotes()
	got := FuzzyFilter(ns, "shp")
	require.NotEmpty(t, got)
	assert.Equal(t, "a", got[0].ID)
	assert.Empty(t, FuzzyFilter(ns, "qqq"))
	assert.Len(t, FuzzyFilter(ns, ""), len(ns))
}

func TestUpdatedBetween(t *testing.T) {
	ns := sampleNotes()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, []string{"a", "c", "d"}, ids(UpdatedBetween(ns, base.Add(time.Minute), time.Time{})))
	assert.Equal(t, []string{"b", "c", "d"}, ids(UpdatedBetween(ns, time.Time{}, base.Add(time.Hour))))
	assert.Len(t, UpdatedBetween(ns, time.Time{}, time.Time{}), len(ns))
}

func TestNoteHash(t *testing.T) {
	n := sampleNotes()[0]
	h := n.Hash()
	assert.Len(t, h, 64)
	assert.Equal(t, h, n.Hash())

	m := n
	m.Content += "!"
	assert.NotEqual(t, h, m.Hash())

	m = n
	m.UpdatedAt = m.UpdatedAt.Add(time.Nanosecond)
	assert.NotEqual(t, h, m.Hash())
}
