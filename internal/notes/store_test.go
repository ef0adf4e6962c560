package notes

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mithrel/oceannotes/internal/kv"
)

// testClock hands out strictly increasing instants one millisecond apart.
type testClock struct{ t time.Time }

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func newTestStore(t interface{ Helper() }, opts ...Option) (*Store, *kv.Mem) {
	t.Helper()
	mem := kv.NewMem()
	seq := 0
	base := []Option{
		WithClock(newTestClock().Now),
		WithIDFunc(func() string { seq++; return fmt.Sprintf("n%03d", seq) }),
	}
	return NewStore(mem, append(base, opts...)...), mem
}

func TestCreateThenGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	n, err := s.Create(ctx, "  Groceries  ", "- milk")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", n.Title)
	assert.Equal(t, "- milk", n.Content)
	assert.True(t, n.CreatedAt.Equal(n.UpdatedAt))

	got, err := s.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, n.Title, got.Title)
	assert.Equal(t, n.Content, got.Content)
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := s.Create(ctx, title, "body")
		assert.ErrorIs(t, err, ErrValidation)
	}
	_, err := mem.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, kv.ErrNotFound, "nothing may be written on validation failure")
}

func TestUpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	n, err := s.Create(ctx, "Title", "old")
	require.NoError(t, err)

	u, err := s.Update(ctx, n.ID, Patch{Content: Str("new")})
	require.NoError(t, err)
	assert.Equal(t, "Title", u.Title)
	assert.Equal(t, "new", u.Content)
	assert.True(t, u.CreatedAt.Equal(n.CreatedAt))
	assert.True(t, u.UpdatedAt.After(n.UpdatedAt))

	u2, err := s.Update(ctx, n.ID, Patch{Title: Str("")})
	require.NoError(t, err)
	assert.Equal(t, "", u2.Title, "titles may be emptied after creation")
	assert.Equal(t, "new", u2.Content)
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	_, err := s.Update(ctx, "nope", Patch{Title: Str("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "update must not create")
}

func TestUpdatedAtNeverMovesBackwards(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s, _ := newTestStore(t, WithClock(clock))

	n, err := s.Create(ctx, "T", "")
	require.NoError(t, err)

	now = now.Add(-time.Hour)
	u, err := s.Update(ctx, n.ID, Patch{Content: Str("x")})
	require.NoError(t, err)
	assert.True(t, u.UpdatedAt.Equal(n.UpdatedAt))
	assert.False(t, u.UpdatedAt.Before(u.CreatedAt))
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	n, err := s.Create(ctx, "Doomed", "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, n.ID))
	_, err = s.Get(ctx, n.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(ctx, n.ID))
	assert.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestListKeepsInsertionOrderAndCopies(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	for _, title := range []string{"b", "a", "c"} {
		_, err := s.Create(ctx, title, "")
		require.NoError(t, err)
	}
	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{all[0].Title, all[1].Title, all[2].Title})

	all[0].Title = "mutated"
	again, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", again[0].Title)
}

func TestEnsureSeeded(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.EnsureSeeded(ctx))
	require.NoError(t, s.EnsureSeeded(ctx))
	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultSeeds), "second call must not duplicate samples")

	for _, n := range all {
		require.NoError(t, s.Delete(ctx, n.ID))
	}
	require.NoError(t, s.EnsureSeeded(ctx))
	all, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "samples must not reappear after the user deleted everything")
}

func TestEnsureSeededKeepsExistingNotes(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, WithSeeds([]Seed{{Title: "Sample"}}))
	_, err := s.Create(ctx, "Mine", "")
	require.NoError(t, err)

	require.NoError(t, s.EnsureSeeded(ctx))
	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Mine", all[0].Title)
	assert.Equal(t, "Sample", all[1].Title)
}

func TestCorruptStateRecoversAsUnseeded(t *testing.T) {
	ctx := context.Background()
	var reported []error
	s, mem := newTestStore(t, WithCorruptionHandler(func(err error) { reported = append(reported, err) }))
	require.NoError(t, mem.Set(ctx, DefaultKey, []byte("{not json")))

	all, err := s.List(ctx)
	require.NoError(t, err, "corruption must not fail the triggering operation")
	assert.Empty(t, all)
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], ErrCorrupt)
	var cerr *CorruptionError
	require.True(t, errors.As(reported[0], &cerr))
	assert.Equal(t, DefaultKey, cerr.Key)

	backup, err := mem.Get(ctx, DefaultKey+".corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(backup))

	require.NoError(t, s.EnsureSeeded(ctx))
	all, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultSeeds))
}

func TestWrongShapeIsCorruption(t *testing.T) {
	ctx := context.Background()
	for name, blob := range map[string]string{
		"missing id":   `{"seeded":true,"notes":[{"title":"x","createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}]}`,
		"duplicate id": `{"seeded":true,"notes":[{"id":"a","createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"},{"id":"a","createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}]}`,
		"no timestamps": `{"seeded":true,"notes":[{"id":"a","title":"x"}]}`,
		"wrong type":   `{"seeded":"yes","notes":{}}`,
	} {
		t.Run(name, func(t *testing.T) {
			count := 0
			s, mem := newTestStore(t, WithCorruptionHandler(func(error) { count++ }))
			require.NoError(t, mem.Set(ctx, DefaultKey, []byte(blob)))
			all, err := s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
			assert.Equal(t, 1, count)
		})
	}
}

func TestWriteFailureIsSurfaced(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	n, err := s.Create(ctx, "Keep", "v1")
	require.NoError(t, err)

	mem.FailSet = errors.New("disk full")
	_, err = s.Create(ctx, "Lost", "")
	assert.ErrorIs(t, err, ErrWrite)
	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, "create", werr.Op)

	_, err = s.Update(ctx, n.ID, Patch{Content: Str("v2")})
	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorIs(t, s.Delete(ctx, n.ID), ErrWrite)

	mem.FailSet = nil
	got, err := s.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Content, "failed writes leave durable state untouched")
}

func TestStoreSurvivesReopenOnSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ocean.db")

	backend, err := kv.OpenSQLite(ctx, path)
	require.NoError(t, err)
	s := NewStore(backend)
	require.NoError(t, s.EnsureSeeded(ctx))
	n, err := s.Create(ctx, "Persisted", "body")
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	backend, err = kv.OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	s = NewStore(backend)
	require.NoError(t, s.EnsureSeeded(ctx))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultSeeds)+1)
	got, err := s.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", got.Title)
	assert.True(t, n.CreatedAt.Equal(got.CreatedAt))
}

func titleGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z0-9][A-Za-z0-9 ]{0,40}`)
}

func contentGenerator() *rapid.Generator[string] {
	return rapid.OneOf(rapid.Just(""), rapid.String())
}

func TestCreateGetProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		s, _ := newTestStore(t)
		title := titleGenerator().Draw(t, "title")
		content := contentGenerator().Draw(t, "content")

		n, err := s.Create(ctx, title, content)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		got, err := s.Get(ctx, n.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Content != content || got.ID != n.ID || got.Title != n.Title {
			t.Fatalf("round trip mismatch: %+v vs %+v", got, n)
		}
		if !got.CreatedAt.Equal(got.UpdatedAt) {
			t.Fatalf("createdAt %s != updatedAt %s", got.CreatedAt, got.UpdatedAt)
		}
	})
}

func TestUpdateContentProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		s, _ := newTestStore(t)
		n, err := s.Create(ctx, titleGenerator().Draw(t, "title"), contentGenerator().Draw(t, "content"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		x := contentGenerator().Draw(t, "x")
		u, err := s.Update(ctx, n.ID, Patch{Content: &x})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if u.Title != n.Title || !u.CreatedAt.Equal(n.CreatedAt) || u.Content != x {
			t.Fatalf("update changed more than content: %+v -> %+v", n, u)
		}
		if u.UpdatedAt.Before(n.UpdatedAt) {
			t.Fatalf("updatedAt went backwards: %s -> %s", n.UpdatedAt, u.UpdatedAt)
		}
	})
}
