package autosave

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/oceannotes/internal/eventloop"
	"github.com/mithrel/oceannotes/internal/kv"
	"github.com/mithrel/oceannotes/internal/notes"
)

// countingStore records every patch that reaches the note store.
type countingStore struct {
	*notes.Store
	patches []notes.Patch
	fail    error
}

func (c *countingStore) Update(ctx context.Context, id string, p notes.Patch) (notes.Note, error) {
	c.patches = append(c.patches, p)
	if c.fail != nil {
		return notes.Note{}, c.fail
	}
	return c.Store.Update(ctx, id, p)
}

type fixture struct {
	store *countingStore
	clock *eventloop.Manual
	sess  *Session
	note  notes.Note
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	st := notes.NewStore(kv.NewMem(),
		notes.WithClock(func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Second) }),
		notes.WithIDFunc(func() string { return fmt.Sprintf("note-%d", tick) }),
	)
	n, err := st.Create(ctx, "Draft", "")
	require.NoError(t, err)

	f := &fixture{store: &countingStore{Store: st}, clock: eventloop.NewManual(), note: n}
	f.sess = New(ctx, f.store, n, f.clock, f.clock, opts...)
	return f
}

func (f *fixture) persisted(t *testing.T) notes.Note {
	t.Helper()
	n, err := f.store.Get(context.Background(), f.note.ID)
	require.NoError(t, err)
	return n
}

func TestBurstOfEditsSavesOnceWithLastState(t *testing.T) {
	f := newFixture(t)

	f.sess.SetContent("a")
	f.clock.Advance(10 * time.Millisecond)
	f.sess.SetContent("ab")
	f.clock.Advance(10 * time.Millisecond)
	f.sess.SetContent("abc")

	f.clock.Advance(699 * time.Millisecond)
	assert.Zero(t, f.clock.PendingJobs(), "must wait the full window after the last edit")
	assert.Equal(t, 1, f.clock.PendingTimers())

	f.clock.Advance(time.Millisecond)
	require.Equal(t, 1, f.clock.PendingJobs())
	f.clock.Drain()

	require.Len(t, f.store.patches, 1)
	assert.Equal(t, "abc", f.persisted(t).Content)
	assert.False(t, f.sess.Dirty())

	f.clock.Advance(5 * time.Second)
	assert.Zero(t, f.clock.PendingJobs())
	assert.Len(t, f.store.patches, 1)
}

func TestExplicitSaveBypassesTimer(t *testing.T) {
	f := newFixture(t)

	f.sess.SetContent("a")
	f.clock.Advance(5 * time.Millisecond)
	require.NoError(t, f.sess.Save())
	assert.Zero(t, f.clock.PendingTimers(), "explicit save cancels the debounce timer")
	require.Equal(t, 1, f.clock.PendingJobs())
	f.clock.Drain()

	assert.Equal(t, "a", f.persisted(t).Content)
	f.clock.Advance(time.Second)
	assert.Len(t, f.store.patches, 1, "no stale save after the timer was superseded")
}

func TestSaveOnCleanBufferIsNoop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sess.Save())
	assert.Zero(t, f.clock.PendingJobs())

	f.sess.SetContent("x")
	f.sess.SetContent("")
	assert.False(t, f.sess.Dirty())
	assert.Zero(t, f.clock.PendingTimers(), "returning to the saved value disarms the timer")
}

func TestPatchCarriesOnlyChangedFields(t *testing.T) {
	f := newFixture(t)
	f.sess.SetTitle("Renamed")
	require.NoError(t, f.sess.Save())
	f.clock.Drain()

	require.Len(t, f.store.patches, 1)
	p := f.store.patches[0]
	require.NotNil(t, p.Title)
	assert.Equal(t, "Renamed", *p.Title)
	assert.Nil(t, p.Content)
}

func TestInFlightSavesCoalesce(t *testing.T) {
	f := newFixture(t)

	f.sess.SetContent("one")
	require.NoError(t, f.sess.Save())
	assert.True(t, f.sess.State().Saving)

	f.sess.SetContent("two")
	require.NoError(t, f.sess.Save())
	f.sess.SetContent("three")
	require.NoError(t, f.sess.Save())
	assert.Equal(t, 1, f.clock.PendingJobs(), "never two writes at once")

	require.True(t, f.clock.Step())
	assert.Equal(t, 1, f.clock.PendingJobs(), "one follow-up for all coalesced requests")
	f.clock.Drain()

	require.Len(t, f.store.patches, 2)
	assert.Equal(t, "three", f.persisted(t).Content)
	assert.False(t, f.sess.Dirty())
	assert.False(t, f.sess.State().Saving)
}

func TestFollowUpSkippedWhenAlreadyClean(t *testing.T) {
	f := newFixture(t)
	f.sess.SetContent("one")
	require.NoError(t, f.sess.Save())
	f.sess.SetContent("two")
	require.NoError(t, f.sess.Save())
	f.sess.SetContent("one")

	f.clock.Drain()
	assert.Len(t, f.store.patches, 1)
	assert.False(t, f.sess.Dirty())
}

func TestRevertDuringInFlightSaveIsPersisted(t *testing.T) {
	f := newFixture(t)

	f.sess.SetContent("ab")
	f.clock.Advance(DefaultDelay)
	require.Equal(t, 1, f.clock.PendingJobs())
	// back to the value the running write is replacing
	f.sess.SetContent("")
	f.clock.Drain()
	assert.True(t, f.sess.Dirty())
	assert.Equal(t, 1, f.clock.PendingTimers())

	f.clock.Advance(5 * time.Second)
	f.clock.Drain()
	assert.Equal(t, "", f.persisted(t).Content)
	assert.False(t, f.sess.Dirty())
	assert.Len(t, f.store.patches, 2)
}

func TestExplicitSaveOfRevertDuringInFlightSave(t *testing.T) {
	f := newFixture(t)

	f.sess.SetContent("ab")
	require.NoError(t, f.sess.Save())
	f.sess.SetContent("")
	require.NoError(t, f.sess.Save())
	assert.Zero(t, f.clock.PendingTimers())

	require.True(t, f.clock.Step())
	assert.Equal(t, 1, f.clock.PendingJobs(), "follow-up writes the reverted buffer")
	f.clock.Drain()
	assert.Equal(t, "", f.persisted(t).Content)
	assert.False(t, f.sess.Dirty())
}

func TestCloseCancelsTimerAndIgnoresLateResult(t *testing.T) {
	f := newFixture(t)
	var states []State
	f.sess.Subscribe(func(s State) { states = append(states, s) })

	f.sess.SetContent("saved before close")
	require.NoError(t, f.sess.Save())
	f.sess.SetContent("typed after save")
	f.sess.Close()
	seen := len(states)

	assert.Zero(t, f.clock.PendingTimers())
	f.clock.Drain()
	f.clock.Advance(time.Minute)

	assert.Len(t, f.store.patches, 1)
	assert.Equal(t, "saved before close", f.persisted(t).Content, "in-flight write still completes")
	assert.Len(t, states, seen, "no notifications after close")
	assert.ErrorIs(t, f.sess.Save(), ErrClosed)

	f.sess.SetContent("ignored")
	title, content := f.sess.Buffer()
	assert.Equal(t, "Draft", title)
	assert.Equal(t, "typed after save", content)
	f.sess.Close()
}

func TestWriteFailureIsReportedNotRetried(t *testing.T) {
	f := newFixture(t)
	f.store.fail = &notes.WriteError{Op: "update", Err: errors.New("quota exceeded")}

	f.sess.SetContent("doomed")
	f.clock.Advance(DefaultDelay)
	f.clock.Drain()

	st := f.sess.State()
	assert.ErrorIs(t, st.Err, notes.ErrWrite)
	assert.True(t, st.Dirty)
	f.clock.Advance(time.Minute)
	assert.Len(t, f.store.patches, 1, "no automatic retry")

	f.store.fail = nil
	f.sess.SetContent("doomed!")
	f.clock.Advance(DefaultDelay)
	f.clock.Drain()
	assert.NoError(t, f.sess.State().Err)
	assert.Equal(t, "doomed!", f.persisted(t).Content)
}

func TestSaveRequestedDuringFailedWriteIsRescheduled(t *testing.T) {
	f := newFixture(t)
	f.store.fail = &notes.WriteError{Op: "update", Err: errors.New("disk full")}

	f.sess.SetContent("first")
	require.NoError(t, f.sess.Save())
	f.sess.SetContent("second")
	require.NoError(t, f.sess.Save())
	assert.Zero(t, f.clock.PendingTimers())

	f.clock.Drain()
	require.Len(t, f.store.patches, 1, "the failed write itself is not retried")
	assert.ErrorIs(t, f.sess.State().Err, notes.ErrWrite)
	assert.Equal(t, 1, f.clock.PendingTimers())

	f.store.fail = nil
	f.clock.Advance(DefaultDelay)
	f.clock.Drain()
	assert.Len(t, f.store.patches, 2)
	assert.Equal(t, "second", f.persisted(t).Content)
	assert.NoError(t, f.sess.State().Err)
}

func TestSubscribersSeeDirtyAndTimestampChanges(t *testing.T) {
	f := newFixture(t, WithDelay(50*time.Millisecond))
	var states []State
	unsub := f.sess.Subscribe(func(s State) { states = append(states, s) })

	f.sess.SetContent("x")
	f.sess.SetContent("xy")
	f.clock.Advance(50 * time.Millisecond)
	f.clock.Drain()

	require.Len(t, states, 3)
	assert.Equal(t, State{Dirty: true, UpdatedAt: f.note.UpdatedAt}, states[0])
	assert.True(t, states[1].Saving)
	assert.False(t, states[2].Dirty)
	assert.False(t, states[2].Saving)
	assert.True(t, states[2].UpdatedAt.After(f.note.UpdatedAt))

	unsub()
	f.sess.SetContent("z")
	assert.Len(t, states, 3)
}

func TestSessionOnRealLoop(t *testing.T) {
	loop := eventloop.New(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	st := notes.NewStore(kv.NewMem())
	n, err := st.Create(ctx, "Loop", "")
	require.NoError(t, err)

	var sess *Session
	saved := make(chan State, 8)
	require.NoError(t, loop.Do(ctx, func() {
		sess = New(ctx, st, n, loop, loop, WithDelay(10*time.Millisecond))
		sess.Subscribe(func(s State) {
			if !s.Dirty && !s.Saving {
				saved <- s
			}
		})
		sess.SetContent("hello")
	}))

	select {
	case <-saved:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced save never completed")
	}
	got, err := st.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
}
