// Package autosave coordinates saving of one note's live edit buffer.
//
// A Session is not safe for concurrent use. All of its methods, and every
// callback it hands to its Scheduler and Executor, must run on one thread of
// control, typically an eventloop.Loop or a bubbletea program.
package autosave

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mithrel/oceannotes/internal/notes"
)

// DefaultDelay is the quiescence window after the last edit before a save fires.
const DefaultDelay = 700 * time.Millisecond

var ErrClosed = errors.New("autosave: session closed")

// Updater is the part of the note store a session writes through.
type Updater interface {
	Update(ctx context.Context, id string, p notes.Patch) (notes.Note, error)
}

// Scheduler arms a one-shot timer whose callback runs on the session's thread.
// Calling cancel guarantees fn will not run afterwards.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// Executor runs work away from the session's thread and then runs done on it.
type Executor interface {
	Execute(work func(), done func())
}

// State is what subscribers are told about.
type State struct {
	Dirty     bool
	Saving    bool
	UpdatedAt time.Time
	Err       error
}

type snapshot struct {
	title, content string
	updatedAt      time.Time
}

type Session struct {
	ctx   context.Context
	id    string
	store Updater
	sched Scheduler
	exec  Executor
	delay time.Duration
	log   *zap.Logger

	title, content string
	saved          snapshot

	cancelTimer func()
	inFlight    bool
	pending     bool
	closed      bool
	lastErr     error

	subs    []subscriber
	nextSub int
	last    State
}

type subscriber struct {
	id int
	fn func(State)
}

type Option func(*Session)

func WithDelay(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.delay = d
		}
	}
}

func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.log = l } }

// New starts an editing session over n, which must be the note as currently
// persisted. Writes are issued with a context detached from ctx's
// cancellation so an in-flight save always runs to completion.
func New(ctx context.Context, store Updater, n notes.Note, sched Scheduler, exec Executor, opts ...Option) *Session {
	s := &Session{
		ctx:     context.WithoutCancel(ctx),
		id:      n.ID,
		store:   store,
		sched:   sched,
		exec:    exec,
		delay:   DefaultDelay,
		title:   n.Title,
		content: n.Content,
		saved:   snapshot{title: n.Title, content: n.Content, updatedAt: n.UpdatedAt},
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.With(zap.String("note", n.ID))
	s.last = s.State()
	return s
}

func (s *Session) ID() string { return s.id }

// Buffer returns the live title and content.
func (s *Session) Buffer() (title, content string) { return s.title, s.content }

func (s *Session) SetTitle(title string) { s.edit(title, s.content) }

func (s *Session) SetContent(content string) { s.edit(s.title, content) }

// SetBuffer replaces both fields as a single edit.
func (s *Session) SetBuffer(title, content string) { s.edit(title, content) }

// Dirty reports whether the buffer differs from the last persisted values.
func (s *Session) Dirty() bool {
	return s.title != s.saved.title || s.content != s.saved.content
}

func (s *Session) State() State {
	return State{Dirty: s.Dirty(), Saving: s.inFlight, UpdatedAt: s.saved.updatedAt, Err: s.lastErr}
}

// Subscribe registers fn to be called with the new State whenever any of its
// fields change. The returned func removes the subscription.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Save persists the buffer now and cancels any pending debounce timer. A
// clean buffer is a no-op. While a save is in flight the request is
// recorded and a single follow-up save runs once it completes, if the buffer
// still differs from what that save wrote.
func (s *Session) Save() error {
	if s.closed {
		return ErrClosed
	}
	s.stopTimer()
	if s.inFlight {
		s.pending = true
		s.log.Debug("save coalesced behind in-flight write")
		return nil
	}
	if !s.Dirty() {
		return nil
	}
	s.start()
	return nil
}

// Close ends the session. Pending timers are canceled and a save already in
// flight completes without touching the session. Close is idempotent.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.stopTimer()
	s.closed = true
	s.pending = false
	s.subs = nil
	s.log.Debug("autosave session closed", zap.Bool("dirty", s.Dirty()))
}

func (s *Session) Closed() bool { return s.closed }

func (s *Session) edit(title, content string) {
	if s.closed || (title == s.title && content == s.content) {
		return
	}
	s.title, s.content = title, content
	s.stopTimer()
	// saved is stale while a write is in flight, so any edit counts
	if s.inFlight || s.Dirty() {
		s.armTimer()
	}
	s.notify()
}

func (s *Session) armTimer() {
	s.stopTimer()
	s.cancelTimer = s.sched.AfterFunc(s.delay, s.fire)
}

func (s *Session) fire() {
	s.cancelTimer = nil
	if err := s.Save(); err != nil {
		s.log.Debug("debounced save skipped", zap.Error(err))
	}
}

func (s *Session) stopTimer() {
	if s.cancelTimer != nil {
		s.cancelTimer()
		s.cancelTimer = nil
	}
}

func (s *Session) start() {
	var p notes.Patch
	if s.title != s.saved.title {
		p.Title = notes.Str(s.title)
	}
	if s.content != s.saved.content {
		p.Content = notes.Str(s.content)
	}
	s.inFlight = true
	s.lastErr = nil

	var (
		saved notes.Note
		err   error
	)
	s.exec.Execute(
		func() { saved, err = s.store.Update(s.ctx, s.id, p) },
		func() { s.finish(saved, err) },
	)
	s.notify()
}

func (s *Session) finish(n notes.Note, err error) {
	s.inFlight = false
	if s.closed {
		return
	}
	if err != nil {
		// the failed write is not retried; a save requested meanwhile
		// goes back through the debounce window
		s.lastErr = err
		s.log.Warn("autosave failed", zap.Error(err))
		if s.pending {
			s.pending = false
			if s.cancelTimer == nil && s.Dirty() {
				s.armTimer()
			}
		}
		s.notify()
		return
	}
	s.saved = snapshot{title: n.Title, content: n.Content, updatedAt: n.UpdatedAt}
	s.log.Debug("autosaved", zap.Time("updated_at", n.UpdatedAt))
	switch {
	case !s.Dirty():
		s.pending = false
		s.stopTimer()
	case s.pending:
		s.pending = false
		s.stopTimer()
		s.start()
		return
	case s.cancelTimer == nil:
		s.armTimer()
	}
	s.notify()
}

func (s *Session) notify() {
	st := s.State()
	if st.Dirty == s.last.Dirty && st.Saving == s.last.Saving &&
		st.UpdatedAt.Equal(s.last.UpdatedAt) && st.Err == s.last.Err {
		return
	}
	s.last = st
	for _, sub := range append([]subscriber(nil), s.subs...) {
		sub.fn(st)
	}
}
