// Package eventloop provides the single logical thread the note store and
// editing sessions run on, plus scheduling helpers bound to it.
package eventloop

import (
	"context"
	"errors"
)

var ErrStopped = errors.New("eventloop: loop is not running")

// Loop runs posted functions one at a time, in arrival order, on the
// goroutine that called Run.
type Loop struct {
	queue chan func()
	done  chan struct{}
	*Dispatcher
}

// New creates a loop with room for buffer queued functions before Post blocks.
func New(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 64
	}
	l := &Loop{queue: make(chan func(), buffer), done: make(chan struct{})}
	l.Dispatcher = NewDispatcher(l.enqueue)
	return l
}

// Run drains the queue until ctx is canceled. Functions still queued at that
// point are dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post queues fn. It reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

func (l *Loop) enqueue(fn func()) { l.Post(fn) }

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() { fn(); close(finished) }) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		// fn may have been the last thing to run
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stopped is closed when Run returns.
func (l *Loop) Stopped() <-chan struct{} { return l.done }
