package eventloop

import (
	"time"
)

// Dispatcher binds timers and background work to whatever thread post
// delivers to. Callbacks always run through post, never on the timer or
// worker goroutine.
type Dispatcher struct {
	post func(func())
}

func NewDispatcher(post func(func())) *Dispatcher {
	return &Dispatcher{post: post}
}

// AfterFunc runs fn on the dispatch thread once d has elapsed. The returned
// cancel must be called from the dispatch thread; after it returns fn will
// not run, even if the timer already fired and its callback is queued.
func (d *Dispatcher) AfterFunc(delay time.Duration, fn func()) (cancel func()) {
	canceled := false
	t := time.AfterFunc(delay, func() {
		d.post(func() {
			if !canceled {
				fn()
			}
		})
	})
	return func() {
		canceled = true
		t.Stop()
	}
}

// Execute runs work on its own goroutine and delivers done on the dispatch
// thread afterwards.
func (d *Dispatcher) Execute(work func(), done func()) {
	go func() {
		work()
		d.post(done)
	}()
}
