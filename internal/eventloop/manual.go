package eventloop

import (
	"sort"
	"time"
)

// Manual is a deterministic scheduler and executor. Time moves only through
// Advance, and background work runs only through Step or Drain, all on the
// calling goroutine.
type Manual struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
	jobs   []job
}

type manualTimer struct {
	at       time.Duration
	seq      int
	fn       func()
	canceled bool
}

type job struct{ work, done func() }

func NewManual() *Manual { return &Manual{} }

// Elapsed reports how far Advance has moved the clock.
func (m *Manual) Elapsed() time.Duration { return m.now }

func (m *Manual) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	m.seq++
	t := &manualTimer{at: m.now + d, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return func() { t.canceled = true }
}

// Advance moves the clock forward by d, firing due timers in order.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		m.now = t.at
		t.fn()
	}
	m.now = target
}

func (m *Manual) nextDue(limit time.Duration) *manualTimer {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.canceled {
			live = append(live, t)
		}
	}
	m.timers = live
	sort.Slice(m.timers, func(i, j int) bool {
		if m.timers[i].at != m.timers[j].at {
			return m.timers[i].at < m.timers[j].at
		}
		return m.timers[i].seq < m.timers[j].seq
	})
	if len(m.timers) == 0 || m.timers[0].at > limit {
		return nil
	}
	t := m.timers[0]
	m.timers = m.timers[1:]
	return t
}

// PendingTimers counts armed, uncanceled timers.
func (m *Manual) PendingTimers() int {
	n := 0
	for _, t := range m.timers {
		if !t.canceled {
			n++
		}
	}
	return n
}

// Execute queues work until Step or Drain runs it.
func (m *Manual) Execute(work, done func()) {
	m.jobs = append(m.jobs, job{work: work, done: done})
}

// PendingJobs counts queued background work.
func (m *Manual) PendingJobs() int { return len(m.jobs) }

// Step runs the oldest queued job and its completion. It reports false when
// nothing was queued.
func (m *Manual) Step() bool {
	if len(m.jobs) == 0 {
		return false
	}
	j := m.jobs[0]
	m.jobs = m.jobs[1:]
	j.work()
	j.done()
	return true
}

// Drain steps until no jobs remain, including jobs queued by completions.
func (m *Manual) Drain() {
	for m.Step() {
	}
}
