package eventloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := New(16)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-l.Stopped()
	})
	return l
}

func TestLoopRunsInOrder(t *testing.T) {
	l := startLoop(t)
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		require.True(t, l.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, l.Do(context.Background(), func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestPostAfterStop(t *testing.T) {
	l := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = l.Run(ctx) }()
	cancel()
	<-l.Stopped()
	assert.False(t, l.Post(func() {}))
	assert.ErrorIs(t, l.Do(context.Background(), func() {}), ErrStopped)
}

func TestDispatcherAfterFuncRunsOnLoop(t *testing.T) {
	l := startLoop(t)
	fired := make(chan struct{})
	require.NoError(t, l.Do(context.Background(), func() {
		l.AfterFunc(5*time.Millisecond, func() { close(fired) })
	}))
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}

func TestDispatcherCancelIsFinal(t *testing.T) {
	l := startLoop(t)
	var fired atomic.Bool

	// hold the loop so the timer callback queues behind us, then cancel it
	require.NoError(t, l.Do(context.Background(), func() {
		cancel := l.AfterFunc(time.Millisecond, func() { fired.Store(true) })
		time.Sleep(20 * time.Millisecond)
		cancel()
	}))
	require.NoError(t, l.Do(context.Background(), func() {}))
	assert.False(t, fired.Load())
}

func TestDispatcherExecuteDeliversOnLoop(t *testing.T) {
	l := startLoop(t)
	done := make(chan int, 1)
	var result int
	require.NoError(t, l.Do(context.Background(), func() {
		l.Execute(func() { result = 42 }, func() { done <- result })
	}))
	select {
	case v := <-done:
		assert.Equal(t, 42, v)
	case <-time.After(2 * time.Second):
		t.Fatal("completion never delivered")
	}
}

func TestManualTimers(t *testing.T) {
	m := NewManual()
	var order []string
	m.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	cancel := m.AfterFunc(15*time.Millisecond, func() { order = append(order, "x") })
	cancel()
	assert.Equal(t, 2, m.PendingTimers())

	m.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"a"}, order)
	m.Advance(time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1010*time.Millisecond, m.Elapsed())
	assert.Zero(t, m.PendingTimers())
}

func TestManualTimerArmedByTimer(t *testing.T) {
	m := NewManual()
	var at []time.Duration
	m.AfterFunc(10*time.Millisecond, func() {
		at = append(at, m.Elapsed())
		m.AfterFunc(10*time.Millisecond, func() { at = append(at, m.Elapsed()) })
	})
	m.Advance(25 * time.Millisecond)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, at)
}

func TestManualJobs(t *testing.T) {
	m := NewManual()
	var log []string
	m.Execute(func() { log = append(log, "work1") }, func() {
		log = append(log, "done1")
		m.Execute(func() { log = append(log, "work2") }, func() { log = append(log, "done2") })
	})
	assert.Equal(t, 1, m.PendingJobs())
	assert.Empty(t, log)
	m.Drain()
	assert.Equal(t, []string{"work1", "done1", "work2", "done2"}, log)
	assert.False(t, m.Step())
}
