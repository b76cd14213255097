// internal/dispatch/loop_test.go
package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T, depth int) (*Loop, context.CancelFunc, <-chan error) {
	t.Helper()
	l := New(depth, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	return l, cancel, errc
}

func TestDo_RunsInSubmissionOrder(t *testing.T) {
	l, cancel, _ := startLoop(t, 4)
	defer cancel()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		require.NoError(t, l.Do(context.Background(), func() { got = append(got, i) }))
	}

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestPost_FIFOWithDo(t *testing.T) {
	l, cancel, _ := startLoop(t, 16)
	defer cancel()

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, l.Post(context.Background(), func() { got = append(got, i) }))
	}
	// Do is queued behind every post.
	require.NoError(t, l.Do(context.Background(), func() { got = append(got, 10) }))

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, got)
}

func TestDo_NeverOverlaps(t *testing.T) {
	l, cancel, _ := startLoop(t, 8)
	defer cancel()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup

	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				_ = l.Do(context.Background(), func() {
					n := inside.Add(1)
					if n > maxInside.Load() {
						maxInside.Store(n)
					}
					time.Sleep(10 * time.Microsecond)
					inside.Add(-1)
				})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
}

func TestRun_RecoversPanics(t *testing.T) {
	l, cancel, _ := startLoop(t, 1)
	defer cancel()

	require.NoError(t, l.Do(context.Background(), func() { panic("boom") }))

	ran := false
	require.NoError(t, l.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestStoppedLoopRejects(t *testing.T) {
	l, cancel, errc := startLoop(t, 1)
	cancel()
	require.NoError(t, <-errc)

	assert.ErrorIs(t, l.Do(context.Background(), func() {}), ErrStopped)
	assert.ErrorIs(t, l.Post(context.Background(), func() {}), ErrStopped)
	assert.ErrorIs(t, l.Run(context.Background()), ErrRunning)
}

func TestDo_ContextCancelledWhileQueueFull(t *testing.T) {
	l := New(1, nil)

	// Not running: the single slot fills and the next submit blocks.
	require.NoError(t, l.Post(context.Background(), func() {}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Do(ctx, func() {}), context.DeadlineExceeded)
}
