package loop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

func TestSchedulerRunsTasksInOrder(t *testing.T) {
	t.Parallel()
	s := NewScheduler(time.Millisecond)

	var calls []string
	for _, name := range []string{"pump", "store", "animation"} {
		s.Add(name, func() { calls = append(calls, name) })
	}

	s.RunOnce()
	s.RunOnce()

	assert.Equal(t, []string{"pump", "store", "animation"}, s.Tasks())
	assert.Equal(t, []string{"pump", "store", "animation", "pump", "store", "animation"}, calls)
}

func TestSchedulerTicksAndStops(t *testing.T) {
	t.Parallel()
	fake := clocktesting.NewFakeClock(time.Unix(0, 0))
	s := NewScheduler(10*time.Millisecond, WithClock(fake))

	var mu sync.Mutex
	ticks := 0
	stopped := false
	s.Add("count", func() {
		mu.Lock()
		ticks++
		mu.Unlock()
	})
	s.OnStop(func() {
		mu.Lock()
		stopped = true
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, fake.HasWaiters, time.Second, time.Millisecond)
	for i := 1; i <= 3; i++ {
		fake.Step(10 * time.Millisecond)
		want := i
		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return ticks == want
		}, time.Second, time.Millisecond)
	}

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, stopped)
	assert.Equal(t, 3, ticks)
}

func TestSchedulerDefaultInterval(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DefaultInterval, NewScheduler(0).interval)
}
