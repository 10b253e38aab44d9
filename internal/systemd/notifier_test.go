package systemd

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	clocktesting "k8s.io/utils/clock/testing"
)

type recorder struct {
	states []string
	err    error
}

func (r *recorder) notify(state string) (bool, error) {
	r.states = append(r.states, state)
	return r.err == nil, r.err
}

func TestNotifierLifecycle(t *testing.T) {
	rec := &recorder{}
	n := NewNotifier(WithNotify(rec.notify))

	n.Ready()
	n.Status("profile 2")
	n.Stopping()

	assert.Equal(t, []string{"READY=1", "STATUS=profile 2", "STOPPING=1"}, rec.states)
}

func TestNotifierWatchdog(t *testing.T) {
	fake := clocktesting.NewFakePassiveClock(time.Unix(0, 0))
	rec := &recorder{}
	n := NewNotifier(WithNotify(rec.notify), WithClock(fake), WithWatchdog(time.Second))

	n.Tick()
	assert.Empty(t, rec.states)

	fake.SetTime(fake.Now().Add(time.Second))
	n.Tick()
	n.Tick()
	assert.Equal(t, []string{"WATCHDOG=1"}, rec.states)

	fake.SetTime(fake.Now().Add(999 * time.Millisecond))
	n.Tick()
	assert.Len(t, rec.states, 1)

	fake.SetTime(fake.Now().Add(time.Millisecond))
	n.Tick()
	assert.Len(t, rec.states, 2)
}

func TestNotifierWatchdogDisabled(t *testing.T) {
	t.Setenv("WATCHDOG_USEC", "")
	fake := clocktesting.NewFakePassiveClock(time.Unix(0, 0))
	rec := &recorder{}
	n := NewNotifier(WithNotify(rec.notify), WithClock(fake))

	fake.SetTime(fake.Now().Add(time.Hour))
	n.Tick()

	assert.Zero(t, n.WatchdogInterval())
	assert.Empty(t, rec.states)
}

func TestNotifierErrorsAreSwallowed(t *testing.T) {
	rec := &recorder{err: errors.New("socket gone")}
	n := NewNotifier(WithNotify(rec.notify))

	assert.NotPanics(t, n.Ready)
	assert.Equal(t, []string{"READY=1"}, rec.states)
}
