// Package loop runs the single goroutine that owns the device.
//
// Other goroutines never touch device state directly. They hand a
// closure to a Pump; the loop runs queued closures at the start of each
// iteration, before the store and animation polls.
package loop

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrClosed is returned by Do once the pump stopped accepting work.
var ErrClosed = errors.New("pump closed")

// DefaultQueueSize bounds the number of queued requests.
const DefaultQueueSize = 64

// Job states. The loop and the caller race to move a queued job out of
// jobQueued; whoever wins decides whether fn runs.
const (
	jobQueued int32 = iota
	jobClaimed
	jobAbandoned
)

type job struct {
	ctx   context.Context
	fn    func()
	state atomic.Int32
	done  chan struct{}
}

// Pump is a request queue drained by the loop goroutine.
type Pump struct {
	jobs   chan *job
	closed chan struct{}
}

// NewPump creates a pump that queues up to size requests.
func NewPump(size int) *Pump {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Pump{
		jobs:   make(chan *job, size),
		closed: make(chan struct{}),
	}
}

// Do queues fn and waits until the loop ran it. If ctx ends or the pump
// closes before the loop picked fn up, fn never runs and Do returns the
// reason. Once the loop has claimed fn, Do waits for it and returns nil.
func (p *Pump) Do(ctx context.Context, fn func()) error {
	j := &job{ctx: ctx, fn: fn, done: make(chan struct{})}

	select {
	case p.jobs <- j:
	case <-p.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	var reason error
	select {
	case <-j.done:
		return nil
	case <-p.closed:
		reason = ErrClosed
	case <-ctx.Done():
		reason = ctx.Err()
	}
	if j.state.CompareAndSwap(jobQueued, jobAbandoned) {
		return reason
	}
	<-j.done
	return nil
}

// PollOnce runs the requests queued when it was called and returns how
// many ran. It never blocks.
func (p *Pump) PollOnce() int {
	ran := 0
	for range len(p.jobs) {
		select {
		case j := <-p.jobs:
			if j.ctx.Err() == nil && j.state.CompareAndSwap(jobQueued, jobClaimed) {
				j.fn()
				ran++
			}
			close(j.done)
		default:
			return ran
		}
	}
	return ran
}

// Close makes pending and future Do calls return ErrClosed. Only the
// loop goroutine may call Close.
func (p *Pump) Close() {
	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
}

// Call runs fn on the loop and returns its result.
func Call[T any](ctx context.Context, p *Pump, fn func() (T, error)) (T, error) {
	var (
		val T
		err error
	)
	if doErr := p.Do(ctx, func() { val, err = fn() }); doErr != nil {
		var zero T
		return zero, doErr
	}
	return val, err
}
