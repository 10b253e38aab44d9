package events

import (
	"sync/atomic"

	"github.com/kelindar/event"
)

// Bus fans device events out to subscribers. Delivery is asynchronous and
// ordered per event type only.
type Bus struct {
	dispatcher *event.Dispatcher
	dropped    atomic.Uint64
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{dispatcher: event.NewDispatcher()}
}

// Publish delivers ev to the subscribers of its concrete type.
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case ProfileAppliedEvent:
		event.Publish(b.dispatcher, e)
	case RecordStateEvent:
		event.Publish(b.dispatcher, e)
	case FormReloadEvent:
		event.Publish(b.dispatcher, e)
	case DeviceStatsEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	}
}

// On subscribes fn to events of type T and returns the unsubscribe func.
func On[T Event](b *Bus, fn func(T)) func() {
	return event.Subscribe(b.dispatcher, fn)
}

// Subscribe is On for callers holding a handler of any event type, e.g.
// bus.Subscribe(func(e RecordStateEvent) { ... }). Other handler types
// get a no-op unsubscribe.
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(ProfileAppliedEvent):
		return On(b, h)
	case func(RecordStateEvent):
		return On(b, h)
	case func(FormReloadEvent):
		return On(b, h)
	case func(DeviceStatsEvent):
		return On(b, h)
	case func(LogEntryEvent):
		return On(b, h)
	default:
		return func() {}
	}
}

// Forward copies events of type T into ch for select loops such as SSE
// handlers. Events that do not fit are dropped and counted.
func Forward[T Event](b *Bus, ch chan<- any) func() {
	return On(b, func(e T) {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	})
}

// Dropped returns how many forwarded events were lost to full channels.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
