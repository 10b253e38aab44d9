package exporters

import (
	"context"
	"strconv"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/smazurov/rgbnode/internal/events"
	"github.com/smazurov/rgbnode/internal/metrics"
)

// DefaultStatsInterval is how often device stats are published.
const DefaultStatsInterval = time.Second

// EventPublisher is the part of the event bus the exporter needs.
type EventPublisher interface {
	Publish(ev events.Event)
}

// SSEExporter publishes a DeviceStatsEvent every interval with the
// animation frame rate measured since the previous one.
type SSEExporter struct {
	bus      EventPublisher
	clock    clock.WithTicker
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup

	lastFrames uint64
	lastTime   time.Time
}

// SSEOption configures an SSEExporter.
type SSEOption func(*SSEExporter)

// WithClock replaces the real clock, for tests.
func WithClock(clk clock.WithTicker) SSEOption {
	return func(s *SSEExporter) { s.clock = clk }
}

// WithInterval changes the publish interval.
func WithInterval(d time.Duration) SSEOption {
	return func(s *SSEExporter) { s.interval = d }
}

// NewSSEExporter creates an exporter publishing to bus.
func NewSSEExporter(bus EventPublisher, opts ...SSEOption) *SSEExporter {
	s := &SSEExporter{
		bus:      bus,
		clock:    clock.RealClock{},
		interval: DefaultStatsInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start publishes until ctx is done or Stop is called.
func (s *SSEExporter) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.lastFrames = metrics.GetDeviceStats().Frames
	s.lastTime = s.clock.Now()

	ticker := s.clock.NewTicker(s.interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C():
				s.publish(now)
			}
		}
	}()
}

// Stop ends the publish loop and waits for it.
func (s *SSEExporter) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *SSEExporter) publish(now time.Time) {
	stats := metrics.GetDeviceStats()

	fps := 0.0
	if elapsed := now.Sub(s.lastTime).Seconds(); elapsed > 0 {
		fps = float64(stats.Frames-s.lastFrames) / elapsed
	}
	s.lastFrames = stats.Frames
	s.lastTime = now

	s.bus.Publish(events.DeviceStatsEvent{
		EventType: "device_stats",
		PowerOn:   stats.Power,
		Profile:   stats.Profile,
		FPS:       strconv.FormatFloat(fps, 'f', 2, 64),
	})
}

// GetEventTypes returns the SSE event names this exporter feeds.
func GetEventTypes() map[string]any {
	return map[string]any{
		"device-stats": events.DeviceStatsEvent{},
	}
}
