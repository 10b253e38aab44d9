// Package systemd reports service state to systemd over the notify socket.
// Outside systemd every call is a no-op.
package systemd

import (
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"k8s.io/utils/clock"

	"github.com/smazurov/rgbnode/internal/logging"
)

// Notifier sends sd_notify messages and keeps the watchdog fed.
type Notifier struct {
	notify   func(state string) (bool, error)
	clk      clock.PassiveClock
	interval time.Duration
	last     time.Time
	logger   *slog.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithNotify replaces daemon.SdNotify.
func WithNotify(fn func(state string) (bool, error)) Option {
	return func(n *Notifier) {
		n.notify = fn
	}
}

// WithWatchdog overrides the watchdog interval read from the environment.
func WithWatchdog(interval time.Duration) Option {
	return func(n *Notifier) {
		n.interval = interval
	}
}

// WithClock replaces the real clock.
func WithClock(clk clock.PassiveClock) Option {
	return func(n *Notifier) {
		n.clk = clk
	}
}

// NewNotifier creates a notifier. When systemd enabled the watchdog for
// this process, Tick pings at half the configured timeout.
func NewNotifier(opts ...Option) *Notifier {
	n := &Notifier{
		notify: func(state string) (bool, error) { return daemon.SdNotify(false, state) },
		clk:    clock.RealClock{},
		logger: logging.GetLogger("systemd"),
	}
	if timeout, err := daemon.SdWatchdogEnabled(false); err == nil && timeout > 0 {
		n.interval = timeout / 2
	}
	for _, opt := range opts {
		opt(n)
	}
	n.last = n.clk.Now()
	return n
}

// WatchdogInterval returns the ping interval, zero when disabled.
func (n *Notifier) WatchdogInterval() time.Duration { return n.interval }

// Ready tells systemd that startup finished.
func (n *Notifier) Ready() { n.send(daemon.SdNotifyReady) }

// Stopping tells systemd that shutdown started.
func (n *Notifier) Stopping() { n.send(daemon.SdNotifyStopping) }

// Status sets the free-form status line shown by systemctl.
func (n *Notifier) Status(msg string) { n.send("STATUS=" + msg) }

// Tick feeds the watchdog when the interval elapsed. It is meant to be
// called from the main loop so a stuck loop stops the pings.
func (n *Notifier) Tick() {
	if n.interval <= 0 || n.clk.Since(n.last) < n.interval {
		return
	}
	n.last = n.clk.Now()
	n.send(daemon.SdNotifyWatchdog)
}

func (n *Notifier) send(state string) {
	sent, err := n.notify(state)
	switch {
	case err != nil:
		n.logger.Warn("sd_notify failed", "state", state, "error", err)
	case sent:
		n.logger.Debug("sd_notify sent", "state", state)
	}
}
