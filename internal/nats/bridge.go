package nats

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/smazurov/rgbnode/internal/device"
	"github.com/smazurov/rgbnode/internal/events"
	"github.com/smazurov/rgbnode/internal/loop"
	"github.com/smazurov/rgbnode/internal/settings"
)

// DefaultRequestTimeout bounds how long a request waits for the loop.
const DefaultRequestTimeout = 2 * time.Second

// Controller is the device surface the bridge drives. All calls happen on
// the loop goroutine.
type Controller interface {
	Render() settings.Form
	Set(id string, value any) (bool, error)
	Snapshot() device.State
}

// BridgeOptions configures a Bridge.
type BridgeOptions struct {
	URL            string
	Prefix         string
	RequestTimeout time.Duration
	Pump           *loop.Pump
	Device         Controller
	EventBus       *events.Bus
	Logger         *slog.Logger
}

// Bridge answers form requests from NATS and publishes device events.
type Bridge struct {
	opts   BridgeOptions
	logger *slog.Logger

	mu     sync.Mutex
	conn   *nats.Conn
	subs   []*nats.Subscription
	unsubs []func()
}

// NewBridge creates a bridge; Start connects it.
func NewBridge(opts BridgeOptions) *Bridge {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{opts: opts, logger: logger}
}

// Start connects to the broker, serves the request subjects and starts
// forwarding events. The connection reconnects on its own afterwards.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	conn, err := nats.Connect(b.opts.URL,
		nats.Name("rgbnode-"+b.opts.Prefix),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				b.logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			b.logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return err
	}
	b.conn = conn

	handlers := map[string]func([]byte) Reply{
		SuffixFormGet:  b.getForm,
		SuffixFormSet:  b.setField,
		SuffixStateGet: b.getState,
	}
	for suffix, handle := range handlers {
		sub, err := conn.Subscribe(Subject(b.opts.Prefix, suffix), b.serve(handle))
		if err != nil {
			b.detachLocked()()
			return err
		}
		b.subs = append(b.subs, sub)
	}

	if bus := b.opts.EventBus; bus != nil {
		b.unsubs = append(b.unsubs,
			events.On(bus, func(e events.ProfileAppliedEvent) { b.publish(SuffixApplied, e) }),
			events.On(bus, func(e events.RecordStateEvent) { b.publish(SuffixRecord, e) }),
			events.On(bus, func(e events.FormReloadEvent) { b.publish(SuffixReload, e) }),
		)
	}

	b.logger.Info("NATS bridge connected", "url", b.opts.URL, "prefix", b.opts.Prefix)
	return nil
}

// Stop drops the subscriptions and closes the connection.
func (b *Bridge) Stop() {
	b.mu.Lock()
	release := b.detachLocked()
	b.mu.Unlock()

	// Event handlers take mu, so they are released outside it.
	release()
	b.logger.Info("NATS bridge stopped")
}

// IsConnected reports whether the broker connection is up.
func (b *Bridge) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil && b.conn.IsConnected()
}

// detachLocked clears the bridge state and returns a func that releases
// it.
func (b *Bridge) detachLocked() func() {
	conn, subs, unsubs := b.conn, b.subs, b.unsubs
	b.conn, b.subs, b.unsubs = nil, nil, nil

	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
		for _, sub := range subs {
			_ = sub.Unsubscribe()
		}
		if conn != nil {
			conn.Close()
		}
	}
}

func (b *Bridge) serve(handle func([]byte) Reply) nats.MsgHandler {
	return func(msg *nats.Msg) {
		reply := handle(msg.Data)
		if reply.Error != nil {
			b.logger.Debug("NATS request failed", "subject", msg.Subject, "code", reply.Error.Code)
		}
		data, err := json.Marshal(reply)
		if err != nil {
			b.logger.Error("Failed to encode NATS reply", "subject", msg.Subject, "error", err)
			return
		}
		if err := msg.Respond(data); err != nil && !errors.Is(err, nats.ErrMsgNoReply) {
			b.logger.Warn("Failed to send NATS reply", "subject", msg.Subject, "error", err)
		}
	}
}

func (b *Bridge) publish(suffix string, v any) {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		b.logger.Error("Failed to encode event", "subject", suffix, "error", err)
		return
	}
	if err := conn.Publish(Subject(b.opts.Prefix, suffix), data); err != nil {
		b.logger.Warn("Failed to publish event", "subject", suffix, "error", err)
	}
}

func (b *Bridge) call(fn func() (Reply, error)) Reply {
	ctx, cancel := context.WithTimeout(context.Background(), b.opts.RequestTimeout)
	defer cancel()

	reply, err := loop.Call(ctx, b.opts.Pump, fn)
	if err != nil {
		return errorReply(err)
	}
	return reply
}

func (b *Bridge) getForm([]byte) Reply {
	return b.call(func() (Reply, error) {
		form := b.opts.Device.Render()
		return Reply{Form: &form}, nil
	})
}

func (b *Bridge) getState([]byte) Reply {
	return b.call(func() (Reply, error) {
		state := b.opts.Device.Snapshot()
		return Reply{State: &state}, nil
	})
}

func (b *Bridge) setField(data []byte) Reply {
	var req SetRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorReply(err)
	}
	return b.call(func() (Reply, error) {
		reload, err := b.opts.Device.Set(req.ID, req.Value)
		if err != nil {
			return Reply{}, err
		}
		form := b.opts.Device.Render()
		return Reply{Reload: reload, Form: &form}, nil
	})
}
