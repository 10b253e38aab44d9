package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/smazurov/rgbnode/internal/device"
	"github.com/smazurov/rgbnode/internal/events"
	"github.com/smazurov/rgbnode/internal/led/ledtest"
	"github.com/smazurov/rgbnode/internal/loop"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func startServer(t *testing.T) *Server {
	t.Helper()
	srv := NewServer(ServerOptions{Port: -1, Name: "test"}, testLogger)
	if err := srv.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv
}

// startBridge runs a device loop and a bridge against srv.
func startBridge(t *testing.T, srv *Server, bus *events.Bus) (*Bridge, *loop.Pump) {
	t.Helper()

	dev := device.New(device.Options{Dir: t.TempDir(), Driver: &ledtest.Recorder{}, Bus: bus})
	dev.Boot()

	pump := loop.NewPump(0)
	sched := loop.NewScheduler(time.Millisecond)
	sched.Add("pump", func() { pump.PollOnce() })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	bridge := NewBridge(BridgeOptions{
		URL:      srv.ClientURL(),
		Pump:     pump,
		Device:   dev,
		EventBus: bus,
		Logger:   testLogger,
	})
	if err := bridge.Start(); err != nil {
		t.Fatalf("Failed to start bridge: %v", err)
	}
	t.Cleanup(bridge.Stop)
	return bridge, pump
}

func connect(t *testing.T, srv *Server) *nats.Conn {
	t.Helper()
	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(nc.Close)
	return nc
}

func request(t *testing.T, nc *nats.Conn, suffix string, body any) Reply {
	t.Helper()
	var data []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		data = v
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			t.Fatal(err)
		}
	}

	msg, err := nc.Request(Subject(DefaultPrefix, suffix), data, 2*time.Second)
	if err != nil {
		t.Fatalf("request %s: %v", suffix, err)
	}
	var reply Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		t.Fatalf("decode %s: %v", msg.Data, err)
	}
	return reply
}

func TestServerStartStop(t *testing.T) {
	srv := NewServer(ServerOptions{Port: -1}, testLogger)
	if err := srv.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	if !srv.IsRunning() {
		t.Error("server should be running after Start")
	}
	srv.Stop()
	if srv.IsRunning() {
		t.Error("server should not be running after Stop")
	}
	srv.Stop()
}

func TestBridgeGetFormAndState(t *testing.T) {
	srv := startServer(t)
	bridge, _ := startBridge(t, srv, events.New())
	nc := connect(t, srv)

	if !bridge.IsConnected() {
		t.Fatal("bridge should be connected")
	}

	reply := request(t, nc, SuffixFormGet, nil)
	if reply.Error != nil || reply.Form == nil {
		t.Fatalf("form.get = %+v", reply)
	}
	if len(reply.Form.Groups) != 2 {
		t.Errorf("groups = %d, want 2 when powered", len(reply.Form.Groups))
	}

	reply = request(t, nc, SuffixStateGet, nil)
	if reply.State == nil || !reply.State.Config.PowerOn {
		t.Errorf("state.get = %+v, want powered state", reply)
	}
}

func TestBridgeSetFieldPublishesEvents(t *testing.T) {
	srv := startServer(t)
	startBridge(t, srv, events.New())
	nc := connect(t, srv)

	reloads := make(chan *nats.Msg, 4)
	sub, err := nc.ChanSubscribe(Subject(DefaultPrefix, SuffixReload), reloads)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = sub.Unsubscribe() }()
	if err := nc.Flush(); err != nil {
		t.Fatal(err)
	}

	reply := request(t, nc, SuffixFormSet, SetRequest{ID: "w0", Value: false})
	if reply.Error != nil {
		t.Fatalf("form.set error = %v", reply.Error)
	}
	if !reply.Reload {
		t.Error("power change should request a reload")
	}
	if reply.Form == nil || len(reply.Form.Groups) != 1 {
		t.Errorf("form after power off = %+v, want 1 group", reply.Form)
	}

	select {
	case msg := <-reloads:
		var e events.FormReloadEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload event")
	}
}

func TestBridgeErrors(t *testing.T) {
	srv := startServer(t)
	startBridge(t, srv, events.New())
	nc := connect(t, srv)

	tests := []struct {
		name string
		body any
		code string
	}{
		{"malformed", []byte("{"), CodeBadRequest},
		{"unknown widget", SetRequest{ID: "w99", Value: 1}, CodeUnknownField},
		{"out of range", SetRequest{ID: "w1", Value: 9}, CodeInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := request(t, nc, SuffixFormSet, tt.body)
			if reply.Error == nil || reply.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", reply.Error, tt.code)
			}
		})
	}
}

func TestBridgeClosedPump(t *testing.T) {
	srv := startServer(t)
	_, pump := startBridge(t, srv, events.New())
	nc := connect(t, srv)

	pump.Close()

	reply := request(t, nc, SuffixFormGet, nil)
	if reply.Error == nil || reply.Error.Code != CodeUnavailable {
		t.Errorf("error = %+v, want %s", reply.Error, CodeUnavailable)
	}
}

func TestBridgeStartFailsWithoutBroker(t *testing.T) {
	bridge := NewBridge(BridgeOptions{URL: "nats://127.0.0.1:1", Logger: testLogger})
	if err := bridge.Start(); err == nil {
		bridge.Stop()
		t.Fatal("Start should fail without a broker")
	}
	if bridge.IsConnected() {
		t.Error("bridge should not be connected")
	}
}
