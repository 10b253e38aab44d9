package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/smazurov/rgbnode/internal/api"
	"github.com/smazurov/rgbnode/internal/config"
	"github.com/smazurov/rgbnode/internal/device"
	"github.com/smazurov/rgbnode/internal/events"
	"github.com/smazurov/rgbnode/internal/indicator"
	"github.com/smazurov/rgbnode/internal/led"
	"github.com/smazurov/rgbnode/internal/logging"
	"github.com/smazurov/rgbnode/internal/loop"
	"github.com/smazurov/rgbnode/internal/metrics/exporters"
	"github.com/smazurov/rgbnode/internal/nats"
	"github.com/smazurov/rgbnode/internal/systemd"
	"github.com/smazurov/rgbnode/internal/updater"
)

// daemon wires the controller together. Nothing touches hardware until
// run is called.
type daemon struct {
	opts   *Options
	logger *slog.Logger

	mu        sync.Mutex
	strip     led.Strip
	server    *api.Server
	notifier  *systemd.Notifier
	indicator *indicator.Manager
	exporter  *exporters.SSEExporter
	watcher   *config.Watcher[logging.Config]
	broker    *nats.Server
	bridge    *nats.Bridge
	cancel    context.CancelFunc
	loopDone  chan struct{}
}

func newDaemon(opts *Options) *daemon {
	return &daemon{
		opts:   opts,
		logger: logging.GetLogger("main"),
	}
}

// run starts every subsystem and serves HTTP until stop is called.
func (d *daemon) run() {
	opts := d.opts
	logger := d.logger

	eventBus := events.New()
	logging.SetLogCallback(func(entry logging.LogEntry) {
		eventBus.Publish(events.NewLogEntryEvent(entry))
	})

	strip := led.New(led.Options{
		Driver:      opts.LedDriver,
		RedPin:      opts.LedRedPin,
		GreenPin:    opts.LedGreenPin,
		BluePin:     opts.LedBluePin,
		Frequency:   physic.Frequency(opts.LedPwmFreqHz) * physic.Hertz,
		CommonAnode: opts.LedCommonAnode,
	}, logging.GetLogger("led"))

	dev := device.New(device.Options{
		Dir:      opts.StorageDir,
		Debounce: time.Duration(opts.StorageDebounceMs) * time.Millisecond,
		Driver:   strip,
		Bus:      eventBus,
	})
	dev.Boot()

	notifier := systemd.NewNotifier()
	pump := loop.NewPump(loop.DefaultQueueSize)

	sched := loop.NewScheduler(time.Duration(opts.LoopIntervalMs) * time.Millisecond)
	sched.Add("pump", func() { pump.PollOnce() })
	sched.Add("store", dev.PollStore)
	sched.Add("animation", dev.PollAnimation)
	sched.Add("watchdog", notifier.Tick)
	sched.OnStop(func() {
		pump.Close()
		if err := dev.Flush(); err != nil {
			logger.Error("Failed to write pending records", "error", err)
		}
	})

	status := indicator.NewManager(
		indicator.New(indicator.Options{Name: opts.LedStatusLed}, logging.GetLogger("indicator")),
		eventBus,
		logging.GetLogger("indicator"),
	)

	updateService, err := updater.NewService(updater.Options{
		Repository: opts.UpdateRepository,
		Prerelease: opts.UpdatePrerelease,
	})
	if err != nil {
		logger.Warn("Update service unavailable", "error", err)
	}

	apiOpts := &api.Options{
		AuthUsername:  opts.AuthUsername,
		AuthPassword:  opts.AuthPassword,
		Pump:          pump,
		Device:        dev,
		EventBus:      eventBus,
		UpdateService: updateService,
	}

	var exporter *exporters.SSEExporter
	if opts.MetricsEnabled {
		apiOpts.PrometheusHandler = exporters.HTTPHandler()
		exporter = exporters.NewSSEExporter(eventBus)
	}

	server := api.NewServer(apiOpts)

	watcher, err := config.WatchLogging(opts.Config)
	if err != nil {
		logger.Warn("Config hot reload disabled", "path", opts.Config, "error", err)
	}

	var broker *nats.Server
	var bridge *nats.Bridge
	if opts.NatsEnabled {
		broker, bridge = d.startNATS(pump, dev, eventBus)
	}

	ctx, cancel := context.WithCancel(context.Background())
	loopDone := make(chan struct{})

	d.mu.Lock()
	d.strip = strip
	d.server = server
	d.notifier = notifier
	d.indicator = status
	d.exporter = exporter
	d.watcher = watcher
	d.broker = broker
	d.bridge = bridge
	d.cancel = cancel
	d.loopDone = loopDone
	d.mu.Unlock()

	go func() {
		sched.Run(ctx)
		close(loopDone)
	}()

	status.Start()
	if exporter != nil {
		exporter.Start(ctx)
	}

	notifier.Ready()
	notifier.Status(fmt.Sprintf("Listening on %s", opts.Port))

	logger.Info("Starting HTTP server", "port", opts.Port, "driver", strip.Name())
	if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
		logger.Error("Failed to start HTTP server", "error", startErr)
		d.stop()
		os.Exit(1)
	}
}

// stop shuts down in reverse order. Pending records are written by the
// loop before it exits.
func (d *daemon) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel == nil {
		return
	}

	d.logger.Info("Shutting down")
	d.notifier.Stopping()

	if err := d.server.Stop(); err != nil {
		d.logger.Error("Error stopping HTTP server", "error", err)
	}
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			d.logger.Warn("Error stopping config watcher", "error", err)
		}
	}

	if d.bridge != nil {
		d.bridge.Stop()
	}
	if d.broker != nil {
		d.broker.Stop()
	}

	d.cancel()
	<-d.loopDone
	d.cancel = nil

	if d.exporter != nil {
		d.exporter.Stop()
	}
	d.indicator.Stop()

	if err := d.strip.Close(); err != nil {
		d.logger.Warn("Error closing LED driver", "error", err)
	}
	logging.SetLogCallback(nil)
}

// startNATS brings up the embedded broker when no URL is configured and
// connects the bridge. Failures leave HTTP serving on its own.
func (d *daemon) startNATS(pump *loop.Pump, dev *device.Device, bus *events.Bus) (*nats.Server, *nats.Bridge) {
	opts := d.opts
	logger := logging.GetLogger("nats")

	var broker *nats.Server
	url := opts.NatsURL
	if url == "" {
		broker = nats.NewServer(nats.ServerOptions{
			Host: opts.NatsHost,
			Port: opts.NatsPort,
			Name: opts.NatsPrefix,
		}, logger)
		if err := broker.Start(); err != nil {
			d.logger.Warn("NATS disabled", "error", err)
			return nil, nil
		}
		url = broker.ClientURL()
	}

	bridge := nats.NewBridge(nats.BridgeOptions{
		URL:      url,
		Prefix:   opts.NatsPrefix,
		Pump:     pump,
		Device:   dev,
		EventBus: bus,
		Logger:   logger,
	})
	if err := bridge.Start(); err != nil {
		d.logger.Warn("NATS bridge unavailable", "url", url, "error", err)
		if broker != nil {
			broker.Stop()
		}
		return nil, nil
	}
	return broker, bridge
}
