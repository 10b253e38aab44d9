// Package device owns the LED controller state: the active configuration,
// the profile table, their records and the animation clock.
//
// A Device is not safe for concurrent use. One goroutine owns it and every
// other caller goes through that goroutine (see package loop).
package device

import (
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"k8s.io/utils/clock"

	"github.com/smazurov/rgbnode/internal/animation"
	"github.com/smazurov/rgbnode/internal/engine"
	"github.com/smazurov/rgbnode/internal/events"
	"github.com/smazurov/rgbnode/internal/led"
	"github.com/smazurov/rgbnode/internal/logging"
	"github.com/smazurov/rgbnode/internal/metrics"
	"github.com/smazurov/rgbnode/internal/profile"
	"github.com/smazurov/rgbnode/internal/store"
)

// Record file names inside Options.Dir.
const (
	ProfilesFile = "profiles.dat"
	ConfigFile   = "config.dat"
)

// Options configures a Device.
type Options struct {
	Dir      string
	Debounce time.Duration
	Driver   led.Driver

	// Clock defaults to the real clock.
	Clock clock.PassiveClock
	// Bus is optional; without it no events are published.
	Bus *events.Bus
}

// Device is the top-level owner of the controller state.
type Device struct {
	cfg   profile.Config
	table profile.Table

	drv      led.Driver
	anim     *animation.Clock
	cfgRec   *store.Record
	tableRec *store.Record
	clk      clock.PassiveClock
	bus      *events.Bus
	logger   *slog.Logger

	last engine.Result
}

// New creates a Device holding defaults. Call Boot to load the records.
func New(opts Options) *Device {
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = store.DefaultTimeout
	}

	d := &Device{
		cfg:    profile.DefaultConfig(),
		table:  profile.DefaultTable(),
		drv:    opts.Driver,
		anim:   animation.New(clk),
		clk:    clk,
		bus:    opts.Bus,
		logger: logging.GetLogger("device"),
	}
	recOpts := []store.Option{store.WithTimeout(debounce), store.WithClock(clk)}
	d.tableRec = store.New(filepath.Join(opts.Dir, ProfilesFile), &d.table, recOpts...)
	d.cfgRec = store.New(filepath.Join(opts.Dir, ConfigFile), &d.cfg, recOpts...)
	return d
}

// Boot loads the profile table and the configuration, then applies once.
// A record that is missing or unreadable falls back to its defaults and
// is scheduled for writing; the other record is unaffected.
func (d *Device) Boot() {
	d.load(d.tableRec, func() { d.table = profile.DefaultTable() })
	d.load(d.cfgRec, func() { d.cfg = profile.DefaultConfig() })
	d.logger.Info("Device booted", "power", d.cfg.PowerOn, "profile", d.cfg.Profile)
	d.Apply()
}

func (d *Device) load(rec *store.Record, reset func()) {
	err := rec.Read()
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		d.logger.Info("Record missing, using defaults", "record", rec.Name())
	default:
		d.logger.Warn("Record unreadable, using defaults", "record", rec.Name(), "error", err)
	}
	reset()
	d.touch(rec)
}

// Apply renders the current state onto the driver.
func (d *Device) Apply() engine.Result {
	res := engine.Apply(d.cfg, &d.table, d.drv, d.anim)
	d.last = res

	look := lookName(res)
	metrics.SetPower(d.cfg.PowerOn)
	metrics.SetActiveProfile(int(d.cfg.Profile))
	metrics.IncApply(look)

	label := d.table[d.cfg.Profile].Label()
	d.logger.Debug("Applied", "power", d.cfg.PowerOn, "profile", d.cfg.Profile, "label", label, "look", look)
	d.publish(events.ProfileAppliedEvent{
		PowerOn:   d.cfg.PowerOn,
		Profile:   int(d.cfg.Profile),
		Label:     label,
		Look:      look,
		Animated:  res.Animated,
		Timestamp: d.timestamp(),
	})
	return res
}

func lookName(res engine.Result) string {
	switch res.Look.(type) {
	case profile.Rainbow:
		return "rainbow"
	case profile.Solid:
		return "solid"
	}
	return "off"
}

// PollStore gives both records a chance to write.
func (d *Device) PollStore() {
	for _, rec := range d.records() {
		flushed, err := rec.Tick()
		if flushed || err != nil {
			d.publishRecord(rec, err)
		}
	}
}

// PollAnimation advances the rainbow when its period has elapsed.
func (d *Device) PollAnimation() {
	seed, fired := d.anim.Poll()
	if !fired || !d.cfg.PowerOn {
		return
	}
	d.drv.SetRainbow(seed)
	metrics.IncAnimationFrame()
}

// Flush writes every pending record now.
func (d *Device) Flush() error {
	var errs []error
	for _, rec := range d.records() {
		if !rec.Pending() {
			continue
		}
		err := rec.Flush()
		d.publishRecord(rec, err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Pending reports whether any record is waiting to be written.
func (d *Device) Pending() bool {
	return d.cfgRec.Pending() || d.tableRec.Pending()
}

func (d *Device) records() []*store.Record {
	return []*store.Record{d.tableRec, d.cfgRec}
}

// touch marks rec dirty. The first change after a write is announced.
func (d *Device) touch(rec *store.Record) {
	was := rec.Pending()
	rec.Update()
	if !was {
		d.publishRecord(rec, nil)
	}
}

func (d *Device) publishRecord(rec *store.Record, err error) {
	ev := events.RecordStateEvent{
		Record:    rec.Name(),
		Pending:   rec.Pending(),
		Timestamp: d.timestamp(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	d.publish(ev)
}

func (d *Device) publish(ev events.Event) {
	if d.bus != nil {
		d.bus.Publish(ev)
	}
}

func (d *Device) timestamp() string {
	return d.clk.Now().UTC().Format(time.RFC3339)
}
