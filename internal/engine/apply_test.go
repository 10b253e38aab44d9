package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smazurov/rgbnode/internal/led/ledtest"
	"github.com/smazurov/rgbnode/internal/profile"
)

// timerLog records timer calls into the same log as the driver so tests
// can assert interleaving.
type timerLog struct {
	log     *[]string
	running bool
	period  time.Duration
}

func (t *timerLog) Start(period time.Duration) {
	*t.log = append(*t.log, fmt.Sprintf("Start(%s)", period))
	t.running = true
	t.period = period
}

func (t *timerLog) Stop() {
	*t.log = append(*t.log, "Stop")
	t.running = false
}

func TestApplyBranches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile profile.Profile
		want    []string
		running bool
	}{
		{
			name:    "solid rgb",
			profile: profile.Profile{Color: profile.ColorRGB, V1: 1, V2: 2, V3: 3, Bright: 200},
			want:    []string{"SetPower(true)", "SetRGB(1,2,3)", "SetBrightness(200)"},
		},
		{
			name:    "solid hsv",
			profile: profile.Profile{Color: profile.ColorHSV, V1: 10, V2: 200, V3: 255, Bright: 99},
			want:    []string{"SetPower(true)", "SetHSV(10,200,255)", "SetBrightness(99)"},
		},
		{
			name:    "solid gradient",
			profile: profile.Profile{Color: profile.ColorRainbow, V1: 42, V2: 7, V3: 7, Bright: 255},
			want:    []string{"SetPower(true)", "SetRainbow(42)", "SetBrightness(255)"},
		},
		{
			name:    "solid picker",
			profile: profile.Profile{Color: profile.ColorPicker, V1: 10, V2: 20, V3: 30, Bright: 128},
			want:    []string{"SetPower(true)", "SetRGB(10,20,30)", "SetBrightness(128)"},
		},
		{
			name:    "rainbow",
			profile: profile.Profile{Mode: profile.ModeRainbow, Color: profile.ColorHSV, V1: 9, Bright: 77, Speed: 50},
			want:    []string{"SetPower(true)", "SetBrightness(77)"},
			running: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec ledtest.Recorder
			var log []string
			timer := &timerLog{log: &log}

			table := profile.DefaultTable()
			table[3] = tt.profile

			res := Apply(profile.Config{PowerOn: true, Profile: 3}, &table, &rec, timer)

			assert.Equal(t, tt.want, rec.Calls())
			assert.Equal(t, tt.running, timer.running)
			assert.Equal(t, tt.running, res.Animated)
			assert.True(t, res.Powered)
			assert.Equal(t, tt.profile.Look(), res.Look)
		})
	}
}

func TestApplyPickerScenario(t *testing.T) {
	t.Parallel()

	var rec ledtest.Recorder
	var log []string
	timer := &timerLog{log: &log}

	table := profile.DefaultTable()
	table[2] = profile.Profile{Mode: profile.ModeSolid, Color: profile.ColorPicker, V1: 10, V2: 20, V3: 30, Bright: 128}

	Apply(profile.Config{PowerOn: true, Profile: 2}, &table, &rec, timer)

	assert.Equal(t, []string{"SetPower(true)", "SetRGB(10,20,30)", "SetBrightness(128)"}, rec.Calls())
	assert.False(t, timer.running)
}

func TestApplyRainbowScenario(t *testing.T) {
	t.Parallel()

	var rec ledtest.Recorder
	var log []string
	timer := &timerLog{log: &log}

	table := profile.DefaultTable()
	table[0] = profile.Profile{Mode: profile.ModeRainbow, Speed: 50, Bright: 255}

	Apply(profile.Config{PowerOn: true, Profile: 0}, &table, &rec, timer)

	assert.Equal(t, []string{"SetPower(true)", "SetBrightness(255)"}, rec.Calls())
	assert.True(t, timer.running)
	assert.Equal(t, 50*time.Millisecond, timer.period)
}

func TestApplyPowerOff(t *testing.T) {
	t.Parallel()

	var rec ledtest.Recorder
	var log []string
	timer := &timerLog{log: &log}

	table := profile.DefaultTable()
	table[0] = profile.Profile{Mode: profile.ModeRainbow, Speed: 10, Bright: 255}

	Apply(profile.Config{PowerOn: true}, &table, &rec, timer)
	assert.True(t, timer.running)

	rec.Reset()
	res := Apply(profile.Config{PowerOn: false}, &table, &rec, timer)

	assert.Equal(t, []string{"SetPower(false)"}, rec.Calls())
	assert.False(t, timer.running)
	assert.False(t, res.Powered)
	assert.Nil(t, res.Look)
}

func TestApplyStopsClockBeforeNewState(t *testing.T) {
	t.Parallel()

	var log []string
	timer := &timerLog{log: &log}
	drv := &loggingDriver{log: &log}

	table := profile.DefaultTable()
	table[0] = profile.Profile{Mode: profile.ModeRainbow, Speed: 20, Bright: 255}

	Apply(profile.Config{PowerOn: true}, &table, drv, timer)

	log = log[:0]
	table[0].Mode = profile.ModeSolid
	table[0].V1 = 5
	Apply(profile.Config{PowerOn: true}, &table, drv, timer)

	assert.Equal(t, []string{"Stop", "SetPower(true)", "SetRGB(5,0,0)", "SetBrightness(255)"}, log)
	assert.False(t, timer.running)
}

func TestApplySpeedChangeRestarts(t *testing.T) {
	t.Parallel()

	var log []string
	timer := &timerLog{log: &log}
	var rec ledtest.Recorder

	table := profile.DefaultTable()
	table[1] = profile.Profile{Mode: profile.ModeRainbow, Speed: 20}

	Apply(profile.Config{PowerOn: true, Profile: 1}, &table, &rec, timer)
	table[1].Speed = 255
	Apply(profile.Config{PowerOn: true, Profile: 1}, &table, &rec, timer)

	assert.Equal(t, []string{"Stop", "Start(20ms)", "Stop", "Start(255ms)"}, log)
}

func TestApplyOutOfRangePanics(t *testing.T) {
	t.Parallel()

	var rec ledtest.Recorder
	var log []string
	table := profile.DefaultTable()

	assert.Panics(t, func() {
		Apply(profile.Config{PowerOn: true, Profile: profile.Count}, &table, &rec, &timerLog{log: &log})
	})
}

// loggingDriver shares one log with timerLog.
type loggingDriver struct {
	log *[]string
}

func (d *loggingDriver) add(format string, args ...any) {
	*d.log = append(*d.log, fmt.Sprintf(format, args...))
}

func (d *loggingDriver) SetPower(on bool)      { d.add("SetPower(%t)", on) }
func (d *loggingDriver) SetRGB(r, g, b uint8)  { d.add("SetRGB(%d,%d,%d)", r, g, b) }
func (d *loggingDriver) SetHSV(h, s, v uint8)  { d.add("SetHSV(%d,%d,%d)", h, s, v) }
func (d *loggingDriver) SetRainbow(seed uint8) { d.add("SetRainbow(%d)", seed) }
func (d *loggingDriver) SetBrightness(b uint8) { d.add("SetBrightness(%d)", b) }
