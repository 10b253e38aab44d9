// Package engine maps the active configuration and profile table onto
// driver calls and the animation timer.
package engine

import (
	"time"

	"github.com/smazurov/rgbnode/internal/led"
	"github.com/smazurov/rgbnode/internal/profile"
)

// Timer is the animation clock as seen by Apply.
type Timer interface {
	Start(period time.Duration)
	Stop()
}

// Result summarizes what Apply did.
type Result struct {
	Powered  bool
	Animated bool
	Look     profile.Look
}

// Apply renders cfg onto drv. The timer is always stopped first and only
// re-armed for a Rainbow profile, so a stale period never outlives a
// profile switch.
//
// cfg.Profile must be below profile.Count; an out-of-range index panics.
func Apply(cfg profile.Config, table *profile.Table, drv led.Driver, timer Timer) Result {
	timer.Stop()
	drv.SetPower(cfg.PowerOn)
	if !cfg.PowerOn {
		return Result{}
	}

	p := table[cfg.Profile]
	res := Result{Powered: true, Look: p.Look()}

	switch look := res.Look.(type) {
	case profile.Solid:
		switch c := look.Color.(type) {
		case profile.RGB:
			drv.SetRGB(c.R, c.G, c.B)
		case profile.Picker:
			drv.SetRGB(c.R, c.G, c.B)
		case profile.HSV:
			drv.SetHSV(c.H, c.S, c.V)
		case profile.Gradient:
			drv.SetRainbow(c.Seed)
		}
	case profile.Rainbow:
		timer.Start(look.Period)
		res.Animated = true
	}

	drv.SetBrightness(p.Bright)
	return res
}
