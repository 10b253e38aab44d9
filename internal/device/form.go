package device

import (
	"github.com/smazurov/rgbnode/internal/events"
	"github.com/smazurov/rgbnode/internal/profile"
	"github.com/smazurov/rgbnode/internal/settings"
)

// Build describes the settings form against b.
//
// The first group holds the power switch and the profile selector. A
// change there re-applies, schedules the configuration for writing and
// asks for a re-render, since the rest of the form depends on it. The
// second group edits the active profile and is only present while
// powered; a change there re-applies and schedules the table for writing.
// Only Mode and Color force a re-render.
func (d *Device) Build(b settings.Builder) {
	b.BeginGroup("Device")
	b.Switch("Power", &d.cfg.PowerOn)
	b.Select("Profile", d.table.OptionList(), &d.cfg.Profile)
	b.EndGroup()

	if b.WasSet() {
		d.Apply()
		d.touch(d.cfgRec)
		b.Reload()
		b.ClearSet()
	}

	if !d.cfg.PowerOn {
		return
	}
	p := &d.table[d.cfg.Profile]

	b.BeginGroup("Profile")
	mode := uint8(p.Mode)
	if b.Select("Mode", profile.ModeOptions(), &mode) {
		p.Mode = profile.Mode(mode)
		b.Reload()
	}

	// Branch on the decoded look so stray mode or color bytes show the
	// widgets for what the strip renders.
	switch look := p.Look().(type) {
	case profile.Rainbow:
		b.Slider("Delay", profile.MinSpeed, 255, 1, "ms", &p.Speed)
	case profile.Solid:
		color := uint8(p.Color)
		if b.Select("Color", profile.ColorOptions(), &color) {
			p.Color = profile.ColorMode(color)
			b.Reload()
			if solid, ok := p.Look().(profile.Solid); ok {
				look = solid
			}
		}

		switch look.Color.(type) {
		case profile.RGB:
			b.Slider("R", 0, 255, 1, "", &p.V1)
			b.Slider("G", 0, 255, 1, "", &p.V2)
			b.Slider("B", 0, 255, 1, "", &p.V3)
		case profile.HSV:
			b.Slider("H", 0, 255, 1, "", &p.V1)
			b.Slider("S", 0, 255, 1, "", &p.V2)
			b.Slider("V", 0, 255, 1, "", &p.V3)
		case profile.Gradient:
			b.Slider("Value", 0, 255, 1, "", &p.V1)
		case profile.Picker:
			v := profile.PackRGB(p.V1, p.V2, p.V3)
			if b.Color("Value", &v) {
				p.V1, p.V2, p.V3 = profile.UnpackRGB(v)
			}
		}
	}

	b.Slider("Brightness", 0, 255, 1, "", &p.Bright)
	b.EndGroup()

	if b.WasSet() {
		d.Apply()
		d.touch(d.tableRec)
		b.ClearSet()
	}
}

// Render returns the form for the current state.
func (d *Device) Render() settings.Form {
	r := settings.NewRenderer()
	d.Build(r)
	return r.Form()
}

// Set writes value into the widget id of the current form. It reports
// whether the form structure changed and clients should render again.
func (d *Device) Set(id string, value any) (bool, error) {
	s := settings.NewSetter(id, value)
	d.Build(s)
	if err := s.Err(); err != nil {
		d.logger.Debug("Rejected form value", "id", id, "value", value, "error", err)
		return false, err
	}

	d.logger.Info("Form value set", "id", id, "value", value, "reload", s.Reloaded())
	if s.Reloaded() {
		d.publish(events.FormReloadEvent{Reason: id, Timestamp: d.timestamp()})
	}
	return s.Reloaded(), nil
}
