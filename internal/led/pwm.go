package led

import (
	"errors"
	"log/slog"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/smazurov/rgbnode/internal/metrics"
)

// DefaultFrequency is the PWM carrier frequency.
const DefaultFrequency = 10 * physic.KiloHertz

// PWM drives red, green and blue channels on three PWM-capable pins.
// It is not safe for concurrent use.
type PWM struct {
	pins   [3]gpio.PinIO
	freq   physic.Frequency
	invert bool
	logger *slog.Logger

	on     bool
	rgb    [3]uint8
	bright uint8
}

// NewPWM returns a driver for pins in red, green, blue order. When
// commonAnode is set the duty cycle is inverted.
func NewPWM(pins [3]gpio.PinIO, freq physic.Frequency, commonAnode bool, logger *slog.Logger) *PWM {
	if freq == 0 {
		freq = DefaultFrequency
	}
	return &PWM{
		pins:   pins,
		freq:   freq,
		invert: commonAnode,
		logger: logger,
		bright: 255,
	}
}

// Name implements Strip.
func (p *PWM) Name() string { return "pwm" }

// SetPower implements Driver.
func (p *PWM) SetPower(on bool) {
	p.on = on
	p.render()
}

// SetRGB implements Driver.
func (p *PWM) SetRGB(r, g, b uint8) {
	p.rgb = [3]uint8{r, g, b}
	p.render()
}

// SetHSV implements Driver.
func (p *PWM) SetHSV(h, s, v uint8) {
	r, g, b := HSV(h, s, v)
	p.SetRGB(r, g, b)
}

// SetRainbow implements Driver.
func (p *PWM) SetRainbow(seed uint8) {
	r, g, b := Wheel(seed)
	p.SetRGB(r, g, b)
}

// SetBrightness implements Driver.
func (p *PWM) SetBrightness(b uint8) {
	p.bright = b
	p.render()
}

// Output returns the channel levels currently driven, before inversion.
func (p *PWM) Output() [3]uint8 {
	var out [3]uint8
	if !p.on {
		return out
	}
	for i, c := range p.rgb {
		out[i] = Dim(c, p.bright)
	}
	return out
}

// Close turns the strip dark and releases the pins.
func (p *PWM) Close() error {
	p.on = false
	p.render()

	var errs []error
	for _, pin := range p.pins {
		errs = append(errs, pin.Halt())
	}
	return errors.Join(errs...)
}

func (p *PWM) render() {
	for i, level := range p.Output() {
		pin := p.pins[i]
		if err := pin.PWM(p.duty(level), p.freq); err != nil {
			metrics.IncLEDWriteError(pin.Name())
			p.logger.Warn("PWM write failed", "pin", pin.Name(), "error", err)
		}
	}
}

func (p *PWM) duty(level uint8) gpio.Duty {
	d := gpio.Duty(int64(level) * int64(gpio.DutyMax) / 255)
	if p.invert {
		d = gpio.DutyMax - d
	}
	return d
}
