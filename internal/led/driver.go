// Package led drives an RGB strip through three PWM channels.
package led

// Driver is the color output boundary used by the apply engine.
// Calls are synchronous and never fail; implementations log hardware
// errors themselves.
type Driver interface {
	SetPower(on bool)
	SetRGB(r, g, b uint8)
	SetHSV(h, s, v uint8)
	SetRainbow(seed uint8)
	SetBrightness(b uint8)
}

// Strip is a Driver that owns hardware resources.
type Strip interface {
	Driver
	Name() string
	Close() error
}
