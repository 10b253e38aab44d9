package led

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Options selects and configures the strip driver.
type Options struct {
	Driver      string // "pwm" or "noop"
	RedPin      string
	GreenPin    string
	BluePin     string
	Frequency   physic.Frequency
	CommonAnode bool
}

// New opens the configured strip driver.
// Falls back to a no-op driver if the PWM pins cannot be opened.
func New(opts Options, logger *slog.Logger) Strip {
	if opts.Driver == "noop" {
		logger.Info("Using no-op LED driver")
		return newNoop(logger)
	}

	pwm, err := openPWM(opts, logger)
	if err != nil {
		logger.Warn("PWM output not available, using no-op LED driver", "error", err)
		return newNoop(logger)
	}

	logger.Info("Using PWM LED driver",
		"red", opts.RedPin,
		"green", opts.GreenPin,
		"blue", opts.BluePin,
		"frequency", pwm.freq.String(),
		"common_anode", opts.CommonAnode)
	return pwm
}

func openPWM(opts Options, logger *slog.Logger) (*PWM, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	var pins [3]gpio.PinIO
	for i, name := range []string{opts.RedPin, opts.GreenPin, opts.BluePin} {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("pin %q not found", name)
		}
		pins[i] = pin
	}

	return NewPWM(pins, opts.Frequency, opts.CommonAnode, logger), nil
}
