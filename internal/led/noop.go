package led

import "log/slog"

// noop implements Strip for hosts without PWM output.
type noop struct {
	logger *slog.Logger
}

func newNoop(logger *slog.Logger) *noop {
	return &noop{logger: logger}
}

func (n *noop) Name() string { return "noop" }

func (n *noop) SetPower(on bool) {
	n.logger.Debug("LED output not available (no-op)", "power", on)
}

func (n *noop) SetRGB(r, g, b uint8) {
	n.logger.Debug("LED output not available (no-op)", "r", r, "g", g, "b", b)
}

func (n *noop) SetHSV(h, s, v uint8) {
	n.logger.Debug("LED output not available (no-op)", "h", h, "s", s, "v", v)
}

// SetRainbow runs once per animation frame, so it stays silent.
func (n *noop) SetRainbow(uint8) {}

func (n *noop) SetBrightness(b uint8) {
	n.logger.Debug("LED output not available (no-op)", "brightness", b)
}

func (n *noop) Close() error { return nil }
