package indicator

import "log/slog"

// noop implements Controller for boards without a usable LED.
type noop struct {
	logger *slog.Logger
}

func newNoop(logger *slog.Logger) *noop {
	return &noop{logger: logger}
}

func (n *noop) Set(pattern Pattern) error {
	n.logger.Debug("Status LED not available (no-op)", "pattern", pattern)
	return nil
}

func (n *noop) Name() string { return "noop" }
