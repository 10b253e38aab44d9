package indicator

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// Disabled is the Options.Name that turns the indicator off.
const Disabled = "none"

// Options selects the status LED.
type Options struct {
	// Name is the LED under Root. Empty means detect from the board
	// model; Disabled means no indicator.
	Name string
	// Root defaults to /sys/class/leds.
	Root string
}

// boardLEDs maps device-tree model substrings to their status LED.
var boardLEDs = []struct {
	model string
	led   string
}{
	{"Raspberry Pi", "ACT"},
	{"NanoPC-T6", "usr_led"},
	{"Orange Pi", "green_led"},
}

// New returns a controller for the configured or detected status LED.
// It falls back to a no-op controller when no LED is usable.
func New(opts Options, logger *slog.Logger) Controller {
	if opts.Name == Disabled {
		return newNoop(logger)
	}
	root := opts.Root
	if root == "" {
		root = sysfsLEDPath
	}

	name := opts.Name
	if name == "" {
		model := detectBoard()
		name = ledForModel(model)
		logger.Info("Detected board for status LED", "board_model", model, "led", name)
	}
	if name == "" {
		return newNoop(logger)
	}

	ctrl := newSysfs(root, name)
	if _, err := os.Stat(ctrl.dir); err != nil {
		logger.Info("Status LED not present, using no-op controller", "led", name)
		return newNoop(logger)
	}
	return ctrl
}

func ledForModel(model string) string {
	for _, b := range boardLEDs {
		if strings.Contains(model, b.model) {
			return b.led
		}
	}
	return ""
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}
	return strings.TrimRight(string(data), "\x00")
}
