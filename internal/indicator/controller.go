// Package indicator drives the board's status LED to show whether the
// device has unsaved changes.
package indicator

// Pattern is what the status LED shows.
type Pattern string

// Status LED patterns.
const (
	// PatternSolid means every record is on disk.
	PatternSolid Pattern = "solid"
	// PatternBlink means a write is pending.
	PatternBlink Pattern = "blink"
	// PatternOff turns the LED off.
	PatternOff Pattern = "off"
)

// Controller sets the status LED of one board.
type Controller interface {
	// Set switches the LED to pattern.
	Set(pattern Pattern) error

	// Name identifies the LED, e.g. "ACT" or "noop".
	Name() string
}
