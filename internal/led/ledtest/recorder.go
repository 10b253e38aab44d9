// Package ledtest provides a recording led.Driver for tests.
package ledtest

import "fmt"

// Recorder records every driver call as a formatted string,
// e.g. "SetRGB(10,20,30)".
type Recorder struct {
	calls []string
}

// SetPower implements led.Driver.
func (r *Recorder) SetPower(on bool) { r.record("SetPower(%t)", on) }

// SetRGB implements led.Driver.
func (r *Recorder) SetRGB(red, green, blue uint8) { r.record("SetRGB(%d,%d,%d)", red, green, blue) }

// SetHSV implements led.Driver.
func (r *Recorder) SetHSV(h, s, v uint8) { r.record("SetHSV(%d,%d,%d)", h, s, v) }

// SetRainbow implements led.Driver.
func (r *Recorder) SetRainbow(seed uint8) { r.record("SetRainbow(%d)", seed) }

// SetBrightness implements led.Driver.
func (r *Recorder) SetBrightness(b uint8) { r.record("SetBrightness(%d)", b) }

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []string {
	return append([]string(nil), r.calls...)
}

// Reset forgets recorded calls.
func (r *Recorder) Reset() {
	r.calls = nil
}

func (r *Recorder) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}
