// Package profile holds the LED strip data model: the fixed table of
// profiles, the active configuration and their persisted encodings.
package profile

import (
	"fmt"
	"strings"
)

// Count is the number of profile slots in a Table.
const Count = 5

// Mode selects between static and animated output.
type Mode uint8

// Profile modes.
const (
	ModeSolid Mode = iota
	ModeRainbow
)

var modeNames = [...]string{"Solid", "Rainbow"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	for i, name := range modeNames {
		if strings.EqualFold(name, string(text)) {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", text)
}

// ColorMode selects how V1..V3 are interpreted while the mode is Solid.
type ColorMode uint8

// Color modes.
const (
	ColorRGB ColorMode = iota
	ColorHSV
	ColorRainbow
	ColorPicker
)

var colorNames = [...]string{"RGB", "HSV", "Rainbow", "Picker"}

func (c ColorMode) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("ColorMode(%d)", uint8(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c ColorMode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ColorMode) UnmarshalText(text []byte) error {
	for i, name := range colorNames {
		if strings.EqualFold(name, string(text)) {
			*c = ColorMode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown color mode %q", text)
}

// ModeOptions is the selector option string for Mode.
func ModeOptions() string {
	return strings.Join(modeNames[:], ";")
}

// ColorOptions is the selector option string for ColorMode.
func ColorOptions() string {
	return strings.Join(colorNames[:], ";")
}

// MinSpeed is the shortest rainbow step period in milliseconds.
const MinSpeed = 1

// Profile is one stored LED configuration slot.
//
// V1..V3 are shared by every color mode. Switching Color keeps the bytes
// as they are, so an RGB triple shows up as HSV when the mode changes.
type Profile struct {
	Mode   Mode      `json:"mode" yaml:"mode" toml:"mode"`
	Color  ColorMode `json:"color" yaml:"color" toml:"color"`
	V1     uint8     `json:"v1" yaml:"v1" toml:"v1"`
	V2     uint8     `json:"v2" yaml:"v2" toml:"v2"`
	V3     uint8     `json:"v3" yaml:"v3" toml:"v3"`
	Bright uint8     `json:"bright" yaml:"bright" toml:"bright"`
	Speed  uint8     `json:"speed" yaml:"speed" toml:"speed"`
}

// DefaultProfile returns a solid black RGB profile at full brightness.
func DefaultProfile() Profile {
	return Profile{
		Mode:   ModeSolid,
		Color:  ColorRGB,
		Bright: 255,
		Speed:  10,
	}
}

// Table is the fixed-size profile table. Slots are addressed by index only.
type Table [Count]Profile

// DefaultTable returns a table with every slot set to DefaultProfile.
func DefaultTable() Table {
	var t Table
	for i := range t {
		t[i] = DefaultProfile()
	}
	return t
}

// Config is the active configuration: power state and selected slot.
type Config struct {
	PowerOn bool  `json:"power_on" yaml:"power_on" toml:"power_on"`
	Profile uint8 `json:"profile" yaml:"profile" toml:"profile"`
}

// DefaultConfig returns a powered-on configuration on slot 0.
func DefaultConfig() Config {
	return Config{PowerOn: true}
}
