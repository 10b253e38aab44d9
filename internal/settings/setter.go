package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrUnknownField means no widget with the requested id was built.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidValue means the value is outside the widget's domain.
	ErrInvalidValue = errors.New("invalid value")
)

// Setter is a Builder that writes a single value into the widget with a
// matching id. Every other widget is left untouched.
type Setter struct {
	ids
	id    string
	value any

	found  bool
	set    bool
	reload bool
	err    error
}

// NewSetter prepares a pass that writes value into widget id. Values are
// expected as decoded from JSON: bool for switches, numbers for the rest.
// Color widgets also accept "#rrggbb" strings.
func NewSetter(id string, value any) *Setter {
	return &Setter{id: id, value: value}
}

// Err returns the outcome of the pass: nil when the value was written,
// ErrUnknownField when no widget matched, or an ErrInvalidValue wrap.
func (s *Setter) Err() error {
	if s.err != nil {
		return s.err
	}
	if !s.found {
		return fmt.Errorf("%q: %w", s.id, ErrUnknownField)
	}
	return nil
}

// Reloaded reports whether the build requested a structural re-render.
func (s *Setter) Reloaded() bool { return s.reload }

func (s *Setter) BeginGroup(string) {}
func (s *Setter) EndGroup()         {}

func (s *Setter) WasSet() bool { return s.set }
func (s *Setter) ClearSet()    { s.set = false }
func (s *Setter) Reload()      { s.reload = true }

// match claims the next id and reports whether it is the target.
func (s *Setter) match() bool {
	id := s.take()
	if s.found || id != s.id {
		return false
	}
	s.found = true
	return true
}

func (s *Setter) invalid(label string, format string, args ...any) bool {
	s.err = fmt.Errorf("%s: %w: %s", label, ErrInvalidValue, fmt.Sprintf(format, args...))
	return false
}

func (s *Setter) Switch(label string, v *bool) bool {
	if !s.match() {
		return false
	}
	b, ok := s.value.(bool)
	if !ok {
		return s.invalid(label, "want bool, got %v", s.value)
	}
	*v = b
	s.set = true
	return true
}

func (s *Setter) Select(label, options string, v *uint8) bool {
	if !s.match() {
		return false
	}
	n, ok := toInteger(s.value)
	count := len(SplitOptions(options))
	if !ok || n < 0 || n >= int64(count) {
		return s.invalid(label, "want option index below %d, got %v", count, s.value)
	}
	*v = uint8(n)
	s.set = true
	return true
}

func (s *Setter) Slider(label string, min, max, step uint8, _ string, v *uint8) bool {
	if !s.match() {
		return false
	}
	n, ok := toInteger(s.value)
	if !ok || n < int64(min) || n > int64(max) {
		return s.invalid(label, "want integer in [%d,%d], got %v", min, max, s.value)
	}
	if step > 1 && (n-int64(min))%int64(step) != 0 {
		return s.invalid(label, "want multiple of %d from %d, got %d", step, min, n)
	}
	*v = uint8(n)
	s.set = true
	return true
}

func (s *Setter) Color(label string, v *uint32) bool {
	if !s.match() {
		return false
	}
	n, ok := toColor(s.value)
	if !ok || n < 0 || n > MaxColor {
		return s.invalid(label, "want color in [0,%#06x], got %v", MaxColor, s.value)
	}
	*v = uint32(n)
	s.set = true
	return true
}

func toInteger(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func toColor(v any) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return toInteger(v)
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return 0, false
	}
	n, err := strconv.ParseInt(hex, 16, 64)
	return n, err == nil
}
