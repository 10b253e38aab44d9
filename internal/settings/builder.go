// Package settings defines the declarative form contract between the
// device and whatever renders or edits its settings.
//
// The device describes its form once, in a single Build function, against
// a Builder. A Renderer collects that description into a Form; a Setter
// walks the same description to write one field. Widget ids are handed
// out in build order ("w0", "w1", ...), so a form rendered from a given
// state and a Setter run against that same state agree on every id.
package settings

import (
	"strconv"
	"strings"
)

// Builder is implemented by every pass over the form.
//
// Each widget method takes a pointer to the backing field and reports
// whether this pass wrote it. WasSet reports whether any widget since the
// last ClearSet was written.
type Builder interface {
	BeginGroup(title string)
	EndGroup()

	Switch(label string, v *bool) bool
	Select(label, options string, v *uint8) bool
	Slider(label string, min, max, step uint8, unit string, v *uint8) bool
	Color(label string, v *uint32) bool

	WasSet() bool
	ClearSet()
	Reload()
}

// Kind is the widget type.
type Kind string

// Widget kinds.
const (
	KindSwitch Kind = "switch"
	KindSelect Kind = "select"
	KindSlider Kind = "slider"
	KindColor  Kind = "color"
)

// MaxColor is the largest packed 0xRRGGBB value.
const MaxColor = 0xFFFFFF

// SplitOptions splits a ';' separated option list. A trailing separator
// does not produce an empty option.
func SplitOptions(options string) []string {
	if options == "" {
		return nil
	}
	parts := strings.Split(options, ";")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// ids hands out widget ids in build order.
type ids struct {
	next int
}

func (c *ids) take() string {
	id := "w" + strconv.Itoa(c.next)
	c.next++
	return id
}
