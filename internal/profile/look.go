package profile

import "time"

// Look is the decoded form of a Profile: either Solid or Rainbow.
type Look interface {
	isLook()
}

// Solid is a static color.
type Solid struct {
	Color Color
}

// Rainbow is an animated hue cycle advancing once per Period.
type Rainbow struct {
	Period time.Duration
}

func (Solid) isLook()   {}
func (Rainbow) isLook() {}

// Color is the payload of a Solid look.
type Color interface {
	isColor()
}

// RGB is an absolute color.
type RGB struct{ R, G, B uint8 }

// HSV is a hue/saturation/value color, each channel scaled to a byte.
type HSV struct{ H, S, V uint8 }

// Gradient is a single frame of the rainbow wheel at Seed.
type Gradient struct{ Seed uint8 }

// Picker is an RGB color edited through a packed color control.
type Picker struct{ R, G, B uint8 }

func (RGB) isColor()      {}
func (HSV) isColor()      {}
func (Gradient) isColor() {}
func (Picker) isColor()   {}

// Look decodes the flat slot into its variant. Unknown mode bytes decode
// as Solid and unknown color bytes as RGB.
func (p Profile) Look() Look {
	if p.Mode == ModeRainbow {
		return Rainbow{Period: time.Duration(max(p.Speed, MinSpeed)) * time.Millisecond}
	}

	switch p.Color {
	case ColorHSV:
		return Solid{Color: HSV{H: p.V1, S: p.V2, V: p.V3}}
	case ColorRainbow:
		return Solid{Color: Gradient{Seed: p.V1}}
	case ColorPicker:
		return Solid{Color: Picker{R: p.V1, G: p.V2, B: p.V3}}
	default:
		return Solid{Color: RGB{R: p.V1, G: p.V2, B: p.V3}}
	}
}

// Label is the selector caption for the slot, "<Mode> <ColorMode>".
// Rainbow slots leave the color part empty.
func (p Profile) Label() string {
	color := ""
	if p.Mode != ModeRainbow {
		color = p.Color.String()
	}
	return p.Mode.String() + " " + color
}

// Labels returns the caption of every slot in table order.
func (t *Table) Labels() []string {
	labels := make([]string, len(t))
	for i, p := range t {
		labels[i] = p.Label()
	}
	return labels
}

// OptionList joins the slot captions into a selector option string,
// each caption terminated by ';'.
func (t *Table) OptionList() string {
	var s string
	for _, label := range t.Labels() {
		s += label + ";"
	}
	return s
}

// PackRGB packs three channels into 0xRRGGBB.
func PackRGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// UnpackRGB splits 0xRRGGBB into channels. Bits above 24 are ignored.
func UnpackRGB(c uint32) (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}
