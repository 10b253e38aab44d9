package led

import (
	"math"

	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"
)

// HSV converts byte-scaled hue, saturation and value to RGB.
// Hue 0..255 covers the full circle.
func HSV(h, s, v uint8) (r, g, b uint8) {
	c := colorful.Hsv(float64(h)*360/256, float64(s)/255, float64(v)/255)
	return c.Clamped().RGB255()
}

// Wheel returns the fully saturated rainbow color at position seed.
func Wheel(seed uint8) (r, g, b uint8) {
	return HSV(seed, 255, 255)
}

// Dim scales a channel by brightness. Brightness follows a quadratic
// curve so low settings stay distinguishable to the eye.
func Dim(level, brightness uint8) uint8 {
	k := ease.InQuad(float64(brightness) / 255)
	return uint8(math.Round(float64(level) * k))
}
