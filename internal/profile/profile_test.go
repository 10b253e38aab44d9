package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	p := DefaultProfile()
	assert.Equal(t, ModeSolid, p.Mode)
	assert.Equal(t, ColorRGB, p.Color)
	assert.Equal(t, uint8(255), p.Bright)
	assert.Equal(t, uint8(10), p.Speed)

	table := DefaultTable()
	for i := range table {
		assert.Equal(t, p, table[i], "slot %d", i)
	}

	assert.Equal(t, Config{PowerOn: true, Profile: 0}, DefaultConfig())
}

func TestLook(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile Profile
		want    Look
	}{
		{"rgb", Profile{Color: ColorRGB, V1: 1, V2: 2, V3: 3}, Solid{Color: RGB{1, 2, 3}}},
		{"hsv", Profile{Color: ColorHSV, V1: 10, V2: 200, V3: 255}, Solid{Color: HSV{10, 200, 255}}},
		{"gradient", Profile{Color: ColorRainbow, V1: 77, V2: 9}, Solid{Color: Gradient{Seed: 77}}},
		{"picker", Profile{Color: ColorPicker, V1: 10, V2: 20, V3: 30}, Solid{Color: Picker{10, 20, 30}}},
		{"rainbow", Profile{Mode: ModeRainbow, Color: ColorHSV, Speed: 50}, Rainbow{Period: 50 * time.Millisecond}},
		{"rainbow zero speed", Profile{Mode: ModeRainbow}, Rainbow{Period: time.Millisecond}},
		{"unknown color", Profile{Color: ColorMode(9), V1: 4}, Solid{Color: RGB{R: 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.Look())
		})
	}
}

func TestLabels(t *testing.T) {
	t.Parallel()

	table := DefaultTable()
	table[1] = Profile{Mode: ModeRainbow, Color: ColorPicker}
	table[2].Color = ColorHSV
	table[3].Color = ColorPicker
	table[4].Color = ColorRainbow

	assert.Equal(t, []string{"Solid RGB", "Rainbow ", "Solid HSV", "Solid Picker", "Solid Rainbow"}, table.Labels())
	assert.Equal(t, "Solid RGB;Rainbow ;Solid HSV;Solid Picker;Solid Rainbow;", table.OptionList())
}

func TestOptions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Solid;Rainbow", ModeOptions())
	assert.Equal(t, "RGB;HSV;Rainbow;Picker", ColorOptions())
}

func TestPackRGB(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0x0a141e), PackRGB(10, 20, 30))

	r, g, b := UnpackRGB(0xff0a141e)
	assert.Equal(t, [3]uint8{10, 20, 30}, [3]uint8{r, g, b})
}

func TestModeText(t *testing.T) {
	t.Parallel()

	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("rainbow")))
	assert.Equal(t, ModeRainbow, m)
	assert.Error(t, m.UnmarshalText([]byte("strobe")))

	var c ColorMode
	require.NoError(t, c.UnmarshalText([]byte("Picker")))
	assert.Equal(t, ColorPicker, c)

	assert.Equal(t, "Mode(7)", Mode(7).String())
}
