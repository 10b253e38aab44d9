package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRoundTrip(t *testing.T) {
	t.Parallel()

	boundaries := []uint8{0, 128, 255}
	for _, v := range boundaries {
		var table Table
		for i := range table {
			table[i] = Profile{
				Mode:   Mode(i % 2),
				Color:  ColorMode(i % 4),
				V1:     v,
				V2:     255 - v,
				V3:     v,
				Bright: v,
				Speed:  max(v, 1),
			}
		}

		data, err := table.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, TableSize)

		var got Table
		require.NoError(t, got.UnmarshalBinary(data))
		assert.Equal(t, table, got, "value %d", v)
	}

	for _, speed := range []uint8{1, 255} {
		table := DefaultTable()
		table[4].Speed = speed
		data, err := table.MarshalBinary()
		require.NoError(t, err)

		var got Table
		require.NoError(t, got.UnmarshalBinary(data))
		assert.Equal(t, speed, got[4].Speed)
	}
}

func TestTableLayout(t *testing.T) {
	t.Parallel()

	var table Table
	table[0] = Profile{Mode: ModeRainbow, Color: ColorPicker, V1: 1, V2: 2, V3: 3, Bright: 4, Speed: 5}

	data, err := table.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 3, 1, 2, 3, 4, 5}, data[:ProfileSize])
}

func TestTableUnmarshalSize(t *testing.T) {
	t.Parallel()

	table := DefaultTable()
	before := table

	err := table.UnmarshalBinary(make([]byte, TableSize-1))
	require.ErrorIs(t, err, ErrSize)
	assert.Equal(t, before, table)
}

func TestConfigRoundTrip(t *testing.T) {
	t.Parallel()

	for _, cfg := range []Config{{PowerOn: true, Profile: 0}, {PowerOn: false, Profile: Count - 1}} {
		data, err := cfg.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, ConfigSize)

		var got Config
		require.NoError(t, got.UnmarshalBinary(data))
		assert.Equal(t, cfg, got)
	}
}

func TestConfigUnmarshalErrors(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	require.ErrorIs(t, cfg.UnmarshalBinary([]byte{1}), ErrSize)
	require.ErrorIs(t, cfg.UnmarshalBinary([]byte{1, Count}), ErrRange)
	assert.Equal(t, DefaultConfig(), cfg)
}
