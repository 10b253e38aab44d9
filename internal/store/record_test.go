package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/smazurov/rgbnode/internal/profile"
)

// countingConfig counts encodes so tests can see coalesced writes.
type countingConfig struct {
	profile.Config
	encodes int
}

func (c *countingConfig) MarshalBinary() ([]byte, error) {
	c.encodes++
	return c.Config.MarshalBinary()
}

func newFakeClock() *clocktesting.FakePassiveClock {
	return clocktesting.NewFakePassiveClock(time.Unix(1000, 0))
}

func TestReadMissing(t *testing.T) {
	t.Parallel()

	cfg := profile.DefaultConfig()
	rec := New(filepath.Join(t.TempDir(), "config.dat"), &cfg)

	err := rec.Read()
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, profile.DefaultConfig(), cfg)
}

func TestReadCorrupt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"wrong tag", []byte{'B', 0, 1}},
		{"short", []byte{'A', 0}},
		{"long", []byte{'A', 0, 1, 2}},
		{"index out of range", []byte{'A', 1, profile.Count}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.dat")
			require.NoError(t, os.WriteFile(path, tt.data, 0o644))

			cfg := profile.DefaultConfig()
			err := New(path, &cfg).Read()
			require.ErrorIs(t, err, ErrCorrupt)
			assert.Equal(t, profile.DefaultConfig(), cfg)
		})
	}
}

func TestReadValid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.dat")
	require.NoError(t, os.WriteFile(path, []byte{'A', 0, 3}, 0o644))

	cfg := profile.DefaultConfig()
	require.NoError(t, New(path, &cfg).Read())
	assert.Equal(t, profile.Config{PowerOn: false, Profile: 3}, cfg)
}

func TestCustomTag(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.dat")
	cfg := profile.Config{PowerOn: true, Profile: 1}
	require.NoError(t, New(path, &cfg, WithTag('Z')).UpdateNow())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{'Z', 1, 1}, data)

	require.ErrorIs(t, New(path, &cfg).Read(), ErrCorrupt)
}

func TestTickDebounce(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	path := filepath.Join(t.TempDir(), "config.dat")
	cfg := &countingConfig{Config: profile.DefaultConfig()}
	rec := New(path, cfg, WithClock(clk), WithTimeout(5*time.Second))

	flushed, err := rec.Tick()
	require.NoError(t, err)
	assert.False(t, flushed, "clean record never writes")

	cfg.Profile = 1
	rec.Update()
	clk.SetTime(clk.Now().Add(3 * time.Second))
	cfg.Profile = 2
	rec.Update()
	clk.SetTime(clk.Now().Add(3 * time.Second))

	flushed, err = rec.Tick()
	require.NoError(t, err)
	assert.False(t, flushed, "second update restarts the window")
	assert.NoFileExists(t, path)

	clk.SetTime(clk.Now().Add(2 * time.Second))
	flushed, err = rec.Tick()
	require.NoError(t, err)
	assert.True(t, flushed)
	assert.False(t, rec.Pending())
	assert.Equal(t, 1, cfg.encodes)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{'A', 1, 2}, data)

	flushed, err = rec.Tick()
	require.NoError(t, err)
	assert.False(t, flushed)
}

func TestTickRetriesFailedWrite(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "state")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	cfg := profile.DefaultConfig()
	rec := New(filepath.Join(blocker, "config.dat"), &cfg, WithClock(clk), WithTimeout(time.Second))

	rec.Update()
	clk.SetTime(clk.Now().Add(time.Second))
	flushed, err := rec.Tick()
	require.Error(t, err)
	assert.False(t, flushed)
	assert.True(t, rec.Pending())

	require.NoError(t, os.Remove(blocker))

	flushed, err = rec.Tick()
	require.NoError(t, err)
	assert.False(t, flushed, "retry waits another window")

	clk.SetTime(clk.Now().Add(time.Second))
	flushed, err = rec.Tick()
	require.NoError(t, err)
	assert.True(t, flushed)
	assert.FileExists(t, rec.Path())
}

func TestUpdateNowAndFlush(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	table := profile.DefaultTable()
	table[4].Speed = 200
	rec := New(filepath.Join(dir, "profiles.dat"), &table)

	require.NoError(t, rec.Flush())
	assert.NoFileExists(t, rec.Path(), "flush of a clean record is a no-op")

	rec.Update()
	require.NoError(t, rec.Flush())
	assert.False(t, rec.Pending())

	var got profile.Table
	require.NoError(t, New(rec.Path(), &got).Read())
	assert.Equal(t, table, got)

	table[0].Bright = 1
	require.NoError(t, rec.UpdateNow())
	require.NoError(t, New(rec.Path(), &got).Read())
	assert.Equal(t, uint8(1), got[0].Bright)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
	assert.Equal(t, "profiles.dat", rec.Name())
}
