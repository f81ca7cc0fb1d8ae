package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virgo-core/chart"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.Playback.BPM = 174
	cfg.Playback.ClickVolume = 0.8
	cfg.KeyBindings["x"] = "crash"
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 174.0, loaded.Playback.BPM)
	assert.Equal(t, 0.8, loaded.Playback.ClickVolume)
	assert.Equal(t, "crash", loaded.KeyBindings["x"])
}

func TestLoadFromRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestKeyboardMapResolvesDrums(t *testing.T) {
	cfg := DefaultConfig()
	m := cfg.KeyboardMap()
	assert.Equal(t, chart.BassDrum, m["f"])
	assert.Equal(t, chart.Snare, m["j"])

	// Unknown drum names are skipped, not errored.
	cfg.KeyBindings["z"] = "kazoo"
	m = cfg.KeyboardMap()
	_, ok := m["z"]
	assert.False(t, ok)
}

func TestMIDIMapResolvesDrums(t *testing.T) {
	cfg := DefaultConfig()
	m := cfg.MIDIMap()
	assert.Equal(t, chart.BassDrum, m[36])
	assert.Equal(t, chart.Snare, m[38])
	assert.Len(t, m, len(cfg.MIDIBindings))
}
