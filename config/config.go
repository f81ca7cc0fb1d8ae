package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"virgo-core/chart"
)

// PlaybackConfig stores metronome and click preferences.
type PlaybackConfig struct {
	BPM         float64 `json:"bpm,omitempty"`
	ClickVolume float64 `json:"clickVolume,omitempty"`
	AutoStart   bool    `json:"autoStart,omitempty"`
}

// MIDIBinding maps one MIDI note to a drum lane.
type MIDIBinding struct {
	Note uint8  `json:"note"`
	Drum string `json:"drum"`
}

// Config is the main configuration structure.
type Config struct {
	Playback     PlaybackConfig    `json:"playback,omitempty"`
	KeyBindings  map[string]string `json:"keyBindings,omitempty"`
	MIDIBindings []MIDIBinding     `json:"midiBindings,omitempty"`
}

// DefaultConfig returns a config with sensible defaults: home-row keys for
// the kit and the General MIDI percussion notes.
func DefaultConfig() *Config {
	return &Config{
		Playback: PlaybackConfig{
			BPM:         120,
			ClickVolume: 0.5,
		},
		KeyBindings: map[string]string{
			"f": "bass",
			"j": "snare",
			"d": "hihat-closed",
			"k": "hihat-open",
			"e": "high-tom",
			"i": "low-tom",
			"o": "floor-tom",
			"w": "crash",
			"p": "ride",
			"q": "left-cymbal",
		},
		MIDIBindings: []MIDIBinding{
			{Note: 36, Drum: "bass"},
			{Note: 38, Drum: "snare"},
			{Note: 42, Drum: "hihat-closed"},
			{Note: 46, Drum: "hihat-open"},
			{Note: 48, Drum: "high-tom"},
			{Note: 45, Drum: "low-tom"},
			{Note: 41, Drum: "floor-tom"},
			{Note: 49, Drum: "crash"},
			{Note: 51, Drum: "ride"},
			{Note: 57, Drum: "left-cymbal"},
		},
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "virgo-core"), nil
}

// ConfigPath returns the full path to config.json.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file at an explicit path, defaulting when absent.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// KeyboardMap resolves the configured key bindings into drum types. Unknown
// drum names are skipped.
func (c *Config) KeyboardMap() map[string]chart.DrumType {
	out := make(map[string]chart.DrumType, len(c.KeyBindings))
	for key, name := range c.KeyBindings {
		if d, ok := chart.ParseDrumType(name); ok {
			out[key] = d
		}
	}
	return out
}

// MIDIMap resolves the configured MIDI bindings into drum types.
func (c *Config) MIDIMap() map[uint8]chart.DrumType {
	out := make(map[uint8]chart.DrumType, len(c.MIDIBindings))
	for _, b := range c.MIDIBindings {
		if d, ok := chart.ParseDrumType(b.Drum); ok {
			out[b.Note] = d
		}
	}
	return out
}
