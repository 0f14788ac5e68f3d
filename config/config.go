package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Solver modes
const (
	ModeEfficiency = "efficiency"
	ModeAccuracy   = "accuracy"
)

// MIDIConfig selects which input ports to use
type MIDIConfig struct {
	PreferredPorts []string `json:"preferredPorts,omitempty"`
	ExcludedPorts  []string `json:"excludedPorts,omitempty"`
}

// RangeConfig gates which note bands the direct path plays
type RangeConfig struct {
	Low        bool `json:"low"`
	Base       bool `json:"base"`
	High       bool `json:"high"`
	AutoOctave bool `json:"autoOctave"`
}

// SolverConfig tunes the note resolution engine
type SolverConfig struct {
	Enabled        bool   `json:"enabled"`
	Mode           string `json:"mode"`
	MaxJump        int    `json:"maxJump"`
	TransposeRange int    `json:"transposeRange"`
}

// QuantizeConfig aligns note-on events to a wall-clock grid
type QuantizeConfig struct {
	Enabled bool `json:"enabled"`
	GridMs  int  `json:"gridMs"`
}

// DirectConfig picks the key-stroke variant for the direct path
type DirectConfig struct {
	HoldCtrl         bool `json:"holdCtrl"`
	TransposeShift   bool `json:"transposeShift"`
	LazyTranspose    bool `json:"lazyTranspose"`
	TransposeDelayMs int  `json:"transposeDelayMs"`
}

// Config is the main configuration structure
type Config struct {
	MIDI        MIDIConfig     `json:"midi"`
	MappingFile string         `json:"mappingFile,omitempty"`
	Ranges      RangeConfig    `json:"ranges"`
	Solver      SolverConfig   `json:"solver"`
	Quantize    QuantizeConfig `json:"quantize"`
	Direct      DirectConfig   `json:"direct"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MIDI: MIDIConfig{
			ExcludedPorts: []string{"Midi Through", "Through Port", "Dummy"},
		},
		Ranges: RangeConfig{Base: true},
		Solver: SolverConfig{
			Enabled:        true,
			Mode:           ModeEfficiency,
			MaxJump:        12,
			TransposeRange: 24,
		},
		Quantize: QuantizeConfig{GridMs: 100},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midi2keys"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

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

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
