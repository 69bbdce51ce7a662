// Package config loads the optional TOML settings file of the game launcher.
package config

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/lixenwraith/keymaze/input"
)

type Config struct {
	Controls ControlsConfig `toml:"controls"`
	Display  DisplayConfig  `toml:"display"`
	Audio    AudioConfig    `toml:"audio"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ControlsConfig struct {
	MoveDivisor  float32           `toml:"move_divisor"`  // Movement per frame is 1/move_divisor
	LookDivisor  float32           `toml:"look_divisor"`  // Degrees per pointer unit is 1/look_divisor
	HoldWindow   time.Duration     `toml:"hold_window"`   // Key release synthesis window
	PointerScale float32           `toml:"pointer_scale"` // Pointer units per terminal cell
	TurnStep     float32           `toml:"turn_step"`     // Pointer units per arrow key
	Bindings     map[string]string `toml:"bindings"`      // Single character -> action name
}

type DisplayConfig struct {
	FrameInterval time.Duration `toml:"frame_interval"`
	Minimap       bool          `toml:"minimap"`
	FOV           float32       `toml:"fov"`
	MaxDepth      float32       `toml:"max_depth"`
	GrabMouse     bool          `toml:"grab_mouse"`
}

type AudioConfig struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"` // Linear, 0 to 1
}

type LoggingConfig struct {
	Level     string `toml:"level"`  // Empty derives the level from -v
	Format    string `toml:"format"` // "json" or "console"
	Dir       string `toml:"dir"`
	MaxSizeMB int    `toml:"max_size_mb"`
}

// Default returns the built-in settings
func Default() *Config {
	term := input.DefaultTerminalOptions()
	return &Config{
		Controls: ControlsConfig{
			MoveDivisor:  20,
			LookDivisor:  10,
			HoldWindow:   term.HoldWindow,
			PointerScale: term.PointerScale,
			TurnStep:     term.TurnStep,
		},
		Display: DisplayConfig{
			FrameInterval: 16 * time.Millisecond,
			Minimap:       true,
			FOV:           70,
			MaxDepth:      24,
			GrabMouse:     term.GrabMouse,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.6,
		},
		Logging: LoggingConfig{
			Format:    "console",
			Dir:       "logs",
			MaxSizeMB: 10,
		},
	}
}

// Load overlays the file at path onto the defaults
// Keys the file sets that no setting knows are an error
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, errors.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate checks ranges and names
func (c *Config) Validate() error {
	switch {
	case c.Controls.MoveDivisor <= 0:
		return errors.New("controls.move_divisor must be positive")
	case c.Controls.LookDivisor <= 0:
		return errors.New("controls.look_divisor must be positive")
	case c.Controls.HoldWindow <= 0:
		return errors.New("controls.hold_window must be positive")
	case c.Display.FrameInterval <= 0:
		return errors.New("display.frame_interval must be positive")
	case c.Display.FOV <= 0 || c.Display.FOV >= 180:
		return errors.Errorf("display.fov %v outside (0, 180)", c.Display.FOV)
	case c.Display.MaxDepth <= 0:
		return errors.New("display.max_depth must be positive")
	case c.Audio.Volume < 0 || c.Audio.Volume > 1:
		return errors.Errorf("audio.volume %v outside [0, 1]", c.Audio.Volume)
	case c.Logging.Format != "json" && c.Logging.Format != "console":
		return errors.Errorf("logging.format %q is neither json nor console", c.Logging.Format)
	case c.Logging.MaxSizeMB <= 0:
		return errors.New("logging.max_size_mb must be positive")
	}
	_, err := c.Controls.KeyBindings()
	return err
}

// KeyBindings merges the configured bindings over the defaults
func (c ControlsConfig) KeyBindings() (map[rune]input.Key, error) {
	bindings := input.DefaultBindings()
	for key, action := range c.Bindings {
		r, size := utf8.DecodeRuneInString(key)
		if r == utf8.RuneError || size != len(key) {
			return nil, errors.Errorf("binding %q must be a single character", key)
		}
		k, err := input.ParseKey(action)
		if err != nil {
			return nil, errors.Wrapf(err, "binding %q", key)
		}
		bindings[r] = k
	}
	return bindings, nil
}

// TerminalOptions builds the terminal input settings
func (c *Config) TerminalOptions() (input.TerminalOptions, error) {
	bindings, err := c.Controls.KeyBindings()
	if err != nil {
		return input.TerminalOptions{}, err
	}
	return input.TerminalOptions{
		HoldWindow:   c.Controls.HoldWindow,
		PointerScale: c.Controls.PointerScale,
		TurnStep:     c.Controls.TurnStep,
		GrabMouse:    c.Display.GrabMouse,
		Bindings:     bindings,
	}, nil
}
