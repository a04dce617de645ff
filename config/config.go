// Package config persists the tunables in a TOML file under the user
// config directory. Persistence is explicit: nothing writes to disk as a
// side effect of a field change — callers decide when a mutation is worth
// a Save and see the error if it fails.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"grin/smile"
)

// Config is the persisted snapshot of all tunables. The control loop treats
// a loaded snapshot as immutable per cycle; calibration replaces the
// threshold fields and saves.
type Config struct {
	RestoreVolume    int     `toml:"restore_volume"`
	SmileOn          float64 `toml:"smile_on_threshold"`
	SmileOff         float64 `toml:"smile_off_threshold"`
	OnFrames         int     `toml:"on_frames"`
	OffFrames        int     `toml:"off_frames"`
	CameraIndex      int     `toml:"camera_index"`
	PollIntervalMs   int     `toml:"poll_interval_ms"`
	FaceTimeoutMs    int     `toml:"face_timeout_ms"`
	EMABeta          float64 `toml:"ema_beta"`
	MinSetIntervalMs int     `toml:"min_set_interval_ms"`
}

func Default() Config {
	return Config{
		RestoreVolume:    50,
		SmileOn:          0.5,
		SmileOff:         0.15,
		OnFrames:         3,
		OffFrames:        5,
		CameraIndex:      0,
		PollIntervalMs:   30,
		FaceTimeoutMs:    800,
		EMABeta:          0.7,
		MinSetIntervalMs: 250,
	}
}

// DefaultPath is <user config dir>/grin/config.toml.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "grin", "config.toml"), nil
}

// Load decodes path over the defaults, so missing keys keep their default
// value. A missing file is not an error; the defaults apply as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Default(), fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}
	if c.RestoreVolume < 1 || c.RestoreVolume > 100 {
		return fmt.Errorf("restore_volume must be in [1,100], got %d", c.RestoreVolume)
	}
	if c.PollIntervalMs < 1 {
		return fmt.Errorf("poll_interval_ms must be positive, got %d", c.PollIntervalMs)
	}
	if c.FaceTimeoutMs < 0 {
		return fmt.Errorf("face_timeout_ms must not be negative, got %d", c.FaceTimeoutMs)
	}
	if c.EMABeta <= 0 || c.EMABeta > 1 {
		return fmt.Errorf("ema_beta must be in (0,1], got %g", c.EMABeta)
	}
	if c.MinSetIntervalMs < 0 {
		return fmt.Errorf("min_set_interval_ms must not be negative, got %d", c.MinSetIntervalMs)
	}
	if c.CameraIndex < 0 {
		return fmt.Errorf("camera_index must not be negative, got %d", c.CameraIndex)
	}
	return nil
}

func (c Config) Thresholds() smile.Thresholds {
	return smile.Thresholds{
		On:        c.SmileOn,
		Off:       c.SmileOff,
		OnFrames:  c.OnFrames,
		OffFrames: c.OffFrames,
	}
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c Config) FaceTimeout() time.Duration {
	return time.Duration(c.FaceTimeoutMs) * time.Millisecond
}

func (c Config) MinSetInterval() time.Duration {
	return time.Duration(c.MinSetIntervalMs) * time.Millisecond
}
