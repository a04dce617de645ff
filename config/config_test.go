package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"grin/smile"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	want := Default()
	want.SmileOn = 0.78
	want.SmileOff = 0.22
	want.RestoreVolume = 65

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("restore_volume = 80\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 80, cfg.RestoreVolume)
	require.Equal(t, Default().SmileOn, cfg.SmileOn, "unset keys keep defaults")
	require.Equal(t, Default().OnFrames, cfg.OnFrames)
}

func TestLoadRejectsInvertedThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "smile_on_threshold = 0.2\nsmile_off_threshold = 0.6\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	_, err := Load(path)
	require.ErrorIs(t, err, smile.ErrThresholdOrder)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("{not toml"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.EMABeta = 2.0
	err := Save(filepath.Join(t.TempDir(), "config.toml"), cfg)
	require.Error(t, err)
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "config.toml")
	require.NoError(t, Save(path, Default()))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero restore volume", func(c *Config) { c.RestoreVolume = 0 }},
		{"restore volume over 100", func(c *Config) { c.RestoreVolume = 101 }},
		{"zero poll interval", func(c *Config) { c.PollIntervalMs = 0 }},
		{"negative face timeout", func(c *Config) { c.FaceTimeoutMs = -1 }},
		{"zero beta", func(c *Config) { c.EMABeta = 0 }},
		{"beta above one", func(c *Config) { c.EMABeta = 1.1 }},
		{"zero on frames", func(c *Config) { c.OnFrames = 0 }},
		{"negative camera index", func(c *Config) { c.CameraIndex = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, Default().Validate())
}

func TestDurationAccessors(t *testing.T) {
	cfg := Default()
	require.Equal(t, int64(30), cfg.PollInterval().Milliseconds())
	require.Equal(t, int64(800), cfg.FaceTimeout().Milliseconds())
	require.Equal(t, int64(250), cfg.MinSetInterval().Milliseconds())
}
