package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patches.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://conda-web.anaconda.org", cfg.ChannelAlias)
	assert.Equal(t, []string{"conda-forge"}, cfg.Channels)
	assert.Equal(t, []string{"linux-64", "linux-ppc64le", "linux-armv7l", "win-64", "osx-64", "noarch"}, cfg.Subdirs)
	assert.Equal(t, 0, cfg.Retries)
}

func TestDefaultReturnsFreshSlices(t *testing.T) {
	a := Default()
	a.Subdirs[0] = "changed"
	assert.Equal(t, "linux-64", Default().Subdirs[0])
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
channel_alias: https://conda.anaconda.org
channels:
  - conda-forge
  - conda-forge/label/archive
subdirs: [win-64, win-32]
output_dir: out
retries: 2
timeout: 45s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://conda.anaconda.org", cfg.ChannelAlias)
	assert.Equal(t, []string{"conda-forge", "conda-forge/label/archive"}, cfg.Channels)
	assert.Equal(t, []string{"win-64", "win-32"}, cfg.Subdirs)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 2, cfg.Retries)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, Default().UserAgent, cfg.UserAgent)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "subdirs: [win-64]\n"))
	require.NoError(t, err)

	assert.Equal(t, Default().ChannelAlias, cfg.ChannelAlias)
	assert.Equal(t, Default().Channels, cfg.Channels)
	assert.Equal(t, []string{"win-64"}, cfg.Subdirs)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "channel: conda-forge\n", ErrConfigParseFailed.Error()},
		{"bad yaml", "channels: [\n", ErrConfigParseFailed.Error()},
		{"invalid alias", "channel_alias: ftp://example.com\n", ErrInvalidConfig.Error()},
		{"no channels", "channels: []\n", ErrInvalidConfig.Error()},
		{"negative retries", "retries: -1\n", ErrInvalidConfig.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrConfigReadFailed.Error())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty alias", func(c *Config) { c.ChannelAlias = "" }},
		{"alias without host", func(c *Config) { c.ChannelAlias = "https://" }},
		{"empty channel name", func(c *Config) { c.Channels = []string{"conda-forge", ""} }},
		{"no subdirs", func(c *Config) { c.Subdirs = nil }},
		{"empty subdir name", func(c *Config) { c.Subdirs = []string{""} }},
		{"empty output", func(c *Config) { c.OutputDir = "" }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPairs(t *testing.T) {
	cfg := Default()
	cfg.Channels = []string{"a", "b"}
	cfg.Subdirs = []string{"win-64", "noarch"}

	assert.Equal(t, []Pair{
		{"a", "win-64"},
		{"a", "noarch"},
		{"b", "win-64"},
		{"b", "noarch"},
	}, cfg.Pairs())
}
