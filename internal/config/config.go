// Package config holds the run configuration: which channels and subdirs to
// patch, where to fetch them from, and where to write instructions.
package config

import (
	"bytes"
	"errors"
	"io"
	"net/url"
	"os"
	"time"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var (
	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file is not valid YAML
	// or has unknown keys.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a loaded or flag-built config fails validation.
	ErrInvalidConfig = zerr.New("invalid configuration")
)

// Config is passed by value; nothing in the program mutates a Config after
// it has been validated.
type Config struct {
	ChannelAlias string        `yaml:"channel_alias"`
	Channels     []string      `yaml:"channels"`
	Subdirs      []string      `yaml:"subdirs"`
	OutputDir    string        `yaml:"output_dir"`
	Retries      int           `yaml:"retries"`
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
}

// Default returns the stock configuration: conda-forge on six subdirs.
func Default() Config {
	return Config{
		ChannelAlias: "https://conda-web.anaconda.org",
		Channels: []string{
			"conda-forge",
		},
		Subdirs: []string{
			"linux-64",
			"linux-ppc64le",
			"linux-armv7l",
			"win-64",
			"osx-64",
			"noarch",
		},
		OutputDir: ".",
		Retries:   0,
		Timeout:   5 * time.Minute,
		UserAgent: "repodata-patches/1.0",
	}
}

// Load reads a YAML file on top of Default. Keys missing from the file keep
// their default values; unknown keys are an error.
func Load(path string) (Config, error) {
	//nolint:gosec // path comes from the --config flag
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, zerr.With(zerr.Wrap(err, ErrConfigReadFailed.Error()), "path", path)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, zerr.With(zerr.Wrap(err, ErrConfigParseFailed.Error()), "path", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the config describes at least one fetchable pair.
func (c Config) Validate() error {
	u, err := url.Parse(c.ChannelAlias)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return zerr.With(ErrInvalidConfig, "channel_alias", c.ChannelAlias)
	}
	if len(c.Channels) == 0 {
		return zerr.With(ErrInvalidConfig, "channels", "empty")
	}
	for _, ch := range c.Channels {
		if ch == "" {
			return zerr.With(ErrInvalidConfig, "channels", "empty channel name")
		}
	}
	if len(c.Subdirs) == 0 {
		return zerr.With(ErrInvalidConfig, "subdirs", "empty")
	}
	for _, sd := range c.Subdirs {
		if sd == "" {
			return zerr.With(ErrInvalidConfig, "subdirs", "empty subdir name")
		}
	}
	if c.OutputDir == "" {
		return zerr.With(ErrInvalidConfig, "output_dir", "empty")
	}
	if c.Retries < 0 {
		return zerr.With(ErrInvalidConfig, "retries", c.Retries)
	}
	if c.Timeout < 0 {
		return zerr.With(ErrInvalidConfig, "timeout", c.Timeout.String())
	}
	return nil
}

// Pair is one (channel, subdir) unit of work.
type Pair struct {
	Channel string
	Subdir  string
}

// Pairs returns the channel x subdir cross-product, channels outermost, in
// configuration order.
func (c Config) Pairs() []Pair {
	pairs := make([]Pair, 0, len(c.Channels)*len(c.Subdirs))
	for _, ch := range c.Channels {
		for _, sd := range c.Subdirs {
			pairs = append(pairs, Pair{Channel: ch, Subdir: sd})
		}
	}
	return pairs
}
