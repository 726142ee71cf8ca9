// SPDX-License-Identifier: EPL-2.0

// Package config loads the YAML configuration of the command line tool.
//
// Every key is optional. Values missing from the file keep their defaults,
// unknown keys are rejected. Command line flags override the file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ik5/ppsalign"
	"github.com/ik5/ppsalign/internal/logger"
)

// Config is the tool configuration.
type Config struct {
	// Extension of the shard files, without the dot.
	Extension string `yaml:"extension"`

	// SampleRate of the shards in Hz.
	SampleRate int `yaml:"sample_rate"`

	// Channels interleaved in a shard.
	Channels int `yaml:"channels"`

	// LookBack bounds the marker search before a requested start.
	LookBack time.Duration `yaml:"look_back"`

	// AudioPerVirtual relates audio samples to virtual samples.
	AudioPerVirtual int `yaml:"audio_per_virtual"`

	// MarkerSkip is the number of samples dropped after a sentinel.
	MarkerSkip int `yaml:"marker_skip"`

	Demux DemuxConfig `yaml:"demux"`
	Log   LogConfig   `yaml:"log"`
}

// DemuxConfig configures multiplexed recordings.
type DemuxConfig struct {
	Channels   int `yaml:"channels"`
	OutputRate int `yaml:"output_rate"`
	MarkerSkip int `yaml:"marker_skip"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is json or pretty.
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	o := ppsalign.DefaultOptions()

	return &Config{
		Extension:       o.Extension,
		SampleRate:      o.SampleRate,
		Channels:        o.Channels,
		LookBack:        o.LookBack,
		AudioPerVirtual: o.AudioPerVirtual,
		MarkerSkip:      o.MarkerSkip,
		Demux: DemuxConfig{
			Channels:   o.DemuxChannels,
			OutputRate: o.OutputRate,
			MarkerSkip: o.DemuxMarkerSkip,
		},
		Log: LogConfig{
			Level:  "info",
			Format: logger.FormatPretty,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes a YAML document over the defaults and validates the result.
// An empty document yields the defaults.
func Read(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimPrefix(c.Extension, ".") == "" {
		errs = append(errs, errors.New("extension is required"))
	}
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate))
	}
	if c.Channels <= 0 {
		errs = append(errs, fmt.Errorf("channels must be positive, got %d", c.Channels))
	}
	if c.LookBack < 0 {
		errs = append(errs, fmt.Errorf("look_back must not be negative, got %s", c.LookBack))
	}
	if c.AudioPerVirtual <= 0 {
		errs = append(errs, fmt.Errorf("audio_per_virtual must be positive, got %d", c.AudioPerVirtual))
	}
	if c.MarkerSkip < 0 {
		errs = append(errs, fmt.Errorf("marker_skip must not be negative, got %d", c.MarkerSkip))
	}
	if c.Demux.Channels <= 0 {
		errs = append(errs, fmt.Errorf("demux.channels must be positive, got %d", c.Demux.Channels))
	}
	if c.Demux.OutputRate <= 0 {
		errs = append(errs, fmt.Errorf("demux.output_rate must be positive, got %d", c.Demux.OutputRate))
	}
	if c.Demux.MarkerSkip < 0 {
		errs = append(errs, fmt.Errorf("demux.marker_skip must not be negative, got %d", c.Demux.MarkerSkip))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if !logger.ValidFormat(c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be json or pretty, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Options converts the configuration into extraction options. Paths,
// logger and progress are left for the caller.
func (c *Config) Options() ppsalign.Options {
	return ppsalign.Options{
		Extension:       strings.TrimPrefix(c.Extension, "."),
		SampleRate:      c.SampleRate,
		Channels:        c.Channels,
		LookBack:        c.LookBack,
		AudioPerVirtual: c.AudioPerVirtual,
		MarkerSkip:      c.MarkerSkip,
		DemuxChannels:   c.Demux.Channels,
		OutputRate:      c.Demux.OutputRate,
		DemuxMarkerSkip: c.Demux.MarkerSkip,
	}
}
