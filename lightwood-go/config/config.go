// Package config holds the settings shared by the lightwood binaries.
package config

import (
	"github.com/vbrnv/lightwood/lightwood-go/encoder/audio"
	"github.com/vbrnv/lightwood/lightwood-go/encoder/registry"
	"github.com/vbrnv/lightwood/lightwood-go/mixer"
	"github.com/vbrnv/lightwood/lightwood-go/predictor"
	"github.com/vbrnv/lightwood/lightwood-golib/envutil"
	"github.com/vbrnv/lightwood/lightwood-golib/errors"
	"github.com/vbrnv/lightwood/lightwood-golib/serialization"
	"go.uber.org/zap/zapcore"
)

// Environment variables overriding the built-in defaults.
const (
	EnvAudioBuckets      = "LIGHTWOOD_AUDIO_BUCKETS"
	EnvAudioCoefficients = "LIGHTWOOD_AUDIO_COEFFICIENTS"
	EnvAudioCache        = "LIGHTWOOD_AUDIO_CACHE"
	EnvMixer             = "LIGHTWOOD_MIXER"
	EnvLogLevel          = "LIGHTWOOD_LOG_LEVEL"
	EnvFeatureStore      = "LIGHTWOOD_FEATURE_STORE"
)

// Config is the on-disk configuration.
type Config struct {
	Mixer                string        `json:"mixer" yaml:"mixer"`
	LogLevel             string        `json:"log_level" yaml:"log_level"`
	ConfidencePercentile float64       `json:"confidence_percentile" yaml:"confidence_percentile"`
	Audio                audio.Options `json:"audio" yaml:"audio"`
	// FeatureStore is the directory of a LevelDB database persisting audio features; empty disables it.
	FeatureStore         string        `json:"feature_store" yaml:"feature_store"`
}

// Default returns the built-in configuration with environment overrides applied.
func Default() (Config, error) {
	c := Config{
		Mixer:                envutil.GetenvDefault(EnvMixer, string(mixer.Unit)),
		LogLevel:             envutil.GetenvDefault(EnvLogLevel, "info"),
		ConfidencePercentile: 90,
		FeatureStore:         envutil.GetenvDefault(EnvFeatureStore, ""),
	}
	var err error
	if c.Audio.TimeBuckets, err = envutil.GetenvDefaultInt(EnvAudioBuckets, audio.DefaultOptions.TimeBuckets); err != nil {
		return Config{}, err
	}
	if c.Audio.Coefficients, err = envutil.GetenvDefaultInt(EnvAudioCoefficients, audio.DefaultOptions.Coefficients); err != nil {
		return Config{}, err
	}
	if c.Audio.CacheSize, err = envutil.GetenvDefaultInt(EnvAudioCache, 1024); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads a .json, .yaml or .yml file (optionally compressed, see serialization.Decode) over
// Default. Fields missing from the file keep their default.
func Load(path string) (Config, error) {
	c, err := Default()
	if err != nil {
		return Config{}, err
	}
	if err := serialization.Decode(path, &c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config %s", path)
	}
	return c, nil
}

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	if _, err := mixer.ParseName(c.Mixer); err != nil {
		return err
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return errors.Wrapf(err, "log level")
	}
	switch {
	case c.ConfidencePercentile <= 0 || c.ConfidencePercentile > 100:
		return errors.Errorf("confidence_percentile must be in (0, 100], got %v", c.ConfidencePercentile)
	case c.Audio.TimeBuckets <= 0:
		return errors.Errorf("audio.time_buckets must be positive, got %d", c.Audio.TimeBuckets)
	case c.Audio.Coefficients <= 0:
		return errors.Errorf("audio.coefficients must be positive, got %d", c.Audio.Coefficients)
	case c.Audio.CacheSize < 0:
		return errors.Errorf("audio.cache_size must not be negative, got %d", c.Audio.CacheSize)
	}
	return nil
}

// MixerName returns the configured mixer.
func (c Config) MixerName() mixer.Name {
	return mixer.Name(c.Mixer)
}

// PredictorOptions returns the options for predictor.New.
func (c Config) PredictorOptions() predictor.Options {
	return predictor.Options{
		Encoders:             registry.Options{Audio: c.Audio},
		ConfidencePercentile: c.ConfidencePercentile,
	}
}
