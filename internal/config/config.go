// Package config loads voxedit settings from the environment or a YAML file.
//
// Every tuned constant of the engine is exposed here so deployments can
// adjust it without a rebuild. Defaults come from the env tags, which keeps
// a single source of truth for both loaders.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"go.opentelemetry.io/otel/metric"
	"gopkg.in/yaml.v3"

	"github.com/ik5/voxedit"
	"github.com/ik5/voxedit/codec"
	"github.com/ik5/voxedit/silence"
	"github.com/ik5/voxedit/waveform"
)

// Config holds all voxedit settings.
type Config struct {
	Codec    CodecConfig    `yaml:"codec"`
	Silence  SilenceConfig  `yaml:"silence"`
	Waveform WaveformConfig `yaml:"waveform"`
	Edit     EditConfig     `yaml:"edit"`
	Log      LogConfig      `yaml:"log"`

	// Workers bounds how many files batch commands process at once.
	Workers int `env:"VOXEDIT_WORKERS, default=4" yaml:"workers" validate:"min=1,max=64"`
}

// CodecConfig tunes the compressed bridge.
type CodecConfig struct {
	PollTimeout  time.Duration `env:"VOXEDIT_CODEC_POLL_TIMEOUT, default=10ms" yaml:"poll_timeout" validate:"gt=0"`
	MaxIdlePolls int           `env:"VOXEDIT_CODEC_MAX_IDLE_POLLS, default=50" yaml:"max_idle_polls" validate:"min=1"`
	OpusBitrate  int           `env:"VOXEDIT_OPUS_BITRATE, default=32000" yaml:"opus_bitrate" validate:"min=6000,max=510000"`
}

// SilenceConfig tunes the segmenter.
type SilenceConfig struct {
	Threshold    int   `env:"VOXEDIT_SILENCE_THRESHOLD, default=800" yaml:"threshold" validate:"min=1,max=32767"`
	MinSilenceMs int64 `env:"VOXEDIT_SILENCE_MIN_SILENCE_MS, default=400" yaml:"min_silence_ms" validate:"min=1"`
	MinSegmentMs int64 `env:"VOXEDIT_SILENCE_MIN_SEGMENT_MS, default=500" yaml:"min_segment_ms" validate:"min=1"`
	WindowMs     int64 `env:"VOXEDIT_SILENCE_WINDOW_MS, default=20" yaml:"window_ms" validate:"min=1,max=1000"`
}

// WaveformConfig tunes envelope extraction.
type WaveformConfig struct {
	SkipDivisor int     `env:"VOXEDIT_WAVEFORM_SKIP_DIVISOR, default=10" yaml:"skip_divisor" validate:"min=1"`
	SkipCap     int     `env:"VOXEDIT_WAVEFORM_SKIP_CAP, default=100" yaml:"skip_cap" validate:"min=0"`
	Stride      int     `env:"VOXEDIT_WAVEFORM_STRIDE, default=100" yaml:"stride" validate:"min=1"`
	NoiseGate   int     `env:"VOXEDIT_WAVEFORM_NOISE_GATE, default=150" yaml:"noise_gate" validate:"min=0,max=32767"`
	Boost       float64 `env:"VOXEDIT_WAVEFORM_BOOST, default=3" yaml:"boost" validate:"gt=0"`
	Floor       int     `env:"VOXEDIT_WAVEFORM_FLOOR, default=5" yaml:"floor" validate:"min=0,max=100"`
	Bars        int     `env:"VOXEDIT_WAVEFORM_BARS, default=100" yaml:"bars" validate:"min=1"`
}

// EditConfig holds sample editor defaults.
type EditConfig struct {
	TargetPeak float64 `env:"VOXEDIT_TARGET_PEAK, default=0.95" yaml:"target_peak" validate:"gt=0,lte=1"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Format string `env:"LOG_FORMAT, default=text" yaml:"format" validate:"oneof=text json"`
	Level  string `env:"LOG_LEVEL, default=info" yaml:"level" validate:"oneof=debug info warn warning error"`
}

var validate = validator.New()

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	var c Config
	// Only the constant default tags are read here, so this cannot fail.
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &c,
		Lookuper: envconfig.MapLookuper(nil),
	}); err != nil {
		panic(fmt.Sprintf("config: bad default tag: %v", err))
	}
	return c
}

// LoadEnv fills a Config from l, usually envconfig.OsLookuper(), and
// validates it.
func LoadEnv(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the YAML file at path over the defaults.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadReader decodes YAML from r over the defaults. Unknown keys are an
// error; an empty document yields the defaults.
func LoadReader(r io.Reader) (*Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags of c.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// EngineOptions maps c onto engine options.
func (c *Config) EngineOptions(logger *slog.Logger, mp metric.MeterProvider) voxedit.Options {
	return voxedit.Options{
		Logger:        logger,
		MeterProvider: mp,
		Codec: codec.Options{
			PollTimeout:  c.Codec.PollTimeout,
			MaxIdlePolls: c.Codec.MaxIdlePolls,
		},
		Silence: silence.Options{
			Threshold:    c.Silence.Threshold,
			MinSilenceMs: c.Silence.MinSilenceMs,
			MinSegmentMs: c.Silence.MinSegmentMs,
			WindowMs:     c.Silence.WindowMs,
		},
		Waveform: waveform.Options{
			SkipDivisor: c.Waveform.SkipDivisor,
			SkipCap:     orOff(c.Waveform.SkipCap),
			Stride:      c.Waveform.Stride,
			NoiseGate:   orOff(c.Waveform.NoiseGate),
			Boost:       c.Waveform.Boost,
			Floor:       orOff(c.Waveform.Floor),
		},
		TargetPeak:  c.Edit.TargetPeak,
		OpusBitrate: c.Codec.OpusBitrate,
	}
}

// orOff maps a configured zero, which turns a waveform stage off, to
// waveform.Off. The engine reads zero as "use the default".
func orOff(v int) int {
	if v == 0 {
		return waveform.Off
	}
	return v
}

// NewLogger creates a structured logger writing to w. When Log.Format is
// "json" it emits JSON, otherwise human-readable text.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.Log.Level)}

	var handler slog.Handler
	if strings.ToLower(c.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
