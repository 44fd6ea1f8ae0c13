// Package config provides configuration types and defaults for classical-quiz.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// CLASSICAL_QUIZ_AUDIO_ENABLED=false.
const EnvPrefix = "CLASSICAL_QUIZ"

const appDir = "classical-quiz"

// Config holds all configuration options for classical-quiz.
type Config struct {
	DBPath        string        `mapstructure:"db_path"`
	CatalogPath   string        `mapstructure:"catalog_path"` // empty uses the built-in catalog
	MediaDir      string        `mapstructure:"media_dir"`    // base for relative sample uris
	AnswerDelay   time.Duration `mapstructure:"answer_delay"`
	MaxCandidates int           `mapstructure:"max_candidates"`
	Audio         AudioConfig   `mapstructure:"audio"`
	Control       ControlConfig `mapstructure:"control"`
	Log           LogConfig     `mapstructure:"log"`
	Tracing       TracingConfig `mapstructure:"tracing"`
}

// AudioConfig controls the playback backend and the clip fetcher.
type AudioConfig struct {
	// Enabled selects the sound card backend. When false clips are
	// simulated and nothing is played.
	Enabled      bool          `mapstructure:"enabled"`
	SampleRate   int           `mapstructure:"sample_rate"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// ControlConfig configures the local control API. An empty address disables it.
type ControlConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"` // color, plain or json
}

type TracingConfig struct {
	// Exporter is one of "none", "stdout" or "otlp".
	Exporter string `mapstructure:"exporter"`
	File     string `mapstructure:"file"`     // stdout exporter target
	Endpoint string `mapstructure:"endpoint"` // otlp grpc endpoint
}

// DefaultDir returns the per-user directory holding the config file, the
// score database and the log.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "." + appDir
	}
	return filepath.Join(dir, appDir)
}

// DefaultConfigPath returns the config file looked up when none is given.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	dir := DefaultDir()
	return Config{
		DBPath:        filepath.Join(dir, "quiz.db"),
		MediaDir:      "media",
		AnswerDelay:   1 * time.Second,
		MaxCandidates: 4,
		Audio: AudioConfig{
			Enabled:      true,
			SampleRate:   44100,
			CacheTTL:     10 * time.Minute,
			FetchTimeout: 15 * time.Second,
		},
		Control: ControlConfig{
			Addr: "127.0.0.1:8765",
		},
		Log: LogConfig{
			Level:  "info",
			File:   filepath.Join(dir, "classical-quiz.log"),
			Format: "plain",
		},
		Tracing: TracingConfig{
			Exporter: "none",
			File:     filepath.Join(dir, "traces.json"),
			Endpoint: "localhost:4317",
		},
	}
}

// SetDefaults registers every default so that environment variables and
// bound flags resolve even when the key is missing from the file.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("catalog_path", d.CatalogPath)
	v.SetDefault("media_dir", d.MediaDir)
	v.SetDefault("answer_delay", d.AnswerDelay)
	v.SetDefault("max_candidates", d.MaxCandidates)
	v.SetDefault("audio.enabled", d.Audio.Enabled)
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.cache_ttl", d.Audio.CacheTTL)
	v.SetDefault("audio.fetch_timeout", d.Audio.FetchTimeout)
	v.SetDefault("control.addr", d.Control.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file", d.Tracing.File)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
}

// Load resolves the configuration from defaults, the config file, the
// environment and whatever flags were bound to v. A missing file is only an
// error when path was given explicitly.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db_path is required")
	}
	if c.AnswerDelay < 0 {
		return fmt.Errorf("answer_delay must not be negative, got %s", c.AnswerDelay)
	}
	if c.MaxCandidates < 2 {
		return fmt.Errorf("max_candidates must be at least 2, got %d", c.MaxCandidates)
	}
	if err := ValidateAudio(c.Audio); err != nil {
		return err
	}
	if err := ValidateLog(c.Log); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateAudio rejects sample rates oto cannot open and negative durations.
func ValidateAudio(a AudioConfig) error {
	switch a.SampleRate {
	case 22050, 44100, 48000:
	default:
		return fmt.Errorf("audio.sample_rate must be 22050, 44100 or 48000, got %d", a.SampleRate)
	}
	if a.CacheTTL < 0 {
		return fmt.Errorf("audio.cache_ttl must not be negative, got %s", a.CacheTTL)
	}
	if a.FetchTimeout <= 0 {
		return fmt.Errorf("audio.fetch_timeout must be positive, got %s", a.FetchTimeout)
	}
	return nil
}

func ValidateLog(l LogConfig) error {
	switch strings.ToLower(l.Format) {
	case "", "color", "plain", "json":
	default:
		return fmt.Errorf("log.format %q is not one of color, plain, json", l.Format)
	}
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", l.Level)
	}
	return nil
}

func ValidateTracing(t TracingConfig) error {
	switch t.Exporter {
	case "", "none":
	case "stdout":
		if t.File == "" {
			return errors.New("tracing.file is required for the stdout exporter")
		}
	case "otlp":
		if t.Endpoint == "" {
			return errors.New("tracing.endpoint is required for the otlp exporter")
		}
	default:
		return fmt.Errorf("tracing.exporter %q is not one of none, stdout, otlp", t.Exporter)
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Classical Quiz Configuration

# Score and game history database
# db_path: ~/.config/classical-quiz/quiz.db

# Sample catalog (default: built-in catalog)
# catalog_path: /path/to/samples.yaml

# Relative sample uris are resolved against this directory
media_dir: media

# Pause between revealing the answer and the next question
answer_delay: 1s

# Composer buttons per question
max_candidates: 4

audio:
  enabled: true         # false simulates playback without a sound card
  sample_rate: 44100    # 22050, 44100 or 48000
  cache_ttl: 10m        # keep fetched clips in memory (0 disables)
  fetch_timeout: 15s

# Local control API used by 'classical-quiz remote'
control:
  addr: 127.0.0.1:8765  # empty disables the API

log:
  level: info           # debug, info, warn, error
  format: plain         # color, plain, json
  # file: ~/.config/classical-quiz/classical-quiz.log

tracing:
  exporter: none        # none, stdout, otlp
  # file: ~/.config/classical-quiz/traces.json
  # endpoint: localhost:4317

# Every key can be overridden from the environment, e.g.
#   CLASSICAL_QUIZ_AUDIO_ENABLED=false
#   CLASSICAL_QUIZ_CONTROL_ADDR=127.0.0.1:9000
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
