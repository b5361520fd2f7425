// Package config loads calculus configuration from defaults, an optional
// YAML or TOML file and CALCULUS_* environment variables, in that order of
// increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gocalculus/analysis"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CALCULUS_"

type Config struct {
	Server Server `yaml:"server" toml:"server"`
	Log    Log    `yaml:"log" toml:"log"`
	Engine Engine `yaml:"engine" toml:"engine"`
	Plot   Plot   `yaml:"plot" toml:"plot"`

	// Source is the file the configuration was read from, if any.
	Source string `yaml:"-" toml:"-"`
}

type Server struct {
	Addr           string        `yaml:"addr" toml:"addr" validate:"required"`
	RequestTimeout time.Duration `yaml:"request_timeout" toml:"request_timeout" validate:"gt=0"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace" toml:"shutdown_grace" validate:"gte=0"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" toml:"max_body_bytes" validate:"gt=0"`
	AllowedOrigins []string      `yaml:"allowed_origins" toml:"allowed_origins"`
}

type Log struct {
	Level       string `yaml:"level" toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Environment string `yaml:"environment" toml:"environment" validate:"oneof=development production"`
}

type Engine struct {
	Seeds            int     `yaml:"seeds" toml:"seeds" validate:"gte=1,lte=10000"`
	ScanMin          float64 `yaml:"scan_min" toml:"scan_min"`
	ScanMax          float64 `yaml:"scan_max" toml:"scan_max" validate:"gtfield=ScanMin"`
	MaxIter          int     `yaml:"max_iter" toml:"max_iter" validate:"gte=1"`
	Workers          int     `yaml:"workers" toml:"workers" validate:"gte=0"`
	Epsilon          float64 `yaml:"epsilon" toml:"epsilon" validate:"gt=0"`
	Places           int     `yaml:"places" toml:"places" validate:"gte=1,lte=15"`
	ImagTol          float64 `yaml:"imag_tol" toml:"imag_tol" validate:"gt=0"`
	StrictReal       bool    `yaml:"strict_real" toml:"strict_real"`
	ScanDefaultRange bool    `yaml:"scan_default_range" toml:"scan_default_range"`
}

type Plot struct {
	Samples int     `yaml:"samples" toml:"samples" validate:"gte=2,lte=100000"`
	Min     float64 `yaml:"min" toml:"min"`
	Max     float64 `yaml:"max" toml:"max" validate:"gtfield=Min"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := analysis.DefaultOptions()
	return &Config{
		Server: Server{
			Addr:           ":8080",
			RequestTimeout: 30 * time.Second,
			ShutdownGrace:  10 * time.Second,
			MaxBodyBytes:   1 << 20,
			AllowedOrigins: []string{"*"},
		},
		Log: Log{Level: "info", Environment: "development"},
		Engine: Engine{
			Seeds:   opts.Seeds,
			ScanMin: opts.ScanMin,
			ScanMax: opts.ScanMax,
			MaxIter: opts.MaxIter,
			Epsilon: opts.Epsilon,
			Places:  opts.Places,
			ImagTol: opts.ImagTol,
		},
		Plot: Plot{Samples: opts.Samples, Min: opts.PlotMin, Max: opts.PlotMax},
	}
}

// Load builds the configuration. path may be empty; otherwise its extension
// (.yaml, .yml or .toml) selects the decoder.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		_, err = toml.Decode(string(data), c)
	default:
		return fmt.Errorf("config %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	c.Source = path
	return nil
}

// applyEnv overlays CALCULUS_* variables. A malformed value is an error
// rather than being ignored.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	str("ADDR", &c.Server.Addr)
	duration("REQUEST_TIMEOUT", &c.Server.RequestTimeout)
	if v, ok := lookup(EnvPrefix + "ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	str("LOG_LEVEL", &c.Log.Level)
	str("ENV", &c.Log.Environment)
	integer("SEEDS", &c.Engine.Seeds)
	float("SCAN_MIN", &c.Engine.ScanMin)
	float("SCAN_MAX", &c.Engine.ScanMax)
	integer("MAX_ITER", &c.Engine.MaxIter)
	integer("WORKERS", &c.Engine.Workers)
	float("EPSILON", &c.Engine.Epsilon)
	integer("PLACES", &c.Engine.Places)
	boolean("STRICT_REAL", &c.Engine.StrictReal)
	boolean("SCAN_DEFAULT_RANGE", &c.Engine.ScanDefaultRange)
	integer("PLOT_SAMPLES", &c.Plot.Samples)
	return errors.Join(errs...)
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// EngineOptions maps the engine and plot sections onto analysis.Options.
func (c *Config) EngineOptions() analysis.Options {
	return analysis.Options{
		Seeds:            c.Engine.Seeds,
		ScanMin:          c.Engine.ScanMin,
		ScanMax:          c.Engine.ScanMax,
		MaxIter:          c.Engine.MaxIter,
		Workers:          c.Engine.Workers,
		Epsilon:          c.Engine.Epsilon,
		Places:           c.Engine.Places,
		ImagTol:          c.Engine.ImagTol,
		StrictReal:       c.Engine.StrictReal,
		ScanDefaultRange: c.Engine.ScanDefaultRange,
		Samples:          c.Plot.Samples,
		PlotMin:          c.Plot.Min,
		PlotMax:          c.Plot.Max,
	}
}
