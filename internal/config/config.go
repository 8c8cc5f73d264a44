// Package config loads runtime settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/ironsheep/vegetation-tools-mcp/internal/vegetation"
)

// Default detection bounds: a broad green band that excludes gray and dark
// pixels.
const (
	DefaultHMin = 35
	DefaultHMax = 85
	DefaultSMin = 50
	DefaultSMax = 255
	DefaultVMin = 50
	DefaultVMax = 255
)

type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel zerolog.Level

	// DefaultRange fills any bound a caller leaves unset.
	DefaultRange vegetation.ColorRange

	// Backend names the registered detection backend.
	Backend string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: zerolog.InfoLevel,
		DefaultRange: vegetation.NewColorRange(
			DefaultHMin, DefaultHMax,
			DefaultSMin, DefaultSMax,
			DefaultVMin, DefaultVMax,
		),
		Backend: vegetation.DefaultBackend,
	}
}

// Load reads an optional .env file and then the environment. Unset variables
// keep their defaults; malformed ones fail.
func Load() (Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, which has the signature of
// os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs error

	if v, ok := lookup("IMAGE_MCP_LOG_LEVEL"); ok && v != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			errs = multierr.Append(errs, errors.Wrap(err, "IMAGE_MCP_LOG_LEVEL"))
		} else {
			cfg.LogLevel = level
		}
	}

	r := &cfg.DefaultRange
	for _, f := range []struct {
		key string
		dst *int
	}{
		{"VEGETATION_H_MIN", &r.Lower.H},
		{"VEGETATION_H_MAX", &r.Upper.H},
		{"VEGETATION_S_MIN", &r.Lower.S},
		{"VEGETATION_S_MAX", &r.Upper.S},
		{"VEGETATION_V_MIN", &r.Lower.V},
		{"VEGETATION_V_MAX", &r.Upper.V},
	} {
		v, ok := lookup(f.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "%s", f.key))
			continue
		}
		*f.dst = n
	}
	if errs == nil {
		errs = errors.Wrap(cfg.DefaultRange.Validate(), "default range")
	}

	if v, ok := lookup("VEGETATION_BACKEND"); ok && v != "" {
		cfg.Backend = v
	}
	if _, err := vegetation.LookupBackend(cfg.Backend); err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "VEGETATION_BACKEND"))
	}

	if errs != nil {
		return Config{}, errs
	}
	return cfg, nil
}
