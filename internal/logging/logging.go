// Package logging builds the daemon's zap logger: JSON in production,
// console in development, with the service name stamped on every entry
// and high-volume info logs sampled.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "everaidd"

// Config controls logger construction.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string `koanf:"level"`
	// Format is "json" or "console". Empty means json.
	Format string `koanf:"format"`
	// Sampling caps repeated info-level entries per second. On by
	// default for json output.
	Sampling bool `koanf:"sampling"`
}

// New constructs a logger from the config.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "", "json":
		zapCfg = zap.NewProductionConfig()
		if !cfg.Sampling {
			zapCfg.Sampling = nil
		}
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.With(zap.String("service", serviceName)), nil
}
