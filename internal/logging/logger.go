package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/logcheck/internal/config"
)

// NewLogger creates a structured zerolog.Logger carrying the host context
// from the config. Components derive their own loggers from it with a
// "component" field.
func NewLogger(cfg *config.Config) zerolog.Logger {
	ctx := zerolog.New(os.Stdout).With().Timestamp()

	if cfg.Hostname != "" {
		ctx = ctx.Str("host", cfg.Hostname)
	}

	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
