package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration for the scraper CLIs.
type Config struct {
	Level   string `json:"level"`   // debug, info, warn, error
	Format  string `json:"format"`  // json, pretty
	Console bool   `json:"console"` // log to stderr
}

// DefaultConfig returns sensible defaults: pretty console output at info
// level, which is what the scheduled scrape job runs with.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  "pretty",
		Console: true,
	}
}

// Setup configures the global logger.
func Setup(config *Config) error {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if config.Format == "pretty" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}
	if !config.Console {
		out = io.Discard
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// GetLogger returns a contextual logger for a component.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// GetRunLogger returns a logger scoped to a single scrape run.
func GetRunLogger(component, runID string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Str("run_id", runID).
		Logger()
}
