package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// Logger holds logger configuration
type Logger struct {
	Level string
	JSON  bool
}

// AddFlags registers the logger flags, defaulting from RELPUB_LOG_LEVEL and RELPUB_LOG_JSON
func (c *Logger) AddFlags(flags *pflag.FlagSet) {
	level := os.Getenv("RELPUB_LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	flags.StringVar(&c.Level, "log-level", level, "Log level (debug, info, warn, error)")
	flags.BoolVar(&c.JSON, "log-json", os.Getenv("RELPUB_LOG_JSON") == "true", "Output logs in JSON format")
}

// Configure builds a logger writing to w. Logs never go to stdout, which
// carries the machine-parsable status lines.
func (c *Logger) Configure(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.Level)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if c.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler), nil
}

// Apply configures the logger and installs it as the slog default
func (c *Logger) Apply(w io.Writer) error {
	logger, err := c.Configure(w)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
