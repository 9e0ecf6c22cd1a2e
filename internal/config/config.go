package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lox/nycair/internal/dataset"
)

// Config holds the flags shared by every nycair command. Each field falls
// back to its environment variable when the flag is not given.
type Config struct {
	Data         string        `help:"Dataset location: a CSV path or a file, http(s), ftp, gs or sqlite URL." default:"data/Air_Quality.csv" env:"NYCAIR_DATA"`
	Pollutant    string        `help:"Name of the pollutant to chart." default:"Nitrogen dioxide (NO2)" env:"NYCAIR_POLLUTANT"`
	FetchTimeout time.Duration `help:"Timeout for remote dataset fetches." default:"30s" env:"NYCAIR_FETCH_TIMEOUT"`
	LogLevel     string        `help:"Log level." default:"info" enum:"debug,info,warn,error" env:"LOG_LEVEL"`
	LogFormat    string        `help:"Log format." default:"json" enum:"json,text" env:"LOG_FORMAT"`
}

// Validate checks the values kong cannot check on its own.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data) == "" {
		return errors.New("data location must not be empty")
	}
	if strings.TrimSpace(c.Pollutant) == "" {
		return errors.New("pollutant must not be empty")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Logger returns the logger described by the config, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return NewLogger(c.LogLevel, c.LogFormat, w)
}

// Loader opens the configured dataset source and wraps it in a caching loader.
func (c *Config) Loader(logger *slog.Logger) (*dataset.Loader, error) {
	src, err := dataset.OpenSource(c.Data, dataset.Options{Timeout: c.FetchTimeout})
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	return dataset.NewLoader(src, c.Pollutant, logger), nil
}

// NewLogger builds a slog logger. Unknown levels fall back to info and
// unknown formats to JSON.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	lvl, err := parseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// LoadDotenv loads environment variables from the given files, or from .env
// when none are named. Missing files are ignored and variables that are
// already set are kept.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
