// Package logger builds the zerolog logger used by the genflow command.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config contains logging configuration.
type Config struct {
	Level     string `mapstructure:"level" validate:"oneof=trace debug info warn error disabled"`
	Format    string `mapstructure:"format" validate:"oneof=json console"`
	Output    string `mapstructure:"output" validate:"oneof=stdout stderr"`
	NoColor   bool   `mapstructure:"no_color"`
	Timestamp bool   `mapstructure:"timestamp"`
}

// DefaultConfig logs info and above to stderr, leaving stdout to the
// pipeline output.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "console",
		Output:    "stderr",
		Timestamp: true,
	}
}

// ApplyDefaults fills in empty fields from DefaultConfig.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Level == "" {
		c.Level = d.Level
	}
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.Output == "" {
		c.Output = d.Output
	}
}

// New creates a logger writing to the output named in cfg.
func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, outputWriter(cfg.Output))
}

// NewWithWriter creates a logger writing to w. It also sets the zerolog
// global level, which caps every logger in the process.
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	cfg.ApplyDefaults()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var zl zerolog.Logger
	if strings.ToLower(cfg.Format) == "console" {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:         w,
			TimeFormat:  "15:04:05",
			NoColor:     cfg.NoColor,
			FormatLevel: formatLevel,
		})
	} else {
		zl = zerolog.New(w)
	}

	zl = zl.Level(level)
	if cfg.Timestamp {
		zl = zl.With().Timestamp().Logger()
	}
	return zl
}

func formatLevel(i interface{}) string {
	switch lvl := strings.ToUpper(fmt.Sprintf("%s", i)); lvl {
	case "TRACE":
		return "[TRC]"
	case "DEBUG":
		return "[DBG]"
	case "INFO":
		return "[INF]"
	case "WARN":
		return "[WRN]"
	case "ERROR":
		return "[ERR]"
	default:
		return "[" + lvl + "]"
	}
}

func outputWriter(output string) io.Writer {
	if strings.ToLower(output) == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}
