// Package config loads the genflow command configuration from flags, the
// environment, an optional .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vnykmshr/genflow/internal/logger"
	gferrors "github.com/vnykmshr/genflow/pkg/common/errors"
)

const module = "config"

// EnvPrefix prefixes every environment variable the loader reads, so
// source.kind is read from GENFLOW_SOURCE_KIND.
const EnvPrefix = "GENFLOW"

// Config is the complete genflow command configuration.
type Config struct {
	Log     logger.Config `mapstructure:"log"`
	Source  SourceConfig  `mapstructure:"source"`
	Ops     []string      `mapstructure:"ops"`
	Limit   int           `mapstructure:"limit" validate:"gte=0"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// SourceConfig selects and parameterizes the pipeline source.
type SourceConfig struct {
	Kind  string `mapstructure:"kind" validate:"oneof=range count cron redis"`
	Start int64  `mapstructure:"start"`
	Stop  int64  `mapstructure:"stop"`
	Step  int64  `mapstructure:"step"`
	Cron  string `mapstructure:"cron" validate:"required_if=Kind cron"`
	// After is the RFC 3339 time cron activations are computed from; empty
	// means now.
	After   string `mapstructure:"after" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Seconds bool   `mapstructure:"seconds"`
	Key     string `mapstructure:"key" validate:"required_if=Kind redis"`
}

// RedisConfig configures the Redis connection used by the redis source and
// the optional list sink.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required_with=Output"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	PageSize int    `mapstructure:"page_size" validate:"gt=0"`
	// Output, when set, appends the pipeline output to this list instead of
	// printing it.
	Output string `mapstructure:"output"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address of the /metrics endpoint; empty disables
	// metrics.
	Addr      string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Namespace string `mapstructure:"namespace"`
}

// Enabled reports whether metrics are collected.
func (m MetricsConfig) Enabled() bool {
	return m.Addr != ""
}

func setDefaults(v *viper.Viper) {
	def := logger.DefaultConfig()
	v.SetDefault("log.level", def.Level)
	v.SetDefault("log.format", def.Format)
	v.SetDefault("log.output", def.Output)
	v.SetDefault("log.no_color", def.NoColor)
	v.SetDefault("log.timestamp", def.Timestamp)

	v.SetDefault("source.kind", "range")
	v.SetDefault("source.start", 0)
	v.SetDefault("source.stop", 10)
	v.SetDefault("source.step", 1)
	v.SetDefault("source.cron", "")
	v.SetDefault("source.after", "")
	v.SetDefault("source.seconds", false)
	v.SetDefault("source.key", "")

	v.SetDefault("ops", []string{})
	v.SetDefault("limit", 0)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.page_size", 100)
	v.SetDefault("redis.output", "")

	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.namespace", "genflow")
}

// NewFlagSet returns the command-line flags the loader understands.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")
	fs.String("env-file", "", "path to a .env file (default ./.env when present)")

	fs.String("source", "range", "source kind: range, count, cron or redis")
	fs.Int64("start", 0, "first value of a range or count source")
	fs.Int64("stop", 10, "exclusive upper bound of a range source")
	fs.Int64("step", 1, "increment of a range or count source")
	fs.String("cron", "", "cron expression of a cron source")
	fs.String("after", "", "RFC 3339 start time of a cron source (default now)")
	fs.Bool("seconds", false, "cron expression has a leading seconds field")
	fs.String("key", "", "list key of a redis source")

	fs.StringArray("op", nil, "pipeline operator such as filter:even or take:5 (repeatable)")
	fs.Int("limit", 0, "stop after this many output lines (0 means no limit)")

	fs.String("redis-addr", "localhost:6379", "Redis address")
	fs.String("redis-output", "", "append output to this Redis list instead of printing it")

	fs.String("log-level", "info", "log level: trace, debug, info, warn, error or disabled")
	fs.String("log-format", "console", "log format: console or json")

	fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	return fs
}

var flagKeys = map[string]string{
	"source":       "source.kind",
	"start":        "source.start",
	"stop":         "source.stop",
	"step":         "source.step",
	"cron":         "source.cron",
	"after":        "source.after",
	"seconds":      "source.seconds",
	"key":          "source.key",
	"op":           "ops",
	"limit":        "limit",
	"redis-addr":   "redis.addr",
	"redis-output": "redis.output",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"metrics-addr": "metrics.addr",
}

// Load parses args and merges, from lowest to highest precedence, the
// defaults, the YAML file named by --config, the environment (after loading
// the .env file) and the flags set on the command line. The result is
// validated before it is returned.
func Load(args []string) (*Config, error) {
	fs := NewFlagSet("genflow")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return LoadFlags(fs)
}

// LoadFlags is Load for an already parsed flag set created by NewFlagSet.
func LoadFlags(fs *pflag.FlagSet) (*Config, error) {
	if err := loadEnvFile(fs); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Log.ApplyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile loads the .env file named by --env-file, or ./.env when it
// exists. Variables already set in the environment win.
func loadEnvFile(fs *pflag.FlagSet) error {
	path, _ := fs.GetString("env-file")
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their config keys.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

// Validate checks cfg against its struct tags. The first violation is
// returned as a *errors.ValidationError.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err
	}
	fe := fieldErrors[0]
	return gferrors.NewValidationError(module, fieldPath(fe), fe.Value(), describe(fe))
}

// fieldPath turns "Config.redis.page_size" into "redis.page_size".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required_if", "required_with":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "datetime":
		return "must be an RFC 3339 time"
	case "hostname_port":
		return "must be host:port"
	default:
		return "is invalid"
	}
}
