// Package config loads lostfound settings from defaults, an optional config
// file, a .env file and LOSTFOUND_* environment variables, in rising priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/erazemk/lostfound/internal/matching"
)

// EnvPrefix prefixes every environment variable, e.g. LOSTFOUND_MATCHING_MIN_SCORE.
const EnvPrefix = "LOSTFOUND"

// Config holds application configuration.
type Config struct {
	DB        string `mapstructure:"db" validate:"required"`
	Addr      string `mapstructure:"addr" validate:"required"`
	Log       string `mapstructure:"log"`
	AdminUser string `mapstructure:"admin_user" validate:"required"`

	Matching   Matching   `mapstructure:"matching"`
	Dispatcher Dispatcher `mapstructure:"dispatcher"`
	RateLimit  RateLimit  `mapstructure:"ratelimit"`
}

// Matching holds the match pipeline thresholds.
type Matching struct {
	MinScore     int `mapstructure:"min_score" validate:"gte=0,lte=100"`
	NotifyScore  int `mapstructure:"notify_score" validate:"gte=0,lte=100"`
	TopN         int `mapstructure:"top_n" validate:"gte=1"`
	ScoreWorkers int `mapstructure:"score_workers" validate:"gte=1"`
}

// Dispatcher sizes the background pipeline worker pool.
type Dispatcher struct {
	Workers    int           `mapstructure:"workers" validate:"gte=1"`
	QueueSize  int           `mapstructure:"queue_size" validate:"gte=1"`
	RunTimeout time.Duration `mapstructure:"run_timeout" validate:"gte=0"`
}

// RateLimit bounds API requests per client IP. Zero requests per minute disables it.
type RateLimit struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"gte=0"`
	Burst             int `mapstructure:"burst" validate:"gte=1"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// SetDefaults registers every key with its default value. Keys without a
// default are invisible to environment lookups during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("db", "lostfound.db")
	v.SetDefault("addr", ":8080")
	v.SetDefault("log", "")
	v.SetDefault("admin_user", "admin")

	def := matching.DefaultConfig()
	v.SetDefault("matching.min_score", def.MinScore)
	v.SetDefault("matching.notify_score", def.NotifyScore)
	v.SetDefault("matching.top_n", def.TopN)
	v.SetDefault("matching.score_workers", def.ScoreWorkers)

	v.SetDefault("dispatcher.workers", 2)
	v.SetDefault("dispatcher.queue_size", 100)
	v.SetDefault("dispatcher.run_timeout", 30*time.Second)

	v.SetDefault("ratelimit.requests_per_minute", 120)
	v.SetDefault("ratelimit.burst", 20)
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads the optional config file into v and returns the validated config.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (%s)", fe.Namespace(), fe.Tag(), fe.Param()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// MatchingConfig converts the matching section to pipeline settings.
func (c *Config) MatchingConfig() matching.Config {
	return matching.Config{
		TopN:         c.Matching.TopN,
		MinScore:     c.Matching.MinScore,
		NotifyScore:  c.Matching.NotifyScore,
		ScoreWorkers: c.Matching.ScoreWorkers,
	}
}
