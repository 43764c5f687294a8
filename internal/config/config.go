package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Seed       SeedConfig       `mapstructure:"seed"`
	Store      StoreConfig      `mapstructure:"store"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Security   SecurityConfig   `mapstructure:"security"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	TimeFormat string `mapstructure:"time_format"`
	JSON       bool   `mapstructure:"json"`
}

type SeedConfig struct {
	Path    string        `mapstructure:"path"`
	Latency time.Duration `mapstructure:"latency"`
}

type StoreConfig struct {
	SortComparator string `mapstructure:"sort_comparator"`
	CommitPolicy   string `mapstructure:"commit_policy"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled"`
	MetricsPath       string `mapstructure:"metrics_path"`
}

const envPrefix = "PATIENTS"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 15)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.time_format", time.RFC3339)
	v.SetDefault("log.json", false)
	v.SetDefault("seed.path", "")
	v.SetDefault("seed.latency", "0s")
	v.SetDefault("store.sort_comparator", "stable")
	v.SetDefault("store.commit_policy", "permissive")
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests_per_second", 50.0)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("monitoring.prometheus_enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
}

// LoadConfig reads config.yml from path, or from . and ./config when path is
// empty. A missing file is not an error; defaults and PATIENTS_* environment
// variables still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Store.SortComparator {
	case "stable", "legacy":
	default:
		return fmt.Errorf("unknown sort comparator %q", c.Store.SortComparator)
	}
	switch c.Store.CommitPolicy {
	case "permissive", "required":
	default:
		return fmt.Errorf("unknown commit policy %q", c.Store.CommitPolicy)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit requires positive requests_per_second and burst")
	}
	if c.Seed.Latency < 0 {
		return fmt.Errorf("seed latency must not be negative")
	}
	return nil
}

func (c *Config) ServerTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}
