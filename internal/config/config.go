// Package config loads planner settings from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full planner configuration.
type Config struct {
	MaxWalkingMinutes  int          `yaml:"maxWalkingMinutes"`
	MergeBudgetMinutes int          `yaml:"mergeBudgetMinutes"`
	SplitOversized     bool         `yaml:"splitOversized"`
	OversizeThreshold  int          `yaml:"oversizeThreshold"`
	Verbose            bool         `yaml:"verbose"`
	MetricsAddr        string       `yaml:"metricsAddr"`
	RedisURL           string       `yaml:"redisUrl"`
	RedisCacheTTL      string       `yaml:"redisCacheTtl"`
	Google             GoogleConfig `yaml:"google"`
}

// GoogleConfig configures the Directions provider.
type GoogleConfig struct {
	APIKey            string  `yaml:"apiKey"`
	TimeoutSeconds    float64 `yaml:"timeoutSeconds"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
}

// Load reads the YAML file at path (skipped when empty) and then applies
// environment overrides on top.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GOOGLE_PLACES_API_KEY"); v != "" {
		c.Google.APIKey = v
	}
	if v := envFloat("GOOGLE_MAPS_TIMEOUT_SECONDS"); v > 0 {
		c.Google.TimeoutSeconds = v
	}
	if v := envFloat("GOOGLE_MAPS_RPS"); v > 0 {
		c.Google.RequestsPerSecond = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}
	if v := envInt("MAX_WALKING_MINUTES"); v > 0 {
		c.MaxWalkingMinutes = v
	}
	if v := os.Getenv("VERBOSE_LOGS"); v == "1" || v == "true" {
		c.Verbose = true
	}
}

// GoogleTimeout returns the provider timeout, defaulting to 10s.
func (c Config) GoogleTimeout() time.Duration {
	if c.Google.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Google.TimeoutSeconds * float64(time.Second))
}

// CacheTTL parses the Redis TTL, defaulting to zero (the cache applies its
// own default).
func (c Config) CacheTTL() time.Duration {
	if c.RedisCacheTTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.RedisCacheTTL)
	if err != nil {
		return 0
	}
	return d
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envFloat(key string) float64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
