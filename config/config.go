// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config builds the relay coordinator configuration from flags,
// environment variables, and an optional JSON config file.
package config

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/luxfi/relay/auth"
	"github.com/luxfi/relay/monitor"
	"github.com/luxfi/relay/ratelimit"
	"github.com/luxfi/relay/retry"
)

const (
	defaultLogLevel       = "info"
	defaultMetricsPort    = 9090
	defaultRetryBaseDelay = time.Second
)

type Config struct {
	LogLevel               string   `mapstructure:"log-level"`
	MetricsPort            uint16   `mapstructure:"metrics-port"`
	MaxRequestsPerWindow   int      `mapstructure:"max-requests-per-window"`
	RateLimitWindowSeconds uint     `mapstructure:"rate-limit-window-seconds"`
	MaxSubmitAttempts      uint64   `mapstructure:"max-submit-attempts"`
	RetryBaseDelayMS       uint64   `mapstructure:"retry-base-delay-ms"`
	ExponentialBackoff     bool     `mapstructure:"exponential-backoff"`
	AllowedDestinations    []string `mapstructure:"allowed-destinations"`
	MaxFeeCeiling          string   `mapstructure:"max-fee-ceiling"`
	RequiredRole           string   `mapstructure:"required-role"`
	DedupCacheSize         int      `mapstructure:"dedup-cache-size"`
	RoleCacheTTLSeconds    uint     `mapstructure:"role-cache-ttl-seconds"`

	maxFeeCeiling *big.Int
}

func NewConfig(v *viper.Viper) (Config, error) {
	cfg, err := BuildConfig(v)
	if err != nil {
		return cfg, err
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("failed to validate configuration: %w", err)
	}
	return cfg, nil
}

// BuildViper constructs the viper instance. All config keys may be provided
// via config file, environment variable, or flag; each source takes
// precedence over the one after it.
func BuildViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	// Map flag names to env var names. Flags are capitalized, and hyphens
	// are replaced with underscores.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if v.IsSet(ConfigFileKey) {
		v.SetConfigFile(v.GetString(ConfigFileKey))
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func SetDefaultConfigValues(v *viper.Viper) {
	v.SetDefault(LogLevelKey, defaultLogLevel)
	v.SetDefault(MetricsPortKey, defaultMetricsPort)
	v.SetDefault(MaxRequestsPerWindowKey, ratelimit.DefaultMaxRequests)
	v.SetDefault(RateLimitWindowSecondsKey, uint(ratelimit.DefaultWindow/time.Second))
	v.SetDefault(MaxSubmitAttemptsKey, retry.DefaultMaxAttempts)
	v.SetDefault(RetryBaseDelayMSKey, uint64(defaultRetryBaseDelay/time.Millisecond))
	v.SetDefault(RequiredRoleKey, auth.RoleAdmin)
	v.SetDefault(DedupCacheSizeKey, monitor.DefaultDedupCapacity)
}

func BuildConfig(v *viper.Viper) (Config, error) {
	SetDefaultConfigValues(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal viper config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxRequestsPerWindow < 1 {
		return fmt.Errorf("max-requests-per-window must be at least 1")
	}
	if c.RateLimitWindowSeconds == 0 {
		return fmt.Errorf("rate-limit-window-seconds must be positive")
	}
	if c.MaxSubmitAttempts < 1 {
		return fmt.Errorf("max-submit-attempts must be at least 1")
	}
	if c.RetryBaseDelayMS == 0 {
		return fmt.Errorf("retry-base-delay-ms must be positive")
	}
	if c.RequiredRole == "" {
		return fmt.Errorf("required-role must be set")
	}
	if c.DedupCacheSize < 1 {
		return fmt.Errorf("dedup-cache-size must be at least 1")
	}
	if c.MaxFeeCeiling != "" {
		ceiling, ok := new(big.Int).SetString(c.MaxFeeCeiling, 10)
		if !ok || ceiling.Sign() <= 0 {
			return fmt.Errorf("max-fee-ceiling must be a positive decimal integer")
		}
		c.maxFeeCeiling = ceiling
	}
	return nil
}

// RateLimitWindow returns the trailing window duration for the rate
// limiter.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

// RetryBaseDelay returns the delay between submission attempts.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMS) * time.Millisecond
}

// RoleCacheTTL returns the role lookup cache TTL, zero when caching is
// disabled.
func (c *Config) RoleCacheTTL() time.Duration {
	return time.Duration(c.RoleCacheTTLSeconds) * time.Second
}

// MaxFeeCeilingInt returns the parsed fee ceiling, nil when unset.
func (c *Config) MaxFeeCeilingInt() *big.Int {
	return c.maxFeeCeiling
}
