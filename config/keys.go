// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	// Command line option keys
	ConfigFileKey = "config-file"
	VersionKey    = "version"

	// Top-level configuration keys
	LogLevelKey               = "log-level"
	MetricsPortKey            = "metrics-port"
	MaxRequestsPerWindowKey   = "max-requests-per-window"
	RateLimitWindowSecondsKey = "rate-limit-window-seconds"
	MaxSubmitAttemptsKey      = "max-submit-attempts"
	RetryBaseDelayMSKey       = "retry-base-delay-ms"
	ExponentialBackoffKey     = "exponential-backoff"
	AllowedDestinationsKey    = "allowed-destinations"
	MaxFeeCeilingKey          = "max-fee-ceiling"
	RequiredRoleKey           = "required-role"
	DedupCacheSizeKey         = "dedup-cache-size"
	RoleCacheTTLSecondsKey    = "role-cache-ttl-seconds"
)
