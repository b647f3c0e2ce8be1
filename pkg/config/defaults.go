package config

import "time"

const (
	DefaultStorePath = "parkfinder.db"

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRegularSlots = 40
	DefaultEVSlots      = 10

	DefaultHourlyRate       = 20.0
	DefaultFreeGraceMinutes = 30

	DefaultRateLimitRPS   = 10
	DefaultRateLimitBurst = 20

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
