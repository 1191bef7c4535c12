package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roombook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 64 * 1024

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 35 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultHotelBaseURL        = "http://localhost:8081"
	DefaultHotelTimeout        = 2 * time.Second
	DefaultHotelRetries        = 3
	DefaultHotelRetryBaseDelay = 300 * time.Millisecond

	DefaultHoldGuardTTL = 5 * time.Second
)
