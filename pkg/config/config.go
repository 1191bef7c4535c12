package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"roombook/pkg/client"
	kafka_config "roombook/pkg/kafka/config"
	"roombook/pkg/logger"
)

// ServiceBookings runs the booking saga; its request timeout must cover it.
const ServiceBookings = "bookings"

// sagaHotelCalls is the longest chain of hotel calls one booking makes:
// hold, confirm, then release on failure.
const sagaHotelCalls = 3

type Config struct {
	ServiceName string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	HotelBaseURL        string
	HotelTimeout        time.Duration
	HotelRetries        int
	HotelRetryBaseDelay time.Duration

	HoldGuardTTL time.Duration

	Kafka *kafka_config.Config

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		HotelBaseURL:        getEnvStr(EnvHotelBaseURL, DefaultHotelBaseURL),
		HotelTimeout:        getEnvDuration(EnvHotelTimeout, DefaultHotelTimeout),
		HotelRetries:        getEnvNum(EnvHotelRetries, DefaultHotelRetries),
		HotelRetryBaseDelay: getEnvDuration(EnvHotelRetryBaseDelay, DefaultHotelRetryBaseDelay),

		HoldGuardTTL: getEnvDuration(EnvHoldGuardTTL, DefaultHoldGuardTTL),

		Kafka: kafka_config.Load(),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// HotelCallBudget is the worst-case time one remote call may take including
// retries and backoff.
func (cfg *Config) HotelCallBudget() time.Duration {
	budget := time.Duration(cfg.HotelRetries) * cfg.HotelTimeout
	for attempt := 1; attempt < cfg.HotelRetries; attempt++ {
		budget += time.Duration(attempt) * cfg.HotelRetryBaseDelay
	}
	return budget
}

// SagaBudget is the worst-case time a booking saga spends calling hotels.
func (cfg *Config) SagaBudget() time.Duration {
	return sagaHotelCalls * cfg.HotelCallBudget()
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if u, err := url.Parse(cfg.HotelBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("HotelBaseURL must be an absolute URL, got: %s", cfg.HotelBaseURL))
	}
	if cfg.HotelTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("HotelTimeout must be positive, got: %s", cfg.HotelTimeout))
	}
	if cfg.HotelRetries < 1 {
		errors = append(errors, fmt.Sprintf("HotelRetries must be at least 1, got: %d", cfg.HotelRetries))
	}
	if cfg.HotelRetryBaseDelay < 0 {
		errors = append(errors, fmt.Sprintf("HotelRetryBaseDelay cannot be negative, got: %s", cfg.HotelRetryBaseDelay))
	}
	if cfg.ServiceName == ServiceBookings && cfg.RequestTimeout > 0 && cfg.HotelTimeout > 0 {
		if budget := cfg.SagaBudget(); budget > cfg.RequestTimeout {
			errors = append(errors, fmt.Sprintf("RequestTimeout %s is shorter than the booking saga budget %s (3 hotel calls with retries)", cfg.RequestTimeout, budget))
		}
	}
	if cfg.HoldGuardTTL <= 0 {
		errors = append(errors, fmt.Sprintf("HoldGuardTTL must be positive, got: %s", cfg.HoldGuardTTL))
	}

	if cfg.Kafka != nil && cfg.Kafka.Enabled {
		if err := cfg.Kafka.Validate(); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"hotel_base_url", cfg.HotelBaseURL,
		"hotel_timeout", cfg.HotelTimeout,
		"hotel_retries", cfg.HotelRetries,
		"hotel_retry_base_delay", cfg.HotelRetryBaseDelay,
		"hold_guard_ttl", cfg.HoldGuardTTL,
		"saga_budget", cfg.SagaBudget(),
	)
	if cfg.Kafka != nil {
		cfg.Kafka.LogConfiguration(cfg.Log.Info)
	}
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}
