package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payment completion worker.
	PaymentWorkerCount       int `mapstructure:"PAYMENT_WORKER_COUNT"`
	PaymentMaxRetries        int `mapstructure:"PAYMENT_MAX_RETRIES"`
	PaymentRetryBaseDelaySec int `mapstructure:"PAYMENT_RETRY_BASE_DELAY_SEC"`
	PaymentRetryMaxDelaySec  int `mapstructure:"PAYMENT_RETRY_MAX_DELAY_SEC"`

	// Reservation recovery sweep.
	ReservationSweepIntervalSec int `mapstructure:"RESERVATION_SWEEP_INTERVAL_SEC"`
	ReservationHoldTimeoutSec   int `mapstructure:"RESERVATION_HOLD_TIMEOUT_SEC"`

	// Appointment listing.
	MaxPageSize int `mapstructure:"MAX_PAGE_SIZE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("PAYMENT_WORKER_COUNT", 10)
	viper.SetDefault("PAYMENT_MAX_RETRIES", 5)
	viper.SetDefault("PAYMENT_RETRY_BASE_DELAY_SEC", 5)
	viper.SetDefault("PAYMENT_RETRY_MAX_DELAY_SEC", 600)
	viper.SetDefault("RESERVATION_SWEEP_INTERVAL_SEC", 60)
	viper.SetDefault("RESERVATION_HOLD_TIMEOUT_SEC", 900)
	viper.SetDefault("MAX_PAGE_SIZE", 100)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// PaymentRetryBaseDelay returns the configured backoff base as a duration.
func PaymentRetryBaseDelay() time.Duration {
	return time.Duration(AppConfig.PaymentRetryBaseDelaySec) * time.Second
}

// PaymentRetryMaxDelay returns the backoff cap as a duration.
func PaymentRetryMaxDelay() time.Duration {
	return time.Duration(AppConfig.PaymentRetryMaxDelaySec) * time.Second
}

// ReservationSweepInterval returns how often the recovery sweep runs.
func ReservationSweepInterval() time.Duration {
	return time.Duration(AppConfig.ReservationSweepIntervalSec) * time.Second
}

// ReservationHoldTimeout returns how long a reservation may stay held
// without a commit or release before the sweep reclaims it.
func ReservationHoldTimeout() time.Duration {
	return time.Duration(AppConfig.ReservationHoldTimeoutSec) * time.Second
}
