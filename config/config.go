package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
}

type HTTPConfig struct {
	Address             string  `yaml:"address"`
	ReadTimeoutSeconds  int     `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int     `yaml:"write_timeout_seconds"`
	RateLimitRPS        float64 `yaml:"rate_limit_rps"`
	RateLimitBurst      int     `yaml:"rate_limit_burst"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	HoldTTLMinutes  int `yaml:"hold_ttl_minutes"`
	FlightsCacheTTL int `yaml:"flights_cache_ttl_seconds"`
}

func (b BookingConfig) HoldTTL() time.Duration {
	return time.Duration(b.HoldTTLMinutes) * time.Minute
}

func (b BookingConfig) CacheTTL() time.Duration {
	return time.Duration(b.FlightsCacheTTL) * time.Second
}

type WorkerConfig struct {
	ExpirationSweepMinutes int  `yaml:"expiration_sweep_minutes"`
	SweepBatchSize         int  `yaml:"sweep_batch_size"`
	LockTTLSeconds         int  `yaml:"lock_ttl_seconds"`
	Embedded               bool `yaml:"embedded"`
}

func (w WorkerConfig) SweepInterval() time.Duration {
	return time.Duration(w.ExpirationSweepMinutes) * time.Minute
}

func (w WorkerConfig) LockTTL() time.Duration {
	return time.Duration(w.LockTTLSeconds) * time.Second
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

// LoadConfig reads the YAML file at path, applies .env and environment
// overrides, fills defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.ReadTimeoutSeconds == 0 {
		c.HTTP.ReadTimeoutSeconds = 15
	}
	if c.HTTP.WriteTimeoutSeconds == 0 {
		c.HTTP.WriteTimeoutSeconds = 15
	}
	if c.HTTP.RateLimitRPS == 0 {
		c.HTTP.RateLimitRPS = 100
	}
	if c.HTTP.RateLimitBurst == 0 {
		c.HTTP.RateLimitBurst = 200
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Booking.HoldTTLMinutes == 0 {
		c.Booking.HoldTTLMinutes = 30
	}
	if c.Booking.FlightsCacheTTL == 0 {
		c.Booking.FlightsCacheTTL = 60
	}
	if c.Worker.ExpirationSweepMinutes == 0 {
		c.Worker.ExpirationSweepMinutes = 5
	}
	if c.Worker.SweepBatchSize == 0 {
		c.Worker.SweepBatchSize = 500
	}
	if c.Worker.LockTTLSeconds == 0 {
		c.Worker.LockTTLSeconds = 60
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "booking-notifications"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageDriverPostgres
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Booking.HoldTTLMinutes < 0:
		return errors.New("booking.hold_ttl_minutes must be positive")
	case c.Booking.FlightsCacheTTL < 0:
		return errors.New("booking.flights_cache_ttl_seconds must be positive")
	case c.Worker.ExpirationSweepMinutes < 0:
		return errors.New("worker.expiration_sweep_minutes must be positive")
	case c.Worker.SweepBatchSize < 0:
		return errors.New("worker.sweep_batch_size must be positive")
	case c.HTTP.RateLimitRPS < 0 || c.HTTP.RateLimitBurst < 0:
		return errors.New("http rate limit must be positive")
	}
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	return nil
}

// ValidateWorker checks settings a standalone worker process needs on top of Validate.
func (c *Config) ValidateWorker() error {
	if c.Storage.Driver == StorageDriverMemory {
		return errors.New("storage.driver memory is per process; set worker.embedded in the api instead of running a worker")
	}
	return nil
}
