// Package config loads exchange settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultHost is used for creative URLs when a request carries no Host header.
const DefaultHost = "mocktioneer.edgecompute.app"

type HttpServer struct {
	Host string `yaml:"HOST" env:"MOCKTIONEER_HOST" env-default:"0.0.0.0"`
	Port uint16 `yaml:"PORT" env:"MOCKTIONEER_PORT" env-default:"8080"`

	RequestTimeout        time.Duration `yaml:"REQUEST_TIMEOUT" env:"MOCKTIONEER_REQUEST_TIMEOUT" env-default:"10s"`
	ShutdownTimeout       time.Duration `yaml:"SHUTDOWN_TIMEOUT" env:"MOCKTIONEER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxConcurrentRequests int           `yaml:"MAX_CONCURRENT_REQUESTS" env:"MOCKTIONEER_MAX_CONCURRENT_REQUESTS" env-default:"256"`
}

type LogConfig struct {
	Level  string `yaml:"LOG_LEVEL" env:"MOCKTIONEER_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"LOG_FORMAT" env:"MOCKTIONEER_LOG_FORMAT" env-default:"text"`
}

type KeySetConfig struct {
	TTL          time.Duration `yaml:"KEYSET_TTL" env:"MOCKTIONEER_KEYSET_TTL" env-default:"10m"`
	FetchTimeout time.Duration `yaml:"KEYSET_FETCH_TIMEOUT" env:"MOCKTIONEER_KEYSET_FETCH_TIMEOUT" env-default:"5s"`
	Scheme       string        `yaml:"KEYSET_SCHEME" env:"MOCKTIONEER_KEYSET_SCHEME" env-default:"http"`
	Namespace    string        `yaml:"KEYSET_NAMESPACE" env:"MOCKTIONEER_KEYSET_NAMESPACE" env-default:"ts"`
	SingleFlight bool          `yaml:"KEYSET_SINGLE_FLIGHT" env:"MOCKTIONEER_KEYSET_SINGLE_FLIGHT" env-default:"false"`
}

// ExchangeConfig is the full configuration of the exchange service.
type ExchangeConfig struct {
	HttpServer
	LogConfig
	KeySet KeySetConfig

	DefaultHost    string `yaml:"DEFAULT_HOST" env:"MOCKTIONEER_DEFAULT_HOST" env-default:"mocktioneer.edgecompute.app"`
	MetricsEnabled bool   `yaml:"METRICS_ENABLED" env:"MOCKTIONEER_METRICS_ENABLED" env-default:"true"`
}

func getEnvFileNames() []string {
	return []string{".env.local", ".env"}
}

// Load reads .env.local and .env when present, then the process environment.
// Variables already set in the environment win over the files.
func Load() (*ExchangeConfig, error) {
	for _, fileName := range getEnvFileNames() {
		if err := godotenv.Load(fileName); err != nil {
			logrus.Debugf("skipping env file %s: %v", fileName, err)
		}
	}

	var cfg ExchangeConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *ExchangeConfig) Validate() error {
	var errs []error
	if c.MaxConcurrentRequests < 1 {
		errs = append(errs, fmt.Errorf("MOCKTIONEER_MAX_CONCURRENT_REQUESTS must be positive, got %d", c.MaxConcurrentRequests))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("MOCKTIONEER_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout))
	}
	if c.KeySet.TTL <= 0 {
		errs = append(errs, fmt.Errorf("MOCKTIONEER_KEYSET_TTL must be positive, got %s", c.KeySet.TTL))
	}
	if c.KeySet.Scheme != "http" && c.KeySet.Scheme != "https" {
		errs = append(errs, fmt.Errorf("MOCKTIONEER_KEYSET_SCHEME must be http or https, got %q", c.KeySet.Scheme))
	}
	if c.Format != "text" && c.Format != "json" {
		errs = append(errs, fmt.Errorf("MOCKTIONEER_LOG_FORMAT must be text or json, got %q", c.Format))
	}
	if _, err := logrus.ParseLevel(c.Level); err != nil {
		errs = append(errs, fmt.Errorf("MOCKTIONEER_LOG_LEVEL: %w", err))
	}
	if c.DefaultHost == "" {
		c.DefaultHost = DefaultHost
	}
	return errors.Join(errs...)
}

// Addr is the listen address.
func (c *ExchangeConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}

// NewLogger builds the service logger from the log settings.
func (c *ExchangeConfig) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(c.Level); err == nil {
		logger.SetLevel(level)
	}
	if c.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
