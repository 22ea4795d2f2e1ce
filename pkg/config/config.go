package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RetryConfig tunes the optional retry transport. Retries stay off unless
// this block is present with max_attempts > 1.
type RetryConfig struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialBackoff    float64 `yaml:"initial_backoff"`    // seconds
	BackoffMultiplier float64 `yaml:"backoff_multiplier"` // default 2.0
	RetryableStatuses []int   `yaml:"retryable_statuses"`
}

// Config holds everything needed to talk to one Shopware instance.
type Config struct {
	BaseURL      string `yaml:"base_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	// InsecureTLS disables certificate verification. Verification stays
	// strict unless this is set explicitly.
	InsecureTLS    bool `yaml:"insecure_tls,omitempty"`
	TimeoutSeconds int  `yaml:"timeout_seconds,omitempty"`

	DefaultCurrency string  `yaml:"default_currency,omitempty"`
	DefaultTaxRate  float64 `yaml:"default_tax_rate,omitempty"`

	LogLevel string       `yaml:"log_level,omitempty"`
	Retry    *RetryConfig `yaml:"retry,omitempty"`
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ValidationError describes one invalid or missing config field.
type ValidationError struct {
	Field   string
	Message string
}

// Returns the string representation of validation error
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FromEnv builds a Config from SHOPWARE_* environment variables.
// Callers load .env files themselves (godotenv) before calling this.
func FromEnv() *Config {
	cfg := &Config{
		BaseURL:         getEnv("SHOPWARE_BASE_URL", ""),
		ClientID:        getEnv("SHOPWARE_CLIENT_ID", ""),
		ClientSecret:    getEnv("SHOPWARE_CLIENT_SECRET", ""),
		InsecureTLS:     getEnvAsBool("SHOPWARE_INSECURE_TLS", false),
		TimeoutSeconds:  getEnvAsInt("SHOPWARE_TIMEOUT_SECONDS", 0),
		DefaultCurrency: getEnv("SHOPWARE_DEFAULT_CURRENCY", ""),
		DefaultTaxRate:  getEnvAsFloat("SHOPWARE_DEFAULT_TAX_RATE", 0),
		LogLevel:        getEnv("LOG_LEVEL", ""),
	}
	cfg.setDefaults()
	return cfg
}

// Load reads a YAML config file. ${VAR} references are expanded from the
// environment before parsing, so secrets can stay out of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	expanded := os.Expand(string(data), os.Getenv)

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.setDefaults()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("validation errors: %v", errs)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = "EUR"
	}
	c.DefaultCurrency = strings.ToUpper(c.DefaultCurrency)
	if c.DefaultTaxRate <= 0 {
		c.DefaultTaxRate = 19
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Retry != nil && c.Retry.BackoffMultiplier <= 0 {
		c.Retry.BackoffMultiplier = 2.0
	}
}

// Validate checks that all required fields are present
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.BaseURL == "" {
		errors = append(errors, ValidationError{Field: "base_url", Message: "is required"})
	}
	if c.ClientID == "" {
		errors = append(errors, ValidationError{Field: "client_id", Message: "is required"})
	}
	if c.ClientSecret == "" {
		errors = append(errors, ValidationError{Field: "client_secret", Message: "is required"})
	}

	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
