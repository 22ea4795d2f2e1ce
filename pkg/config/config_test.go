package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("SHOPWARE_BASE_URL", "https://shop.example.com")
	t.Setenv("SHOPWARE_CLIENT_ID", "id-1")
	t.Setenv("SHOPWARE_CLIENT_SECRET", "secret-1")
	t.Setenv("SHOPWARE_INSECURE_TLS", "true")
	t.Setenv("SHOPWARE_TIMEOUT_SECONDS", "10")
	t.Setenv("SHOPWARE_DEFAULT_CURRENCY", "usd")
	t.Setenv("SHOPWARE_DEFAULT_TAX_RATE", "7.7")

	cfg := FromEnv()

	if cfg.BaseURL != "https://shop.example.com" {
		t.Errorf("unexpected base URL: %q", cfg.BaseURL)
	}
	if !cfg.InsecureTLS {
		t.Error("expected insecure TLS to be enabled")
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("unexpected timeout: %v", cfg.Timeout())
	}
	if cfg.DefaultCurrency != "USD" {
		t.Errorf("expected currency upper-cased, got %q", cfg.DefaultCurrency)
	}
	if cfg.DefaultTaxRate != 7.7 {
		t.Errorf("unexpected tax rate: %v", cfg.DefaultTaxRate)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("expected valid config, got %v", errs)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("SHOPWARE_BASE_URL", "https://shop.example.com")
	t.Setenv("SHOPWARE_CLIENT_ID", "id-1")
	t.Setenv("SHOPWARE_CLIENT_SECRET", "secret-1")
	t.Setenv("SHOPWARE_INSECURE_TLS", "")
	t.Setenv("SHOPWARE_TIMEOUT_SECONDS", "")
	t.Setenv("SHOPWARE_DEFAULT_CURRENCY", "")
	t.Setenv("SHOPWARE_DEFAULT_TAX_RATE", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := FromEnv()

	if cfg.InsecureTLS {
		t.Error("TLS verification must stay strict by default")
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("expected 30s default timeout, got %v", cfg.Timeout())
	}
	if cfg.DefaultCurrency != "EUR" {
		t.Errorf("expected EUR default, got %q", cfg.DefaultCurrency)
	}
	if cfg.DefaultTaxRate != 19 {
		t.Errorf("expected tax rate 19 default, got %v", cfg.DefaultTaxRate)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected info default, got %q", cfg.LogLevel)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_SHOPWARE_SECRET", "s3cret")

	path := filepath.Join(t.TempDir(), "shopbridge.yaml")
	yaml := `
base_url: https://shop.example.com/
client_id: id-1
client_secret: ${TEST_SHOPWARE_SECRET}
timeout_seconds: 5
retry:
  max_attempts: 3
  initial_backoff: 0.5
  retryable_statuses: [502, 503]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.ClientSecret != "s3cret" {
		t.Errorf("expected env expansion, got %q", cfg.ClientSecret)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("unexpected timeout: %v", cfg.Timeout())
	}
	if cfg.Retry == nil || cfg.Retry.MaxAttempts != 3 {
		t.Fatalf("unexpected retry config: %+v", cfg.Retry)
	}
	if cfg.Retry.BackoffMultiplier != 2.0 {
		t.Errorf("expected default backoff multiplier, got %v", cfg.Retry.BackoffMultiplier)
	}
}

func TestLoadRejectsIncompleteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopbridge.yaml")
	if err := os.WriteFile(path, []byte("base_url: https://shop.example.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing credentials")
	}
}

func TestValidateReportsAllMissingFields(t *testing.T) {
	var cfg Config

	errs := cfg.Validate()
	if len(errs) != 3 {
		t.Fatalf("expected 3 validation errors, got %d: %v", len(errs), errs)
	}
}
