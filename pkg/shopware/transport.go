package shopware

import (
	"crypto/tls"
	"net/http"
	"time"

	"shopbridge/pkg/config"
)

// NewHTTPClient builds the HTTP client shared by the token provider and the
// admin client: per-request timeout, TLS mode (strict unless the config says
// otherwise) and the optional retry transport.
func NewHTTPClient(cfg *config.Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	var roundTripper http.RoundTripper = transport
	if cfg.Retry != nil && cfg.Retry.MaxAttempts > 1 {
		roundTripper = NewRetryTransport(transport, RetryPolicy{
			MaxAttempts:       cfg.Retry.MaxAttempts,
			InitialBackoff:    time.Duration(cfg.Retry.InitialBackoff * float64(time.Second)),
			BackoffMultiplier: cfg.Retry.BackoffMultiplier,
			RetryableStatuses: cfg.Retry.RetryableStatuses,
		})
	}

	return &http.Client{
		Timeout:   cfg.Timeout(),
		Transport: roundTripper,
	}
}
