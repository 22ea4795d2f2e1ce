package shopware

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"time"
)

// RetryPolicy tunes the retry transport.
type RetryPolicy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	RetryableStatuses []int
}

// RetryTransport retries idempotent requests on transient failures with full
// jitter exponential backoff. Writes (POST/PATCH) are never replayed, so an
// upsert can never double-create through this layer. Non-retryable statuses
// pass through untouched; classifying them is the client's job.
type RetryTransport struct {
	Base   http.RoundTripper
	Policy RetryPolicy
	jitter *rand.Rand
}

// NewRetryTransport creates a new retry transport
func NewRetryTransport(base http.RoundTripper, policy RetryPolicy) *RetryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RetryTransport{
		Base:   base,
		Policy: policy,
		jitter: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Policy.MaxAttempts <= 1 {
		return t.Base.RoundTrip(req)
	}

	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		// retryable, these are safe to replay
	default:
		return t.Base.RoundTrip(req)
	}

	var lastErr error
	var lastResp *http.Response

	for attempt := 0; attempt < t.Policy.MaxAttempts; attempt++ {
		resp, err := t.Base.RoundTrip(t.cloneRequest(req))

		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				lastErr = err
			} else {
				return nil, err
			}
		} else {
			if !t.retryableStatus(resp.StatusCode) {
				if lastResp != nil {
					lastResp.Body.Close()
				}
				return resp, nil
			}

			// Keep the latest response in case all attempts run out.
			if lastResp != nil {
				lastResp.Body.Close()
			}
			lastResp = resp
		}

		if attempt < t.Policy.MaxAttempts-1 {
			select {
			case <-req.Context().Done():
				if lastResp != nil {
					lastResp.Body.Close()
				}
				return nil, req.Context().Err()
			case <-time.After(t.backoff(attempt)):
			}
		}
	}

	if lastResp != nil {
		return lastResp, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("retry transport failed after %d attempts: %w", t.Policy.MaxAttempts, lastErr)
	}
	return nil, fmt.Errorf("retry transport failed after %d attempts: no response received", t.Policy.MaxAttempts)
}

// cloneRequest makes a deep copy for safe body reuse
func (t *RetryTransport) cloneRequest(r *http.Request) *http.Request {
	r2 := r.Clone(r.Context())
	if r.Body != nil {
		buf, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(buf))
		r2.Body = io.NopCloser(bytes.NewReader(buf))
	}
	return r2
}

// backoff computes full jitter exponential backoff
func (t *RetryTransport) backoff(attempt int) time.Duration {
	base := t.Policy.InitialBackoff
	if base <= 0 {
		base = 500 * time.Millisecond
	}

	maxDelay := time.Duration(float64(base) * math.Pow(t.Policy.BackoffMultiplier, float64(attempt)))

	// Cap at 30 seconds
	if maxDelay > 30*time.Second {
		maxDelay = 30 * time.Second
	}

	return time.Duration(t.jitter.Float64() * float64(maxDelay))
}

func (t *RetryTransport) retryableStatus(status int) bool {
	for _, s := range t.Policy.RetryableStatuses {
		if s == status {
			return true
		}
	}
	return false
}
