package shopware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	sberrors "shopbridge/pkg/errors"
)

// tokenValidityBuffer keeps us from handing out a token that could expire
// while the request carrying it is still in flight.
const tokenValidityBuffer = 30 * time.Second

// TokenProvider supplies a bearer token for authenticated Admin API calls.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// tokenResponse represents the response from the OAuth token endpoint
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// OAuthTokenProvider obtains tokens via the client-credentials grant and
// caches them until shortly before expiry. A cache miss triggers exactly one
// token request; concurrent callers wait for the refresh in flight.
type OAuthTokenProvider struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	// Token state
	mu        sync.Mutex
	token     string
	expiresAt time.Time

	// Concurrency control
	refreshing  bool
	refreshDone *sync.Cond
}

// TokenOption configures an OAuthTokenProvider.
type TokenOption func(*OAuthTokenProvider)

// WithTokenHTTPClient replaces the HTTP client used for token requests.
func WithTokenHTTPClient(client *http.Client) TokenOption {
	return func(p *OAuthTokenProvider) {
		p.httpClient = client
	}
}

// NewOAuthTokenProvider creates a token provider for the given instance.
func NewOAuthTokenProvider(baseURL, clientID, clientSecret string, options ...TokenOption) *OAuthTokenProvider {
	provider := &OAuthTokenProvider{
		tokenURL:     JoinURL(baseURL, "/api/oauth/token"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, option := range options {
		option(provider)
	}

	provider.refreshDone = sync.NewCond(&provider.mu)

	return provider
}

// AccessToken returns the cached token while it is still valid, otherwise
// fetches a new one. Within the validity window this is a pure read.
func (p *OAuthTokenProvider) AccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if p.valid() {
			return p.token, nil
		}
		if !p.refreshing {
			break
		}
		// Another caller is refreshing; wake up and re-check.
		p.refreshDone.Wait()
	}

	p.refreshing = true
	p.mu.Unlock()

	token, expiresAt, err := p.fetchToken(ctx)

	p.mu.Lock()
	p.refreshing = false
	p.refreshDone.Broadcast()

	if err != nil {
		return "", err
	}

	p.token = token
	p.expiresAt = expiresAt
	return p.token, nil
}

// valid reports whether the cached token is still usable. Callers must hold mu.
func (p *OAuthTokenProvider) valid() bool {
	return p.token != "" && time.Now().Before(p.expiresAt.Add(-tokenValidityBuffer))
}

// fetchToken performs the client-credentials token request. The Shopware
// token endpoint takes a JSON body, not a form-encoded one.
func (p *OAuthTokenProvider) fetchToken(ctx context.Context) (string, time.Time, error) {
	payload, err := json.Marshal(map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     p.clientID,
		"client_secret": p.clientSecret,
	})
	if err != nil {
		return "", time.Time{}, sberrors.WrapError(err, sberrors.ErrHTTPRequest, "encode token request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, bytes.NewReader(payload))
	if err != nil {
		return "", time.Time{}, sberrors.WrapError(err, sberrors.ErrHTTPRequest, "create token request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, sberrors.WrapError(err, sberrors.ErrTransport, "token request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, sberrors.WrapError(err, sberrors.ErrTransport, "read token response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", time.Time{}, sberrors.WrapError(
			fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, sberrors.Snippet(string(body), 300)),
			sberrors.ErrAuthentication,
			"token request rejected",
		)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", time.Time{}, sberrors.WrapError(err, sberrors.ErrAuthentication, "decode token response")
	}

	if tr.AccessToken == "" || tr.ExpiresIn <= 0 {
		return "", time.Time{}, sberrors.WrapError(
			fmt.Errorf("token response is missing access_token/expires_in"),
			sberrors.ErrAuthentication,
			"malformed token response",
		)
	}

	return tr.AccessToken, time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second), nil
}
