package shopware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	sberrors "shopbridge/pkg/errors"
)

// snippetLimit bounds response excerpts carried inside APIError messages.
const snippetLimit = 300

// Response describes one Admin API exchange. Body holds the parsed JSON
// object when the response was one, otherwise a {"raw": <text>} fallback so
// callers always get a map to look into.
type Response struct {
	Status int
	Raw    string
	Body   map[string]interface{}

	decoded bool
}

// Snippet returns a bounded plain-text rendering of the response body.
// Parsed bodies are serialized back to compact JSON before truncation.
func (r *Response) Snippet(max int) string {
	if r.decoded {
		if compact, err := json.Marshal(r.Body); err == nil {
			return sberrors.Snippet(string(compact), max)
		}
	}
	return sberrors.Snippet(r.Raw, max)
}

// RequestOptions carries the per-call knobs for Client.Request.
type RequestOptions struct {
	JSON          interface{}       // marshalled as the request body when non-nil
	Query         url.Values        // appended to the URL when non-empty
	Headers       map[string]string // caller headers; Authorization is added, never replaced
	Authenticated bool
}

// Client issues requests against one Shopware Admin API instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	log        *logrus.Logger
}

// ClientOption defines config for Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (timeout, TLS mode,
// retry transport all live there).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTokenProvider sets the provider used for authenticated requests.
func WithTokenProvider(tokens TokenProvider) ClientOption {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithLogger replaces the default logger.
func WithLogger(log *logrus.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new Client with the given options
func NewClient(baseURL string, options ...ClientOption) *Client {
	client := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logrus.StandardLogger(),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// Request performs one Admin API call. Non-2xx statuses are not errors here;
// the caller gets the response descriptor either way. Only transport-level
// failures (and token refresh failures) surface as errors.
func (c *Client) Request(ctx context.Context, method, path string, opts RequestOptions) (*Response, error) {
	var bodyReader io.Reader
	if opts.JSON != nil {
		payload, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, sberrors.WrapError(err, sberrors.ErrHTTPRequest, "encode request body")
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, JoinURL(c.baseURL, path), bodyReader)
	if err != nil {
		return nil, sberrors.WrapError(err, sberrors.ErrHTTPRequest, "create request")
	}

	if len(opts.Query) > 0 {
		req.URL.RawQuery = opts.Query.Encode()
	}

	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	// Requests with a body are JSON, set Content-Type header
	if opts.JSON != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	if opts.Authenticated {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// Bodies may carry credentials or PII, so only method/path/status get logged.
	c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
	}).Info("shopware admin API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, sberrors.WrapError(err, sberrors.ErrTransport, "shopware admin API request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, sberrors.WrapError(err, sberrors.ErrTransport, "read response body")
	}

	c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	}).Info("shopware admin API response")

	response := &Response{
		Status: resp.StatusCode,
		Raw:    string(raw),
	}
	response.Body, response.decoded = decodeBody(raw)

	return response, nil
}

// RequestOrFail performs a call that must succeed: any status outside
// [200,300) becomes an *APIError carrying method, path, status and a bounded
// body snippet.
func (c *Client) RequestOrFail(ctx context.Context, method, path string, opts RequestOptions) (*Response, error) {
	res, err := c.Request(ctx, method, path, opts)
	if err != nil {
		return nil, err
	}

	if res.Status >= 200 && res.Status < 300 {
		return res, nil
	}

	return nil, &sberrors.APIError{
		Status:  res.Status,
		Method:  method,
		Path:    path,
		Snippet: res.Snippet(snippetLimit),
	}
}

// Get is a convenience wrapper for bodyless GET requests.
func (c *Client) Get(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	opts.JSON = nil
	return c.Request(ctx, http.MethodGet, path, opts)
}

// decodeBody parses the raw body as a JSON object. Anything else (arrays,
// scalars, HTML error pages, empty bodies) falls back to a raw wrapper.
func decodeBody(raw []byte) (map[string]interface{}, bool) {
	if len(raw) > 0 {
		var decoded map[string]interface{}
		if err := json.Unmarshal(raw, &decoded); err == nil && decoded != nil {
			return decoded, true
		}
	}
	return map[string]interface{}{"raw": string(raw)}, false
}

// JoinURL joins a base URL and a path with exactly one slash at the seam,
// whatever slashes either side carries.
func JoinURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
