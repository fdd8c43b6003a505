// Package api wraps outgoing requests to the broker platform backend: it
// attaches the current access token, classifies failures, and runs the
// 401-driven session teardown protocol.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	errs "github.com/brokerdeck/go-broker-client/internal/errors"
	"github.com/brokerdeck/go-broker-client/notify"
)

const (
	defaultTimeout = 30 * time.Second

	contentTypeJSON = "application/json"

	sessionExpiredMessage = "Session expired. Please sign in again."
)

// CredentialSource is the gateway's view of the credential store: read the
// current token, and clear the store when a 401 arrives before an
// unauthorized handler has been registered.
type CredentialSource interface {
	AccessToken() string
	Clear() error
}

// Client is the HTTP gateway. All backend traffic goes through it so that
// authorization headers and the authentication-failure protocol are applied
// uniformly.
type Client struct {
	httpClient *http.Client
	creds      CredentialSource
	notifier   notify.Notifier

	mu             sync.RWMutex
	baseURL        string
	timeout        time.Duration
	onUnauthorized func()
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithTimeout sets the default per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client (primarily for testing).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithNotifier sets the emitter used for the user-facing session-expired
// notice.
func WithNotifier(notifier notify.Notifier) ClientOption {
	return func(c *Client) {
		c.notifier = notifier
	}
}

// NewClient creates a gateway for the given base URL. creds is required.
func NewClient(baseURL string, creds CredentialSource, options ...ClientOption) (*Client, error) {
	if creds == nil {
		return nil, errors.New("[NewClient] credential source is required")
	}

	c := &Client{
		httpClient: &http.Client{},
		creds:      creds,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    defaultTimeout,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// SetUnauthorizedHandler registers the callback invoked on every HTTP 401
// response. The session controller registers itself here at startup.
func (c *Client) SetUnauthorizedHandler(handler func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = handler
}

// SetBaseURL replaces the base URL for subsequent requests.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// SetTimeout replaces the default per-request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	headers map[string]string
	timeout time.Duration
}

// WithHeader adds a caller-supplied header. Caller headers win over the
// gateway defaults on conflict.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = map[string]string{}
		}
		o.headers[key] = value
	}
}

// WithRequestTimeout overrides the default timeout for one request.
func WithRequestTimeout(timeout time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.timeout = timeout
	}
}

// Get performs a GET request against endpoint, decoding a JSON response into
// out when out is non-nil.
func (c *Client) Get(ctx context.Context, endpoint string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, out, opts...)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, endpoint, body, out, opts...)
}

func (c *Client) Put(ctx context.Context, endpoint string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, endpoint, body, out, opts...)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPatch, endpoint, body, out, opts...)
}

func (c *Client) Delete(ctx context.Context, endpoint string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, out, opts...)
}

// Do performs a request. body, when non-nil, is JSON-encoded ([]byte passes
// through raw). A non-2xx response returns an *errors.APIError; timeouts and
// transport failures return ErrRequestTimeout and ErrNetworkUnavailable
// respectively. A 401 runs the authentication-failure protocol before the
// error is returned, so callers always observe already-cleared credentials.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any, opts ...RequestOption) error {
	c.mu.RLock()
	url := c.baseURL + endpoint
	timeout := c.timeout
	c.mu.RUnlock()

	reqOpts := requestOptions{}
	for _, opt := range opts {
		opt(&reqOpts)
	}
	if reqOpts.timeout > 0 {
		timeout = reqOpts.timeout
	}

	var bodyReader io.Reader
	if body != nil {
		raw, ok := body.([]byte)
		if !ok {
			encoded, err := json.Marshal(body)
			if err != nil {
				return errs.Wrapf(err, "[api Do] encoding request body")
			}
			raw = encoded
		}
		bodyReader = bytes.NewReader(raw)
	}

	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(rctx, method, url, bodyReader)
	if err != nil {
		return errs.Wrapf(err, "[api Do] building request")
	}

	// Default headers first, then the stored token, then caller headers;
	// the caller wins on conflict.
	req.Header.Set("Content-Type", contentTypeJSON)
	if accessToken := c.creds.AccessToken(); accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	for key, value := range reqOpts.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			requestTimeoutsTotal.Inc()
			return errs.Wrapf(errs.ErrRequestTimeout, "[api Do] %s %s", method, endpoint)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errs.Wrapf(ctxErr, "[api Do] %s %s", method, endpoint)
		}
		networkErrorsTotal.Inc()
		return errs.Wrapf(errs.ErrNetworkUnavailable, "[api Do] %s %s: %v", method, endpoint, err)
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrapf(err, "[api Do] reading response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := classifyError(resp, rawBody)
		log.Debug().
			Int("status", apiErr.StatusCode).
			Str("endpoint", endpoint).
			Str("message", apiErr.Message).
			Msg("api request failed")

		// The teardown runs before the error propagates so that the
		// caller's failure handler observes already-cleared credentials.
		if resp.StatusCode == http.StatusUnauthorized {
			c.handleUnauthorized()
		}
		return apiErr
	}

	if out != nil && len(rawBody) > 0 {
		if err := json.Unmarshal(rawBody, out); err != nil {
			return errs.Wrapf(err, "[api Do] decoding response body")
		}
	}
	return nil
}

// classifyError builds the APIError for a non-2xx response. A JSON body is
// mined for a "message" or "error" field; anything else is treated as opaque
// text.
func classifyError(resp *http.Response, rawBody []byte) *errs.APIError {
	message := ""
	if strings.Contains(resp.Header.Get("Content-Type"), contentTypeJSON) {
		var parsed struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(rawBody, &parsed); err == nil {
			if parsed.Message != "" {
				message = parsed.Message
			} else if parsed.Error != "" {
				message = parsed.Error
			}
		}
	}
	return errs.NewAPIError(resp.StatusCode, message, rawBody)
}

// handleUnauthorized runs on every 401 regardless of endpoint or server error
// text. The registered handler owns the teardown; without one the gateway
// clears the store itself so stale, rejected credentials never persist.
// The user-facing session-expired notice is emitted here, not by the
// controller, to avoid duplicate notices.
func (c *Client) handleUnauthorized() {
	unauthorizedTotal.Inc()

	c.mu.RLock()
	handler := c.onUnauthorized
	c.mu.RUnlock()

	if handler != nil {
		handler()
	} else {
		log.Warn().Msg("401 received before unauthorized handler registration, clearing credentials directly")
		if err := c.creds.Clear(); err != nil {
			log.Error().Err(err).Msg("failed to clear credentials")
		}
	}

	if c.notifier != nil {
		c.notifier.Emit(sessionExpiredMessage, notify.SeverityWarning, 0)
	}
}
