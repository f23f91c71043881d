package venmo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// DefaultHost is the base URL of the Venmo API.
const DefaultHost = "https://api.venmo.com/v1"

// Identity is the session-scoped identity snapshot attached to every request.
// AccessToken is empty until login completes; SessionID is generated once per
// client lifetime.
type Identity struct {
	AccessToken string
	DeviceID    string
	SessionID   string
}

// headers renders the identity into its request headers.
func (id Identity) headers() http.Header {
	h := http.Header{}
	if id.AccessToken != "" {
		h.Set("Authorization", "Bearer "+id.AccessToken)
	}
	if id.DeviceID != "" {
		h.Set("device-id", id.DeviceID)
	}
	if id.SessionID != "" {
		h.Set("X-Session-ID", id.SessionID)
	}
	return h
}

// Client performs authenticated requests against the Venmo API. It owns one
// underlying HTTP client, the default headers, and the current identity
// snapshot. Per-request headers are built by merging the snapshot with the
// defaults and call-specific overrides, so a call in flight never observes a
// half-updated header set.
//
// The client is not internally synchronized: concurrent calls that also mutate
// identity (UpdateAccessToken, UpdateDeviceID) have no ordering guarantee.
// Callers needing concurrency under one identity should serialize mutation or
// use one client per goroutine (see CallAsync).
type Client struct {
	host          string
	httpClient    *http.Client
	defaultHeader http.Header
	identity      Identity
	logger        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHost overrides the API base URL. Mainly useful for tests.
func WithHost(host string) Option {
	return func(c *Client) { c.host = host }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithTimeout sets the transport timeout. This is the only timeout the client
// imposes; cancellation is otherwise up to the caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithAccessToken sets the initial access token.
func WithAccessToken(token string) Option {
	return func(c *Client) { c.identity.AccessToken = token }
}

// WithDeviceID sets the device id. It must be set before any authenticated
// call; a trusted device id skips the two-factor challenge on login.
func WithDeviceID(deviceID string) Option {
	return func(c *Client) { c.identity.DeviceID = deviceID }
}

// WithDefaultHeaders merges static default headers sent on every request,
// typically loaded from configuration.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeader.Set(k, v)
		}
	}
}

// NewClient creates a new Venmo API client.
func NewClient(logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		host:          DefaultHost,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		defaultHeader: http.Header{},
		logger:        logger,
	}
	c.identity.SessionID = strconv.FormatUint(rand.Uint64(), 10)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identity returns the current identity snapshot.
func (c *Client) Identity() Identity {
	return c.identity
}

// AccessToken returns the current access token, empty until login completes.
func (c *Client) AccessToken() string {
	return c.identity.AccessToken
}

// DeviceID returns the current device id.
func (c *Client) DeviceID() string {
	return c.identity.DeviceID
}

// UpdateAccessToken swaps the identity snapshot so every subsequent request
// carries the bearer credential. There is no separate commit step.
func (c *Client) UpdateAccessToken(token string) {
	c.identity.AccessToken = token
}

// UpdateDeviceID swaps the identity snapshot so every subsequent request
// carries the device id.
func (c *Client) UpdateDeviceID(deviceID string) {
	c.identity.DeviceID = deviceID
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Query  url.Values
	Body   any
	// OKErrorCodes are embedded error codes the caller will interpret itself;
	// responses carrying one of them are not treated as failures.
	OKErrorCodes []int
}

// Call performs a single request against the API and validates the response.
// The method must be one of GET, POST, PUT or DELETE; anything else fails
// before any network traffic. A JSON body forces the Content-Type header.
// Transport failures surface as *TransportError; there are no retries.
func (c *Client) Call(ctx context.Context, req Request) (*ValidatedResponse, error) {
	switch req.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, req.Method)
	}

	requestURL := c.host + req.Path
	if len(req.Query) > 0 {
		requestURL += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.applyHeaders(httpReq, req)

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Msg("Making Venmo API request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{URL: requestURL, Err: err}
	}

	return validateResponse(resp, req.OKErrorCodes)
}

// applyHeaders merges defaults, the identity snapshot, and per-call overrides,
// in that order of precedence (later wins).
func (c *Client) applyHeaders(httpReq *http.Request, req Request) {
	for k, vs := range c.defaultHeader {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range c.identity.headers() {
		httpReq.Header[k] = vs
	}
	for k, vs := range req.Header {
		httpReq.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
}

// clone returns an independent client sharing no mutable state with the
// receiver: its own transport and its own copy of the headers and identity.
func (c *Client) clone() *Client {
	dup := *c
	httpClient := *c.httpClient
	dup.httpClient = &httpClient
	dup.defaultHeader = c.defaultHeader.Clone()
	return &dup
}
