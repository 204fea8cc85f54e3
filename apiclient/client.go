package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds every request unless WithTimeout overrides it.
const DefaultTimeout = 30 * time.Second

const requestIDHeader = "X-Request-ID"

// Response is a successful (status < 400) API response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return pkgerrors.New("[Response.Decode] empty body")
	}
	return pkgerrors.Wrap(json.Unmarshal(r.Body, v), "[Response.Decode]")
}

// JSON decodes the body into a generic value; an empty body yields nil.
func (r *Response) JSON() (any, error) {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil, pkgerrors.Wrap(err, "[Response.JSON]")
	}
	return v, nil
}

// Client is the single outbound gateway to the admin API. Every request
// carries the current bearer token and is bounded by the client timeout.
type Client struct {
	baseURL    string
	timeout    time.Duration
	transport  http.RoundTripper
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTransport sets the base transport underneath the bearer transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// New builds a client for baseURL, taking bearer tokens from tokens.
func New(baseURL string, tokens oauth2.TokenSource, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, pkgerrors.New("[apiclient.New] base URL is required")
	}
	if tokens == nil {
		return nil, pkgerrors.New("[apiclient.New] token source is required")
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   DefaultTimeout,
		transport: http.DefaultTransport,
	}
	for _, opt := range options {
		opt(c)
	}
	c.httpClient = &http.Client{
		Timeout:   c.timeout,
		Transport: &bearerTransport{source: tokens, base: c.transport},
	}
	return c, nil
}

// BaseURL returns the absolute API base the client resolves paths against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Do issues one request. body, when non-nil, is sent as JSON. Failures are
// *RequestError values except for caller cancellation.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	url := c.resolve(path)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "[Client.Do] marshal body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[Client.Do] build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.New().String()
	req.Header.Set(requestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		classified := classifyTransport(method, url, err, c.timeout)
		observe(method, classified, start)
		log.Debug().Err(err).Str("method", method).Str("url", url).Str("request_id", requestID).Msg("API request failed")
		return nil, classified
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		classified := classifyTransport(method, url, err, c.timeout)
		observe(method, classified, start)
		return nil, classified
	}

	log.Debug().
		Str("method", method).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("API request")

	if resp.StatusCode >= http.StatusBadRequest {
		reqErr := rejected(method, url, resp.StatusCode, decodePayload(data))
		observe(method, reqErr, start)
		return nil, reqErr
	}
	observe(method, nil, start)
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// decodePayload keeps error bodies untouched: JSON when it parses, else the raw text.
func decodePayload(data []byte) any {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err == nil {
		return v
	}
	return string(data)
}

// bearerTransport adds the current token to each request. A missing token
// sends the request anonymously.
type bearerTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token()
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNoCredentials) {
			log.Warn().Err(err).Msg("Token store unavailable, sending request without credentials")
		}
		return t.base.RoundTrip(req)
	}
	authed := req.Clone(req.Context())
	token.SetAuthHeader(authed)
	return t.base.RoundTrip(authed)
}
