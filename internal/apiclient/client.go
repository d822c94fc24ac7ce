// Package apiclient provides the single configured HTTP client used by every
// backend service wrapper.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/akshayks13/genai-frontend-sub000/internal/schemas"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for backend requests.
const DefaultUserAgent = "careerguide-gateway/1.0"

// maxBodyBytes caps how much of a backend response is read.
const maxBodyBytes = 10 << 20

// Options configures the client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// Client talks JSON to one backend base URL.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// Response is a successful, shape-checked backend response.
type Response struct {
	Status int
	Header http.Header
	Body   json.RawMessage
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// RequestOption adjusts a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	bearer string
	schema string
	header http.Header
}

// WithBearer attaches an Authorization: Bearer header. Empty tokens are ignored.
func WithBearer(token string) RequestOption {
	return func(rc *requestConfig) {
		rc.bearer = token
	}
}

// WithSchema validates the response body against a named schema instead of
// the default "any JSON object" shape.
func WithSchema(name string) RequestOption {
	return func(rc *requestConfig) {
		rc.schema = name
	}
}

// WithHeader sets an extra request header.
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) {
		rc.header.Set(key, value)
	}
}

// New creates a client for opts.BaseURL.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		http:      httpClient,
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// Do sends a JSON request. A nil body sends no payload.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Path: path, Message: "failed to encode request body", Cause: err}
		}
		reader = bytes.NewReader(payload)
	}
	return c.send(ctx, method, path, reader, "application/json", opts)
}

// PostMultipart uploads data as a single multipart file field.
func (c *Client) PostMultipart(ctx context.Context, path, field, filename string, data []byte, opts ...RequestOption) (*Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, &TransportError{Path: path, Message: "failed to create multipart field", Cause: err}
	}
	if _, err := part.Write(data); err != nil {
		return nil, &TransportError{Path: path, Message: "failed to write multipart data", Cause: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &TransportError{Path: path, Message: "failed to finish multipart body", Cause: err}
	}
	return c.send(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), opts)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, opts []RequestOption) (*Response, error) {
	rc := &requestConfig{schema: schemas.Object, header: http.Header{}}
	for _, opt := range opts {
		opt(rc)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &TransportError{Path: path, Message: "failed to create request", Cause: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if rc.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+rc.bearer)
	}
	for key, values := range rc.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Path: path, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Path: path, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(raw, resp.StatusCode),
		}
	}

	if resp.StatusCode == http.StatusNoContent && len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}

	if err := schemas.Validate(rc.schema, raw); err != nil {
		return nil, &ShapeError{Path: path, Cause: err}
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   json.RawMessage(raw),
	}, nil
}

// errorMessage pulls a human message out of an error body, falling back to
// the status text.
func errorMessage(raw []byte, status int) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if msg, ok := body[key].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return http.StatusText(status)
}
