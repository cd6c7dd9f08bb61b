// Package kgclient is the REST client for the knowledge-graph backend.
//
// Every call returns a Result carrying the backend envelope, or an error
// that is one of ErrTransport, ErrDecode, ErrInvalidInput (all checked with
// errors.Is) or an *APIError (checked with errors.As).
package kgclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SuccessCode is the envelope code the backend uses for success.
const SuccessCode = 200

// DefaultTimeout applies when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

const maxErrorBodyBytes = 512

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the knowledge-graph REST backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client. BaseURL must be an absolute http(s) URL.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q must be an absolute http(s) url", ErrInvalidInput, opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL: base,
		token:   opts.Token,
		http:    httpClient,
		logger:  logger.With("component", "kgclient"),
	}, nil
}

// BaseURL returns the normalized backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Result is a decoded backend response.
type Result[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

// envelope is the backend's standard response wrapper. Rows is used by list
// endpoints in place of Data.
type envelope struct {
	Code *int            `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
	Rows json.RawMessage `json:"rows"`
}

// response is an undecoded successful call.
type response struct {
	Status int
	Code   int
	Msg    string
	// Payload is the data (or rows) member of the envelope, or the whole body
	// for bare payloads. Empty when the backend returned nothing.
	Payload json.RawMessage
}

func (r response) empty() bool {
	return len(r.Payload) == 0 || string(r.Payload) == "null"
}

// do performs one request and classifies the outcome. A 2xx response without
// an envelope code is a bare payload and counts as success.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in any) (response, error) {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return response{}, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = &buf
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return response{}, fmt.Errorf("%w: %s: build request: %w", ErrTransport, op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log := c.logger.With("op", op, "method", method, "path", path, "request_id", requestID)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", "error", err, "duration", time.Since(start))
		return response{}, fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("read response failed", "status", resp.StatusCode, "error", err)
		return response{}, fmt.Errorf("%w: %s: read body: %w", ErrTransport, op, err)
	}
	log.Debug("request completed", "status", resp.StatusCode, "bytes", len(raw), "duration", time.Since(start))

	out, err := classify(resp.StatusCode, raw)
	if err != nil {
		return response{}, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func classify(status int, raw []byte) (response, error) {
	trimmed := bytes.TrimSpace(raw)
	ok := status >= 200 && status < 300

	var env envelope
	isEnvelope := len(trimmed) > 0 && trimmed[0] == '{' && json.Unmarshal(trimmed, &env) == nil && env.Code != nil

	if !isEnvelope {
		if !ok {
			return response{}, &APIError{Status: status, Msg: truncate(trimmed)}
		}
		if len(trimmed) > 0 && !json.Valid(trimmed) {
			return response{}, fmt.Errorf("%w: body is not json", ErrDecode)
		}
		return response{Status: status, Code: SuccessCode, Payload: json.RawMessage(trimmed)}, nil
	}

	if !ok || *env.Code != SuccessCode {
		return response{}, &APIError{Status: status, Code: *env.Code, Msg: env.Msg}
	}

	payload := env.Data
	if len(payload) == 0 || string(payload) == "null" {
		payload = env.Rows
	}
	return response{Status: status, Code: *env.Code, Msg: env.Msg, Payload: payload}, nil
}

func truncate(b []byte) string {
	if len(b) > maxErrorBodyBytes {
		return string(b[:maxErrorBodyBytes]) + "..."
	}
	return string(b)
}

// decode unmarshals the payload of r into a Result. An empty payload leaves
// Data at its zero value.
func decode[T any](r response) (Result[T], error) {
	res := Result[T]{Code: r.Code, Msg: r.Msg}
	if r.empty() {
		return res, nil
	}
	if err := json.Unmarshal(r.Payload, &res.Data); err != nil {
		return Result[T]{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return res, nil
}

// call is do followed by decode.
func call[T any](ctx context.Context, c *Client, op, method, path string, query url.Values, in any) (Result[T], error) {
	r, err := c.do(ctx, op, method, path, query, in)
	if err != nil {
		return Result[T]{}, err
	}
	res, err := decode[T](r)
	if err != nil {
		return Result[T]{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
