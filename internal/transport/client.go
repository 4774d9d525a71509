package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/college-catalog/internal/service"
	"github.com/noah-isme/college-catalog/pkg/config"
	appErrors "github.com/noah-isme/college-catalog/pkg/errors"
	"github.com/noah-isme/college-catalog/pkg/middleware/requestid"
)

const maxErrorBody = 64 << 10

// Client issues envelope-based requests against the remote catalog API.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *zap.Logger
	metrics *service.MetricsService
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records per-operation latency.
func WithMetrics(m *service.MetricsService) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient constructs a Client for baseURL (for example http://host/api).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a Client from the API section of the configuration.
func NewClientFromConfig(cfg config.APIConfig, logger *zap.Logger, metrics *service.MetricsService) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewClient(cfg.BaseURL,
		WithHTTPClient(&http.Client{Timeout: timeout}),
		WithToken(cfg.Token),
		WithLogger(logger),
		WithMetrics(metrics),
	)
}

// operation names a remote call and the message shown when it fails without a
// server-supplied reason.
type operation struct {
	name     string
	fallback string
}

type envelope[T any] struct {
	Data    T               `json:"data"`
	Message string          `json:"message"`
	Status  json.RawMessage `json:"status"`
}

// call performs one request and decodes the envelope's data into T. Every failure is
// returned as *errors.Error.
func call[T any](ctx context.Context, c *Client, op operation, method, path string, body interface{}) (T, error) {
	var zero T
	start := time.Now()
	reqID := requestid.New()

	result, err := c.roundTrip(ctx, op, method, path, body, reqID, &envelope[T]{})
	c.metrics.ObserveTransport(op.name, err, time.Since(start))
	if err != nil {
		c.logger.Debug("catalog request failed",
			zap.String("operation", op.name),
			zap.String("request_id", reqID),
			zap.Error(err))
		return zero, err
	}
	c.logger.Debug("catalog request",
		zap.String("operation", op.name),
		zap.String("request_id", reqID),
		zap.Duration("latency", time.Since(start)))
	return result.(*envelope[T]).Data, nil
}

func (c *Client) roundTrip(ctx context.Context, op operation, method, path string, body interface{}, reqID string, out interface{}) (interface{}, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, op.fallback)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, op.fallback)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestid.Header, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, op.fallback)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, translateStatus(op, method, path, resp)
	}

	if resp.StatusCode == http.StatusNoContent {
		return out, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return nil, appErrors.Wrap(fmt.Errorf("decode %s %s: %w", method, path, err), appErrors.ErrRejected.Code, resp.StatusCode, op.fallback)
	}
	return out, nil
}

// translateStatus prefers the server's envelope message over the operation fallback.
func translateStatus(op operation, method, path string, resp *http.Response) *appErrors.Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := op.fallback
	var env envelope[json.RawMessage]
	if len(raw) > 0 && json.Unmarshal(raw, &env) == nil && strings.TrimSpace(env.Message) != "" {
		message = strings.TrimSpace(env.Message)
	}
	return appErrors.FromStatus(resp.StatusCode, message, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode))
}
