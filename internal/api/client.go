package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/Joseda-hg/lazytareas/internal/api"

// Session is the part of the session store the transport needs.
type Session interface {
	Token() string
	Expire(ctx context.Context) error
}

type Client struct {
	baseURL        *url.URL
	http           *http.Client
	session        Session
	logger         *zap.Logger
	onUnauthorized func()

	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.http.Timeout = timeout }
}

// OnUnauthorized sets the hook run after a 401 has cleared the session,
// typically navigation to the login screen.
func OnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(baseURL string, session Session, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: parsed,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		},
		session: session,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	meter := otel.Meter(instrumentationName)
	c.requests, err = meter.Int64Counter("lazytareas.api.requests",
		metric.WithDescription("Backend requests by route and status class"),
	)
	if err != nil {
		return nil, fmt.Errorf("create request counter: %w", err)
	}
	c.latency, err = meter.Float64Histogram("lazytareas.api.duration",
		metric.WithDescription("Backend request latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create latency histogram: %w", err)
	}

	return c, nil
}

// do sends one request. route is the templated path used for logs and
// metrics so ids do not explode cardinality.
func (c *Client) do(ctx context.Context, method, route, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, route, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, route, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token := ""
	if c.session != nil {
		token = c.session.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(ctx, method, route, 0, start)
		c.logger.Warn("request failed", zap.String("method", method), zap.String("route", route), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, route, err)
	}
	defer resp.Body.Close()
	c.record(ctx, method, route, resp.StatusCode, start)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, route, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleFailure(ctx, method, route, token != "", resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, route, err)
	}
	return nil
}

func (c *Client) handleFailure(ctx context.Context, method, route string, authenticated bool, status int, data []byte) error {
	apiErr := &Error{Method: method, Path: route, StatusCode: status}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, apiErr); err != nil {
			apiErr.Message = strings.TrimSpace(string(data))
		}
	}

	switch {
	case status == http.StatusUnauthorized && authenticated:
		c.logger.Info("token rejected, ending session", zap.String("route", route))
		if c.session != nil {
			if err := c.session.Expire(ctx); err != nil {
				c.logger.Error("clear session", zap.Error(err))
			}
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return fmt.Errorf("%s %s: %w", method, route, ErrUnauthorized)
	case status == http.StatusForbidden:
		c.logger.Warn("permission denied", zap.String("method", method), zap.String("route", route))
	case status >= http.StatusInternalServerError:
		c.logger.Error("server error", zap.String("method", method), zap.String("route", route), zap.Int("status", status), zap.String("message", apiErr.Message))
	}
	return apiErr
}

func (c *Client) record(ctx context.Context, method, route string, status int, start time.Time) {
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
	)
	c.requests.Add(ctx, 1, attrs)
	c.latency.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
}
