package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxResponseBytes caps response bodies.
	DefaultMaxResponseBytes = 4 << 20
	// DefaultUserAgent is sent when Config.UserAgent is empty.
	DefaultUserAgent = "goVK"

	statusBodyLimit = 512
)

var tracer = otel.Tracer("goVK/transport")

// Transport performs the two request shapes used by the VK API.
type Transport interface {
	// Get requests rawURL, which already carries its query string.
	Get(ctx context.Context, rawURL string) ([]byte, error)
	// Post sends form as an application/x-www-form-urlencoded body.
	Post(ctx context.Context, rawURL string, form url.Values) ([]byte, error)
}

// BreakerConfig configures the optional circuit breaker.
type BreakerConfig struct {
	Enabled bool `yaml:"enabled"`
	// MinRequests is the number of requests in Interval before the failure
	// ratio is evaluated.
	MinRequests  uint32        `yaml:"min_requests"`
	FailureRatio float64       `yaml:"failure_ratio"`
	Interval     time.Duration `yaml:"interval"`
	// OpenTimeout is how long the breaker stays open before a half-open probe.
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

// Config configures [HTTPTransport].
type Config struct {
	Timeout          time.Duration `yaml:"timeout"`
	UserAgent        string        `yaml:"user_agent"`
	MaxResponseBytes int64         `yaml:"max_response_bytes"`
	Breaker          BreakerConfig `yaml:"breaker"`

	// Client overrides the underlying HTTP client. Timeout is ignored when set.
	Client *http.Client `yaml:"-"`
}

// DefaultConfig returns the transport defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:          DefaultTimeout,
		UserAgent:        DefaultUserAgent,
		MaxResponseBytes: DefaultMaxResponseBytes,
		Breaker: BreakerConfig{
			Enabled:      false,
			MinRequests:  5,
			FailureRatio: 0.5,
			Interval:     time.Minute,
			OpenTimeout:  30 * time.Second,
		},
	}
}

// HTTPTransport is the default [Transport] on net/http.
type HTTPTransport struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewHTTPTransport builds an [HTTPTransport]. Zero config fields take their
// defaults; a nil logger disables logging.
func NewHTTPTransport(cfg Config, logger *zap.Logger) *HTTPTransport {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = def.MaxResponseBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	t := &HTTPTransport{
		client:    client,
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxResponseBytes,
		logger:    logger,
	}
	if cfg.Breaker.Enabled {
		t.breaker = newBreaker(cfg.Breaker, logger)
	}
	return t
}

func newBreaker(cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	def := DefaultConfig().Breaker
	if cfg.MinRequests == 0 {
		cfg.MinRequests = def.MinRequests
	}
	if cfg.FailureRatio <= 0 || cfg.FailureRatio > 1 {
		cfg.FailureRatio = def.FailureRatio
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "vk-api",
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// 4xx answers mean VK is up.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *StatusError
			return errors.As(err, &se) && !se.Temporary()
		},
	})
}

// Get implements [Transport].
func (t *HTTPTransport) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return t.do(ctx, http.MethodGet, rawURL, nil)
}

// Post implements [Transport].
func (t *HTTPTransport) Post(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	return t.do(ctx, http.MethodPost, rawURL, form)
}

func (t *HTTPTransport) do(ctx context.Context, method, rawURL string, form url.Values) ([]byte, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	ctx, span := tracer.Start(ctx, "vk.http "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("server.address", req.URL.Host),
			attribute.String("url.path", req.URL.Path),
		),
	)
	defer span.End()
	req = req.WithContext(ctx)

	start := time.Now()
	var data []byte
	if t.breaker != nil {
		out, execErr := t.breaker.Execute(func() (interface{}, error) {
			return t.roundTrip(req, span)
		})
		if errors.Is(execErr, gobreaker.ErrOpenState) || errors.Is(execErr, gobreaker.ErrTooManyRequests) {
			execErr = fmt.Errorf("%w: %v", ErrCircuitOpen, execErr)
		}
		if b, ok := out.([]byte); ok {
			data = b
		}
		err = execErr
	} else {
		data, err = t.roundTrip(req, span)
	}
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.logger.Warn("vk request failed",
			zap.String("http_method", method),
			zap.String("host", req.URL.Host),
			zap.String("path", req.URL.Path),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	t.logger.Debug("vk request completed",
		zap.String("http_method", method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", elapsed),
	)
	return data, nil
}

func (t *HTTPTransport) roundTrip(req *http.Request, span trace.Span) ([]byte, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrRequestFailed, err)
	}
	if int64(len(data)) > t.maxBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrResponseTooLarge, t.maxBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := data
		if len(snippet) > statusBodyLimit {
			snippet = snippet[:statusBodyLimit]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: bytes.Clone(snippet)}
	}

	return data, nil
}
