package goVK

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrEthical07/goVK/internal/audit"
	"github.com/MrEthical07/goVK/internal/rate"
	"github.com/MrEthical07/goVK/jwt"
	"github.com/MrEthical07/goVK/session"
	"github.com/MrEthical07/goVK/transport"
)

// Builder assembles a [Client]. A Builder can be used for one Build call.
//
//	client, err := goVK.New().
//		WithConfig(cfg).
//		WithRedis(rdb).
//		WithLogger(logger).
//		Build()
type Builder struct {
	config    Config
	transport transport.Transport
	redis     redis.UniversalClient
	logger    *zap.Logger
	auditSink AuditSink

	built bool
}

// New returns a Builder holding [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithTransport replaces the default HTTP transport, e.g. with a test double.
func (b *Builder) WithTransport(t transport.Transport) *Builder {
	b.transport = t
	return b
}

// WithRedis provides the Redis client used by the session store and the
// shared rate limiter.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithLogger sets the logger. The default discards everything.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets where audit events go when auditing is enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the API call latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the client. It performs no
// network I/O.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.redis == nil {
		if cfg.Session.Enabled {
			return nil, fmt.Errorf("%w: Session requires redis client", ErrConfiguration)
		}
		if cfg.RateLimit.Enabled && cfg.RateLimit.Backend == RateLimitRedis {
			return nil, fmt.Errorf("%w: redis RateLimit backend requires redis client", ErrConfiguration)
		}
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("app_id", cfg.App.ID))

	client := &Client{
		cfg:         cfg,
		transport:   b.transport,
		logger:      logger,
		now:         time.Now,
		nonce:       defaultNonce,
		owner:       true,
		apiVersion:  cfg.App.APIVersion,
		accessToken: cfg.App.AccessToken,
	}

	// -------- TRANSPORT --------
	if client.transport == nil {
		client.transport = transport.NewHTTPTransport(cfg.Transport, logger.Named("transport"))
	}

	// -------- RATE LIMIT --------
	if cfg.RateLimit.Enabled {
		var (
			limiter rate.Limiter
			err     error
		)
		switch cfg.RateLimit.Backend {
		case RateLimitRedis:
			limiter, err = rate.NewRedis(b.redis, cfg.RateLimit.RedisPrefix, cfg.App.ID,
				cfg.RateLimit.MaxPerWindow, cfg.RateLimit.Window)
		default:
			limiter, err = rate.NewLocal(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		client.limiter = limiter
	}

	// -------- SESSION STORE --------
	if cfg.Session.Enabled {
		client.sessions = session.NewStore(b.redis, cfg.Session.RedisPrefix)
	}

	// -------- OAUTH STATE --------
	if cfg.State.Enabled {
		jm, err := jwt.NewManager(jwt.Config{
			Secret: []byte(cfg.State.Secret),
			TTL:    cfg.State.TTL,
			Issuer: cfg.State.Issuer,
			Leeway: cfg.State.Leeway,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		client.states = jm
	}

	client.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	client.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return client, nil
}
