package goVK

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrEthical07/goVK/transport"
)

// Default VK endpoints.
const (
	DefaultAuthorizeURL   = "https://oauth.vk.com/authorize"
	DefaultAccessTokenURL = "https://oauth.vk.com/access_token"
	DefaultTokenURL       = "https://oauth.vk.com/token"
	DefaultAPIBaseURL     = "https://api.vk.com/method"
	DefaultRedirectURI    = "https://api.vk.com/blank.html"
)

// Config holds every setting of a [Client].
//
// Config instances are intended to be configured during initialization and then treated as immutable.
//
//	Docs: docs/config.md
type Config struct {
	App       AppConfig        `yaml:"app"`
	Endpoints EndpointConfig   `yaml:"endpoints"`
	Transport transport.Config `yaml:"transport"`
	RateLimit RateLimitConfig  `yaml:"rate_limit"`
	Session   SessionConfig    `yaml:"session"`
	State     StateConfig      `yaml:"state"`
	Audit     AuditConfig      `yaml:"audit"`
	Metrics   MetricsConfig    `yaml:"metrics"`
}

/*
====================================
APP CONFIG
====================================
*/

// AppConfig identifies the VK application.
type AppConfig struct {
	ID     string `yaml:"id"`
	Secret string `yaml:"secret"`
	// AccessToken preloads a token obtained elsewhere.
	AccessToken string `yaml:"access_token"`
	// APIVersion is sent as the "v" parameter when set, e.g. "5.131".
	APIVersion string `yaml:"api_version"`
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointConfig overrides the VK endpoints, mostly for tests.
type EndpointConfig struct {
	AuthorizeURL   string `yaml:"authorize_url"`
	AccessTokenURL string `yaml:"access_token_url"`
	TokenURL       string `yaml:"token_url"`
	APIBaseURL     string `yaml:"api_base_url"`
	RedirectURI    string `yaml:"redirect_uri"`
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitBackend selects where the call budget is tracked.
type RateLimitBackend string

const (
	// RateLimitLocal keeps a token bucket in process memory.
	RateLimitLocal RateLimitBackend = "local"
	// RateLimitRedis shares a fixed-window counter through Redis.
	RateLimitRedis RateLimitBackend = "redis"
)

// RateLimitConfig throttles outgoing API calls.
type RateLimitConfig struct {
	Enabled bool             `yaml:"enabled"`
	Backend RateLimitBackend `yaml:"backend"`
	// RequestsPerSecond and Burst configure the local token bucket.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	// MaxPerWindow and Window configure the Redis fixed window.
	MaxPerWindow int           `yaml:"max_per_window"`
	Window       time.Duration `yaml:"window"`
	RedisPrefix  string        `yaml:"redis_prefix"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls token persistence in Redis.
type SessionConfig struct {
	Enabled     bool   `yaml:"enabled"`
	RedisPrefix string `yaml:"redis_prefix"`
}

/*
====================================
STATE CONFIG
====================================
*/

// StateConfig controls signing of the OAuth state parameter.
type StateConfig struct {
	Enabled bool          `yaml:"enabled"`
	Secret  string        `yaml:"secret"`
	TTL     time.Duration `yaml:"ttl"`
	Issuer  string        `yaml:"issuer"`
	Leeway  time.Duration `yaml:"leeway"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls asynchronous audit dispatch.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

// DefaultConfig returns a configuration with VK endpoints and conservative
// defaults. App credentials must still be filled in.
func DefaultConfig() Config {
	return Config{
		Endpoints: EndpointConfig{
			AuthorizeURL:   DefaultAuthorizeURL,
			AccessTokenURL: DefaultAccessTokenURL,
			TokenURL:       DefaultTokenURL,
			APIBaseURL:     DefaultAPIBaseURL,
			RedirectURI:    DefaultRedirectURI,
		},
		Transport: transport.DefaultConfig(),
		RateLimit: RateLimitConfig{
			Enabled:           false,
			Backend:           RateLimitLocal,
			RequestsPerSecond: 3,
			Burst:             3,
			MaxPerWindow:      3,
			Window:            time.Second,
			RedisPrefix:       "vkr",
		},
		Session: SessionConfig{
			RedisPrefix: "vks",
		},
		State: StateConfig{
			TTL:    10 * time.Minute,
			Issuer: "goVK",
		},
		Audit: AuditConfig{
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate reports the first invalid setting, wrapped in [ErrConfiguration].
func (c *Config) Validate() error {
	if c.App.ID == "" {
		return fmt.Errorf("%w: App ID must be set", ErrConfiguration)
	}
	if c.App.Secret == "" {
		return fmt.Errorf("%w: App Secret must be set", ErrConfiguration)
	}

	for name, raw := range map[string]string{
		"AuthorizeURL":   c.Endpoints.AuthorizeURL,
		"AccessTokenURL": c.Endpoints.AccessTokenURL,
		"TokenURL":       c.Endpoints.TokenURL,
		"APIBaseURL":     c.Endpoints.APIBaseURL,
		"RedirectURI":    c.Endpoints.RedirectURI,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: Endpoints %s must be an absolute URL", ErrConfiguration, name)
		}
	}

	if c.Transport.Timeout < 0 {
		return fmt.Errorf("%w: Transport Timeout must be >= 0", ErrConfiguration)
	}
	if c.Transport.MaxResponseBytes < 0 {
		return fmt.Errorf("%w: Transport MaxResponseBytes must be >= 0", ErrConfiguration)
	}
	if b := c.Transport.Breaker; b.Enabled && (b.FailureRatio < 0 || b.FailureRatio > 1) {
		return fmt.Errorf("%w: Transport Breaker FailureRatio must be within [0, 1]", ErrConfiguration)
	}

	if c.RateLimit.Enabled {
		switch c.RateLimit.Backend {
		case RateLimitLocal:
			if c.RateLimit.RequestsPerSecond <= 0 {
				return fmt.Errorf("%w: RateLimit RequestsPerSecond must be > 0", ErrConfiguration)
			}
			if c.RateLimit.Burst <= 0 {
				return fmt.Errorf("%w: RateLimit Burst must be > 0", ErrConfiguration)
			}
		case RateLimitRedis:
			if c.RateLimit.MaxPerWindow <= 0 {
				return fmt.Errorf("%w: RateLimit MaxPerWindow must be > 0", ErrConfiguration)
			}
			if c.RateLimit.Window <= 0 {
				return fmt.Errorf("%w: RateLimit Window must be > 0", ErrConfiguration)
			}
		default:
			return fmt.Errorf("%w: RateLimit Backend must be 'local' or 'redis'", ErrConfiguration)
		}
	}

	if c.State.Enabled {
		if len(c.State.Secret) < 32 {
			return fmt.Errorf("%w: State Secret must be at least 32 bytes", ErrConfiguration)
		}
		if c.State.TTL <= 0 {
			return fmt.Errorf("%w: State TTL must be > 0", ErrConfiguration)
		}
		if c.State.Leeway < 0 || c.State.Leeway > 2*time.Minute {
			return fmt.Errorf("%w: State Leeway must be within [0, 2m]", ErrConfiguration)
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%w: Audit BufferSize must be > 0", ErrConfiguration)
	}

	return nil
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// LoadConfig reads a YAML file on top of [DefaultConfig]. ${VAR} and
// ${VAR:-default} references are substituted from the environment before
// parsing, so secrets can stay out of the file; $$ is a literal dollar. The
// result is not validated.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, fmt.Errorf("%w: config file path is empty", ErrConfiguration)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: config file does not exist: %s", ErrConfiguration, path)
		}
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("%w: config path is a directory, not a file: %s", ErrConfiguration, path)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), &cfg); err != nil {
		return cfg, fmt.Errorf("%w: failed to parse YAML config: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

func substituteEnvVars(content string) string {
	content = strings.ReplaceAll(content, "$$", "\x00ESCAPED_DOLLAR\x00")

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		if value, ok := os.LookupEnv(m[1]); ok {
			return value
		}
		return m[2]
	})

	return strings.ReplaceAll(result, "\x00ESCAPED_DOLLAR\x00", "$")
}
