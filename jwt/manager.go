package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultStateTTL = 10 * time.Minute
	maxLeeway       = 2 * time.Minute
)

var (
	// ErrMissingSecret is returned by [NewManager] without a signing secret.
	ErrMissingSecret = errors.New("state signing secret required")
	// ErrInvalidTTL is returned by [NewManager] for a negative TTL.
	ErrInvalidTTL = errors.New("invalid state TTL configuration")
	// ErrInvalidLeeway is returned by [NewManager] for a leeway outside [0, 2m].
	ErrInvalidLeeway = errors.New("invalid leeway configuration")
)

// Config controls state issuance and verification.
type Config struct {
	// Secret is the HS256 key. The client uses its app secret by default.
	Secret []byte
	// TTL bounds how long a user may stay on the VK consent page.
	TTL    time.Duration
	Issuer string
	Leeway time.Duration
}

// StateClaims travels through the VK authorization page in the state
// parameter and comes back on the redirect.
type StateClaims struct {
	Scope       uint64 `json:"scp,omitempty"`
	RedirectURI string `json:"ruri,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies OAuth state values.
type Manager struct {
	config Config
	now    func() time.Time
}

// NewManager validates cfg and returns a [Manager].
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if cfg.TTL < 0 {
		return nil, ErrInvalidTTL
	}
	if cfg.TTL == 0 {
		cfg.TTL = defaultStateTTL
	}
	if cfg.Leeway < 0 || cfg.Leeway > maxLeeway {
		return nil, ErrInvalidLeeway
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	cfg.Secret = secret

	return &Manager{config: cfg, now: time.Now}, nil
}

// Issue returns a signed state carrying the requested scope and the redirect
// URI the code will be delivered to.
func (m *Manager) Issue(scope uint64, redirectURI string) (string, error) {
	now := m.now()

	claims := StateClaims{
		Scope:       scope,
		RedirectURI: redirectURI,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
			Issuer:    m.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// Parse verifies state and returns its claims.
func (m *Manager) Parse(state string) (*StateClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(state, &StateClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*StateClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.ID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}
