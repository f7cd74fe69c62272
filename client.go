package goVK

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/goVK/internal"
	"github.com/MrEthical07/goVK/internal/audit"
	"github.com/MrEthical07/goVK/internal/rate"
	"github.com/MrEthical07/goVK/jwt"
	"github.com/MrEthical07/goVK/session"
	"github.com/MrEthical07/goVK/transport"
)

// Client talks to the VK API on behalf of one application and, after a code
// exchange, one user.
//
// Token state is guarded by a mutex, so a Client may be shared between
// goroutines. The exchange rule of [Client.ExchangeCode] holds per Client;
// use [Client.Fork] to get a fresh token state per end user.
//
//	Docs: docs/client.md
type Client struct {
	cfg       Config
	transport transport.Transport
	limiter   rate.Limiter
	sessions  *session.Store
	states    *jwt.Manager
	audit     *audit.Dispatcher
	metrics   *Metrics
	logger    *zap.Logger

	now   func() time.Time
	nonce func() (int, error)

	// owner closes the shared audit dispatcher; forks do not.
	owner bool

	exchangeMu sync.Mutex

	mu          sync.RWMutex
	apiVersion  string
	accessToken string
	authorized  bool
}

// TokenResponse is the decoded answer of the access-token endpoint.
type TokenResponse struct {
	AccessToken string
	// ExpiresIn is the token lifetime in seconds; 0 means the token does not
	// expire (scope "offline").
	ExpiresIn int64
	UserID    int64
	Email     string
	// Raw holds every field of the response.
	Raw map[string]any
}

// ExpiresAt returns the absolute expiry for a token issued at issued, or the
// zero time for non-expiring tokens.
func (t *TokenResponse) ExpiresAt(issued time.Time) time.Time {
	if t == nil || t.ExpiresIn <= 0 {
		return time.Time{}
	}
	return issued.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// AuthorizeOptions are the parameters of [Client.AuthorizeURL].
type AuthorizeOptions struct {
	// Scope is a decimal permission mask (see permission.Scope.String) or a
	// comma-separated list of right names. Empty requests no rights.
	Scope string
	// RedirectURI defaults to the configured redirect URI.
	RedirectURI string
	// ResponseType is "token" (default) or "code".
	ResponseType string
	TestMode     bool
	// State is echoed back to RedirectURI; see [Client.NewState].
	State   string
	Display string
	// Revoke asks VK to show the consent screen again.
	Revoke bool
}

// NewClient creates a client with the default configuration. accessToken may
// be empty. No network I/O is performed.
func NewClient(appID, appSecret, accessToken string) (*Client, error) {
	cfg := DefaultConfig()
	cfg.App.ID = appID
	cfg.App.Secret = appSecret
	cfg.App.AccessToken = accessToken
	return New().WithConfig(cfg).Build()
}

// SetAPIVersion sets the "v" parameter added to calls that do not carry one.
func (c *Client) SetAPIVersion(version string) {
	c.mu.Lock()
	c.apiVersion = version
	c.mu.Unlock()
}

// APIVersion returns the configured API version, or "".
func (c *Client) APIVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiVersion
}

// SetAccessToken replaces the stored token. It does not change the
// authorized flag checked by [Client.ExchangeCode].
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

// Token returns the stored access token, or "".
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// IsAuth reports whether an access token is present.
//
// This is not "the OAuth flow completed": a token set with
// [Client.SetAccessToken] or [NewClient] counts, and nothing checks that it
// is still valid. Use [Client.CheckAccessToken] for that.
func (c *Client) IsAuth() bool {
	return c.Token() != ""
}

// APIURL returns the URL of an API method, <base>/<method>.<format>. format
// defaults to "json".
//
//	APIURL("users.get", "json") == "https://api.vk.com/method/users.get.json"
func (c *Client) APIURL(method, format string) string {
	if format == "" {
		format = FormatJSON
	}
	return c.cfg.Endpoints.APIBaseURL + "/" + method + "." + format
}

// AuthorizeURL builds the URL the user is redirected to for consent.
func (c *Client) AuthorizeURL(opts AuthorizeOptions) string {
	if opts.RedirectURI == "" {
		opts.RedirectURI = c.cfg.Endpoints.RedirectURI
	}
	if opts.ResponseType == "" {
		opts.ResponseType = "token"
	}

	q := url.Values{}
	q.Set("client_id", c.cfg.App.ID)
	q.Set("scope", opts.Scope)
	q.Set("redirect_uri", opts.RedirectURI)
	q.Set("response_type", opts.ResponseType)
	if opts.TestMode {
		q.Set("test_mode", "1")
	}
	if opts.State != "" {
		q.Set("state", opts.State)
	}
	if opts.Display != "" {
		q.Set("display", opts.Display)
	}
	if opts.Revoke {
		q.Set("revoke", "1")
	}

	return c.cfg.Endpoints.AuthorizeURL + "?" + q.Encode()
}

// PasswordToken would perform the direct password grant. VK only offers it
// to whitelisted standalone applications, so it always returns
// [ErrPasswordGrantDisabled] without network I/O.
func (c *Client) PasswordToken(ctx context.Context, login, password, scope string) (string, error) {
	c.metricInc(MetricPasswordGrantRejected)
	c.emitAudit(ctx, AuditEventPasswordGrantRejected, false, "", ErrPasswordGrantDisabled, nil)
	return "", ErrPasswordGrantDisabled
}

// ExchangeCode trades an authorization code for an access token.
//
// It fails with [ErrAlreadyAuthorized] when a previous exchange succeeded
// and a token is still stored. An error object in the response becomes an
// [*APIError]. On success the token is stored and the client is marked
// authorized. redirectURI must match the one used in [Client.AuthorizeURL];
// empty means the configured default.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	c.exchangeMu.Lock()
	defer c.exchangeMu.Unlock()

	c.mu.RLock()
	already := c.accessToken != "" && c.authorized
	c.mu.RUnlock()
	if already {
		c.metricInc(MetricTokenExchangeRejected)
		c.emitAudit(ctx, AuditEventTokenExchangeRejected, false, "", ErrAlreadyAuthorized, nil)
		return nil, ErrAlreadyAuthorized
	}

	if redirectURI == "" {
		redirectURI = c.cfg.Endpoints.RedirectURI
	}

	q := url.Values{}
	q.Set("client_id", c.cfg.App.ID)
	q.Set("client_secret", c.cfg.App.Secret)
	q.Set("code", code)
	q.Set("redirect_uri", redirectURI)

	tok, err := c.fetchToken(ctx, c.cfg.Endpoints.AccessTokenURL+"?"+q.Encode())
	if err != nil {
		c.metricInc(MetricTokenExchangeFailure)
		c.emitAudit(ctx, AuditEventTokenExchangeFailure, false, "", err, nil)
		c.logger.Warn("vk token exchange failed", zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	c.accessToken = tok.AccessToken
	c.authorized = true
	c.mu.Unlock()

	userID := strconv.FormatInt(tok.UserID, 10)
	c.metricInc(MetricTokenExchangeSuccess)
	c.emitAudit(ctx, AuditEventTokenExchangeSuccess, true, userID, nil, func() map[string]string {
		return map[string]string{"expires_in": strconv.FormatInt(tok.ExpiresIn, 10)}
	})
	c.logger.Info("vk token exchanged",
		zap.Int64("user_id", tok.UserID),
		zap.Int64("expires_in", tok.ExpiresIn),
	)

	return tok, nil
}

func (c *Client) fetchToken(ctx context.Context, rawURL string) (*TokenResponse, error) {
	body, err := c.transport.Get(ctx, rawURL)
	if err != nil {
		// VK answers OAuth errors with 4xx and a JSON error object.
		var se *transport.StatusError
		if errors.As(err, &se) {
			if m, decErr := DecodeResponse(se.Body); decErr == nil {
				if apiErr := oauthError(m); apiErr != nil {
					return nil, apiErr
				}
			}
		}
		return nil, err
	}

	m, err := DecodeResponse(body)
	if err != nil {
		return nil, err
	}
	if apiErr := oauthError(m); apiErr != nil {
		return nil, apiErr
	}

	tok := &TokenResponse{
		AccessToken: stringField(m, "access_token"),
		ExpiresIn:   intField(m, "expires_in"),
		UserID:      intField(m, "user_id"),
		Email:       stringField(m, "email"),
		Raw:         m,
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access_token in token response", ErrInvalidResponse)
	}
	return tok, nil
}

func oauthError(m map[string]any) *APIError {
	if _, ok := m["error"]; !ok {
		return nil
	}
	return &APIError{
		Code:        stringField(m, "error"),
		Description: stringField(m, "error_description"),
	}
}

// CheckAccessToken reports whether token is accepted by VK. An empty token
// means the stored one; with no token at all it returns false without
// network I/O. A response carrying a "response" field counts as valid;
// transport failures are returned as errors.
func (c *Client) CheckAccessToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		token = c.Token()
	}
	if token == "" {
		return false, nil
	}

	res, err := c.API(ctx, "getUserSettings", Params{"access_token": token})
	if err != nil {
		c.emitAudit(ctx, AuditEventTokenCheck, false, "", err, nil)
		return false, err
	}

	_, ok := res["response"]
	if ok {
		c.metricInc(MetricTokenCheckValid)
	} else {
		c.metricInc(MetricTokenCheckInvalid)
	}
	c.emitAudit(ctx, AuditEventTokenCheck, ok, "", nil, nil)
	return ok, nil
}

// Fork returns a client sharing configuration, transport, limiter, stores,
// metrics and audit with c, but with no token and not authorized. The API
// version is copied.
func (c *Client) Fork() *Client {
	return &Client{
		cfg:        c.cfg,
		transport:  c.transport,
		limiter:    c.limiter,
		sessions:   c.sessions,
		states:     c.states,
		audit:      c.audit,
		metrics:    c.metrics,
		logger:     c.logger,
		now:        c.now,
		nonce:      c.nonce,
		apiVersion: c.APIVersion(),
	}
}

// Close stops the audit dispatcher after draining it. Closing a fork is a
// no-op.
func (c *Client) Close() {
	if c == nil || !c.owner {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped on a full buffer.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot returns a copy of the client's counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

func (c *Client) metricInc(id MetricID) {
	if c.metrics != nil {
		c.metrics.Inc(id)
	}
}

func defaultNonce() (int, error) {
	return internal.Nonce()
}
