package goVK

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	testAppID       = "123"
	testSecret      = "SECRET"
	testStateSecret = "0123456789abcdef0123456789abcdef"
)

var testNow = time.Unix(1700000000, 0)

type fakeRequest struct {
	method string
	url    string
	form   url.Values
}

// query returns the query of a GET or the form of a POST.
func (r fakeRequest) query(t *testing.T) url.Values {
	t.Helper()
	if r.method == "POST" {
		return r.form
	}
	u, err := url.Parse(r.url)
	require.NoError(t, err)
	return u.Query()
}

func (r fakeRequest) path(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(r.url)
	require.NoError(t, err)
	return u.Scheme + "://" + u.Host + u.Path
}

type fakeTransport struct {
	mu       sync.Mutex
	requests []fakeRequest
	respond  func(req fakeRequest) ([]byte, error)
}

func newFakeTransport(body string) *fakeTransport {
	return &fakeTransport{
		respond: func(fakeRequest) ([]byte, error) { return []byte(body), nil },
	}
}

func (f *fakeTransport) Get(_ context.Context, rawURL string) ([]byte, error) {
	return f.do(fakeRequest{method: "GET", url: rawURL})
}

func (f *fakeTransport) Post(_ context.Context, rawURL string, form url.Values) ([]byte, error) {
	return f.do(fakeRequest{method: "POST", url: rawURL, form: form})
}

func (f *fakeTransport) do(req fakeRequest) ([]byte, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	respond := f.respond
	f.mu.Unlock()
	return respond(req)
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeTransport) last(t *testing.T) fakeRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.App.ID = testAppID
	cfg.App.Secret = testSecret
	return cfg
}

// newTestClient builds a client on tr with a fixed clock and nonce.
func newTestClient(t *testing.T, tr *fakeTransport, mutate func(*Config)) *Client {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	c, err := New().WithConfig(cfg).WithTransport(tr).Build()
	require.NoError(t, err)
	t.Cleanup(c.Close)

	c.now = func() time.Time { return testNow }
	c.nonce = func() (int, error) { return 42, nil }
	return c
}

// newRedisClient builds a client with sessions and state enabled on a
// fresh miniredis.
func newRedisClient(t *testing.T, tr *fakeTransport) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig()
	cfg.Session.Enabled = true
	cfg.State.Enabled = true
	cfg.State.Secret = testStateSecret

	c, err := New().WithConfig(cfg).WithTransport(tr).WithRedis(rdb).Build()
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, mr
}
