package goVK

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/goVK/permission"
	"github.com/MrEthical07/goVK/transport"
)

const tokenBody = `{"access_token":"abc","expires_in":86400,"user_id":42,"email":"a@b.c"}`

func TestNewClientNoIO(t *testing.T) {
	t.Parallel()

	c, err := NewClient("123", "secret", "tok")
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "tok", c.Token())
	assert.True(t, c.IsAuth())
	assert.Empty(t, c.APIVersion())
}

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewClient("", "secret", "")
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = NewClient("123", "", "")
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestAPIURL(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, newFakeTransport("{}"), nil)

	assert.Equal(t, "https://api.vk.com/method/users.get.json", c.APIURL("users.get", "json"))
	assert.Equal(t, "https://api.vk.com/method/users.get.xml", c.APIURL("users.get", "xml"))
	assert.Equal(t, "https://api.vk.com/method/users.get.json", c.APIURL("users.get", ""))
}

func TestAuthorizeURLDefaults(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, newFakeTransport("{}"), nil)
	scope := permission.NewScope().Add("friends,photos")

	raw := c.AuthorizeURL(AuthorizeOptions{Scope: scope.String()})
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "https://oauth.vk.com/authorize", u.Scheme+"://"+u.Host+u.Path)
	q := u.Query()
	assert.Equal(t, testAppID, q.Get("client_id"))
	assert.Equal(t, "6", q.Get("scope"))
	assert.Equal(t, DefaultRedirectURI, q.Get("redirect_uri"))
	assert.Equal(t, "token", q.Get("response_type"))
	assert.False(t, q.Has("test_mode"))
	assert.False(t, q.Has("state"))
	assert.False(t, q.Has("v"))
}

func TestAuthorizeURLOptions(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, newFakeTransport("{}"), nil)

	raw := c.AuthorizeURL(AuthorizeOptions{
		Scope:        "offline",
		RedirectURI:  "https://example.com/cb",
		ResponseType: "code",
		TestMode:     true,
		State:        "xyz",
		Display:      "popup",
		Revoke:       true,
	})
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "offline", q.Get("scope"))
	assert.Equal(t, "https://example.com/cb", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "1", q.Get("test_mode"))
	assert.Equal(t, "xyz", q.Get("state"))
	assert.Equal(t, "popup", q.Get("display"))
	assert.Equal(t, "1", q.Get("revoke"))
}

func TestExchangeCode(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport(tokenBody)
	c := newTestClient(t, tr, nil)

	tok, err := c.ExchangeCode(context.Background(), "the-code", "")
	require.NoError(t, err)

	assert.Equal(t, "abc", tok.AccessToken)
	assert.EqualValues(t, 86400, tok.ExpiresIn)
	assert.EqualValues(t, 42, tok.UserID)
	assert.Equal(t, "a@b.c", tok.Email)
	assert.Equal(t, testNow.Add(24*time.Hour), tok.ExpiresAt(testNow))
	assert.Equal(t, "abc", c.Token())
	assert.True(t, c.IsAuth())

	req := tr.last(t)
	assert.Equal(t, "GET", req.method)
	assert.Equal(t, DefaultAccessTokenURL, req.path(t))
	q := req.query(t)
	assert.Equal(t, testAppID, q.Get("client_id"))
	assert.Equal(t, testSecret, q.Get("client_secret"))
	assert.Equal(t, "the-code", q.Get("code"))
	assert.Equal(t, DefaultRedirectURI, q.Get("redirect_uri"))

	assert.EqualValues(t, 1, c.MetricsSnapshot().Counters[MetricTokenExchangeSuccess])
}

func TestExchangeCodeTwiceIsRejected(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport(tokenBody)
	c := newTestClient(t, tr, nil)

	_, err := c.ExchangeCode(context.Background(), "one", "")
	require.NoError(t, err)

	_, err = c.ExchangeCode(context.Background(), "two", "")
	require.ErrorIs(t, err, ErrAlreadyAuthorized)
	assert.Equal(t, 1, tr.count())
	assert.EqualValues(t, 1, c.MetricsSnapshot().Counters[MetricTokenExchangeRejected])
}

func TestExchangeCodeWithPresetTokenIsAllowed(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, newFakeTransport(tokenBody), func(cfg *Config) {
		cfg.App.AccessToken = "preset"
	})

	tok, err := c.ExchangeCode(context.Background(), "code", "")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
}

func TestExchangeCodeConcurrentOnlyOneWins(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport(tokenBody)
	c := newTestClient(t, tr, nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ExchangeCode(context.Background(), "code", "")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, ErrAlreadyAuthorized) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, rejected)
	assert.Equal(t, 1, tr.count())
}

func TestExchangeCodeErrorObject(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		respond func(fakeRequest) ([]byte, error)
		want    string
	}{
		{
			name: "error with description",
			respond: func(fakeRequest) ([]byte, error) {
				return []byte(`{"error":"invalid_client","error_description":"bad id"}`), nil
			},
			want: "invalid_client: bad id",
		},
		{
			name: "error without description",
			respond: func(fakeRequest) ([]byte, error) {
				return []byte(`{"error":"invalid_grant"}`), nil
			},
			want: "invalid_grant",
		},
		{
			name: "error in 401 body",
			respond: func(fakeRequest) ([]byte, error) {
				return nil, &transport.StatusError{
					StatusCode: 401,
					Body:       []byte(`{"error":"invalid_client","error_description":"bad id"}`),
				}
			},
			want: "invalid_client: bad id",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tr := &fakeTransport{respond: tc.respond}
			c := newTestClient(t, tr, nil)

			_, err := c.ExchangeCode(context.Background(), "code", "")
			require.ErrorIs(t, err, ErrRemoteAPI)
			assert.EqualError(t, err, tc.want)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.False(t, c.IsAuth())
		})
	}
}

func TestExchangeCodeFailures(t *testing.T) {
	t.Parallel()

	t.Run("status without error object", func(t *testing.T) {
		t.Parallel()

		tr := &fakeTransport{respond: func(fakeRequest) ([]byte, error) {
			return nil, &transport.StatusError{StatusCode: 503, Body: []byte("busy")}
		}}
		c := newTestClient(t, tr, nil)

		_, err := c.ExchangeCode(context.Background(), "code", "")
		var se *transport.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 503, se.StatusCode)
		assert.EqualValues(t, 1, c.MetricsSnapshot().Counters[MetricTokenExchangeFailure])
	})

	t.Run("no access token", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, newFakeTransport(`{"user_id":1}`), nil)
		_, err := c.ExchangeCode(context.Background(), "code", "")
		require.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("not json", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, newFakeTransport(`<html>`), nil)
		_, err := c.ExchangeCode(context.Background(), "code", "")
		require.ErrorIs(t, err, ErrInvalidResponse)
	})
}

func TestCheckAccessToken(t *testing.T) {
	t.Parallel()

	t.Run("no token no io", func(t *testing.T) {
		t.Parallel()

		tr := newFakeTransport("{}")
		c := newTestClient(t, tr, nil)

		ok, err := c.CheckAccessToken(context.Background(), "")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, tr.count())
	})

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		tr := newFakeTransport(`{"response":6}`)
		c := newTestClient(t, tr, nil)

		ok, err := c.CheckAccessToken(context.Background(), "user-token")
		require.NoError(t, err)
		assert.True(t, ok)

		req := tr.last(t)
		assert.Equal(t, "https://api.vk.com/method/getUserSettings.json", req.path(t))
		assert.Equal(t, "user-token", req.query(t).Get("access_token"))
		assert.EqualValues(t, 1, c.MetricsSnapshot().Counters[MetricTokenCheckValid])
	})

	t.Run("stored token", func(t *testing.T) {
		t.Parallel()

		tr := newFakeTransport(`{"response":0}`)
		c := newTestClient(t, tr, nil)
		c.SetAccessToken("stored")

		ok, err := c.CheckAccessToken(context.Background(), "")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "stored", tr.last(t).query(t).Get("access_token"))
	})

	t.Run("error object", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, newFakeTransport(`{"error":{"error_code":5}}`), nil)

		ok, err := c.CheckAccessToken(context.Background(), "bad")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.EqualValues(t, 1, c.MetricsSnapshot().Counters[MetricTokenCheckInvalid])
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		tr := &fakeTransport{respond: func(fakeRequest) ([]byte, error) {
			return nil, transport.ErrCircuitOpen
		}}
		c := newTestClient(t, tr, nil)

		ok, err := c.CheckAccessToken(context.Background(), "tok")
		require.ErrorIs(t, err, transport.ErrCircuitOpen)
		assert.False(t, ok)
	})
}

func TestPasswordTokenDisabled(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport("{}")
	c := newTestClient(t, tr, nil)

	tok, err := c.PasswordToken(context.Background(), "user", "pass", "offline")
	require.ErrorIs(t, err, ErrPasswordGrantDisabled)
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Empty(t, tok)
	assert.Zero(t, tr.count())
	assert.EqualValues(t, 1, c.MetricsSnapshot().Counters[MetricPasswordGrantRejected])
}

func TestSetAPIVersionAndToken(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, newFakeTransport("{}"), nil)
	assert.False(t, c.IsAuth())

	c.SetAPIVersion("5.131")
	c.SetAccessToken("tok")

	assert.Equal(t, "5.131", c.APIVersion())
	assert.Equal(t, "tok", c.Token())
	assert.True(t, c.IsAuth())
}

func TestForkHasFreshTokenState(t *testing.T) {
	t.Parallel()

	tr := newFakeTransport(tokenBody)
	c := newTestClient(t, tr, nil)
	c.SetAPIVersion("5.131")

	_, err := c.ExchangeCode(context.Background(), "code", "")
	require.NoError(t, err)

	f := c.Fork()
	assert.Empty(t, f.Token())
	assert.Equal(t, "5.131", f.APIVersion())

	_, err = f.ExchangeCode(context.Background(), "code", "")
	require.NoError(t, err)

	// Forks share counters with their parent.
	assert.EqualValues(t, 2, c.MetricsSnapshot().Counters[MetricTokenExchangeSuccess])

	f.Close()
	assert.Equal(t, "abc", c.Token())
}
