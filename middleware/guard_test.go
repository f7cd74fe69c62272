package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireToken(t *testing.T) {
	t.Parallel()

	stub := newVKStub(t)
	client, _ := newClient(t, stub, false)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := AccessTokenFromContext(r.Context())
		assert.True(t, ok)
		_, _ = w.Write([]byte(token))
	})
	h := RequireToken(client)(next)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"rejected by vk", "Bearer bad", http.StatusUnauthorized},
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "good", rec.Body.String())
			}
		})
	}
}

func TestRequireTokenUpstreamDown(t *testing.T) {
	t.Parallel()

	stub := newVKStub(t)
	client, _ := newClient(t, stub, false)
	stub.server.Close()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	RequireToken(client)(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRequireTokenNilClient(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	RequireToken(nil)(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
