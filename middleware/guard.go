package middleware

import (
	"context"
	"net/http"
	"strings"

	goVK "github.com/MrEthical07/goVK"
)

type accessTokenContextKey struct{}

// AccessTokenFromContext returns the token accepted by [RequireToken].
func AccessTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenContextKey{}).(string)
	return token, ok && token != ""
}

// RequireToken rejects requests whose bearer token VK does not accept.
//
//	Performance: 1 VK API round-trip per request.
func RequireToken(client *goVK.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := requestContext(r)
			valid, err := client.CheckAccessToken(ctx, token)
			if err != nil {
				http.Error(w, "vk unavailable", http.StatusBadGateway)
				return
			}
			if !valid {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, accessTokenContextKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
