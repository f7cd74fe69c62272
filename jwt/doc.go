// Package jwt signs and verifies the OAuth state parameter as a short-lived HS256
// JWT. The state carries the requested scope and redirect URI so the callback can
// reject forged redirects and remember which rights the user was asked for.
package jwt
