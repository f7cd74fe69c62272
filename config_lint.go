package goVK

import (
	"strings"
	"time"
)

// LintWarning is a non-fatal observation about a [Config].
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	codes := make([]string, len(ws))
	for i, w := range ws {
		codes[i] = w.Code
	}
	return codes
}

// Lint reports settings that are valid but probably unintended. It never
// fails; call [Config.Validate] for hard errors.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings

	if c.App.APIVersion == "" {
		ws = append(ws, LintWarning{
			Code:    "api_version_unset",
			Message: "no API version configured; VK rejects most methods without the v parameter",
		})
	}
	if !c.RateLimit.Enabled {
		ws = append(ws, LintWarning{
			Code:    "rate_limit_disabled",
			Message: "client-side rate limiting is disabled; VK answers error 6 above 3 requests per second",
		})
	}
	if !c.Transport.Breaker.Enabled {
		ws = append(ws, LintWarning{
			Code:    "breaker_disabled",
			Message: "circuit breaker is disabled",
		})
	}
	if !c.State.Enabled {
		ws = append(ws, LintWarning{
			Code:    "state_disabled",
			Message: "OAuth state is not signed; the callback cannot detect forged redirects",
		})
	} else if c.State.TTL > 30*time.Minute {
		ws = append(ws, LintWarning{
			Code:    "state_ttl_long",
			Message: "OAuth state TTL exceeds 30m",
		})
	}
	for _, raw := range []string{c.Endpoints.AuthorizeURL, c.Endpoints.AccessTokenURL, c.Endpoints.APIBaseURL} {
		if strings.HasPrefix(raw, "http://") {
			ws = append(ws, LintWarning{
				Code:    "endpoint_insecure",
				Message: "endpoint " + raw + " does not use https",
			})
			break
		}
	}
	if c.Audit.Enabled && c.Audit.DropIfFull && c.Audit.BufferSize < 64 {
		ws = append(ws, LintWarning{
			Code:    "audit_buffer_small",
			Message: "audit buffer below 64 events with DropIfFull; bursts will drop events",
		})
	}

	return ws
}
