package session

import (
	"time"

	"github.com/MrEthical07/goVK/permission"
)

// Record is an access token obtained through the authorization-code flow,
// keyed by the VK user it belongs to.
type Record struct {
	UserID      int64
	AccessToken string
	Email       string

	// Scope is the set of rights requested when the token was issued.
	Scope permission.Mask

	CreatedAt int64
	// ExpiresAt is a unix timestamp; zero means the token does not expire
	// (VK issues such tokens for the offline right).
	ExpiresAt int64
}

// Expired reports whether the token has passed its expiry at now.
func (r *Record) Expired(now time.Time) bool {
	return r.ExpiresAt != 0 && now.Unix() >= r.ExpiresAt
}

// TTL returns the remaining lifetime at now. Zero means no expiry; a negative
// value means the record is already expired.
func (r *Record) TTL(now time.Time) time.Duration {
	if r.ExpiresAt == 0 {
		return 0
	}
	ttl := time.Unix(r.ExpiresAt, 0).Sub(now)
	if ttl <= 0 {
		return -1
	}
	return ttl
}
