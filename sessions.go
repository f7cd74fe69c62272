package goVK

import (
	"context"
	"strconv"

	"github.com/MrEthical07/goVK/permission"
	"github.com/MrEthical07/goVK/session"
)

// SaveSession persists an exchanged token under its VK user id. The Redis
// key lives as long as the token; offline tokens never expire.
//
//	Performance: 1 Redis SET.
func (c *Client) SaveSession(ctx context.Context, tok *TokenResponse, scope permission.Mask) (*session.Record, error) {
	if c.sessions == nil {
		return nil, ErrSessionStoreDisabled
	}
	if tok == nil || tok.UserID <= 0 {
		return nil, ErrMissingUserID
	}

	now := c.now()
	rec := &session.Record{
		UserID:      tok.UserID,
		AccessToken: tok.AccessToken,
		Email:       tok.Email,
		Scope:       scope,
		CreatedAt:   now.Unix(),
	}
	if exp := tok.ExpiresAt(now); !exp.IsZero() {
		rec.ExpiresAt = exp.Unix()
	}

	userID := strconv.FormatInt(tok.UserID, 10)
	if err := c.sessions.Save(ctx, rec); err != nil {
		c.emitAudit(ctx, AuditEventSessionSaved, false, userID, err, nil)
		return nil, err
	}

	c.metricInc(MetricSessionSaved)
	c.emitAudit(ctx, AuditEventSessionSaved, true, userID, nil, nil)
	return rec, nil
}

// ResumeSession loads the stored token of userID into c and marks c
// authorized, as if the code exchange had just happened.
//
//	Performance: 1 Redis GET.
func (c *Client) ResumeSession(ctx context.Context, userID int64) (*session.Record, error) {
	if c.sessions == nil {
		return nil, ErrSessionStoreDisabled
	}

	uid := strconv.FormatInt(userID, 10)
	rec, err := c.sessions.Get(ctx, userID)
	if err != nil {
		c.emitAudit(ctx, AuditEventSessionResumed, false, uid, err, nil)
		return nil, err
	}

	c.mu.Lock()
	c.accessToken = rec.AccessToken
	c.authorized = true
	c.mu.Unlock()

	c.metricInc(MetricSessionResumed)
	c.emitAudit(ctx, AuditEventSessionResumed, true, uid, nil, nil)
	return rec, nil
}

// ForgetSession deletes the stored token of userID. Deleting a missing
// session is not an error.
func (c *Client) ForgetSession(ctx context.Context, userID int64) error {
	if c.sessions == nil {
		return ErrSessionStoreDisabled
	}

	if err := c.sessions.Delete(ctx, userID); err != nil {
		return err
	}

	c.metricInc(MetricSessionForgotten)
	c.emitAudit(ctx, AuditEventSessionForgotten, true, strconv.FormatInt(userID, 10), nil, nil)
	return nil
}
