package goVK

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goVK/jwt"
	"github.com/MrEthical07/goVK/permission"
)

// NewState issues a signed OAuth state carrying scope and redirectURI. Pass
// it as [AuthorizeOptions.State] and check it with [Client.VerifyState] when
// VK redirects back.
func (c *Client) NewState(scope permission.Mask, redirectURI string) (string, error) {
	if c.states == nil {
		return "", ErrStateDisabled
	}

	state, err := c.states.Issue(uint64(scope), redirectURI)
	if err != nil {
		return "", err
	}

	c.metricInc(MetricStateIssued)
	return state, nil
}

// VerifyState checks a state returned by VK. Any verification failure is
// reported as [ErrInvalidState].
func (c *Client) VerifyState(ctx context.Context, state string) (*jwt.StateClaims, error) {
	if c.states == nil {
		return nil, ErrStateDisabled
	}

	claims, err := c.states.Parse(state)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidState, err)
		c.metricInc(MetricStateRejected)
		c.emitAudit(ctx, AuditEventStateRejected, false, "", err, nil)
		return nil, err
	}

	return claims, nil
}
