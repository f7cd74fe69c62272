package goVK

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/goVK/permission"
)

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	c, _ := newRedisClient(t, newFakeTransport("{}"))
	scope := permission.NewScope().Add("wall", "offline")

	state, err := c.NewState(scope.Mask(), "https://example.com/cb")
	require.NoError(t, err)

	claims, err := c.VerifyState(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, scope.Value(), claims.Scope)
	assert.Equal(t, "https://example.com/cb", claims.RedirectURI)
	assert.EqualValues(t, 1, c.MetricsSnapshot().Counters[MetricStateIssued])
}

func TestStateRejected(t *testing.T) {
	t.Parallel()

	c, _ := newRedisClient(t, newFakeTransport("{}"))

	state, err := c.NewState(0, "")
	require.NoError(t, err)

	for _, bad := range []string{"", "garbage", state + "x"} {
		_, err := c.VerifyState(context.Background(), bad)
		require.ErrorIs(t, err, ErrInvalidState, bad)
	}
	assert.EqualValues(t, 3, c.MetricsSnapshot().Counters[MetricStateRejected])
}

func TestStateDisabled(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, newFakeTransport("{}"), nil)

	_, err := c.NewState(0, "")
	require.ErrorIs(t, err, ErrStateDisabled)
	_, err = c.VerifyState(context.Background(), "x")
	require.ErrorIs(t, err, ErrStateDisabled)
}
