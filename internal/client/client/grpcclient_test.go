package client

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/authtest"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newGRPCBackend(t *testing.T) (*authtest.Backend, *GRPCClient) {
	t.Helper()
	b := authtest.New()
	b.AddUser(authtest.User{
		Username: "root",
		Password: "toor",
		Identity: map[string]any{
			"id":           10,
			"username":     "root",
			"first_name":   "Rosa",
			"last_name":    "Mena",
			"is_superuser": true,
			"role":         "SuperAdmin",
		},
	})

	target, dialer := b.StartGRPC(t)
	c, err := NewGRPCClient(target, 0, dialer)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return b, c
}

func TestGRPCClient_LoginFlow(t *testing.T) {
	b, c := newGRPCBackend(t)
	ctx := context.Background()

	tokens, err := c.ExchangeCredentials(ctx, "root", "toor")
	require.NoError(t, err)

	id, err := c.FetchIdentity(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(10), id.ID)
	assert.True(t, id.IsSuperuser)
	role, ok := id.PrimaryRole()
	require.True(t, ok)
	assert.Equal(t, "SuperAdmin", role.Name)
	assert.Equal(t, "Rosa Mena", id.DisplayName())

	b.ExpireAccessTokens()
	_, err = c.FetchIdentity(ctx, tokens.AccessToken)
	require.ErrorIs(t, err, ErrUnauthorized)

	access, err := c.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	require.NoError(t, c.NotifyLogout(ctx, access))
	require.NoError(t, c.Ping(ctx))
}

func TestGRPCClient_Errors(t *testing.T) {
	b, c := newGRPCBackend(t)
	ctx := context.Background()

	_, err := c.ExchangeCredentials(ctx, "root", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = c.Refresh(ctx, "unknown")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	b.SetDown(true)
	require.ErrorIs(t, c.Ping(ctx), ErrUnavailable)
	_, err = c.ExchangeCredentials(ctx, "root", "toor")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestWithAccessToken(t *testing.T) {
	ctx := metadata.NewOutgoingContext(context.Background(), metadata.Pairs("x-trace", "1"))
	ctx = withAccessToken(ctx, "abc")

	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	require.Equal(t, []string{"Bearer abc"}, md.Get(common.AuthorizationHeaderName))
	require.Equal(t, []string{"1"}, md.Get("x-trace"))
}

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.Equal(t, ErrInvalidCredentials, c.mapError(status.Error(codes.Unauthenticated, "x"), ErrInvalidCredentials))
	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.PermissionDenied, "x"), ErrUnauthorized))
	require.ErrorIs(t, c.mapError(status.Error(codes.Unavailable, "x"), ErrUnauthorized), ErrUnavailable)
	require.ErrorIs(t, c.mapError(status.Error(codes.DeadlineExceeded, "x"), ErrUnauthorized), ErrUnavailable)
	require.ErrorIs(t, c.mapError(status.Error(codes.Internal, "x"), ErrUnauthorized), ErrServer)

	e := errors.New("plain")
	require.ErrorContains(t, c.mapError(e, ErrUnauthorized), "rpc error:")
	require.NoError(t, c.mapError(nil, ErrUnauthorized))
}
