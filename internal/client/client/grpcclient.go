package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/client/models"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCClient is the Client for the gRPC flavour of the auth service. Every
// method exchanges google.protobuf.Struct messages, so no generated stubs
// are needed on either side.
type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerToken(token))

	return metadata.NewOutgoingContext(ctx, md)
}

// NewGRPCClient creates a client for endpointURL. Extra dial options are
// appended to the defaults (insecure transport credentials).
func NewGRPCClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{endpointURL: endpointURL, timeout: timeout, conn: conn}, nil
}

func (c *GRPCClient) invoke(ctx context.Context, method, accessToken string, fields map[string]any) (*structpb.Struct, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	if accessToken != "" {
		ctx = withAccessToken(ctx, accessToken)
	}

	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) ExchangeCredentials(ctx context.Context, username, password string) (models.Tokens, error) {
	resp, err := c.invoke(ctx, common.MethodExchangeCredentials, "", map[string]any{
		"username": username,
		"password": password,
	})
	if err != nil {
		return models.Tokens{}, c.mapError(err, ErrInvalidCredentials)
	}

	access := stringField(resp, "access")
	refresh := stringField(resp, "refresh")
	if access == "" || refresh == "" {
		return models.Tokens{}, fmt.Errorf("%w: token pair is incomplete", ErrMalformedResponse)
	}
	return models.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (c *GRPCClient) FetchIdentity(ctx context.Context, accessToken string) (*models.Identity, error) {
	resp, err := c.invoke(ctx, common.MethodFetchIdentity, accessToken, nil)
	if err != nil {
		return nil, c.mapError(err, ErrUnauthorized)
	}

	data, err := protojson.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: identity: %v", ErrMalformedResponse, err)
	}
	return DecodeIdentity(data)
}

func (c *GRPCClient) Refresh(ctx context.Context, refreshToken string) (string, error) {
	resp, err := c.invoke(ctx, common.MethodRefresh, "", map[string]any{"refresh": refreshToken})
	if err != nil {
		return "", c.mapError(err, ErrInvalidRefreshToken)
	}

	access := stringField(resp, "access")
	if access == "" {
		return "", fmt.Errorf("%w: refresh without access token", ErrMalformedResponse)
	}
	return access, nil
}

func (c *GRPCClient) NotifyLogout(ctx context.Context, accessToken string) error {
	if _, err := c.invoke(ctx, common.MethodNotifyLogout, accessToken, nil); err != nil {
		return c.mapError(err, ErrUnauthorized)
	}
	return nil
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	resp, err := c.invoke(ctx, common.MethodPing, "", nil)
	if err != nil {
		return c.mapError(err, ErrUnauthorized)
	}
	if stringField(resp, "status") != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// mapError translates a gRPC status into a sentinel. authErr is what an
// Unauthenticated/PermissionDenied/InvalidArgument answer means for the
// calling method.
func (c *GRPCClient) mapError(err error, authErr error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied, codes.InvalidArgument:
		return authErr
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("%w: rpc error: %v", ErrServer, err)
	}
}

func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

var _ Client = (*GRPCClient)(nil)
