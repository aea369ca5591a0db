package authtest

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type authServer interface{}

type structHandler func(b *Backend, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unary(name string, fn structHandler) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := &structpb.Struct{}
			if err := dec(in); err != nil {
				return nil, err
			}
			b := srv.(*Backend)
			if interceptor == nil {
				return fn(b, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + common.AuthServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(b, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: common.AuthServiceName,
	HandlerType: (*authServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ExchangeCredentials", func(b *Backend, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			access, refresh, err := b.exchange(field(in, "username"), field(in, "password"))
			if err != nil {
				return nil, toStatus(err)
			}
			return structpb.NewStruct(map[string]any{"access": access, "refresh": refresh})
		}),
		unary("FetchIdentity", func(b *Backend, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			identity, err := b.identity(incomingToken(ctx))
			if err != nil {
				return nil, toStatus(err)
			}
			return structpb.NewStruct(identity)
		}),
		unary("Refresh", func(b *Backend, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			access, err := b.refresh(field(in, "refresh"))
			if err != nil {
				return nil, toStatus(err)
			}
			return structpb.NewStruct(map[string]any{"access": access})
		}),
		unary("NotifyLogout", func(b *Backend, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			if err := b.logout(incomingToken(ctx)); err != nil {
				return nil, toStatus(err)
			}
			return &structpb.Struct{}, nil
		}),
		unary("Ping", func(b *Backend, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			if b.isDown() {
				return nil, toStatus(errDown)
			}
			return structpb.NewStruct(map[string]any{"status": "OK"})
		}),
	},
	Metadata: "gatekeeper/auth/v1/auth.proto",
}

// StartGRPC serves the Backend over an in-memory listener and returns the
// dial target plus the dial option that reaches it.
func (b *Backend) StartGRPC(t testing.TB) (string, grpc.DialOption) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	srv.RegisterService(&serviceDesc, b)

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() {
		srv.Stop()
		_ = lis.Close()
	})

	dialer := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
	return "passthrough:///bufnet", dialer
}

func field(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func incomingToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return ""
	}
	return common.TokenFromBearer(values[0])
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, errBadCredentials), errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, errDown):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
