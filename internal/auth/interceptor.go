package auth

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/gridmesh/authcore/internal/common"
)

// authenticate derives a principal from incoming metadata, if possible.
// It never fails: a missing or invalid credential leaves the context
// unauthenticated, mirroring the HTTP middleware.
func authenticate(ctx context.Context, v Verifier) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}
	values := md.Get(common.AuthorizationMetadataKey)
	if len(values) == 0 {
		return ctx
	}
	raw := extractBearerToken(values[0])
	if raw == "" {
		return ctx
	}
	p, err := v.Verify(raw)
	if err != nil {
		return ctx
	}
	return WithPrincipal(ctx, p)
}

// UnaryInterceptor populates the request context with a Principal for
// authenticated unary calls. Handlers gate access with Require.
func UnaryInterceptor(v Verifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return handler(authenticate(ctx, v), req)
	}
}

// StreamInterceptor is the streaming counterpart of UnaryInterceptor.
func StreamInterceptor(v Verifier) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		return handler(srv, &authenticatedStream{ServerStream: ss, ctx: authenticate(ss.Context(), v)})
	}
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authenticatedStream) Context() context.Context {
	return s.ctx
}

// Require returns the principal for the call or a gRPC status error:
// Unauthenticated for anonymous calls, PermissionDenied when roles are given
// and none match.
func Require(ctx context.Context, roles ...Role) (*Principal, error) {
	p := PrincipalFromContext(ctx)
	if p == nil {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}
	if len(roles) == 0 {
		return p, nil
	}
	for _, r := range roles {
		if p.Role == r {
			return p, nil
		}
	}
	return nil, status.Error(codes.PermissionDenied, "insufficient role")
}
