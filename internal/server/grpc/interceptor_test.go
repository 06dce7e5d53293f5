package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestInterceptor_UnprotectedAllowsWithoutToken(t *testing.T) {
	s := NewGRPCServer("", logging.Nop{}, newTokenService(t), "")

	info := &grpc.UnaryServerInfo{FullMethod: pb.TokenService_Rotate_FullMethodName}
	handlerCalled := false
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	require.NoError(t, err)
	assert.True(t, handlerCalled)
	assert.Equal(t, "ok", resp)
}

func TestInterceptor_Whoami_MissingToken(t *testing.T) {
	s := NewGRPCServer("", logging.Nop{}, newTokenService(t), "")

	info := &grpc.UnaryServerInfo{FullMethod: pb.TokenService_Whoami_FullMethodName}
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "missing token", status.Convert(err).Message())
}

func TestInterceptor_Whoami_InvalidToken(t *testing.T) {
	s := NewGRPCServer("", logging.Nop{}, newTokenService(t), "")

	md := metadata.New(map[string]string{common.AccessTokenHeaderName: "not-a-valid-jwt"})
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: pb.TokenService_Whoami_FullMethodName}
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called for invalid token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(ctx, nil, info, h)
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_Whoami_ValidTokenSetsClaims(t *testing.T) {
	ts := newTokenService(t)
	s := NewGRPCServer("", logging.Nop{}, ts, "")

	pair, err := ts.Issue(context.Background(), models.Identity{ID: "u1", Roles: []string{"USER"}})
	require.NoError(t, err)

	md := metadata.New(map[string]string{common.AccessTokenHeaderName: pair.AccessToken})
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: pb.TokenService_Whoami_FullMethodName}

	var gotSubject string
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		c, ok := claimsFromContext(ctx)
		require.True(t, ok)
		gotSubject = c.Subject
		return "ok", nil
	}

	_, err = s.accessTokenInterceptor(ctx, nil, info, h)
	require.NoError(t, err)
	assert.Equal(t, "u1", gotSubject)
}

type recordingLogger struct {
	logging.Nop
	errors []string
	infos  []string
}

func (l *recordingLogger) Info(_ context.Context, msg string, _ ...any)  { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Error(_ context.Context, msg string, _ ...any) { l.errors = append(l.errors, msg) }
func (l *recordingLogger) With(...any) logging.Logger                    { return l }

func TestRequestLogInterceptor(t *testing.T) {
	l := &recordingLogger{}
	s := NewGRPCServer("", l, newTokenService(t), "")
	info := &grpc.UnaryServerInfo{FullMethod: pb.TokenService_Rotate_FullMethodName}

	var id string
	_, err := s.requestLogInterceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		id, _ = ctx.Value(requestIDKey).(string)
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Len(t, id, 26)
	assert.Equal(t, []string{"gRPC call"}, l.infos)

	_, err = s.requestLogInterceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.Internal, "boom")
	})
	require.Error(t, err)
	assert.Equal(t, []string{"gRPC call failed"}, l.errors)
}
