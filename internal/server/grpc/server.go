// Package grpc exposes the token lifecycle over gRPC for the services that
// verify credentials and call Issue, and for clients that refresh, revoke or
// introspect their tokens.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc"
)

// TokenService is the part of services.TokenService the transport uses.
type TokenService interface {
	Issue(ctx context.Context, identity models.Identity) (*services.TokenPair, error)
	Rotate(ctx context.Context, refreshToken string) (*services.TokenPair, *models.Identity, error)
	Revoke(ctx context.Context, refreshToken string) error
	VerifyAccess(accessToken string) (*auth.Claims, bool)
}

type GRPCServer struct {
	pb.UnimplementedTokenServiceServer
	address   string
	tokens    TokenService
	issuerKey []byte
	logger    logging.Logger
}

// NewGRPCServer returns a server listening on address. An empty issuerKey
// disables Issue.
func NewGRPCServer(address string, l logging.Logger, tokens TokenService, issuerKey string) *GRPCServer {
	return &GRPCServer{
		address:   address,
		logger:    l.With("module", "grpc_server"),
		tokens:    tokens,
		issuerKey: []byte(issuerKey),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.requestLogInterceptor,
		s.accessTokenInterceptor,
	))
	pb.RegisterTokenServiceServer(srv, s)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
