package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	pb "github.com/dmitrijs2005/gophauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Identity is the user a token pair is minted for.
type Identity struct {
	ID    string
	Roles []string
	Email string
}

// Claims is what the server reports about an access token.
type Claims struct {
	Active    bool
	Subject   string
	Roles     []string
	Email     string
	ExpiresAt int64
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.TokenServiceClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewTokenClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewTokenServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// Tokens returns the current session pair.
func (s *GRPCClient) Tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

// SetTokens replaces the session pair, e.g. with tokens obtained elsewhere.
func (s *GRPCClient) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken = access, refresh
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor authenticates Whoami and refreshes the session once
// when the access token is rejected.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if method != pb.TokenService_Whoami_FullMethodName {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, refresh := s.Tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if status.Code(err) != codes.Unauthenticated || refresh == "" {
		return err
	}

	if _, err := s.Refresh(ctx); err != nil {
		return err
	}

	access, _ = s.Tokens()
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

// Issue asks the server to mint a pair for identity and stores it as the
// session. issuerKey must match the server's configured key.
func (s *GRPCClient) Issue(ctx context.Context, issuerKey string, identity Identity) error {
	req, err := structpb.NewStruct(map[string]any{
		"id":    identity.ID,
		"roles": stringList(identity.Roles),
		"email": identity.Email,
	})
	if err != nil {
		return err
	}

	ctx = metadata.AppendToOutgoingContext(ctx, common.IssuerKeyHeaderName, issuerKey)
	resp, err := s.client.Issue(ctx, req)
	if err != nil {
		return s.mapError(err)
	}

	s.SetTokens(resp.Fields["access_token"].GetStringValue(), resp.Fields["refresh_token"].GetStringValue())
	return nil
}

// Refresh rotates the session's refresh token and returns the identity the
// new pair belongs to. A rejected refresh clears the session.
func (s *GRPCClient) Refresh(ctx context.Context) (*Identity, error) {
	_, refresh := s.Tokens()
	if refresh == "" {
		return nil, ErrNoSession
	}

	resp, err := s.client.Rotate(ctx, wrapperspb.String(refresh))
	if err != nil {
		if status.Code(err) == codes.Unauthenticated {
			s.SetTokens("", "")
		}
		return nil, s.mapError(err)
	}

	s.SetTokens(resp.Fields["access_token"].GetStringValue(), resp.Fields["refresh_token"].GetStringValue())

	user := resp.Fields["user"].GetStructValue()
	return &Identity{
		ID:    user.GetFields()["id"].GetStringValue(),
		Roles: stringsOf(user.GetFields()["roles"]),
		Email: user.GetFields()["email"].GetStringValue(),
	}, nil
}

// Logout revokes the session's refresh token and forgets the pair.
func (s *GRPCClient) Logout(ctx context.Context) error {
	_, refresh := s.Tokens()
	if refresh == "" {
		return nil
	}
	if _, err := s.client.Revoke(ctx, wrapperspb.String(refresh)); err != nil {
		return s.mapError(err)
	}
	s.SetTokens("", "")
	return nil
}

// Introspect reports the claims of token, or of the session access token
// when token is empty.
func (s *GRPCClient) Introspect(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		token, _ = s.Tokens()
	}
	resp, err := s.client.Introspect(ctx, wrapperspb.String(token))
	if err != nil {
		return nil, s.mapError(err)
	}
	return claimsOf(resp), nil
}

// Whoami returns the claims of the session access token.
func (s *GRPCClient) Whoami(ctx context.Context) (*Claims, error) {
	resp, err := s.client.Whoami(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	c := claimsOf(resp)
	c.Active = true
	return c, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func claimsOf(st *structpb.Struct) *Claims {
	f := st.GetFields()
	return &Claims{
		Active:    f["active"].GetBoolValue(),
		Subject:   f["sub"].GetStringValue(),
		Roles:     stringsOf(f["roles"]),
		Email:     f["email"].GetStringValue(),
		ExpiresAt: int64(f["exp"].GetNumberValue()),
	}
}

func stringsOf(v *structpb.Value) []string {
	var out []string
	for _, item := range v.GetListValue().GetValues() {
		out = append(out, item.GetStringValue())
	}
	return out
}

func stringList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
