package grpc

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Issue mints a pair for the identity in req. Only callers presenting the
// configured issuer key may call it.
func (s *GRPCServer) Issue(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if len(s.issuerKey) == 0 {
		return nil, status.Error(codes.PermissionDenied, "issue disabled")
	}
	key := fromMetadata(ctx, common.IssuerKeyHeaderName)
	if subtle.ConstantTimeCompare([]byte(key), s.issuerKey) != 1 {
		return nil, status.Error(codes.PermissionDenied, "bad issuer key")
	}

	identity, err := identityFromStruct(req)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(ctx, identity)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Issued", "user_id", identity.ID)
	return pairStruct(pair, nil)
}

func (s *GRPCServer) Rotate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	pair, identity, err := s.tokens.Rotate(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return pairStruct(pair, identity)
}

// Revoke always succeeds for the client; storage faults are only logged.
func (s *GRPCServer) Revoke(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.tokens.Revoke(ctx, req.GetValue()); err != nil {
		s.logger.Error(ctx, "revoke failed", "error", err.Error())
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Introspect(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	claims, ok := s.tokens.VerifyAccess(req.GetValue())
	if !ok {
		return structpb.NewStruct(map[string]any{"active": false})
	}
	return claimsStruct(claims, true)
}

func (s *GRPCServer) Whoami(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	return claimsStruct(claims, false)
}

// toStatus maps service errors to gRPC statuses. The three token failures
// share Unauthenticated and differ by message.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "invalid_token")
	case errors.Is(err, common.ErrTokenNotFound):
		return status.Error(codes.Unauthenticated, "token_not_found")
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, "token_expired")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func identityFromStruct(req *structpb.Struct) (models.Identity, error) {
	fields := req.GetFields()

	id := fields["id"].GetStringValue()
	if id == "" {
		return models.Identity{}, status.Error(codes.InvalidArgument, "id is required")
	}

	var roles []string
	for _, v := range fields["roles"].GetListValue().GetValues() {
		r, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return models.Identity{}, status.Error(codes.InvalidArgument, "roles must be strings")
		}
		roles = append(roles, r.StringValue)
	}

	return models.Identity{ID: id, Roles: roles, Email: fields["email"].GetStringValue()}, nil
}

func identityMap(identity *models.Identity) map[string]any {
	return map[string]any{
		"id":    identity.ID,
		"roles": stringList(identity.Roles),
		"email": identity.Email,
	}
}

func pairStruct(pair *services.TokenPair, identity *models.Identity) (*structpb.Struct, error) {
	m := map[string]any{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}
	if identity != nil {
		m["user"] = identityMap(identity)
	}
	return toStruct(m)
}

func claimsStruct(claims *auth.Claims, withActive bool) (*structpb.Struct, error) {
	m := map[string]any{
		"sub":   claims.Subject,
		"roles": stringList(claims.Roles),
		"email": claims.Email,
	}
	if claims.ExpiresAt != nil {
		m["exp"] = claims.ExpiresAt.Unix()
	}
	if withActive {
		m["active"] = true
	}
	return toStruct(m)
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return st, nil
}

// stringList converts to the []any shape structpb accepts.
func stringList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
