// Package proto declares the gophauth.v1.TokenService gRPC service over the
// protobuf well-known types, so no code generation step is needed. Requests
// and responses are google.protobuf.Struct, StringValue and Empty messages
// carried by the default proto codec.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "gophauth.v1.TokenService"

const (
	TokenService_Issue_FullMethodName      = "/gophauth.v1.TokenService/Issue"
	TokenService_Rotate_FullMethodName     = "/gophauth.v1.TokenService/Rotate"
	TokenService_Revoke_FullMethodName     = "/gophauth.v1.TokenService/Revoke"
	TokenService_Introspect_FullMethodName = "/gophauth.v1.TokenService/Introspect"
	TokenService_Whoami_FullMethodName     = "/gophauth.v1.TokenService/Whoami"
)

// TokenServiceServer is the server API for TokenService.
//
//	Issue(Struct{id, roles, email})             -> Struct{access_token, refresh_token}
//	Rotate(StringValue refresh_token)           -> Struct{access_token, refresh_token, user}
//	Revoke(StringValue refresh_token)           -> Empty
//	Introspect(StringValue access_token)        -> Struct{active, sub, roles, email, exp}
//	Whoami(Empty) with access_token metadata    -> Struct{sub, roles, email, exp}
type TokenServiceServer interface {
	Issue(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Rotate(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Revoke(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Introspect(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Whoami(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// UnimplementedTokenServiceServer can be embedded to have forward compatible
// implementations.
type UnimplementedTokenServiceServer struct{}

func (UnimplementedTokenServiceServer) Issue(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Issue not implemented")
}
func (UnimplementedTokenServiceServer) Rotate(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Rotate not implemented")
}
func (UnimplementedTokenServiceServer) Revoke(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Revoke not implemented")
}
func (UnimplementedTokenServiceServer) Introspect(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Introspect not implemented")
}
func (UnimplementedTokenServiceServer) Whoami(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Whoami not implemented")
}

func RegisterTokenServiceServer(s grpc.ServiceRegistrar, srv TokenServiceServer) {
	s.RegisterService(&TokenService_ServiceDesc, srv)
}

func _TokenService_Issue_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TokenServiceServer).Issue(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TokenService_Issue_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TokenServiceServer).Issue(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _TokenService_Rotate_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TokenServiceServer).Rotate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TokenService_Rotate_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TokenServiceServer).Rotate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _TokenService_Revoke_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TokenServiceServer).Revoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TokenService_Revoke_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TokenServiceServer).Revoke(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _TokenService_Introspect_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TokenServiceServer).Introspect(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TokenService_Introspect_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TokenServiceServer).Introspect(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _TokenService_Whoami_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TokenServiceServer).Whoami(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TokenService_Whoami_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TokenServiceServer).Whoami(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// TokenService_ServiceDesc is the grpc.ServiceDesc for TokenService.
var TokenService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TokenServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Issue", Handler: _TokenService_Issue_Handler},
		{MethodName: "Rotate", Handler: _TokenService_Rotate_Handler},
		{MethodName: "Revoke", Handler: _TokenService_Revoke_Handler},
		{MethodName: "Introspect", Handler: _TokenService_Introspect_Handler},
		{MethodName: "Whoami", Handler: _TokenService_Whoami_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/v1/token.proto",
}

// TokenServiceClient is the client API for TokenService.
type TokenServiceClient interface {
	Issue(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Rotate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Revoke(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Introspect(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Whoami(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type tokenServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTokenServiceClient(cc grpc.ClientConnInterface) TokenServiceClient {
	return &tokenServiceClient{cc}
}

func (c *tokenServiceClient) Issue(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TokenService_Issue_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tokenServiceClient) Rotate(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TokenService_Rotate_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tokenServiceClient) Revoke(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, TokenService_Revoke_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tokenServiceClient) Introspect(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TokenService_Introspect_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tokenServiceClient) Whoami(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TokenService_Whoami_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
