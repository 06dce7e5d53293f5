// Package client is the gRPC client of the gophauth token service.
//
// GRPCClient keeps the current access/refresh pair as a session. An
// interceptor attaches the access token to protected calls and, when the
// server rejects it, rotates the refresh token once and retries.
//
// Status codes are mapped to sentinel errors callers can match with
// errors.Is: ErrUnauthorized, ErrUnavailable and ErrNoSession.
package client
