package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-w string   HTTP bind address (e.g., ":8080")
//	-b string   store backend: postgres, redis or memory
//	-d string   PostgreSQL DSN
//	-r string   Redis address
//	-s string   access token HMAC secret
//	-q string   refresh token HMAC secret
//	-t string   access token TTL (e.g., "15m")
//	-x string   refresh token TTL (e.g., "7d")
//	-k string   issuer key
//	-l string   log level
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.Pick, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.Pick(os.Args[1:], "a", "w", "b", "d", "r", "s", "q", "t", "x", "k", "l")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port to run server")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.StoreBackend, "b", config.StoreBackend, "refresh token store backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.RefreshTokenSecret, "q", config.RefreshTokenSecret, "refresh token secret")
	fs.StringVar(&config.AccessTokenTTL, "t", config.AccessTokenTTL, "access token ttl")
	fs.StringVar(&config.RefreshTokenTTL, "x", config.RefreshTokenTTL, "refresh token ttl")
	fs.StringVar(&config.IssuerKey, "k", config.IssuerKey, "issuer key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
