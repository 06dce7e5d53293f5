package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/gophauth/internal/timex"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envConfig mirrors the variables read from the process environment.
// Unset variables leave the current value untouched.
type envConfig struct {
	EndpointAddrGRPC   string          `envconfig:"GRPC_ADDR"`
	EndpointAddrHTTP   string          `envconfig:"HTTP_ADDR"`
	StoreBackend       string          `envconfig:"STORE_BACKEND"`
	DatabaseDSN        string          `envconfig:"DATABASE_URL"`
	RedisAddr          string          `envconfig:"REDIS_ADDR"`
	RedisPassword      string          `envconfig:"REDIS_PASSWORD"`
	RedisDB            *int            `envconfig:"REDIS_DB"`
	RedisKeyPrefix     string          `envconfig:"REDIS_KEY_PREFIX"`
	RedisRetention     string          `envconfig:"REDIS_RETENTION"`
	AccessTokenSecret  string          `envconfig:"JWT_ACCESS_SECRET"`
	RefreshTokenSecret string          `envconfig:"JWT_REFRESH_SECRET"`
	AccessTokenTTL     string          `envconfig:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL    string          `envconfig:"REFRESH_TOKEN_TTL"`
	IssuerKey          string          `envconfig:"ISSUER_KEY"`
	LogLevel           string          `envconfig:"LOG_LEVEL"`
	LogFormat          string          `envconfig:"LOG_FORMAT"`
}

// dotenvFile is loaded into the environment when present. Variables that
// are already set win over the file.
var dotenvFile = ".env"

// parseEnv overlays config with values from the .env file and environment.
func parseEnv(config *Config) error {
	if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", dotenvFile, err)
	}

	var e envConfig
	if err := envconfig.Process("", &e); err != nil {
		return fmt.Errorf("failed to process config from environment: %w", err)
	}

	setString(&config.EndpointAddrGRPC, e.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, e.EndpointAddrHTTP)
	setString(&config.StoreBackend, e.StoreBackend)
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setString(&config.RedisAddr, e.RedisAddr)
	setString(&config.RedisPassword, e.RedisPassword)
	if e.RedisDB != nil {
		config.RedisDB = *e.RedisDB
	}
	setString(&config.RedisKeyPrefix, e.RedisKeyPrefix)
	if e.RedisRetention != "" {
		var d timex.Duration
		if err := d.Decode(e.RedisRetention); err != nil {
			return fmt.Errorf("REDIS_RETENTION: %w", err)
		}
		config.RedisRetention = d.Duration
	}
	setString(&config.AccessTokenSecret, e.AccessTokenSecret)
	setString(&config.RefreshTokenSecret, e.RefreshTokenSecret)
	setString(&config.AccessTokenTTL, e.AccessTokenTTL)
	setString(&config.RefreshTokenTTL, e.RefreshTokenTTL)
	setString(&config.IssuerKey, e.IssuerKey)
	setString(&config.LogLevel, e.LogLevel)
	setString(&config.LogFormat, e.LogFormat)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
