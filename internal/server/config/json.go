package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// RedisRetention uses timex.Duration, which accepts TTL strings ("30d"), Go
// duration strings and integer nanoseconds. Token TTLs stay strings and are
// checked by Config.Validate.
//
// Only keys present in the file override the current values.
type JsonConfig struct {
	EndpointAddrGRPC   *string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP   *string         `json:"endpoint_addr_http"`
	StoreBackend       *string         `json:"store_backend"`
	DatabaseDSN        *string         `json:"database_dsn"`
	RedisAddr          *string         `json:"redis_addr"`
	RedisPassword      *string         `json:"redis_password"`
	RedisDB            *int            `json:"redis_db"`
	RedisKeyPrefix     *string         `json:"redis_key_prefix"`
	RedisRetention     *timex.Duration `json:"redis_retention"`
	AccessTokenSecret  *string         `json:"access_token_secret"`
	RefreshTokenSecret *string         `json:"refresh_token_secret"`
	AccessTokenTTL     *string         `json:"access_token_ttl"`
	RefreshTokenTTL    *string         `json:"refresh_token_ttl"`
	IssuerKey          *string         `json:"issuer_key"`
	LogLevel           *string         `json:"log_level"`
	LogFormat          *string         `json:"log_format"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag, or by $CONFIG, into config. Without either nothing is loaded. An unreadable
// file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.StoreBackend, c.StoreBackend)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.RedisAddr, c.RedisAddr)
	overlay(&config.RedisPassword, c.RedisPassword)
	overlay(&config.RedisDB, c.RedisDB)
	overlay(&config.RedisKeyPrefix, c.RedisKeyPrefix)
	if c.RedisRetention != nil {
		config.RedisRetention = c.RedisRetention.Duration
	}
	overlay(&config.AccessTokenSecret, c.AccessTokenSecret)
	overlay(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	overlay(&config.AccessTokenTTL, c.AccessTokenTTL)
	overlay(&config.RefreshTokenTTL, c.RefreshTokenTTL)
	overlay(&config.IssuerKey, c.IssuerKey)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.LogFormat, c.LogFormat)
}

func overlay[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
