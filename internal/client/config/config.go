// Package config loads runtime settings for the gophauth token CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file named by -c/-config or $CONFIG:
//
//     {
//     "server_endpoint_addr": "127.0.0.1:50051",
//     "request_timeout": "5s"
//     }
//
//  3. Command-line flags: -a address, -t request timeout ("5s", "2000ms").
package config

import "time"

type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 5 * time.Second
}

// LoadConfig applies defaults, then the JSON file, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
