package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// parseFlags overlays -a and -t. Bad values panic.
func parseFlags(cfg *Config) {
	args := flagx.Pick(os.Args[1:], "a", "t")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the token server")
	timeout := timex.Duration{Duration: cfg.RequestTimeout}
	fs.Var(&timeout, "t", "per-request timeout, e.g. 5s")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = timeout.Duration
}
