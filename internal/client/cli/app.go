package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
)

// TokenClient is the client surface the shell drives; *client.GRPCClient
// implements it.
type TokenClient interface {
	Issue(ctx context.Context, issuerKey string, identity client.Identity) error
	Refresh(ctx context.Context) (*client.Identity, error)
	Logout(ctx context.Context) error
	Introspect(ctx context.Context, token string) (*client.Claims, error)
	Whoami(ctx context.Context) (*client.Claims, error)
	Tokens() (access, refresh string)
	SetTokens(access, refresh string)
	Close() error
}

type App struct {
	config *config.Config
	client TokenClient
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewTokenClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, tc TokenClient, in io.Reader, out io.Writer) *App {
	return &App{config: c, client: tc, reader: bufio.NewReader(in), out: out}
}

// Run starts the shell on the app's input and closes the connection when
// the user leaves.
func (a *App) Run(ctx context.Context) error {
	defer a.client.Close()
	runREPL(ctx, a, a.reader, a.out)
	return nil
}

func (a *App) hasSession() bool {
	_, refresh := a.client.Tokens()
	return refresh != ""
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
