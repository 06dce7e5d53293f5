package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
)

// execIface is the command surface the shell dispatches to.
type execIface interface {
	hasSession() bool
	Issue(ctx context.Context) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	Introspect(ctx context.Context, token string) error
	Whoami(ctx context.Context) error
	Use(access, refresh string)
	ShowTokens()
}

// runREPL reads commands line by line until EOF, "exit" or "quit".
//
//	issue                      mint a pair (prompts for identity and issuer key)
//	refresh                    rotate the refresh token
//	logout                     revoke the refresh token
//	introspect [access_token]  show claims
//	whoami                     show claims of the session access token
//	use <access> <refresh>     adopt an existing pair
//	tokens                     print the session pair
//
// Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader, out io.Writer) {
	fmt.Fprintln(out, "gophauth token shell (type 'help' for commands)")

	for {
		status := ""
		if a.hasSession() {
			status = "(session) "
		}
		fmt.Fprintf(out, "gophauth %s> ", status)

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			fmt.Fprintln(out, "Available commands: issue, refresh, logout, introspect [token], whoami, use <access> <refresh>, tokens, exit")
		case "issue":
			cmdErr = a.Issue(ctx)
		case "refresh":
			cmdErr = a.Refresh(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "introspect":
			token := ""
			if len(args) > 0 {
				token = args[0]
			}
			cmdErr = a.Introspect(ctx, token)
		case "whoami":
			cmdErr = a.Whoami(ctx)
		case "use":
			if len(args) != 2 {
				fmt.Fprintln(out, "Usage: use <access_token> <refresh_token>")
				continue
			}
			a.Use(args[0], args[1])
		case "tokens":
			a.ShowTokens()
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(out, "Error:", describe(cmdErr))
		}
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return err.Error() + " (log in again)"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	default:
		return err.Error()
	}
}
