package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
)

// getSimpleText and getSecret are swapped in tests.
var (
	getSimpleText = GetSimpleText
	getSecret     = GetSecret
)

// Issue prompts for an identity and the issuer key and starts a session.
func (a *App) Issue(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "User id", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	roles, err := getSimpleText(a.reader, "Roles (comma separated)", a.out)
	if err != nil {
		return err
	}
	key, err := getSecret("Issuer key", a.out)
	if err != nil {
		return err
	}
	defer wipe(key)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	identity := client.Identity{ID: id, Roles: splitList(roles), Email: email}
	if err := a.client.Issue(ctx, string(key), identity); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Session started for", id)
	return nil
}

// Refresh rotates the session's refresh token.
func (a *App) Refresh(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	identity, err := a.client.Refresh(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Refreshed: %s %v %s\n", identity.ID, identity.Roles, identity.Email)
	return nil
}

// Logout revokes the session's refresh token.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Introspect shows the claims of token, or of the session access token.
func (a *App) Introspect(ctx context.Context, token string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	claims, err := a.client.Introspect(ctx, token)
	if err != nil {
		return err
	}
	a.printClaims(claims)
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	claims, err := a.client.Whoami(ctx)
	if err != nil {
		return err
	}
	a.printClaims(claims)
	return nil
}

// Use adopts a pair obtained elsewhere, e.g. from a login response.
func (a *App) Use(access, refresh string) {
	a.client.SetTokens(access, refresh)
	fmt.Fprintln(a.out, "Session tokens set")
}

// ShowTokens prints the raw session pair.
func (a *App) ShowTokens() {
	access, refresh := a.client.Tokens()
	fmt.Fprintln(a.out, "access: ", orNone(access))
	fmt.Fprintln(a.out, "refresh:", orNone(refresh))
}

func (a *App) printClaims(c *client.Claims) {
	if !c.Active {
		fmt.Fprintln(a.out, "active: false")
		return
	}
	fmt.Fprintln(a.out, "active: true")
	fmt.Fprintln(a.out, "sub:   ", c.Subject)
	fmt.Fprintln(a.out, "roles: ", strings.Join(c.Roles, ","))
	fmt.Fprintln(a.out, "email: ", c.Email)
	if c.ExpiresAt > 0 {
		fmt.Fprintln(a.out, "exp:   ", time.Unix(c.ExpiresAt, 0).UTC().Format(time.RFC3339))
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
