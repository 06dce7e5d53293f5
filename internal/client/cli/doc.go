// Package cli is an interactive shell over the token service: it can issue
// a pair with the issuer key, refresh, log out, and inspect access tokens.
package cli
