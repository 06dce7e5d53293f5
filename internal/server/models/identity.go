// Package models holds the plain data types shared by the token service,
// its repositories and transports.
package models

// Identity is the subset of a user record the token core needs. It is owned
// by the user directory and never mutated here.
type Identity struct {
	ID    string
	Roles []string
	Email string
}
