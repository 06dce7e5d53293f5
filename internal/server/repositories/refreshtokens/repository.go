// Package refreshtokens declares the server-side repository contract for
// persisted refresh-token records and provides PostgreSQL, Redis and
// in-memory implementations.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository defines operations for issuing, looking up and revoking refresh
// token records. Every method is atomic with respect to concurrent callers
// on the same record.
type Repository interface {
	// Create stores a new active record. It returns common.ErrDuplicateID if
	// a record with the same ID already exists.
	Create(ctx context.Context, token *models.RefreshToken) error

	// FindActiveByToken returns the record for the literal token string if it
	// has not been revoked. Absent and revoked records both yield
	// common.ErrorNotFound. Expiry is not checked here.
	FindActiveByToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// RevokeByToken marks any active record for token as revoked at the given
	// time. Revoking a revoked or unknown token is not an error.
	RevokeByToken(ctx context.Context, token string, at time.Time) error

	// RevokeByID marks the record as revoked at the given time. The result
	// reports whether this call performed the transition; false means the
	// record was already revoked or does not exist.
	RevokeByID(ctx context.Context, id string, at time.Time) (bool, error)
}

// TxFunc is run by a Transactor against a transactional view of the store.
type TxFunc func(ctx context.Context, repo Repository) error

// Transactor runs a unit of work so that either all of its writes become
// visible or none do.
type Transactor interface {
	WithTx(ctx context.Context, fn TxFunc) error
}
