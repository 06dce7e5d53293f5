package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new record. An id collision leaves the transaction usable
// (ON CONFLICT DO NOTHING) so the caller may retry with a fresh id.
func (r *PostgresRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	n, err := dbx.Affected(r.db.ExecContext(ctx, query, token.ID, token.UserID, token.Token, token.ExpiresAt, token.CreatedAt))
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	if n == 0 {
		return common.ErrDuplicateID
	}
	return nil
}

// FindActiveByToken returns the non-revoked record for token. Inside a
// transaction the row stays locked until commit, so a concurrent rotation of
// the same token waits and then sees it revoked.
func (r *PostgresRepository) FindActiveByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, revoked_at, created_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
		FOR UPDATE
	`
	var (
		rt        models.RefreshToken
		revokedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, token).Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &revokedAt, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if revokedAt.Valid {
		rt.RevokedAt = &revokedAt.Time
	}
	return &rt, nil
}

// RevokeByToken sets revoked_at on the active record for token, if any.
func (r *PostgresRepository) RevokeByToken(ctx context.Context, token string, at time.Time) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE token = $1 AND revoked_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, token, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RevokeByID conditionally revokes by id; the affected-row count tells the
// caller whether it won the transition.
func (r *PostgresRepository) RevokeByID(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`
	n, err := dbx.Affected(r.db.ExecContext(ctx, query, id, at))
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
