// Package repomanager selects and owns the refresh-token storage backend.
// A manager vends a store bound to its connection, runs units of work inside
// the backend's transaction boundary, and is closed by the process on exit.
package repomanager

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
)

// Backend names accepted by the configuration.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type RepositoryManager interface {
	refreshtokens.Transactor

	// RefreshTokens returns a store bound to the manager's connection,
	// outside any transaction.
	RefreshTokens() refreshtokens.Repository

	// RunMigrations prepares the backend schema. It is a no-op for backends
	// without one.
	RunMigrations(ctx context.Context) error

	Close() error
}

// Options carries the connection settings of every backend; only the fields
// of the selected one are read.
type Options struct {
	Backend        string
	DatabaseDSN    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
	RedisRetention time.Duration
}

// New opens the backend named by opts.Backend.
func New(ctx context.Context, opts Options) (RepositoryManager, error) {
	switch opts.Backend {
	case BackendPostgres:
		m, err := OpenPostgres(ctx, opts.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return m, nil
	case BackendRedis:
		m, err := OpenRedis(ctx, opts)
		if err != nil {
			return nil, err
		}
		return m, nil
	case BackendMemory:
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", common.ErrInvalidConfig, opts.Backend)
	}
}
