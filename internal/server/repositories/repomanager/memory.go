package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
)

// MemoryRepositoryManager keeps records in process memory. Records do not
// survive a restart.
type MemoryRepositoryManager struct {
	repo *refreshtokens.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{repo: refreshtokens.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.repo
}

// Store exposes the concrete repository for audits and tests.
func (m *MemoryRepositoryManager) Store() *refreshtokens.MemoryRepository {
	return m.repo
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn refreshtokens.TxFunc) error {
	return m.repo.WithTx(ctx, fn)
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
