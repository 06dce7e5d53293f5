package refreshtokens

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// MemoryRepository keeps records in process memory. It is safe for
// concurrent use and intended for tests and single-instance deployments.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*models.RefreshToken
	byToken map[string]string
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.RefreshToken),
		byToken: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (&memoryView{r: r}).Create(ctx, token)
}

func (r *MemoryRepository) FindActiveByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (&memoryView{r: r}).FindActiveByToken(ctx, token)
}

func (r *MemoryRepository) RevokeByToken(ctx context.Context, token string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (&memoryView{r: r}).RevokeByToken(ctx, token, at)
}

func (r *MemoryRepository) RevokeByID(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (&memoryView{r: r}).RevokeByID(ctx, id, at)
}

// FindByID returns the record for id whatever its state. It exists for
// audits and tests; the service never reads revoked records.
func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneRecord(rt), nil
}

// Len returns the number of stored records.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// WithTx runs fn while holding the store lock. Writes are applied directly
// and undone if fn fails, panics, or ctx is done by the time fn returns.
func (r *MemoryRepository) WithTx(ctx context.Context, fn TxFunc) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := &memoryView{r: r}
	defer func() {
		if p := recover(); p != nil {
			v.rollback()
			panic(p)
		}
		if err != nil {
			v.rollback()
		}
	}()

	if err = fn(ctx, v); err != nil {
		return err
	}
	return ctx.Err()
}

// memoryView implements Repository on the maps of r. The caller holds r.mu.
type memoryView struct {
	r    *MemoryRepository
	undo []func()
}

func (v *memoryView) rollback() {
	for i := len(v.undo) - 1; i >= 0; i-- {
		v.undo[i]()
	}
	v.undo = nil
}

func (v *memoryView) Create(ctx context.Context, token *models.RefreshToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := v.r.byID[token.ID]; ok {
		return common.ErrDuplicateID
	}
	if _, ok := v.r.byToken[token.Token]; ok {
		return fmt.Errorf("db error: token already stored")
	}

	rt := cloneRecord(token)
	v.r.byID[rt.ID] = rt
	v.r.byToken[rt.Token] = rt.ID

	v.undo = append(v.undo, func() {
		delete(v.r.byID, rt.ID)
		delete(v.r.byToken, rt.Token)
	})
	return nil
}

func (v *memoryView) FindActiveByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, ok := v.r.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	rt := v.r.byID[id]
	if rt == nil || rt.Revoked() {
		return nil, common.ErrorNotFound
	}
	return cloneRecord(rt), nil
}

func (v *memoryView) RevokeByToken(ctx context.Context, token string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, ok := v.r.byToken[token]
	if !ok {
		return nil
	}
	_, err := v.RevokeByID(ctx, id, at)
	return err
}

func (v *memoryView) RevokeByID(ctx context.Context, id string, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	rt, ok := v.r.byID[id]
	if !ok || rt.Revoked() {
		return false, nil
	}

	revokedAt := at
	rt.RevokedAt = &revokedAt
	v.undo = append(v.undo, func() { rt.RevokedAt = nil })
	return true, nil
}

func cloneRecord(rt *models.RefreshToken) *models.RefreshToken {
	c := *rt
	if rt.RevokedAt != nil {
		at := *rt.RevokedAt
		c.RevokedAt = &at
	}
	return &c
}
