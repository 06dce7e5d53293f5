package refreshtokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// Record layout: one hash per rotation id plus a token -> id index keyed by
// the SHA-256 of the token string.
const (
	fieldUserID    = "user_id"
	fieldToken     = "token"
	fieldExpiresAt = "expires_at"
	fieldCreatedAt = "created_at"
	fieldRevokedAt = "revoked_at"
)

const revokeByIDScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
if redis.call("HEXISTS", KEYS[1], "revoked_at") == 1 then
  return 0
end
redis.call("HSET", KEYS[1], "revoked_at", ARGV[1])
return 1
`

var revokeByIDLua = redis.NewScript(revokeByIDScript)

// RedisRepository implements Repository on Redis. Transactions use
// WATCH/MULTI/EXEC: a unit of work aborts with common.ErrConflict when any
// key it read was changed by another client before it committed.
type RedisRepository struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

// NewRedisRepository returns a repository storing keys under prefix. Keys
// expire retention after the record's own expiry; zero keeps them forever.
func NewRedisRepository(client *redis.Client, prefix string, retention time.Duration) *RedisRepository {
	return &RedisRepository{client: client, prefix: prefix, retention: retention}
}

func (r *RedisRepository) idKeyPrefix() string {
	return r.prefix + ":rt:id:"
}

func (r *RedisRepository) idKey(id string) string {
	return r.idKeyPrefix() + id
}

func (r *RedisRepository) tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return r.prefix + ":rt:token:" + hex.EncodeToString(sum[:])
}

func (r *RedisRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.Create(ctx, token)
	})
}

func (r *RedisRepository) FindActiveByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return r.findActive(ctx, r.client, token)
}

// RevokeByToken resolves the rotation id through the token index and then
// revokes by id, so every script touches only keys it declares.
func (r *RedisRepository) RevokeByToken(ctx context.Context, token string, at time.Time) error {
	id, err := r.client.Get(ctx, r.tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	_, err = r.RevokeByID(ctx, id, at)
	return err
}

func (r *RedisRepository) RevokeByID(ctx context.Context, id string, at time.Time) (bool, error) {
	n, err := revokeByIDLua.Run(ctx, r.client, []string{r.idKey(id)}, at.UnixMilli()).Int64()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

// WithTx runs fn against a view whose reads WATCH the keys they touch and
// whose writes are queued and sent in a single MULTI/EXEC at the end.
// Writes queued in the unit of work are not visible to its own reads.
func (r *RedisRepository) WithTx(ctx context.Context, fn TxFunc) error {
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		v := &redisView{r: r, tx: tx, watched: make(map[string]bool), revoked: make(map[string]bool)}
		if err := fn(ctx, v); err != nil {
			return err
		}
		if len(v.ops) == 0 {
			return nil
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, op := range v.ops {
				op(pipe)
			}
			return nil
		})
		return err
	})
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: %w", common.ErrConflict, err)
	}
	return err
}

// Close closes the underlying client.
func (r *RedisRepository) Close() error {
	return r.client.Close()
}

type redisReader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func (r *RedisRepository) findActive(ctx context.Context, rd redisReader, token string) (*models.RefreshToken, error) {
	id, err := rd.Get(ctx, r.tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	rt, err := r.load(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	if rt.Revoked() || rt.Token != token {
		return nil, common.ErrorNotFound
	}
	return rt, nil
}

func (r *RedisRepository) load(ctx context.Context, rd redisReader, id string) (*models.RefreshToken, error) {
	fields, err := rd.HGetAll(ctx, r.idKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(fields) == 0 {
		return nil, common.ErrorNotFound
	}
	return decodeRecord(id, fields)
}

func (r *RedisRepository) expireAt(rt *models.RefreshToken) time.Time {
	if r.retention <= 0 {
		return time.Time{}
	}
	return rt.ExpiresAt.Add(r.retention)
}

func decodeRecord(id string, fields map[string]string) (*models.RefreshToken, error) {
	expiresAt, err := strconv.ParseInt(fields[fieldExpiresAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("db error: corrupt expires_at for %s: %w", id, err)
	}
	createdAt, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("db error: corrupt created_at for %s: %w", id, err)
	}

	rt := &models.RefreshToken{
		ID:        id,
		UserID:    fields[fieldUserID],
		Token:     fields[fieldToken],
		ExpiresAt: time.UnixMilli(expiresAt),
		CreatedAt: time.UnixMilli(createdAt),
	}
	if v, ok := fields[fieldRevokedAt]; ok {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("db error: corrupt revoked_at for %s: %w", id, err)
		}
		at := time.UnixMilli(ms)
		rt.RevokedAt = &at
	}
	return rt, nil
}

// redisView is the Repository handed to a WithTx callback.
type redisView struct {
	r       *RedisRepository
	tx      *redis.Tx
	ops     []func(redis.Pipeliner)
	watched map[string]bool
	revoked map[string]bool
}

// watch adds keys not yet watched in this unit of work. A key is never
// watched twice, so a write landing between two reads still aborts EXEC.
func (v *redisView) watch(ctx context.Context, keys ...string) error {
	fresh := make([]string, 0, len(keys))
	for _, k := range keys {
		if !v.watched[k] {
			fresh = append(fresh, k)
		}
	}
	if len(fresh) == 0 {
		return nil
	}
	if err := v.tx.Watch(ctx, fresh...).Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	for _, k := range fresh {
		v.watched[k] = true
	}
	return nil
}

func (v *redisView) Create(ctx context.Context, token *models.RefreshToken) error {
	idKey, tokenKey := v.r.idKey(token.ID), v.r.tokenKey(token.Token)
	if err := v.watch(ctx, idKey, tokenKey); err != nil {
		return err
	}

	n, err := v.tx.Exists(ctx, idKey).Result()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n > 0 {
		return common.ErrDuplicateID
	}
	n, err = v.tx.Exists(ctx, tokenKey).Result()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("db error: token already stored")
	}

	rt := cloneRecord(token)
	expireAt := v.r.expireAt(rt)
	v.ops = append(v.ops, func(pipe redis.Pipeliner) {
		pipe.HSet(ctx, idKey,
			fieldUserID, rt.UserID,
			fieldToken, rt.Token,
			fieldExpiresAt, rt.ExpiresAt.UnixMilli(),
			fieldCreatedAt, rt.CreatedAt.UnixMilli(),
		)
		pipe.Set(ctx, tokenKey, rt.ID, 0)
		if !expireAt.IsZero() {
			pipe.PExpireAt(ctx, idKey, expireAt)
			pipe.PExpireAt(ctx, tokenKey, expireAt)
		}
	})
	return nil
}

func (v *redisView) FindActiveByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if err := v.watch(ctx, v.r.tokenKey(token)); err != nil {
		return nil, err
	}
	id, err := v.tx.Get(ctx, v.r.tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := v.watch(ctx, v.r.idKey(id)); err != nil {
		return nil, err
	}
	if v.revoked[id] {
		return nil, common.ErrorNotFound
	}
	return v.r.findActive(ctx, v.tx, token)
}

func (v *redisView) RevokeByToken(ctx context.Context, token string, at time.Time) error {
	if err := v.watch(ctx, v.r.tokenKey(token)); err != nil {
		return err
	}
	id, err := v.tx.Get(ctx, v.r.tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("db error: %w", err)
	}
	_, err = v.RevokeByID(ctx, id, at)
	return err
}

func (v *redisView) RevokeByID(ctx context.Context, id string, at time.Time) (bool, error) {
	idKey := v.r.idKey(id)
	if err := v.watch(ctx, idKey); err != nil {
		return false, err
	}
	if v.revoked[id] {
		return false, nil
	}

	rt, err := v.r.load(ctx, v.tx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if rt.Revoked() {
		return false, nil
	}

	v.revoked[id] = true
	v.ops = append(v.ops, func(pipe redis.Pipeliner) {
		pipe.HSet(ctx, idKey, fieldRevokedAt, at.UnixMilli())
	})
	return true, nil
}
