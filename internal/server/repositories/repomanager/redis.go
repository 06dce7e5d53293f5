package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/redis/go-redis/v9"
)

// RedisRepositoryManager serves the Redis-backed store.
type RedisRepositoryManager struct {
	repo *refreshtokens.RedisRepository
}

// NewRedisRepositoryManager wraps an existing client.
func NewRedisRepositoryManager(client *redis.Client, opts Options) *RedisRepositoryManager {
	return &RedisRepositoryManager{
		repo: refreshtokens.NewRedisRepository(client, opts.RedisKeyPrefix, opts.RedisRetention),
	}
}

// OpenRedis connects to opts.RedisAddr and checks connectivity.
func OpenRedis(ctx context.Context, opts Options) (*RedisRepositoryManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisRepositoryManager(client, opts), nil
}

func (m *RedisRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.repo
}

func (m *RedisRepositoryManager) WithTx(ctx context.Context, fn refreshtokens.TxFunc) error {
	return m.repo.WithTx(ctx, fn)
}

func (m *RedisRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *RedisRepositoryManager) Close() error {
	return m.repo.Close()
}
