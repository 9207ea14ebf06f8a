package repository

import (
	"context"
	"errors"
	"time"

	"accounts-web-server/config"
	"accounts-web-server/internal/util"

	"github.com/redis/go-redis/v9"
)

// RevocationCacheRepository : Redis-слой реестра отозванных refresh-токенов.
// Источник истины — таблица refresh_tokens, кэш нужен, чтобы не ходить в БД
// за каждым предъявленным токеном. TTL ключа равен остатку жизни токена,
// после естественного истечения запись не нужна.
type RevocationCacheRepository struct {
	client *config.RedisClient
}

func NewRevocationCacheRepository(rdb *config.RedisClient) *RevocationCacheRepository {
	return &RevocationCacheRepository{rdb}
}

func (r *RevocationCacheRepository) key(jti string) string {
	return "revoked:" + jti
}

// MarkRevoked помечает jti отозванным на ttl
func (r *RevocationCacheRepository) MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // токен уже истёк, кэшировать нечего
	}

	cmd := r.client.Client.Set(ctx, r.key(jti), "1", ttl)
	if err := cmd.Err(); err != nil {
		return util.LogError("ошибка сохранения в Redis", err)
	}

	return nil
}

// IsRevoked отвечает, отозван ли jti. Отсутствие ключа означает
// "в кэше не значится", окончательное слово за БД.
func (r *RevocationCacheRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Client.Get(ctx, r.key(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, util.LogError("ошибка чтения из Redis", err)
	}

	return true, nil
}
