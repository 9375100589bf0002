package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "auth:revoked:"

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func RevokedTokenKey(jti string) string { return revokedTokenPrefix + jti }

// TokenRevocations reads the revocation list kept in redis under auth:revoked:<jti>.
type TokenRevocations struct {
	rdb redis.Cmdable
}

func NewTokenRevocations(rdb redis.Cmdable) *TokenRevocations {
	return &TokenRevocations{rdb: rdb}
}

// IsRevoked reports whether the token id is on the revocation list.
func (t *TokenRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := t.rdb.Exists(ctx, RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke puts jti on the list until ttl elapses.
func (t *TokenRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return t.rdb.Set(ctx, RevokedTokenKey(jti), "1", ttl).Err()
}
