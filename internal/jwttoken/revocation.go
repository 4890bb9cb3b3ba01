package jwttoken

import (
	"context"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "trl:jti:"

// RevocationList tracks revoked token IDs until their natural expiry.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevocationList shares revocation state across instances. Key existence
// is the marker; expiry matches the token lifetime.
type RedisRevocationList struct {
	client *goredis.Client
}

func NewRedisRevocationList(client *goredis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

func (l *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	return l.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, err := l.client.Get(ctx, revokedKeyPrefix+jti).Result()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InMemoryRevocationList backs single-instance runs and tests.
type InMemoryRevocationList struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{revoked: make(map[string]time.Time)}
}

func (l *InMemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (l *InMemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	expiry, ok := l.revoked[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(l.revoked, jti)
		return false, nil
	}
	return true, nil
}
