package service

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist remembers revoked token IDs until they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NewTokenDenylist returns a Redis-backed denylist, or an in-process one
// when client is nil.
func NewTokenDenylist(client *redis.Client) TokenDenylist {
	if client == nil {
		return NewMemoryDenylist()
	}
	return &RedisDenylist{client: client, prefix: "auth:revoked"}
}

type RedisDenylist struct {
	client *redis.Client
	prefix string
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return d.client.Set(ctx, d.prefix+":"+jti, 1, ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+":"+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryDenylist is a single-process denylist.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{entries: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, exp := range d.entries {
		if !exp.After(now) {
			delete(d.entries, id)
		}
	}
	d.entries[jti] = now.Add(ttl)
	return nil
}

func (d *MemoryDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.entries[jti]
	return ok && exp.After(d.now()), nil
}
