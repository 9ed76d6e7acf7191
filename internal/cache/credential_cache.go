package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// CredentialCache remembers recently accepted credentials. Only a digest of
// the token is stored, never the token itself.
type CredentialCache interface {
	Remember(ctx context.Context, token string, ttl time.Duration) error
	Known(ctx context.Context, token string) (bool, error)
}

type credentialCache struct {
	client *redis.Client
}

// NewCredentialCache creates a Redis-backed credential cache
func NewCredentialCache(client *redis.Client) CredentialCache {
	return &credentialCache{client: client}
}

func (c *credentialCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "cred:" + hex.EncodeToString(sum[:])
}

func (c *credentialCache) Remember(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.key(token), "1", ttl).Err()
}

func (c *credentialCache) Known(ctx context.Context, token string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(token)).Result()
	return n > 0, err
}
