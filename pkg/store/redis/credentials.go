// Package redis provides a Redis-backed credential store for
// deployments where several easel daemons share one key set. The
// SQLite store remains the default for single-machine use.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "easel:credential:"

// CredentialStore keeps provider API keys in Redis.
type CredentialStore struct {
	client *redis.Client
}

// NewCredentialStore wraps an existing Redis client.
func NewCredentialStore(client *redis.Client) *CredentialStore {
	return &CredentialStore{client: client}
}

func makeKey(provider string) string {
	return keyPrefix + provider
}

// Credential returns the stored API key for a provider, or "" when no
// key is set. A missing key is a normal condition, not an error.
func (s *CredentialStore) Credential(ctx context.Context, provider string) (string, error) {
	val, err := s.client.Get(ctx, makeKey(provider)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get credential for %s: %w", provider, err)
	}
	return val, nil
}

// SetCredential stores a provider API key.
func (s *CredentialStore) SetCredential(ctx context.Context, provider, apiKey string) error {
	if err := s.client.Set(ctx, makeKey(provider), apiKey, 0).Err(); err != nil {
		return fmt.Errorf("failed to set credential for %s: %w", provider, err)
	}
	return nil
}

// DeleteCredential removes a provider API key.
func (s *CredentialStore) DeleteCredential(ctx context.Context, provider string) error {
	if err := s.client.Del(ctx, makeKey(provider)).Err(); err != nil {
		return fmt.Errorf("failed to delete credential for %s: %w", provider, err)
	}
	return nil
}
