package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCredentialStore(t *testing.T) (*CredentialStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCredentialStore(client), mr
}

func TestCredentialRoundTrip(t *testing.T) {
	store, _ := newTestCredentialStore(t)
	ctx := context.Background()

	key, err := store.Credential(ctx, "openai")
	if err != nil {
		t.Fatalf("Credential: %v", err)
	}
	if key != "" {
		t.Errorf("missing credential should be empty, got %q", key)
	}

	if err := store.SetCredential(ctx, "openai", "sk-live"); err != nil {
		t.Fatalf("SetCredential: %v", err)
	}
	key, err = store.Credential(ctx, "openai")
	if err != nil {
		t.Fatalf("Credential: %v", err)
	}
	if key != "sk-live" {
		t.Errorf("got %q, want sk-live", key)
	}

	if err := store.DeleteCredential(ctx, "openai"); err != nil {
		t.Fatalf("DeleteCredential: %v", err)
	}
	key, err = store.Credential(ctx, "openai")
	if err != nil {
		t.Fatalf("Credential: %v", err)
	}
	if key != "" {
		t.Errorf("deleted credential still present: %q", key)
	}
}

func TestCredentialKeyNamespace(t *testing.T) {
	store, mr := newTestCredentialStore(t)
	ctx := context.Background()

	if err := store.SetCredential(ctx, "gemini", "g-key"); err != nil {
		t.Fatalf("SetCredential: %v", err)
	}
	got, err := mr.Get("easel:credential:gemini")
	if err != nil {
		t.Fatalf("key not written under the expected namespace: %v", err)
	}
	if got != "g-key" {
		t.Errorf("stored value = %q", got)
	}
}
