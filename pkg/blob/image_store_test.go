package blob

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/easel-ai/easel/pkg/canvas"
	"github.com/easel-ai/easel/pkg/store"
)

func newTestImageStore(t *testing.T) *ImageStore {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "easel.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewImageStore(s.DB())
}

const pngDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg=="

func TestStoreAndGet(t *testing.T) {
	images := newTestImageStore(t)
	ctx := context.Background()

	id, err := images.Store(ctx, pngDataURI, canvas.SourceUploaded, nil)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !strings.HasPrefix(id, "img_") {
		t.Errorf("id %q should carry the img_ prefix", id)
	}

	payload, ok, err := images.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || payload != pngDataURI {
		t.Errorf("round-trip mismatch: ok=%v payload=%q", ok, payload)
	}

	_, ok, err = images.Get(ctx, "img_unknown")
	if err != nil {
		t.Fatalf("Get unknown: %v", err)
	}
	if ok {
		t.Errorf("unknown id reported as found")
	}
}

func TestGetMetadata(t *testing.T) {
	images := newTestImageStore(t)
	ctx := context.Background()

	id, err := images.Store(ctx, pngDataURI, canvas.SourceGenerated, &Metadata{
		Width:  1024,
		Height: 1024,
		Tags:   []string{"generated", "gpt-image-1"},
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	meta, err := images.GetMetadata(ctx, id)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if meta == nil {
		t.Fatalf("expected metadata for %s", id)
	}
	if meta.MimeType != "image/png" || meta.Width != 1024 || meta.Source != canvas.SourceGenerated {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if len(meta.Tags) != 2 || meta.Tags[0] != "generated" {
		t.Errorf("tags mismatch: %v", meta.Tags)
	}
	if meta.Size <= 0 {
		t.Errorf("size should be approximated from payload length, got %d", meta.Size)
	}

	if err := images.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	meta, err = images.GetMetadata(ctx, id)
	if err != nil {
		t.Fatalf("GetMetadata after delete: %v", err)
	}
	if meta != nil {
		t.Errorf("deleted id should yield nil metadata, got %+v", meta)
	}
}

func TestDeleteUnknownIsNoOp(t *testing.T) {
	images := newTestImageStore(t)
	if err := images.Delete(context.Background(), "img_missing"); err != nil {
		t.Fatalf("deleting an unknown id should not error: %v", err)
	}
}

func TestCleanupOrphans(t *testing.T) {
	images := newTestImageStore(t)
	ctx := context.Background()

	live, err := images.Store(ctx, pngDataURI, canvas.SourceUploaded, nil)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	orphan1, err := images.Store(ctx, pngDataURI, canvas.SourceGenerated, nil)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	orphan2, err := images.Store(ctx, pngDataURI, canvas.SourceGenerated, nil)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	deleted, err := images.CleanupOrphans(ctx, []string{live})
	if err != nil {
		t.Fatalf("CleanupOrphans: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted %d, want 2", deleted)
	}

	if _, ok, _ := images.Get(ctx, live); !ok {
		t.Errorf("live image %s was deleted", live)
	}
	for _, id := range []string{orphan1, orphan2} {
		if _, ok, _ := images.Get(ctx, id); ok {
			t.Errorf("orphan %s survived cleanup", id)
		}
	}
}

func TestSniffMimeType(t *testing.T) {
	cases := []struct {
		payload string
		want    string
	}{
		{"data:image/jpeg;base64,/9j/4AAQ", "image/jpeg"},
		{"data:image/webp,UklGRg", "image/webp"},
		{"iVBORw0KGgoAAAANSUhEUg==", "image/png"},
		{"/9j/4AAQSkZJRg==", "image/jpeg"},
		{"R0lGODlhAQABAIAAAP==", "image/gif"},
		{"UklGRiQAAABXRUJQ", "image/webp"},
		{"someopaquestring", "image/png"},
	}
	for _, c := range cases {
		if got := SniffMimeType(c.payload); got != c.want {
			t.Errorf("SniffMimeType(%q) = %q, want %q", c.payload, got, c.want)
		}
	}
}
