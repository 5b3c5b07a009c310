// Package blob stores binary image payloads (as encoded strings)
// separately from the node graph, keyed by generated IDs.
package blob

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/easel-ai/easel/pkg/canvas"
)

// ImageStore persists image payloads in the shared SQLite database.
// It has no knowledge of the node graph; orphan cleanup relies on the
// caller supplying the complete live-reference set.
type ImageStore struct {
	db *sql.DB
}

// NewImageStore wraps the database handle owned by the graph store.
func NewImageStore(db *sql.DB) *ImageStore {
	return &ImageStore{db: db}
}

// Store persists a payload and returns a fresh, collision-free ID.
// MIME type is derived from the payload header and size approximated
// from the encoded length.
func (s *ImageStore) Store(ctx context.Context, payload string, source canvas.ImageSource, meta *Metadata) (string, error) {
	id := "img_" + uuid.NewString()
	mime := SniffMimeType(payload)
	size := approxSize(payload)

	var width, height int
	var tags []string
	if meta != nil {
		width = meta.Width
		height = meta.Height
		tags = meta.Tags
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO images (id, image_data, mime_type, size, created_at, width, height, source, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, payload, mime, size, time.Now().UTC(), width, height, string(source), string(tagsJSON))
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return id, nil
}

// Get returns the payload for an ID. Unknown IDs yield ok == false,
// never an error.
func (s *ImageStore) Get(ctx context.Context, id string) (string, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT image_data FROM images WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get image %s: %w", id, err)
	}
	return payload, true, nil
}

// GetMetadata returns the full row for an ID, or nil for unknown IDs.
func (s *ImageStore) GetMetadata(ctx context.Context, id string) (*StoredImage, error) {
	var (
		img  StoredImage
		src  string
		tags string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, image_data, mime_type, size, created_at, COALESCE(width, 0), COALESCE(height, 0), source, COALESCE(tags, '[]')
		FROM images WHERE id = ?
	`, id).Scan(&img.ID, &img.ImageData, &img.MimeType, &img.Size, &img.CreatedAt, &img.Width, &img.Height, &src, &tags)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get image metadata %s: %w", id, err)
	}
	img.Source = canvas.ImageSource(src)
	if err := json.Unmarshal([]byte(tags), &img.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags for %s: %w", id, err)
	}
	return &img, nil
}

// Delete removes a payload. Deleting an unknown ID is a no-op.
func (s *ImageStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete image %s: %w", id, err)
	}
	return nil
}

// CleanupOrphans deletes every stored image whose ID is not in live and
// returns how many rows were removed. It is invoked explicitly, never
// on a timer.
func (s *ImageStore) CleanupOrphans(ctx context.Context, live []string) (int, error) {
	keep := make(map[string]bool, len(live))
	for _, id := range live {
		keep[id] = true
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM images`)
	if err != nil {
		return 0, fmt.Errorf("failed to list images: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan image id: %w", err)
		}
		if !keep[id] {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	deleted := 0
	for _, id := range stale {
		if err := s.Delete(ctx, id); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// SniffMimeType derives the MIME type from a data-URI header or, for
// bare base64 payloads, from well-known magic-byte prefixes.
func SniffMimeType(payload string) string {
	if strings.HasPrefix(payload, "data:") {
		rest := payload[len("data:"):]
		if i := strings.IndexAny(rest, ";,"); i > 0 {
			return rest[:i]
		}
	}
	switch {
	case strings.HasPrefix(payload, "iVBORw0KGgo"):
		return "image/png"
	case strings.HasPrefix(payload, "/9j/"):
		return "image/jpeg"
	case strings.HasPrefix(payload, "R0lGOD"):
		return "image/gif"
	case strings.HasPrefix(payload, "UklGR"):
		return "image/webp"
	}
	return "image/png"
}

// approxSize estimates decoded byte size from the encoded length.
func approxSize(payload string) int64 {
	data := payload
	if i := strings.Index(data, ","); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+1:]
	}
	return int64(len(data)) * 3 / 4
}
