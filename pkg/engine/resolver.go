package engine

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/easel-ai/easel/pkg/blob"
	"github.com/easel-ai/easel/pkg/canvas"
)

// maxFetchBytes caps remote image downloads.
const maxFetchBytes = 20 << 20

// resolvedImage is a source or mask image ready for provider dispatch:
// an inline payload plus, when the image already lives in the blob
// store, its existing ID.
type resolvedImage struct {
	payload string
	blobID  string
}

// resolver turns heterogeneous image references (blob IDs, data URIs,
// remote URLs) into inline payloads. Providers expect embedded data,
// not arbitrary third-party URLs.
type resolver struct {
	images *blob.ImageStore
	client *http.Client
}

// resolveAll resolves every reference it can. Unresolvable entries are
// dropped with a warning rather than failing the batch: one bad
// reference must not abort the whole generation.
func (r *resolver) resolveAll(ctx context.Context, refs []canvas.ImageRef) []resolvedImage {
	out := make([]resolvedImage, 0, len(refs))
	for _, ref := range refs {
		img, err := r.resolve(ctx, ref)
		if err != nil {
			log.Printf("engine: dropping unresolvable image reference %.40q: %v", string(ref), err)
			continue
		}
		out = append(out, img)
	}
	return out
}

func (r *resolver) resolve(ctx context.Context, ref canvas.ImageRef) (resolvedImage, error) {
	switch {
	case ref.IsBlobID():
		payload, ok, err := r.images.Get(ctx, string(ref))
		if err != nil {
			return resolvedImage{}, err
		}
		if !ok {
			return resolvedImage{}, fmt.Errorf("blob %s not found", ref)
		}
		return resolvedImage{payload: payload, blobID: string(ref)}, nil

	case ref.IsRemoteURL():
		payload, err := r.fetch(ctx, string(ref))
		if err != nil {
			return resolvedImage{}, err
		}
		return resolvedImage{payload: payload}, nil

	default:
		// Inline data URI or bare base64: pass through unchanged.
		return resolvedImage{payload: string(ref)}, nil
	}
}

// fetch downloads a remote image and converts it to a data URI.
func (r *resolver) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}
