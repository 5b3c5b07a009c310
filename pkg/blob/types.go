package blob

import (
	"time"

	"github.com/easel-ai/easel/pkg/canvas"
)

// StoredImage is one blob-store row: the encoded payload plus the
// metadata needed to render and attribute it. Rows are immutable after
// creation except for deletion; IDs are never reused.
type StoredImage struct {
	ID        string             `json:"id"`
	ImageData string             `json:"image_data"`
	MimeType  string             `json:"mime_type"`
	Size      int64              `json:"size"`
	CreatedAt time.Time          `json:"created_at"`
	Width     int                `json:"width,omitempty"`
	Height    int                `json:"height,omitempty"`
	Source    canvas.ImageSource `json:"source"`
	Tags      []string           `json:"tags,omitempty"`
}

// Metadata carries the optional fields a caller may know at store time.
type Metadata struct {
	Width  int
	Height int
	Tags   []string
}
