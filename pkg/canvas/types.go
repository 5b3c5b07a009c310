package canvas

import "strings"

// NodeType represents the kind of a node on the canvas.
type NodeType string

const (
	NodePrompt NodeType = "prompt"
	NodeImage  NodeType = "image"
)

// ImageSource tags where an image node's payload came from.
type ImageSource string

const (
	SourceUploaded  ImageSource = "uploaded"
	SourceUnsplash  ImageSource = "unsplash"
	SourceGenerated ImageSource = "generated"
	SourceEdited    ImageSource = "edited"
)

// Position is a point in canvas coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ImageRef references an image by blob-store ID, inline data URI, or
// remote URL. Blob IDs are resolved to inline payloads before dispatch.
type ImageRef string

// IsBlobID reports whether the ref is a blob-store ID.
func (r ImageRef) IsBlobID() bool { return strings.HasPrefix(string(r), "img_") }

// IsDataURI reports whether the ref carries an inline payload.
func (r ImageRef) IsDataURI() bool { return strings.HasPrefix(string(r), "data:") }

// IsRemoteURL reports whether the ref points at an external resource.
func (r ImageRef) IsRemoteURL() bool {
	return strings.HasPrefix(string(r), "http://") || strings.HasPrefix(string(r), "https://")
}

// PromptData is the payload of a prompt node. A non-empty SourceImages
// list switches downstream generation from "generate" to "edit".
type PromptData struct {
	Prompt       string     `json:"prompt"`
	Model        string     `json:"model"`
	SourceImages []ImageRef `json:"source_images,omitempty"`
}

// Attribution credits the photographer for an externally sourced image.
// Fields are attached verbatim from the photo-search collaborator.
type Attribution struct {
	Author     string `json:"author"`
	AuthorURL  string `json:"author_url,omitempty"`
	SourceURL  string `json:"source_url,omitempty"`
	SourceName string `json:"source_name,omitempty"`
}

// GenerationRecord captures the fully serializable parameters that
// produced a generated or edited image. Source and mask images are
// stored as blob IDs, never as raw payloads.
type GenerationRecord struct {
	Prompt         string            `json:"prompt"`
	RevisedPrompt  string            `json:"revised_prompt,omitempty"`
	Model          string            `json:"model"`
	Params         map[string]string `json:"params,omitempty"`
	SourceImageIDs []string          `json:"source_image_ids,omitempty"`
	MaskImageID    string            `json:"mask_image_id,omitempty"`
}

// ImageData is the payload of an image node, tagged by Source.
// Exactly one of ImageID and ImageURL is authoritative at render time,
// ImageID preferred; ImageURL survives only for legacy inline payloads.
// IsLoading marks a placeholder still awaiting generation and Error a
// failed one; the two are mutually exclusive.
type ImageData struct {
	Source      ImageSource       `json:"source"`
	ImageID     string            `json:"image_id,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	IsLoading   bool              `json:"is_loading,omitempty"`
	Error       string            `json:"error,omitempty"`
	Attribution *Attribution      `json:"attribution,omitempty"`
	Generation  *GenerationRecord `json:"generation,omitempty"`
}

// Node is a vertex on the canvas. Exactly one of Prompt and Image is
// set, matching Type.
type Node struct {
	ID         string      `json:"id"`
	Type       NodeType    `json:"type"`
	Position   Position    `json:"position"`
	Selectable bool        `json:"selectable"`
	Prompt     *PromptData `json:"prompt,omitempty"`
	Image      *ImageData  `json:"image,omitempty"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
}

// Footprint returns the rendered width and height for a node type,
// used by the placement engine for overlap queries.
func (t NodeType) Footprint() (w, h float64) {
	switch t {
	case NodePrompt:
		return 320, 180
	default:
		return 280, 280
	}
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	X, Y, W, H float64
}

// Bounds returns the node's bounding rectangle.
func (n *Node) Bounds() Rect {
	w, h := n.Type.Footprint()
	return Rect{X: n.Position.X, Y: n.Position.Y, W: w, H: h}
}

// Intersects reports whether two rectangles overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X && r.Y < o.Y+o.H && r.Y+r.H > o.Y
}
