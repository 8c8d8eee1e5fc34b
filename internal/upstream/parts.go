package upstream

import "github.com/modalyze/modalyze/internal/models"

const (
	// Sent when a payload carries binary content but no accompanying text,
	// so the upstream request is never content-free.
	defaultPrompt = "请分析以下内容。"

	defaultImageMime = "image/jpeg"
	defaultFileMime  = "application/octet-stream"
)

// Part is one fragment of a generateContent request: either plain text or
// inline base64 data.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData is a base64-encoded binary fragment plus its MIME type.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// BuildParts turns a request payload into the ordered content-parts
// sequence. The text part always comes first; image and file inline parts
// follow in that order when present. Image and file are mutually exclusive
// at the adapter layer, but both are tolerated here.
func BuildParts(p models.RequestPayload) []Part {
	text := p.Text
	if text == "" {
		text = defaultPrompt
	}
	parts := []Part{{Text: text}}

	if p.Image != "" {
		mimeType := p.ImageMimeType
		if mimeType == "" {
			mimeType = defaultImageMime
		}
		parts = append(parts, Part{InlineData: &InlineData{MimeType: mimeType, Data: p.Image}})
	}

	if p.File != nil && p.File.Base64 != "" {
		mimeType := p.File.MimeType
		if mimeType == "" {
			mimeType = defaultFileMime
		}
		parts = append(parts, Part{InlineData: &InlineData{MimeType: mimeType, Data: p.File.Base64}})
	}

	return parts
}
