package models

import "strings"

// Source is a reference cited by the analysis.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// AnalysisResult is the canonical shape every analysis converges on. All
// fields are populated before it reaches a caller: absent structured fields
// are filled with defaults and KeyPoints is never nil.
type AnalysisResult struct {
	Summary          string   `json:"summary"`
	KeyPoints        []string `json:"keyPoints"`
	Conclusion       string   `json:"conclusion"`
	DetailedAnalysis string   `json:"detailedAnalysis,omitempty"`
	Sources          []Source `json:"sources,omitempty"`

	// ErrorKind carries the gateway error classification when the result is
	// error-shaped. Empty on success.
	ErrorKind string `json:"errorKind,omitempty"`
}

// IsError reports whether the result is the error-shaped variant.
func (r AnalysisResult) IsError() bool {
	return r.ErrorKind != ""
}

// FilePayload carries an inline file as base64 plus its MIME type.
type FilePayload struct {
	Base64   string `json:"base64"`
	MimeType string `json:"mimeType"`
}

// RequestPayload is the gateway request body. At least one of Text, Image
// or File.Base64 must be present.
type RequestPayload struct {
	Text          string       `json:"text,omitempty"`
	Image         string       `json:"image,omitempty"`
	ImageMimeType string       `json:"imageMimeType,omitempty"`
	File          *FilePayload `json:"file,omitempty"`
}

// HasContent reports whether the payload carries anything to analyze.
func (p RequestPayload) HasContent() bool {
	if p.Text != "" || p.Image != "" {
		return true
	}
	return p.File != nil && p.File.Base64 != ""
}

// StripDataURL removes a data-URL prefix ("data:<mime>;base64,") from a
// base64 string. It returns the bare data and the declared MIME type; the
// MIME type is empty when the input had no prefix.
func StripDataURL(s string) (data, mimeType string) {
	if !strings.HasPrefix(s, "data:") {
		return s, ""
	}
	idx := strings.Index(s, ",")
	if idx == -1 {
		return s, ""
	}
	meta := s[len("data:"):idx]
	if semi := strings.Index(meta, ";"); semi != -1 {
		meta = meta[:semi]
	}
	return s[idx+1:], meta
}
