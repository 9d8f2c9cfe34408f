// Package preview decides whether an attachment may be rendered inline in
// the browser or must be forced to a file download.
package preview

import "strings"

// inlinePreviewTypes is the explicit allow-list of content types safe to
// open in the browser. Extend the list here; call sites never change.
var inlinePreviewTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"video/mp4":       true,
}

// AllowsInlinePreview reports whether the declared content type may be
// served with inline disposition. Only the declared type is inspected, never
// file contents; upstream validation is responsible for any declared-type vs
// stored-object guarantee.
func AllowsInlinePreview(contentType string) bool {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	// Strip media type parameters ("; charset=...").
	if idx := strings.IndexByte(normalized, ';'); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	return inlinePreviewTypes[normalized]
}
