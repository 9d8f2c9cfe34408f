package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowsInlinePreview(t *testing.T) {
	allowed := []string{
		"application/pdf",
		"image/jpeg",
		"image/png",
		"image/webp",
		"video/mp4",
		"Application/PDF",
		"  application/pdf  ",
		"application/pdf; charset=binary",
	}
	for _, ct := range allowed {
		assert.True(t, AllowsInlinePreview(ct), "content type %q", ct)
	}

	denied := []string{
		"application/zip",
		"application/octet-stream",
		"text/html",
		"image/svg+xml",
		"application/pdfx",
		"",
	}
	for _, ct := range denied {
		assert.False(t, AllowsInlinePreview(ct), "content type %q", ct)
	}
}
