package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

// markerDocumentETag derives a weak ETag from the document's server
// timestamp and content, so unchanged documents revalidate cheaply.
func markerDocumentETag(doc *domain.MarkerDocument) string {
	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(doc.UpdatedAt.UnixNano(), 10)))
	for _, m := range doc.Markers {
		h.Write([]byte(m.Key()))
		h.Write([]byte(strconv.FormatFloat(m.Lat, 'g', -1, 64)))
		h.Write([]byte(strconv.FormatFloat(m.Lng, 'g', -1, 64)))
	}
	sum := h.Sum(nil)
	return `W/"` + hex.EncodeToString(sum[:8]) + `"`
}

// notModified sets the ETag header and reports whether the client's
// If-None-Match already names it.
func notModified(c *fiber.Ctx, etag string) bool {
	c.Set(fiber.HeaderETag, etag)
	for _, candidate := range strings.Split(c.Get(fiber.HeaderIfNoneMatch), ",") {
		if strings.TrimSpace(candidate) == etag {
			return true
		}
	}
	return false
}
