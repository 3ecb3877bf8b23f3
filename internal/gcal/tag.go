package gcal

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/tourenq/weekcal/internal/config"
)

// FeedTag derives a deterministic, collision-resistant identifier from a
// calendar ID. Callers layering their own caching on top of the core use it
// as a cache key or ETag seed: two calendars always yield distinct tags, and
// the same calendar yields the same tag across processes.
func FeedTag(calendarID string) string {
	hash := sha256.Sum256([]byte(config.FeedTagSalt + calendarID))
	return hex.EncodeToString(hash[:])[:config.FeedTagLength]
}
