package gcal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tourenq/weekcal/internal/config"
	"github.com/tourenq/weekcal/internal/gcal"
)

// TestFeedTag verifies tags are deterministic, fixed-length, and distinct
// across calendar IDs.
func TestFeedTag(t *testing.T) {
	a := gcal.FeedTag("team@example.com")
	b := gcal.FeedTag("family@example.com")

	assert.Len(t, a, config.FeedTagLength)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, gcal.FeedTag("team@example.com"))
}

// TestFeedTag_NearIdenticalIDs verifies IDs differing by one character still
// produce unrelated tags.
func TestFeedTag_NearIdenticalIDs(t *testing.T) {
	assert.NotEqual(t, gcal.FeedTag("cal1@example.com"), gcal.FeedTag("cal2@example.com"))
}
