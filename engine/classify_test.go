package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// CLASSIFIER TESTS
// ============================================================================

func TestSegmentCategoryOf(t *testing.T) {
	assert.Equal(t, SegmentSocial, SegmentCategoryOf("SMERF"))
	assert.Equal(t, SegmentSocial, SegmentCategoryOf("  social "))
	assert.Equal(t, SegmentCorporate, SegmentCategoryOf("Social Events"))
	assert.Equal(t, SegmentCorporate, SegmentCategoryOf("Corporate"))
	assert.Equal(t, SegmentCorporate, SegmentCategoryOf(""))
}

func TestBookingCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryLocalCatering, BookingCategoryOf("Local Event"))
	assert.Equal(t, CategoryLocalCatering, BookingCategoryOf("EVENTS ONLY"))
	assert.Equal(t, CategoryGroupSales, BookingCategoryOf("Group"))
	assert.Equal(t, CategoryGroupSales, BookingCategoryOf(""))
}

func TestGradeLabel(t *testing.T) {
	assert.Equal(t, UngradedLabel, GradeLabel(0))
	assert.Equal(t, "Grade 3", GradeLabel(3))
}

func TestStatusClasses(t *testing.T) {
	assert.True(t, IsConverted(StatusActual))
	assert.True(t, IsConverted(StatusDefinite))
	assert.False(t, IsConverted("definite"))
	assert.True(t, IsLost(StatusTurnDown))
	assert.True(t, IsLost(StatusCancelled))
	assert.False(t, IsLost(StatusTentative))
	assert.True(t, IsPipeline(StatusTentative))
}

func TestLostReasonLabel(t *testing.T) {
	cases := map[string]string{
		"":                            NoReasonGiven,
		"Rate was too EXPENSIVE":      "Price",
		"Hotel sold out those dates":  "Availability",
		"Client went elsewhere":       "Location",
		"Other - C-Comments":          "Other - C-Comments",
		"Decided to host it at home.": "Decided to host it at home.",
	}
	for in, want := range cases {
		assert.Equal(t, want, LostReasonLabel(in), in)
	}
}

func TestCommentThemeFirstMatchWins(t *testing.T) {
	// "price" (Rate Too High) outranks "competitor" (Competition)
	label, ok := CommentTheme("competitor had a better price")
	assert.True(t, ok)
	assert.Equal(t, "Rate Too High", label)

	label, ok = CommentTheme("Client didn’t respond after the site visit")
	assert.True(t, ok)
	assert.Equal(t, "No Response", label)

	label, ok = CommentTheme("Event postponed to next spring")
	assert.True(t, ok)
	assert.Equal(t, "Event Cancelled", label)

	_, ok = CommentTheme("went quiet")
	assert.False(t, ok)
}

func TestThemeTableLabels(t *testing.T) {
	assert.Equal(t, []string{"Price", "Availability", "Location"}, HeadlineThemes.Labels())
	assert.Len(t, CommentThemes.Labels(), 8)
}

func TestIsCommentBucket(t *testing.T) {
	assert.True(t, IsCommentBucket("Other - C-Comments"))
	assert.True(t, IsCommentBucket("other c comments"))
	assert.False(t, IsCommentBucket("Other"))
	assert.False(t, IsCommentBucket("C-Comments"))
}
