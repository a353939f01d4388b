package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// CLASSIFIER — Derived Categorical Attributes
// ============================================================================
// Total, pure functions. Every record gets exactly one booking category and
// one segment category; unknown inputs fall to the default side.
// ============================================================================

// SegmentCategoryOf maps a market segment to Social ("smerf" / "social",
// case- and whitespace-insensitive) or Corporate.
func SegmentCategoryOf(marketSegment string) SegmentCategory {
	switch strings.ToLower(strings.TrimSpace(marketSegment)) {
	case "smerf", "social":
		return SegmentSocial
	}
	return SegmentCorporate
}

// BookingCategoryOf maps a booking type to Local Catering when it mentions
// "event", else Group Sales.
func BookingCategoryOf(bookingType string) BookingCategory {
	if strings.Contains(strings.ToLower(bookingType), "event") {
		return CategoryLocalCatering
	}
	return CategoryGroupSales
}

// GradeLabel returns "Ungraded" for 0, else "Grade N".
func GradeLabel(grade int) string {
	if grade == 0 {
		return UngradedLabel
	}
	return fmt.Sprintf("Grade %d", grade)
}

// IsConverted reports Actual / Definite.
func IsConverted(status string) bool {
	return status == StatusActual || status == StatusDefinite
}

// IsLost reports Lost / Turn Down / Cancelled.
func IsLost(status string) bool {
	return status == StatusLost || status == StatusTurnDown || status == StatusCancelled
}

// IsPipeline reports Tentative.
func IsPipeline(status string) bool {
	return status == StatusTentative
}

// ============================================================================
// THEME TABLES
// ============================================================================

// Theme is one label with the keywords that select it.
type Theme struct {
	Label    string   `json:"label"`
	Keywords []string `json:"keywords"`
}

// ThemeTable is an ordered keyword lookup: first theme with a keyword that
// occurs (case-insensitively) in the text wins.
type ThemeTable []Theme

// Match returns the first matching theme label.
func (t ThemeTable) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, theme := range t {
		for _, kw := range theme.Keywords {
			if strings.Contains(lower, kw) {
				return theme.Label, true
			}
		}
	}
	return "", false
}

// Labels lists the theme labels in priority order.
func (t ThemeTable) Labels() []string {
	out := make([]string, len(t))
	for i, theme := range t {
		out[i] = theme.Label
	}
	return out
}

// HeadlineThemes groups terminal reasons for the lost / turn-down table.
var HeadlineThemes = ThemeTable{
	{Label: "Price", Keywords: []string{"rate", "price", "expensive", "cost", "budget", "pricing", "cheaper", "afford", "fee", "charge", "costly"}},
	{Label: "Availability", Keywords: []string{"available", "availability", "sold out", "no rooms", "full", "capacity", "dates", "booked", "space"}},
	{Label: "Location", Keywords: []string{"location", "distance", "far", "travel", "drive", "competitor", "another property", "different hotel", "went elsewhere", "chose another", "alternate", "destination"}},
}

// CommentThemes clusters open-ended comments (the "other" lost bucket).
// Kept separate from HeadlineThemes; the two serve different views.
var CommentThemes = ThemeTable{
	{Label: "Rate Too High", Keywords: []string{"rate", "price", "expensive", "cost", "budget", "pricing", "cheaper", "afford"}},
	{Label: "Availability", Keywords: []string{"available", "availability", "sold out", "no rooms", "full", "capacity", "dates"}},
	{Label: "Competition", Keywords: []string{"competitor", "another property", "different hotel", "went elsewhere", "chose another"}},
	{Label: "Event Cancelled", Keywords: []string{"cancel", "cancelled", "postpone", "postponed", "reschedule"}},
	{Label: "No Response", Keywords: []string{"no response", "unresponsive", "didn't respond", "didn’t respond", "never heard", "ghost"}},
	{Label: "Location", Keywords: []string{"location", "distance", "far", "travel", "drive"}},
	{Label: "Group Size", Keywords: []string{"size", "too small", "too large", "minimum", "maximum"}},
	{Label: "Timing", Keywords: []string{"timing", "too soon", "too late", "short notice", "lead time"}},
}

// LostReasonTheme classifies free text by the headline table and returns the
// original text unchanged when no theme matches.
func LostReasonTheme(text string) string {
	if label, ok := HeadlineThemes.Match(text); ok {
		return label
	}
	return text
}

// LostReasonLabel is the grouping key of a lost booking: empty reasons become
// "No Reason Given" before theme lookup.
func LostReasonLabel(reason string) string {
	if reason == "" {
		reason = NoReasonGiven
	}
	return LostReasonTheme(reason)
}

// CommentTheme classifies free text by the fine comment table.
func CommentTheme(text string) (string, bool) {
	return CommentThemes.Match(text)
}

// IsCommentBucket reports whether a lost-reason label is the catch-all
// "Other - C-Comments" style bucket whose members need comment clustering.
func IsCommentBucket(label string) bool {
	lower := strings.ToLower(label)
	if !strings.Contains(lower, "other") {
		return false
	}
	return strings.Contains(lower, "c-comment") ||
		strings.Contains(lower, "c comment") ||
		strings.Contains(lower, "c-comments")
}
