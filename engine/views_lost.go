package engine

import (
	"sort"
	"strings"
)

// ============================================================================
// LOST VIEWS — Lost / turn-down reasons and comment clustering
// ============================================================================

// LostRow is one headline lost-reason group.
type LostRow struct {
	Reason        string      `json:"reason"`
	Total         int         `json:"total"`
	ByYear        map[int]int `json:"byYear"`
	CommentBucket bool        `json:"commentBucket"` // open with AnalyzeComments
	Bookings      View        `json:"-"`
}

// hasLostLabel selects lost bookings grouped under label.
func hasLostLabel(label string) func(*BookingRecord) bool {
	return func(r *BookingRecord) bool { return r.IsLost() && LostReasonLabel(r.TerminalReason) == label }
}

// LostAnalysis groups the lost bookings of a view by headline theme (or raw
// reason when no theme matches), most frequent first, keeps the top limit
// groups and then drops hidden labels. years lists the per-year columns.
func LostAnalysis(v View, years []int, limit int, hidden []string) []LostRow {
	lost := v.Where((*BookingRecord).IsLost)

	byLabel := make(map[string]*LostRow)
	var order []string
	lost.Each(func(r *BookingRecord) {
		label := LostReasonLabel(r.TerminalReason)
		row, ok := byLabel[label]
		if !ok {
			row = &LostRow{Reason: label, ByYear: make(map[int]int, len(years))}
			byLabel[label] = row
			order = append(order, label)
		}
		row.Total++
	})

	rows := make([]LostRow, 0, len(order))
	for _, label := range order {
		row := byLabel[label]
		row.Bookings = lost.Where(hasLostLabel(label))
		for _, y := range years {
			row.ByYear[y] = row.Bookings.Count(func(r *BookingRecord) bool { return r.EnteredYear == y })
		}
		row.CommentBucket = IsCommentBucket(label)
		rows = append(rows, *row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	if len(hidden) == 0 {
		return rows
	}
	hide := make(map[string]bool, len(hidden))
	for _, h := range hidden {
		hide[h] = true
	}
	kept := rows[:0]
	for _, row := range rows {
		if !hide[row.Reason] {
			kept = append(kept, row)
		}
	}
	return kept
}

// ============================================================================
// COMMENT THEMES
// ============================================================================

// ThemeGroup is one comment theme with its members.
type ThemeGroup struct {
	Theme    string `json:"theme"`
	Count    int    `json:"count"`
	Bookings View   `json:"-"`
}

// UnthemedComment is one comment that matched no theme.
type UnthemedComment struct {
	BookingNumber string `json:"bookingNumber"`
	Name          string `json:"name"`
	Comment       string `json:"comment"`
}

// CommentAnalysis clusters free-text reasons by the fine theme table.
type CommentAnalysis struct {
	Themes        []ThemeGroup      `json:"themes"`
	Unthemed      []UnthemedComment `json:"unthemed"` // first limit only
	UnthemedTotal int               `json:"unthemedTotal"`
	UnthemedView  View              `json:"-"`
}

// hasCommentTheme selects records whose reason falls under a comment theme.
func hasCommentTheme(theme string) func(*BookingRecord) bool {
	return func(r *BookingRecord) bool {
		label, ok := CommentTheme(r.TerminalReason)
		return ok && label == theme
	}
}

func isUnthemed(r *BookingRecord) bool {
	_, ok := CommentTheme(r.TerminalReason)
	return !ok
}

// AnalyzeComments clusters every record of the view (typically one lost
// bucket) by comment theme, largest first, ties in theme table order. At most
// limit unthemed comments are listed; UnthemedTotal counts them all.
func AnalyzeComments(v View, limit int) CommentAnalysis {
	var a CommentAnalysis
	for _, theme := range CommentThemes {
		sub := v.Where(hasCommentTheme(theme.Label))
		if sub.Len() == 0 {
			continue
		}
		a.Themes = append(a.Themes, ThemeGroup{Theme: theme.Label, Count: sub.Len(), Bookings: sub})
	}
	sort.SliceStable(a.Themes, func(i, j int) bool { return a.Themes[i].Count > a.Themes[j].Count })

	a.UnthemedView = v.Where(isUnthemed)
	a.UnthemedTotal = a.UnthemedView.Len()
	a.UnthemedView.Head(limit).Each(func(r *BookingRecord) {
		comment := strings.TrimSpace(r.TerminalReason)
		if comment == "" {
			comment = "No comment"
		}
		a.Unthemed = append(a.Unthemed, UnthemedComment{
			BookingNumber: r.BookingNumber,
			Name:          r.DisplayName(),
			Comment:       comment,
		})
	})
	return a
}
