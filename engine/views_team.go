package engine

import (
	"sort"
	"strings"
)

// ============================================================================
// TEAM VIEWS — Manager scorecards, deep dive, pipeline
// ============================================================================

// ManagerStats is one sales manager's scorecard.
type ManagerStats struct {
	Manager         string  `json:"manager"`
	Leads           int     `json:"leads"`
	Converted       int     `json:"converted"`
	ConversionRate  float64 `json:"conversionRate"`
	Revenue         float64 `json:"revenue"`      // converted only
	EventRevenue    float64 `json:"eventRevenue"` // converted only
	RoomNights      float64 `json:"roomNights"`   // converted only
	AvgResponseTime float64 `json:"avgResponseTime"`
	AvgRate         float64 `json:"avgRate"`
	AvgBookingValue float64 `json:"avgBookingValue"`
	Bookings        View    `json:"-"`
}

// TeamAverages are plain means over the scorecards shown.
type TeamAverages struct {
	Leads          float64 `json:"leads"`
	ConversionRate float64 `json:"conversionRate"`
	AvgResponse    float64 `json:"avgResponse"` // managers with a positive average only
}

// ManagerPerformance is the scorecard table.
type ManagerPerformance struct {
	Managers []ManagerStats `json:"managers"`
	Team     TeamAverages   `json:"team"`
}

// isManager selects bookings owned by exactly this manager.
func isManager(name string) func(*BookingRecord) bool {
	return func(r *BookingRecord) bool { return r.SalesManager == name }
}

// managerStats computes one scorecard from that manager's bookings.
func managerStats(name string, v View) ManagerStats {
	converted := v.Where((*BookingRecord).IsConverted)
	lines := SumLines(converted)
	avgRate, _ := AvgPositive(v, func(r *BookingRecord) float64 { return r.AvgRate })
	s := ManagerStats{
		Manager:         name,
		Leads:           v.Len(),
		Converted:       converted.Len(),
		ConversionRate:  Percent(converted.Len(), v.Len()),
		Revenue:         lines.GroupRevenue,
		EventRevenue:    lines.EventRevenue,
		RoomNights:      lines.RoomNights,
		AvgResponseTime: Round1(AvgResponseTime(v)),
		AvgRate:         avgRate,
		Bookings:        v,
	}
	s.AvgBookingValue = Ratio(s.Revenue, float64(s.Converted))
	return s
}

// ManagerPerformanceOf scores the allow-listed managers (exact name match)
// that own at least one booking of the view, most conversions first.
func ManagerPerformanceOf(v View, allowed []string) ManagerPerformance {
	var perf ManagerPerformance
	for _, name := range firstSeenManagers(v, allowed) {
		perf.Managers = append(perf.Managers, managerStats(name, v.Where(isManager(name))))
	}
	sort.SliceStable(perf.Managers, func(i, j int) bool {
		return perf.Managers[i].Converted > perf.Managers[j].Converted
	})
	perf.Team = teamAverages(perf.Managers)
	return perf
}

// firstSeenManagers lists the allowed managers present in v, in first-seen order.
func firstSeenManagers(v View, allowed []string) []string {
	allow := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		allow[name] = true
	}
	seen := make(map[string]bool)
	var names []string
	v.Each(func(r *BookingRecord) {
		if allow[r.SalesManager] && !seen[r.SalesManager] {
			seen[r.SalesManager] = true
			names = append(names, r.SalesManager)
		}
	})
	return names
}

func teamAverages(managers []ManagerStats) TeamAverages {
	var t TeamAverages
	if len(managers) == 0 {
		return t
	}
	responders := 0
	for _, m := range managers {
		t.Leads += float64(m.Leads)
		t.ConversionRate += m.ConversionRate
		if m.AvgResponseTime > 0 {
			t.AvgResponse += m.AvgResponseTime
			responders++
		}
	}
	t.Leads /= float64(len(managers))
	t.ConversionRate /= float64(len(managers))
	t.AvgResponse = Ratio(t.AvgResponse, float64(responders))
	return t
}

// ============================================================================
// PIPELINE
// ============================================================================

// GradePipeline is one grade of the tentative pipeline.
type GradePipeline struct {
	Grade        string  `json:"grade"`
	Count        int     `json:"count"`
	RoomNights   float64 `json:"roomNights"`
	Revenue      float64 `json:"revenue"`
	EventRevenue float64 `json:"eventRevenue"`
	Bookings     View    `json:"-"`
}

// inPipelineGrade selects tentative bookings of one grade label.
func inPipelineGrade(label string) func(*BookingRecord) bool {
	return func(r *BookingRecord) bool { return r.IsPipeline() && r.GradeLabel == label }
}

// PipelineSnapshot groups tentative bookings by grade label: graded labels
// lexicographically, "Ungraded" last.
func PipelineSnapshot(v View) []GradePipeline {
	var labels []string
	seen := make(map[string]bool)
	v.Each(func(r *BookingRecord) {
		if r.IsPipeline() && !seen[r.GradeLabel] {
			seen[r.GradeLabel] = true
			labels = append(labels, r.GradeLabel)
		}
	})
	sort.Slice(labels, func(i, j int) bool {
		if labels[i] == UngradedLabel || labels[j] == UngradedLabel {
			return labels[j] == UngradedLabel && labels[i] != UngradedLabel
		}
		return labels[i] < labels[j]
	})

	out := make([]GradePipeline, 0, len(labels))
	for _, label := range labels {
		sub := v.Where(inPipelineGrade(label))
		lines := SumLines(sub)
		out = append(out, GradePipeline{
			Grade:        label,
			Count:        sub.Len(),
			RoomNights:   lines.RoomNights,
			Revenue:      lines.GroupRevenue,
			EventRevenue: lines.EventRevenue,
			Bookings:     sub,
		})
	}
	return out
}

// ============================================================================
// MANAGER DEEP DIVE
// ============================================================================

// ReasonCount is one raw terminal reason with its frequency.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// SegmentRevenue is converted business of one segment.
type SegmentRevenue struct {
	Segment SegmentCategory `json:"segment"`
	Count   int             `json:"count"`
	Revenue float64         `json:"revenue"`
}

// ManagerMonth is one entered month of a manager's trend.
type ManagerMonth struct {
	Month     string `json:"month"` // "2024-03"
	Label     string `json:"label"` // "Mar 2024"
	Leads     int    `json:"leads"`
	Converted int    `json:"converted"`
}

// ManagerDeepDive is the single-manager drill-down.
type ManagerDeepDive struct {
	ManagerStats
	Lost                 int              `json:"lost"`
	Tentative            int              `json:"tentative"`
	Pipeline             []GradePipeline  `json:"pipeline"`
	TopLostReasons       []ReasonCount    `json:"topLostReasons"`
	Segments             []SegmentRevenue `json:"segments"`
	Monthly              []ManagerMonth   `json:"monthly"`
	ResponseDistribution []RangeCount     `json:"responseDistribution"`
	Team                 TeamAverages     `json:"team"`
}

// matchesManager selects bookings whose manager contains name, ignoring case.
func matchesManager(name string) func(*BookingRecord) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	return func(r *BookingRecord) bool {
		return needle != "" && strings.Contains(strings.ToLower(r.SalesManager), needle)
	}
}

// DeepDive builds the drill-down for one manager over a view, compared with
// the given team averages. Matching is a case-insensitive substring.
func DeepDive(v View, name string, team TeamAverages) ManagerDeepDive {
	mine := v.Where(matchesManager(name))
	d := ManagerDeepDive{
		ManagerStats: managerStats(name, mine),
		Lost:         mine.Count((*BookingRecord).IsLost),
		Tentative:    mine.Count((*BookingRecord).IsPipeline),
		Pipeline:     PipelineSnapshot(mine),
		Team:         team,
	}
	d.TopLostReasons = topRawReasons(mine.Where((*BookingRecord).IsLost), 5)
	d.Segments = convertedBySegment(mine)
	d.Monthly = lastMonths(mine, 12)
	d.ResponseDistribution = ResponseDistribution(mine)
	return d
}

// topRawReasons counts untransformed terminal reasons, most frequent first.
func topRawReasons(v View, limit int) []ReasonCount {
	counts := make(map[string]int)
	var order []string
	v.Each(func(r *BookingRecord) {
		reason := r.TerminalReason
		if reason == "" {
			reason = NoReasonGiven
		}
		if counts[reason] == 0 {
			order = append(order, reason)
		}
		counts[reason]++
	})
	out := make([]ReasonCount, len(order))
	for i, reason := range order {
		out[i] = ReasonCount{Reason: reason, Count: counts[reason]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func convertedBySegment(v View) []SegmentRevenue {
	var out []SegmentRevenue
	for _, seg := range []SegmentCategory{SegmentCorporate, SegmentSocial} {
		sub := v.Where(func(r *BookingRecord) bool { return r.IsConverted() && r.SegmentCategory == seg })
		if sub.Len() == 0 {
			continue
		}
		out = append(out, SegmentRevenue{Segment: seg, Count: sub.Len(), Revenue: SumField(sub, revenueOf)})
	}
	return out
}

// lastMonths returns the most recent n entered months, ascending.
func lastMonths(v View, n int) []ManagerMonth {
	byMonth := make(map[string]*ManagerMonth)
	v.Each(func(r *BookingRecord) {
		if r.EnteredMonth == "" {
			return
		}
		m, ok := byMonth[r.EnteredMonth]
		if !ok {
			m = &ManagerMonth{Month: r.EnteredMonth, Label: FormatMonthLabel(r.EnteredMonth)}
			byMonth[r.EnteredMonth] = m
		}
		m.Leads++
		if r.IsConverted() {
			m.Converted++
		}
	})
	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > n {
		keys = keys[len(keys)-n:]
	}
	out := make([]ManagerMonth, len(keys))
	for i, k := range keys {
		out[i] = *byMonth[k]
	}
	return out
}
