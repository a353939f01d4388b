package engine

// ============================================================================
// KPI VIEWS — Headline totals, KPI detail panels, Group vs Catering
// ============================================================================

// KPISummary is the headline card row over the globally filtered bookings.
// Money and room nights count converted bookings only.
type KPISummary struct {
	TotalLeads      int     `json:"totalLeads"`
	Converted       int     `json:"converted"`
	Tentative       int     `json:"tentative"`
	Lost            int     `json:"lost"`
	RevenueLines            // converted only
	ConversionRate  float64 `json:"conversionRate"`
	AvgLeadTime     float64 `json:"avgLeadTime"`     // whole days
	AvgResponseTime float64 `json:"avgResponseTime"` // hours, one decimal
	AvgBookingValue float64 `json:"avgBookingValue"`
}

// KPI computes the headline summary of a view.
func KPI(v View) KPISummary {
	converted := v.Where((*BookingRecord).IsConverted)
	s := KPISummary{
		TotalLeads:   v.Len(),
		Converted:    converted.Len(),
		Tentative:    v.Count((*BookingRecord).IsPipeline),
		Lost:         v.Count((*BookingRecord).IsLost),
		RevenueLines: SumLines(converted),
	}
	s.ConversionRate = Percent(s.Converted, s.TotalLeads)
	s.AvgLeadTime = Round0(AvgLeadTime(v))
	s.AvgResponseTime = Round1(AvgResponseTime(v))
	s.AvgBookingValue = Ratio(s.GroupRevenue, float64(s.Converted))
	return s
}

// ============================================================================
// KPI DETAILS
// ============================================================================

// LeadTimeDetail breaks average lead time down by segment, category and year.
type LeadTimeDetail struct {
	Overall   float64         `json:"overall"`
	Corporate float64         `json:"corporate"`
	Social    float64         `json:"social"`
	Group     float64         `json:"group"`
	Catering  float64         `json:"catering"`
	ByYear    []YearLeadTimes `json:"byYear"`
}

// YearLeadTimes is one year of LeadTimeDetail.
type YearLeadTimes struct {
	Year      int     `json:"year"`
	Overall   float64 `json:"overall"`
	Corporate float64 `json:"corporate"`
	Social    float64 `json:"social"`
}

// ConversionDetail breaks conversion rate down by segment, category and year.
type ConversionDetail struct {
	Overall   float64     `json:"overall"`
	Corporate float64     `json:"corporate"`
	Social    float64     `json:"social"`
	Group     float64     `json:"group"`
	Catering  float64     `json:"catering"`
	ByYear    []YearValue `json:"byYear"`
}

// ResponseDetail describes lead response times.
type ResponseDetail struct {
	Avg          float64      `json:"avg"`
	Under2h      float64      `json:"under2h"`  // % of responded leads
	Under24h     float64      `json:"under24h"` // % of responded leads
	Distribution []RangeCount `json:"distribution"`
}

// RoomNightDetail splits converted room nights.
type RoomNightDetail struct {
	Total         float64     `json:"total"`
	AvgPerBooking float64     `json:"avgPerBooking"`
	Group         float64     `json:"group"`
	Catering      float64     `json:"catering"`
	ByYear        []YearValue `json:"byYear"`
}

// KPIDetails backs the KPI drill-down panels.
type KPIDetails struct {
	LeadTime   LeadTimeDetail   `json:"leadTime"`
	Conversion ConversionDetail `json:"conversion"`
	Response   ResponseDetail   `json:"response"`
	RoomNights RoomNightDetail  `json:"roomNights"`
}

// KPIDetailsOf computes the detail panels for a view. years lists the
// per-year rows to report (normally every entered year of the dataset).
func KPIDetailsOf(v View, years []int) KPIDetails {
	inSegment := func(s SegmentCategory) func(*BookingRecord) bool {
		return func(r *BookingRecord) bool { return r.SegmentCategory == s }
	}
	inCategory := func(c BookingCategory) func(*BookingRecord) bool {
		return func(r *BookingRecord) bool { return r.BookingCategory == c }
	}
	inYear := func(y int) func(*BookingRecord) bool {
		return func(r *BookingRecord) bool { return r.EnteredYear == y }
	}
	leadDays := func(sub View) float64 { return Round0(AvgLeadTime(sub)) }
	convRate := func(sub View) float64 {
		return Percent(sub.Count((*BookingRecord).IsConverted), sub.Len())
	}

	corporate := v.Where(inSegment(SegmentCorporate))
	social := v.Where(inSegment(SegmentSocial))
	group := v.Where(inCategory(CategoryGroupSales))
	catering := v.Where(inCategory(CategoryLocalCatering))
	converted := v.Where((*BookingRecord).IsConverted)

	var d KPIDetails

	d.LeadTime = LeadTimeDetail{
		Overall:   leadDays(v),
		Corporate: leadDays(corporate),
		Social:    leadDays(social),
		Group:     leadDays(group),
		Catering:  leadDays(catering),
	}
	d.Conversion = ConversionDetail{
		Overall:   convRate(v),
		Corporate: convRate(corporate),
		Social:    convRate(social),
		Group:     convRate(group),
		Catering:  convRate(catering),
	}
	totalRN := SumField(converted, roomNightOf)
	d.RoomNights = RoomNightDetail{
		Total:         totalRN,
		AvgPerBooking: Round0(Ratio(totalRN, float64(converted.Len()))),
		Group:         SumField(converted.Where(inCategory(CategoryGroupSales)), roomNightOf),
		Catering:      SumField(converted.Where(inCategory(CategoryLocalCatering)), roomNightOf),
	}

	for _, y := range years {
		yv := v.Where(inYear(y))
		d.LeadTime.ByYear = append(d.LeadTime.ByYear, YearLeadTimes{
			Year:      y,
			Overall:   leadDays(yv),
			Corporate: leadDays(yv.Where(inSegment(SegmentCorporate))),
			Social:    leadDays(yv.Where(inSegment(SegmentSocial))),
		})
		d.Conversion.ByYear = append(d.Conversion.ByYear, YearValue{Year: y, Value: convRate(yv)})
		d.RoomNights.ByYear = append(d.RoomNights.ByYear, YearValue{
			Year:  y,
			Value: SumField(converted.Where(inYear(y)), roomNightOf),
		})
	}

	d.Response = ResponseDetailOf(v)
	return d
}

// responseRanges are (lo, hi] hour buckets; the first includes 0.
var responseRanges = []struct {
	label  string
	lo, hi float64
}{
	{"0-2h", 0, 2},
	{"2-4h", 2, 4},
	{"4-8h", 4, 8},
	{"8-24h", 8, 24},
	{"24-48h", 24, 48},
	{"48h+", 48, -1},
}

// ResponseDistribution buckets the positive response times of a view.
func ResponseDistribution(v View) []RangeCount {
	out := make([]RangeCount, len(responseRanges))
	for i, rr := range responseRanges {
		out[i].Range = rr.label
	}
	v.Each(func(r *BookingRecord) {
		h := r.LeadResponseTime
		if h <= 0 {
			return
		}
		for i, rr := range responseRanges {
			if h > rr.lo && (rr.hi < 0 || h <= rr.hi) {
				out[i].Count++
				return
			}
		}
	})
	return out
}

// ResponseDetailOf summarizes the positive response times of a view.
func ResponseDetailOf(v View) ResponseDetail {
	responded := v.Where(func(r *BookingRecord) bool { return r.LeadResponseTime > 0 })
	within := func(hours float64) int {
		return responded.Count(func(r *BookingRecord) bool { return r.LeadResponseTime <= hours })
	}
	return ResponseDetail{
		Avg:          Round1(AvgResponseTime(responded)),
		Under2h:      Percent(within(2), responded.Len()),
		Under24h:     Percent(within(24), responded.Len()),
		Distribution: ResponseDistribution(responded),
	}
}

// ============================================================================
// GROUP VS CATERING
// ============================================================================

// CategoryTotals is one side of the Group vs Catering breakdown.
type CategoryTotals struct {
	Category BookingCategory `json:"category"`
	Count    int             `json:"count"`
	RevenueLines
	Bookings View `json:"-"`
}

// GroupCateringBreakdown partitions converted bookings by booking category.
type GroupCateringBreakdown struct {
	Group    CategoryTotals `json:"group"`
	Catering CategoryTotals `json:"catering"`

	// SpendPerGroupRoomNight is group event revenue per group room night.
	SpendPerGroupRoomNight float64 `json:"spendPerGroupRoomNight"`
}

// GroupVsCatering partitions the converted bookings of a view by category.
func GroupVsCatering(v View) GroupCateringBreakdown {
	totals := func(c BookingCategory) CategoryTotals {
		sub := v.Where(inGroupCategory(c))
		return CategoryTotals{Category: c, Count: sub.Len(), RevenueLines: SumLines(sub), Bookings: sub}
	}
	b := GroupCateringBreakdown{
		Group:    totals(CategoryGroupSales),
		Catering: totals(CategoryLocalCatering),
	}
	b.SpendPerGroupRoomNight = Ratio(b.Group.EventRevenue, b.Group.RoomNights)
	return b
}

// inGroupCategory selects converted bookings of one category.
func inGroupCategory(c BookingCategory) func(*BookingRecord) bool {
	return func(r *BookingRecord) bool { return r.IsConverted() && r.BookingCategory == c }
}
