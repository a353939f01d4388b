package engine

import (
	"fmt"
	"strconv"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from bookings and view results
// ============================================================================
// TableData is the flat, render-ready shape handed to presentation and to the
// CLI's csv/xlsx writers. Cells are display strings; Column.Type tells a
// writer which ones to read back as numbers.
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "currency", "percent"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals or aggregations for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// DrillRowCap is the most booking rows a drill-down table shows.
const DrillRowCap = 100

func textCol(key, label string) Column     { return Column{Key: key, Label: label, Type: "text", Align: "left"} }
func numberCol(key, label string) Column   { return Column{Key: key, Label: label, Type: "number", Align: "right"} }
func currencyCol(key, label string) Column { return Column{Key: key, Label: label, Type: "currency", Align: "right"} }
func percentCol(key, label string) Column  { return Column{Key: key, Label: label, Type: "percent", Align: "right"} }

func num(v float64) string   { return strconv.FormatFloat(v, 'f', -1, 64) }
func money(v float64) string { return strconv.FormatFloat(Round0(v), 'f', 0, 64) }
func itoa(n int) string      { return strconv.Itoa(n) }

// ============================================================================
// BOOKING TABLE — Row per booking (drill-down)
// ============================================================================

// BuildBookingTable lists the bookings of a drill-down, at most DrillRowCap
// rows; the summary always covers every booking.
func BuildBookingTable(title string, v View, withComments bool) *TableData {
	columns := []Column{
		textCol("bookingNumber", "Booking #"),
		textCol("name", "Post As Name"),
		textCol("category", "Type"),
		textCol("status", "Status"),
		textCol("grade", "Grade"),
		textCol("arrival", "Arrival"),
		textCol("segment", "Segment"),
		numberCol("peakRoomNights", "Peak RN"),
		numberCol("roomNights", "Room Nights"),
		currencyCol("groupRevenue", "Group Rev"),
		currencyCol("eventRevenue", "Event Rev"),
		currencyCol("fnbRevenue", "F&B Rev"),
		currencyCol("rentalRevenue", "Rental Rev"),
		currencyCol("avgRate", "Avg Rate"),
		textCol("salesManager", "Sales Manager"),
	}
	if withComments {
		columns = append(columns, textCol("comment", "Reason/Comment"))
	}

	shown := v.Head(DrillRowCap)
	rows := make([][]string, 0, shown.Len())
	shown.Each(func(r *BookingRecord) {
		name := r.DisplayName()
		if name == "" {
			name = "N/A"
		}
		row := []string{
			r.BookingNumber,
			name,
			string(r.BookingCategory),
			r.Status,
			r.GradeLabel,
			FormatDate(r.ArrivalDate),
			r.MarketSegment,
			num(r.PeakRoomNights),
			num(r.RoomNight),
			FormatCurrency(r.TotalRevenue),
			FormatCurrency(r.EventRevenue),
			FormatCurrency(r.FnBRevenue),
			FormatCurrency(r.RentalRevenue),
			FormatCurrency(r.AvgRate),
			r.SalesManager,
		}
		if withComments {
			comment := r.TerminalReason
			if comment == "" {
				comment = "N/A"
			}
			row = append(row, comment)
		}
		rows = append(rows, row)
	})

	s := Summarize(v)
	label := fmt.Sprintf("%s bookings", FormatInt(s.Count))
	if v.Len() > shown.Len() {
		label = fmt.Sprintf("Showing %d of %s bookings", shown.Len(), FormatInt(s.Count))
	}
	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: label,
			Values: map[string]string{
				"roomNights":   FormatInt(int(Round0(s.RoomNights))),
				"groupRevenue": FormatCurrency(s.Revenue),
				"eventRevenue": FormatCurrency(s.EventRevenue),
			},
		},
	}
}

// ============================================================================
// VIEW TABLES — Flatten view results for export
// ============================================================================

// Tabulate flattens a view result into a table. It returns an error for
// types it cannot flatten.
func Tabulate(title string, value any) (*TableData, error) {
	t := &TableData{Title: title}
	switch v := value.(type) {
	case KPISummary:
		t.Columns = []Column{textCol("metric", "Metric"), numberCol("value", "Value")}
		t.Rows = [][]string{
			{"Total Leads", itoa(v.TotalLeads)},
			{"Converted", itoa(v.Converted)},
			{"Tentative", itoa(v.Tentative)},
			{"Lost", itoa(v.Lost)},
			{"Conversion Rate", num(v.ConversionRate)},
			{"Room Nights", num(v.RoomNights)},
			{"Group Revenue", money(v.GroupRevenue)},
			{"Event Revenue", money(v.EventRevenue)},
			{"F&B Revenue", money(v.FnBRevenue)},
			{"Rental Revenue", money(v.RentalRevenue)},
			{"Avg Lead Time (days)", num(v.AvgLeadTime)},
			{"Avg Response Time (hrs)", num(v.AvgResponseTime)},
			{"Avg Booking Value", money(v.AvgBookingValue)},
		}

	case VarianceSet:
		t.Columns = []Column{textCol("metric", "Metric"), numberCol("current", "Current"), numberCol("prior", "Prior"), percentCol("variance", "Variance %")}
		for _, item := range v.Items {
			pct := "n/a"
			if item.Available {
				pct = num(item.Percent)
			}
			t.Rows = append(t.Rows, []string{string(item.Metric), num(item.Current), num(item.Prior), pct})
		}

	case KPIDetails:
		t.Columns = []Column{textCol("detail", "Detail"), textCol("slice", "Slice"), numberCol("value", "Value")}
		add := func(detail, slice string, value float64) {
			t.Rows = append(t.Rows, []string{detail, slice, num(value)})
		}
		lt, cv, rn := v.LeadTime, v.Conversion, v.RoomNights
		for _, p := range []struct {
			name string
			lt   float64
			cv   float64
		}{{"Overall", lt.Overall, cv.Overall}, {"Corporate", lt.Corporate, cv.Corporate}, {"Social", lt.Social, cv.Social}, {"Group", lt.Group, cv.Group}, {"Catering", lt.Catering, cv.Catering}} {
			add("Lead Time", p.name, p.lt)
			add("Conversion", p.name, p.cv)
		}
		for _, y := range lt.ByYear {
			add("Lead Time", itoa(y.Year), y.Overall)
		}
		for _, y := range cv.ByYear {
			add("Conversion", itoa(y.Year), y.Value)
		}
		add("Response", "Average", v.Response.Avg)
		add("Response", "% <= 2h", v.Response.Under2h)
		add("Response", "% <= 24h", v.Response.Under24h)
		for _, rc := range v.Response.Distribution {
			add("Response", rc.Range, float64(rc.Count))
		}
		add("Room Nights", "Total", rn.Total)
		add("Room Nights", "Avg per Booking", rn.AvgPerBooking)
		add("Room Nights", "Group", rn.Group)
		add("Room Nights", "Catering", rn.Catering)
		for _, y := range rn.ByYear {
			add("Room Nights", itoa(y.Year), y.Value)
		}

	case GroupCateringBreakdown:
		t.Columns = []Column{textCol("category", "Category"), numberCol("count", "Bookings"), numberCol("roomNights", "Room Nights"),
			currencyCol("groupRevenue", "Group Rev"), currencyCol("eventRevenue", "Event Rev"), currencyCol("fnbRevenue", "F&B Rev"), currencyCol("rentalRevenue", "Rental Rev")}
		for _, c := range []CategoryTotals{v.Group, v.Catering} {
			t.Rows = append(t.Rows, []string{string(c.Category), itoa(c.Count), num(c.RoomNights),
				money(c.GroupRevenue), money(c.EventRevenue), money(c.FnBRevenue), money(c.RentalRevenue)})
		}
		t.Summary = &Summary{Label: "Spend per Group RN", Values: map[string]string{"eventRevenue": FormatCurrency(v.SpendPerGroupRoomNight)}}

	case []YearEventRevenue:
		t.Columns = []Column{textCol("year", "Year"), currencyCol("fnb", "F&B"), currencyCol("rental", "Rental"), currencyCol("total", "Total Event")}
		for _, y := range v {
			t.Rows = append(t.Rows, []string{itoa(y.Year), money(y.FnB), money(y.Rental), money(y.Total)})
		}

	case []MonthlyCounts:
		years := countYears(v)
		t.Columns = append([]Column{textCol("month", "Month")}, yearColumns(years)...)
		for _, m := range v {
			row := []string{m.Month}
			for _, y := range years {
				row = append(row, itoa(m.Counts[y]))
			}
			t.Rows = append(t.Rows, row)
		}

	case []MonthGrowth:
		t.Columns = []Column{textCol("month", "Month"), numberCol("prior", "Prior"), numberCol("current", "Current"), percentCol("growth", "Growth %")}
		for _, m := range v {
			t.Rows = append(t.Rows, []string{m.Month, itoa(m.Prior), itoa(m.Current), num(m.Growth)})
		}

	case []SegmentYear:
		t.Columns = []Column{textCol("year", "Year"), numberCol("corporate", "Corporate"), numberCol("social", "Social"), percentCol("corporatePct", "Corporate %"), percentCol("socialPct", "Social %")}
		for _, s := range v {
			t.Rows = append(t.Rows, []string{itoa(s.Year), itoa(s.Corporate), itoa(s.Social), num(s.CorporatePct), num(s.SocialPct)})
		}

	case []SegmentMonth:
		t.Columns = []Column{textCol("month", "Month"), numberCol("corporate", "Corporate"), numberCol("social", "Social"), percentCol("corporatePct", "Corporate %"), percentCol("socialPct", "Social %")}
		for _, s := range v {
			t.Rows = append(t.Rows, []string{s.Month, itoa(s.Corporate), itoa(s.Social), num(s.CorporatePct), num(s.SocialPct)})
		}

	case []DistributionRow:
		years := distributionYears(v)
		t.Columns = append([]Column{textCol("range", "Days")}, yearColumns(years)...)
		for _, d := range v {
			row := []string{d.Range}
			for _, y := range years {
				row = append(row, itoa(d.Counts[y]))
			}
			t.Rows = append(t.Rows, row)
		}

	case HeatMap:
		t.Columns = []Column{textCol("year", "Year")}
		for _, m := range MonthNames {
			t.Columns = append(t.Columns, percentCol(m, m))
		}
		t.Columns = append(t.Columns, numberCol("total", "Total"))
		for _, row := range v.Rows {
			cells := []string{itoa(row.Year)}
			for _, c := range row.Cells {
				cells = append(cells, num(Round1(c.Share)))
			}
			t.Rows = append(t.Rows, append(cells, itoa(row.Total)))
		}

	case []BlockBucket:
		t.Columns = []Column{textCol("bucket", "Block Size"), numberCol("count", "Bookings"), currencyCol("revenue", "Revenue")}
		for _, b := range v {
			t.Rows = append(t.Rows, []string{b.Label, itoa(b.Count), money(b.Revenue)})
		}

	case ManagerPerformance:
		t.Columns = []Column{textCol("manager", "Manager"), numberCol("leads", "Leads"), numberCol("converted", "Converted"), percentCol("conversionRate", "Conv %"),
			currencyCol("revenue", "Revenue"), currencyCol("eventRevenue", "Event Rev"), numberCol("roomNights", "Room Nights"),
			numberCol("avgResponse", "Avg Response (hrs)"), currencyCol("avgRate", "Avg Rate"), currencyCol("avgBookingValue", "Avg Booking")}
		for _, m := range v.Managers {
			t.Rows = append(t.Rows, []string{m.Manager, itoa(m.Leads), itoa(m.Converted), num(m.ConversionRate),
				money(m.Revenue), money(m.EventRevenue), num(m.RoomNights), num(m.AvgResponseTime), money(m.AvgRate), money(m.AvgBookingValue)})
		}
		t.Summary = &Summary{Label: "Team Average", Values: map[string]string{
			"leads":          num(Round1(v.Team.Leads)),
			"conversionRate": num(Round1(v.Team.ConversionRate)),
			"avgResponse":    num(Round1(v.Team.AvgResponse)),
		}}

	case []GradePipeline:
		t.Columns = []Column{textCol("grade", "Grade"), numberCol("count", "Bookings"), numberCol("roomNights", "Room Nights"), currencyCol("revenue", "Revenue"), currencyCol("eventRevenue", "Event Rev")}
		for _, g := range v {
			t.Rows = append(t.Rows, []string{g.Grade, itoa(g.Count), num(g.RoomNights), money(g.Revenue), money(g.EventRevenue)})
		}

	case []LostRow:
		years := lostYears(v)
		t.Columns = append([]Column{textCol("reason", "Reason")}, yearColumns(years)...)
		t.Columns = append(t.Columns, numberCol("total", "Total"))
		for _, r := range v {
			row := []string{r.Reason}
			for _, y := range years {
				row = append(row, itoa(r.ByYear[y]))
			}
			t.Rows = append(t.Rows, append(row, itoa(r.Total)))
		}

	case CommentAnalysis:
		t.Columns = []Column{textCol("theme", "Theme"), numberCol("count", "Count")}
		for _, g := range v.Themes {
			t.Rows = append(t.Rows, []string{g.Theme, itoa(g.Count)})
		}
		t.Rows = append(t.Rows, []string{"Unthemed", itoa(v.UnthemedTotal)})

	case ManagerDeepDive:
		t.Columns = []Column{textCol("section", "Section"), textCol("item", "Item"), numberCol("value", "Value")}
		add := func(section, item, value string) { t.Rows = append(t.Rows, []string{section, item, value}) }
		add("Summary", "Leads", itoa(v.Leads))
		add("Summary", "Converted", itoa(v.Converted))
		add("Summary", "Conversion %", num(v.ConversionRate))
		add("Summary", "Revenue", money(v.Revenue))
		add("Summary", "Avg Response (hrs)", num(v.AvgResponseTime))
		for _, g := range v.Pipeline {
			add("Pipeline", g.Grade, itoa(g.Count))
		}
		for _, r := range v.TopLostReasons {
			add("Lost Reasons", r.Reason, itoa(r.Count))
		}
		for _, s := range v.Segments {
			add("Segments", string(s.Segment), money(s.Revenue))
		}
		for _, m := range v.Monthly {
			add("Monthly Leads", m.Label, itoa(m.Leads))
		}
		for _, rc := range v.ResponseDistribution {
			add("Response", rc.Range, itoa(rc.Count))
		}

	default:
		return nil, fmt.Errorf("tabulate %q: unsupported result type %T", title, value)
	}
	return t, nil
}

func yearColumns(years []int) []Column {
	cols := make([]Column, len(years))
	for i, y := range years {
		cols[i] = numberCol("y"+itoa(y), itoa(y))
	}
	return cols
}

func countYears(rows []MonthlyCounts) []int {
	seen := make(map[int]bool)
	for _, r := range rows {
		for y := range r.Counts {
			seen[y] = true
		}
	}
	return sortedKeys(seen)
}

func distributionYears(rows []DistributionRow) []int {
	seen := make(map[int]bool)
	for _, r := range rows {
		for y := range r.Counts {
			seen[y] = true
		}
	}
	return sortedKeys(seen)
}

func lostYears(rows []LostRow) []int {
	seen := make(map[int]bool)
	for _, r := range rows {
		for y := range r.ByYear {
			seen[y] = true
		}
	}
	return sortedKeys(seen)
}
