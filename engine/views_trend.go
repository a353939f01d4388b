package engine

// ============================================================================
// TREND VIEWS — Per-year and per-month series
// ============================================================================

// YearEventRevenue is one year of converted event revenue.
type YearEventRevenue struct {
	Year   int     `json:"year"`
	FnB    float64 `json:"fnb"`
	Rental float64 `json:"rental"`
	Total  float64 `json:"total"` // Total Event Revenue column
}

// EventRevenueByYear sums converted F&B, rental and total event revenue per
// entered year, ascending. Bookings without an entered year are skipped.
func EventRevenueByYear(v View) []YearEventRevenue {
	type acc struct{ fnb, rental, total accumulator }
	byYear := make(map[int]*acc)
	v.Each(func(r *BookingRecord) {
		if !r.IsConverted() || r.EnteredYear == 0 {
			return
		}
		a, ok := byYear[r.EnteredYear]
		if !ok {
			a = &acc{}
			byYear[r.EnteredYear] = a
		}
		a.fnb.Add(r.FnBRevenue)
		a.rental.Add(r.RentalRevenue)
		a.total.Add(r.EventRevenue)
	})

	out := make([]YearEventRevenue, 0, len(byYear))
	for _, y := range sortedKeys(byYear) {
		a := byYear[y]
		out = append(out, YearEventRevenue{Year: y, FnB: a.fnb.Value(), Rental: a.rental.Value(), Total: a.total.Value()})
	}
	return out
}

// MonthlyCounts is one calendar month with a lead count per year.
type MonthlyCounts struct {
	MonthNum int         `json:"monthNum"`
	Month    string      `json:"month"`
	Counts   map[int]int `json:"counts"`
}

// enteredCounts tallies leads by entered year and month.
func enteredCounts(v View) map[int]*[13]int {
	counts := make(map[int]*[13]int)
	v.Each(func(r *BookingRecord) {
		if r.EnteredYear == 0 || r.EnteredMonthNum == 0 {
			return
		}
		c, ok := counts[r.EnteredYear]
		if !ok {
			c = &[13]int{}
			counts[r.EnteredYear] = c
		}
		c[r.EnteredMonthNum]++
	})
	return counts
}

func countAt(counts map[int]*[13]int, year, month int) int {
	if c, ok := counts[year]; ok {
		return c[month]
	}
	return 0
}

// LeadVolumeByMonth returns twelve rows (Jan..Dec) with one count per year.
// Every lead counts, whatever its status.
func LeadVolumeByMonth(v View, years []int) []MonthlyCounts {
	counts := enteredCounts(v)
	out := make([]MonthlyCounts, 12)
	for m := 1; m <= 12; m++ {
		row := MonthlyCounts{MonthNum: m, Month: MonthNames[m-1], Counts: make(map[int]int, len(years))}
		for _, y := range years {
			row.Counts[y] = countAt(counts, y, m)
		}
		out[m-1] = row
	}
	return out
}

// MonthGrowth compares one calendar month across two years.
type MonthGrowth struct {
	MonthNum int     `json:"monthNum"`
	Month    string  `json:"month"`
	Growth   float64 `json:"growth"` // %, one decimal
	Prior    int     `json:"prior"`
	Current  int     `json:"current"`
	Years    [2]int  `json:"years"`
}

// LeadGrowthByMonth is defined only for exactly two distinct selected years;
// any other selection yields nil. Growth is 0 when the earlier year has no
// leads.
func LeadGrowthByMonth(v View, years []int) []MonthGrowth {
	pair := uniqueYears(years)
	if len(pair) != 2 {
		return nil
	}
	y1, y2 := pair[0], pair[1]

	counts := enteredCounts(v)
	out := make([]MonthGrowth, 12)
	for m := 1; m <= 12; m++ {
		prior, current := countAt(counts, y1, m), countAt(counts, y2, m)
		growth := 0.0
		if prior > 0 {
			growth = Round1(float64(current-prior) / float64(prior) * 100)
		}
		out[m-1] = MonthGrowth{
			MonthNum: m, Month: MonthNames[m-1],
			Growth: growth, Prior: prior, Current: current,
			Years: [2]int{y1, y2},
		}
	}
	return out
}

// YoYMonthly lists only the months that have leads, ascending, with a count
// per year present in the view.
func YoYMonthly(v View) []MonthlyCounts {
	counts := enteredCounts(v)
	years := sortedKeys(counts)
	var out []MonthlyCounts
	for m := 1; m <= 12; m++ {
		row := MonthlyCounts{MonthNum: m, Month: MonthNames[m-1], Counts: make(map[int]int)}
		for _, y := range years {
			if n := counts[y][m]; n > 0 {
				row.Counts[y] = n
			}
		}
		if len(row.Counts) > 0 {
			out = append(out, row)
		}
	}
	return out
}

// ============================================================================
// SEGMENT MIX
// ============================================================================

// SegmentMix is a Corporate/Social split with percentages of the total.
type SegmentMix struct {
	Corporate    int     `json:"corporate"`
	Social       int     `json:"social"`
	Total        int     `json:"total"`
	CorporatePct float64 `json:"corporatePct"`
	SocialPct    float64 `json:"socialPct"`
}

func (m *SegmentMix) add(s SegmentCategory) {
	if s == SegmentSocial {
		m.Social++
	} else {
		m.Corporate++
	}
	m.Total++
}

func (m *SegmentMix) finish() {
	m.CorporatePct = Percent(m.Corporate, m.Total)
	m.SocialPct = Percent(m.Social, m.Total)
}

// SegmentYear is one entered year of the segment comparison.
type SegmentYear struct {
	Year int `json:"year"`
	SegmentMix
}

// SegmentComparison counts Corporate vs Social leads per entered year,
// ascending. Bookings without an entered year are skipped.
func SegmentComparison(v View) []SegmentYear {
	byYear := make(map[int]*SegmentMix)
	v.Each(func(r *BookingRecord) {
		if r.EnteredYear == 0 {
			return
		}
		mix, ok := byYear[r.EnteredYear]
		if !ok {
			mix = &SegmentMix{}
			byYear[r.EnteredYear] = mix
		}
		mix.add(r.SegmentCategory)
	})
	out := make([]SegmentYear, 0, len(byYear))
	for _, y := range sortedKeys(byYear) {
		mix := byYear[y]
		mix.finish()
		out = append(out, SegmentYear{Year: y, SegmentMix: *mix})
	}
	return out
}

// SegmentMonth is one arrival month of a segment drill-down.
type SegmentMonth struct {
	MonthNum int    `json:"monthNum"`
	Month    string `json:"month"`
	SegmentMix
}

// SegmentMonthly splits the bookings arriving in one year by arrival month,
// twelve rows Jan..Dec.
func SegmentMonthly(v View, arrivalYear int) []SegmentMonth {
	var mixes [13]SegmentMix
	v.Each(func(r *BookingRecord) {
		if r.ArrivalYear != arrivalYear || r.ArrivalMonthNum == 0 {
			return
		}
		mixes[r.ArrivalMonthNum].add(r.SegmentCategory)
	})
	out := make([]SegmentMonth, 12)
	for m := 1; m <= 12; m++ {
		mix := mixes[m]
		mix.finish()
		out[m-1] = SegmentMonth{MonthNum: m, Month: MonthNames[m-1], SegmentMix: mix}
	}
	return out
}
