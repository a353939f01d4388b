package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// VIEW REDUCER TESTS
// ============================================================================

func TestKPI(t *testing.T) {
	k := KPI(fixtureDataset(t).All())

	assert.Equal(t, 7, k.TotalLeads)
	assert.Equal(t, 3, k.Converted)
	assert.Equal(t, 1, k.Tentative)
	assert.Equal(t, 3, k.Lost)
	assert.Equal(t, 42.9, k.ConversionRate)
	assert.Equal(t, 180.0, k.RoomNights)
	assert.Equal(t, 40000.0, k.GroupRevenue)
	assert.Equal(t, 13000.0, k.EventRevenue)
	assert.Equal(t, 9000.0, k.FnBRevenue)
	assert.Equal(t, 2000.0, k.RentalRevenue)
	assert.Equal(t, 137.0, k.AvgLeadTime) // 819 / 6 = 136.5
	assert.Equal(t, 11.1, k.AvgResponseTime)
	assert.InDelta(t, 13333.33, k.AvgBookingValue, 0.01)
}

func TestKPIEmptyView(t *testing.T) {
	k := KPI(View{})
	assert.Zero(t, k.TotalLeads)
	assert.Zero(t, k.ConversionRate)
	assert.Zero(t, k.AvgBookingValue)
	assert.Zero(t, k.AvgLeadTime)
}

func TestKPIDetails(t *testing.T) {
	ds := fixtureDataset(t)
	d := KPIDetailsOf(ds.All(), ds.Years())

	assert.Equal(t, 42.9, d.Conversion.Overall)
	assert.Equal(t, 60.0, d.Conversion.Corporate) // B1 B4 B6 of B1 B3 B4 B6 B7
	assert.Equal(t, 0.0, d.Conversion.Social)
	assert.Equal(t, 100.0, d.Conversion.Catering)
	require.Len(t, d.Conversion.ByYear, 2)
	assert.Equal(t, YearValue{Year: 2023, Value: 66.7}, d.Conversion.ByYear[0])
	assert.Equal(t, YearValue{Year: 2024, Value: 25.0}, d.Conversion.ByYear[1])

	assert.Equal(t, 76.0, d.LeadTime.Social) // (133 + 19) / 2
	require.Len(t, d.LeadTime.ByYear, 2)
	assert.Equal(t, 2023, d.LeadTime.ByYear[0].Year)

	assert.Equal(t, 180.0, d.RoomNights.Total)
	assert.Equal(t, 60.0, d.RoomNights.AvgPerBooking)
	assert.Equal(t, 180.0, d.RoomNights.Group)
	assert.Equal(t, 0.0, d.RoomNights.Catering)

	assert.Equal(t, 11.1, d.Response.Avg)
	assert.Equal(t, 25.0, d.Response.Under2h)
	assert.Equal(t, 75.0, d.Response.Under24h)
	assert.Equal(t, []RangeCount{
		{"0-2h", 1}, {"2-4h", 1}, {"4-8h", 0}, {"8-24h", 1}, {"24-48h", 1}, {"48h+", 0},
	}, d.Response.Distribution)
}

func TestGroupVsCatering(t *testing.T) {
	b := GroupVsCatering(fixtureDataset(t).All())

	assert.Equal(t, []string{"B1", "B6"}, b.Group.Bookings.BookingNumbers())
	assert.Equal(t, 180.0, b.Group.RoomNights)
	assert.Equal(t, 36000.0, b.Group.GroupRevenue)
	assert.Equal(t, []string{"B4"}, b.Catering.Bookings.BookingNumbers())
	assert.Equal(t, 6000.0, b.Catering.EventRevenue)
	assert.InDelta(t, 38.89, b.SpendPerGroupRoomNight, 0.01)
}

func TestEventRevenueByYear(t *testing.T) {
	got := EventRevenueByYear(fixtureDataset(t).All())
	assert.Equal(t, []YearEventRevenue{
		{Year: 2023, FnB: 6000, Rental: 0, Total: 8000},
		{Year: 2024, FnB: 3000, Rental: 2000, Total: 5000},
	}, got)
}

func TestLeadVolumeAndGrowth(t *testing.T) {
	ds := fixtureDataset(t)

	volume := LeadVolumeByMonth(ds.All(), []int{2023, 2024})
	require.Len(t, volume, 12)
	assert.Equal(t, map[int]int{2023: 2, 2024: 2}, volume[0].Counts)
	assert.Equal(t, map[int]int{2023: 1, 2024: 1}, volume[1].Counts)
	assert.Equal(t, map[int]int{2023: 0, 2024: 1}, volume[2].Counts)
	assert.Equal(t, "Dec", volume[11].Month)

	growth := LeadGrowthByMonth(ds.All(), []int{2024, 2023})
	require.Len(t, growth, 12)
	assert.Equal(t, [2]int{2023, 2024}, growth[0].Years)
	assert.Equal(t, 0.0, growth[0].Growth)
	assert.Equal(t, 0.0, growth[2].Growth) // no prior leads in March
	assert.Equal(t, 1, growth[2].Current)

	assert.Nil(t, LeadGrowthByMonth(ds.All(), []int{2024}))
	assert.Nil(t, LeadGrowthByMonth(ds.All(), nil))
	assert.Nil(t, LeadGrowthByMonth(ds.All(), []int{2024, 2024}))
	assert.Len(t, LeadGrowthByMonth(ds.All(), []int{2023, 2024, 2023}), 12)
}

func TestLeadGrowthPercent(t *testing.T) {
	var records []BookingRecord
	for i := 0; i < 4; i++ {
		records = append(records, booking("P", StatusLost, "2023-05-02", "", nil))
	}
	for i := 0; i < 5; i++ {
		records = append(records, booking("C", StatusLost, "2024-05-09", "", nil))
	}
	growth := LeadGrowthByMonth(NewView(records), []int{2023, 2024})
	assert.Equal(t, 25.0, growth[4].Growth)
}

func TestYoYMonthly(t *testing.T) {
	rows := YoYMonthly(fixtureDataset(t).All())
	require.Len(t, rows, 3)
	assert.Equal(t, "Jan", rows[0].Month)
	assert.Equal(t, map[int]int{2024: 1}, rows[2].Counts)
}

func TestSegmentComparison(t *testing.T) {
	rows := SegmentComparison(fixtureDataset(t).All())
	require.Len(t, rows, 2)

	assert.Equal(t, 2023, rows[0].Year)
	assert.Equal(t, 2, rows[0].Corporate)
	assert.Equal(t, 1, rows[0].Social)
	assert.Equal(t, 66.7, rows[0].CorporatePct)

	assert.Equal(t, 3, rows[1].Corporate)
	assert.Equal(t, 25.0, rows[1].SocialPct)
}

func TestSegmentMonthly(t *testing.T) {
	rows := SegmentMonthly(fixtureDataset(t).All(), 2024)
	require.Len(t, rows, 12)
	assert.Equal(t, 1, rows[0].Corporate) // B6 arrives Jan 2024
	assert.Equal(t, 1, rows[5].Corporate)
	assert.Equal(t, 1, rows[5].Social)
	assert.Zero(t, rows[11].Total)
}

func TestLeadTimeDistribution(t *testing.T) {
	rows := LeadTimeDistribution(fixtureDataset(t).All(), []int{2023, 2024})
	require.Len(t, rows, len(LeadTimeBuckets))

	byRange := make(map[string]map[int]int)
	for _, r := range rows {
		byRange[r.Range] = r.Counts
	}
	assert.Equal(t, map[int]int{2023: 1, 2024: 0}, byRange["0-30"])
	assert.Equal(t, map[int]int{2023: 0, 2024: 1}, byRange["61-90"])
	assert.Equal(t, map[int]int{2023: 1, 2024: 0}, byRange["91-120"])
	assert.Equal(t, map[int]int{2023: 0, 2024: 2}, byRange["121-180"])
	assert.Equal(t, map[int]int{2023: 1, 2024: 0}, byRange["366-545"])

	only2024 := LeadTimeDistribution(fixtureDataset(t).All(), []int{2024})
	assert.NotContains(t, only2024[0].Counts, 2023)
}

func TestArrivalHeatMap(t *testing.T) {
	hm := ArrivalHeatMap(fixtureDataset(t).All(), []int{2023, 2024, 2025})
	require.Len(t, hm.Rows, 3)

	row, ok := hm.Row(2024)
	require.True(t, ok)
	assert.Equal(t, 4, row.Total)
	assert.Equal(t, 50.0, row.MaxShare)
	assert.Equal(t, 50.0, row.Cells[5].Share)
	assert.Equal(t, 1.0, row.Cells[5].Intensity)
	assert.Equal(t, 0.5, row.Cells[0].Intensity)
	assert.Equal(t, []string{"B2", "B3"}, row.Cells[5].Bookings.BookingNumbers())

	sum := 0.0
	for _, c := range row.Cells {
		sum += c.Share
	}
	assert.InDelta(t, 100, sum, 1e-9)

	empty, ok := hm.Row(2025)
	require.True(t, ok)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.Cells[0].Intensity)
}

func TestBlockSizeDistribution(t *testing.T) {
	buckets := BlockSizeDistribution(fixtureDataset(t).All())
	require.Len(t, buckets, 8)

	counts := make(map[string]int)
	for _, b := range buckets {
		counts[b.Key] = b.Count
	}
	assert.Equal(t, map[string]int{
		"1-5": 0, "6-10": 1, "11-20": 0, "21-35": 1, "36-50": 1, "51-75": 0, "76-100": 0, "101+": 1,
	}, counts)
	assert.Equal(t, 20000.0, buckets[3].Revenue)
	assert.Equal(t, "21-35 RN", buckets[3].Label)
}

func TestBlockSizeSkipsFractionalGaps(t *testing.T) {
	v := NewView([]BookingRecord{
		booking("F", StatusActual, "", "", func(r *BookingRecord) { r.PeakRoomNights = 5.5 }),
	})
	total := 0
	for _, b := range BlockSizeDistribution(v) {
		total += b.Count
	}
	assert.Zero(t, total)
}

func TestManagerPerformance(t *testing.T) {
	perf := ManagerPerformanceOf(fixtureDataset(t).All(), DefaultAllowedManagers)
	require.Len(t, perf.Managers, 2)

	anna := perf.Managers[0]
	assert.Equal(t, "Anna Lawless", anna.Manager)
	assert.Equal(t, 3, anna.Leads)
	assert.Equal(t, 2, anna.Converted)
	assert.Equal(t, 66.7, anna.ConversionRate)
	assert.Equal(t, 36000.0, anna.Revenue)
	assert.Equal(t, 2.3, anna.AvgResponseTime)
	assert.Equal(t, 180.0, anna.AvgRate)

	whitney := perf.Managers[1]
	assert.Equal(t, "Whitney Britton", whitney.Manager)
	assert.Equal(t, 50.0, whitney.ConversionRate)
	assert.Equal(t, 20.0, whitney.AvgResponseTime)

	assert.Equal(t, 2.5, perf.Team.Leads)
	assert.InDelta(t, 58.35, perf.Team.ConversionRate, 1e-9)
	assert.InDelta(t, 11.15, perf.Team.AvgResponse, 1e-9)
}

func TestManagerPerformanceAllowListIsExact(t *testing.T) {
	perf := ManagerPerformanceOf(fixtureDataset(t).All(), []string{"anna lawless", "Jordan Lee"})
	require.Len(t, perf.Managers, 1)
	assert.Equal(t, "Jordan Lee", perf.Managers[0].Manager)
}

func TestPipelineSnapshot(t *testing.T) {
	v := NewView([]BookingRecord{
		booking("T1", StatusTentative, "", "", nil),
		booking("T2", StatusTentative, "", "", func(r *BookingRecord) { r.Grade = 3; r.RoomNight = 10 }),
		booking("T3", StatusTentative, "", "", func(r *BookingRecord) { r.Grade = 1; r.TotalRevenue = 500 }),
		booking("T4", StatusTentative, "", "", func(r *BookingRecord) { r.Grade = 3; r.RoomNight = 5 }),
		booking("X", StatusDefinite, "", "", func(r *BookingRecord) { r.Grade = 2 }),
	})
	rows := PipelineSnapshot(v)
	require.Len(t, rows, 3)
	assert.Equal(t, "Grade 1", rows[0].Grade)
	assert.Equal(t, 500.0, rows[0].Revenue)
	assert.Equal(t, "Grade 3", rows[1].Grade)
	assert.Equal(t, 2, rows[1].Count)
	assert.Equal(t, 15.0, rows[1].RoomNights)
	assert.Equal(t, UngradedLabel, rows[2].Grade)
}

func TestDeepDive(t *testing.T) {
	ds := fixtureDataset(t)
	team := ManagerPerformanceOf(ds.All(), DefaultAllowedManagers).Team

	d := DeepDive(ds.All(), "whitney", team)
	assert.Equal(t, 2, d.Leads)
	assert.Equal(t, 1, d.Lost)
	assert.Equal(t, []ReasonCount{{Reason: "Rate was too expensive", Count: 1}}, d.TopLostReasons)
	assert.Equal(t, []SegmentRevenue{{Segment: SegmentCorporate, Count: 1, Revenue: 4000}}, d.Segments)
	require.Len(t, d.Monthly, 2)
	assert.Equal(t, "2023-01", d.Monthly[0].Month)
	assert.Equal(t, "Jan 2023", d.Monthly[0].Label)
	assert.Equal(t, 1, d.Monthly[0].Converted)
	assert.Equal(t, team, d.Team)

	none := DeepDive(ds.All(), "  ", team)
	assert.Zero(t, none.Leads)
}

func TestLastMonthsKeepsMostRecent(t *testing.T) {
	var records []BookingRecord
	for m := 1; m <= 12; m++ {
		records = append(records, booking("A", StatusLost, MonthKey(2023, m)+"-01", "", nil))
	}
	records = append(records, booking("B", StatusActual, "2024-02-10", "", nil))
	months := lastMonths(NewView(records), 12)
	require.Len(t, months, 12)
	assert.Equal(t, "2023-02", months[0].Month)
	assert.Equal(t, "2024-02", months[11].Month)
}

func TestLostAnalysis(t *testing.T) {
	ds := fixtureDataset(t)

	rows := LostAnalysis(ds.All(), []int{2023, 2024}, 15, nil)
	require.Len(t, rows, 3)
	assert.Equal(t, "Price", rows[0].Reason)
	assert.Equal(t, map[int]int{2023: 0, 2024: 1}, rows[0].ByYear)
	assert.Equal(t, "Other - C-Comments", rows[1].Reason)
	assert.True(t, rows[1].CommentBucket)
	assert.Equal(t, NoReasonGiven, rows[2].Reason)
	assert.Equal(t, []string{"B7"}, rows[2].Bookings.BookingNumbers())

	capped := LostAnalysis(ds.All(), []int{2024}, 2, []string{"Price"})
	require.Len(t, capped, 1)
	assert.Equal(t, "Other - C-Comments", capped[0].Reason)
}

func TestLostAnalysisOrdersByTotal(t *testing.T) {
	v := NewView([]BookingRecord{
		booking("1", StatusLost, "2024-01-01", "", func(r *BookingRecord) { r.TerminalReason = "Chose a venue downtown" }),
		booking("2", StatusCancelled, "2024-01-01", "", func(r *BookingRecord) { r.TerminalReason = "Budget cut" }),
		booking("3", StatusTurnDown, "2024-01-01", "", func(r *BookingRecord) { r.TerminalReason = "Too expensive" }),
		booking("4", StatusDefinite, "2024-01-01", "", func(r *BookingRecord) { r.TerminalReason = "Too expensive" }),
	})
	rows := LostAnalysis(v, []int{2024}, 15, nil)
	require.Len(t, rows, 2)
	assert.Equal(t, "Price", rows[0].Reason)
	assert.Equal(t, 2, rows[0].Total)
	assert.Equal(t, "Chose a venue downtown", rows[1].Reason)
}

func TestAnalyzeComments(t *testing.T) {
	v := NewView([]BookingRecord{
		booking("1", StatusLost, "", "", func(r *BookingRecord) { r.TerminalReason = "went with a competitor" }),
		booking("2", StatusLost, "", "", func(r *BookingRecord) { r.TerminalReason = "price too high" }),
		booking("3", StatusLost, "", "", func(r *BookingRecord) { r.TerminalReason = "chose another hotel" }),
		booking("4", StatusLost, "", "", func(r *BookingRecord) { r.TerminalReason = "" }),
		booking("5", StatusLost, "", "", func(r *BookingRecord) { r.TerminalReason = "board said no"; r.PostAsName = "Smith Wedding" }),
	})

	a := AnalyzeComments(v, 1)
	require.Len(t, a.Themes, 2)
	assert.Equal(t, ThemeGroup{Theme: "Competition", Count: 2, Bookings: a.Themes[0].Bookings}, a.Themes[0])
	assert.Equal(t, []string{"1", "3"}, a.Themes[0].Bookings.BookingNumbers())
	assert.Equal(t, "Rate Too High", a.Themes[1].Theme)

	assert.Equal(t, 2, a.UnthemedTotal)
	require.Len(t, a.Unthemed, 1)
	assert.Equal(t, UnthemedComment{BookingNumber: "4", Comment: "No comment"}, a.Unthemed[0])
	assert.Equal(t, []string{"4", "5"}, a.UnthemedView.BookingNumbers())
}

func TestAvgPositiveSkipsInfinite(t *testing.T) {
	records := []BookingRecord{
		booking("A", StatusLost, "", "", func(r *BookingRecord) { r.LeadResponseTime = 4 }),
		booking("B", StatusLost, "", "", func(r *BookingRecord) { r.LeadResponseTime = math.Inf(1) }),
		booking("C", StatusLost, "", "", func(r *BookingRecord) { r.LeadResponseTime = 2 }),
	}
	avg, n := AvgPositive(NewView(records), func(r *BookingRecord) float64 { return r.LeadResponseTime })
	assert.Equal(t, 2, n)
	assert.Equal(t, 3.0, avg)
}
