package engine

// ============================================================================
// DISTRIBUTION VIEWS — Lead time, arrival heat map, block size
// ============================================================================

// Bucket is a closed integer range; Max < 0 means unbounded.
type Bucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

// Contains reports whether v falls inside the bucket.
func (b Bucket) Contains(v float64) bool {
	return v >= float64(b.Min) && (b.Max < 0 || v <= float64(b.Max))
}

// LeadTimeBuckets are the ten lead-time ranges, in days.
var LeadTimeBuckets = []Bucket{
	{Key: "0-30", Label: "0-30", Min: 0, Max: 30},
	{Key: "31-60", Label: "31-60", Min: 31, Max: 60},
	{Key: "61-90", Label: "61-90", Min: 61, Max: 90},
	{Key: "91-120", Label: "91-120", Min: 91, Max: 120},
	{Key: "121-180", Label: "121-180", Min: 121, Max: 180},
	{Key: "181-270", Label: "181-270", Min: 181, Max: 270},
	{Key: "271-365", Label: "271-365", Min: 271, Max: 365},
	{Key: "366-545", Label: "366-545", Min: 366, Max: 545},
	{Key: "546-730", Label: "546-730", Min: 546, Max: 730},
	{Key: "731+", Label: "731+", Min: 731, Max: -1},
}

// BlockSizeBuckets are the eight peak-room-night ranges.
var BlockSizeBuckets = []Bucket{
	{Key: "1-5", Label: "1-5 RN", Min: 1, Max: 5},
	{Key: "6-10", Label: "6-10 RN", Min: 6, Max: 10},
	{Key: "11-20", Label: "11-20 RN", Min: 11, Max: 20},
	{Key: "21-35", Label: "21-35 RN", Min: 21, Max: 35},
	{Key: "36-50", Label: "36-50 RN", Min: 36, Max: 50},
	{Key: "51-75", Label: "51-75 RN", Min: 51, Max: 75},
	{Key: "76-100", Label: "76-100 RN", Min: 76, Max: 100},
	{Key: "101+", Label: "101+ RN", Min: 101, Max: -1},
}

// findBucket returns the index of the first bucket containing v, or -1.
func findBucket(buckets []Bucket, v float64) int {
	for i, b := range buckets {
		if b.Contains(v) {
			return i
		}
	}
	return -1
}

// ============================================================================
// LEAD TIME
// ============================================================================

// DistributionRow is one bucket with a count per year.
type DistributionRow struct {
	Range  string      `json:"range"`
	Counts map[int]int `json:"counts"`
}

// LeadTimeDistribution counts bookings with a positive lead time per bucket
// and entered year. Only the listed years get columns.
func LeadTimeDistribution(v View, years []int) []DistributionRow {
	out := make([]DistributionRow, len(LeadTimeBuckets))
	for i, b := range LeadTimeBuckets {
		out[i] = DistributionRow{Range: b.Key, Counts: make(map[int]int, len(years))}
		for _, y := range years {
			out[i].Counts[y] = 0
		}
	}
	v.Each(func(r *BookingRecord) {
		days, ok := r.PositiveLeadTime()
		if !ok {
			return
		}
		if _, listed := out[0].Counts[r.EnteredYear]; !listed {
			return
		}
		if i := findBucket(LeadTimeBuckets, float64(days)); i >= 0 {
			out[i].Counts[r.EnteredYear]++
		}
	})
	return out
}

// ============================================================================
// ARRIVAL HEAT MAP
// ============================================================================

// HeatCell is one arrival year × month cell.
type HeatCell struct {
	MonthNum  int     `json:"monthNum"`
	Month     string  `json:"month"`
	Count     int     `json:"count"`
	Share     float64 `json:"share"`     // % of the year's arrivals
	Intensity float64 `json:"intensity"` // 0..1, relative to the year's peak share
	Bookings  View    `json:"-"`
}

// HeatRow is one arrival year. Its cells' shares sum to 100 when Total > 0.
type HeatRow struct {
	Year     int          `json:"year"`
	Total    int          `json:"total"`
	MaxShare float64      `json:"maxShare"`
	Cells    [12]HeatCell `json:"cells"`
}

// HeatMap is the arrival-pattern grid.
type HeatMap struct {
	Rows []HeatRow `json:"rows"`
}

// Row returns the row of one year.
func (h HeatMap) Row(year int) (HeatRow, bool) {
	for _, row := range h.Rows {
		if row.Year == year {
			return row, true
		}
	}
	return HeatRow{}, false
}

// inHeatCell selects bookings arriving in one year and month.
func inHeatCell(year, month int) func(*BookingRecord) bool {
	return func(r *BookingRecord) bool { return r.ArrivalYear == year && r.ArrivalMonthNum == month }
}

// ArrivalHeatMap builds one row per listed arrival year. Intensity is scaled
// by the row's own peak share, so every year is readable on its own.
func ArrivalHeatMap(v View, years []int) HeatMap {
	hm := HeatMap{Rows: make([]HeatRow, 0, len(years))}
	for _, y := range years {
		row := HeatRow{Year: y}
		for m := 1; m <= 12; m++ {
			cell := v.Where(inHeatCell(y, m))
			row.Cells[m-1] = HeatCell{MonthNum: m, Month: MonthNames[m-1], Count: cell.Len(), Bookings: cell}
			row.Total += cell.Len()
		}
		for i := range row.Cells {
			c := &row.Cells[i]
			if row.Total > 0 {
				c.Share = float64(c.Count) / float64(row.Total) * 100
			}
			if c.Share > row.MaxShare {
				row.MaxShare = c.Share
			}
		}
		scale := row.MaxShare
		if scale < 1 {
			scale = 1
		}
		for i := range row.Cells {
			c := &row.Cells[i]
			c.Intensity = c.Share / scale
			if c.Intensity > 1 {
				c.Intensity = 1
			}
		}
		hm.Rows = append(hm.Rows, row)
	}
	return hm
}

// ============================================================================
// BLOCK SIZE
// ============================================================================

// BlockBucket is one block-size bucket with its bookings.
type BlockBucket struct {
	Bucket
	Count    int     `json:"count"`
	Revenue  float64 `json:"revenue"`
	Bookings View    `json:"-"`
}

// inBlockBucket selects bookings whose peak room nights fall in b.
func inBlockBucket(b Bucket) func(*BookingRecord) bool {
	return func(r *BookingRecord) bool { return r.PeakRoomNights > 0 && b.Contains(r.PeakRoomNights) }
}

// BlockSizeDistribution groups bookings with positive peak room nights into
// the fixed buckets. Fractional values between buckets are not counted.
func BlockSizeDistribution(v View) []BlockBucket {
	out := make([]BlockBucket, len(BlockSizeBuckets))
	for i, b := range BlockSizeBuckets {
		sub := v.Where(inBlockBucket(b))
		out[i] = BlockBucket{
			Bucket:   b,
			Count:    sub.Len(),
			Revenue:  SumField(sub, revenueOf),
			Bookings: sub,
		}
	}
	return out
}
