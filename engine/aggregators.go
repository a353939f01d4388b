package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// AGGREGATORS — Sums, Averages, Rounding over Views
// ============================================================================
// Money and room-night totals accumulate in decimal and convert back to
// float64 once per result. Every ratio is guarded: a zero denominator yields
// 0, never NaN or Inf.
// ============================================================================

// accumulator sums float inputs exactly.
type accumulator struct {
	total decimal.Decimal
}

func (a *accumulator) Add(v float64) {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	a.total = a.total.Add(decimal.NewFromFloat(v))
}

func (a *accumulator) Value() float64 {
	f, _ := a.total.Float64()
	return f
}

// SumField sums one numeric field over a view.
func SumField(v View, field func(*BookingRecord) float64) float64 {
	var acc accumulator
	v.Each(func(r *BookingRecord) { acc.Add(field(r)) })
	return acc.Value()
}

// SumLines sums room nights and the four revenue lines over a view.
func SumLines(v View) RevenueLines {
	var rn, group, event, fnb, rental accumulator
	v.Each(func(r *BookingRecord) {
		rn.Add(r.RoomNight)
		group.Add(r.TotalRevenue)
		event.Add(r.EventRevenue)
		fnb.Add(r.FnBRevenue)
		rental.Add(r.RentalRevenue)
	})
	return RevenueLines{
		RoomNights:    rn.Value(),
		GroupRevenue:  group.Value(),
		EventRevenue:  event.Value(),
		FnBRevenue:    fnb.Value(),
		RentalRevenue: rental.Value(),
	}
}

// AvgPositive averages a field over the records where it is > 0. Returns the
// average and how many records contributed.
func AvgPositive(v View, field func(*BookingRecord) float64) (float64, int) {
	var acc accumulator
	n := 0
	v.Each(func(r *BookingRecord) {
		if x := field(r); x > 0 && !math.IsInf(x, 1) {
			acc.Add(x)
			n++
		}
	})
	if n == 0 {
		return 0, 0
	}
	return acc.Value() / float64(n), n
}

// AvgLeadTime averages the positive lead times of a view, in days.
func AvgLeadTime(v View) float64 {
	avg, _ := AvgPositive(v, func(r *BookingRecord) float64 {
		days, _ := r.PositiveLeadTime()
		return float64(days)
	})
	return avg
}

// AvgResponseTime averages the positive response times of a view, in hours.
func AvgResponseTime(v View) float64 {
	avg, _ := AvgPositive(v, func(r *BookingRecord) float64 { return r.LeadResponseTime })
	return avg
}

// Field selectors shared by reducers and drill-down summaries.
func roomNightOf(r *BookingRecord) float64    { return r.RoomNight }
func revenueOf(r *BookingRecord) float64      { return r.TotalRevenue }
func eventRevenueOf(r *BookingRecord) float64 { return r.EventRevenue }

// Ratio returns a/b, or 0 when b is 0.
func Ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Percent returns part/whole×100 to one decimal, 0 when whole is 0.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return Round1(float64(part) / float64(whole) * 100)
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}

// Round0 rounds half away from zero to a whole number.
func Round0(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(0).Float64()
	return f
}

// uniqueYears returns the distinct years ascending.
func uniqueYears(years []int) []int {
	seen := make(map[int]bool, len(years))
	for _, y := range years {
		seen[y] = true
	}
	return sortedKeys(seen)
}

// ============================================================================
// FORMATTING
// ============================================================================

// FormatCurrency formats whole dollars with comma separators: "$12,500".
func FormatCurrency(amount float64) string {
	rounded := int(Round0(amount))
	if rounded < 0 {
		return "-$" + FormatInt(-rounded)
	}
	return "$" + FormatInt(rounded)
}

// FormatCompactCurrency formats dashboard-style amounts: "$1.2M", "$15K".
func FormatCompactCurrency(amount float64) string {
	abs := math.Abs(amount)
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%s$%.1fM", sign, abs/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%s$%.0fK", sign, abs/1_000)
	default:
		return fmt.Sprintf("%s$%.0f", sign, abs)
	}
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatPercent formats a one-decimal percentage: "12.5%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", Round1(p))
}

// FormatDate formats an optional date as YYYY-MM-DD, "N/A" when absent.
func FormatDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format("2006-01-02")
}

// FormatMonthLabel turns "2024-03" into "Mar 2024".
func FormatMonthLabel(key string) string {
	var year, month int
	if _, err := fmt.Sscanf(key, "%d-%d", &year, &month); err != nil || month < 1 || month > 12 {
		return key
	}
	return fmt.Sprintf("%s %d", MonthNames[month-1], year)
}
