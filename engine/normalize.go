package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/spektr-org/bookinglens/schema"
)

// ============================================================================
// NORMALIZER — Raw Rows → BookingRecords
// ============================================================================
// Column resolution happens once per batch, then every row is read through
// the same schema.Columns. Numbers and dates never fail: bad numeric tokens
// become 0, bad dates become absent. Only the booking-number and internal
// booking-type guards drop a row.
// ============================================================================

// ErrNoValidRecords is returned when no row survives normalization.
var ErrNoValidRecords = errors.New("engine: no valid booking records")

// NormalizeStats counts what happened to a batch.
type NormalizeStats struct {
	Rows          int `json:"rows"`
	Valid         int `json:"valid"`
	MissingNumber int `json:"missingNumber"`
	Internal      int `json:"internal"`
}

// Rejected is the number of dropped rows.
func (s NormalizeStats) Rejected() int { return s.MissingNumber + s.Internal }

// Load resolves columns from the first row's keys, normalizes every row and
// indexes the result. Row maps carry no column order, so keys are sorted
// before fuzzy detection; use LoadWithHeaders to honor the file's order.
func Load(rows []RawRow, opts ...Option) (*Dataset, error) {
	var headers []string
	if len(rows) > 0 {
		for k := range rows[0] {
			headers = append(headers, k)
		}
		sort.Strings(headers)
	}
	return LoadWithHeaders(headers, rows, opts...)
}

// LoadWithHeaders is Load with an explicit header order for column detection.
func LoadWithHeaders(headers []string, rows []RawRow, opts ...Option) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrNoValidRecords)
	}
	cols, err := ResolveColumns(headers, opts...)
	if err != nil {
		return nil, err
	}

	records, stats := Normalize(rows, cols)

	fnb, _ := cols.Lookup(schema.FieldFnBRevenue)
	rental, _ := cols.Lookup(schema.FieldRentalRevenue)
	log.Info().
		Int("rows", stats.Rows).
		Int("valid", stats.Valid).
		Int("rejected", stats.Rejected()).
		Str("fnbColumn", fnb.Header).
		Str("fnbSource", string(fnb.Source)).
		Str("rentalColumn", rental.Header).
		Str("rentalSource", string(rental.Source)).
		Strs("missingColumns", cols.Missing()).
		Msg("📥 booking batch normalized")

	if len(records) == 0 {
		return nil, ErrNoValidRecords
	}

	ds := NewDataset(records, opts...)
	ds.columns = cols
	ds.stats = stats
	return ds, nil
}

// ResolveColumns resolves a header row with the column aliases carried by
// opts, the same plan LoadWithHeaders reads through.
func ResolveColumns(headers []string, opts ...Option) (schema.Columns, error) {
	cols, err := schema.Resolve(headers, applyOptions(opts).Aliases)
	if err != nil {
		return schema.Columns{}, fmt.Errorf("resolve columns: %w", err)
	}
	return cols, nil
}

// Normalize converts raw rows in input order, skipping guarded rows.
func Normalize(rows []RawRow, cols schema.Columns) ([]BookingRecord, NormalizeStats) {
	stats := NormalizeStats{Rows: len(rows)}
	records := make([]BookingRecord, 0, len(rows))
	for _, row := range rows {
		rec, reason := NormalizeRow(row, cols)
		switch reason {
		case RejectMissingNumber:
			stats.MissingNumber++
			continue
		case RejectInternal:
			stats.Internal++
			continue
		}
		records = append(records, rec)
	}
	stats.Valid = len(records)
	return records, stats
}

// RejectReason says why NormalizeRow dropped a row.
type RejectReason int

const (
	Accepted RejectReason = iota
	RejectMissingNumber
	RejectInternal
)

// NormalizeRow converts one row. The second result is not Accepted when the
// row must be dropped.
func NormalizeRow(row RawRow, cols schema.Columns) (BookingRecord, RejectReason) {
	number := row[cols.BookingNumber]
	if isMissingToken(number) {
		return BookingRecord{}, RejectMissingNumber
	}
	bookingType := strings.TrimSpace(row[cols.BookingType])
	if strings.Contains(strings.ToLower(bookingType), "internal") {
		return BookingRecord{}, RejectInternal
	}

	grade := int(ParseNumber(row[cols.BookingGrade]))
	marketSegment := strings.TrimSpace(row[cols.MarketSegment])

	rec := BookingRecord{
		BookingNumber:    number,
		BookingType:      bookingType,
		BookingCategory:  BookingCategoryOf(bookingType),
		BookingSource:    strings.TrimSpace(row[cols.BookingSource]),
		Status:           strings.TrimSpace(row[cols.BookingStatus]),
		Grade:            grade,
		GradeLabel:       GradeLabel(grade),
		MarketSegment:    marketSegment,
		SegmentCategory:  SegmentCategoryOf(marketSegment),
		SalesManager:     row[cols.SalesManager],
		RoomNight:        ParseNumber(row[cols.RoomNight]),
		TotalRevenue:     ParseNumber(row[cols.TotalRevenue]),
		EventRevenue:     ParseNumber(row[cols.TotalEventRevenue]),
		FnBRevenue:       ParseNumber(row[cols.FnBRevenue]),
		RentalRevenue:    ParseNumber(row[cols.RentalRevenue]),
		AvgRate:          ParseNumber(row[cols.AverageRate]),
		PeakRoomNights:   ParseNumber(row[cols.PeakRoomNights]),
		LeadResponseTime: ParseNumber(row[cols.LeadResponseTime]),
		TerminalReason:   row[cols.TerminalReason],
		PostAsName:       row[cols.PostAsName],
		OrganizationName: row[cols.OrganizationName],
	}

	if t, ok := ParseDate(row[cols.ArrivalDate]); ok {
		rec.ArrivalDate = &t
		rec.ArrivalYear, rec.ArrivalMonthNum, rec.ArrivalMonth = calendarParts(t)
	}
	if t, ok := ParseDate(row[cols.EnteredDate]); ok {
		rec.EnteredDate = &t
		rec.EnteredYear, rec.EnteredMonthNum, rec.EnteredMonth = calendarParts(t)
	}
	if rec.ArrivalDate != nil && rec.EnteredDate != nil {
		days := int(math.Floor(rec.ArrivalDate.Sub(*rec.EnteredDate).Hours() / 24))
		rec.LeadTime = &days
	}

	return rec, Accepted
}

func isMissingToken(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "nan"
}

func calendarParts(t time.Time) (year, monthNum int, monthKey string) {
	year, monthNum = t.Year(), int(t.Month())
	return year, monthNum, MonthKey(year, monthNum)
}

// MonthKey formats a "YYYY-MM" key.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ============================================================================
// NUMBERS
// ============================================================================

// ParseNumber strips "$" and "," and reads the longest leading decimal
// number, so "$1,250.50" → 1250.5 and "12 hrs" → 12. Anything without a
// numeric prefix, or too large for a float64, is 0.
func ParseNumber(s string) float64 {
	if s == "" {
		return 0
	}
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(s)
	prefix := numericPrefix(strings.TrimSpace(cleaned))
	if prefix == "" {
		return 0
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0
	}
	return f
}

// numericPrefix returns the leading [sign] digits [. digits] [e [sign] digits]
// part of s, or "" when s does not start with a number.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	intStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	digits := i - intStart
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if frac := j - i - 1; frac > 0 || digits > 0 {
			digits += frac
			i = j
		}
	}
	if digits == 0 {
		return ""
	}
	end := strings.TrimSuffix(s[:i], ".")
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > expStart {
			end = end + s[i:j]
		}
	}
	return end
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ============================================================================
// DATES
// ============================================================================

// dateLayouts are tried in order. All results are UTC.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006",
	"1/2/06",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
	"1/2/06 15:04",
	"1/2/06 3:04 PM",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006/01/02",
	"2006/1/2",
}

// ParseDate parses the supported date layouts. "" and "nan" are absent.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "nan" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
