package schema

import (
	"strings"
)

// ============================================================================
// COLUMN RESOLUTION — exact labels + fuzzy revenue columns
// ============================================================================
// Resolution pipeline per batch:
//   1. Index headers by their trimmed label
//   2. Exact lookup for every canonical column
//   3. Explicit alias → pattern match → fallback label for F&B and rental
//
// The first header (in header order) that satisfies a pattern wins.
// ============================================================================

// Field labels used in the report for the two detected columns.
const (
	FieldFnBRevenue    = "F&B Revenue"
	FieldRentalRevenue = "Rental Revenue"
)

// Resolve maps the batch headers onto the booking fields.
func Resolve(headers []string, aliases Aliases) (Columns, error) {
	if len(headers) == 0 {
		return Columns{}, ErrNoHeaders
	}

	byLabel := make(map[string]string, len(headers))
	for _, h := range headers {
		label := strings.TrimSpace(h)
		if _, seen := byLabel[label]; !seen {
			byLabel[label] = h
		}
	}

	var cols Columns
	exact := func(canonical string) string {
		if h, ok := byLabel[canonical]; ok {
			cols.report = append(cols.report, Column{Field: canonical, Header: h, Source: SourceExact})
			return h
		}
		cols.report = append(cols.report, Column{Field: canonical, Header: canonical, Source: SourceMissing})
		return canonical
	}

	cols.BookingNumber = exact(ColBookingNumber)
	cols.BookingType = exact(ColBookingType)
	cols.BookingStatus = exact(ColBookingStatus)
	cols.BookingGrade = exact(ColBookingGrade)
	cols.ArrivalDate = exact(ColArrivalDate)
	cols.EnteredDate = exact(ColEnteredDate)
	cols.MarketSegment = exact(ColMarketSegment)
	cols.PeakRoomNights = exact(ColPeakRoomNights)
	cols.TotalEventRevenue = exact(ColTotalEventRevenue)
	cols.BookingSource = exact(ColBookingSource)
	cols.SalesManager = exact(ColSalesManager)
	cols.RoomNight = exact(ColRoomNight)
	cols.TotalRevenue = exact(ColTotalRevenue)
	cols.LeadResponseTime = exact(ColLeadResponseTime)
	cols.AverageRate = exact(ColAverageRate)
	cols.PostAsName = exact(ColPostAsName)
	cols.OrganizationName = exact(ColOrganizationName)
	cols.TerminalReason = exact(ColTerminalReason)

	fnb := detect(headers, byLabel, aliases.FnB, IsFnBHeader, FnBFallbacks)
	fnb.Field = FieldFnBRevenue
	rental := detect(headers, byLabel, aliases.Rental, IsRentalHeader, RentalFallbacks)
	rental.Field = FieldRentalRevenue
	cols.FnBRevenue = fnb.Header
	cols.RentalRevenue = rental.Header
	cols.report = append(cols.report, fnb, rental)

	return cols, nil
}

// detect resolves one fuzzy column: alias, then pattern, then fallbacks.
func detect(headers []string, byLabel map[string]string, alias string, match func(string) bool, fallbacks []string) Column {
	if alias = strings.TrimSpace(alias); alias != "" {
		if h, ok := byLabel[alias]; ok {
			return Column{Header: h, Source: SourceAlias}
		}
	}
	for _, h := range headers {
		if match(h) {
			return Column{Header: h, Source: SourceFuzzy}
		}
	}
	for _, fb := range fallbacks {
		if h, ok := byLabel[fb]; ok {
			return Column{Header: h, Source: SourceFallback}
		}
	}
	return Column{Header: fallbacks[0], Source: SourceMissing}
}

// IsFnBHeader reports whether a header names a food & beverage revenue column.
func IsFnBHeader(header string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	return strings.Contains(h, "food and beverage") ||
		strings.Contains(h, "food & beverage") ||
		strings.Contains(h, "f&b") ||
		(strings.Contains(h, "event") && strings.Contains(h, "food"))
}

// IsRentalHeader reports whether a header names a venue/meeting-room rental
// revenue column.
func IsRentalHeader(header string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	return strings.Contains(h, "venue rental") ||
		(strings.Contains(h, "venue") && strings.Contains(h, "rental")) ||
		strings.Contains(h, "meeting room rental") ||
		h == "room rental"
}
