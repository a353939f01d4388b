package schema

import "errors"

// ============================================================================
// SCHEMA — Describes which input column feeds which booking field
// ============================================================================
// Booking exports name most columns exactly. The F&B and rental revenue
// columns vary between properties and are detected by name pattern once per
// batch. The engine's Normalizer only ever reads through a resolved Columns.
// ============================================================================

// ErrNoHeaders is returned when a batch carries no column labels at all.
var ErrNoHeaders = errors.New("schema: no column headers")

// Canonical column labels of a booking export.
const (
	ColBookingNumber     = "Booking Number"
	ColBookingType       = "Booking Type"
	ColBookingStatus     = "Booking Status"
	ColBookingGrade      = "Booking Grade"
	ColArrivalDate       = "Arrival Date"
	ColEnteredDate       = "Entered Date"
	ColMarketSegment     = "Market Segment"
	ColPeakRoomNights    = "Peak Room Nights"
	ColTotalEventRevenue = "Total Event Revenue"
	ColBookingSource     = "Booking Source"
	ColSalesManager      = "Sales Manager"
	ColRoomNight         = "Room Night"
	ColTotalRevenue      = "Total Booking Revenue"
	ColLeadResponseTime  = "Lead Response Time(hrs)"
	ColAverageRate       = "Current Average Rate"
	ColPostAsName        = "Booking Post As Name"
	ColOrganizationName  = "Organization Name"
	ColTerminalReason    = "Terminal Status Reason"
)

// Fallback labels tried, in order, when no header matches the F&B / rental
// patterns.
var (
	FnBFallbacks    = []string{"Event Revenue (Food and Beverage)", "F&B Revenue"}
	RentalFallbacks = []string{"Venue Rental", "Meeting Room Rental"}
)

// Aliases pins the fuzzy revenue columns to explicit headers.
type Aliases struct {
	FnB    string `json:"fnb,omitempty" mapstructure:"fnb" yaml:"fnb,omitempty"`
	Rental string `json:"rental,omitempty" mapstructure:"rental" yaml:"rental,omitempty"`
}

// Source says how a column was resolved.
type Source string

const (
	SourceExact    Source = "exact"
	SourceFuzzy    Source = "fuzzy"
	SourceAlias    Source = "alias"
	SourceFallback Source = "fallback"
	SourceMissing  Source = "missing"
)

// Column is one resolved field → header binding.
type Column struct {
	Field  string `json:"field"`  // canonical label or "F&B Revenue"/"Rental Revenue"
	Header string `json:"header"` // the row-map key to read
	Source Source `json:"source"`
}

// Columns is the resolved read plan for one batch. Each field holds the row
// key to read; a missing column still holds its canonical label so lookups
// simply yield "".
type Columns struct {
	BookingNumber     string
	BookingType       string
	BookingStatus     string
	BookingGrade      string
	ArrivalDate       string
	EnteredDate       string
	MarketSegment     string
	PeakRoomNights    string
	FnBRevenue        string
	RentalRevenue     string
	TotalEventRevenue string
	BookingSource     string
	SalesManager      string
	RoomNight         string
	TotalRevenue      string
	LeadResponseTime  string
	AverageRate       string
	PostAsName        string
	OrganizationName  string
	TerminalReason    string

	report []Column
}

// Report lists every field with the header it resolved to and how.
func (c Columns) Report() []Column {
	return append([]Column(nil), c.report...)
}

// Missing returns the canonical labels that no header matched.
func (c Columns) Missing() []string {
	var out []string
	for _, col := range c.report {
		if col.Source == SourceMissing {
			out = append(out, col.Field)
		}
	}
	return out
}

// Lookup returns the resolution entry for a field label.
func (c Columns) Lookup(field string) (Column, bool) {
	for _, col := range c.report {
		if col.Field == field {
			return col, true
		}
	}
	return Column{}, false
}
