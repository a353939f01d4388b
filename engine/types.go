package engine

import (
	"strings"
	"time"
)

// ============================================================================
// BOOKINGLENS ENGINE TYPES — Group-Booking Analytics
// ============================================================================
// Raw rows (column label → string) are normalized once into BookingRecords.
// Everything downstream (filters, views, variances, drill-downs) reads the
// immutable record slice through index views and never mutates it.
// ============================================================================

// RawRow is one already-decoded input row: column label → cell text.
type RawRow map[string]string

// ============================================================================
// CATEGORICAL VALUES
// ============================================================================

// BookingCategory partitions bookings by booking type.
type BookingCategory string

const (
	CategoryGroupSales    BookingCategory = "Group Sales"
	CategoryLocalCatering BookingCategory = "Local Catering"
)

// SegmentCategory partitions bookings by market segment.
type SegmentCategory string

const (
	SegmentCorporate SegmentCategory = "Corporate"
	SegmentSocial    SegmentCategory = "Social"
)

// Booking statuses that drive business logic. Other status strings are kept
// verbatim on the record and only participate in exact status filtering.
const (
	StatusActual    = "Actual"
	StatusDefinite  = "Definite"
	StatusTentative = "Tentative"
	StatusLost      = "Lost"
	StatusTurnDown  = "Turn Down"
	StatusCancelled = "Cancelled"
)

// FilterAll is the open value for single-choice filter axes.
const FilterAll = "all"

// UngradedLabel is the grade label for grade 0.
const UngradedLabel = "Ungraded"

// NoReasonGiven replaces an empty terminal reason in lost-reason grouping.
const NoReasonGiven = "No Reason Given"

// MonthNames are the fixed calendar month labels, January first.
var MonthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ============================================================================
// BOOKING RECORD
// ============================================================================

// BookingRecord is one normalized booking. Immutable once created.
//
// Calendar parts (ArrivalYear, ArrivalMonthNum, ...) are 0 and month keys are
// "" when the source date is absent or unparseable. LeadTime is nil unless
// both dates parsed; it may be zero or negative.
type BookingRecord struct {
	BookingNumber   string          `json:"bookingNumber"`
	BookingType     string          `json:"bookingType"`
	BookingCategory BookingCategory `json:"bookingCategory"`
	BookingSource   string          `json:"bookingSource,omitempty"`
	Status          string          `json:"status"`
	Grade           int             `json:"grade"`
	GradeLabel      string          `json:"gradeLabel"`

	ArrivalDate     *time.Time `json:"arrivalDate"`
	EnteredDate     *time.Time `json:"enteredDate"`
	ArrivalYear     int        `json:"arrivalYear,omitempty"`
	ArrivalMonthNum int        `json:"arrivalMonthNum,omitempty"`
	ArrivalMonth    string     `json:"arrivalMonth,omitempty"` // "2024-03"
	EnteredYear     int        `json:"enteredYear,omitempty"`
	EnteredMonthNum int        `json:"enteredMonthNum,omitempty"`
	EnteredMonth    string     `json:"enteredMonth,omitempty"`

	MarketSegment   string          `json:"marketSegment"`
	SegmentCategory SegmentCategory `json:"segmentCategory"`
	SalesManager    string          `json:"salesManager"`

	RoomNight        float64 `json:"roomNight"`
	TotalRevenue     float64 `json:"totalRevenue"`
	EventRevenue     float64 `json:"eventRevenue"`
	FnBRevenue       float64 `json:"fnbRevenue"`
	RentalRevenue    float64 `json:"rentalRevenue"`
	AvgRate          float64 `json:"avgRate"`
	PeakRoomNights   float64 `json:"peakRoomNights"`
	LeadResponseTime float64 `json:"leadResponseTime"` // hours
	LeadTime         *int    `json:"leadTime"`         // days

	TerminalReason   string `json:"terminalReason"`
	PostAsName       string `json:"postAsName"`
	OrganizationName string `json:"organizationName"`
}

// IsConverted reports whether the booking reached Actual or Definite.
func (r *BookingRecord) IsConverted() bool { return IsConverted(r.Status) }

// IsLost reports whether the booking was Lost, Turned Down or Cancelled.
func (r *BookingRecord) IsLost() bool { return IsLost(r.Status) }

// IsPipeline reports whether the booking is still Tentative.
func (r *BookingRecord) IsPipeline() bool { return IsPipeline(r.Status) }

// PositiveLeadTime returns the lead time and true only when it is > 0.
func (r *BookingRecord) PositiveLeadTime() (int, bool) {
	if r.LeadTime == nil || *r.LeadTime <= 0 {
		return 0, false
	}
	return *r.LeadTime, true
}

// DisplayName prefers the post-as name, then the organization.
func (r *BookingRecord) DisplayName() string {
	if r.PostAsName != "" {
		return r.PostAsName
	}
	return r.OrganizationName
}

// ============================================================================
// FILTERS
// ============================================================================

// YearBasis selects which calendar year a Filter's Years axis tests.
type YearBasis int

const (
	YearEntered YearBasis = iota
	YearArrival
)

// Filter is a conjunction of independent axes. An empty Years/Grades set or
// an empty / "all" Status, Category or Segment leaves that axis open.
//
// The global filter uses Years/Status/Grades/Category. Per-view local
// filters typically use Years/Grades/Segment.
type Filter struct {
	Years     []int     `json:"years,omitempty" mapstructure:"years"`
	YearBasis YearBasis `json:"yearBasis,omitempty" mapstructure:"-"`
	Status    string    `json:"status,omitempty" mapstructure:"status"`
	Grades    []string  `json:"grades,omitempty" mapstructure:"grades"`
	Category  string    `json:"category,omitempty" mapstructure:"category"`
	Segment   string    `json:"segment,omitempty" mapstructure:"segment"`
}

// IsOpen returns true when no axis restricts the collection.
func (f Filter) IsOpen() bool {
	return len(f.Years) == 0 && len(f.Grades) == 0 &&
		isOpenChoice(f.Status) && isOpenChoice(f.Category) && isOpenChoice(f.Segment)
}

// SingleYear returns the selected year when exactly one is selected.
func (f Filter) SingleYear() (int, bool) {
	if len(f.Years) != 1 {
		return 0, false
	}
	return f.Years[0], true
}

func isOpenChoice(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, FilterAll)
}

// ViewName identifies a memoized node of the dashboard graph.
type ViewName string

const (
	ViewFiltered      ViewName = "filtered"
	ViewKPI           ViewName = "kpi"
	ViewKPIDetails    ViewName = "kpi_details"
	ViewVariance      ViewName = "variance"
	ViewGroupCatering ViewName = "group_catering"
	ViewEventRevenue  ViewName = "event_revenue"
	ViewLeadVolume    ViewName = "lead_volume"
	ViewLeadGrowth    ViewName = "lead_growth"
	ViewYoYMonthly    ViewName = "yoy_monthly"
	ViewSegment       ViewName = "segment"
	ViewLeadTime      ViewName = "lead_time"
	ViewHeatMap       ViewName = "heat_map"
	ViewBlockSize     ViewName = "block_size"
	ViewManagers      ViewName = "managers"
	ViewPipeline      ViewName = "pipeline"
	ViewLost          ViewName = "lost"
)

// ViewFilters holds one independent local filter per view. Local filters
// select from the unfiltered dataset; they never compose with the global one.
type ViewFilters struct {
	GroupCatering Filter `json:"groupCatering"`
	EventRevenue  Filter `json:"eventRevenue"`
	LeadVolume    Filter `json:"leadVolume"` // also drives month-over-month growth
	YoYMonthly    Filter `json:"yoyMonthly"`
	Segment       Filter `json:"segment"`
	LeadTime      Filter `json:"leadTime"`
	HeatMap       Filter `json:"heatMap"` // years test the arrival year
	BlockSize     Filter `json:"blockSize"`
	Lost          Filter `json:"lost"`

	HiddenLostReasons []string `json:"hiddenLostReasons,omitempty"`
}

// ============================================================================
// SHARED RESULT SHAPES
// ============================================================================

// RevenueLines are the summed money/volume lines reported by several views.
type RevenueLines struct {
	RoomNights    float64 `json:"roomNights"`
	GroupRevenue  float64 `json:"groupRevenue"` // total booking revenue
	EventRevenue  float64 `json:"eventRevenue"`
	FnBRevenue    float64 `json:"fnbRevenue"`
	RentalRevenue float64 `json:"rentalRevenue"`
}

// RangeCount is one labelled bucket count.
type RangeCount struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// YearValue is one per-year figure.
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}
