package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// --- Test Fixtures ---

// booking builds a normalized record; mod runs before derived fields are set.
func booking(number, status, entered, arrival string, mod func(*BookingRecord)) BookingRecord {
	r := BookingRecord{
		BookingNumber: number,
		BookingType:   "Group",
		Status:        status,
		MarketSegment: "Corporate",
	}
	if mod != nil {
		mod(&r)
	}
	r.BookingCategory = BookingCategoryOf(r.BookingType)
	r.SegmentCategory = SegmentCategoryOf(r.MarketSegment)
	r.GradeLabel = GradeLabel(r.Grade)
	if t, ok := ParseDate(arrival); ok {
		r.ArrivalDate = &t
		r.ArrivalYear, r.ArrivalMonthNum, r.ArrivalMonth = calendarParts(t)
	}
	if t, ok := ParseDate(entered); ok {
		r.EnteredDate = &t
		r.EnteredYear, r.EnteredMonthNum, r.EnteredMonth = calendarParts(t)
	}
	if r.ArrivalDate != nil && r.EnteredDate != nil {
		days := int(math.Floor(r.ArrivalDate.Sub(*r.EnteredDate).Hours() / 24))
		r.LeadTime = &days
	}
	return r
}

// fixtureRecords is a small two-year book of business.
//
//	B1 Definite  2024-01 → 2024-03  Anna     group     lead 65
//	B2 Lost      2024-01 → 2024-06  Whitney  social    lead 133  "Rate was too expensive"
//	B3 Tentative 2024-02 → 2024-06  Anna     grade 3   lead 126
//	B4 Actual    2023-01 → 2023-05  Whitney  catering  lead 106
//	B5 Turn Down 2023-02 → 2023-02  Jordan   social    lead 19   "Other - C-Comments"
//	B6 Definite  2023-01 → 2024-01  Anna     group     lead 370
//	B7 Lost      2024-03 → (none)   Jordan             no reason
func fixtureRecords() []BookingRecord {
	return []BookingRecord{
		booking("B1", StatusDefinite, "2024-01-10", "2024-03-15", func(r *BookingRecord) {
			r.Grade = 2
			r.SalesManager = "Anna Lawless"
			r.RoomNight, r.TotalRevenue = 100, 20000
			r.EventRevenue, r.FnBRevenue, r.RentalRevenue = 5000, 3000, 2000
			r.LeadResponseTime, r.PeakRoomNights, r.AvgRate = 1.5, 25, 180
			r.PostAsName = "Acme Offsite"
		}),
		booking("B2", StatusLost, "2024-01-20", "2024-06-01", func(r *BookingRecord) {
			r.Grade = 1
			r.MarketSegment = "SMERF"
			r.SalesManager = "Whitney Britton"
			r.TerminalReason = "Rate was too expensive"
			r.LeadResponseTime, r.PeakRoomNights = 30, 8
		}),
		booking("B3", StatusTentative, "2024-02-05", "2024-06-10", func(r *BookingRecord) {
			r.Grade = 3
			r.SalesManager = "Anna Lawless"
			r.RoomNight, r.TotalRevenue = 40, 8000
			r.LeadResponseTime, r.PeakRoomNights = 3, 40
		}),
		booking("B4", StatusActual, "2023-01-15", "2023-05-01", func(r *BookingRecord) {
			r.BookingType = "Local Event"
			r.SalesManager = "Whitney Britton"
			r.TotalRevenue, r.EventRevenue, r.FnBRevenue = 4000, 6000, 6000
			r.LeadResponseTime = 10
		}),
		booking("B5", StatusTurnDown, "2023-02-01", "2023-02-20", func(r *BookingRecord) {
			r.MarketSegment = "Social"
			r.SalesManager = "Jordan Lee"
			r.TerminalReason = "Other - C-Comments"
		}),
		booking("B6", StatusDefinite, "2023-01-25", "2024-01-30", func(r *BookingRecord) {
			r.SalesManager = "Anna Lawless"
			r.RoomNight, r.TotalRevenue, r.EventRevenue = 80, 16000, 2000
			r.PeakRoomNights = 101
		}),
		booking("B7", StatusLost, "2024-03-01", "", func(r *BookingRecord) {
			r.SalesManager = "Jordan Lee"
		}),
	}
}

func fixtureDataset(t *testing.T, opts ...Option) *Dataset {
	t.Helper()
	ds := NewDataset(fixtureRecords(), opts...)
	require.Equal(t, 7, ds.Len())
	return ds
}
