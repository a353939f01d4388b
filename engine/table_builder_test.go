package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TABLE BUILDER TESTS
// ============================================================================

func TestBuildBookingTable(t *testing.T) {
	v := fixtureDataset(t).All().Where((*BookingRecord).IsConverted)
	table := BuildBookingTable("Converted", v, false)

	require.Len(t, table.Columns, 15)
	assert.Equal(t, "Booking #", table.Columns[0].Label)
	require.Len(t, table.Rows, 3)

	row := table.Rows[0]
	assert.Equal(t, "B1", row[0])
	assert.Equal(t, "Acme Offsite", row[1])
	assert.Equal(t, "Group Sales", row[2])
	assert.Equal(t, "Grade 2", row[4])
	assert.Equal(t, "2024-03-15", row[5])
	assert.Equal(t, "$20,000", row[9])
	assert.Equal(t, "N/A", table.Rows[1][1])

	require.NotNil(t, table.Summary)
	assert.Equal(t, "3 bookings", table.Summary.Label)
	assert.Equal(t, "$40,000", table.Summary.Values["groupRevenue"])
	assert.Equal(t, "180", table.Summary.Values["roomNights"])
}

func TestBuildBookingTableCapsRows(t *testing.T) {
	records := make([]BookingRecord, 0, 120)
	for i := 0; i < 120; i++ {
		records = append(records, booking("N", StatusLost, "", "", func(r *BookingRecord) { r.TotalRevenue = 10 }))
	}
	table := BuildBookingTable("Lost", NewView(records), true)

	assert.Len(t, table.Columns, 16)
	assert.Len(t, table.Rows, DrillRowCap)
	assert.Equal(t, "N/A", table.Rows[0][15])
	assert.Equal(t, "Showing 100 of 120 bookings", table.Summary.Label)
	assert.Equal(t, "$1,200", table.Summary.Values["groupRevenue"])
}

func TestTabulate(t *testing.T) {
	ds := fixtureDataset(t)

	kpi, err := Tabulate("KPI", KPI(ds.All()))
	require.NoError(t, err)
	assert.Equal(t, []string{"Total Leads", "7"}, kpi.Rows[0])

	lost, err := Tabulate("Lost", LostAnalysis(ds.All(), ds.Years(), 15, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"reason", "y2023", "y2024", "total"}, columnKeys(lost))
	assert.Equal(t, []string{"Price", "0", "1", "1"}, lost.Rows[0])

	hm, err := Tabulate("Heat", ArrivalHeatMap(ds.All(), []int{2024}))
	require.NoError(t, err)
	assert.Len(t, hm.Columns, 14)
	assert.Equal(t, "50", hm.Rows[0][6])

	variance, err := Tabulate("Variance", Variances(ds.All(), Filter{Years: []int{2024}}))
	require.NoError(t, err)
	assert.Equal(t, "n/a", variance.Rows[7][3]) // rental revenue

	_, err = Tabulate("bad", 42)
	assert.Error(t, err)
}

func columnKeys(t *TableData) []string {
	keys := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		keys[i] = c.Key
	}
	return keys
}
