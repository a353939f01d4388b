package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// DASHBOARD TESTS
// ============================================================================
// Tests cover:
//   1. Memoization: a view recomputes only when the state it reads changes
//   2. Local filters are independent of each other and of the global filter
//   3. Lost-reason hide/show
//   4. Concurrent readers
// ============================================================================

func TestDashboardMemoizesViews(t *testing.T) {
	d := NewDashboard(fixtureDataset(t))

	first := d.KPI()
	second := d.KPI()
	assert.Equal(t, first, second)
	assert.Equal(t, 1, d.Stats()[string(ViewKPI)])
	assert.Equal(t, 1, d.Stats()[string(ViewFiltered)])

	// same filter value, fresh slices: still cached
	d.SetGlobal(Filter{})
	d.KPI()
	assert.Equal(t, 1, d.Stats()[string(ViewKPI)])

	d.SetGlobal(Filter{Years: []int{2024}})
	k := d.KPI()
	assert.Equal(t, 4, k.TotalLeads)
	assert.Equal(t, 2, d.Stats()[string(ViewKPI)])
}

func TestDashboardLocalFiltersAreIndependent(t *testing.T) {
	d := NewDashboard(fixtureDataset(t))

	d.BlockSize()
	d.LeadTime()
	d.Managers()
	require.NoError(t, d.SetViewFilter(ViewBlockSize, Filter{Segment: "Social"}))

	buckets := d.BlockSize()
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, 1, total) // B2 only
	d.LeadTime()
	d.Managers()

	stats := d.Stats()
	assert.Equal(t, 2, stats[string(ViewBlockSize)])
	assert.Equal(t, 1, stats[string(ViewLeadTime)])
	assert.Equal(t, 1, stats[string(ViewManagers)])

	// global filter leaves local views alone
	d.SetGlobal(Filter{Status: StatusDefinite})
	d.BlockSize()
	d.Managers()
	stats = d.Stats()
	assert.Equal(t, 2, stats[string(ViewBlockSize)])
	assert.Equal(t, 2, stats[string(ViewManagers)])
}

func TestDashboardVarianceReadsYearsOnly(t *testing.T) {
	d := NewDashboard(fixtureDataset(t))
	d.SetGlobal(Filter{Years: []int{2024}})
	set := d.Variance()
	assert.Equal(t, 2024, set.Year)

	d.SetGlobal(Filter{Years: []int{2024}, Status: StatusLost})
	assert.Equal(t, set, d.Variance())
	assert.Equal(t, 1, d.Stats()[string(ViewVariance)])
}

func TestDashboardViewFilters(t *testing.T) {
	d := NewDashboard(fixtureDataset(t))

	hm, err := d.ViewFilter(ViewHeatMap)
	require.NoError(t, err)
	assert.Equal(t, YearArrival, hm.YearBasis)

	require.NoError(t, d.SetViewFilter(ViewLeadGrowth, Filter{Years: []int{2023, 2024}}))
	lv, err := d.ViewFilter(ViewLeadVolume)
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2024}, lv.Years)
	assert.Len(t, d.LeadGrowth(), 12)

	assert.Error(t, d.SetViewFilter(ViewKPI, Filter{}))
	_, err = d.ViewFilter(ViewManagers)
	assert.Error(t, err)

	// caller's slice is not aliased
	years := []int{2023}
	require.NoError(t, d.SetViewFilter(ViewSegment, Filter{Years: years}))
	years[0] = 1999
	seg, err := d.ViewFilter(ViewSegment)
	require.NoError(t, err)
	assert.Equal(t, []int{2023}, seg.Years)
}

func TestDashboardOpenYearSelection(t *testing.T) {
	d := NewDashboard(fixtureDataset(t))

	volume := d.LeadVolume()
	assert.Len(t, volume[0].Counts, 2)
	assert.Nil(t, d.LeadGrowth())
	assert.Len(t, d.HeatMap().Rows, 2)

	require.NoError(t, d.SetViewFilter(ViewLeadVolume, Filter{Years: []int{2024, 2024}}))
	assert.Equal(t, map[int]int{2024: 2}, d.LeadVolume()[0].Counts)
}

func TestDashboardHideLostReason(t *testing.T) {
	d := NewDashboard(fixtureDataset(t))
	require.Len(t, d.Lost(), 3)

	d.HideLostReason("Price")
	d.HideLostReason("Price")
	rows := d.Lost()
	require.Len(t, rows, 2)
	assert.Equal(t, "Other - C-Comments", rows[0].Reason)

	d.ShowLostReason("Price")
	assert.Len(t, d.Lost(), 3)
	assert.Equal(t, 3, d.Stats()[string(ViewLost)])
}

func TestDashboardLostReasonCap(t *testing.T) {
	d := NewDashboard(fixtureDataset(t), WithLostReasonCap(1))
	require.Len(t, d.Lost(), 1)
}

func TestDashboardCommentThemes(t *testing.T) {
	d := NewDashboard(fixtureDataset(t))
	a := d.CommentThemes("Other - C-Comments")
	assert.Empty(t, a.Themes)
	assert.Equal(t, 1, a.UnthemedTotal)
	assert.Equal(t, "Other - C-Comments", a.Unthemed[0].Comment)
	d.CommentThemes("Other - C-Comments")
	assert.Equal(t, 1, d.Stats()[string(ViewLost)+"/Other - C-Comments"])
}

func TestDashboardManagerDeepDive(t *testing.T) {
	d := NewDashboard(fixtureDataset(t), WithAllowedManagers([]string{"Anna Lawless"}))
	require.Len(t, d.Managers().Managers, 1)

	dive := d.ManagerDeepDive("Anna")
	assert.Equal(t, 3, dive.Leads)
	assert.Equal(t, d.Managers().Team, dive.Team)
	assert.Len(t, d.SegmentMonthly(2024), 12)
}

func TestDashboardConcurrentReaders(t *testing.T) {
	d := NewDashboard(fixtureDataset(t))
	d.SetGlobal(Filter{Years: []int{2024}})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.KPI()
			d.Pipeline()
			d.HeatMap()
			d.Lost()
		}()
	}
	wg.Wait()

	stats := d.Stats()
	assert.Equal(t, 1, stats[string(ViewKPI)])
	assert.Equal(t, 1, stats[string(ViewPipeline)])
	assert.Equal(t, 1, stats[string(ViewHeatMap)])
	assert.Equal(t, 1, stats[string(ViewLost)])
	assert.Equal(t, 1, stats[string(ViewFiltered)])
}
