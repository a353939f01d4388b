package engine

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ============================================================================
// DASHBOARD — Memoized View Graph
// ============================================================================
// Entry point: NewDashboard(ds, opts...)
//
// Each view is a node keyed by name. A node's fingerprint is the dataset ID
// plus the JSON of exactly the filter state it reads, so changing one local
// filter recomputes one node and leaves every other cached value alone.
//
// Filter state is replaced, never edited in place. Readers snapshot it under
// a read lock; each node serializes its own recompute, so independent views
// can be computed concurrently.
// ============================================================================

// Dashboard holds one dataset, the current filter state and the view cache.
type Dashboard struct {
	ds  *Dataset
	cfg config

	mu     sync.RWMutex
	global Filter
	local  ViewFilters

	nodesMu sync.Mutex
	nodes   map[string]*memoNode
}

type memoNode struct {
	mu          sync.Mutex
	fingerprint string
	value       any
	recomputes  int
}

// NewDashboard creates a dashboard over ds with every filter open. Options
// override the ones the dataset was loaded with.
func NewDashboard(ds *Dataset, opts ...Option) *Dashboard {
	cfg := *ds.cfg
	for _, opt := range opts {
		opt(&cfg)
	}
	d := &Dashboard{ds: ds, cfg: cfg, nodes: make(map[string]*memoNode)}
	d.local.HeatMap.YearBasis = YearArrival
	return d
}

// Dataset returns the dashboard's dataset.
func (d *Dashboard) Dataset() *Dataset { return d.ds }

// ============================================================================
// FILTER STATE
// ============================================================================

// SetGlobal replaces the global filter. Its years always test entered year.
func (d *Dashboard) SetGlobal(f Filter) {
	f = cloneFilter(f)
	f.YearBasis = YearEntered
	d.mu.Lock()
	d.global = f
	d.mu.Unlock()
}

// Global returns the current global filter.
func (d *Dashboard) Global() Filter {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneFilter(d.global)
}

// SetViewFilter replaces one view's local filter. The heat map's years test
// arrival year; every other view tests entered year. Month-over-month growth
// shares the lead-volume filter.
func (d *Dashboard) SetViewFilter(name ViewName, f Filter) error {
	f = cloneFilter(f)
	f.YearBasis = YearEntered
	if name == ViewHeatMap {
		f.YearBasis = YearArrival
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	slot := d.localSlot(&d.local, name)
	if slot == nil {
		return fmt.Errorf("set filter: view %q has no local filter", name)
	}
	*slot = f
	return nil
}

// ViewFilter returns one view's local filter.
func (d *Dashboard) ViewFilter(name ViewName) (Filter, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	slot := d.localSlot(&d.local, name)
	if slot == nil {
		return Filter{}, fmt.Errorf("view %q has no local filter", name)
	}
	return cloneFilter(*slot), nil
}

func (d *Dashboard) localSlot(vf *ViewFilters, name ViewName) *Filter {
	switch name {
	case ViewGroupCatering:
		return &vf.GroupCatering
	case ViewEventRevenue:
		return &vf.EventRevenue
	case ViewLeadVolume, ViewLeadGrowth:
		return &vf.LeadVolume
	case ViewYoYMonthly:
		return &vf.YoYMonthly
	case ViewSegment:
		return &vf.Segment
	case ViewLeadTime:
		return &vf.LeadTime
	case ViewHeatMap:
		return &vf.HeatMap
	case ViewBlockSize:
		return &vf.BlockSize
	case ViewLost:
		return &vf.Lost
	}
	return nil
}

// HideLostReason removes a reason row from the lost table.
func (d *Dashboard) HideLostReason(label string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !slices.Contains(d.local.HiddenLostReasons, label) {
		d.local.HiddenLostReasons = append(slices.Clone(d.local.HiddenLostReasons), label)
	}
}

// ShowLostReason restores a hidden reason row.
func (d *Dashboard) ShowLostReason(label string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.local.HiddenLostReasons = slices.DeleteFunc(slices.Clone(d.local.HiddenLostReasons),
		func(s string) bool { return s == label })
}

// snapshot copies the filter state for one computation.
func (d *Dashboard) snapshot() (Filter, ViewFilters) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.global, d.local
}

func cloneFilter(f Filter) Filter {
	f.Years = slices.Clone(f.Years)
	f.Grades = slices.Clone(f.Grades)
	return f
}

// ============================================================================
// MEMOIZATION
// ============================================================================

func (d *Dashboard) node(name string) *memoNode {
	d.nodesMu.Lock()
	defer d.nodesMu.Unlock()
	n, ok := d.nodes[name]
	if !ok {
		n = &memoNode{}
		d.nodes[name] = n
	}
	return n
}

func (d *Dashboard) fingerprint(inputs any) string {
	b, err := json.Marshal(inputs)
	if err != nil {
		// unreachable for filter values; force a recompute
		return d.ds.ID.String() + "|" + strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return d.ds.ID.String() + "|" + string(b)
}

// memoize returns the cached value of a node or recomputes it when its
// inputs changed.
func memoize[T any](d *Dashboard, name string, inputs any, compute func() T) T {
	fp := d.fingerprint(inputs)
	n := d.node(name)
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.recomputes > 0 && n.fingerprint == fp {
		return n.value.(T)
	}
	start := time.Now()
	value := compute()
	n.fingerprint, n.value = fp, value
	n.recomputes++
	log.Debug().
		Str("view", name).
		Int("records", d.ds.Len()).
		Int("recomputes", n.recomputes).
		Dur("took", time.Since(start)).
		Msg("🔧 view recomputed")
	return value
}

// Stats returns how many times each node has been computed.
func (d *Dashboard) Stats() map[string]int {
	d.nodesMu.Lock()
	names := make([]string, 0, len(d.nodes))
	nodes := make([]*memoNode, 0, len(d.nodes))
	for name, n := range d.nodes {
		names = append(names, name)
		nodes = append(nodes, n)
	}
	d.nodesMu.Unlock()

	out := make(map[string]int, len(names))
	for i, n := range nodes {
		n.mu.Lock()
		out[names[i]] = n.recomputes
		n.mu.Unlock()
	}
	return out
}

// ============================================================================
// VIEWS
// ============================================================================

// filtered is the globally filtered bookings.
func (d *Dashboard) filtered(global Filter) View {
	return memoize(d, string(ViewFiltered), global, func() View { return d.ds.Apply(global) })
}

// Filtered returns the globally filtered bookings.
func (d *Dashboard) Filtered() View {
	global, _ := d.snapshot()
	return d.filtered(global)
}

// selectedOr returns the filter's years or, when open, fallback.
func selectedOr(f Filter, fallback []int) []int {
	if len(f.Years) > 0 {
		return uniqueYears(f.Years)
	}
	return fallback
}

// KPI is the headline summary over the global filter.
func (d *Dashboard) KPI() KPISummary {
	global, _ := d.snapshot()
	return memoize(d, string(ViewKPI), global, func() KPISummary {
		return KPI(d.filtered(global))
	})
}

// KPIDetails backs the KPI drill-down panels.
func (d *Dashboard) KPIDetails() KPIDetails {
	global, _ := d.snapshot()
	return memoize(d, string(ViewKPIDetails), global, func() KPIDetails {
		return KPIDetailsOf(d.filtered(global), d.ds.Years())
	})
}

// Variance is the year-over-year set; it depends only on the selected years.
func (d *Dashboard) Variance() VarianceSet {
	global, _ := d.snapshot()
	years := Filter{Years: global.Years}
	return memoize(d, string(ViewVariance), years, func() VarianceSet {
		return Variances(d.ds.All(), years)
	})
}

// GroupVsCatering partitions converted bookings under its local filter.
func (d *Dashboard) GroupVsCatering() GroupCateringBreakdown {
	_, local := d.snapshot()
	f := local.GroupCatering
	return memoize(d, string(ViewGroupCatering), f, func() GroupCateringBreakdown {
		return GroupVsCatering(d.ds.Apply(f))
	})
}

// EventRevenue is converted event revenue per entered year.
func (d *Dashboard) EventRevenue() []YearEventRevenue {
	_, local := d.snapshot()
	f := local.EventRevenue
	return memoize(d, string(ViewEventRevenue), f, func() []YearEventRevenue {
		return EventRevenueByYear(d.ds.Apply(f))
	})
}

// LeadVolume is leads per month with one column per selected year (every
// entered year when none is selected).
func (d *Dashboard) LeadVolume() []MonthlyCounts {
	_, local := d.snapshot()
	f := local.LeadVolume
	return memoize(d, string(ViewLeadVolume), f, func() []MonthlyCounts {
		return LeadVolumeByMonth(d.ds.Apply(f), selectedOr(f, d.ds.Years()))
	})
}

// LeadGrowth is month-over-month growth; empty unless exactly two years are
// selected on the lead-volume filter.
func (d *Dashboard) LeadGrowth() []MonthGrowth {
	_, local := d.snapshot()
	f := local.LeadVolume
	return memoize(d, string(ViewLeadGrowth), f, func() []MonthGrowth {
		return LeadGrowthByMonth(d.ds.Apply(f), f.Years)
	})
}

// YoYMonthly compares months across the selected years.
func (d *Dashboard) YoYMonthly() []MonthlyCounts {
	_, local := d.snapshot()
	f := local.YoYMonthly
	return memoize(d, string(ViewYoYMonthly), f, func() []MonthlyCounts {
		return YoYMonthly(d.ds.Apply(f))
	})
}

// SegmentComparison is the Corporate/Social split per entered year.
func (d *Dashboard) SegmentComparison() []SegmentYear {
	_, local := d.snapshot()
	f := local.Segment
	return memoize(d, string(ViewSegment), f, func() []SegmentYear {
		return SegmentComparison(d.ds.Apply(f))
	})
}

// SegmentMonthly is the per-month split of one arrival year, over every
// booking.
func (d *Dashboard) SegmentMonthly(arrivalYear int) []SegmentMonth {
	name := string(ViewSegment) + "/" + strconv.Itoa(arrivalYear)
	return memoize(d, name, arrivalYear, func() []SegmentMonth {
		return SegmentMonthly(d.ds.All(), arrivalYear)
	})
}

// LeadTime is the lead-time distribution per selected year.
func (d *Dashboard) LeadTime() []DistributionRow {
	_, local := d.snapshot()
	f := local.LeadTime
	return memoize(d, string(ViewLeadTime), f, func() []DistributionRow {
		return LeadTimeDistribution(d.ds.Apply(f), selectedOr(f, d.ds.Years()))
	})
}

// HeatMap is the arrival heat map; with no years selected it shows every
// entered or arrival year.
func (d *Dashboard) HeatMap() HeatMap {
	_, local := d.snapshot()
	f := local.HeatMap
	return memoize(d, string(ViewHeatMap), f, func() HeatMap {
		return ArrivalHeatMap(d.ds.Apply(f), selectedOr(f, d.ds.HeatMapYears()))
	})
}

// BlockSize is the block-size distribution.
func (d *Dashboard) BlockSize() []BlockBucket {
	_, local := d.snapshot()
	f := local.BlockSize
	return memoize(d, string(ViewBlockSize), f, func() []BlockBucket {
		return BlockSizeDistribution(d.ds.Apply(f))
	})
}

// Managers scores the allow-listed managers over the global filter.
func (d *Dashboard) Managers() ManagerPerformance {
	global, _ := d.snapshot()
	return memoize(d, string(ViewManagers), global, func() ManagerPerformance {
		return ManagerPerformanceOf(d.filtered(global), d.cfg.AllowedManagers)
	})
}

// ManagerDeepDive drills into one manager over the global filter.
func (d *Dashboard) ManagerDeepDive(name string) ManagerDeepDive {
	global, _ := d.snapshot()
	team := d.Managers().Team
	inputs := struct {
		Global  Filter `json:"global"`
		Manager string `json:"manager"`
	}{global, name}
	return memoize(d, string(ViewManagers)+"/"+name, inputs, func() ManagerDeepDive {
		return DeepDive(d.filtered(global), name, team)
	})
}

// Pipeline is the tentative pipeline by grade over the global filter.
func (d *Dashboard) Pipeline() []GradePipeline {
	global, _ := d.snapshot()
	return memoize(d, string(ViewPipeline), global, func() []GradePipeline {
		return PipelineSnapshot(d.filtered(global))
	})
}

// Lost is the lost-reason table under its local filter, hidden rows removed.
func (d *Dashboard) Lost() []LostRow {
	_, local := d.snapshot()
	inputs := struct {
		Filter Filter   `json:"filter"`
		Hidden []string `json:"hidden"`
	}{local.Lost, local.HiddenLostReasons}
	return memoize(d, string(ViewLost), inputs, func() []LostRow {
		f := inputs.Filter
		return LostAnalysis(d.ds.Apply(f), selectedOr(f, d.ds.Years()), d.cfg.LostReasonCap, inputs.Hidden)
	})
}

// CommentThemes clusters the members of one lost-reason row.
func (d *Dashboard) CommentThemes(lostLabel string) CommentAnalysis {
	_, local := d.snapshot()
	inputs := struct {
		Filter Filter `json:"filter"`
		Label  string `json:"label"`
	}{local.Lost, lostLabel}
	return memoize(d, string(ViewLost)+"/"+lostLabel, inputs, func() CommentAnalysis {
		return AnalyzeComments(d.lostBucket(inputs.Filter, lostLabel), d.cfg.UnthemedCap)
	})
}

func (d *Dashboard) lostBucket(f Filter, label string) View {
	return d.ds.Apply(f).Where(hasLostLabel(label))
}
