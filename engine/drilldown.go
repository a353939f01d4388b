package engine

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ============================================================================
// DRILL-DOWN — Aggregate cell → exact bookings
// ============================================================================
// A drill-down never reads a cached aggregate. It takes the current filter
// state, rebuilds the view's input subset and applies the same predicate the
// reducer used, so the rows always add up to the cell that was clicked.
// ============================================================================

// ErrUnknownCell is returned for a cell kind the resolver does not know.
var ErrUnknownCell = errors.New("engine: unknown drill-down cell")

// CellKind names the aggregate a drill-down starts from.
type CellKind string

const (
	CellEnteredMonth  CellKind = "month"     // Key "2024-03", global filter
	CellHeatMap       CellKind = "heatmap"   // Year + Month, heat-map filter
	CellBlockSize     CellKind = "blocksize" // Key bucket key, block-size filter
	CellPipelineGrade CellKind = "pipeline"  // Key grade label, global filter
	CellManager       CellKind = "manager"   // Key manager name, global filter
	CellLostReason    CellKind = "lost"      // Key reason label, lost filter
	CellCommentTheme  CellKind = "theme"     // Key theme, Bucket lost label
	CellUnthemed      CellKind = "unthemed"  // Bucket lost label
	CellGroupCategory CellKind = "category"  // Key booking category, group/catering filter
	CellSegmentYear   CellKind = "segment"   // Year arrival year, all bookings
)

// Cell identifies one clicked aggregate.
type Cell struct {
	Kind   CellKind `json:"kind"`
	Year   int      `json:"year,omitempty"`
	Month  int      `json:"month,omitempty"`
	Key    string   `json:"key,omitempty"`
	Bucket string   `json:"bucket,omitempty"`
}

// ParseCell reads the "kind:key" notation used by the CLI:
//
//	month:2024-03  heatmap:2025-06  blocksize:11-20  pipeline:Grade 2
//	manager:Anna Lawless  lost:Price  category:Group Sales  segment:2024
//	theme:Rate Too High@Other - C-Comments  unthemed:Other - C-Comments
func ParseCell(s string) (Cell, error) {
	kind, key, ok := strings.Cut(s, ":")
	if !ok || key == "" {
		return Cell{}, fmt.Errorf("drill-down %q: want kind:key", s)
	}
	c := Cell{Kind: CellKind(strings.ToLower(strings.TrimSpace(kind))), Key: strings.TrimSpace(key)}
	switch c.Kind {
	case CellEnteredMonth:
		if _, _, err := parseMonthKey(c.Key); err != nil {
			return Cell{}, err
		}
	case CellHeatMap:
		year, month, err := parseMonthKey(c.Key)
		if err != nil {
			return Cell{}, err
		}
		c.Year, c.Month, c.Key = year, month, ""
	case CellSegmentYear:
		year, err := strconv.Atoi(c.Key)
		if err != nil {
			return Cell{}, fmt.Errorf("drill-down %q: bad year: %w", s, err)
		}
		c.Year, c.Key = year, ""
	case CellCommentTheme:
		theme, bucket, ok := strings.Cut(c.Key, "@")
		if !ok {
			return Cell{}, fmt.Errorf("drill-down %q: want theme@lost-reason", s)
		}
		c.Key, c.Bucket = theme, bucket
	case CellUnthemed:
		c.Bucket, c.Key = c.Key, ""
	case CellBlockSize, CellPipelineGrade, CellManager, CellLostReason, CellGroupCategory:
	default:
		return Cell{}, fmt.Errorf("%w: %q", ErrUnknownCell, kind)
	}
	return c, nil
}

func parseMonthKey(key string) (year, month int, err error) {
	y, m, ok := strings.Cut(key, "-")
	if ok {
		year, err = strconv.Atoi(y)
		if err == nil {
			month, err = strconv.Atoi(m)
		}
	}
	if !ok || err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("bad month key %q: want YYYY-MM", key)
	}
	return year, month, nil
}

// Resolve returns the bookings behind one aggregate cell under the current
// filter state.
func (d *Dashboard) Resolve(c Cell) (View, error) {
	global, local := d.snapshot()
	switch c.Kind {
	case CellEnteredMonth:
		return d.ds.Apply(global).Where(func(r *BookingRecord) bool { return r.EnteredMonth == c.Key }), nil
	case CellHeatMap:
		return d.ds.Apply(local.HeatMap).Where(inHeatCell(c.Year, c.Month)), nil
	case CellBlockSize:
		for _, b := range BlockSizeBuckets {
			if b.Key == c.Key || b.Label == c.Key {
				return d.ds.Apply(local.BlockSize).Where(inBlockBucket(b)), nil
			}
		}
		return View{}, fmt.Errorf("%w: block size %q", ErrUnknownCell, c.Key)
	case CellPipelineGrade:
		return d.ds.Apply(global).Where(inPipelineGrade(c.Key)), nil
	case CellManager:
		if !slices.Contains(d.cfg.AllowedManagers, c.Key) {
			return View{}, fmt.Errorf("%w: manager %q is not on the allow-list", ErrUnknownCell, c.Key)
		}
		return d.ds.Apply(global).Where(isManager(c.Key)), nil
	case CellLostReason:
		return d.lostBucket(local.Lost, c.Key), nil
	case CellCommentTheme:
		return d.lostBucket(local.Lost, c.Bucket).Where(hasCommentTheme(c.Key)), nil
	case CellUnthemed:
		return d.lostBucket(local.Lost, c.Bucket).Where(isUnthemed), nil
	case CellGroupCategory:
		category := CategoryGroupSales
		if foldKey(c.Key) == foldKey(string(CategoryLocalCatering)) {
			category = CategoryLocalCatering
		} else if foldKey(c.Key) != foldKey(string(CategoryGroupSales)) {
			return View{}, fmt.Errorf("%w: category %q", ErrUnknownCell, c.Key)
		}
		return d.ds.Apply(local.GroupCatering).Where(inGroupCategory(category)), nil
	case CellSegmentYear:
		return d.ds.All().Where(func(r *BookingRecord) bool { return r.ArrivalYear == c.Year }), nil
	}
	return View{}, fmt.Errorf("%w: %q", ErrUnknownCell, c.Kind)
}

// DrillSummary is the header line of a drill-down table.
type DrillSummary struct {
	Count        int     `json:"count"`
	Revenue      float64 `json:"revenue"`
	RoomNights   float64 `json:"roomNights"`
	EventRevenue float64 `json:"eventRevenue"`
}

// Summarize totals a drill-down subset (every record, whatever its status).
func Summarize(v View) DrillSummary {
	lines := SumLines(v)
	return DrillSummary{
		Count:        v.Len(),
		Revenue:      lines.GroupRevenue,
		RoomNights:   lines.RoomNights,
		EventRevenue: lines.EventRevenue,
	}
}
