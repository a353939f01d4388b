package engine

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// ============================================================================
// FILTERS — Multi-Axis Booking Filtering
// ============================================================================
// Axes are AND-combined; values within an axis are OR-combined.
// Empty / "all" axis = no restriction.
//
// Dataset.Apply answers a Filter from per-axis posting bitmaps built once at
// load. ApplyFilter evaluates the same predicate record by record and works
// on any View (ad-hoc record lists, drill-down subsets).
// ============================================================================

// postings are the per-axis inverted indexes of one dataset.
type postings struct {
	all      *roaring.Bitmap
	entered  map[int]*roaring.Bitmap
	arrival  map[int]*roaring.Bitmap
	status   map[string]*roaring.Bitmap
	grade    map[string]*roaring.Bitmap
	category map[string]*roaring.Bitmap
	segment  map[string]*roaring.Bitmap

	statusOrder []string
	gradeLabels []string
}

func buildPostings(records []BookingRecord) *postings {
	p := &postings{
		all:      roaring.New(),
		entered:  make(map[int]*roaring.Bitmap),
		arrival:  make(map[int]*roaring.Bitmap),
		status:   make(map[string]*roaring.Bitmap),
		grade:    make(map[string]*roaring.Bitmap),
		category: make(map[string]*roaring.Bitmap),
		segment:  make(map[string]*roaring.Bitmap),
	}
	for i := range records {
		r := &records[i]
		id := uint32(i)
		p.all.Add(id)
		if r.EnteredYear != 0 {
			addPosting(p.entered, r.EnteredYear, id)
		}
		if r.ArrivalYear != 0 {
			addPosting(p.arrival, r.ArrivalYear, id)
		}
		if r.Status != "" {
			key := foldKey(r.Status)
			if _, seen := p.status[key]; !seen {
				p.statusOrder = append(p.statusOrder, r.Status)
			}
			addPosting(p.status, key, id)
		}
		gradeKey := foldKey(r.GradeLabel)
		if _, seen := p.grade[gradeKey]; !seen {
			p.gradeLabels = append(p.gradeLabels, r.GradeLabel)
		}
		addPosting(p.grade, gradeKey, id)
		addPosting(p.category, foldKey(string(r.BookingCategory)), id)
		addPosting(p.segment, foldKey(string(r.SegmentCategory)), id)
	}
	return p
}

func addPosting[K comparable](m map[K]*roaring.Bitmap, key K, id uint32) {
	bm, ok := m[key]
	if !ok {
		bm = roaring.New()
		m[key] = bm
	}
	bm.Add(id)
}

// union ORs the posting lists of every key; unknown keys contribute nothing.
func union[K comparable](m map[K]*roaring.Bitmap, keys []K) *roaring.Bitmap {
	out := roaring.New()
	for _, k := range keys {
		if bm, ok := m[k]; ok {
			out.Or(bm)
		}
	}
	return out
}

// match ANDs one union per restricted axis.
func (p *postings) match(f Filter) *roaring.Bitmap {
	result := p.all.Clone()
	if len(f.Years) > 0 {
		byYear := p.entered
		if f.YearBasis == YearArrival {
			byYear = p.arrival
		}
		result.And(union(byYear, f.Years))
	}
	if !isOpenChoice(f.Status) {
		result.And(union(p.status, []string{foldKey(f.Status)}))
	}
	if len(f.Grades) > 0 {
		result.And(union(p.grade, foldKeys(f.Grades)))
	}
	if !isOpenChoice(f.Category) {
		result.And(union(p.category, []string{foldKey(f.Category)}))
	}
	if !isOpenChoice(f.Segment) {
		result.And(union(p.segment, []string{foldKey(f.Segment)}))
	}
	return result
}

// Apply returns the records of the dataset matching every axis of f, in
// input order.
func (d *Dataset) Apply(f Filter) View {
	if f.IsOpen() {
		return d.All()
	}
	return View{records: d.records, indices: d.index.match(f).ToArray()}
}

// ApplyFilter returns the records of view matching every axis of f.
func ApplyFilter(view View, f Filter) View {
	if f.IsOpen() {
		return view
	}
	return view.Where(f.Match)
}

// Match reports whether a single record passes every axis of f.
func (f Filter) Match(r *BookingRecord) bool {
	if len(f.Years) > 0 {
		year := r.EnteredYear
		if f.YearBasis == YearArrival {
			year = r.ArrivalYear
		}
		if year == 0 || !slices.Contains(f.Years, year) {
			return false
		}
	}
	if !isOpenChoice(f.Status) && foldKey(f.Status) != foldKey(r.Status) {
		return false
	}
	if len(f.Grades) > 0 && !slices.Contains(foldKeys(f.Grades), foldKey(r.GradeLabel)) {
		return false
	}
	if !isOpenChoice(f.Category) && foldKey(f.Category) != foldKey(string(r.BookingCategory)) {
		return false
	}
	if !isOpenChoice(f.Segment) && foldKey(f.Segment) != foldKey(string(r.SegmentCategory)) {
		return false
	}
	return true
}

// ErrInvalidFilter is returned by Filter.Validate.
var ErrInvalidFilter = errors.New("engine: invalid filter")

// KnownStatuses are the statuses a Filter may select.
var KnownStatuses = []string{StatusActual, StatusDefinite, StatusTentative, StatusLost, StatusTurnDown, StatusCancelled}

// Validate rejects axis values no booking can carry.
func (f Filter) Validate() error {
	for _, y := range f.Years {
		if y <= 0 {
			return fmt.Errorf("%w: year %d", ErrInvalidFilter, y)
		}
	}
	if !isOpenChoice(f.Status) && !slices.Contains(foldKeys(KnownStatuses), foldKey(f.Status)) {
		return fmt.Errorf("%w: status %q", ErrInvalidFilter, f.Status)
	}
	for _, g := range f.Grades {
		key := foldKey(g)
		if key == foldKey(UngradedLabel) {
			continue
		}
		if _, err := strconv.Atoi(strings.TrimPrefix(key, "grade")); err != nil || !strings.HasPrefix(key, "grade") {
			return fmt.Errorf("%w: grade %q", ErrInvalidFilter, g)
		}
	}
	categories := []string{string(CategoryGroupSales), string(CategoryLocalCatering)}
	if !isOpenChoice(f.Category) && !slices.Contains(foldKeys(categories), foldKey(f.Category)) {
		return fmt.Errorf("%w: category %q", ErrInvalidFilter, f.Category)
	}
	segments := []string{string(SegmentCorporate), string(SegmentSocial)}
	if !isOpenChoice(f.Segment) && !slices.Contains(foldKeys(segments), foldKey(f.Segment)) {
		return fmt.Errorf("%w: segment %q", ErrInvalidFilter, f.Segment)
	}
	return nil
}

// foldKey makes filter values case- and space-insensitive, so "Group Sales",
// "groupsales" and "GroupSales" select the same bookings.
func foldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func foldKeys(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = foldKey(item)
	}
	return out
}
