package engine

import (
	"sort"

	"github.com/google/uuid"

	"github.com/spektr-org/bookinglens/schema"
)

// ============================================================================
// DATASET & VIEW — Zero-Copy Booking Access
// ============================================================================
// A Dataset owns one normalized batch. It is never mutated after Load.
//
// A View is an ordered index list into the dataset's record slice. Filters,
// local lenses and drill-downs all return Views; no record is ever copied
// until a caller asks for Records().
// ============================================================================

// Dataset is one loaded batch of bookings plus its filter indexes.
type Dataset struct {
	ID uuid.UUID

	records []BookingRecord
	all     []uint32
	columns schema.Columns
	stats   NormalizeStats
	cfg     *config
	index   *postings
}

// NewDataset wraps already-normalized records. Load is the usual entry point;
// this exists for callers that build records themselves.
func NewDataset(records []BookingRecord, opts ...Option) *Dataset {
	ds := &Dataset{
		ID:      uuid.New(),
		records: records,
		all:     make([]uint32, len(records)),
		cfg:     applyOptions(opts),
		stats:   NormalizeStats{Rows: len(records), Valid: len(records)},
	}
	for i := range ds.all {
		ds.all[i] = uint32(i)
	}
	ds.index = buildPostings(records)
	return ds
}

// Len returns the number of valid records.
func (d *Dataset) Len() int { return len(d.records) }

// All returns the unfiltered view.
func (d *Dataset) All() View { return View{records: d.records, indices: d.all} }

// Records returns a copy of every normalized record, in input order.
func (d *Dataset) Records() []BookingRecord {
	return append([]BookingRecord(nil), d.records...)
}

// Columns returns the column resolution used for this batch.
func (d *Dataset) Columns() schema.Columns { return d.columns }

// Stats returns the normalization counters for this batch.
func (d *Dataset) Stats() NormalizeStats { return d.stats }

// Years returns the distinct entered years, ascending.
func (d *Dataset) Years() []int { return sortedKeys(d.index.entered) }

// ArrivalYears returns the distinct arrival years, ascending.
func (d *Dataset) ArrivalYears() []int { return sortedKeys(d.index.arrival) }

// HeatMapYears returns the union of entered and arrival years, ascending.
func (d *Dataset) HeatMapYears() []int {
	seen := make(map[int]bool)
	for y := range d.index.entered {
		seen[y] = true
	}
	for y := range d.index.arrival {
		seen[y] = true
	}
	return sortedKeys(seen)
}

// Statuses returns the distinct non-empty statuses in first-seen order.
func (d *Dataset) Statuses() []string {
	return append([]string(nil), d.index.statusOrder...)
}

// Grades returns the distinct grade labels: "Ungraded" first when present,
// then lexicographic.
func (d *Dataset) Grades() []string {
	var labels []string
	hasUngraded := false
	for _, label := range d.index.gradeLabels {
		if label == UngradedLabel {
			hasUngraded = true
			continue
		}
		labels = append(labels, label)
	}
	sort.Strings(labels)
	if hasUngraded {
		labels = append([]string{UngradedLabel}, labels...)
	}
	return labels
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// ============================================================================
// VIEW — ordered subset (zero-copy)
// ============================================================================

// View is an ordered subset of a record slice. The zero View is empty.
// Records reached through At are shared with the dataset and must be
// treated as read-only.
type View struct {
	records []BookingRecord
	indices []uint32
}

// NewView creates a View over an ad-hoc record slice, in slice order.
func NewView(records []BookingRecord) View {
	indices := make([]uint32, len(records))
	for i := range indices {
		indices[i] = uint32(i)
	}
	return View{records: records, indices: indices}
}

// Len returns the number of records in the view.
func (v View) Len() int { return len(v.indices) }

// At returns the i-th record of the view.
func (v View) At(i int) *BookingRecord {
	return &v.records[v.indices[i]]
}

// Each calls fn for every record, in view order.
func (v View) Each(fn func(*BookingRecord)) {
	for _, idx := range v.indices {
		fn(&v.records[idx])
	}
}

// Where returns the records for which keep returns true, order preserved.
func (v View) Where(keep func(*BookingRecord) bool) View {
	indices := make([]uint32, 0, len(v.indices))
	for _, idx := range v.indices {
		if keep(&v.records[idx]) {
			indices = append(indices, idx)
		}
	}
	return View{records: v.records, indices: indices}
}

// Count returns how many records satisfy pred.
func (v View) Count(pred func(*BookingRecord) bool) int {
	n := 0
	for _, idx := range v.indices {
		if pred(&v.records[idx]) {
			n++
		}
	}
	return n
}

// Records copies the view's records out, in view order.
func (v View) Records() []BookingRecord {
	out := make([]BookingRecord, len(v.indices))
	for i, idx := range v.indices {
		out[i] = v.records[idx]
	}
	return out
}

// BookingNumbers lists the booking numbers of the view, in view order.
func (v View) BookingNumbers() []string {
	out := make([]string, len(v.indices))
	for i, idx := range v.indices {
		out[i] = v.records[idx].BookingNumber
	}
	return out
}

// Head returns at most the first n records of the view.
func (v View) Head(n int) View {
	if n < 0 || n >= len(v.indices) {
		return v
	}
	return View{records: v.records, indices: v.indices[:n]}
}
