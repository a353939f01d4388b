package engine

import "github.com/rs/zerolog/log"

// ============================================================================
// VARIANCE — Year-over-Year KPI deltas
// ============================================================================
// Only defined when the global filter selects exactly one year. Both the
// selected year and the prior year are sliced from the unfiltered dataset by
// entered year. A metric with no prior-year bookings or a zero prior value is
// unavailable, never 0% and never ±Inf.
// ============================================================================

// Metric names one KPI that carries a year-over-year variance.
type Metric string

const (
	MetricLeads         Metric = "leads"
	MetricConversion    Metric = "conversion"
	MetricConverted     Metric = "converted"
	MetricRoomNights    Metric = "roomNights"
	MetricGroupRevenue  Metric = "groupRevenue"
	MetricEventRevenue  Metric = "eventRevenue"
	MetricFnBRevenue    Metric = "fnbRevenue"
	MetricRentalRevenue Metric = "rentalRevenue"
	MetricLeadTime      Metric = "leadTime"
	MetricResponseTime  Metric = "responseTime"
	MetricSpendPerRN    Metric = "spendPerRN"
	MetricPipeline      Metric = "pipeline"
)

// Metrics lists every variance metric in display order.
var Metrics = []Metric{
	MetricLeads, MetricConversion, MetricConverted, MetricRoomNights,
	MetricGroupRevenue, MetricEventRevenue, MetricFnBRevenue, MetricRentalRevenue,
	MetricLeadTime, MetricResponseTime, MetricSpendPerRN, MetricPipeline,
}

// Variance is one metric's year-over-year change.
type Variance struct {
	Metric    Metric  `json:"metric"`
	Available bool    `json:"available"`
	Percent   float64 `json:"percent"` // one decimal
	Current   float64 `json:"current"`
	Prior     float64 `json:"prior"`
}

// VarianceSet holds every metric's variance for one selected year.
type VarianceSet struct {
	Year      int        `json:"year,omitempty"`
	PriorYear int        `json:"priorYear,omitempty"`
	Items     []Variance `json:"items"`
}

// Get returns the variance of one metric.
func (s VarianceSet) Get(m Metric) Variance {
	for _, v := range s.Items {
		if v.Metric == m {
			return v
		}
	}
	return Variance{Metric: m}
}

// MetricValue computes one metric over a slice of bookings.
func MetricValue(v View, m Metric) float64 {
	converted := v.Where((*BookingRecord).IsConverted)
	switch m {
	case MetricLeads:
		return float64(v.Len())
	case MetricConversion:
		return Ratio(float64(converted.Len()), float64(v.Len())) * 100
	case MetricConverted:
		return float64(converted.Len())
	case MetricRoomNights:
		return SumField(converted, roomNightOf)
	case MetricGroupRevenue:
		return SumField(converted, revenueOf)
	case MetricEventRevenue:
		return SumField(converted, eventRevenueOf)
	case MetricFnBRevenue:
		return SumField(converted, func(r *BookingRecord) float64 { return r.FnBRevenue })
	case MetricRentalRevenue:
		return SumField(converted, func(r *BookingRecord) float64 { return r.RentalRevenue })
	case MetricLeadTime:
		return AvgLeadTime(v)
	case MetricResponseTime:
		return AvgResponseTime(v)
	case MetricSpendPerRN:
		group := converted.Where(func(r *BookingRecord) bool { return r.BookingCategory == CategoryGroupSales })
		return Ratio(SumField(group, eventRevenueOf), SumField(group, roomNightOf))
	case MetricPipeline:
		return float64(v.Count((*BookingRecord).IsPipeline))
	}
	return 0
}

// Variances compares the single selected year of global against the prior
// year over base (the unfiltered bookings).
func Variances(base View, global Filter) VarianceSet {
	set := VarianceSet{Items: make([]Variance, len(Metrics))}
	for i, m := range Metrics {
		set.Items[i] = Variance{Metric: m}
	}

	year, ok := global.SingleYear()
	if !ok {
		return set
	}
	set.Year, set.PriorYear = year, year-1

	current := base.Where(func(r *BookingRecord) bool { return r.EnteredYear == year })
	prior := base.Where(func(r *BookingRecord) bool { return r.EnteredYear == year-1 })
	if prior.Len() == 0 {
		log.Debug().Int("year", year).Msg("no prior-year bookings, variances unavailable")
		return set
	}

	for i, m := range Metrics {
		cur, prev := MetricValue(current, m), MetricValue(prior, m)
		item := Variance{Metric: m, Current: cur, Prior: prev}
		if prev != 0 {
			item.Available = true
			item.Percent = Round1((cur - prev) / prev * 100)
		}
		set.Items[i] = item
	}
	return set
}
