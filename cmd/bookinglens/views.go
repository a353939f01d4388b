package main

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/bookinglens/engine"
)

// ============================================================================
// VIEW REGISTRY — CLI view names → dashboard getters
// ============================================================================

// viewParams carries the per-view inputs that come from flags.
type viewParams struct {
	Manager     string
	LostLabel   string
	ArrivalYear int
}

type viewFunc func(d *engine.Dashboard, p viewParams) (any, error)

type viewSpec struct {
	name string
	run  viewFunc
	// needs reports whether "all" should include the view for these params.
	needs func(p viewParams) bool
}

func always(viewParams) bool { return true }

var registry = []viewSpec{
	{name: "columns", needs: always, run: func(d *engine.Dashboard, _ viewParams) (any, error) {
		return columnsTable(d.Dataset()), nil
	}},
	{name: string(engine.ViewFiltered), needs: always, run: func(d *engine.Dashboard, _ viewParams) (any, error) {
		return engine.BuildBookingTable("Filtered Bookings", d.Filtered(), false), nil
	}},
	{name: string(engine.ViewKPI), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.KPI() })},
	{name: string(engine.ViewKPIDetails), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.KPIDetails() })},
	{name: string(engine.ViewVariance), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.Variance() })},
	{name: string(engine.ViewGroupCatering), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.GroupVsCatering() })},
	{name: string(engine.ViewEventRevenue), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.EventRevenue() })},
	{name: string(engine.ViewLeadVolume), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.LeadVolume() })},
	{name: string(engine.ViewLeadGrowth), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.LeadGrowth() })},
	{name: string(engine.ViewYoYMonthly), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.YoYMonthly() })},
	{name: string(engine.ViewSegment), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.SegmentComparison() })},
	{name: "segment_monthly", needs: always, run: func(d *engine.Dashboard, p viewParams) (any, error) {
		year := p.ArrivalYear
		if year == 0 {
			years := d.Dataset().ArrivalYears()
			if len(years) == 0 {
				return []engine.SegmentMonth{}, nil
			}
			year = years[len(years)-1]
		}
		return d.SegmentMonthly(year), nil
	}},
	{name: string(engine.ViewLeadTime), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.LeadTime() })},
	{name: string(engine.ViewHeatMap), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.HeatMap() })},
	{name: string(engine.ViewBlockSize), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.BlockSize() })},
	{name: string(engine.ViewManagers), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.Managers() })},
	{name: "manager", needs: func(p viewParams) bool { return p.Manager != "" }, run: func(d *engine.Dashboard, p viewParams) (any, error) {
		if p.Manager == "" {
			return nil, fmt.Errorf("view manager needs --manager")
		}
		return d.ManagerDeepDive(p.Manager), nil
	}},
	{name: string(engine.ViewPipeline), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.Pipeline() })},
	{name: string(engine.ViewLost), needs: always, run: wrap(func(d *engine.Dashboard) any { return d.Lost() })},
	{name: "comments", needs: func(p viewParams) bool { return p.LostLabel != "" }, run: func(d *engine.Dashboard, p viewParams) (any, error) {
		if p.LostLabel == "" {
			return nil, fmt.Errorf("view comments needs --lost-label")
		}
		return d.CommentThemes(p.LostLabel), nil
	}},
}

func wrap(fn func(d *engine.Dashboard) any) viewFunc {
	return func(d *engine.Dashboard, _ viewParams) (any, error) { return fn(d), nil }
}

func lookupView(name string) (viewSpec, bool) {
	for _, v := range registry {
		if v.name == name {
			return v, true
		}
	}
	return viewSpec{}, false
}

func viewNames() []string {
	names := make([]string, len(registry))
	for i, v := range registry {
		names[i] = v.name
	}
	return names
}

// selectViews expands the --view flag. "all" means every view whose inputs
// are available; "columns" and "filtered" are only listed explicitly.
func selectViews(flagValue string, p viewParams) ([]viewSpec, error) {
	var out []viewSpec
	seen := map[string]bool{}
	for _, name := range splitList(flagValue) {
		name = strings.ToLower(name)
		if name == "all" {
			for _, v := range registry {
				if v.name == "columns" || v.name == string(engine.ViewFiltered) || !v.needs(p) || seen[v.name] {
					continue
				}
				seen[v.name] = true
				out = append(out, v)
			}
			continue
		}
		v, ok := lookupView(name)
		if !ok {
			return nil, fmt.Errorf("unknown view %q (known: %s, all)", name, strings.Join(viewNames(), ", "))
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no view selected")
	}
	return out, nil
}

// result is one computed view, in request order.
type result struct {
	Name  string
	Value any
}

// runViews computes the selected views concurrently. The dashboard memoizes
// each node under its own lock, so shared inputs are computed once.
func runViews(d *engine.Dashboard, specs []viewSpec, p viewParams) ([]result, error) {
	results := make([]result, len(specs))
	var g errgroup.Group
	g.SetLimit(4)
	for i, spec := range specs {
		g.Go(func() error {
			value, err := spec.run(d, p)
			if err != nil {
				return err
			}
			results[i] = result{Name: spec.name, Value: value}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func columnsTable(ds *engine.Dataset) *engine.TableData {
	table := &engine.TableData{
		Title: "Columns",
		Columns: []engine.Column{
			{Key: "field", Label: "Field", Type: "text", Align: "left"},
			{Key: "header", Label: "Header", Type: "text", Align: "left"},
			{Key: "source", Label: "Source", Type: "text", Align: "left"},
		},
	}
	for _, c := range ds.Columns().Report() {
		table.Rows = append(table.Rows, []string{c.Field, c.Header, string(c.Source)})
	}
	return table
}

// ============================================================================
// FLAG PARSING
// ============================================================================

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseYears(s string) ([]int, error) {
	var years []int
	for _, part := range splitList(s) {
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad year %q", part)
		}
		years = append(years, y)
	}
	return years, nil
}

// localFlags collects repeated --local flags.
type localFlags []string

func (l *localFlags) String() string { return strings.Join(*l, " ") }

func (l *localFlags) Set(s string) error {
	*l = append(*l, s)
	return nil
}

// parseLocal reads "view:key=value;key=value", e.g.
// "heat_map:years=2024,2025;segment=Social".
func parseLocal(s string) (engine.ViewName, engine.Filter, error) {
	name, body, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return "", engine.Filter{}, fmt.Errorf("local filter %q: want view:key=value;...", s)
	}
	var f engine.Filter
	for _, part := range strings.Split(body, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return "", engine.Filter{}, fmt.Errorf("local filter %q: bad pair %q", s, part)
		}
		val = strings.TrimSpace(val)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "years":
			years, err := parseYears(val)
			if err != nil {
				return "", engine.Filter{}, fmt.Errorf("local filter %q: %w", s, err)
			}
			f.Years = years
		case "status":
			f.Status = val
		case "grades":
			f.Grades = splitList(val)
		case "category":
			f.Category = val
		case "segment":
			f.Segment = val
		default:
			return "", engine.Filter{}, fmt.Errorf("local filter %q: unknown key %q", s, key)
		}
	}
	if err := f.Validate(); err != nil {
		return "", engine.Filter{}, fmt.Errorf("local filter %q: %w", s, err)
	}
	return engine.ViewName(strings.TrimSpace(name)), f, nil
}

// globalFilter overlays the flags that were set on the configured filter.
func globalFilter(base engine.Filter, years, status, grades, category, segment string) (engine.Filter, error) {
	f := base
	if years != "" {
		parsed, err := parseYears(years)
		if err != nil {
			return engine.Filter{}, err
		}
		f.Years = parsed
	}
	if status != "" {
		f.Status = status
	}
	if grades != "" {
		f.Grades = splitList(grades)
	}
	if category != "" {
		f.Category = category
	}
	if segment != "" {
		f.Segment = segment
	}
	return f, f.Validate()
}

// withComments reports whether a drill-down table shows the comment column.
func withComments(kind engine.CellKind) bool {
	switch kind {
	case engine.CellLostReason, engine.CellCommentTheme, engine.CellUnthemed:
		return true
	}
	return false
}
