package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/spektr-org/bookinglens/config"
	"github.com/spektr-org/bookinglens/engine"
	"github.com/spektr-org/bookinglens/helpers"
)

// ============================================================================
// BOOKINGLENS CLI — Group-booking analytics from a CSV/XLSX export
// ============================================================================

const version = "0.1.0"

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────
	filePath := flag.String("file", "", "Path to booking export, .csv or .xlsx (required)")
	configPath := flag.String("config", "", "Path to config file (yaml, json or toml)")
	viewFlag := flag.String("view", "kpi", "Comma-separated views, or \"all\"")
	years := flag.String("years", "", "Global filter: comma-separated entered years")
	status := flag.String("status", "", "Global filter: booking status")
	grades := flag.String("grades", "", "Global filter: comma-separated grades")
	category := flag.String("category", "", "Global filter: Group Sales or Local Catering")
	segment := flag.String("segment", "", "Global filter: Corporate or Social")
	manager := flag.String("manager", "", "Sales manager for the manager view")
	lostLabel := flag.String("lost-label", "", "Lost reason for the comments view")
	arrivalYear := flag.Int("arrival-year", 0, "Arrival year for segment_monthly (default: latest)")
	hideLost := flag.String("hide-lost", "", "Comma-separated lost reasons to hide")
	drill := flag.String("drill", "", "Drill into one cell, kind:key (e.g. month:2024-03)")
	format := flag.String("format", "json", "Output format: "+strings.Join(formats, ", "))
	outFile := flag.String("out", "", "Write output to file instead of stdout")
	showVersion := flag.Bool("version", false, "Print version and exit")
	var locals localFlags
	flag.Var(&locals, "local", "Local view filter, view:key=value;... (repeatable)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `BookingLens — group-booking analytics

Usage:
  bookinglens --file bookings.csv --view kpi,variance --years 2024
  bookinglens --file bookings.xlsx --view all --format xlsx --out report.xlsx
  bookinglens --file bookings.csv --drill "lost:Price" --format csv

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Views:
  %s, all

Drill-down cells:
  month:2024-03  heatmap:2025-06  blocksize:11-20  pipeline:Grade 2
  manager:Anna Lawless  lost:Price  category:Group Sales  segment:2024
  theme:Rate Too High@Other - C-Comments  unthemed:Other - C-Comments

Environment:
  BOOKINGLENS_*     Overrides any config key, e.g. BOOKINGLENS_LOG_LEVEL=debug

Examples:
  # Lost business for corporate leads only
  bookinglens --file bookings.csv --view lost --local "lost:segment=Corporate"

  # Heat map for two arrival years, as CSV for Sheets
  bookinglens --file bookings.csv --view heat_map --local "heat_map:years=2024,2025" --format csv
`, strings.Join(viewNames(), ", "))
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("bookinglens %s\n", version)
		os.Exit(0)
	}

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		flag.Usage()
		os.Exit(1)
	}
	if !validFormat(*format) {
		fatalf("Unknown format %q", *format)
	}

	// ── Config & logging ──────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	setupLogger(cfg)

	// ── Read data ─────────────────────────────────────────────────────────
	data, err := os.ReadFile(*filePath)
	if err != nil {
		fatalf("Failed to read file: %v", err)
	}
	ds, err := helpers.ParseFileDataset(*filePath, data, cfg.EngineOptions()...)
	if err != nil {
		fatalf("Failed to load bookings: %v", err)
	}
	log.Info().Int("bookings", ds.Len()).Ints("years", ds.Years()).Msg("📊 Loaded bookings")
	for _, missing := range ds.Columns().Missing() {
		log.Warn().Str("field", missing).Msg("Column not found, field reads as empty")
	}

	// ── Dashboard ─────────────────────────────────────────────────────────
	dash := engine.NewDashboard(ds)

	global, err := globalFilter(cfg.Global, *years, *status, *grades, *category, *segment)
	if err != nil {
		fatalf("Invalid filter: %v", err)
	}
	dash.SetGlobal(global)

	for _, raw := range locals {
		name, f, err := parseLocal(raw)
		if err != nil {
			fatalf("%v", err)
		}
		if err := dash.SetViewFilter(name, f); err != nil {
			fatalf("%v", err)
		}
	}
	for _, label := range splitList(*hideLost) {
		dash.HideLostReason(label)
	}

	params := viewParams{Manager: *manager, LostLabel: *lostLabel, ArrivalYear: *arrivalYear}

	var results []result
	if *drill != "" {
		results, err = drillDown(dash, *drill)
	} else {
		var specs []viewSpec
		specs, err = selectViews(*viewFlag, params)
		if err == nil {
			results, err = runViews(dash, specs, params)
		}
	}
	if err != nil {
		fatalf("%v", err)
	}
	log.Debug().Interface("recomputes", dash.Stats()).Msg("Views computed")

	// ── Output writer ─────────────────────────────────────────────────────
	var writer io.Writer = os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		writer = f
	}

	if err := render(writer, *format, results); err != nil {
		fatalf("Failed to write output: %v", err)
	}
	if *outFile != "" {
		log.Info().Str("path", *outFile).Str("format", *format).Msg("📄 Output written")
	}
}

// drillDown resolves one cell and lists its bookings.
func drillDown(dash *engine.Dashboard, notation string) ([]result, error) {
	cell, err := engine.ParseCell(notation)
	if err != nil {
		return nil, err
	}
	view, err := dash.Resolve(cell)
	if err != nil {
		return nil, err
	}
	summary := engine.Summarize(view)
	log.Info().
		Str("cell", notation).
		Int("bookings", summary.Count).
		Float64("revenue", summary.Revenue).
		Msg("🔎 Drill-down")
	table := engine.BuildBookingTable(notation, view, withComments(cell.Kind))
	return []result{{Name: "drill", Value: table}}, nil
}

func setupLogger(cfg *config.Config) {
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
