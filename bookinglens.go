// Package bookinglens provides an analytics engine for hotel group-booking
// exports.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/bookinglens/engine"
//	    "github.com/spektr-org/bookinglens/helpers"
//	)
//
//	ds, err := helpers.ParseCSVDataset(data,
//	    engine.WithAllowedManagers([]string{"Anna Lawless"}),
//	)
//	dash := engine.NewDashboard(ds)
//	dash.SetGlobal(engine.Filter{Years: []int{2024}})
//	kpi := dash.KPI()
//
// The engine normalizes raw rows once, filters through per-axis bitmap
// indexes and recomputes a view only when the filters it reads change.
// Every aggregate cell can be resolved back to the bookings behind it.
// The engine never performs I/O; reading files is left to helpers and the
// bookinglens CLI.
package bookinglens
