package engine

import "github.com/spektr-org/bookinglens/schema"

// ============================================================================
// ENGINE OPTIONS — Functional options for Load() and NewDashboard()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	AllowedManagers []string       // exact-match allow-list for manager scorecards
	Aliases         schema.Aliases // explicit header overrides for fuzzy columns
	LostReasonCap   int            // rows kept by the lost-reason table
	UnthemedCap     int            // unthemed comments kept for display
}

// DefaultAllowedManagers is the manager allow-list used when none is configured.
var DefaultAllowedManagers = []string{"Whitney Britton", "Anna Lawless"}

// WithAllowedManagers replaces the manager allow-list (exact string match).
func WithAllowedManagers(names []string) Option {
	return func(c *config) {
		c.AllowedManagers = append([]string(nil), names...)
	}
}

// WithColumnAliases pins the F&B / rental revenue headers instead of
// detecting them by name.
func WithColumnAliases(aliases schema.Aliases) Option {
	return func(c *config) {
		c.Aliases = aliases
	}
}

// WithLostReasonCap sets how many lost-reason rows are kept (default 15).
func WithLostReasonCap(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.LostReasonCap = n
		}
	}
}

// WithUnthemedCap sets how many unthemed comments are listed (default 15).
func WithUnthemedCap(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.UnthemedCap = n
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		AllowedManagers: append([]string(nil), DefaultAllowedManagers...),
		LostReasonCap:   15,
		UnthemedCap:     15,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
