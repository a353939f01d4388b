package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/bookinglens/engine"
)

// ============================================================================
// CONFIG TESTS
// ============================================================================

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
	assert.Equal(t, engine.DefaultAllowedManagers, cfg.AllowedManagers)
	assert.Equal(t, 15, cfg.LostReasonCap)
	assert.Equal(t, 15, cfg.UnthemedCap)
	assert.True(t, cfg.Global.IsOpen())
	assert.Len(t, cfg.EngineOptions(), 4)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bookinglens.yaml", `
environment: development
log_level: debug
allowed_managers: [Anna Lawless, Jordan Lee]
lost_reason_cap: 10
columns:
  fnb: Banquet F&B
global:
  years: [2024]
  status: Definite
  grades: [Grade 1, Grade 2]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, []string{"Anna Lawless", "Jordan Lee"}, cfg.AllowedManagers)
	assert.Equal(t, 10, cfg.LostReasonCap)
	assert.Equal(t, 15, cfg.UnthemedCap)
	assert.Equal(t, "Banquet F&B", cfg.Columns.FnB)
	assert.Equal(t, []int{2024}, cfg.Global.Years)
	assert.Equal(t, engine.StatusDefinite, cfg.Global.Status)
	assert.Equal(t, []string{"Grade 1", "Grade 2"}, cfg.Global.Grades)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bookinglens.json", `{"unthemed_cap": 5, "global": {"category": "Local Catering"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.UnthemedCap)
	assert.Equal(t, "Local Catering", cfg.Global.Category)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bookinglens.yaml", "lost_reason_cap: 10\n")
	t.Setenv("BOOKINGLENS_LOST_REASON_CAP", "3")
	t.Setenv("BOOKINGLENS_GLOBAL_STATUS", "Lost")
	t.Setenv("BOOKINGLENS_COLUMNS_RENTAL", "AV & Room Hire")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.LostReasonCap)
	assert.Equal(t, engine.StatusLost, cfg.Global.Status)
	assert.Equal(t, "AV & Room Hire", cfg.Columns.Rental)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "BOOKINGLENS_UNTHEMED_CAP=7\n")
	path := writeFile(t, dir, "bookinglens.yaml", "environment: development\n")
	t.Cleanup(func() { os.Unsetenv("BOOKINGLENS_UNTHEMED_CAP") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.UnthemedCap)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Environment:     EnvProduction,
			LogLevel:        "info",
			AllowedManagers: []string{"Anna Lawless"},
			LostReasonCap:   15,
			UnthemedCap:     15,
		}
	}
	ok := base()
	require.NoError(t, ok.Validate())

	cases := map[string]func(*Config){
		"environment":    func(c *Config) { c.Environment = "staging" },
		"log level":      func(c *Config) { c.LogLevel = "loud" },
		"lost cap":       func(c *Config) { c.LostReasonCap = 0 },
		"unthemed cap":   func(c *Config) { c.UnthemedCap = -1 },
		"managers":       func(c *Config) { c.AllowedManagers = nil },
		"global status":  func(c *Config) { c.Global.Status = "Pending" },
		"global segment": func(c *Config) { c.Global.Segment = "Government" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}
