package config

import (
	"log"
	"time"
)

// PlannerConfig tunes the planning and discount engines.
// Timezone is the civil zone the discount calendar works in; Location is
// its loaded form. Workers bounds the goroutines resolving a plan's price
// grid. MaxDays is the longest accepted trip. VisitMinutes is the suggested
// visit length for venues without one. CatalogPath points at a YAML
// discount catalog; empty means the built-in catalog.
type PlannerConfig struct {
	Timezone     string
	Location     *time.Location
	Workers      int
	MaxDays      int
	VisitMinutes int
	CatalogPath  string
}

// LoadPlannerConfig reads PLANNER_* and DISCOUNT_CATALOG. Defaults are used
// when variables are not set; an unknown time zone falls back to UTC.
func LoadPlannerConfig() PlannerConfig {
	cfg := PlannerConfig{
		Timezone:     envStr("PLANNER_TIMEZONE", "America/New_York"),
		Workers:      envInt("PLANNER_WORKERS", 4),
		MaxDays:      envInt("PLANNER_MAX_DAYS", 31),
		VisitMinutes: envInt("PLANNER_VISIT_MINUTES", 120),
		CatalogPath:  envStr("DISCOUNT_CATALOG", ""),
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("config: unknown PLANNER_TIMEZONE %q, using UTC: %v", cfg.Timezone, err)
		cfg.Timezone, loc = "UTC", time.UTC
	}
	cfg.Location = loc
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxDays < 1 {
		cfg.MaxDays = 1
	}
	if cfg.VisitMinutes < 1 {
		cfg.VisitMinutes = 120
	}
	return cfg
}
