// Package planner builds a day-by-day visit itinerary and a ticket plan for a
// set of venues over a date range. Prices come from the pricing package and
// the day assignment from one of two greedy strategies: money mode favours
// free and discounted days, time mode pairs nearby venues.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/visit-planner/internal/calendar"
	"github.com/iliyamo/visit-planner/internal/model"
	"github.com/iliyamo/visit-planner/internal/pricing"
)

// Mode selects the scheduling strategy.
type Mode string

const (
	ModeMoney Mode = "money"
	ModeTime  Mode = "time"
)

var (
	// ErrInvalidRange is returned when the end date precedes the start date.
	ErrInvalidRange = errors.New("end date before start date")
	// ErrRangeTooLong is returned when the range exceeds Options.MaxDays.
	ErrRangeTooLong = errors.New("date range too long")
	// ErrUnknownMode is returned for a mode without a strategy.
	ErrUnknownMode = errors.New("unknown planning mode")
)

// Options tunes a Generator. Zero fields take the defaults below.
type Options struct {
	Workers      int // goroutines resolving the price grid
	MaxDays      int // longest accepted range, inclusive
	VisitMinutes int // suggested visit length when the venue has none
}

const (
	DefaultWorkers      = 4
	DefaultMaxDays      = 31
	DefaultVisitMinutes = 120
)

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.MaxDays <= 0 {
		o.MaxDays = DefaultMaxDays
	}
	if o.VisitMinutes <= 0 {
		o.VisitMinutes = DefaultVisitMinutes
	}
	return o
}

// Request is the input of one planning call. Start and End are civil dates,
// both included. Rules is the pricing knowledge base keyed by venue id.
type Request struct {
	Venues  []model.Venue
	Rules   map[string]model.TicketRuleEntry
	Profile model.Profile
	Home    model.Location
	Start   time.Time
	End     time.Time
	Mode    Mode

	dates []time.Time
}

// Plan is the output of one planning call.
type Plan struct {
	ID           string                 `json:"id"`
	Mode         Mode                   `json:"mode"`
	StartDate    string                 `json:"start_date"`
	EndDate      string                 `json:"end_date"`
	Itinerary    []model.ItineraryDay   `json:"itinerary"`
	TicketPlan   []model.TicketPlanItem `json:"ticket_plan"`
	Unscheduled  []string               `json:"unscheduled"`
	TotalCents   int64                  `json:"total_cents"`
	SavingsCents int64                  `json:"savings_cents"`
}

// Generator runs planning calls. It holds no per-call state and is safe for
// concurrent use.
type Generator struct {
	oracle     OpenOracle
	opts       Options
	strategies map[Mode]Strategy
}

// NewGenerator returns a Generator using oracle for opening days. A nil
// oracle reads venue hours with HoursOracle.
func NewGenerator(oracle OpenOracle, opts Options) *Generator {
	if oracle == nil {
		oracle = HoursOracle{}
	}
	g := &Generator{oracle: oracle, opts: opts.withDefaults(), strategies: map[Mode]Strategy{}}
	for _, s := range []Strategy{MoneyStrategy{}, TimeStrategy{}} {
		g.strategies[s.Mode()] = s
	}
	return g
}

// Options returns the effective options.
func (g *Generator) Options() Options { return g.opts }

// Generate plans the trip described by req.
func (g *Generator) Generate(ctx context.Context, req Request) (*Plan, error) {
	strategy, ok := g.strategies[req.Mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, req.Mode)
	}
	start, end := calendar.Day(req.Start), calendar.Day(req.End)
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	req.dates = calendar.Range(start, end)
	if len(req.dates) > g.opts.MaxDays {
		return nil, fmt.Errorf("%w: %d days, at most %d", ErrRangeTooLong, len(req.dates), g.opts.MaxDays)
	}
	req.Venues = uniqueVenues(req.Venues)

	resolver := pricing.NewResolver(req.Rules)
	grid, err := buildGrid(ctx, req, resolver, g.oracle, g.opts.Workers)
	if err != nil {
		return nil, err
	}

	schedule := strategy.Schedule(grid)
	itinerary := make([]model.ItineraryDay, len(grid.Dates))
	scheduled := make(map[string]bool, len(grid.Venues))
	for d, date := range grid.Dates {
		day := model.ItineraryDay{Date: calendar.Format(date), Visits: []model.Visit{}}
		for _, v := range schedule[d] {
			venue := grid.Venues[v]
			day.Visits = append(day.Visits, model.Visit{
				VenueID:          venue.ID,
				VenueName:        venue.Name,
				Open:             grid.Open(v, d),
				Price:            grid.Price(v, d),
				SuggestedMinutes: g.visitMinutes(venue),
			})
			scheduled[venue.ID] = true
		}
		itinerary[d] = day
	}

	plan := &Plan{
		ID:          uuid.NewString(),
		Mode:        req.Mode,
		StartDate:   calendar.Format(start),
		EndDate:     calendar.Format(end),
		Itinerary:   itinerary,
		TicketPlan:  TicketPlan(itinerary, resolver),
		Unscheduled: []string{},
	}
	for _, v := range grid.Venues {
		if !scheduled[v.ID] {
			plan.Unscheduled = append(plan.Unscheduled, v.ID)
		}
	}
	for _, item := range plan.TicketPlan {
		plan.TotalCents += item.Price.Cents()
		plan.SavingsCents += item.Price.SavingsCents
	}
	return plan, nil
}

func (g *Generator) visitMinutes(v model.Venue) int {
	if v.VisitMinutes > 0 {
		return v.VisitMinutes
	}
	return g.opts.VisitMinutes
}

func uniqueVenues(in []model.Venue) []model.Venue {
	seen := make(map[string]bool, len(in))
	out := make([]model.Venue, 0, len(in))
	for _, v := range in {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		out = append(out, v)
	}
	return out
}
