package planner

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/visit-planner/internal/hours"
	"github.com/iliyamo/visit-planner/internal/model"
	"github.com/iliyamo/visit-planner/internal/pricing"
)

// OpenOracle answers whether a venue opens at all on a civil date.
type OpenOracle interface {
	OpenOn(v model.Venue, date time.Time) bool
}

// HoursOracle reads a venue's free-text weekly hours with the hours package.
// Unreadable hours count as open.
type HoursOracle struct{}

// OpenOn implements OpenOracle.
func (HoursOracle) OpenOn(v model.Venue, date time.Time) bool {
	return hours.Parse(v.Hours).OpenOn(date.Weekday())
}

// Grid is the precomputed venue × date table the strategies schedule over.
// Rows follow Venues, columns follow Dates.
type Grid struct {
	Dates  []time.Time
	Venues []model.Venue

	open   [][]bool
	prices [][]model.PriceResult
}

// Open reports whether venue v is open on date d.
func (g *Grid) Open(v, d int) bool { return g.open[v][d] }

// Price returns the resolved price of venue v on date d.
func (g *Grid) Price(v, d int) model.PriceResult { return g.prices[v][d] }

// buildGrid resolves every (venue, date) cell. Cells are independent, so rows
// are filled by up to workers goroutines; each goroutine writes only its own
// row and the result does not depend on scheduling.
func buildGrid(ctx context.Context, req Request, resolver *pricing.Resolver, oracle OpenOracle, workers int) (*Grid, error) {
	g := &Grid{
		Dates:  req.dates,
		Venues: req.Venues,
		open:   make([][]bool, len(req.Venues)),
		prices: make([][]model.PriceResult, len(req.Venues)),
	}
	if workers < 1 {
		workers = 1
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for v := range req.Venues {
		v := v
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			venue := req.Venues[v]
			open := make([]bool, len(g.Dates))
			prices := make([]model.PriceResult, len(g.Dates))
			for d, date := range g.Dates {
				open[d] = oracle.OpenOn(venue, date)
				prices[d] = resolver.Resolve(venue.ID, date, req.Profile, req.Home)
			}
			g.open[v] = open
			g.prices[v] = prices
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return g, nil
}
