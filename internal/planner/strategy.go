package planner

import (
	"math"
	"sort"

	"github.com/iliyamo/visit-planner/internal/geo"
	"github.com/iliyamo/visit-planner/internal/model"
)

// MaxVisitsPerDay caps how many venues a strategy puts on one day.
const MaxVisitsPerDay = 2

// Scores used by the money strategy.
const (
	ScoreFree    = 100.0
	ScoreUnknown = 5.0
)

// Strategy assigns venues to days. Schedule returns, for every date of the
// grid, the indices of the venues visited that day in visit order. Each
// venue appears at most once and only on a day it is open.
type Strategy interface {
	Mode() Mode
	Schedule(g *Grid) [][]int
}

// Score rates a price for the money strategy: free admission scores 100, an
// unknown price 5, anything else the amount saved in currency units.
func Score(p model.PriceResult) float64 {
	switch {
	case !p.Known():
		return ScoreUnknown
	case p.Free():
		return ScoreFree
	}
	return float64(p.SavingsCents) / 100
}

// MoneyStrategy favours the dates on which each venue is cheapest.
//
// Each venue's preferred date is its highest-scoring open date, the earliest
// one on ties. Venues are ranked by that score, best first. Dates are then
// walked in order and each takes up to MaxVisitsPerDay of the ranked, still
// unassigned venues that are open: a venue is taken on its preferred date, or
// on any date that has nothing yet. The second rule lets a venue fill an
// empty day away from its preferred date.
type MoneyStrategy struct{}

// Mode implements Strategy.
func (MoneyStrategy) Mode() Mode { return ModeMoney }

// Schedule implements Strategy.
func (MoneyStrategy) Schedule(g *Grid) [][]int {
	n := len(g.Venues)
	preferred := make([]int, n)
	best := make([]float64, n)
	for v := 0; v < n; v++ {
		preferred[v], best[v] = -1, -1
		for d := range g.Dates {
			if !g.Open(v, d) {
				continue
			}
			if s := Score(g.Price(v, d)); s > best[v] {
				best[v], preferred[v] = s, d
			}
		}
	}

	order := make([]int, n)
	for v := range order {
		order[v] = v
	}
	sort.SliceStable(order, func(i, j int) bool { return best[order[i]] > best[order[j]] })

	assigned := make([]bool, n)
	days := make([][]int, len(g.Dates))
	for d := range g.Dates {
		for _, v := range order {
			if len(days[d]) >= MaxVisitsPerDay {
				break
			}
			if assigned[v] || !g.Open(v, d) {
				continue
			}
			if preferred[v] == d || len(days[d]) < 1 {
				days[d] = append(days[d], v)
				assigned[v] = true
			}
		}
	}
	return days
}

// TimeStrategy pairs venues that are close to each other.
//
// Dates are walked in order. On each date the first unassigned venue open
// that day becomes the anchor and is paired with the nearest other
// unassigned venue open that day, the earliest one on equal distance. Once
// the venues run out the remaining dates stay empty. The pairing is greedy:
// nearest at assignment time, not a global optimum.
type TimeStrategy struct{}

// Mode implements Strategy.
func (TimeStrategy) Mode() Mode { return ModeTime }

// Schedule implements Strategy.
func (TimeStrategy) Schedule(g *Grid) [][]int {
	n := len(g.Venues)
	assigned := make([]bool, n)
	days := make([][]int, len(g.Dates))
	for d := range g.Dates {
		anchor := -1
		for v := 0; v < n; v++ {
			if !assigned[v] && g.Open(v, d) {
				anchor = v
				break
			}
		}
		if anchor < 0 {
			continue
		}
		assigned[anchor] = true
		days[d] = []int{anchor}

		partner, nearest := -1, math.Inf(1)
		a := g.Venues[anchor]
		for v := 0; v < n; v++ {
			if assigned[v] || !g.Open(v, d) {
				continue
			}
			b := g.Venues[v]
			if dist := geo.Distance(a.Lat, a.Lng, b.Lat, b.Lng); dist < nearest {
				partner, nearest = v, dist
			}
		}
		if partner >= 0 {
			assigned[partner] = true
			days[d] = append(days[d], partner)
		}
	}
	return days
}
