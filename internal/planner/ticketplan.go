package planner

import (
	"github.com/iliyamo/visit-planner/internal/model"
	"github.com/iliyamo/visit-planner/internal/pricing"
)

// TicketPlan lists one ticket per scheduled venue, in itinerary order. A venue
// visited more than once keeps its first visit. Venues without a pricing
// entry are flagged unavailable.
func TicketPlan(itinerary []model.ItineraryDay, resolver *pricing.Resolver) []model.TicketPlanItem {
	seen := make(map[string]bool)
	out := []model.TicketPlanItem{}
	for _, day := range itinerary {
		for _, visit := range day.Visits {
			if seen[visit.VenueID] {
				continue
			}
			seen[visit.VenueID] = true
			item := model.TicketPlanItem{
				VenueID:   visit.VenueID,
				VenueName: visit.VenueName,
				Date:      day.Date,
				Price:     visit.Price,
			}
			if entry, ok := resolver.Entry(visit.VenueID); ok {
				item.Currency = entry.Currency
				item.BasePriceCents = entry.BasePriceCents
				item.PricingNotes = entry.PricingNotes
			} else {
				item.Unavailable = true
			}
			out = append(out, item)
		}
	}
	return out
}
