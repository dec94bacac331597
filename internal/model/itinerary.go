package model

// Visit is one venue assignment within an itinerary day.
type Visit struct {
	VenueID          string      `json:"venue_id"`
	VenueName        string      `json:"venue_name"`
	Open             bool        `json:"open"`
	Price            PriceResult `json:"price"`
	SuggestedMinutes int         `json:"suggested_minutes"`
}

// ItineraryDay is one date of a trip with its ordered visits. Date is YYYY-MM-DD.
type ItineraryDay struct {
	Date   string  `json:"date"`
	Visits []Visit `json:"visits"`
}

// TicketPlanItem is the ticket to buy for one scheduled venue. Unavailable is
// set when the venue has no pricing entry; Price is then the unknown result.
type TicketPlanItem struct {
	VenueID        string      `json:"venue_id"`
	VenueName      string      `json:"venue_name"`
	Date           string      `json:"date"`
	Price          PriceResult `json:"price"`
	Currency       string      `json:"currency,omitempty"`
	BasePriceCents int64       `json:"base_price_cents,omitempty"`
	PricingNotes   string      `json:"pricing_notes,omitempty"`
	Unavailable    bool        `json:"unavailable"`
}
