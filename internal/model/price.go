package model

// Confidence describes how much a resolved price can be trusted.
type Confidence string

const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceLow     Confidence = "low"
	ConfidenceUnknown Confidence = "unknown"
)

// PriceResult is the resolved admission price of one venue on one date.
// A nil PriceCents means no pricing rules are available for the venue.
type PriceResult struct {
	PriceCents          *int64     `json:"price_cents"`
	BasePriceCents      int64      `json:"base_price_cents"`
	Currency            string     `json:"currency,omitempty"`
	AppliedRuleIDs      []string   `json:"applied_rule_ids"`
	Notes               []string   `json:"notes"`
	Confidence          Confidence `json:"confidence"`
	SavingsCents        int64      `json:"savings_cents"`
	RequiresReservation bool       `json:"requires_reservation,omitempty"`
}

// Known reports whether a price was resolved.
func (p PriceResult) Known() bool { return p.PriceCents != nil }

// Free reports whether the resolved price is zero.
func (p PriceResult) Free() bool { return p.PriceCents != nil && *p.PriceCents == 0 }

// Cents returns the resolved price, or zero when unknown.
func (p PriceResult) Cents() int64 {
	if p.PriceCents == nil {
		return 0
	}
	return *p.PriceCents
}
