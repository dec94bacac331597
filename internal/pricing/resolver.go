// Package pricing resolves the cheapest admission price a traveler is
// entitled to at a venue on a given date. Resolution is pure: the same
// inputs always produce the same PriceResult.
package pricing

import (
	"time"

	"github.com/iliyamo/visit-planner/internal/model"
)

// NoteRulesUnavailable is the note attached to results for venues without a
// pricing entry.
const NoteRulesUnavailable = "rules not available"

// NoteStandardAdmission is the note attached when no rule applies.
const NoteStandardAdmission = "standard admission"

// Resolver resolves prices against a read-only pricing knowledge base keyed
// by venue id. It is safe for concurrent use.
type Resolver struct {
	entries map[string]model.TicketRuleEntry
}

// NewResolver wraps entries. The map must not be modified afterwards.
func NewResolver(entries map[string]model.TicketRuleEntry) *Resolver {
	if entries == nil {
		entries = map[string]model.TicketRuleEntry{}
	}
	return &Resolver{entries: entries}
}

// Entry returns the pricing entry of a venue.
func (r *Resolver) Entry(venueID string) (model.TicketRuleEntry, bool) {
	e, ok := r.entries[venueID]
	return e, ok
}

// Resolve returns the price of venueID on date for the traveler. It never
// fails: a venue without an entry yields an unknown-confidence result.
//
// Free rules are scanned first in declared order and the first match wins.
// Otherwise the discount rule with the lowest resulting price wins, ties going
// to the earliest declared rule. With no match the base price applies.
func (r *Resolver) Resolve(venueID string, date time.Time, p model.Profile, home model.Location) model.PriceResult {
	entry, ok := r.entries[venueID]
	if !ok {
		return model.PriceResult{
			AppliedRuleIDs: []string{},
			Notes:          []string{NoteRulesUnavailable},
			Confidence:     model.ConfidenceUnknown,
		}
	}
	base := entry.BasePriceCents
	applies := func(rule model.TicketRule) bool {
		return DateMatches(rule.Date, date) && EligibilityMatches(rule.Eligibility, p, home, date)
	}

	for _, rule := range entry.RulesOfKind(model.RuleFree) {
		if applies(rule) {
			return result(entry, rule, 0)
		}
	}

	best := bestDiscount(base, entry.RulesOfKind(model.RuleDiscount), applies)
	if best.rule == nil {
		return model.PriceResult{
			PriceCents:     price(base),
			BasePriceCents: base,
			Currency:       entry.Currency,
			AppliedRuleIDs: []string{},
			Notes:          []string{NoteStandardAdmission},
			Confidence:     model.ConfidenceLow,
		}
	}
	return result(entry, *best.rule, best.cents)
}

type candidate struct {
	rule  *model.TicketRule
	cents int64
}

// fold reduces xs left to right.
func fold[T, A any](xs []T, init A, f func(A, T) A) A {
	acc := init
	for _, x := range xs {
		acc = f(acc, x)
	}
	return acc
}

// bestDiscount folds the matching discount rules into the cheapest candidate.
// The accumulator starts at the base price with no rule and is replaced only
// on a strict improvement, so the first rule reaching a price keeps it.
func bestDiscount(base int64, rules []model.TicketRule, applies func(model.TicketRule) bool) candidate {
	return fold(rules, candidate{cents: base}, func(best candidate, rule model.TicketRule) candidate {
		if !applies(rule) {
			return best
		}
		cents := max(0, base-rule.DiscountCents)
		if cents >= best.cents {
			return best
		}
		return candidate{rule: &rule, cents: cents}
	})
}

func result(entry model.TicketRuleEntry, rule model.TicketRule, cents int64) model.PriceResult {
	notes := []string{}
	if rule.Notes != "" {
		notes = append(notes, rule.Notes)
	}
	if rule.Date != nil && rule.Date.TimeWindow != nil {
		notes = append(notes, "valid "+rule.Date.TimeWindow.String())
	}
	return model.PriceResult{
		PriceCents:          price(cents),
		BasePriceCents:      entry.BasePriceCents,
		Currency:            entry.Currency,
		AppliedRuleIDs:      []string{rule.ID},
		Notes:               notes,
		Confidence:          model.ConfidenceHigh,
		SavingsCents:        entry.BasePriceCents - cents,
		RequiresReservation: rule.RequiresReservation,
	}
}

func price(c int64) *int64 { return &c }
