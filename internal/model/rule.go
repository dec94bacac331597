package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRule is returned by the rule factories and Validate when a rule
// cannot be evaluated.
var ErrInvalidRule = errors.New("invalid ticket rule")

// RuleKind tags a TicketRule as either a free-admission or a discount rule.
type RuleKind string

const (
	RuleFree     RuleKind = "free"
	RuleDiscount RuleKind = "discount"
)

// WeekRule is a recurring monthly calendar position.
type WeekRule string

const (
	FirstSunday      WeekRule = "first_sunday"
	FirstSaturday    WeekRule = "first_saturday"
	FirstFullWeekend WeekRule = "first_full_weekend"
)

// TimeWindow restricts a rule to a time of day, "HH:MM" in 24h format.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Minutes returns the window bounds as minutes after midnight.
func (w TimeWindow) Minutes() (start, end int, ok bool) {
	s, ok1 := clockMinutes(w.Start)
	e, ok2 := clockMinutes(w.End)
	if !ok1 || !ok2 || e <= s {
		return 0, 0, false
	}
	return s, e, true
}

func (w TimeWindow) String() string { return w.Start + "–" + w.End }

func clockMinutes(s string) (int, bool) {
	hh, mm, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, false
	}
	return h*60 + m, true
}

// DateConstraint restricts a rule to certain dates. Every present field must
// accept the date. DaysOfWeek uses ISO numbering (1 = Monday, 7 = Sunday).
type DateConstraint struct {
	DaysOfWeek []int       `json:"day_of_week,omitempty"`
	Months     []int       `json:"month_range,omitempty"`
	WeekRule   WeekRule    `json:"week_rule,omitempty"`
	TimeWindow *TimeWindow `json:"time_window,omitempty"`
}

// RuleEligibility restricts a rule to travelers with certain traits. Every
// present field must hold.
type RuleEligibility struct {
	ResidentState string          `json:"resident_state,omitempty"`
	ResidentCity  string          `json:"resident_city,omitempty"`
	IsStudent     bool            `json:"is_student,omitempty"`
	IsSenior      bool            `json:"is_senior,omitempty"`
	MaxAge        *int            `json:"max_age,omitempty"`
	Program       EligibilityType `json:"has_program,omitempty"`
}

// A nil constraint pointer means "no constraint": the rule accepts every date
// or every traveler. These names make that case explicit at call sites.
var (
	AnyDate *DateConstraint
	Anyone  *RuleEligibility
)

// TicketRule is one admission rule of a venue. Build rules with NewFreeRule or
// NewDiscountRule; rules decoded from storage must pass Validate.
type TicketRule struct {
	ID                  string           `json:"id"`
	Kind                RuleKind         `json:"kind"`
	DiscountCents       int64            `json:"discount_cents,omitempty"`
	Eligibility         *RuleEligibility `json:"eligibility,omitempty"`
	Date                *DateConstraint  `json:"date,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	RequiresReservation bool             `json:"requires_reservation,omitempty"`
}

// NewFreeRule returns a validated free-admission rule.
func NewFreeRule(id string, elig *RuleEligibility, date *DateConstraint, notes string) (TicketRule, error) {
	r := TicketRule{ID: id, Kind: RuleFree, Eligibility: elig, Date: date, Notes: notes}
	if err := r.Validate(); err != nil {
		return TicketRule{}, err
	}
	return r, nil
}

// NewDiscountRule returns a validated rule taking amountCents off the base price.
func NewDiscountRule(id string, amountCents int64, elig *RuleEligibility, date *DateConstraint, notes string) (TicketRule, error) {
	r := TicketRule{ID: id, Kind: RuleDiscount, DiscountCents: amountCents, Eligibility: elig, Date: date, Notes: notes}
	if err := r.Validate(); err != nil {
		return TicketRule{}, err
	}
	return r, nil
}

// Validate checks that the rule is well formed. A rule combining WeekRule and
// DaysOfWeek is valid; both constraints apply.
func (r TicketRule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRule)
	}
	switch r.Kind {
	case RuleFree:
		if r.DiscountCents != 0 {
			return fmt.Errorf("%w: %s: free rule carries a discount amount", ErrInvalidRule, r.ID)
		}
	case RuleDiscount:
		if r.DiscountCents <= 0 {
			return fmt.Errorf("%w: %s: discount amount must be positive", ErrInvalidRule, r.ID)
		}
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidRule, r.ID, r.Kind)
	}
	if d := r.Date; d != nil {
		for _, wd := range d.DaysOfWeek {
			if wd < 1 || wd > 7 {
				return fmt.Errorf("%w: %s: day of week %d out of range", ErrInvalidRule, r.ID, wd)
			}
		}
		for _, m := range d.Months {
			if m < 1 || m > 12 {
				return fmt.Errorf("%w: %s: month %d out of range", ErrInvalidRule, r.ID, m)
			}
		}
		switch d.WeekRule {
		case "", FirstSunday, FirstSaturday, FirstFullWeekend:
		default:
			return fmt.Errorf("%w: %s: unknown week rule %q", ErrInvalidRule, r.ID, d.WeekRule)
		}
		if d.TimeWindow != nil {
			if _, _, ok := d.TimeWindow.Minutes(); !ok {
				return fmt.Errorf("%w: %s: bad time window %q", ErrInvalidRule, r.ID, d.TimeWindow.String())
			}
		}
	}
	if e := r.Eligibility; e != nil && e.MaxAge != nil && *e.MaxAge < 0 {
		return fmt.Errorf("%w: %s: negative max age", ErrInvalidRule, r.ID)
	}
	return nil
}

// TicketRuleEntry is the pricing knowledge for one venue.
type TicketRuleEntry struct {
	VenueID        string       `json:"venue_id"`         // ticket_rule_entries.venue_id
	Currency       string       `json:"currency"`         // ticket_rule_entries.currency
	BasePriceCents int64        `json:"base_price_cents"` // ticket_rule_entries.base_price_cents
	PricingNotes   string       `json:"pricing_notes"`    // ticket_rule_entries.pricing_notes
	Rules          []TicketRule `json:"rules"`            // ticket_rule_entries.rules (JSON)
}

// RulesOfKind returns the entry's rules of kind k in declared order.
func (e TicketRuleEntry) RulesOfKind(k RuleKind) []TicketRule {
	var out []TicketRule
	for _, r := range e.Rules {
		if r.Kind == k {
			out = append(out, r)
		}
	}
	return out
}
