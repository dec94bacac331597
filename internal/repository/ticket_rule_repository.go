package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/iliyamo/visit-planner/internal/model"
)

// TicketRuleRepo reads the 'ticket_rule_entries' table. Each row holds the
// pricing knowledge for one venue with its rules stored as a JSON array.
type TicketRuleRepo struct{ DB *sql.DB }

func NewTicketRuleRepo(db *sql.DB) *TicketRuleRepo { return &TicketRuleRepo{DB: db} }

// MapByVenueIDs returns the entries for ids keyed by venue id. Venues with
// no row are absent from the map, which prices them as unknown.
func (r *TicketRuleRepo) MapByVenueIDs(ctx context.Context, ids []string) (map[string]model.TicketRuleEntry, error) {
	out := make(map[string]model.TicketRuleEntry, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT venue_id,currency,base_price_cents,pricing_notes,rules FROM ticket_rule_entries WHERE venue_id IN ("+
			placeholders(len(ids))+")", args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e     model.TicketRuleEntry
			notes sql.NullString
			rules sql.NullString
		)
		if err := rows.Scan(&e.VenueID, &e.Currency, &e.BasePriceCents, &notes, &rules); err != nil {
			return nil, err
		}
		if e.BasePriceCents < 0 {
			log.Printf("repository: venue %s: negative base price %d, entry skipped", e.VenueID, e.BasePriceCents)
			continue
		}
		e.PricingNotes = notes.String
		e.Rules, err = decodeRules(e.VenueID, rules)
		if err != nil {
			return nil, err
		}
		out[e.VenueID] = e
	}
	return out, rows.Err()
}

// decodeRules parses the rules column. A rule that fails validation is
// logged and dropped; the rest of the entry still applies.
func decodeRules(venueID string, col sql.NullString) ([]model.TicketRule, error) {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil, nil
	}
	var raw []model.TicketRule
	if err := json.Unmarshal([]byte(col.String), &raw); err != nil {
		return nil, fmt.Errorf("venue %s: decode rules: %w", venueID, err)
	}
	rules := raw[:0]
	for _, rule := range raw {
		if err := rule.Validate(); err != nil {
			log.Printf("repository: venue %s: %v, rule skipped", venueID, err)
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
