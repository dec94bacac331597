// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/visit-planner/internal/planner"
)

// PlanGeneratedQueue is the durable queue carrying PlanGeneratedEvent.
const PlanGeneratedQueue = "plan.generated"

// PlanGeneratedEvent is published after a plan is generated. It carries the
// plan's summary so downstream consumers can log or aggregate without
// regenerating it. UserID is zero for anonymous callers.
type PlanGeneratedEvent struct {
	PlanID         string `json:"plan_id"`
	UserID         uint64 `json:"user_id"`
	Mode           string `json:"mode"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	VenueCount     int    `json:"venue_count"`
	ScheduledCount int    `json:"scheduled_count"`
	TotalCents     int64  `json:"total_cents"`
	SavingsCents   int64  `json:"savings_cents"`
	GeneratedAt    string `json:"generated_at"`
}

// NewPlanGeneratedEvent summarises p for userID at time at.
func NewPlanGeneratedEvent(p *planner.Plan, userID uint64, at time.Time) PlanGeneratedEvent {
	return PlanGeneratedEvent{
		PlanID:         p.ID,
		UserID:         userID,
		Mode:           string(p.Mode),
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		VenueCount:     len(p.TicketPlan) + len(p.Unscheduled),
		ScheduledCount: len(p.TicketPlan),
		TotalCents:     p.TotalCents,
		SavingsCents:   p.SavingsCents,
		GeneratedAt:    at.UTC().Format(time.RFC3339),
	}
}
