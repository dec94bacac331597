// Package discount evaluates a venue's promotional programs (seasonal free
// days, monthly recurring promotions, members-only hours) against the
// current instant. All calendar arithmetic happens in one fixed civil time
// zone so that results do not depend on the caller's locale.
package discount

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/visit-planner/internal/calendar"
	"github.com/iliyamo/visit-planner/internal/hours"
	"github.com/iliyamo/visit-planner/internal/model"
	"github.com/iliyamo/visit-planner/internal/pricing"
)

// NextEligibleLayout formats DiscountRow.NextEligible.
const NextEligibleLayout = "Mon Jan 2, 3:04 PM MST"

// Forward scan bounds, in days after today.
const (
	defaultScanDays = 14
	monthlyScanDays = 45
	seasonScanCap   = 366
)

// Result is the evaluation of one venue's programs.
type Result struct {
	VenueID     string              `json:"venue_id"`
	EvaluatedAt string              `json:"evaluated_at"`
	Rows        []model.DiscountRow `json:"rows"`
	MemberNote  string              `json:"member_note,omitempty"`
}

// Resolver evaluates program sets in a fixed time zone.
type Resolver struct {
	loc *time.Location
}

// NewResolver returns a resolver working in loc. A nil loc means UTC.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{loc: loc}
}

// Location returns the resolver's time zone.
func (r *Resolver) Location() *time.Location { return r.loc }

// Resolve evaluates every program of vp for the traveler at instant now.
func (r *Resolver) Resolve(v model.Venue, vp VenuePrograms, p model.Profile, now time.Time) Result {
	now = now.In(r.loc)
	week := hours.Parse(v.Hours)
	res := Result{
		VenueID:     v.ID,
		EvaluatedAt: now.Format(time.RFC3339),
		Rows:        make([]model.DiscountRow, 0, len(vp.Programs)),
		MemberNote:  vp.MemberNote,
	}
	for _, prog := range vp.Programs {
		res.Rows = append(res.Rows, r.row(prog, week, p, now))
	}
	return res
}

func (r *Resolver) row(prog Program, week hours.Week, p model.Profile, now time.Time) model.DiscountRow {
	row := model.DiscountRow{
		ProgramID:   prog.ID,
		Name:        prog.Name,
		Description: prog.Description,
		Window:      prog.window(),
		Qualifies:   qualifies(prog, p),
	}
	if prog.Kind == KindMembershipHours {
		row.Status = model.StatusInfo
		if note := expiryNote(prog, p, now); note != "" {
			row.Description = strings.TrimSpace(row.Description + " " + note)
		}
		return row
	}

	row.ApplicableNow = row.Qualifies && prog.activeAt(now) && week.OpenAt(now.Weekday(), calendar.MinuteOfDay(now))
	switch {
	case row.ApplicableNow:
		row.Status = model.StatusValid
	case prog.Kind == KindSeasonal && !prog.inSeason(now):
		row.Status = model.StatusSeasonal
	default:
		row.Status = model.StatusInactive
	}
	if row.Qualifies && !row.ApplicableNow {
		if next, ok := r.nextEligible(prog, week, now); ok {
			row.NextEligible = next.Format(NextEligibleLayout)
		}
	}
	return row
}

// nextEligible scans forward day by day for the next opening at which prog
// is active. The scan is bounded; ok is false when nothing is found.
func (r *Resolver) nextEligible(prog Program, week hours.Week, now time.Time) (time.Time, bool) {
	today := calendar.Day(now)
	limit := prog.scanDays(today)
	for i := 0; i <= limit; i++ {
		day := today.AddDate(0, 0, i)
		if !prog.activeOn(day) {
			continue
		}
		for _, span := range week.Spans(day.Weekday()) {
			from, to := prog.clip(span)
			if from >= to {
				continue
			}
			opens := calendar.At(day, from, r.loc)
			if opens.After(now) {
				return opens, true
			}
		}
	}
	return time.Time{}, false
}

func qualifies(prog Program, p model.Profile) bool {
	if prog.Requires == "" {
		return true
	}
	item, ok := p.Get(prog.Requires)
	if !ok {
		return false
	}
	if prog.Institution != "" {
		return item.Details.HasInstitution(prog.Institution)
	}
	return true
}

func expiryNote(prog Program, p model.Profile, now time.Time) string {
	if prog.Requires == "" || prog.Institution == "" {
		return ""
	}
	item, ok := p.Get(prog.Requires)
	if !ok {
		return ""
	}
	m, ok := item.Details.Membership(prog.Institution)
	if !ok || !m.Expired(now) {
		return ""
	}
	return "Your membership on file expired on " + m.Expires + "."
}

// civil maps t's civil date to midnight UTC so it compares with season bounds.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (p Program) inSeason(t time.Time) bool {
	c := civil(t)
	return !c.Before(p.start) && !c.After(p.end)
}

func (p Program) constraint() *model.DateConstraint {
	return &model.DateConstraint{DaysOfWeek: p.Weekdays, WeekRule: p.WeekRule, TimeWindow: p.TimeWindow}
}

// activeOn reports whether the program runs on t's civil date, ignoring the
// time of day.
func (p Program) activeOn(t time.Time) bool {
	switch p.Kind {
	case KindSeasonal:
		return p.inSeason(t) && pricing.DateMatches(p.constraint(), t)
	case KindMonthly:
		return pricing.DateMatches(p.constraint(), t)
	}
	return false
}

// activeAt is activeOn plus the program's time window, if any.
func (p Program) activeAt(t time.Time) bool {
	return p.activeOn(t) && pricing.DateMatchesAt(p.constraint(), t)
}

// clip narrows an opening span to the program's time window.
func (p Program) clip(s hours.Span) (from, to int) {
	from, to = s.Open, s.Close
	if p.TimeWindow != nil {
		ws, we, _ := p.TimeWindow.Minutes()
		from, to = max(from, ws), min(to, we)
	}
	return from, to
}

func (p Program) scanDays(today time.Time) int {
	switch p.Kind {
	case KindSeasonal:
		days := int(p.end.Sub(civil(today)).Hours() / 24)
		return min(max(days, -1), seasonScanCap)
	case KindMonthly:
		return monthlyScanDays
	}
	return defaultScanDays
}

var isoDayNames = [...]string{"", "Mondays", "Tuesdays", "Wednesdays", "Thursdays", "Fridays", "Saturdays", "Sundays"}

func weekdayList(days []int) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, isoDayNames[d])
	}
	return strings.Join(names, ", ")
}

func (p Program) window() string {
	switch p.Kind {
	case KindSeasonal:
		w := fmt.Sprintf("%s – %s", p.start.Format("Jan 2, 2006"), p.end.Format("Jan 2, 2006"))
		if len(p.Weekdays) > 0 {
			w += ", " + weekdayList(p.Weekdays)
		}
		if p.TimeWindow != nil {
			w += ", " + p.TimeWindow.String()
		}
		return w
	case KindMonthly:
		w := strings.ReplaceAll(string(p.WeekRule), "_", " ") + " of each month"
		w = strings.ToUpper(w[:1]) + w[1:]
		if p.TimeWindow != nil {
			w += ", " + p.TimeWindow.String()
		}
		return w
	}
	return p.Hours
}
