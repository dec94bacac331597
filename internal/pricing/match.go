package pricing

import (
	"slices"
	"strings"
	"time"

	"github.com/iliyamo/visit-planner/internal/calendar"
	"github.com/iliyamo/visit-planner/internal/model"
)

// SeniorAge is the age from which IsSenior rules apply.
const SeniorAge = 65

// DateMatches reports whether c accepts the civil date of date. A nil
// constraint accepts every date. Every present part of c must accept the
// date, so a rule may combine WeekRule with DaysOfWeek. TimeWindow is ignored
// here because a date has no time of day; see DateMatchesAt.
func DateMatches(c *model.DateConstraint, date time.Time) bool {
	if c == nil {
		return true
	}
	if len(c.DaysOfWeek) > 0 && !slices.Contains(c.DaysOfWeek, calendar.ISOWeekday(date)) {
		return false
	}
	if len(c.Months) > 0 && !slices.Contains(c.Months, int(date.Month())) {
		return false
	}
	switch c.WeekRule {
	case model.FirstSunday:
		if date.Weekday() != time.Sunday || date.Day() > 7 {
			return false
		}
	case model.FirstSaturday:
		if date.Weekday() != time.Saturday || date.Day() > 7 {
			return false
		}
	case model.FirstFullWeekend:
		sat, sun := calendar.FirstFullWeekend(date.Year(), date.Month())
		if date.Day() != sat && date.Day() != sun {
			return false
		}
	}
	return true
}

// DateMatchesAt is DateMatches plus the time-of-day window, evaluated on t's
// wall clock.
func DateMatchesAt(c *model.DateConstraint, t time.Time) bool {
	if !DateMatches(c, t) {
		return false
	}
	if c == nil || c.TimeWindow == nil {
		return true
	}
	start, end, ok := c.TimeWindow.Minutes()
	if !ok {
		return false
	}
	m := calendar.MinuteOfDay(t)
	return m >= start && m < end
}

// EligibilityMatches reports whether a traveler satisfies req on date on. A
// nil requirement accepts everyone. Every present field must hold.
//
// Residency is satisfied either by the home location or by any local_resident
// location entry that contains the target as a substring. Student and program
// checks only look at the item type; expirations are not consulted. Age checks
// need an age_based item with a date of birth and never match without one.
func EligibilityMatches(req *model.RuleEligibility, p model.Profile, home model.Location, on time.Time) bool {
	if req == nil {
		return true
	}
	if req.ResidentState != "" && !resides(req.ResidentState, home.Region, p) {
		return false
	}
	if req.ResidentCity != "" && !resides(req.ResidentCity, home.City, p) {
		return false
	}
	if req.IsStudent && !p.Has(model.EligibilityStudent) {
		return false
	}
	if req.Program != "" && !p.Has(req.Program) {
		return false
	}
	if req.IsSenior || req.MaxAge != nil {
		age, ok := ageOn(p, on)
		if !ok {
			return false
		}
		if req.IsSenior && age < SeniorAge {
			return false
		}
		if req.MaxAge != nil && age > *req.MaxAge {
			return false
		}
	}
	return true
}

func resides(target, homeField string, p model.Profile) bool {
	if homeField == target {
		return true
	}
	item, ok := p.Get(model.EligibilityLocalResident)
	if !ok {
		return false
	}
	for _, loc := range item.Details.Locations {
		if strings.Contains(loc, target) {
			return true
		}
	}
	return false
}

func ageOn(p model.Profile, on time.Time) (int, bool) {
	item, ok := p.Get(model.EligibilityAgeBased)
	if !ok {
		return 0, false
	}
	dob, ok := item.Details.BirthDate()
	if !ok {
		return 0, false
	}
	return calendar.AgeOn(dob, on), true
}
