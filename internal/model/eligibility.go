package model

import (
	"strings"
	"time"
)

// EligibilityType names one kind of discount eligibility a traveler can
// declare. A profile holds at most one item per type.
type EligibilityType string

const (
	EligibilityStudent          EligibilityType = "student"
	EligibilityAgeBased         EligibilityType = "age_based"
	EligibilityLocalResident    EligibilityType = "local_resident"
	EligibilityMuseumMembership EligibilityType = "museum_membership"
	EligibilityLibraryPass      EligibilityType = "library_pass"
	EligibilityTeacher          EligibilityType = "teacher"
	EligibilityMilitary         EligibilityType = "military"
	EligibilityEBT              EligibilityType = "ebt"
	EligibilityBankCard         EligibilityType = "bank_card"
)

// dateLayout is the civil date format used for every stored date string.
const dateLayout = "2006-01-02"

// Membership is a per-institution membership record. Expires is a
// YYYY-MM-DD date; empty means no recorded expiration.
type Membership struct {
	Institution string `json:"institution"`
	Expires     string `json:"expires,omitempty"`
}

// Expired reports whether the membership had lapsed before on. A missing or
// unparseable expiration is never expired.
func (m Membership) Expired(on time.Time) bool {
	if m.Expires == "" {
		return false
	}
	exp, err := time.Parse(dateLayout, m.Expires)
	if err != nil {
		return false
	}
	day := time.Date(on.Year(), on.Month(), on.Day(), 0, 0, 0, 0, time.UTC)
	return day.After(exp)
}

// EligibilityDetails carries the optional, type-specific detail of an
// eligibility item. Only the fields relevant to the item's type are set.
type EligibilityDetails struct {
	Locations    []string     `json:"locations,omitempty"`     // local_resident: free-text places
	DateOfBirth  string       `json:"date_of_birth,omitempty"` // age_based: YYYY-MM-DD
	Institutions []string     `json:"institutions,omitempty"`  // student, library_pass
	Memberships  []Membership `json:"memberships,omitempty"`   // museum_membership
}

// BirthDate returns the parsed date of birth.
func (d EligibilityDetails) BirthDate() (time.Time, bool) {
	if d.DateOfBirth == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, d.DateOfBirth)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// HasInstitution reports whether the details name the institution, either in
// Institutions or as a membership record. Comparison ignores case.
func (d EligibilityDetails) HasInstitution(name string) bool {
	for _, in := range d.Institutions {
		if strings.EqualFold(strings.TrimSpace(in), name) {
			return true
		}
	}
	_, ok := d.Membership(name)
	return ok
}

// Membership returns the membership record for the institution.
func (d EligibilityDetails) Membership(name string) (Membership, bool) {
	for _, m := range d.Memberships {
		if strings.EqualFold(strings.TrimSpace(m.Institution), name) {
			return m, true
		}
	}
	return Membership{}, false
}

// EligibilityItem is one declared eligibility with its detail.
type EligibilityItem struct {
	Type    EligibilityType    `json:"type"`
	Details EligibilityDetails `json:"details"`
}

// Profile is a traveler's set of eligibility items keyed by type. The zero
// value is an empty profile.
type Profile struct {
	items map[EligibilityType]EligibilityItem
	order []EligibilityType
}

// NewProfile builds a profile from items. When two items share a type the
// first one wins.
func NewProfile(items []EligibilityItem) Profile {
	p := Profile{items: make(map[EligibilityType]EligibilityItem, len(items))}
	for _, it := range items {
		if it.Type == "" {
			continue
		}
		if _, dup := p.items[it.Type]; dup {
			continue
		}
		p.items[it.Type] = it
		p.order = append(p.order, it.Type)
	}
	return p
}

// Has reports whether the profile holds an item of type t.
func (p Profile) Has(t EligibilityType) bool {
	_, ok := p.items[t]
	return ok
}

// Get returns the item of type t.
func (p Profile) Get(t EligibilityType) (EligibilityItem, bool) {
	it, ok := p.items[t]
	return it, ok
}

// Items returns the items in declaration order.
func (p Profile) Items() []EligibilityItem {
	out := make([]EligibilityItem, 0, len(p.order))
	for _, t := range p.order {
		out = append(out, p.items[t])
	}
	return out
}

// Len returns the number of items.
func (p Profile) Len() int { return len(p.order) }
