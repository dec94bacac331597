// Package repository reads the planner's inputs from MySQL: venues, the
// per-venue ticket rule entries and stored traveler profiles. These sentinel
// values allow higher layers such as handlers to tell a missing row apart
// from a database failure.
package repository

import "errors"

// ErrVenueNotFound is returned when a venue id has no row. Handlers should
// translate this into an HTTP 404 response.
var ErrVenueNotFound = errors.New("venue not found")

// ErrProfileNotFound is returned when a user has no stored profile. Callers
// usually fall back to an empty profile.
var ErrProfileNotFound = errors.New("profile not found")

// placeholders returns "?,?,?" with n markers for an IN clause.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, 2*n-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}

func args(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
