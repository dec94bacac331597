package model

// Venue represents a place a traveler can visit, such as a museum or a
// garden. A venue is read-only for the duration of one planning call.
//
// Fields:
//
//	ID           – primary key identifier.
//	Name         – display name.
//	Lat, Lng     – coordinates in decimal degrees.
//	Hours        – free-text opening hours keyed by weekday ("monday",
//	               "tue-sun", ...). The hours package parses it.
//	City, State,
//	Country      – where the venue is.
//	VisitMinutes – suggested visit length; zero means use the planner default.
type Venue struct {
	ID           string            `json:"id"`                      // venues.id
	Name         string            `json:"name"`                    // venues.name
	Lat          float64           `json:"lat"`                     // venues.lat
	Lng          float64           `json:"lng"`                     // venues.lng
	Hours        map[string]string `json:"hours,omitempty"`         // venues.hours (JSON)
	City         string            `json:"city"`                    // venues.city
	State        string            `json:"state"`                   // venues.state
	Country      string            `json:"country"`                 // venues.country
	VisitMinutes int               `json:"visit_minutes,omitempty"` // venues.visit_minutes
}

// Location is a traveler's home location.
type Location struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}
