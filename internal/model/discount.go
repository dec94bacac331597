package model

// DiscountStatus is the display variant of a promotional program row.
type DiscountStatus string

const (
	StatusValid    DiscountStatus = "valid"
	StatusInactive DiscountStatus = "inactive"
	StatusSeasonal DiscountStatus = "seasonal"
	StatusInfo     DiscountStatus = "info"
)

// DiscountRow is one promotional program of a venue evaluated for one
// traveler at one instant. Qualifies ignores time; ApplicableNow does not.
type DiscountRow struct {
	ProgramID     string         `json:"program_id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Window        string         `json:"window,omitempty"`
	Qualifies     bool           `json:"qualifies"`
	ApplicableNow bool           `json:"applicable_now"`
	Status        DiscountStatus `json:"status"`
	NextEligible  string         `json:"next_eligible,omitempty"`
}
