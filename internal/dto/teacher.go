package dto

// AvailabilityWindowRequest is one bookable window inside a day.
type AvailabilityWindowRequest struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// AvailabilityDayRequest toggles a day and lists its windows.
type AvailabilityDayRequest struct {
	Enabled bool                        `json:"enabled"`
	Slots   []AvailabilityWindowRequest `json:"slots" validate:"omitempty,dive"`
}

// UpdateAvailabilityRequest replaces a teacher's weekly availability. Keys
// are the short teaching-day names (Mon, Tue, Wed, Thu, Sat); omitted days
// keep no explicit entry and fall back to the configured default policy.
type UpdateAvailabilityRequest struct {
	Availability map[string]AvailabilityDayRequest `json:"availability" validate:"required"`
}

// TeacherQuery filters the teacher listing.
type TeacherQuery struct {
	Search string `form:"search" json:"search"`
	Active *bool  `form:"active" json:"active"`
	Page   int    `form:"page" json:"page"`
	Size   int    `form:"size" json:"size"`
}
