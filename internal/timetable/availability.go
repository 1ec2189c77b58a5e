package timetable

import (
	"fmt"
	"time"
)

// Window is one permitted teaching interval within a day, HH:MM bounds.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DayAvailability covers a single teaching day. A disabled day blocks the
// teacher entirely; an enabled day permits teaching only inside the union
// of its windows.
type DayAvailability struct {
	Enabled bool     `json:"enabled"`
	Slots   []Window `json:"slots"`
}

// Week maps short day keys (Mon, Tue, Wed, Thu, Sat) to availability.
type Week map[string]DayAvailability

// Policy decides what a missing availability record means.
type Policy int

const (
	// PolicyPermissive treats missing data as available at all times. This
	// matches the behaviour the TeachFlow client always exhibited.
	PolicyPermissive Policy = iota
	// PolicyStrict treats missing data as unavailable.
	PolicyStrict
)

// AvailabilityDayKeys are the short keys a Week may carry.
var AvailabilityDayKeys = []string{"Mon", "Tue", "Wed", "Thu", "Sat"}

// Allows reports whether the teacher may teach the full [start, end] span on
// the given day. Days without any recorded windows fall back to the policy
// default; zero-padded HH:MM strings compare correctly as plain strings.
func (w Week) Allows(dayKey, start, end string, policy Policy) bool {
	if w == nil {
		return policy == PolicyPermissive
	}
	day, ok := w[dayKey]
	if !ok {
		return policy == PolicyPermissive
	}
	if !day.Enabled {
		return false
	}
	if len(day.Slots) == 0 {
		return policy == PolicyPermissive
	}
	for _, slot := range day.Slots {
		if slot.Start <= start && end <= slot.End {
			return true
		}
	}
	return false
}

// Validate rejects malformed availability before it is ever trusted: unknown
// day keys, unparseable times, and windows whose end does not come strictly
// after their start.
func (w Week) Validate() error {
	known := make(map[string]struct{}, len(AvailabilityDayKeys))
	for _, key := range AvailabilityDayKeys {
		known[key] = struct{}{}
	}
	for key, day := range w {
		if _, ok := known[key]; !ok {
			return fmt.Errorf("unknown day key %q", key)
		}
		for _, slot := range day.Slots {
			if err := validClock(slot.Start); err != nil {
				return fmt.Errorf("day %s: %w", key, err)
			}
			if err := validClock(slot.End); err != nil {
				return fmt.Errorf("day %s: %w", key, err)
			}
			if slot.End <= slot.Start {
				return fmt.Errorf("day %s: slot end %s must be after start %s", key, slot.End, slot.Start)
			}
		}
	}
	return nil
}

func validClock(raw string) error {
	if _, err := time.Parse("15:04", raw); err != nil {
		return fmt.Errorf("invalid time %q: expected HH:MM", raw)
	}
	return nil
}
