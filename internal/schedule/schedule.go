// Package schedule owns the pickup-frequency math for household
// collection schedules: frequency validation, next-pickup computation
// and the overdue/due-soon projection shown to citizens and workers.
package schedule

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultFrequencyDays is the frequency assigned to a freshly
// provisioned schedule.
const DefaultFrequencyDays = 30

// Frequencies are the allowed pickup intervals in days.
var Frequencies = []int{15, 30, 60, 90}

// ErrInvalidFrequency is returned for a frequency outside Frequencies.
var ErrInvalidFrequency = fmt.Errorf("pickup frequency must be one of: 15, 30, 60, 90")

// ErrNotProvisioned marks a household record that predates schedule
// tracking. Distinct from "no pickups yet": callers prompt setup
// instead of rendering an empty schedule.
var ErrNotProvisioned = errors.New("household schedule not provisioned")

// ValidFrequency reports whether days is an allowed pickup interval.
func ValidFrequency(days int) bool {
	for _, f := range Frequencies {
		if f == days {
			return true
		}
	}
	return false
}

// NextPickup returns the next pickup instant after a collection at now
// with the given frequency.
func NextPickup(now time.Time, frequencyDays int) time.Time {
	return now.Add(time.Duration(frequencyDays) * 24 * time.Hour)
}

// Status is the read-only schedule projection.
type Status struct {
	DaysSinceLast *int `json:"days_since_last_pickup"`
	DaysUntilNext *int `json:"days_until_next_pickup"`
	Overdue       bool `json:"overdue"`
}

// DiffDays returns the whole-day difference from a to b, rounding the
// millisecond delta half away from zero. This matches calendar-day
// granularity rather than 24-hour wall-clock boundaries.
func DiffDays(a, b time.Time) int {
	ms := b.Sub(a).Milliseconds()
	return int(math.Round(float64(ms) / 86_400_000.0))
}

// Derive projects the schedule state at now. A household that was
// never collected has nil day counts; an unscheduled household is
// never overdue, only not yet tracked.
func Derive(now time.Time, lastPickup, nextPickup *time.Time) Status {
	var st Status
	if lastPickup != nil {
		d := DiffDays(*lastPickup, now)
		st.DaysSinceLast = &d
	}
	if nextPickup != nil {
		d := DiffDays(now, *nextPickup)
		st.DaysUntilNext = &d
		st.Overdue = d < 0
	}
	return st
}
