package types

import "fmt"

// Slot is a single bookable interval as returned by the availability API.
// Never mutated after construction; filtering produces new collections.
type Slot struct {
	StartTime string `json:"start_time"` // "HH:MM:SS"
	Duration  int    `json:"duration"`   // minutes
	Price     string `json:"price"`      // e.g. "30 EUR"
}

// DurationPolicy decides which slot durations are worth reporting.
// The policy is injected rather than hardcoded because the acceptable set
// differs per deployment (at least 90 minutes vs. exactly 90 or 120).
type DurationPolicy func(minutes int) bool

// MinDuration accepts every duration of at least min minutes.
func MinDuration(min int) DurationPolicy {
	return func(minutes int) bool { return minutes >= min }
}

// ExactDurations accepts only the listed durations.
func ExactDurations(allowed ...int) DurationPolicy {
	set := make(map[int]bool, len(allowed))
	for _, d := range allowed {
		set[d] = true
	}
	return func(minutes int) bool { return set[minutes] }
}

// MatchesStartTime reports whether the slot starts at one of the given
// times. Exact match on the "HH:MM:SS" value, no tolerance or rounding.
func (s Slot) MatchesStartTime(times ...string) bool {
	for _, t := range times {
		if s.StartTime == t {
			return true
		}
	}
	return false
}

func (s Slot) String() string {
	return fmt.Sprintf("%s (%d)", s.StartTime, s.Duration)
}
