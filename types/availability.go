package types

import "time"

// Availability holds one court's slots for one calendar date. Slot order
// is upstream order and is preserved through filtering.
type Availability struct {
	ResourceID string `json:"resource_id"`
	StartDate  string `json:"start_date"` // "YYYY-MM-DD"
	Slots      []Slot `json:"slots"`
}

// IsAvailableAt reports whether any slot starts at one of the given times
// with an acceptable duration. An empty slot list answers false.
func (a Availability) IsAvailableAt(policy DurationPolicy, times ...string) bool {
	for _, s := range a.Slots {
		if s.MatchesStartTime(times...) && policy(s.Duration) {
			return true
		}
	}
	return false
}

// KeepSlotsAt returns a copy retaining only the slots that start at one of
// the given times with an acceptable duration. The result may hold zero
// slots; that is still a valid Availability, it just answers
// IsAvailableAt false from then on.
func (a Availability) KeepSlotsAt(policy DurationPolicy, times ...string) Availability {
	kept := make([]Slot, 0, len(a.Slots))
	for _, s := range a.Slots {
		if s.MatchesStartTime(times...) && policy(s.Duration) {
			kept = append(kept, s)
		}
	}
	return Availability{ResourceID: a.ResourceID, StartDate: a.StartDate, Slots: kept}
}

// IsWeekend reports whether the date falls on a Saturday or Sunday.
// Unparseable dates count as weekdays.
func (a Availability) IsWeekend() bool {
	d, err := time.Parse("2006-01-02", a.StartDate)
	if err != nil {
		return false
	}
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}

// Clone returns a deep copy.
func (a Availability) Clone() Availability {
	return Availability{
		ResourceID: a.ResourceID,
		StartDate:  a.StartDate,
		Slots:      append([]Slot(nil), a.Slots...),
	}
}
