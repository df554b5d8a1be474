package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testAvailability() Availability {
	return Availability{
		ResourceID: "r1",
		StartDate:  "2024-01-06",
		Slots: []Slot{
			{StartTime: "17:30:00", Duration: 90, Price: "30 EUR"},
			{StartTime: "18:00:00", Duration: 60, Price: "20 EUR"},
			{StartTime: "19:00:00", Duration: 120, Price: "40 EUR"},
		},
	}
}

func TestAvailabilityIsAvailableAt(t *testing.T) {
	a := testAvailability()
	policy := ExactDurations(90, 120)

	assert.True(t, a.IsAvailableAt(policy, "17:30:00"))
	assert.True(t, a.IsAvailableAt(policy, "17:30:00", "19:00:00"))
	// matching start time but unacceptable duration
	assert.False(t, a.IsAvailableAt(policy, "18:00:00"))
	assert.False(t, a.IsAvailableAt(policy, "20:00:00"))
	assert.False(t, a.IsAvailableAt(policy))
}

func TestAvailabilityIsAvailableAtEmptySlots(t *testing.T) {
	a := Availability{ResourceID: "r1", StartDate: "2024-01-06"}
	assert.False(t, a.IsAvailableAt(MinDuration(0), "17:30:00"))
}

func TestAvailabilityKeepSlotsAt(t *testing.T) {
	a := testAvailability()
	policy := ExactDurations(90, 120)

	kept := a.KeepSlotsAt(policy, "17:30:00", "18:00:00")

	assert.Equal(t, []Slot{{StartTime: "17:30:00", Duration: 90, Price: "30 EUR"}}, kept.Slots)
	assert.Equal(t, "r1", kept.ResourceID)
	assert.Equal(t, "2024-01-06", kept.StartDate)
	// the original is untouched
	assert.Len(t, a.Slots, 3)
}

func TestAvailabilityKeepSlotsAtIsIdempotent(t *testing.T) {
	a := testAvailability()
	policy := MinDuration(90)

	once := a.KeepSlotsAt(policy, "17:30:00", "19:00:00")
	twice := once.KeepSlotsAt(policy, "17:30:00", "19:00:00")

	assert.Equal(t, once, twice)
}

func TestAvailabilityKeepSlotsAtCanEmpty(t *testing.T) {
	a := testAvailability()
	policy := MinDuration(90)

	kept := a.KeepSlotsAt(policy, "06:00:00")

	assert.Empty(t, kept.Slots)
	// an emptied availability is still valid, it just never matches again
	assert.False(t, kept.IsAvailableAt(policy, "17:30:00"))
}

func TestAvailableIffKeepYieldsSlots(t *testing.T) {
	a := testAvailability()
	policy := ExactDurations(90, 120)

	for _, times := range [][]string{
		{"17:30:00"},
		{"18:00:00"},
		{"19:00:00", "06:00:00"},
		{"06:00:00"},
		{},
	} {
		available := a.IsAvailableAt(policy, times...)
		kept := a.KeepSlotsAt(policy, times...)
		assert.Equal(t, available, len(kept.Slots) > 0, "times %v", times)
	}
}

func TestAvailabilityIsWeekend(t *testing.T) {
	assert.True(t, Availability{StartDate: "2024-01-06"}.IsWeekend())  // Saturday
	assert.True(t, Availability{StartDate: "2024-01-07"}.IsWeekend())  // Sunday
	assert.False(t, Availability{StartDate: "2024-01-08"}.IsWeekend()) // Monday
	assert.False(t, Availability{StartDate: "not-a-date"}.IsWeekend())
}

func TestAvailabilityCloneIsDeep(t *testing.T) {
	a := testAvailability()
	clone := a.Clone()

	clone.Slots[0].StartTime = "00:00:00"

	assert.Equal(t, "17:30:00", a.Slots[0].StartTime)
}
