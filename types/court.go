package types

import "strings"

// Resource is the static court description inside a tenants response.
type Resource struct {
	ResourceID string             `json:"resource_id"`
	Name       string             `json:"name"`
	Properties ResourceProperties `json:"properties"`
}

type ResourceProperties struct {
	ResourceType string `json:"resource_type"` // "indoor" or "outdoor"
	ResourceSize string `json:"resource_size"` // "single" or "double"
}

// Court is one bookable unit of a tenant. Static metadata comes from the
// tenants response; the availability list is only changed through
// SetAvailability and KeepAvailabilitiesWithSlotsAt, and getters hand out
// deep copies so callers cannot reach the internal state.
type Court struct {
	resource     Resource
	availability []Availability
}

func NewCourt(resource Resource) *Court {
	return &Court{resource: resource}
}

func (c *Court) ID() string   { return c.resource.ResourceID }
func (c *Court) Name() string { return strings.TrimSpace(c.resource.Name) }

func (c *Court) IsIndoor() bool {
	return c.resource.Properties.ResourceType == "indoor"
}

// SetAvailability replaces the entire availability list with the subset of
// the given entries whose resource id matches this court. Entries for
// other resources are silently dropped. This is a wholesale replace, not a
// merge: anything held before the call is gone, so callers must always
// pass the complete desired set.
func (c *Court) SetAvailability(availability []Availability) {
	kept := make([]Availability, 0, len(availability))
	for _, a := range availability {
		if a.ResourceID == c.ID() {
			kept = append(kept, a.Clone())
		}
	}
	c.availability = kept
}

// Availability returns a deep copy of the court's availability list, in
// the order it was set.
func (c *Court) Availability() []Availability {
	out := make([]Availability, 0, len(c.availability))
	for _, a := range c.availability {
		out = append(out, a.Clone())
	}
	return out
}

// IsAvailableAt reports whether any held date has a matching slot.
func (c *Court) IsAvailableAt(policy DurationPolicy, times ...string) bool {
	for _, a := range c.availability {
		if a.IsAvailableAt(policy, times...) {
			return true
		}
	}
	return false
}

// KeepAvailabilitiesWithSlotsAt filters every availability down to the
// matching slots, then drops the dates with nothing left. The court's own
// list is replaced with the result.
func (c *Court) KeepAvailabilitiesWithSlotsAt(policy DurationPolicy, times ...string) {
	kept := make([]Availability, 0, len(c.availability))
	for _, a := range c.availability {
		filtered := a.KeepSlotsAt(policy, times...)
		if filtered.IsAvailableAt(policy, times...) {
			kept = append(kept, filtered)
		}
	}
	c.availability = kept
}

// Clone returns a deep copy of the court.
func (c *Court) Clone() *Court {
	return &Court{resource: c.resource, availability: c.Availability()}
}
