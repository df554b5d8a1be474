package types

import (
	"fmt"
	"strings"
)

// NoCourtsAvailable is the sentinel a venue summary ends with when nothing
// matched the desired times.
const NoCourtsAvailable = "no courts available"

// TenantRecord is the subset of the tenants response the bot cares about.
type TenantRecord struct {
	TenantID   string     `json:"tenant_id"`
	TenantName string     `json:"tenant_name"`
	Address    Address    `json:"address"`
	Resources  []Resource `json:"resources"`
}

type Address struct {
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// Tenant is a venue with a fixed set of courts, built once from the
// resources in the tenants response. Courts are never added or removed
// afterwards; only their availability changes.
type Tenant struct {
	record TenantRecord
	courts []*Court
}

func NewTenant(record TenantRecord) *Tenant {
	t := &Tenant{record: record}
	for _, r := range record.Resources {
		t.courts = append(t.courts, NewCourt(r))
	}
	return t
}

func (t *Tenant) ID() string       { return t.record.TenantID }
func (t *Tenant) Name() string     { return strings.TrimSpace(t.record.TenantName) }
func (t *Tenant) Address() Address { return t.record.Address }

// IsRelevant reports whether the tenant is on the given venue allow-list.
func (t *Tenant) IsRelevant(allowlist []string) bool {
	for _, id := range allowlist {
		if t.record.TenantID == id {
			return true
		}
	}
	return false
}

// Courts returns a deep copy of the tenant's courts, in resource order.
func (t *Tenant) Courts() []*Court {
	out := make([]*Court, 0, len(t.courts))
	for _, c := range t.courts {
		out = append(out, c.Clone())
	}
	return out
}

// SetAvailability hands the full list to every court; each court keeps the
// entries matching its own resource id. Entries matching no court are
// dropped without error.
func (t *Tenant) SetAvailability(availability []Availability) {
	for _, c := range t.courts {
		c.SetAvailability(availability)
	}
}

// AvailableCourtsWithSlotsAt returns deep copies of the indoor courts that
// are available at the given times, each pruned down to the matching dates
// and slots. Outdoor courts never appear, slot match or not.
func (t *Tenant) AvailableCourtsWithSlotsAt(policy DurationPolicy, times ...string) []*Court {
	courts := make([]*Court, 0, len(t.courts))
	for _, c := range t.courts {
		if !c.IsIndoor() || !c.IsAvailableAt(policy, times...) {
			continue
		}
		match := c.Clone()
		match.KeepAvailabilitiesWithSlotsAt(policy, times...)
		courts = append(courts, match)
	}
	return courts
}

// SummariseAvailableCourtsWithSlotsAt renders the venue report. Courts
// appear in resource order and dates in fetch order, so identical input
// always renders the identical string.
func (t *Tenant) SummariseAvailableCourtsWithSlotsAt(policy DurationPolicy, times ...string) string {
	courts := t.AvailableCourtsWithSlotsAt(policy, times...)
	if len(courts) == 0 {
		return fmt.Sprintf("%s: %s", t.Name(), NoCourtsAvailable)
	}

	var b strings.Builder
	b.WriteString(t.Name())
	for _, c := range courts {
		b.WriteString("\n\t" + c.Name() + ":")
		for _, a := range c.Availability() {
			b.WriteString("\n\t\t" + a.StartDate + ":")
			for _, s := range a.Slots {
				b.WriteString("\n\t\t\t" + s.String())
			}
		}
	}
	return b.String()
}
