// Package schedule implements the availability-to-bookable-slot pipeline:
// expanding availability rules into dated ranges, subtracting existing
// commitments, and partitioning the free time into fixed-duration slots.
// All intervals are half-open [Start, End).
package schedule

import "time"

// Range is a concrete half-open time interval.
type Range struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// IsZero reports whether the range carries no time.
func (r Range) IsZero() bool {
	return !r.End.After(r.Start)
}

// Overlaps reports whether two half-open intervals intersect.
func (r Range) Overlaps(o Range) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Contains reports whether o lies fully inside r.
func (r Range) Contains(o Range) bool {
	return !o.Start.Before(r.Start) && !o.End.After(r.End)
}

// AvailabilityRange is one dated occurrence of an availability rule.
// RuleID and OneTime identify the origin; they gate fragment merging after
// subtraction and are never used for ownership checks.
type AvailabilityRange struct {
	Start   time.Time
	End     time.Time
	RuleID  int64
	OneTime bool
}

// Range returns the occurrence's time interval.
func (a AvailabilityRange) Range() Range {
	return Range{Start: a.Start, End: a.End}
}
