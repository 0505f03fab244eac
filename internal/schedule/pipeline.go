package schedule

import (
	"time"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/model"
)

// BookableSlots runs the full pipeline over one teacher's data: expand rules
// within the window, subtract busy intervals, partition the free time into
// slots of the requested duration. Both the slot query and the booking
// containment check derive slots through this one function so they can never
// disagree.
func BookableSlots(rules []*model.AvailabilityRule, busy []Range, windowStart, windowEnd time.Time, duration, buffer time.Duration) []Range {
	ranges := ExpandRules(rules, windowStart, windowEnd)
	free := SubtractBusy(ranges, busy)
	return Partition(free, duration, buffer)
}
