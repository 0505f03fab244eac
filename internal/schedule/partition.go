package schedule

import "time"

// Partition carves free fragments into fixed-duration bookable slots.
// Slots are placed greedily from each fragment's start, advancing by
// duration plus buffer; a tail too short for a full slot is dropped.
// Fragments are processed in order, so the output is start-ascending except
// where fragments from different rules begin at the same instant.
func Partition(free []AvailabilityRange, duration, buffer time.Duration) []Range {
	if duration <= 0 {
		return nil
	}

	var slots []Range
	step := duration + buffer
	for _, f := range free {
		for cur := f.Start; !cur.Add(duration).After(f.End); cur = cur.Add(step) {
			slots = append(slots, Range{Start: cur, End: cur.Add(duration)})
		}
	}

	return slots
}
