package schedule

import "sort"

// SubtractBusy removes busy intervals from availability ranges and returns
// the free fragments, ordered by start. Each busy interval is applied to the
// current fragment set before the next one, so a fragment can be split
// repeatedly. After subtraction, contiguous fragments that came from the same
// rule are merged back together; fragments from different rules stay separate
// even when they touch.
func SubtractBusy(ranges []AvailabilityRange, busy []Range) []AvailabilityRange {
	sorted := make([]Range, 0, len(busy))
	for _, b := range busy {
		if !b.IsZero() {
			sorted = append(sorted, b)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	fragments := make([]AvailabilityRange, len(ranges))
	copy(fragments, ranges)

	for _, b := range sorted {
		next := make([]AvailabilityRange, 0, len(fragments))
		for _, f := range fragments {
			next = append(next, subtractOne(f, b)...)
		}
		fragments = next
	}

	sort.SliceStable(fragments, func(i, j int) bool {
		return fragments[i].Start.Before(fragments[j].Start)
	})

	return mergeContiguous(fragments)
}

// subtractOne applies a single busy interval to a single fragment.
func subtractOne(f AvailabilityRange, b Range) []AvailabilityRange {
	// No overlap: fragment unchanged.
	if !b.End.After(f.Start) || !b.Start.Before(f.End) {
		return []AvailabilityRange{f}
	}

	coversStart := !b.Start.After(f.Start)
	coversEnd := !b.End.Before(f.End)

	switch {
	case coversStart && coversEnd:
		// Busy swallows the whole fragment.
		return nil
	case coversStart:
		f.Start = b.End
		return []AvailabilityRange{f}
	case coversEnd:
		f.End = b.Start
		return []AvailabilityRange{f}
	default:
		// Busy strictly inside: split into head and tail.
		head := f
		head.End = b.Start
		tail := f
		tail.Start = b.End
		return []AvailabilityRange{head, tail}
	}
}

// mergeContiguous rejoins adjacent fragments that share the same origin rule
// and touch exactly. This undoes artificial splits introduced by busy
// intervals that were later trimmed away, keeping partitioning simple.
func mergeContiguous(fragments []AvailabilityRange) []AvailabilityRange {
	if len(fragments) == 0 {
		return nil
	}

	out := make([]AvailabilityRange, 0, len(fragments))
	cur := fragments[0]
	for _, f := range fragments[1:] {
		if f.RuleID == cur.RuleID && f.OneTime == cur.OneTime && f.Start.Equal(cur.End) {
			cur.End = f.End
			continue
		}
		out = append(out, cur)
		cur = f
	}
	out = append(out, cur)

	return out
}
