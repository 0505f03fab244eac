package schedule

import (
	"sort"
	"time"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/model"
)

// ExpandRules materializes a teacher's availability rules into concrete
// ranges overlapping [windowStart, windowEnd). Weekly rules fire on every
// matching weekday, one-time rules exactly on their date. Ranges fully
// outside the window are discarded; ranges straddling a window edge are kept
// whole. Output is sorted by start (stable, so ties keep rule order).
//
// A single rule never overlaps itself; overlaps between different rules are
// legal and preserved for downstream stages.
func ExpandRules(rules []*model.AvailabilityRule, windowStart, windowEnd time.Time) []AvailabilityRange {
	if !windowEnd.After(windowStart) {
		return nil
	}

	loc := windowStart.Location()
	day := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, loc)
	last := time.Date(windowEnd.Year(), windowEnd.Month(), windowEnd.Day(), 0, 0, 0, 0, loc)

	var out []AvailabilityRange
	for ; !day.After(last); day = day.AddDate(0, 0, 1) {
		for _, r := range rules {
			if !r.AppliesOn(day) {
				continue
			}

			y, m, d := day.Date()
			start := time.Date(y, m, d, r.StartHour, r.StartMinute, 0, 0, loc)
			end := time.Date(y, m, d, r.EndHour, r.EndMinute, 0, 0, loc)

			if !end.After(windowStart) || !start.Before(windowEnd) {
				continue
			}

			out = append(out, AvailabilityRange{
				Start:   start,
				End:     end,
				RuleID:  r.ID,
				OneTime: r.Kind == model.RuleKindOneTime,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})

	return out
}
