package model

import (
	"fmt"
	"time"
)

type RuleKind string

const (
	RuleKindWeekly  RuleKind = "weekly"
	RuleKindOneTime RuleKind = "one_time"
)

// AvailabilityRule is a teacher's declared open time window, either repeating
// on a weekday or bound to a single calendar date. Times of day are stored as
// hour/minute pairs; the date component is carried by Weekday or Date.
type AvailabilityRule struct {
	ID          int64      `json:"id"`
	TeacherID   int64      `json:"teacher_id"`
	Kind        RuleKind   `json:"kind"`
	Weekday     int        `json:"weekday"` // 0 = Sunday, 6 = Saturday; weekly rules only
	Date        *time.Time `json:"date"`    // one-time rules only
	StartHour   int        `json:"start_hour"`
	StartMinute int        `json:"start_minute"`
	EndHour     int        `json:"end_hour"`
	EndMinute   int        `json:"end_minute"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validate checks the rule's internal consistency.
func (r *AvailabilityRule) Validate() error {
	switch r.Kind {
	case RuleKindWeekly:
		if r.Weekday < 0 || r.Weekday > 6 {
			return fmt.Errorf("weekday must be between 0 and 6, got %d", r.Weekday)
		}
	case RuleKindOneTime:
		if r.Date == nil {
			return fmt.Errorf("one-time rule requires a date")
		}
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}

	if r.StartHour < 0 || r.StartHour > 23 || r.EndHour < 0 || r.EndHour > 24 {
		return fmt.Errorf("hours out of range")
	}
	if r.StartMinute < 0 || r.StartMinute > 59 || r.EndMinute < 0 || r.EndMinute > 59 {
		return fmt.Errorf("minutes out of range")
	}
	if r.EndHour*60+r.EndMinute <= r.StartHour*60+r.StartMinute {
		return fmt.Errorf("end time must be after start time")
	}

	return nil
}

// AppliesOn reports whether the rule produces availability on the given day.
// The day is compared in the day's own location.
func (r *AvailabilityRule) AppliesOn(day time.Time) bool {
	switch r.Kind {
	case RuleKindWeekly:
		return int(day.Weekday()) == r.Weekday
	case RuleKindOneTime:
		if r.Date == nil {
			return false
		}
		y1, m1, d1 := day.Date()
		y2, m2, d2 := r.Date.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	default:
		return false
	}
}
