package schedule

import (
	"testing"
	"time"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/model"
)

func weeklyRule(id int64, weekday, startHour, endHour int) *model.AvailabilityRule {
	return &model.AvailabilityRule{
		ID:        id,
		TeacherID: 1,
		Kind:      model.RuleKindWeekly,
		Weekday:   weekday,
		StartHour: startHour,
		EndHour:   endHour,
	}
}

func oneTimeRule(id int64, date time.Time, startHour, endHour int) *model.AvailabilityRule {
	return &model.AvailabilityRule{
		ID:        id,
		TeacherID: 1,
		Kind:      model.RuleKindOneTime,
		Date:      &date,
		StartHour: startHour,
		EndHour:   endHour,
	}
}

func TestExpandRules_WeeklyMatchesWeekday(t *testing.T) {
	// 2025-03-03 is a Monday.
	rule := weeklyRule(1, 1, 9, 17)
	windowStart := mustTime(t, 2025, time.March, 3, 0, 0)
	windowEnd := mustTime(t, 2025, time.March, 10, 0, 0)

	ranges := ExpandRules([]*model.AvailabilityRule{rule}, windowStart, windowEnd)
	if len(ranges) != 1 {
		t.Fatalf("expected 1 range for one Monday in window, got %d", len(ranges))
	}

	want := AvailabilityRange{
		Start:  mustTime(t, 2025, time.March, 3, 9, 0),
		End:    mustTime(t, 2025, time.March, 3, 17, 0),
		RuleID: 1,
	}
	if !ranges[0].Start.Equal(want.Start) || !ranges[0].End.Equal(want.End) {
		t.Fatalf("expected %v–%v, got %v–%v", want.Start, want.End, ranges[0].Start, ranges[0].End)
	}
	if ranges[0].RuleID != 1 || ranges[0].OneTime {
		t.Fatalf("provenance lost: %+v", ranges[0])
	}
}

func TestExpandRules_OneTimeExactDate(t *testing.T) {
	date := mustTime(t, 2025, time.March, 5, 0, 0)
	rule := oneTimeRule(7, date, 10, 12)

	ranges := ExpandRules(
		[]*model.AvailabilityRule{rule},
		mustTime(t, 2025, time.March, 1, 0, 0),
		mustTime(t, 2025, time.March, 31, 0, 0),
	)
	if len(ranges) != 1 {
		t.Fatalf("one-time rule must fire exactly once, got %d", len(ranges))
	}
	if !ranges[0].OneTime {
		t.Fatalf("one-time flag not set")
	}
	if !ranges[0].Start.Equal(mustTime(t, 2025, time.March, 5, 10, 0)) {
		t.Fatalf("unexpected start %v", ranges[0].Start)
	}
}

func TestExpandRules_DiscardsOutsideWindow(t *testing.T) {
	rule := weeklyRule(1, 1, 9, 17)

	// Window covers Tuesday through Thursday; the Monday occurrence ends
	// before the window opens.
	ranges := ExpandRules(
		[]*model.AvailabilityRule{rule},
		mustTime(t, 2025, time.March, 4, 0, 0),
		mustTime(t, 2025, time.March, 7, 0, 0),
	)
	if len(ranges) != 0 {
		t.Fatalf("expected no ranges, got %d", len(ranges))
	}
}

func TestExpandRules_KeepsStraddlingOccurrence(t *testing.T) {
	rule := weeklyRule(1, 1, 9, 17)

	// Window opens mid-occurrence; the range is kept whole, not clipped.
	ranges := ExpandRules(
		[]*model.AvailabilityRule{rule},
		mustTime(t, 2025, time.March, 3, 12, 0),
		mustTime(t, 2025, time.March, 4, 0, 0),
	)
	if len(ranges) != 1 {
		t.Fatalf("expected 1 range, got %d", len(ranges))
	}
	if !ranges[0].Start.Equal(mustTime(t, 2025, time.March, 3, 9, 0)) {
		t.Fatalf("straddling range must keep its full extent, got start %v", ranges[0].Start)
	}
}

func TestExpandRules_CrossRuleOverlapSurvives(t *testing.T) {
	rules := []*model.AvailabilityRule{
		weeklyRule(1, 1, 9, 13),
		weeklyRule(2, 1, 11, 17),
	}

	ranges := ExpandRules(rules,
		mustTime(t, 2025, time.March, 3, 0, 0),
		mustTime(t, 2025, time.March, 4, 0, 0),
	)
	if len(ranges) != 2 {
		t.Fatalf("overlapping rules must both materialize, got %d ranges", len(ranges))
	}
	if !ranges[0].Start.Before(ranges[1].Start) {
		t.Fatalf("output must be sorted by start")
	}
}

func TestExpandRules_SortedAcrossDays(t *testing.T) {
	rules := []*model.AvailabilityRule{
		weeklyRule(1, 3, 9, 10), // Wednesday
		weeklyRule(2, 1, 9, 10), // Monday
	}

	ranges := ExpandRules(rules,
		mustTime(t, 2025, time.March, 3, 0, 0),
		mustTime(t, 2025, time.March, 10, 0, 0),
	)
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(ranges))
	}
	if ranges[0].RuleID != 2 || ranges[1].RuleID != 1 {
		t.Fatalf("expected Monday rule first, got order %d, %d", ranges[0].RuleID, ranges[1].RuleID)
	}
}
