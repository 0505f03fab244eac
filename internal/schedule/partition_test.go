package schedule

import (
	"testing"
	"time"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/model"
)

func TestPartition_Basic(t *testing.T) {
	free := []AvailabilityRange{avail(t, 1, 3, 9, 11)}

	slots := Partition(free, 30*time.Minute, 0)
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(mustTime(t, 2025, time.March, 3, 9, 0)) ||
		!slots[3].End.Equal(mustTime(t, 2025, time.March, 3, 11, 0)) {
		t.Fatalf("slot bounds wrong: %+v", slots)
	}
}

func TestPartition_DropsPartialTail(t *testing.T) {
	free := []AvailabilityRange{{
		Start:  mustTime(t, 2025, time.March, 3, 9, 0),
		End:    mustTime(t, 2025, time.March, 3, 10, 45),
		RuleID: 1,
	}}

	slots := Partition(free, time.Hour, 0)
	if len(slots) != 1 {
		t.Fatalf("45-minute tail must be dropped, got %d slots", len(slots))
	}
}

func TestPartition_Buffer(t *testing.T) {
	free := []AvailabilityRange{avail(t, 1, 3, 9, 12)}

	slots := Partition(free, time.Hour, 15*time.Minute)
	if len(slots) != 2 {
		t.Fatalf("expected 2 buffered slots, got %d", len(slots))
	}
	if !slots[1].Start.Equal(mustTime(t, 2025, time.March, 3, 10, 15)) {
		t.Fatalf("second slot must start after the buffer, got %v", slots[1].Start)
	}
}

func TestPartition_SumNeverExceedsFreeTime(t *testing.T) {
	free := []AvailabilityRange{
		avail(t, 1, 3, 9, 12),
		{
			Start:  mustTime(t, 2025, time.March, 3, 13, 0),
			End:    mustTime(t, 2025, time.March, 3, 14, 30),
			RuleID: 2,
		},
	}

	var freeTotal time.Duration
	for _, f := range free {
		freeTotal += f.End.Sub(f.Start)
	}

	for _, dur := range []time.Duration{30 * time.Minute, time.Hour, 90 * time.Minute} {
		var slotTotal time.Duration
		for _, s := range Partition(free, dur, 0) {
			slotTotal += s.Duration()
		}
		if slotTotal > freeTotal {
			t.Fatalf("duration %v: slots sum %v exceeds free time %v", dur, slotTotal, freeTotal)
		}
	}
}

// Mirrors the canonical walkthrough: weekly Monday 09:00–17:00, one confirmed
// lesson 10:00–11:00, queried for that Monday with 60-minute slots.
func TestBookableSlots_MondayWithOneLesson(t *testing.T) {
	rule := weeklyRule(1, 1, 9, 17) // 2025-03-03 is a Monday
	busy := []Range{mustRange(t, 3, 10, 0, 11, 0)}

	slots := BookableSlots(
		[]*model.AvailabilityRule{rule},
		busy,
		mustTime(t, 2025, time.March, 3, 0, 0),
		mustTime(t, 2025, time.March, 4, 0, 0),
		time.Hour,
		0,
	)

	wantStarts := []int{9, 11, 12, 13, 14, 15, 16}
	if len(slots) != len(wantStarts) {
		t.Fatalf("expected %d slots, got %d: %+v", len(wantStarts), len(slots), slots)
	}
	for i, h := range wantStarts {
		want := mustTime(t, 2025, time.March, 3, h, 0)
		if !slots[i].Start.Equal(want) {
			t.Fatalf("slot %d: expected start %v, got %v", i, want, slots[i].Start)
		}
		if slots[i].Duration() != time.Hour {
			t.Fatalf("slot %d: expected 1h duration, got %v", i, slots[i].Duration())
		}
	}
}
