package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/model"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/schedule"
)

// AvailabilityService manages availability rules and answers the bookable
// slot query by running the schedule pipeline over live rule and lesson data.
type AvailabilityService struct {
	rules   RuleSource
	lessons LessonStore
	users   UserSource
	cache   *SlotCache
	policy  BookingPolicy
	logger  *zap.Logger
	now     func() time.Time
}

func NewAvailabilityService(
	rules RuleSource,
	lessons LessonStore,
	users UserSource,
	cache *SlotCache,
	policy BookingPolicy,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		rules:   rules,
		lessons: lessons,
		users:   users,
		cache:   cache,
		policy:  policy,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateRule validates and stores a new availability rule for the teacher.
func (s *AvailabilityService) CreateRule(ctx context.Context, teacherID int64, rule *model.AvailabilityRule) (*model.AvailabilityRule, error) {
	teacher, err := s.users.GetByID(ctx, teacherID)
	if err != nil {
		return nil, internal(err)
	}
	if teacher == nil || !teacher.IsTeacher {
		return nil, ErrNotFound
	}

	rule.TeacherID = teacherID
	if err := rule.Validate(); err != nil {
		return nil, validationf("%v", err)
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, internal(err)
	}

	s.cache.Bump(ctx, teacherID)
	s.logger.Info("Availability rule created",
		zap.Int64("rule_id", rule.ID),
		zap.Int64("teacher_id", teacherID),
		zap.String("kind", string(rule.Kind)))

	return rule, nil
}

// ListRules returns the teacher's rules.
func (s *AvailabilityService) ListRules(ctx context.Context, teacherID int64) ([]*model.AvailabilityRule, error) {
	rules, err := s.rules.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, internal(err)
	}
	return rules, nil
}

// DeleteRule removes a rule owned by the teacher. Future availability
// disappears immediately; already-booked lessons are independent rows and
// are unaffected.
func (s *AvailabilityService) DeleteRule(ctx context.Context, teacherID, ruleID int64) error {
	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return internal(err)
	}
	if rule == nil || rule.TeacherID != teacherID {
		return ErrNotFound
	}

	if err := s.rules.Delete(ctx, ruleID); err != nil {
		return internal(err)
	}

	s.cache.Bump(ctx, teacherID)
	s.logger.Info("Availability rule deleted",
		zap.Int64("rule_id", ruleID),
		zap.Int64("teacher_id", teacherID))

	return nil
}

// GetBookableSlots derives the teacher's open slots of the requested
// duration within [windowStart, windowEnd), then drops slots outside the
// booking window [now+minAdvanceHours, now+maxBookingDays]. Passing zero for
// either limit resolves the teacher's profile override or the system
// default.
func (s *AvailabilityService) GetBookableSlots(ctx context.Context, teacherID int64, windowStart, windowEnd time.Time, durationMinutes, minAdvanceHours, maxBookingDays int) ([]schedule.Range, error) {
	if !windowEnd.After(windowStart) {
		return nil, validationf("window end must be after window start")
	}
	if !s.policy.supports(durationMinutes) {
		return nil, validationf("unsupported duration %d minutes", durationMinutes)
	}

	// Rule times of day are UTC wall clock. Deriving in the caller's
	// offset would shift which hours a rule covers, so normalize first.
	windowStart = windowStart.UTC()
	windowEnd = windowEnd.UTC()

	teacher, err := s.users.GetByID(ctx, teacherID)
	if err != nil {
		return nil, internal(err)
	}
	if teacher == nil || !teacher.IsTeacher {
		return nil, ErrNotFound
	}

	defMin, defMax := s.policy.resolve(teacher)
	if minAdvanceHours <= 0 {
		minAdvanceHours = defMin
	}
	if maxBookingDays <= 0 {
		maxBookingDays = defMax
	}

	if slots, ok := s.cache.Get(ctx, teacherID, windowStart, windowEnd, durationMinutes); ok {
		return s.clipToBookingWindow(slots, minAdvanceHours, maxBookingDays), nil
	}

	slots, err := s.deriveSlots(ctx, teacherID, windowStart, windowEnd, time.Duration(durationMinutes)*time.Minute)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, teacherID, windowStart, windowEnd, durationMinutes, slots)

	return s.clipToBookingWindow(slots, minAdvanceHours, maxBookingDays), nil
}

// CanonicalSlots re-derives the canonical-duration slots covering the day of
// the given instant, without booking-window clipping. The coordinator uses
// it for the containment check, so it must agree exactly with the query
// path's derivation.
func (s *AvailabilityService) CanonicalSlots(ctx context.Context, teacherID int64, at time.Time) ([]schedule.Range, error) {
	// Same UTC pinning as the query path: the canonical grid must not move
	// with the offset the instant happens to be expressed in.
	at = at.UTC()
	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	return s.deriveSlots(ctx, teacherID, dayStart, dayEnd, time.Duration(s.policy.CanonicalSlotMinutes)*time.Minute)
}

func (s *AvailabilityService) deriveSlots(ctx context.Context, teacherID int64, windowStart, windowEnd time.Time, duration time.Duration) ([]schedule.Range, error) {
	rules, err := s.rules.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, internal(err)
	}

	// Fetch busy intervals a day beyond the window so straddling rule
	// occurrences are still subtracted correctly.
	lessons, err := s.lessons.ListActiveBetween(ctx, teacherID, windowStart.AddDate(0, 0, -1), windowEnd.AddDate(0, 0, 1))
	if err != nil {
		return nil, internal(err)
	}

	busy := make([]schedule.Range, 0, len(lessons))
	for _, l := range lessons {
		busy = append(busy, schedule.Range{Start: l.StartTime, End: l.EndTime})
	}

	buffer := time.Duration(s.policy.BufferMinutes) * time.Minute
	return schedule.BookableSlots(rules, busy, windowStart, windowEnd, duration, buffer), nil
}

func (s *AvailabilityService) clipToBookingWindow(slots []schedule.Range, minAdvanceHours, maxBookingDays int) []schedule.Range {
	now := s.now()
	earliest := now.Add(time.Duration(minAdvanceHours) * time.Hour)
	latest := now.AddDate(0, 0, maxBookingDays)

	out := make([]schedule.Range, 0, len(slots))
	for _, slot := range slots {
		if slot.Start.Before(earliest) || slot.Start.After(latest) {
			continue
		}
		out = append(out, slot)
	}
	return out
}
