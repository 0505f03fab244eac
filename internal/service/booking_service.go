package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/model"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/notify"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/schedule"
)

// TransitionAction names a lesson state-machine transition.
type TransitionAction string

const (
	ActionAccept  TransitionAction = "accept"
	ActionDecline TransitionAction = "decline"
	ActionCancel  TransitionAction = "cancel"
)

// BookingProposal is a student's request to reserve a concrete interval
// against a teacher's availability.
type BookingProposal struct {
	TeacherID       int64
	StudentID       int64
	Start           time.Time
	End             time.Time
	DurationMinutes int
	Title           string
	Recurring       bool
}

// BookingService coordinates lesson creation and lifecycle transitions. All
// in-memory checks here are fail-fast advisories; the storage constraints
// behind LessonStore remain the authoritative guard against concurrent
// writers.
type BookingService struct {
	lessons      LessonStore
	rules        RuleSource
	users        UserSource
	availability *AvailabilityService
	events       notify.Sink
	cache        *SlotCache
	policy       BookingPolicy
	logger       *zap.Logger
	now          func() time.Time
}

func NewBookingService(
	lessons LessonStore,
	rules RuleSource,
	users UserSource,
	availability *AvailabilityService,
	events notify.Sink,
	cache *SlotCache,
	policy BookingPolicy,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		lessons:      lessons,
		rules:        rules,
		users:        users,
		availability: availability,
		events:       events,
		cache:        cache,
		policy:       policy,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateBooking validates a proposal and atomically creates a confirmed
// lesson, debiting one credit. Validation order: duration equality,
// supported duration, booking window, canonical slot containment, credit
// balance, overlap guard. The atomic write re-raises Conflict or
// InsufficientCredits if a concurrent writer won the race.
func (s *BookingService) CreateBooking(ctx context.Context, p BookingProposal) (*model.Lesson, error) {
	duration := time.Duration(p.DurationMinutes) * time.Minute
	if p.End.Sub(p.Start) != duration {
		return nil, validationf("duration %d does not match interval %s–%s", p.DurationMinutes, p.Start, p.End)
	}
	if !s.policy.supports(p.DurationMinutes) {
		return nil, validationf("unsupported duration %d minutes", p.DurationMinutes)
	}

	teacher, err := s.users.GetByID(ctx, p.TeacherID)
	if err != nil {
		return nil, internal(err)
	}
	if teacher == nil || !teacher.IsTeacher {
		return nil, ErrNotFound
	}

	minAdvanceHours, maxBookingDays := s.policy.resolve(teacher)
	now := s.now()
	earliest := now.Add(time.Duration(minAdvanceHours) * time.Hour)
	latest := now.AddDate(0, 0, maxBookingDays)
	if p.Start.Before(earliest) {
		return nil, conflictf("start must be at least %d hours ahead", minAdvanceHours)
	}
	if p.Start.After(latest) {
		return nil, conflictf("start must be within %d days", maxBookingDays)
	}

	// Containment in one canonical slot admits sub-dividing an open hour
	// while ruling out intervals that straddle two independently derived
	// slots.
	canonical, err := s.availability.CanonicalSlots(ctx, p.TeacherID, p.Start)
	if err != nil {
		return nil, err
	}
	proposed := schedule.Range{Start: p.Start, End: p.End}
	contained := false
	for _, slot := range canonical {
		if slot.Contains(proposed) {
			contained = true
			break
		}
	}
	if !contained {
		return nil, conflictf("interval is not inside an open slot")
	}

	credits, err := s.users.GetCreditBalance(ctx, p.StudentID)
	if err != nil {
		return nil, internal(err)
	}
	if credits < 1 {
		return nil, ErrInsufficientCredits
	}

	studentIDs, err := s.users.LinkedStudentIDs(ctx, p.StudentID)
	if err != nil {
		return nil, internal(err)
	}
	overlap, err := s.lessons.OverlapExists(ctx, p.Start, p.End, p.TeacherID, studentIDs, 0)
	if err != nil {
		return nil, internal(err)
	}
	if overlap {
		return nil, conflictf("interval collides with an existing lesson")
	}

	lesson := &model.Lesson{
		TeacherID:   p.TeacherID,
		StudentID:   p.StudentID,
		StartTime:   p.Start,
		EndTime:     p.End,
		CreditsUsed: 1,
		Recurring:   p.Recurring,
		Title:       p.Title,
	}
	if err := s.lessons.CreateConfirmedWithDebit(ctx, lesson); err != nil {
		return nil, internal(err)
	}

	s.cache.Bump(ctx, p.TeacherID)
	s.logger.Info("Lesson booked",
		zap.Int64("lesson_id", lesson.ID),
		zap.Int64("teacher_id", p.TeacherID),
		zap.Int64("student_id", p.StudentID),
		zap.Time("start_time", lesson.StartTime))

	s.emit(ctx, notify.EventLessonBooked, p.TeacherID, lesson)

	return lesson, nil
}

// ProposeLesson lets a teacher schedule a pending lesson directly for a
// student; no credits move until the student accepts.
func (s *BookingService) ProposeLesson(ctx context.Context, p BookingProposal) (*model.Lesson, error) {
	duration := time.Duration(p.DurationMinutes) * time.Minute
	if p.End.Sub(p.Start) != duration {
		return nil, validationf("duration %d does not match interval %s–%s", p.DurationMinutes, p.Start, p.End)
	}
	if !s.policy.supports(p.DurationMinutes) {
		return nil, validationf("unsupported duration %d minutes", p.DurationMinutes)
	}
	if !p.Start.After(s.now()) {
		return nil, conflictf("start must be in the future")
	}

	student, err := s.users.GetByID(ctx, p.StudentID)
	if err != nil {
		return nil, internal(err)
	}
	if student == nil {
		return nil, ErrNotFound
	}

	studentIDs, err := s.users.LinkedStudentIDs(ctx, p.StudentID)
	if err != nil {
		return nil, internal(err)
	}
	overlap, err := s.lessons.OverlapExists(ctx, p.Start, p.End, p.TeacherID, studentIDs, 0)
	if err != nil {
		return nil, internal(err)
	}
	if overlap {
		return nil, conflictf("interval collides with an existing lesson")
	}

	lesson := &model.Lesson{
		TeacherID:   p.TeacherID,
		StudentID:   p.StudentID,
		StartTime:   p.Start,
		EndTime:     p.End,
		CreditsUsed: 1,
		Recurring:   p.Recurring,
		Title:       p.Title,
	}
	if err := s.lessons.CreatePending(ctx, lesson); err != nil {
		return nil, internal(err)
	}

	s.cache.Bump(ctx, p.TeacherID)
	s.logger.Info("Lesson proposed",
		zap.Int64("lesson_id", lesson.ID),
		zap.Int64("teacher_id", p.TeacherID),
		zap.Int64("student_id", p.StudentID))

	s.emit(ctx, notify.EventLessonProposed, p.StudentID, lesson)

	return lesson, nil
}

// TransitionLesson applies accept, decline, or cancel on behalf of the
// actor. No transition is permitted once the lesson has started; accepting
// re-runs the overlap guard because availability may have changed since the
// lesson went pending.
func (s *BookingService) TransitionLesson(ctx context.Context, lessonID int64, action TransitionAction, actorID int64) (*model.Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, internal(err)
	}
	if lesson == nil {
		return nil, ErrNotFound
	}

	actorIDs, err := s.actorParticipantIDs(ctx, lesson, actorID)
	if err != nil {
		return nil, err
	}

	if !lesson.StartTime.After(s.now()) {
		return nil, conflictf("lesson has already started")
	}

	switch action {
	case ActionAccept:
		if lesson.Status != model.LessonStatusPending {
			return nil, conflictf("only pending lessons can be accepted")
		}
		overlap, err := s.lessons.OverlapExists(ctx, lesson.StartTime, lesson.EndTime, lesson.TeacherID, actorIDs.studentIDs, lesson.ID)
		if err != nil {
			return nil, internal(err)
		}
		if overlap {
			return nil, conflictf("a conflicting lesson appeared since the request")
		}
		if err := s.lessons.ConfirmWithDebit(ctx, lesson.ID, lesson.StudentID, lesson.CreditsUsed); err != nil {
			return nil, internal(err)
		}
		s.emit(ctx, notify.EventLessonConfirmed, s.otherParty(lesson, actorID), lesson)

	case ActionDecline:
		if lesson.Status != model.LessonStatusPending {
			return nil, conflictf("only pending lessons can be declined")
		}
		if err := s.lessons.UpdateStatus(ctx, lesson.ID, model.LessonStatusCancelled); err != nil {
			return nil, internal(err)
		}
		s.emit(ctx, notify.EventLessonDeclined, s.otherParty(lesson, actorID), lesson)

	case ActionCancel:
		if lesson.Status != model.LessonStatusConfirmed {
			return nil, conflictf("only confirmed lessons can be cancelled")
		}
		if err := s.lessons.UpdateStatus(ctx, lesson.ID, model.LessonStatusCancelled); err != nil {
			return nil, internal(err)
		}
		s.emit(ctx, notify.EventLessonCancelled, s.otherParty(lesson, actorID), lesson)

	default:
		return nil, validationf("unknown action %q", action)
	}

	s.cache.Bump(ctx, lesson.TeacherID)

	updated, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, internal(err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	s.logger.Info("Lesson transitioned",
		zap.Int64("lesson_id", lessonID),
		zap.String("action", string(action)),
		zap.String("status", string(updated.Status)),
		zap.Int64("actor_id", actorID))

	return updated, nil
}

type participantIDs struct {
	studentIDs []int64
}

// actorParticipantIDs authorizes the actor against the lesson. Teachers act
// directly; students act through any profile linked to their account.
func (s *BookingService) actorParticipantIDs(ctx context.Context, lesson *model.Lesson, actorID int64) (participantIDs, error) {
	if actorID == lesson.TeacherID {
		ids, err := s.users.LinkedStudentIDs(ctx, lesson.StudentID)
		if err != nil {
			return participantIDs{}, internal(err)
		}
		return participantIDs{studentIDs: ids}, nil
	}

	ids, err := s.users.LinkedStudentIDs(ctx, actorID)
	if err != nil {
		return participantIDs{}, internal(err)
	}
	for _, id := range ids {
		if id == lesson.StudentID {
			return participantIDs{studentIDs: ids}, nil
		}
	}

	return participantIDs{}, ErrNotFound
}

func (s *BookingService) otherParty(lesson *model.Lesson, actorID int64) int64 {
	if actorID == lesson.TeacherID {
		return lesson.StudentID
	}
	return lesson.TeacherID
}

// emit publishes a domain event; failures are logged and deliberately do not
// affect the booking outcome.
func (s *BookingService) emit(ctx context.Context, typ notify.EventType, recipientID int64, lesson *model.Lesson) {
	if s.events == nil {
		return
	}

	event := notify.NewEvent(typ, recipientID, lesson.ID, map[string]any{
		"teacher_id": lesson.TeacherID,
		"student_id": lesson.StudentID,
		"start_time": lesson.StartTime.Format(time.RFC3339),
		"end_time":   lesson.EndTime.Format(time.RFC3339),
	})
	if err := s.events.Emit(ctx, event); err != nil {
		s.logger.Warn("event emit failed",
			zap.String("event_type", string(typ)),
			zap.Int64("lesson_id", lesson.ID),
			zap.Error(err))
	}
}
