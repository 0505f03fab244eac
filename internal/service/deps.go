// Package service hosts the booking engine: slot derivation queries, the
// booking coordinator, and the lesson state machine. Collaborators are
// consumed through narrow interfaces so the engine stays independent of the
// storage and transport wiring.
package service

import (
	"context"
	"time"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/model"
)

// RuleSource provides availability rules.
type RuleSource interface {
	Create(ctx context.Context, rule *model.AvailabilityRule) error
	GetByID(ctx context.Context, id int64) (*model.AvailabilityRule, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]*model.AvailabilityRule, error)
	Delete(ctx context.Context, id int64) error
}

// LessonStore provides lessons, the overlap existence test, and the atomic
// writes that pair a status change with a credit movement.
type LessonStore interface {
	GetByID(ctx context.Context, id int64) (*model.Lesson, error)
	ListActiveBetween(ctx context.Context, teacherID int64, from, to time.Time) ([]*model.Lesson, error)
	OverlapExists(ctx context.Context, start, end time.Time, teacherID int64, studentIDs []int64, excludeLessonID int64) (bool, error)
	CreateConfirmedWithDebit(ctx context.Context, lesson *model.Lesson) error
	CreatePending(ctx context.Context, lesson *model.Lesson) error
	ConfirmWithDebit(ctx context.Context, lessonID, studentID int64, credits int) error
	UpdateStatus(ctx context.Context, id int64, status model.LessonStatus) error
}

// UserSource provides users, credit balances, and profile linkage.
type UserSource interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetCreditBalance(ctx context.Context, studentID int64) (int, error)
	LinkedStudentIDs(ctx context.Context, studentID int64) ([]int64, error)
}

// BookingPolicy holds system-wide booking limits. Teachers may override the
// advance-notice and horizon values on their profile.
type BookingPolicy struct {
	MinAdvanceHours      int
	MaxBookingDays       int
	CanonicalSlotMinutes int
	SupportedDurations   []int
	BufferMinutes        int
}

// DefaultBookingPolicy mirrors the platform defaults: book at least 12 hours
// ahead, at most 30 days out, against a 60-minute canonical grid that also
// admits 30-minute lessons.
func DefaultBookingPolicy() BookingPolicy {
	return BookingPolicy{
		MinAdvanceHours:      12,
		MaxBookingDays:       30,
		CanonicalSlotMinutes: 60,
		SupportedDurations:   []int{30, 60},
		BufferMinutes:        0,
	}
}

// resolve applies a teacher's profile overrides on top of the defaults.
func (p BookingPolicy) resolve(teacher *model.User) (minAdvanceHours, maxBookingDays int) {
	minAdvanceHours = p.MinAdvanceHours
	maxBookingDays = p.MaxBookingDays
	if teacher != nil {
		if teacher.MinAdvanceHours != nil {
			minAdvanceHours = *teacher.MinAdvanceHours
		}
		if teacher.MaxBookingDays != nil {
			maxBookingDays = *teacher.MaxBookingDays
		}
	}
	return minAdvanceHours, maxBookingDays
}

func (p BookingPolicy) supports(durationMinutes int) bool {
	for _, d := range p.SupportedDurations {
		if d == durationMinutes {
			return true
		}
	}
	return false
}
