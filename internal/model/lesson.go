package model

import "time"

type LessonStatus string

const (
	LessonStatusPending   LessonStatus = "pending"
	LessonStatusConfirmed LessonStatus = "confirmed"
	LessonStatusCancelled LessonStatus = "cancelled"
	LessonStatusCompleted LessonStatus = "completed"
)

// Lesson is a persistent booking record. Lessons are never hard-deleted;
// cancellation is a status transition.
type Lesson struct {
	ID          int64        `json:"id"`
	TeacherID   int64        `json:"teacher_id"`
	StudentID   int64        `json:"student_id"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time"`
	Status      LessonStatus `json:"status"`
	CreditsUsed int          `json:"credits_used"`
	Recurring   bool         `json:"recurring"`
	Title       string       `json:"title"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsActive reports whether the lesson still occupies its time window.
func (l *Lesson) IsActive() bool {
	return l.Status == LessonStatusPending || l.Status == LessonStatusConfirmed
}
