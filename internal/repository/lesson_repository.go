package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/model"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/repository/base"
)

type LessonRepository struct {
	*base.Repository
}

func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{Repository: base.NewRepository(pool)}
}

const lessonColumns = `id, teacher_id, student_id, start_time, end_time, status, credits_used, recurring, title, created_at, updated_at`

func scanLesson(row pgx.Row) (*model.Lesson, error) {
	var l model.Lesson
	err := row.Scan(
		&l.ID,
		&l.TeacherID,
		&l.StudentID,
		&l.StartTime,
		&l.EndTime,
		&l.Status,
		&l.CreditsUsed,
		&l.Recurring,
		&l.Title,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan lesson: %w", err)
	}
	return &l, nil
}

// GetByID fetches a lesson, nil when absent.
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`
	return scanLesson(r.QueryRow(ctx, query, id))
}

// ListActiveBetween returns pending and confirmed lessons of a teacher whose
// window overlaps [from, to). These are the busy intervals fed to the
// subtraction stage.
func (r *LessonRepository) ListActiveBetween(ctx context.Context, teacherID int64, from, to time.Time) ([]*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE teacher_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_time < $3
		  AND end_time > $2
		ORDER BY start_time
	`

	rows, err := r.Query(ctx, query, teacherID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list active lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*model.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}

	return lessons, nil
}

// OverlapExists reports whether any active lesson involving the teacher or
// any of the student ids collides with [start, end) under the half-open
// rule. excludeLessonID skips one lesson so a status transition does not
// conflict with itself; pass 0 for new bookings.
func (r *LessonRepository) OverlapExists(ctx context.Context, start, end time.Time, teacherID int64, studentIDs []int64, excludeLessonID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM lessons
			WHERE status IN ('pending', 'confirmed')
			  AND id <> $1
			  AND (teacher_id = $2 OR student_id = ANY($3))
			  AND start_time < $5
			  AND end_time > $4
		)
	`

	var exists bool
	err := r.QueryRow(ctx, query, excludeLessonID, teacherID, studentIDs, start, end).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check lesson overlap: %w", err)
	}

	return exists, nil
}

// CreateConfirmedWithDebit inserts a confirmed lesson and debits the
// student's credits in one transaction. The conditional debit and the
// lessons table constraints are the authoritative guards under concurrency;
// their violations come back as ErrInsufficientCredits or ErrConflict.
func (r *LessonRepository) CreateConfirmedWithDebit(ctx context.Context, lesson *model.Lesson) error {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := debitCredits(ctx, tx, lesson.StudentID, lesson.CreditsUsed); err != nil {
		return err
	}

	query := `
		INSERT INTO lessons (teacher_id, student_id, start_time, end_time, status, credits_used, recurring, title)
		VALUES ($1, $2, $3, $4, 'confirmed', $5, $6, $7)
		RETURNING id, status, created_at, updated_at
	`

	err = tx.QueryRow(
		ctx, query,
		lesson.TeacherID,
		lesson.StudentID,
		lesson.StartTime,
		lesson.EndTime,
		lesson.CreditsUsed,
		lesson.Recurring,
		lesson.Title,
	).Scan(&lesson.ID, &lesson.Status, &lesson.CreatedAt, &lesson.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create confirmed lesson: %w", mapConstraintErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", mapConstraintErr(err))
	}

	return nil
}

// CreatePending inserts a teacher-proposed lesson awaiting the student's
// side of the handshake. No credits move until confirmation.
func (r *LessonRepository) CreatePending(ctx context.Context, lesson *model.Lesson) error {
	query := `
		INSERT INTO lessons (teacher_id, student_id, start_time, end_time, status, credits_used, recurring, title)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6, $7)
		RETURNING id, status, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		lesson.TeacherID,
		lesson.StudentID,
		lesson.StartTime,
		lesson.EndTime,
		lesson.CreditsUsed,
		lesson.Recurring,
		lesson.Title,
	).Scan(&lesson.ID, &lesson.Status, &lesson.CreatedAt, &lesson.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create pending lesson: %w", mapConstraintErr(err))
	}

	return nil
}

// ConfirmWithDebit promotes a pending lesson to confirmed and debits the
// student atomically. Returns ErrConflict if the lesson is no longer pending.
func (r *LessonRepository) ConfirmWithDebit(ctx context.Context, lessonID, studentID int64, credits int) error {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := debitCredits(ctx, tx, studentID, credits); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE lessons
		SET status = 'confirmed', updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`, lessonID)
	if err != nil {
		return fmt.Errorf("confirm lesson: %w", mapConstraintErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", mapConstraintErr(err))
	}

	return nil
}

// UpdateStatus moves a lesson between states without touching credits.
func (r *LessonRepository) UpdateStatus(ctx context.Context, id int64, status model.LessonStatus) error {
	affected, err := r.ExecAffected(ctx, `
		UPDATE lessons
		SET status = $1, updated_at = now()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("update lesson status: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// CompletePast marks confirmed lessons whose window has fully elapsed as
// completed, returning how many rows changed. Run by the background sweeper.
func (r *LessonRepository) CompletePast(ctx context.Context, now time.Time) (int64, error) {
	affected, err := r.ExecAffected(ctx, `
		UPDATE lessons
		SET status = 'completed', updated_at = now()
		WHERE status = 'confirmed' AND end_time <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("complete past lessons: %w", err)
	}

	return affected, nil
}

// debitCredits applies the conditional decrement. Zero rows affected means
// the balance was too low; the update never lets the balance go negative.
func debitCredits(ctx context.Context, tx pgx.Tx, studentID int64, amount int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET credits = credits - $1
		WHERE id = $2 AND credits >= $1
	`, amount, studentID)
	if err != nil {
		return fmt.Errorf("debit credits: %w", mapConstraintErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientCredits
	}
	return nil
}
