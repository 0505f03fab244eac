package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/model"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/repository/base"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

const userColumns = `id, account_id, first_name, last_name, email, is_teacher, credits, telegram_chat_id, min_advance_hours, max_booking_days, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.AccountID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.IsTeacher,
		&u.Credits,
		&u.TelegramChatID,
		&u.MinAdvanceHours,
		&u.MaxBookingDays,
		&u.CreatedAt,
	)
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// GetByID fetches a user, nil when absent.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.QueryRow(ctx, query, id))
}

// GetCreditBalance returns the student's current credit balance.
func (r *UserRepository) GetCreditBalance(ctx context.Context, studentID int64) (int, error) {
	var credits int
	err := r.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1`, studentID).Scan(&credits)
	if base.IsNotFound(err) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get credit balance: %w", err)
	}
	return credits, nil
}

// LinkedStudentIDs returns every student id sharing the given student's
// underlying account, the given id included. The overlap guard checks all of
// them so one person cannot double-book under multiple profiles.
func (r *UserRepository) LinkedStudentIDs(ctx context.Context, studentID int64) ([]int64, error) {
	query := `
		SELECT u.id
		FROM users u
		JOIN users self ON self.account_id = u.account_id
		WHERE self.id = $1
		ORDER BY u.id
	`

	rows, err := r.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("linked student ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan linked student id: %w", err)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, ErrNotFound
	}

	return ids, nil
}

// TelegramChatID returns the user's linked chat id, ok=false when none is set.
func (r *UserRepository) TelegramChatID(ctx context.Context, userID int64) (int64, bool, error) {
	var chatID *int64
	err := r.QueryRow(ctx, `SELECT telegram_chat_id FROM users WHERE id = $1`, userID).Scan(&chatID)
	if base.IsNotFound(err) {
		return 0, false, ErrNotFound
	}
	if err != nil {
		return 0, false, fmt.Errorf("get telegram chat id: %w", err)
	}
	if chatID == nil {
		return 0, false, nil
	}
	return *chatID, true, nil
}
