package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/model"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/repository/base"
)

type RuleRepository struct {
	*base.Repository
}

func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{Repository: base.NewRepository(pool)}
}

// Create inserts a new availability rule.
func (r *RuleRepository) Create(ctx context.Context, rule *model.AvailabilityRule) error {
	query := `
		INSERT INTO availability_rules (teacher_id, kind, weekday, date, start_hour, start_minute, end_hour, end_minute)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		rule.TeacherID,
		rule.Kind,
		rule.Weekday,
		rule.Date,
		rule.StartHour,
		rule.StartMinute,
		rule.EndHour,
		rule.EndMinute,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create availability rule: %w", err)
	}

	return nil
}

// GetByID fetches a single rule, nil when absent.
func (r *RuleRepository) GetByID(ctx context.Context, id int64) (*model.AvailabilityRule, error) {
	query := `
		SELECT id, teacher_id, kind, weekday, date, start_hour, start_minute, end_hour, end_minute, created_at, updated_at
		FROM availability_rules
		WHERE id = $1
	`

	var rule model.AvailabilityRule
	err := r.QueryRow(ctx, query, id).Scan(
		&rule.ID,
		&rule.TeacherID,
		&rule.Kind,
		&rule.Weekday,
		&rule.Date,
		&rule.StartHour,
		&rule.StartMinute,
		&rule.EndHour,
		&rule.EndMinute,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)

	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get availability rule by id: %w", err)
	}

	return &rule, nil
}

// ListByTeacher returns all of a teacher's rules ordered for stable expansion.
func (r *RuleRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*model.AvailabilityRule, error) {
	query := `
		SELECT id, teacher_id, kind, weekday, date, start_hour, start_minute, end_hour, end_minute, created_at, updated_at
		FROM availability_rules
		WHERE teacher_id = $1
		ORDER BY kind, weekday, date, start_hour, start_minute
	`

	rows, err := r.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list availability rules: %w", err)
	}
	defer rows.Close()

	var rules []*model.AvailabilityRule
	for rows.Next() {
		var rule model.AvailabilityRule
		err := rows.Scan(
			&rule.ID,
			&rule.TeacherID,
			&rule.Kind,
			&rule.Weekday,
			&rule.Date,
			&rule.StartHour,
			&rule.StartMinute,
			&rule.EndHour,
			&rule.EndMinute,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan availability rule: %w", err)
		}
		rules = append(rules, &rule)
	}

	return rules, nil
}

// Delete removes a rule. Existing lessons are independent rows and are not
// touched; only future availability disappears.
func (r *RuleRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM availability_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete availability rule: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
