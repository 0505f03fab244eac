package model

import "time"

type User struct {
	ID             int64      `json:"id"`
	AccountID      int64      `json:"account_id"` // several student profiles may share one account
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	IsTeacher      bool       `json:"is_teacher"`
	Credits        int        `json:"credits"`
	TelegramChatID *int64     `json:"telegram_chat_id"`
	// Teacher-only booking policy overrides. Nil means the system default applies.
	MinAdvanceHours *int      `json:"min_advance_hours"`
	MaxBookingDays  *int      `json:"max_booking_days"`
	CreatedAt       time.Time `json:"created_at"`
}
