package models

import "time"

// Expense is a single spending record owned by exactly one user.
// UserID and CreatedAt are set once at creation and never updated.
type Expense struct {
	Base
	UserID      string    `gorm:"type:uuid;not null;index:idx_expenses_user_date,priority:1;index:idx_expenses_user_category,priority:1" json:"user_id"`
	Title       string    `gorm:"not null" json:"title"`
	Amount      float64   `gorm:"not null;check:amount >= 0" json:"amount"`
	Category    Category  `gorm:"type:varchar(32);not null;index:idx_expenses_user_category,priority:2" json:"category"`
	Description string    `json:"description"`
	Date        time.Time `gorm:"not null;index:idx_expenses_user_date,priority:2,sort:desc" json:"date"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CalendarDate normalizes t to midnight UTC of the calendar day it reads as
// in its own location, so an expense dated "2024-03-05" stays on the 5th
// regardless of the server's timezone.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
