package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
	Expenses  []Expense `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"expenses,omitempty"`
}
