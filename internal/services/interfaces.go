package services

import (
	"time"

	"expensetracker/internal/analytics"
	"expensetracker/internal/models"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(name, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	Authenticate(email, password string) (*models.User, error)
}

// ExpenseInput carries the writable fields of an expense. A nil Description
// or Date means "not supplied": create uses the default, update keeps the
// stored value.
type ExpenseInput struct {
	Title       string
	Amount      float64
	Category    models.Category
	Description *string
	Date        *time.Time
}

// MonthlySummary is the reduced view of one month plus the records behind it.
type MonthlySummary struct {
	analytics.Summary
	Expenses []models.Expense
}

// ExpenseServicer defines the contract for expense-related business logic.
// Every method is scoped to the acting user; records owned by someone else
// are never returned or changed.
type ExpenseServicer interface {
	CreateExpense(userID string, input ExpenseInput) (*models.Expense, error)
	GetUserExpenses(userID string) ([]models.Expense, error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	UpdateExpense(userID, expenseID string, input ExpenseInput) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
	GetMonthlySummary(userID string, window analytics.Window) (*MonthlySummary, error)
	GetAnalytics(userID string, window analytics.Window) (*analytics.Summary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
