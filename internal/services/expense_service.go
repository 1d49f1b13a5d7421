package services

import (
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"expensetracker/internal/analytics"
	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
)

const maxTitleLength = 200

var categoryMessage = "Category must be one of " + strings.Join(categoryNames(), ", ")

func categoryNames() []string {
	categories := models.Categories()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}

// Owns reports whether userID is the owner of expense. It is the only
// ownership check; every read, update and delete of a single record goes
// through it.
func Owns(userID string, expense *models.Expense) bool {
	return expense != nil && userID != "" && expense.UserID == userID
}

// expenseService handles expense-related business logic.
type expenseService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db, now: time.Now}
}

// validateInput normalizes input in place and rejects values that may not
// be stored.
func validateInput(input *ExpenseInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Title is required")
	}
	if len(input.Title) > maxTitleLength {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Title is too long")
	}
	if math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) || input.Amount < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be zero or more")
	}
	if !input.Category.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, categoryMessage)
	}
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		input.Description = &trimmed
	}
	return nil
}

// CreateExpense creates a new expense owned by userID. The owner always
// comes from the authenticated identity, never from the payload.
func (s *expenseService) CreateExpense(userID string, input ExpenseInput) (*models.Expense, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	// Default date to today, read in UTC like every reporting window
	date := s.now().UTC()
	if input.Date != nil {
		date = *input.Date
	}

	expense := &models.Expense{
		UserID:   userID,
		Title:    input.Title,
		Amount:   input.Amount,
		Category: input.Category,
		Date:     models.CalendarDate(date),
	}
	if input.Description != nil {
		expense.Description = *input.Description
	}

	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// GetUserExpenses returns every expense owned by userID, newest first.
func (s *expenseService) GetUserExpenses(userID string) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := s.db.Where("user_id = ?", userID).
		Order("date DESC").
		Order("created_at DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	return expenses, nil
}

// findExpense loads an expense by ID regardless of owner. A missing record
// is ErrExpenseNotFound.
func (s *expenseService) findExpense(expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ?", expenseID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// authorize loads the expense and applies the ownership check. Existence is
// checked first: a missing record is not found, a foreign one is forbidden.
func (s *expenseService) authorize(userID, expenseID string) (*models.Expense, error) {
	expense, err := s.findExpense(expenseID)
	if err != nil {
		return nil, err
	}
	if !Owns(userID, expense) {
		return nil, apperrors.ErrForbidden
	}
	return expense, nil
}

// GetExpenseByID retrieves a single expense owned by userID.
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	return s.authorize(userID, expenseID)
}

// UpdateExpense replaces the writable fields of an expense. Owner, ID and
// creation time never change. Nothing is written unless the input is valid
// and userID owns the record.
func (s *expenseService) UpdateExpense(userID, expenseID string, input ExpenseInput) (*models.Expense, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	expense, err := s.authorize(userID, expenseID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":    input.Title,
		"amount":   input.Amount,
		"category": input.Category,
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Date != nil {
		updates["date"] = models.CalendarDate(*input.Date)
	}

	// The owner condition is repeated in the statement so a record that
	// disappeared since it was loaded is reported as not found.
	result := s.db.Model(&models.Expense{}).
		Where("id = ? AND user_id = ?", expense.ID, userID).
		Updates(updates)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrExpenseNotFound
	}

	return s.findExpense(expense.ID)
}

// DeleteExpense permanently removes an expense owned by userID.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	expense, err := s.authorize(userID, expenseID)
	if err != nil {
		return err
	}

	result := s.db.Where("id = ? AND user_id = ?", expense.ID, userID).Delete(&models.Expense{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}

// expensesInWindow loads every expense of userID dated inside window.
func (s *expenseService) expensesInWindow(userID string, window analytics.Window) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := s.db.Where("user_id = ? AND date >= ? AND date <= ?", userID, window.Start, window.End).
		Order("date DESC").
		Order("created_at DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	return expenses, nil
}

// GetMonthlySummary totals the expenses in window and returns them with the
// summary.
func (s *expenseService) GetMonthlySummary(userID string, window analytics.Window) (*MonthlySummary, error) {
	expenses, err := s.expensesInWindow(userID, window)
	if err != nil {
		return nil, err
	}
	return &MonthlySummary{
		Summary:  analytics.Summarize(expenses),
		Expenses: expenses,
	}, nil
}

// GetAnalytics returns the category and daily breakdown for window.
func (s *expenseService) GetAnalytics(userID string, window analytics.Window) (*analytics.Summary, error) {
	expenses, err := s.expensesInWindow(userID, window)
	if err != nil {
		return nil, err
	}
	summary := analytics.Summarize(expenses)
	return &summary, nil
}
