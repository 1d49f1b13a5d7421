package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"expensetracker/internal/analytics"
	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/services"
	"expensetracker/internal/validator"
)

// ExpenseHandler handles expense-related requests
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
	now            func() time.Time
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService, now: time.Now}
}

// ExpenseRequest represents the request payload for creating or replacing an
// expense. Amount is a pointer so that an explicit 0 passes "required".
type ExpenseRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Amount      *float64 `json:"amount" binding:"required,gte=0"`
	Category    string   `json:"category" binding:"required,expense_category"`
	Description *string  `json:"description" binding:"omitempty,max=1000"`
	Date        *string  `json:"date" binding:"omitempty,calendar_date" example:"2024-03-05"`
}

// MonthlySummaryResponse is the body of GET /expenses/monthly.
type MonthlySummaryResponse struct {
	Total             float64                     `json:"total"`
	Count             int                         `json:"count"`
	CategoryBreakdown map[models.Category]float64 `json:"categoryBreakdown"`
	Expenses          []models.Expense            `json:"expenses"`
}

// AnalyticsResponse is the body of GET /expenses/analytics.
type AnalyticsResponse struct {
	CategoryData map[models.Category]float64 `json:"categoryData"`
	DailyData    map[string]float64          `json:"dailyData"`
	Total        float64                     `json:"total"`
	Count        int                         `json:"count"`
}

// ExpenseResponse documents the envelope around a single expense.
type ExpenseResponse struct {
	Success bool           `json:"success" example:"true"`
	Data    models.Expense `json:"data"`
}

// ExpenseListResponse documents the envelope around a list of expenses.
type ExpenseListResponse struct {
	Success bool             `json:"success" example:"true"`
	Data    []models.Expense `json:"data"`
}

// toInput converts a bound request into service input. An empty date counts
// as not supplied.
func (r *ExpenseRequest) toInput() (services.ExpenseInput, error) {
	input := services.ExpenseInput{
		Title:       r.Title,
		Amount:      *r.Amount,
		Category:    models.Category(r.Category),
		Description: r.Description,
	}
	if r.Date != nil && *r.Date != "" {
		date, err := validator.ParseDate(*r.Date)
		if err != nil {
			return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date")
		}
		input.Date = &date
	}
	return input, nil
}

func bindExpenseRequest(c *gin.Context) (services.ExpenseInput, error) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return services.ExpenseInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return req.toInput()
}

// windowError maps window resolution failures to a 400.
func windowError(err error) error {
	if errors.Is(err, analytics.ErrInvalidWindow) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return err
}

// queryInt reads an optional positive integer query parameter. An absent
// parameter yields 0.
func queryInt(c *gin.Context, key string) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+key)
	}
	return n, nil
}

// GetExpenses lists the authenticated user's expenses
// @Summary     List expenses
// @Description Get all expenses of the authenticated user, newest first
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ExpenseListResponse "List of expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.expenseService.GetUserExpenses(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, expenses)
}

// GetMonthlySummary returns totals for one calendar month
// @Summary     Monthly summary
// @Description Total, count and per-category breakdown for a month. Defaults to the current month.
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       year  query int false "Year, e.g. 2024"
// @Param       month query int false "Month 1-12"
// @Success     200 {object} MonthlySummaryResponse "Monthly summary"
// @Failure     400 {object} ErrorResponse "Invalid year or month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/monthly [get]
func (h *ExpenseHandler) GetMonthlySummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := queryInt(c, "year")
	if err != nil {
		respondWithError(c, err)
		return
	}
	month, err := queryInt(c, "month")
	if err != nil {
		respondWithError(c, err)
		return
	}

	window, err := analytics.ResolveMonth(h.now(), year, month)
	if err != nil {
		respondWithError(c, windowError(err))
		return
	}

	summary, err := h.expenseService.GetMonthlySummary(userID, window)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MonthlySummaryResponse{
		Total:             summary.Total,
		Count:             summary.Count,
		CategoryBreakdown: summary.ByCategory,
		Expenses:          summary.Expenses,
	})
}

// GetAnalytics returns category and daily breakdowns for a period
// @Summary     Expense analytics
// @Description Per-category and per-day totals for the current month or year
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "month (default) or year" Enums(month, year)
// @Success     200 {object} AnalyticsResponse "Analytics"
// @Failure     400 {object} ErrorResponse "Unknown period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/analytics [get]
func (h *ExpenseHandler) GetAnalytics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	window, err := analytics.ResolvePeriod(h.now(), analytics.Period(c.Query("period")))
	if err != nil {
		respondWithError(c, windowError(err))
		return
	}

	summary, err := h.expenseService.GetAnalytics(userID, window)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AnalyticsResponse{
		CategoryData: summary.ByCategory,
		DailyData:    summary.ByDay,
		Total:        summary.Total,
		Count:        summary.Count,
	})
}

// GetExpense returns a single expense
// @Summary     Get expense
// @Description Get an expense owned by the authenticated user
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} ExpenseResponse "Expense"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parseExpenseID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, expense)
}

// CreateExpense handles the creation of a new expense
// @Summary     Create expense
// @Description Create an expense for the authenticated user. Date defaults to today.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseRequest true "Expense data"
// @Success     201 {object} ExpenseResponse "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	input, err := bindExpenseRequest(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreateExpense, "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"amount": expense.Amount, "category": expense.Category})

	respondWithData(c, http.StatusCreated, expense)
}

// UpdateExpense replaces an expense
// @Summary     Update expense
// @Description Update an expense owned by the authenticated user. Omitted description and date keep their values.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Expense ID"
// @Param       request body ExpenseRequest true "Expense data"
// @Success     200 {object} ExpenseResponse "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parseExpenseID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	input, err := bindExpenseRequest(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(userID, expenseID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdateExpense, "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"amount": expense.Amount, "category": expense.Category})

	respondWithData(c, http.StatusOK, expense)
}

// DeleteExpense handles the deletion of an expense
// @Summary     Delete expense
// @Description Permanently delete an expense owned by the authenticated user
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} MessageResponse "Expense removed"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parseExpenseID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteExpense, "expense", expenseID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Expense removed"})
}
