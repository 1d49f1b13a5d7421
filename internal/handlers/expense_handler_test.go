package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"expensetracker/internal/analytics"
	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/services"
)

// --- mock expense service ---

type mockExpenseService struct {
	createExpenseFn     func(userID string, input services.ExpenseInput) (*models.Expense, error)
	getUserExpensesFn   func(userID string) ([]models.Expense, error)
	getExpenseByIDFn    func(userID, expenseID string) (*models.Expense, error)
	updateExpenseFn     func(userID, expenseID string, input services.ExpenseInput) (*models.Expense, error)
	deleteExpenseFn     func(userID, expenseID string) error
	getMonthlySummaryFn func(userID string, window analytics.Window) (*services.MonthlySummary, error)
	getAnalyticsFn      func(userID string, window analytics.Window) (*analytics.Summary, error)
}

func (m *mockExpenseService) CreateExpense(userID string, input services.ExpenseInput) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(userID, input)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) GetUserExpenses(userID string) ([]models.Expense, error) {
	if m.getUserExpensesFn != nil {
		return m.getUserExpensesFn(userID)
	}
	return []models.Expense{}, nil
}

func (m *mockExpenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(userID, expenseID)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) UpdateExpense(userID, expenseID string, input services.ExpenseInput) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(userID, expenseID, input)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(userID, expenseID string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(userID, expenseID)
	}
	return nil
}

func (m *mockExpenseService) GetMonthlySummary(userID string, window analytics.Window) (*services.MonthlySummary, error) {
	if m.getMonthlySummaryFn != nil {
		return m.getMonthlySummaryFn(userID, window)
	}
	return &services.MonthlySummary{Summary: analytics.Summarize(nil), Expenses: []models.Expense{}}, nil
}

func (m *mockExpenseService) GetAnalytics(userID string, window analytics.Window) (*analytics.Summary, error) {
	if m.getAnalyticsFn != nil {
		return m.getAnalyticsFn(userID, window)
	}
	s := analytics.Summarize(nil)
	return &s, nil
}

var _ services.ExpenseServicer = (*mockExpenseService)(nil)

const testExpenseID = "0190a1b2-c3d4-7e5f-8a9b-111111111111"

func fixedNow() time.Time {
	return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
}

func setupExpenseRouter(handler *ExpenseHandler) *gin.Engine {
	handler.now = fixedNow
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/expenses", handler.GetExpenses)
	auth.GET("/expenses/monthly", handler.GetMonthlySummary)
	auth.GET("/expenses/analytics", handler.GetAnalytics)
	auth.GET("/expenses/:id", handler.GetExpense)
	auth.POST("/expenses", handler.CreateExpense)
	auth.PUT("/expenses/:id", handler.UpdateExpense)
	auth.DELETE("/expenses/:id", handler.DeleteExpense)
	return r
}

func TestExpenseHandler_CreateExpense(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.ExpenseInput
		var owner string
		svc := &mockExpenseService{
			createExpenseFn: func(userID string, input services.ExpenseInput) (*models.Expense, error) {
				owner, got = userID, input
				return &models.Expense{
					Base:     models.Base{ID: testExpenseID},
					UserID:   userID,
					Title:    input.Title,
					Amount:   input.Amount,
					Category: input.Category,
					Date:     *input.Date,
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupExpenseRouter(NewExpenseHandler(svc, audit))

		rec := doRequest(r, "POST", "/expenses",
			`{"title":"Coffee","amount":4.5,"category":"Food","date":"2024-03-05"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if owner != testUserID {
			t.Errorf("expected owner from identity, got %s", owner)
		}
		if want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC); got.Date == nil || !got.Date.Equal(want) {
			t.Errorf("expected date %s, got %v", want, got.Date)
		}
		result := parseJSON(t, rec)
		if result["success"] != true {
			t.Errorf("expected success=true, got %v", result["success"])
		}
		expense := result["data"].(map[string]interface{})
		if expense["_id"] != testExpenseID {
			t.Errorf("expected _id %s, got %v", testExpenseID, expense["_id"])
		}
		if expense["amount"].(float64) != 4.5 {
			t.Errorf("expected amount 4.5, got %v", expense["amount"])
		}
		if len(audit.actions) != 1 || audit.actions[0] != services.AuditCreateExpense {
			t.Errorf("expected create audit entry, got %v", audit.actions)
		}
	})

	t.Run("ignores owner in payload", func(t *testing.T) {
		var owner string
		svc := &mockExpenseService{
			createExpenseFn: func(userID string, _ services.ExpenseInput) (*models.Expense, error) {
				owner = userID
				return &models.Expense{UserID: userID}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/expenses",
			`{"title":"Coffee","amount":1,"category":"Food","user_id":"someone-else"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if owner != testUserID {
			t.Errorf("expected owner %s, got %s", testUserID, owner)
		}
	})

	t.Run("omitted date is left to the service", func(t *testing.T) {
		var got services.ExpenseInput
		svc := &mockExpenseService{
			createExpenseFn: func(_ string, input services.ExpenseInput) (*models.Expense, error) {
				got = input
				return &models.Expense{}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/expenses", `{"title":"Bus","amount":0,"category":"Transport","date":""}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Date != nil {
			t.Errorf("expected nil date, got %v", got.Date)
		}
		if got.Amount != 0 {
			t.Errorf("expected zero amount, got %v", got.Amount)
		}
	})

	invalid := map[string]string{
		"negative amount":  `{"title":"Coffee","amount":-1,"category":"Food"}`,
		"missing amount":   `{"title":"Coffee","category":"Food"}`,
		"missing title":    `{"amount":1,"category":"Food"}`,
		"unknown category": `{"title":"Coffee","amount":1,"category":"Groceries"}`,
		"bad date":         `{"title":"Coffee","amount":1,"category":"Food","date":"05/03/2024"}`,
		"malformed json":   `{"title":`,
	}
	for name, body := range invalid {
		t.Run("returns 400 on "+name, func(t *testing.T) {
			called := false
			svc := &mockExpenseService{
				createExpenseFn: func(string, services.ExpenseInput) (*models.Expense, error) {
					called = true
					return &models.Expense{}, nil
				},
			}
			r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

			rec := doRequest(r, "POST", "/expenses", body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
			if called {
				t.Error("service must not be called on invalid input")
			}
		})
	}
}

func TestExpenseHandler_GetExpenses(t *testing.T) {
	svc := &mockExpenseService{
		getUserExpensesFn: func(userID string) ([]models.Expense, error) {
			return []models.Expense{{UserID: userID, Title: "Coffee"}}, nil
		},
	}
	r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/expenses", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	if result["success"] != true {
		t.Errorf("expected success=true, got %v", result["success"])
	}
	expenses := result["data"].([]interface{})
	if len(expenses) != 1 {
		t.Errorf("expected 1 expense, got %d", len(expenses))
	}
}

func TestExpenseHandler_GetExpense(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		err      error
		wantCode int
		wantErr  string
	}{
		{"owner", testExpenseID, nil, http.StatusOK, ""},
		{"invalid id", "not-a-uuid", nil, http.StatusBadRequest, "INVALID_EXPENSE_ID"},
		{"not found", testExpenseID, apperrors.ErrExpenseNotFound, http.StatusNotFound, "EXPENSE_NOT_FOUND"},
		{"other owner", testExpenseID, apperrors.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockExpenseService{
				getExpenseByIDFn: func(userID, expenseID string) (*models.Expense, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &models.Expense{Base: models.Base{ID: expenseID}, UserID: userID}, nil
				},
			}
			r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

			rec := doRequest(r, "GET", "/expenses/"+tt.id, "")

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantErr != "" {
				assertErrorCode(t, parseJSON(t, rec), tt.wantErr)
			}
		})
	}
}

func TestExpenseHandler_UpdateExpense(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var got services.ExpenseInput
		svc := &mockExpenseService{
			updateExpenseFn: func(userID, expenseID string, input services.ExpenseInput) (*models.Expense, error) {
				got = input
				return &models.Expense{Base: models.Base{ID: expenseID}, UserID: userID, Title: input.Title}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupExpenseRouter(NewExpenseHandler(svc, audit))

		rec := doRequest(r, "PUT", "/expenses/"+testExpenseID, `{"title":"Lunch","amount":12,"category":"Food"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Description != nil || got.Date != nil {
			t.Error("omitted description and date must reach the service as nil")
		}
		if data := parseJSON(t, rec)["data"].(map[string]interface{}); data["title"] != "Lunch" {
			t.Errorf("expected updated expense in data, got %v", data)
		}
		if len(audit.actions) != 1 || audit.actions[0] != services.AuditUpdateExpense {
			t.Errorf("expected update audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 403 for another user's expense", func(t *testing.T) {
		audit := &mockAuditService{}
		svc := &mockExpenseService{
			updateExpenseFn: func(string, string, services.ExpenseInput) (*models.Expense, error) {
				return nil, apperrors.ErrForbidden
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, audit))

		rec := doRequest(r, "PUT", "/expenses/"+testExpenseID, `{"title":"X","amount":1,"category":"Food"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "FORBIDDEN")
		if len(audit.actions) != 0 {
			t.Error("rejected update must not be audited")
		}
	})

	t.Run("returns 400 on invalid id before binding", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/expenses/123", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_EXPENSE_ID")
	})
}

func TestExpenseHandler_DeleteExpense(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, audit))

		rec := doRequest(r, "DELETE", "/expenses/"+testExpenseID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["success"] != true || result["message"] != "Expense removed" {
			t.Errorf("unexpected body %v", result)
		}
		if len(audit.actions) != 1 || audit.actions[0] != services.AuditDeleteExpense {
			t.Errorf("expected delete audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 404 when already deleted", func(t *testing.T) {
		svc := &mockExpenseService{
			deleteExpenseFn: func(string, string) error { return apperrors.ErrExpenseNotFound },
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/expenses/"+testExpenseID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")
	})
}

func TestExpenseHandler_GetMonthlySummary(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantStart time.Time
	}{
		{"defaults to current month", "", http.StatusOK, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{"explicit year and month", "?year=2023&month=12", http.StatusOK, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)},
		{"january", "?year=2024&month=1", http.StatusOK, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"month only", "?month=7", http.StatusOK, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{"month 13", "?year=2024&month=13", http.StatusBadRequest, time.Time{}},
		{"month 0", "?year=2024&month=0", http.StatusBadRequest, time.Time{}},
		{"non numeric year", "?year=abc&month=3", http.StatusBadRequest, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var window analytics.Window
			svc := &mockExpenseService{
				getMonthlySummaryFn: func(_ string, w analytics.Window) (*services.MonthlySummary, error) {
					window = w
					return &services.MonthlySummary{
						Summary: analytics.Summarize([]models.Expense{
							{Amount: 4.5, Category: models.CategoryFood, Date: w.Start},
						}),
						Expenses: []models.Expense{},
					}, nil
				},
			}
			r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

			rec := doRequest(r, "GET", "/expenses/monthly"+tt.query, "")

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			result := parseJSON(t, rec)
			if tt.wantCode != http.StatusOK {
				assertErrorCode(t, result, "INVALID_INPUT")
				return
			}
			if !window.Start.Equal(tt.wantStart) {
				t.Errorf("expected window start %s, got %s", tt.wantStart, window.Start)
			}
			if result["total"].(float64) != 4.5 || result["count"].(float64) != 1 {
				t.Errorf("unexpected totals %v", result)
			}
			breakdown := result["categoryBreakdown"].(map[string]interface{})
			if breakdown["Food"].(float64) != 4.5 {
				t.Errorf("unexpected breakdown %v", breakdown)
			}
			if _, ok := result["expenses"].([]interface{}); !ok {
				t.Errorf("expected expenses array, got %v", result["expenses"])
			}
		})
	}
}

func TestExpenseHandler_GetAnalytics(t *testing.T) {
	day := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	t.Run("month", func(t *testing.T) {
		svc := &mockExpenseService{
			getAnalyticsFn: func(_ string, w analytics.Window) (*analytics.Summary, error) {
				if !w.Start.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)) {
					return nil, fmt.Errorf("unexpected window %v", w)
				}
				s := analytics.Summarize([]models.Expense{
					{Amount: 10, Category: models.CategoryFood, Date: day},
					{Amount: 20, Category: models.CategoryTransport, Date: day},
				})
				return &s, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/expenses/analytics?period=month", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		daily := result["dailyData"].(map[string]interface{})
		if daily["2024-03-05"].(float64) != 30 {
			t.Errorf("expected 30 on 2024-03-05, got %v", daily)
		}
		categories := result["categoryData"].(map[string]interface{})
		if categories["Food"].(float64) != 10 || categories["Transport"].(float64) != 20 {
			t.Errorf("unexpected categoryData %v", categories)
		}
		if result["total"].(float64) != 30 {
			t.Errorf("expected total 30, got %v", result["total"])
		}
	})

	t.Run("year", func(t *testing.T) {
		var window analytics.Window
		svc := &mockExpenseService{
			getAnalyticsFn: func(_ string, w analytics.Window) (*analytics.Summary, error) {
				window = w
				s := analytics.Summarize(nil)
				return &s, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/expenses/analytics?period=year", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !window.Start.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected year window, got %v", window)
		}
	})

	t.Run("unknown period", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/expenses/analytics?period=week", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := &mockExpenseService{
			getAnalyticsFn: func(string, analytics.Window) (*analytics.Summary, error) {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("connection reset"))
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/expenses/analytics", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "INTERNAL_ERROR")
		if _, partial := result["total"]; partial {
			t.Error("no partial summary on failure")
		}
	})
}
