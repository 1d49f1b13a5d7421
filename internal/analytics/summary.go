package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/models"
)

// DayLayout is the key format for daily totals.
const DayLayout = "2006-01-02"

// DayKey returns the calendar-day key for t. The key is taken in UTC so the
// same record maps to the same day on every server.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// Summary holds the reduced view of a set of expenses.
type Summary struct {
	Total      float64
	Count      int
	ByCategory map[models.Category]float64
	ByDay      map[string]float64
}

// Summarize reduces expenses in a single pass. Amounts are accumulated as
// decimals so per-category and per-day sums add up to the total exactly.
// Categories and days with no expenses are omitted.
func Summarize(expenses []models.Expense) Summary {
	total := decimal.Zero
	byCategory := make(map[models.Category]decimal.Decimal)
	byDay := make(map[string]decimal.Decimal)

	for i := range expenses {
		e := &expenses[i]
		amount := decimal.NewFromFloat(e.Amount)
		total = total.Add(amount)
		byCategory[e.Category] = byCategory[e.Category].Add(amount)
		day := DayKey(e.Date)
		byDay[day] = byDay[day].Add(amount)
	}

	s := Summary{
		Total:      total.InexactFloat64(),
		Count:      len(expenses),
		ByCategory: make(map[models.Category]float64, len(byCategory)),
		ByDay:      make(map[string]float64, len(byDay)),
	}
	for c, v := range byCategory {
		s.ByCategory[c] = v.InexactFloat64()
	}
	for d, v := range byDay {
		s.ByDay[d] = v.InexactFloat64()
	}
	return s
}
