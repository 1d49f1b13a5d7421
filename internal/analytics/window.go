// Package analytics resolves reporting windows and reduces a set of expenses
// to summary statistics. It never touches storage.
package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// Period names a window relative to the current date.
type Period string

const (
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ErrInvalidWindow is returned for year/month/period values that cannot
// describe a window.
var ErrInvalidWindow = errors.New("invalid window")

// Window is an inclusive [Start, End] range. Start is midnight UTC of the
// first day; End is the last instant of the last day.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func calendar(t time.Time) *now.Now {
	return now.With(t.UTC())
}

// MonthWindow returns the first through last day of the given month.
// month is the calendar month as people write it, 1 = January.
func MonthWindow(year int, month time.Month) Window {
	c := calendar(time.Date(year, month, 1, 12, 0, 0, 0, time.UTC))
	return Window{Start: c.BeginningOfMonth(), End: c.EndOfMonth()}
}

// YearWindow returns January 1 through December 31 of year.
func YearWindow(year int) Window {
	c := calendar(time.Date(year, time.January, 1, 12, 0, 0, 0, time.UTC))
	return Window{Start: c.BeginningOfYear(), End: c.EndOfYear()}
}

// ResolveMonth builds the monthly window. A zero year or month means the
// parameter was absent and the value is taken from current. month is
// 1-based.
func ResolveMonth(current time.Time, year, month int) (Window, error) {
	current = current.UTC()
	if year == 0 {
		year = current.Year()
	}
	if month == 0 {
		month = int(current.Month())
	}
	if year < 1 || year > 9999 {
		return Window{}, fmt.Errorf("%w: year %d out of range", ErrInvalidWindow, year)
	}
	if month < 1 || month > 12 {
		return Window{}, fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidWindow, month)
	}
	return MonthWindow(year, time.Month(month)), nil
}

// ResolvePeriod builds the window for a named period relative to current.
// An empty period means the current month.
func ResolvePeriod(current time.Time, period Period) (Window, error) {
	current = current.UTC()
	switch period {
	case "", PeriodMonth:
		return MonthWindow(current.Year(), current.Month()), nil
	case PeriodYear:
		return YearWindow(current.Year()), nil
	default:
		return Window{}, fmt.Errorf("%w: unknown period %q", ErrInvalidWindow, period)
	}
}
