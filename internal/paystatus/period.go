package paystatus

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"rental-service/internal/model"
)

// Period is a calendar month of a year, evaluated in UTC
type Period struct {
	Month time.Month
	Year  int
}

// NewPeriod builds the period for month of year
func NewPeriod(month time.Month, year int) Period {
	return Period{Month: month, Year: year}
}

// Name is the month name payments are labelled with
func (p Period) Name() string {
	return model.Months[p.Month-1]
}

func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.Name(), p.Year)
}

// Start is midnight on the first day of the month
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last representable instant of the month.
// Microsecond precision keeps it exact for postgres timestamps.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0).Add(-time.Microsecond)
}

// LastDay is midnight on the last calendar day of the month
func (p Period) LastDay() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Contains reports whether a payment is attributed to this period:
// its month label matches and its payment date falls within the month.
func (p Period) Contains(payment *model.Payment) bool {
	if payment.Month != p.Name() {
		return false
	}
	y, m, _ := payment.Date().Date()
	return y == p.Year && m == p.Month
}

// MonthOptions lists the selectable months in calendar order
func MonthOptions() []string {
	return model.Months
}

// YearOptions lists the selectable years: two back, five ahead
func YearOptions(now time.Time) []int {
	current := now.UTC().Year()
	years := make([]int, 0, 8)
	for y := current - 2; y <= current+5; y++ {
		years = append(years, y)
	}
	return years
}

// ParseSelection reads a month name and year from user input.
// Missing or unrecognized values fall back to January and the current year.
func ParseSelection(month, year string, now time.Time) Period {
	m, ok := model.MonthNumber(strings.TrimSpace(month))
	if !ok {
		m = time.January
	}

	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 1 || y > 9999 {
		y = now.UTC().Year()
	}
	return NewPeriod(m, y)
}
