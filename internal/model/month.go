package model

import "time"

// Months lists the month names accepted on payments, in calendar order.
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthNumber maps a month name to its calendar month.
func MonthNumber(name string) (time.Month, bool) {
	for i, m := range Months {
		if m == name {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// IsMonth reports whether name is one of Months.
func IsMonth(name string) bool {
	_, ok := MonthNumber(name)
	return ok
}
