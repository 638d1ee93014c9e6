package core

import "fmt"

// CategorySummary aggregates the expenses of one category.
type CategorySummary struct {
	Category string
	Total    int64
	Count    int64
}

// MonthRange returns the half-open interval [first day of month, first day of next month).
func MonthRange(year, month int) (start, end Date, err error) {
	if month < 1 || month > 12 {
		return "", "", fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	start = NewDate(year, month, 1)
	if month == 12 {
		end = NewDate(year+1, 1, 1)
	} else {
		end = NewDate(year, month+1, 1)
	}
	return start, end, nil
}

// SummaryTotal sums the totals of all rows.
func SummaryTotal(rows []CategorySummary) int64 {
	var total int64
	for _, r := range rows {
		total += r.Total
	}
	return total
}
