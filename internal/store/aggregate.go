package store

import (
	"sort"

	"wallet/internal/core"
)

// SortExpenses orders expenses by date descending, then id descending.
func SortExpenses(items []core.Expense) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date > items[j].Date
		}
		return items[i].ID > items[j].ID
	})
}

// FilterDateRange keeps expenses with start <= date <= end.
func FilterDateRange(items []core.Expense, start, end core.Date) []core.Expense {
	var out []core.Expense
	for _, e := range items {
		if e.Date >= start && e.Date <= end {
			out = append(out, e)
		}
	}
	return out
}

// FilterHalfOpen keeps expenses with start <= date < end.
func FilterHalfOpen(items []core.Expense, start, end core.Date) []core.Expense {
	var out []core.Expense
	for _, e := range items {
		if e.Date >= start && e.Date < end {
			out = append(out, e)
		}
	}
	return out
}

// FilterCategory keeps expenses whose category equals category exactly.
func FilterCategory(items []core.Expense, category string) []core.Expense {
	var out []core.Expense
	for _, e := range items {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Summarize groups expenses by category, summing amounts and counting rows.
// Rows are ordered by total descending, ties by category name.
func Summarize(items []core.Expense) []core.CategorySummary {
	if len(items) == 0 {
		return nil
	}
	idx := map[string]int{}
	var out []core.CategorySummary
	for _, e := range items {
		i, ok := idx[e.Category]
		if !ok {
			i = len(out)
			idx[e.Category] = i
			out = append(out, core.CategorySummary{Category: e.Category})
		}
		out[i].Total += e.Amount
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// FindByID returns the position of the expense with the given id, or -1.
func FindByID(items []core.Expense, id int64) int {
	for i, e := range items {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// NextID returns one more than the largest id in items.
func NextID(items []core.Expense) int64 {
	var max int64
	for _, e := range items {
		if e.ID > max {
			max = e.ID
		}
	}
	return max + 1
}
