// Package store defines the storage contract shared by every expense backend.
package store

import (
	"context"

	"wallet/internal/core"
)

// Store is the operation set every backend supports.
//
// Apart from Initialize, no operation returns an error: mutations report
// success with a boolean and reads degrade to an empty result. Failures are
// logged by the backend. A false result does not tell "not found" apart from
// a backend fault.
type Store interface {
	// Initialize prepares the backing storage. Safe to call on every start.
	Initialize(ctx context.Context) error

	AddExpense(ctx context.Context, in core.ExpenseInput) bool
	GetAllExpenses(ctx context.Context) []core.Expense
	GetExpensesByDateRange(ctx context.Context, start, end core.Date) []core.Expense
	GetExpensesByCategory(ctx context.Context, category string) []core.Expense
	UpdateExpense(ctx context.Context, id int64, in core.ExpenseInput) bool
	DeleteExpense(ctx context.Context, id int64) bool
	GetCategorySummary(ctx context.Context) []core.CategorySummary
	GetMonthlySummary(ctx context.Context, year, month int) []core.CategorySummary
}

// Closer is implemented by backends holding resources.
type Closer interface {
	Close() error
}
