// Package memory provides an in-process store.Store used by tests and demos.
package memory

import (
	"context"
	"sync"

	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/store"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Expense
	logger *applog.Logger
}

var _ store.Store = (*Store)(nil)

// New returns an empty store. Seed records keep their ids.
func New(seed ...core.Expense) *Store {
	s := &Store{logger: applog.Default(applog.ComponentMemory)}
	s.items = append(s.items, seed...)
	s.nextID = store.NextID(seed)
	return s
}

// WithLogger replaces the store logger.
func (s *Store) WithLogger(logger *applog.Logger) *Store {
	s.logger = logger.WithComponent(applog.ComponentMemory)
	return s
}

func (s *Store) Initialize(context.Context) error {
	return nil
}

func (s *Store) AddExpense(ctx context.Context, in core.ExpenseInput) bool {
	if err := in.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Rejected expense", applog.FieldOperation, applog.OpCreate, applog.FieldError, err)
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, in.WithID(s.nextID))
	s.nextID++
	return true
}

func (s *Store) GetAllExpenses(context.Context) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return nil
	}
	out := append([]core.Expense(nil), s.items...)
	store.SortExpenses(out)
	return out
}

func (s *Store) GetExpensesByDateRange(ctx context.Context, start, end core.Date) []core.Expense {
	return store.FilterDateRange(s.GetAllExpenses(ctx), start, end)
}

func (s *Store) GetExpensesByCategory(ctx context.Context, category string) []core.Expense {
	return store.FilterCategory(s.GetAllExpenses(ctx), category)
}

func (s *Store) UpdateExpense(ctx context.Context, id int64, in core.ExpenseInput) bool {
	if err := in.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Rejected expense update", applog.FieldOperation, applog.OpUpdate, applog.FieldExpenseID, id, applog.FieldError, err)
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := store.FindByID(s.items, id)
	if i < 0 {
		return false
	}
	s.items[i] = in.WithID(id)
	return true
}

func (s *Store) DeleteExpense(_ context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := store.FindByID(s.items, id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

func (s *Store) GetCategorySummary(ctx context.Context) []core.CategorySummary {
	return store.Summarize(s.GetAllExpenses(ctx))
}

func (s *Store) GetMonthlySummary(ctx context.Context, year, month int) []core.CategorySummary {
	start, end, err := core.MonthRange(year, month)
	if err != nil {
		s.logger.WarnContext(ctx, "Invalid month", applog.FieldOperation, applog.OpMonthlySummary, applog.FieldError, err)
		return nil
	}
	return store.Summarize(store.FilterHalfOpen(s.GetAllExpenses(ctx), start, end))
}
