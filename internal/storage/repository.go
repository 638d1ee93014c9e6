package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the relational store.Store backed by a local SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	dbPath  string
	queries *Queries
	logger  *applog.Logger
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Default(applog.ComponentStorage)
	}
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single local consumer: one connection, no pool fan-out.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		dbPath:  dbPath,
		queries: New(db),
		logger:  logger.WithComponent(applog.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Initialize creates the expenses table if it does not exist yet.
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	if err := RunMigrations(r.dbPath); err != nil {
		return fmt.Errorf("initialize %s: %w", r.dbPath, err)
	}
	r.logger.InfoContext(ctx, "SQLite schema ready",
		applog.FieldOperation, applog.OpInitialize,
		"db_path", r.dbPath)
	return nil
}

func (r *SQLiteRepository) AddExpense(ctx context.Context, in core.ExpenseInput) bool {
	if err := in.Validate(); err != nil {
		r.fail(ctx, applog.OpCreate, applog.ErrorTypeValidation, err)
		return false
	}
	id, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		Date:        string(in.Date),
		Category:    in.Category,
		Amount:      in.Amount,
		Place:       in.Place,
		Description: in.Description,
	})
	if err != nil {
		r.fail(ctx, applog.OpCreate, applog.ErrorTypeDatabase, fmt.Errorf("create expense: %w", err))
		return false
	}

	r.logger.InfoContext(ctx, "Expense saved to SQLite",
		applog.FieldExpenseID, id,
		applog.FieldDate, in.Date,
		applog.FieldCategory, in.Category,
		applog.FieldAmount, in.Amount)
	return true
}

func (r *SQLiteRepository) GetAllExpenses(ctx context.Context) []core.Expense {
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		r.fail(ctx, applog.OpList, applog.ErrorTypeDatabase, fmt.Errorf("list expenses: %w", err))
		return nil
	}
	return toCore(rows)
}

func (r *SQLiteRepository) GetExpensesByDateRange(ctx context.Context, start, end core.Date) []core.Expense {
	rows, err := r.queries.ListExpensesByDateRange(ctx, string(start), string(end))
	if err != nil {
		r.fail(ctx, applog.OpListByDateRange, applog.ErrorTypeDatabase,
			fmt.Errorf("list expenses between %s and %s: %w", start, end, err),
			applog.FieldStartDate, start, applog.FieldEndDate, end)
		return nil
	}
	r.logger.DebugContext(ctx, "Listed expenses by date range",
		applog.FieldStartDate, start,
		applog.FieldEndDate, end,
		applog.FieldCount, len(rows))
	return toCore(rows)
}

func (r *SQLiteRepository) GetExpensesByCategory(ctx context.Context, category string) []core.Expense {
	rows, err := r.queries.ListExpensesByCategory(ctx, category)
	if err != nil {
		r.fail(ctx, applog.OpListByCategory, applog.ErrorTypeDatabase,
			fmt.Errorf("list expenses for category %s: %w", category, err))
		return nil
	}
	return toCore(rows)
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, id int64, in core.ExpenseInput) bool {
	if err := in.Validate(); err != nil {
		r.fail(ctx, applog.OpUpdate, applog.ErrorTypeValidation, err, applog.FieldExpenseID, id)
		return false
	}
	n, err := r.queries.UpdateExpense(ctx, UpdateExpenseParams{
		ID:          id,
		Date:        string(in.Date),
		Category:    in.Category,
		Amount:      in.Amount,
		Place:       in.Place,
		Description: in.Description,
	})
	if err != nil {
		r.fail(ctx, applog.OpUpdate, applog.ErrorTypeDatabase, fmt.Errorf("update expense: %w", err), applog.FieldExpenseID, id)
		return false
	}
	if n == 0 {
		r.logger.WarnContext(ctx, "Expense not found",
			applog.FieldOperation, applog.OpUpdate,
			applog.FieldErrorType, applog.ErrorTypeNotFound,
			applog.FieldExpenseID, id)
		return false
	}
	r.logger.InfoContext(ctx, "Expense updated", applog.FieldExpenseID, id)
	return true
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) bool {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		r.fail(ctx, applog.OpDelete, applog.ErrorTypeDatabase, fmt.Errorf("delete expense: %w", err), applog.FieldExpenseID, id)
		return false
	}
	if n == 0 {
		r.logger.WarnContext(ctx, "Expense not found",
			applog.FieldOperation, applog.OpDelete,
			applog.FieldErrorType, applog.ErrorTypeNotFound,
			applog.FieldExpenseID, id)
		return false
	}
	r.logger.InfoContext(ctx, "Expense deleted", applog.FieldExpenseID, id)
	return true
}

func (r *SQLiteRepository) GetCategorySummary(ctx context.Context) []core.CategorySummary {
	sums, err := r.queries.GetCategorySums(ctx)
	if err != nil {
		r.fail(ctx, applog.OpCategorySummary, applog.ErrorTypeDatabase, fmt.Errorf("get category sums: %w", err))
		return nil
	}
	return toSummary(sums)
}

func (r *SQLiteRepository) GetMonthlySummary(ctx context.Context, year, month int) []core.CategorySummary {
	start, end, err := core.MonthRange(year, month)
	if err != nil {
		r.fail(ctx, applog.OpMonthlySummary, applog.ErrorTypeValidation, err, applog.FieldYear, year, applog.FieldMonth, month)
		return nil
	}
	sums, err := r.queries.GetCategorySumsBetween(ctx, string(start), string(end))
	if err != nil {
		r.fail(ctx, applog.OpMonthlySummary, applog.ErrorTypeDatabase,
			fmt.Errorf("get category sums for %d-%02d: %w", year, month, err))
		return nil
	}
	return toSummary(sums)
}

func (r *SQLiteRepository) fail(ctx context.Context, op, errorType string, err error, args ...any) {
	fields := applog.NewFields().
		WithOperation(op).
		WithErrorType(errorType).
		WithError(err).
		ToSlice()
	r.logger.ErrorContext(ctx, "SQLite operation failed", append(fields, args...)...)
}

func toCore(rows []Expense) []core.Expense {
	if len(rows) == 0 {
		return nil
	}
	out := make([]core.Expense, len(rows))
	for i, e := range rows {
		out[i] = core.Expense{
			ID:          e.ID,
			Date:        core.Date(e.Date),
			Category:    e.Category,
			Amount:      e.Amount,
			Place:       e.Place.String,
			Description: e.Description.String,
		}
	}
	return out
}

func toSummary(sums []CategorySum) []core.CategorySummary {
	if len(sums) == 0 {
		return nil
	}
	out := make([]core.CategorySummary, len(sums))
	for i, s := range sums {
		out[i] = core.CategorySummary{
			Category: s.Category,
			Total:    s.TotalAmount,
			Count:    s.Count,
		}
	}
	return out
}
