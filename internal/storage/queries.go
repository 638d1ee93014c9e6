package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type Expense struct {
	ID          int64
	Date        string
	Category    string
	Amount      int64
	Place       sql.NullString
	Description sql.NullString
}

type CategorySum struct {
	Category    string
	TotalAmount int64
	Count       int64
}

const createExpense = `-- name: CreateExpense :execlastid
INSERT INTO expenses (date, category, amount, place, description)
VALUES (?, ?, ?, ?, ?)
`

type CreateExpenseParams struct {
	Date        string
	Category    string
	Amount      int64
	Place       string
	Description string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createExpense,
		arg.Date,
		arg.Category,
		arg.Amount,
		arg.Place,
		arg.Description,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const listExpenses = `-- name: ListExpenses :many
SELECT id, date, category, amount, place, description
FROM expenses
ORDER BY date DESC, id DESC
`

func (q *Queries) ListExpenses(ctx context.Context) ([]Expense, error) {
	return q.queryExpenses(ctx, listExpenses)
}

const listExpensesByDateRange = `-- name: ListExpensesByDateRange :many
SELECT id, date, category, amount, place, description
FROM expenses
WHERE date BETWEEN ? AND ?
ORDER BY date DESC, id DESC
`

func (q *Queries) ListExpensesByDateRange(ctx context.Context, start, end string) ([]Expense, error) {
	return q.queryExpenses(ctx, listExpensesByDateRange, start, end)
}

const listExpensesByCategory = `-- name: ListExpensesByCategory :many
SELECT id, date, category, amount, place, description
FROM expenses
WHERE category = ?
ORDER BY date DESC, id DESC
`

func (q *Queries) ListExpensesByCategory(ctx context.Context, category string) ([]Expense, error) {
	return q.queryExpenses(ctx, listExpensesByCategory, category)
}

const updateExpense = `-- name: UpdateExpense :execrows
UPDATE expenses
SET date = ?, category = ?, amount = ?, place = ?, description = ?
WHERE id = ?
`

type UpdateExpenseParams struct {
	ID          int64
	Date        string
	Category    string
	Amount      int64
	Place       string
	Description string
}

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateExpense,
		arg.Date,
		arg.Category,
		arg.Amount,
		arg.Place,
		arg.Description,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExpense = `-- name: DeleteExpense :execrows
DELETE FROM expenses WHERE id = ?
`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getCategorySums = `-- name: GetCategorySums :many
SELECT category, SUM(amount) AS total_amount, COUNT(*) AS count
FROM expenses
GROUP BY category
ORDER BY total_amount DESC, category ASC
`

func (q *Queries) GetCategorySums(ctx context.Context) ([]CategorySum, error) {
	return q.queryCategorySums(ctx, getCategorySums)
}

const getCategorySumsBetween = `-- name: GetCategorySumsBetween :many
SELECT category, SUM(amount) AS total_amount, COUNT(*) AS count
FROM expenses
WHERE date >= ? AND date < ?
GROUP BY category
ORDER BY total_amount DESC, category ASC
`

// GetCategorySumsBetween aggregates over the half-open interval [start, end).
func (q *Queries) GetCategorySumsBetween(ctx context.Context, start, end string) ([]CategorySum, error) {
	return q.queryCategorySums(ctx, getCategorySumsBetween, start, end)
}

func (q *Queries) queryExpenses(ctx context.Context, query string, args ...interface{}) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.Category,
			&i.Amount,
			&i.Place,
			&i.Description,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) queryCategorySums(ctx context.Context, query string, args ...interface{}) ([]CategorySum, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategorySum
	for rows.Next() {
		var i CategorySum
		if err := rows.Scan(&i.Category, &i.TotalAmount, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
