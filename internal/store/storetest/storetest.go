// Package storetest runs the behavioural contract of store.Store against a backend.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/core"
	"wallet/internal/store"
)

// Harness builds stores for the contract tests.
type Harness struct {
	// New returns an empty, initialized store.
	New func(t *testing.T) store.Store
	// Broken returns a store whose backend is unreachable. Optional.
	Broken func(t *testing.T) store.Store
}

// Run executes every contract test against the harness.
func Run(t *testing.T, h Harness) {
	t.Helper()
	tests := map[string]func(*testing.T, store.Store){
		"RoundTrip":            testRoundTrip,
		"FreshIDs":             testFreshIDs,
		"Ordering":             testOrdering,
		"UpdateKeepsID":        testUpdateKeepsID,
		"UpdateUnknownID":      testUpdateUnknownID,
		"DeleteThenLookup":     testDeleteThenLookup,
		"CategoryFilter":       testCategoryFilter,
		"CategorySummary":      testCategorySummary,
		"MonthlyBoundary":      testMonthlyBoundary,
		"MonthlyInvalidMonth":  testMonthlyInvalidMonth,
		"DateRangeInclusive":   testDateRangeInclusive,
		"InvalidInputRejected": testInvalidInputRejected,
		"InitializeIdempotent": testInitializeIdempotent,
		"EmptyStoreReadsEmpty": testEmptyStore,
		"OptionalFieldsKept":   testOptionalFields,
	}
	for name, fn := range tests {
		fn := fn
		t.Run(name, func(t *testing.T) {
			fn(t, h.New(t))
		})
	}
	if h.Broken != nil {
		t.Run("FailureDoesNotRaise", func(t *testing.T) {
			testFailureDoesNotRaise(t, h.Broken(t))
		})
	}
}

func add(t *testing.T, s store.Store, date core.Date, category string, amount int64) {
	t.Helper()
	require.True(t, s.AddExpense(context.Background(), core.ExpenseInput{
		Date:     date,
		Category: category,
		Amount:   amount,
	}), "add %s %s %d", date, category, amount)
}

func byID(items []core.Expense, id int64) (core.Expense, bool) {
	i := store.FindByID(items, id)
	if i < 0 {
		return core.Expense{}, false
	}
	return items[i], true
}

func ids(items []core.Expense) []int64 {
	out := make([]int64, 0, len(items))
	for _, e := range items {
		out = append(out, e.ID)
	}
	return out
}

func testRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, "2024-01-01", "기타", 100)
	before := s.GetAllExpenses(ctx)
	require.Len(t, before, 1)

	in := core.ExpenseInput{Date: "2024-01-05", Category: "밥", Amount: 8000, Place: "김밥천국", Description: "점심"}
	require.True(t, s.AddExpense(ctx, in))

	after := s.GetAllExpenses(ctx)
	require.Len(t, after, 2)
	var added []core.Expense
	for _, e := range after {
		if _, seen := byID(before, e.ID); !seen {
			added = append(added, e)
		}
	}
	require.Len(t, added, 1)
	assert.Equal(t, in, added[0].Input())
	assert.Positive(t, added[0].ID)
}

func testFreshIDs(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, "2024-01-01", "밥", 1)
	add(t, s, "2024-01-02", "밥", 2)
	add(t, s, "2024-01-03", "밥", 3)
	all := s.GetAllExpenses(ctx)
	require.Len(t, all, 3)
	used := map[int64]bool{}
	for _, e := range all {
		assert.False(t, used[e.ID], "duplicate id %d", e.ID)
		used[e.ID] = true
	}

	// delete the middle record, its id must not come back
	mid := all[1].ID
	require.True(t, s.DeleteExpense(ctx, mid))
	add(t, s, "2024-01-04", "밥", 4)
	for _, e := range s.GetAllExpenses(ctx) {
		if e.Amount == 4 {
			assert.False(t, used[e.ID], "id %d was reissued", e.ID)
		}
	}
}

func testOrdering(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, "2024-01-05", "밥", 1)
	add(t, s, "2024-01-06", "밥", 2)
	add(t, s, "2024-01-05", "밥", 3)
	add(t, s, "2023-12-31", "밥", 4)

	all := s.GetAllExpenses(ctx)
	require.Len(t, all, 4)
	amounts := make([]int64, 0, len(all))
	for _, e := range all {
		amounts = append(amounts, e.Amount)
	}
	assert.Equal(t, []int64{2, 3, 1, 4}, amounts)
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		ok := prev.Date > cur.Date || (prev.Date == cur.Date && prev.ID > cur.ID)
		assert.True(t, ok, "records %d and %d out of order", prev.ID, cur.ID)
	}
}

func testUpdateKeepsID(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, "2024-01-05", "밥", 1000)
	add(t, s, "2024-01-06", "커피", 500)
	all := s.GetAllExpenses(ctx)
	target := all[1]

	upd := core.ExpenseInput{Date: "2024-02-10", Category: "농구", Amount: 12000, Place: "체육관", Description: "대관"}
	require.True(t, s.UpdateExpense(ctx, target.ID, upd))

	after := s.GetAllExpenses(ctx)
	require.Len(t, after, 2)
	got, ok := byID(after, target.ID)
	require.True(t, ok)
	assert.Equal(t, upd, got.Input())
	assert.ElementsMatch(t, ids(all), ids(after))

	other, ok := byID(after, all[0].ID)
	require.True(t, ok)
	assert.Equal(t, all[0], other)
}

func testUpdateUnknownID(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, "2024-01-05", "밥", 1000)
	assert.False(t, s.UpdateExpense(ctx, 999, core.ExpenseInput{Date: "2024-01-05", Category: "밥", Amount: 1}))
	all := s.GetAllExpenses(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, int64(1000), all[0].Amount)
}

func testDeleteThenLookup(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, "2024-01-05", "밥", 1000)
	add(t, s, "2024-01-06", "커피", 500)
	all := s.GetAllExpenses(ctx)
	id := all[0].ID

	require.True(t, s.DeleteExpense(ctx, id))
	after := s.GetAllExpenses(ctx)
	require.Len(t, after, 1)
	_, found := byID(after, id)
	assert.False(t, found)

	assert.False(t, s.DeleteExpense(ctx, id))
	assert.False(t, s.UpdateExpense(ctx, id, core.ExpenseInput{Date: "2024-01-05", Category: "밥", Amount: 1}))
	assert.Len(t, s.GetAllExpenses(ctx), 1)
}

func testCategoryFilter(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, "2024-01-05", "밥", 1)
	add(t, s, "2024-01-07", "커피", 2)
	add(t, s, "2024-01-06", "밥", 3)

	got := s.GetExpensesByCategory(ctx, "밥")
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].Amount)
	assert.Equal(t, int64(1), got[1].Amount)
	assert.Empty(t, s.GetExpensesByCategory(ctx, "밥 "))
	assert.Empty(t, s.GetExpensesByCategory(ctx, "농구"))
}

func testCategorySummary(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, "2024-01-05", "밥", 1000)
	add(t, s, "2024-01-06", "밥", 2000)
	add(t, s, "2024-02-01", "커피", 500)

	assert.Equal(t, []core.CategorySummary{
		{Category: "밥", Total: 3000, Count: 2},
		{Category: "커피", Total: 500, Count: 1},
	}, s.GetCategorySummary(ctx))
}

func testMonthlyBoundary(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, "2024-12-31", "밥", 1000)
	add(t, s, "2025-01-01", "커피", 500)
	add(t, s, "2024-12-01", "밥", 250)
	add(t, s, "2024-11-30", "기타", 9)

	assert.Equal(t, []core.CategorySummary{
		{Category: "밥", Total: 1250, Count: 2},
	}, s.GetMonthlySummary(ctx, 2024, 12))
	assert.Equal(t, []core.CategorySummary{
		{Category: "커피", Total: 500, Count: 1},
	}, s.GetMonthlySummary(ctx, 2025, 1))
	assert.Empty(t, s.GetMonthlySummary(ctx, 2025, 2))
}

func testMonthlyInvalidMonth(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, "2024-12-31", "밥", 1000)
	assert.Empty(t, s.GetMonthlySummary(ctx, 2024, 13))
	assert.Empty(t, s.GetMonthlySummary(ctx, 2024, 0))
}

func testDateRangeInclusive(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, "2023-12-31", "밥", 1)
	add(t, s, "2024-01-01", "밥", 2)
	add(t, s, "2024-01-15", "밥", 3)
	add(t, s, "2024-01-31", "밥", 4)
	add(t, s, "2024-02-01", "밥", 5)

	got := s.GetExpensesByDateRange(ctx, "2024-01-01", "2024-01-31")
	amounts := make([]int64, 0, len(got))
	for _, e := range got {
		amounts = append(amounts, e.Amount)
	}
	assert.Equal(t, []int64{4, 3, 2}, amounts)
	assert.Empty(t, s.GetExpensesByDateRange(ctx, "2024-01-31", "2024-01-01"))
}

func testInvalidInputRejected(t *testing.T, s store.Store) {
	ctx := context.Background()
	assert.False(t, s.AddExpense(ctx, core.ExpenseInput{Date: "2024-13-01", Category: "밥", Amount: 1}))
	assert.False(t, s.AddExpense(ctx, core.ExpenseInput{Date: "2024-01-01", Category: "밥", Amount: -1}))
	assert.False(t, s.AddExpense(ctx, core.ExpenseInput{Date: "2024-01-01", Category: "", Amount: 1}))
	assert.Empty(t, s.GetAllExpenses(ctx))

	add(t, s, "2024-01-01", "밥", 1)
	id := s.GetAllExpenses(ctx)[0].ID
	assert.False(t, s.UpdateExpense(ctx, id, core.ExpenseInput{Date: "bad", Category: "밥", Amount: 1}))
	assert.Equal(t, core.Date("2024-01-01"), s.GetAllExpenses(ctx)[0].Date)
}

func testInitializeIdempotent(t *testing.T, s store.Store) {
	ctx := context.Background()
	add(t, s, "2024-01-01", "밥", 1)
	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Initialize(ctx))
	assert.Len(t, s.GetAllExpenses(ctx), 1)
}

func testEmptyStore(t *testing.T, s store.Store) {
	ctx := context.Background()
	assert.Empty(t, s.GetAllExpenses(ctx))
	assert.Empty(t, s.GetCategorySummary(ctx))
	assert.Empty(t, s.GetMonthlySummary(ctx, 2024, 1))
	assert.False(t, s.DeleteExpense(ctx, 1))
}

func testOptionalFields(t *testing.T, s store.Store) {
	ctx := context.Background()
	in := core.ExpenseInput{Date: "2024-01-01", Category: "커피", Amount: 0}
	require.True(t, s.AddExpense(ctx, in))
	all := s.GetAllExpenses(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, in, all[0].Input())
}

func testFailureDoesNotRaise(t *testing.T, s store.Store) {
	ctx := context.Background()
	in := core.ExpenseInput{Date: "2024-01-01", Category: "밥", Amount: 1}
	assert.NotPanics(t, func() {
		assert.False(t, s.AddExpense(ctx, in))
		assert.Empty(t, s.GetAllExpenses(ctx))
		assert.Empty(t, s.GetExpensesByDateRange(ctx, "2024-01-01", "2024-12-31"))
		assert.Empty(t, s.GetExpensesByCategory(ctx, "밥"))
		assert.False(t, s.UpdateExpense(ctx, 1, in))
		assert.False(t, s.DeleteExpense(ctx, 1))
		assert.Empty(t, s.GetCategorySummary(ctx))
		assert.Empty(t, s.GetMonthlySummary(ctx, 2024, 1))
	})
}
