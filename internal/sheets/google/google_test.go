package google

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/store"
	"wallet/internal/store/storetest"
)

func headerRow() []any {
	row := make([]any, len(Header))
	for i, h := range Header {
		row[i] = h
	}
	return row
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := fake.start(t)
	c, err := New(context.Background(), Config{SpreadsheetID: "sheet-test", SheetName: DefaultSheetName}, applog.Discard(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2024, 1, 5, 12, 30, 0, 0, time.UTC) }
	return c
}

func TestClientContract(t *testing.T) {
	storetest.Run(t, storetest.Harness{
		New: func(t *testing.T) store.Store {
			c := newTestClient(t, newFakeSheets())
			require.NoError(t, c.Initialize(context.Background()))
			return c
		},
		Broken: func(t *testing.T) store.Store {
			fake := newFakeSheets()
			c := newTestClient(t, fake)
			require.NoError(t, c.Initialize(context.Background()))
			fake.mu.Lock()
			fake.failWith = http.StatusForbidden
			fake.mu.Unlock()
			return c
		},
	})
}

func TestInitializeCreatesSheetAndHeader(t *testing.T) {
	fake := newFakeSheets()
	c := newTestClient(t, fake)

	require.NoError(t, c.Initialize(context.Background()))

	rows := fake.rows(DefaultSheetName)
	require.Len(t, rows, 1)
	assert.Equal(t, headerRow(), rows[0])
	assert.Equal(t, 1, fake.countRequests("batchUpdate"))
}

func TestInitializeKeepsExistingHeader(t *testing.T) {
	fake := newFakeSheets()
	fake.addSheet(DefaultSheetName,
		[]any{"ID", "Date", "Category", "Amount", "Place", "Description", "Created_At"},
		[]any{float64(1), "2024-01-05", "밥", float64(8000), "", "", "2024-01-05 12:00:00"},
	)
	c := newTestClient(t, fake)

	require.NoError(t, c.Initialize(context.Background()))
	assert.Equal(t, 0, fake.countRequests("update"))
	assert.Equal(t, 0, fake.countRequests("batchUpdate"))
	assert.Len(t, c.GetAllExpenses(context.Background()), 1)
}

func TestInitializeRejectsForeignHeader(t *testing.T) {
	fake := newFakeSheets()
	fake.addSheet(DefaultSheetName, []any{"when", "what", "how much"})
	c := newTestClient(t, fake)

	err := c.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected header")
}

func TestAddExpenseAppendsFullRow(t *testing.T) {
	fake := newFakeSheets()
	c := newTestClient(t, fake)
	ctx := context.Background()
	require.NoError(t, c.Initialize(ctx))

	require.True(t, c.AddExpense(ctx, core.ExpenseInput{
		Date: "2024-01-05", Category: "밥", Amount: 8000, Place: "김밥천국", Description: "점심",
	}))

	rows := fake.rows(DefaultSheetName)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{float64(1), "2024-01-05", "밥", float64(8000), "김밥천국", "점심", "2024-01-05 12:30:00"}, rows[1])
}

func TestReadCoercesFormattedCells(t *testing.T) {
	fake := newFakeSheets()
	fake.addSheet(DefaultSheetName,
		headerRow(),
		[]any{"3", "2024-01-05", "밥", "1,000", "", "", ""},
		[]any{"", "", "", "", "", "", ""},
		[]any{"x", "2024-01-04", "커피", "abc", "카페", "", ""},
		[]any{float64(7), "2024-01-06", "밥", "2,500원"},
	)
	c := newTestClient(t, fake)
	ctx := context.Background()

	all := c.GetAllExpenses(ctx)
	require.Len(t, all, 3)
	assert.Equal(t, core.Expense{ID: 7, Date: "2024-01-06", Category: "밥", Amount: 2500}, all[0])
	assert.Equal(t, core.Expense{ID: 3, Date: "2024-01-05", Category: "밥", Amount: 1000}, all[1])
	assert.Equal(t, core.Expense{ID: 0, Date: "2024-01-04", Category: "커피", Amount: 0, Place: "카페"}, all[2])

	// next id follows the largest parsed id
	require.True(t, c.AddExpense(ctx, core.ExpenseInput{Date: "2024-01-07", Category: "기타", Amount: 1}))
	assert.Equal(t, int64(8), c.GetAllExpenses(ctx)[0].ID)
}

func TestUpdateLeavesIDAndCreatedAt(t *testing.T) {
	fake := newFakeSheets()
	fake.addSheet(DefaultSheetName,
		headerRow(),
		[]any{float64(1), "2024-01-05", "밥", float64(1000), "", "", "2023-12-31 09:00:00"},
		[]any{},
		[]any{float64(2), "2024-01-06", "커피", float64(500), "", "", "2024-01-01 09:00:00"},
	)
	c := newTestClient(t, fake)
	ctx := context.Background()

	require.True(t, c.UpdateExpense(ctx, 2, core.ExpenseInput{Date: "2024-02-01", Category: "농구", Amount: 12000, Place: "체육관"}))
	assert.Equal(t, 1, fake.countRequests("update 'Expenses'!B4:F4"))

	rows := fake.rows(DefaultSheetName)
	assert.Equal(t, []any{float64(2), "2024-02-01", "농구", float64(12000), "체육관", "", "2024-01-01 09:00:00"}, rows[3])
	assert.Equal(t, float64(1000), rows[1][3])
}

func TestDeleteRemovesSheetRow(t *testing.T) {
	fake := newFakeSheets()
	fake.addSheet(DefaultSheetName,
		headerRow(),
		[]any{float64(1), "2024-01-05", "밥", float64(1000)},
		[]any{float64(2), "2024-01-06", "커피", float64(500)},
		[]any{float64(3), "2024-01-07", "기타", float64(10)},
	)
	c := newTestClient(t, fake)
	ctx := context.Background()

	require.True(t, c.DeleteExpense(ctx, 2))
	rows := fake.rows(DefaultSheetName)
	require.Len(t, rows, 3)
	assert.Equal(t, float64(1), rows[1][0])
	assert.Equal(t, float64(3), rows[2][0])

	assert.False(t, c.DeleteExpense(ctx, 2))
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "  "}, applog.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_SPREADSHEET_ID")
}

func TestCredentialOptions(t *testing.T) {
	t.Run("inline json", func(t *testing.T) {
		opts, err := CredentialOptions(Config{ServiceAccountJSON: `{"type":"service_account"}`})
		require.NoError(t, err)
		assert.Len(t, opts, 2)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sa.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600))
		opts, err := CredentialOptions(Config{ServiceAccountFile: path})
		require.NoError(t, err)
		assert.Len(t, opts, 2)
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, err := CredentialOptions(Config{ServiceAccountFile: filepath.Join(t.TempDir(), "missing.json")})
		require.Error(t, err)
	})

	t.Run("application default fallback", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "adc.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600))
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
		_, err := CredentialOptions(Config{})
		require.NoError(t, err)
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
		_, err := CredentialOptions(Config{})
		require.Error(t, err)
	})
}
