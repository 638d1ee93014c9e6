package google

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"wallet/internal/store"
)

func TestCellInt(t *testing.T) {
	tests := []struct {
		name string
		cell any
		want int64
	}{
		{"float", float64(1200), 1200},
		{"float rounds", 999.6, 1000},
		{"int", 5, 5},
		{"int64", int64(7), 7},
		{"json number", json.Number("42"), 42},
		{"plain text", "3000", 3000},
		{"grouped text", "1,234,000", 1234000},
		{"currency suffix", "8,000원", 8000},
		{"decimal text", "12.0", 12},
		{"blank", "  ", 0},
		{"garbage", "n/a", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cellInt([]any{tt.cell}, 0))
		})
	}
	assert.Equal(t, int64(0), cellInt([]any{}, 3))
}

func TestCellString(t *testing.T) {
	row := []any{" 밥 ", nil, float64(3)}
	assert.Equal(t, "밥", cellString(row, 0))
	assert.Equal(t, "", cellString(row, 1))
	assert.Equal(t, "3", cellString(row, 2))
	assert.Equal(t, "", cellString(row, 9))
}

func TestParseRowsKeepsSheetNumbering(t *testing.T) {
	values := [][]any{
		{float64(1), "2024-01-01", "밥", float64(10)},
		{},
		{"", " "},
		{float64(4), "2024-01-02", "커피", float64(20), "카페", "라떼"},
	}
	rows := parseRows(values, 2)
	if assert.Len(t, rows, 2) {
		assert.Equal(t, 2, rows[0].Row)
		assert.Equal(t, 5, rows[1].Row)
		assert.Equal(t, "라떼", rows[1].Expense.Description)
	}
	assert.Equal(t, int64(5), store.NextID(expenses(rows)))
	assert.Nil(t, expenses(nil))
	assert.Equal(t, int64(1), store.NextID(expenses(nil)))
}

func TestHeaderMatches(t *testing.T) {
	assert.True(t, headerMatches(Header))
	assert.True(t, headerMatches(append(append([]string{}, Header...), "notes")))
	assert.False(t, headerMatches(Header[:3]))
	assert.False(t, headerMatches([]string{"date", "id", "category", "amount", "place", "description", "created_at"}))
}
