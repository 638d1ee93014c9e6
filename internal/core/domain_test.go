package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateValidate(t *testing.T) {
	valid := []Date{"2024-01-05", "2024-02-29", "1999-12-31"}
	for _, d := range valid {
		assert.NoError(t, d.Validate(), "date %q", d)
	}
	invalid := []Date{"", "2024-1-5", "2023-02-29", "2024-13-01", "05/01/2024", "2024-01-05T10:00:00"}
	for _, d := range invalid {
		assert.ErrorIs(t, d.Validate(), ErrInvalidDate, "date %q", d)
	}
}

func TestNewDateAndParse(t *testing.T) {
	assert.Equal(t, Date("2025-01-09"), NewDate(2025, 1, 9))

	d, err := ParseDate(" 2024-12-31 ")
	require.NoError(t, err)
	assert.Equal(t, Date("2024-12-31"), d)

	_, err = ParseDate("yesterday")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExpenseInputValidate(t *testing.T) {
	ok := ExpenseInput{Date: "2024-01-05", Category: "밥", Amount: 0}
	assert.NoError(t, ok.Validate())

	tests := []struct {
		name string
		in   ExpenseInput
		want error
	}{
		{"bad date", ExpenseInput{Date: "2024/01/05", Category: "밥", Amount: 1}, ErrInvalidDate},
		{"blank category", ExpenseInput{Date: "2024-01-05", Category: "  ", Amount: 1}, ErrEmptyCategory},
		{"negative amount", ExpenseInput{Date: "2024-01-05", Category: "밥", Amount: -1}, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v want %v", err, tt.want)
			}
		})
	}
}

func TestExpenseInputRoundTrip(t *testing.T) {
	in := ExpenseInput{Date: "2024-01-05", Category: "커피", Amount: 4500, Place: "cafe", Description: "latte"}
	e := in.WithID(7)
	assert.Equal(t, int64(7), e.ID)
	assert.Equal(t, in, e.Input())
}

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange(2024, 12)
	require.NoError(t, err)
	assert.Equal(t, Date("2024-12-01"), start)
	assert.Equal(t, Date("2025-01-01"), end)

	start, end, err = MonthRange(2025, 1)
	require.NoError(t, err)
	assert.Equal(t, Date("2025-01-01"), start)
	assert.Equal(t, Date("2025-02-01"), end)

	_, _, err = MonthRange(2025, 13)
	assert.ErrorIs(t, err, ErrInvalidMonth)
	_, _, err = MonthRange(2025, 0)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestSummaryTotal(t *testing.T) {
	rows := []CategorySummary{{"밥", 3000, 2}, {"커피", 500, 1}}
	assert.Equal(t, int64(3500), SummaryTotal(rows))
	assert.Zero(t, SummaryTotal(nil))
}
