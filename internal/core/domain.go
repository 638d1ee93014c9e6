package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date layout used for storage, display and ordering.
const DateLayout = "2006-01-02"

type (
	// Date is an ISO YYYY-MM-DD calendar date. Lexicographic order is date order.
	Date string

	// ExpenseInput carries the mutable fields of an expense.
	ExpenseInput struct {
		Date        Date   `json:"date"`
		Category    string `json:"category"`
		Amount      int64  `json:"amount"` // smallest currency unit
		Place       string `json:"place,omitempty"`
		Description string `json:"description,omitempty"`
	}

	// Expense is a stored expense record. ID is assigned by the store.
	Expense struct {
		ID          int64
		Date        Date
		Category    string
		Amount      int64
		Place       string
		Description string
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return DateOf(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}

// DateOf formats t as a Date, ignoring its time of day.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	d := Date(strings.TrimSpace(s))
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d, nil
}

func (d Date) String() string {
	return string(d)
}

// Time returns the date at midnight UTC.
func (d Date) Time() (time.Time, error) {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, string(d))
	}
	return t, nil
}

func (d Date) Validate() error {
	_, err := d.Time()
	return err
}

func (in ExpenseInput) Validate() error {
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	if in.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Input returns the mutable fields of the expense.
func (e Expense) Input() ExpenseInput {
	return ExpenseInput{
		Date:        e.Date,
		Category:    e.Category,
		Amount:      e.Amount,
		Place:       e.Place,
		Description: e.Description,
	}
}

// WithID builds the record an input becomes once the store assigns id.
func (in ExpenseInput) WithID(id int64) Expense {
	return Expense{
		ID:          id,
		Date:        in.Date,
		Category:    in.Category,
		Amount:      in.Amount,
		Place:       in.Place,
		Description: in.Description,
	}
}
