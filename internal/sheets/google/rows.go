package google

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"wallet/internal/core"
)

// column positions in a data row
const (
	colID = iota
	colDate
	colCategory
	colAmount
	colPlace
	colDescription
	colCreatedAt
)

type sheetRow struct {
	Row     int // 1-based sheet row number
	Expense core.Expense
}

// parseRows converts a values matrix whose first row sits at sheet row firstRow.
// Blank rows are skipped but still count towards row numbers.
func parseRows(values [][]interface{}, firstRow int) []sheetRow {
	var out []sheetRow
	for i, row := range values {
		if rowBlank(row) {
			continue
		}
		out = append(out, sheetRow{
			Row: firstRow + i,
			Expense: core.Expense{
				ID:          cellInt(row, colID),
				Date:        core.Date(cellString(row, colDate)),
				Category:    cellString(row, colCategory),
				Amount:      cellInt(row, colAmount),
				Place:       cellString(row, colPlace),
				Description: cellString(row, colDescription),
			},
		})
	}
	return out
}

// expenses strips row numbers. Malformed ids stay 0.
func expenses(rows []sheetRow) []core.Expense {
	if len(rows) == 0 {
		return nil
	}
	out := make([]core.Expense, len(rows))
	for i, r := range rows {
		out[i] = r.Expense
	}
	return out
}

func cellString(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

// cellInt coerces a numeric or text cell to an integer; anything unparsable is 0.
func cellInt(row []interface{}, idx int) int64 {
	if idx < 0 || idx >= len(row) {
		return 0
	}
	switch v := row[idx].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int64(math.Round(v))
	case int:
		return int64(v)
	case int64:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(math.Round(f))
		}
		return 0
	case string:
		return parseIntText(v)
	default:
		return 0
	}
}

func parseIntText(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, core.CurrencySuffix)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int64(math.Round(f))
	}
	return 0
}

func rowBlank(row []interface{}) bool {
	for i := range row {
		if cellString(row, i) != "" {
			return false
		}
	}
	return true
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i := range in {
		out[i] = cellString(in, i)
	}
	return out
}

func headerMatches(got []string) bool {
	if len(got) < len(Header) {
		return false
	}
	for i, h := range Header {
		if !strings.EqualFold(got[i], h) {
			return false
		}
	}
	return true
}
