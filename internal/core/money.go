// Package core provides the expense ledger domain types.
//
// This file contains parsing and formatting of amounts. Amounts are plain
// integers in the smallest currency unit; there is no fractional part.
package core

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// CurrencySuffix is appended to formatted amounts.
const CurrencySuffix = "원"

// amountPattern is a plain digit run or digits in groups of three joined by
// one separator kind (comma, dot, underscore or space).
var amountPattern = regexp.MustCompile(`^(\d+|\d{1,3}(,\d{3})+|\d{1,3}(\.\d{3})+|\d{1,3}(_\d{3})+|\d{1,3}( \d{3})+)$`)

// ParseAmount converts a user supplied amount into an integer amount.
//
// Thousands separators (comma, dot, underscore, space) are accepted only
// between groups of three digits, and a trailing currency suffix is allowed.
// Negative values and anything that is not a whole number are rejected.
//
// Examples:
//
//	ParseAmount("12000")    -> 12000, nil
//	ParseAmount("12,000원") -> 12000, nil
//	ParseAmount("3.50")     -> 0, ErrInvalidAmount
//	ParseAmount("-5")       -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, CurrencySuffix)
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return 0, ErrInvalidAmount
	}
	digits := strings.NewReplacer(",", "", ".", "", "_", "", " ", "").Replace(s)
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders an amount with thousands separators, e.g. "12,000원".
func FormatAmount(v int64) string {
	return humanize.Comma(v) + CurrencySuffix
}
