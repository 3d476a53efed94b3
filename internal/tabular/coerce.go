package tabular

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	numericPattern = regexp.MustCompile(`^-?[\d.]+$`)
	dmyPattern     = regexp.MustCompile(`^\d{2}[/\-]\d{2}[/\-]\d{4}$`)
	isoPattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// CoerceRow converts raw string cells into typed values: strings that are
// purely numeric after stripping thousands separators become numbers, strings
// matching DD/MM/YYYY, DD-MM-YYYY or YYYY-MM-DD become dates, everything else
// stays a string.
func CoerceRow(row StructuredRow, _ []ColumnDef) StructuredRow {
	coerce := func(c Cell) Cell {
		if c.Kind != CellString {
			return c
		}
		return coerceValue(c.Text)
	}
	for role, c := range row.cells {
		row.cells[role] = coerce(c)
	}
	for name, c := range row.extra {
		row.extra[name] = coerce(c)
	}
	return row
}

// CoerceValue converts one raw string into a typed cell using the same
// rules as CoerceRow.
func CoerceValue(raw string) Cell {
	return coerceValue(raw)
}

func coerceValue(raw string) Cell {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))

	if cleaned != "" && numericPattern.MatchString(cleaned) {
		if n, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return NumberCell(n, raw)
		}
	}

	trimmed := strings.TrimSpace(raw)
	if dmyPattern.MatchString(trimmed) {
		parts := strings.FieldsFunc(trimmed, func(r rune) bool { return r == '/' || r == '-' })
		if t, err := time.Parse("2006-01-02", parts[2]+"-"+parts[1]+"-"+parts[0]); err == nil {
			return DateCell(t)
		}
	}
	if isoPattern.MatchString(trimmed) {
		if t, err := time.Parse("2006-01-02", trimmed); err == nil {
			return DateCell(t)
		}
	}

	return StringCell(raw)
}
