// Package tabular reconstructs a row/column table out of positioned text
// tokens extracted from a statement page. Tokens are clustered into physical
// rows by vertical position, a header row maps bank-specific labels onto a
// standard column vocabulary, and every remaining token is assigned to a
// column by horizontal position.
package tabular

import (
	"strings"
	"time"
)

// Token is a single text fragment with a position and size, as emitted by
// text-layer extraction or OCR. Y is the top edge of the bounding box and
// increases upward (PDF convention); OCR output is converted to match.
type Token struct {
	Text   string
	X      float64
	Y      float64
	Width  float64
	Height float64
	Page   int
}

// ColumnRole is a standardized column name. The closed set below covers the
// common statement vocabulary; anything else is carried through as a free-form
// snake_case extra column.
type ColumnRole string

const (
	RoleDate      ColumnRole = "date"
	RoleValueDate ColumnRole = "value_date"
	RoleNarration ColumnRole = "narration"
	RoleReference ColumnRole = "reference"
	RoleDebit     ColumnRole = "debit"
	RoleCredit    ColumnRole = "credit"
	RoleBalance   ColumnRole = "balance"
)

var standardRoles = map[ColumnRole]bool{
	RoleDate:      true,
	RoleValueDate: true,
	RoleNarration: true,
	RoleReference: true,
	RoleDebit:     true,
	RoleCredit:    true,
	RoleBalance:   true,
}

// StandardRole reports whether name is one of the closed standardized roles.
func StandardRole(name string) (ColumnRole, bool) {
	r := ColumnRole(strings.ToLower(strings.TrimSpace(name)))
	return r, standardRoles[r]
}

// CellKind discriminates the typed value held by a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellDate
)

// Cell is a typed table value after coercion. Text always holds the display
// form; Number and Date are only meaningful for their respective kinds.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Date   time.Time
}

// StringCell builds a string-valued cell.
func StringCell(s string) Cell { return Cell{Kind: CellString, Text: s} }

// NumberCell builds a number-valued cell.
func NumberCell(n float64, text string) Cell {
	return Cell{Kind: CellNumber, Number: n, Text: text}
}

// DateCell builds a date-valued cell. Text carries the ISO form.
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Date: t, Text: t.Format("2006-01-02")}
}

// StructuredRow is one table row below the header: standardized columns in a
// closed-role map, unrecognized columns in a free-form escape hatch.
type StructuredRow struct {
	cells map[ColumnRole]Cell
	extra map[string]Cell
}

// NewStructuredRow returns an empty row.
func NewStructuredRow() StructuredRow {
	return StructuredRow{
		cells: make(map[ColumnRole]Cell),
		extra: make(map[string]Cell),
	}
}

// Set stores a cell under the given column name, routing standard names to
// the closed-role map and everything else to the escape hatch.
func (r StructuredRow) Set(name string, c Cell) {
	if role, ok := StandardRole(name); ok {
		r.cells[role] = c
		return
	}
	r.extra[strings.ToLower(strings.TrimSpace(name))] = c
}

// Get returns the cell stored under a standard role.
func (r StructuredRow) Get(role ColumnRole) (Cell, bool) {
	c, ok := r.cells[role]
	return c, ok
}

// Lookup returns the cell stored under any column name, standard or not.
func (r StructuredRow) Lookup(name string) (Cell, bool) {
	if role, ok := StandardRole(name); ok {
		c, found := r.cells[role]
		return c, found
	}
	c, found := r.extra[strings.ToLower(strings.TrimSpace(name))]
	return c, found
}

// AppendText concatenates text onto an existing cell with a separating space,
// or stores a fresh string cell if the column is empty. Used when several
// tokens land in the same column on the same row (multi-word narrations).
func (r StructuredRow) AppendText(name, text string) {
	if existing, ok := r.Lookup(name); ok && existing.Kind != CellEmpty {
		r.Set(name, StringCell(existing.Text+" "+text))
		return
	}
	r.Set(name, StringCell(text))
}

// Len reports how many columns hold a value.
func (r StructuredRow) Len() int { return len(r.cells) + len(r.extra) }

// ColumnDef is one resolved column: the original header label, its
// standardized name, and the half-open horizontal band [StartX, EndX) it
// owns. The first column's band starts at -Inf and the last ends at +Inf so
// every token maps to exactly one column.
type ColumnDef struct {
	OriginalLabel string
	Name          string
	StartX        float64
	EndX          float64
}
