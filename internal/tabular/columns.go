package tabular

import (
	"math"
	"strings"
)

// BuildColumnDefs computes the horizontal band each column owns. standardized
// holds the classifier's standardized names aligned by index with the header
// tokens (left-to-right); an empty entry falls back to the lowercased header
// label. Band edges are midpoints between adjacent header token edges, so no
// horizontal position falls between columns; the first band extends to -Inf
// and the last to +Inf.
func BuildColumnDefs(headerRow []Token, standardized []string) []ColumnDef {
	defs := make([]ColumnDef, 0, len(headerRow))
	for i, tok := range headerRow {
		name := ""
		if i < len(standardized) {
			name = strings.TrimSpace(standardized[i])
		}
		if name == "" {
			name = strings.ToLower(strings.TrimSpace(tok.Text))
		}

		startX := math.Inf(-1)
		if i > 0 {
			prev := headerRow[i-1]
			startX = (prev.X + prev.Width + tok.X) / 2
		}
		endX := math.Inf(1)
		if i < len(headerRow)-1 {
			next := headerRow[i+1]
			endX = (tok.X + tok.Width + next.X) / 2
		}

		defs = append(defs, ColumnDef{
			OriginalLabel: tok.Text,
			Name:          name,
			StartX:        startX,
			EndX:          endX,
		})
	}
	return defs
}

// AssignCells maps every token of every row below the header into its column
// and coerces the resulting values. Assignment uses the token's horizontal
// center rather than its left edge: right-aligned numeric cells often start
// left of their nominal column boundary.
func AssignCells(rows [][]Token, headerRowIndex int, defs []ColumnDef) []StructuredRow {
	var out []StructuredRow
	for i := headerRowIndex + 1; i < len(rows); i++ {
		tokens := rows[i]
		if len(tokens) == 0 {
			continue
		}
		row := NewStructuredRow()
		for _, tok := range tokens {
			center := tok.X + tok.Width/2
			for _, def := range defs {
				if center >= def.StartX && center < def.EndX {
					row.AppendText(def.Name, tok.Text)
					break
				}
			}
		}
		if row.Len() == 0 {
			continue
		}
		out = append(out, CoerceRow(row, defs))
	}
	return out
}
