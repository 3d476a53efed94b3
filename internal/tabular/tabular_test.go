package tabular_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdesk/internal/tabular"
)

func tok(text string, x, y, w, h float64) tabular.Token {
	return tabular.Token{Text: text, X: x, Y: y, Width: w, Height: h}
}

func rowTexts(row []tabular.Token) []string {
	out := make([]string, 0, len(row))
	for _, t := range row {
		out = append(out, t.Text)
	}
	return out
}

func TestBucketIntoRows_SeparatesLines(t *testing.T) {
	tokens := []tabular.Token{
		tok("Date", 10, 700, 30, 12),
		tok("Narration", 100, 700, 60, 12),
		tok("Amount", 300, 700, 50, 12),
		tok("01/02/2025", 10, 680, 60, 12),
		tok("POS PURCHASE", 100, 680, 90, 12),
		tok("1,500.00", 300, 680, 50, 12),
	}

	rows := tabular.BucketIntoRows(tokens)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Date", "Narration", "Amount"}, rowTexts(rows[0]))
	assert.Equal(t, []string{"01/02/2025", "POS PURCHASE", "1,500.00"}, rowTexts(rows[1]))
}

func TestBucketIntoRows_AbsorbsSkewDrift(t *testing.T) {
	// A tilted scan: each token on the line sits slightly lower than the
	// previous one. Cumulative drift across the line exceeds a fixed
	// epsilon from the first token, but stays within reach of the running
	// mean, so the line must remain one row.
	tokens := []tabular.Token{
		tok("a", 0, 700, 20, 12),
		tok("b", 50, 698, 20, 12),
		tok("c", 100, 696, 20, 12),
		tok("d", 150, 694, 20, 12),
		tok("e", 200, 692, 20, 12),
		tok("f", 250, 690, 20, 12),
	}

	rows := tabular.BucketIntoRows(tokens)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, rowTexts(rows[0]))
}

func TestBucketIntoRows_TopOfPageFirst(t *testing.T) {
	tokens := []tabular.Token{
		tok("lower", 10, 100, 30, 12),
		tok("upper", 10, 500, 30, 12),
	}

	rows := tabular.BucketIntoRows(tokens)

	require.Len(t, rows, 2)
	assert.Equal(t, "upper", rows[0][0].Text)
	assert.Equal(t, "lower", rows[1][0].Text)
}

func TestBucketIntoRows_SkipsBlankTokens(t *testing.T) {
	tokens := []tabular.Token{
		tok("  ", 10, 700, 5, 12),
		tok("kept", 20, 700, 30, 12),
	}

	rows := tabular.BucketIntoRows(tokens)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"kept"}, rowTexts(rows[0]))
}

func TestBucketIntoRows_Empty(t *testing.T) {
	assert.Nil(t, tabular.BucketIntoRows(nil))
}

func TestMergeAdjacentTokens_JoinsFragments(t *testing.T) {
	// "ACCT" and "MAINT" are 3 units apart, under the word gap; the amount
	// token sits far to the right.
	row := []tabular.Token{
		tok("ACCT", 100, 680, 30, 12),
		tok("MAINT", 133, 680, 40, 12),
		tok("500.00", 300, 680, 40, 12),
	}

	merged := tabular.MergeAdjacentTokens(row)

	require.Len(t, merged, 2)
	assert.Equal(t, "ACCT MAINT", merged[0].Text)
	assert.InDelta(t, 73, merged[0].Width, 0.001)
	assert.Equal(t, "500.00", merged[1].Text)
}

func TestMergeAdjacentTokens_GapAtThresholdStaysSplit(t *testing.T) {
	row := []tabular.Token{
		tok("a", 0, 0, 10, 12),
		tok("b", 18, 0, 10, 12), // gap exactly 8
	}

	merged := tabular.MergeAdjacentTokens(row)

	assert.Len(t, merged, 2)
}

func TestBuildColumnDefs_BandsAndNames(t *testing.T) {
	header := []tabular.Token{
		tok("Tran Date", 10, 700, 50, 12),
		tok("Particulars", 120, 700, 70, 12),
		tok("Debit", 300, 700, 40, 12),
	}

	defs := tabular.BuildColumnDefs(header, []string{"date", "narration", "debit"})

	require.Len(t, defs, 3)

	assert.Equal(t, "date", defs[0].Name)
	assert.Equal(t, "Tran Date", defs[0].OriginalLabel)
	assert.True(t, math.IsInf(defs[0].StartX, -1))
	assert.InDelta(t, 90, defs[0].EndX, 0.001) // (10+50+120)/2

	assert.InDelta(t, 90, defs[1].StartX, 0.001)
	assert.InDelta(t, 245, defs[1].EndX, 0.001) // (120+70+300)/2

	assert.InDelta(t, 245, defs[2].StartX, 0.001)
	assert.True(t, math.IsInf(defs[2].EndX, 1))
}

func TestBuildColumnDefs_FallsBackToHeaderLabel(t *testing.T) {
	header := []tabular.Token{
		tok("Cheque No", 10, 700, 50, 12),
	}

	defs := tabular.BuildColumnDefs(header, []string{""})

	require.Len(t, defs, 1)
	assert.Equal(t, "cheque no", defs[0].Name)
}

func TestAssignCells_CenterBasedAssignment(t *testing.T) {
	rows := [][]tabular.Token{
		{
			tok("Date", 10, 700, 40, 12),
			tok("Narration", 120, 700, 60, 12),
			tok("Debit", 300, 700, 40, 12),
		},
		{
			tok("05/01/2025", 10, 680, 55, 12),
			// Right-aligned amount: left edge sits before the debit
			// band start, but its center falls inside.
			tok("2,000.00", 230, 680, 55, 12),
		},
	}
	defs := tabular.BuildColumnDefs(rows[0], []string{"date", "narration", "debit"})

	structured := tabular.AssignCells(rows, 0, defs)

	require.Len(t, structured, 1)
	date, ok := structured[0].Get(tabular.RoleDate)
	require.True(t, ok)
	assert.Equal(t, tabular.CellDate, date.Kind)
	assert.Equal(t, "2025-01-05", date.Text)

	debit, ok := structured[0].Get(tabular.RoleDebit)
	require.True(t, ok)
	assert.Equal(t, tabular.CellNumber, debit.Kind)
	assert.InDelta(t, 2000, debit.Number, 0.001)
}

func TestAssignCells_MultiWordNarration(t *testing.T) {
	rows := [][]tabular.Token{
		{
			tok("Date", 10, 700, 40, 12),
			tok("Narration", 200, 700, 60, 12),
		},
		{
			tok("01/01/2025", 10, 680, 55, 12),
			tok("TRANSFER", 180, 680, 50, 12),
			tok("TO", 240, 680, 15, 12),
			tok("JOHN", 265, 680, 30, 12),
		},
	}
	defs := tabular.BuildColumnDefs(rows[0], []string{"date", "narration"})

	structured := tabular.AssignCells(rows, 0, defs)

	require.Len(t, structured, 1)
	narration, ok := structured[0].Get(tabular.RoleNarration)
	require.True(t, ok)
	assert.Equal(t, "TRANSFER TO JOHN", narration.Text)
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want tabular.Cell
	}{
		{"thousands separated number", "1,500.00", tabular.NumberCell(1500, "1,500.00")},
		{"negative number", "-42.5", tabular.NumberCell(-42.5, "-42.5")},
		{"day first date", "05/01/2025", tabular.DateCell(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))},
		{"dashed date", "05-01-2025", tabular.DateCell(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))},
		{"iso date", "2025-01-05", tabular.DateCell(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))},
		{"impossible date stays string", "31/02/2025", tabular.StringCell("31/02/2025")},
		{"plain text", "POS PURCHASE", tabular.StringCell("POS PURCHASE")},
		{"empty", "", tabular.StringCell("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tabular.CoerceValue(tt.raw))
		})
	}
}
