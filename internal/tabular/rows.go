package tabular

import (
	"math"
	"sort"
	"strings"
)

const (
	// Fallback glyph height when the extractor reports none.
	defaultTokenHeight = 12

	// Epsilon factor relative to the median token height. Skew-induced
	// jitter within a line is well under 0.3x the line height; adjacent
	// lines sit 1-2x apart, so 0.6x separates them reliably.
	epsilonFactor = 0.6

	// Horizontal gap under which two tokens in a row are fragments of the
	// same word (OCR splitting "1,500" into separate glyph tokens).
	wordGapThreshold = 8
)

// BucketIntoRows clusters tokens into physical table rows using 1D
// agglomerative clustering on vertical centers. A sequential bounding-box
// sweep breaks on any scan tilt; clustering against a running mean absorbs
// gradual skew drift across a wide line.
func BucketIntoRows(tokens []Token) [][]Token {
	type centered struct {
		tok     Token
		centerY float64
	}

	// Blank tokens contribute nothing but corrupt row boundaries.
	items := make([]centered, 0, len(tokens))
	heights := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		h := math.Abs(t.Height)
		if h == 0 {
			h = defaultTokenHeight
		}
		// Y is the top edge, axis increases upward: the vertical center
		// sits half a glyph below it.
		items = append(items, centered{tok: t, centerY: t.Y - h/2})
		heights = append(heights, h)
	}
	if len(items) == 0 {
		return nil
	}

	// Top of page first.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].centerY > items[j].centerY
	})

	// Median over all token heights so mixed font sizes (headers + body)
	// still produce a sensible epsilon.
	sort.Float64s(heights)
	median := heights[len(heights)/2]
	epsilon := median * epsilonFactor

	var rows [][]Token
	current := []Token{items[0].tok}
	rowSumY := items[0].centerY
	rowCount := 1.0

	for _, it := range items[1:] {
		mean := rowSumY / rowCount
		if math.Abs(mean-it.centerY) <= epsilon {
			// Same row; update the running mean so later tokens are
			// compared against the drifted line, not a fixed anchor.
			current = append(current, it.tok)
			rowSumY += it.centerY
			rowCount++
		} else {
			rows = append(rows, current)
			current = []Token{it.tok}
			rowSumY = it.centerY
			rowCount = 1
		}
	}
	rows = append(rows, current)

	// Restore left-to-right reading order within each row.
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

// MergeAdjacentTokens concatenates tokens in a row whose horizontal gap is
// under the word threshold, so "1" "," "5" "0" "0" becomes a single "1,500"
// token instead of five separate column values. The row must already be
// sorted left-to-right.
func MergeAdjacentTokens(row []Token) []Token {
	if len(row) == 0 {
		return nil
	}
	merged := make([]Token, 0, len(row))
	current := row[0]
	for _, next := range row[1:] {
		gap := next.X - (current.X + current.Width)
		if gap < wordGapThreshold {
			current.Text += " " + next.Text
			current.Width = (next.X - current.X) + next.Width
		} else {
			merged = append(merged, current)
			current = next
		}
	}
	merged = append(merged, current)

	out := merged[:0]
	for _, t := range merged {
		if strings.TrimSpace(t.Text) != "" {
			out = append(out, t)
		}
	}
	return out
}
