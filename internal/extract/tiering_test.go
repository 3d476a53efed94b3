package extract

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdesk/internal/config"
	"taxdesk/internal/port"
	"taxdesk/internal/tabular"
)

type fixedClassifier struct {
	result *port.HeaderClassification
	err    error
}

func (f *fixedClassifier) ClassifyHeaders(context.Context, string) (*port.HeaderClassification, error) {
	return f.result, f.err
}

func lineTokens(y float64, words ...string) []tabular.Token {
	toks := make([]tabular.Token, len(words))
	x := 10.0
	for i, w := range words {
		toks[i] = tabular.Token{Text: w, X: x, Y: y, Width: 50, Height: 10, Page: 1}
		x += 100
	}
	return toks
}

func TestOCRTooSparse(t *testing.T) {
	toks := lineTokens(700, "HELLO")

	t.Run("below threshold", func(t *testing.T) {
		assert.True(t, ocrTooSparse(strings.Repeat("a", 49), toks))
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		assert.False(t, ocrTooSparse(strings.Repeat("a", 50), toks))
	})

	t.Run("surrounding whitespace does not count", func(t *testing.T) {
		assert.True(t, ocrTooSparse("  "+strings.Repeat("a", 49)+"\n\n", toks))
	})

	t.Run("no tokens", func(t *testing.T) {
		assert.True(t, ocrTooSparse(strings.Repeat("a", 200), nil))
	})
}

func TestTokenTextLen_CountsTrimmedRunes(t *testing.T) {
	toks := []tabular.Token{
		{Text: " OPENING "},
		{Text: "BALANCE"},
	}
	assert.Equal(t, 14, tokenTextLen(toks))
}

func TestBuildStructuredRows_ClassifierErrorDegradesAndLogs(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)

	e := NewExtractor(&fixedClassifier{err: errors.New("upstream timeout")}, config.OCRConfig{})
	tokens := append(lineTokens(700, "Date", "Narration", "Credit"),
		lineTokens(680, "05/01/2025", "SALARY", "250000")...)

	rows, headers := e.buildStructuredRows(context.Background(), tokens)

	assert.Nil(t, rows)
	assert.Nil(t, headers)
	assert.Contains(t, buf.String(), "header classification failed")
	assert.Contains(t, buf.String(), "upstream timeout")
}

func TestBuildStructuredRows_ExtraColumnsKeepFallbackLabels(t *testing.T) {
	// The classifier names three columns but the header row has four
	// tokens; the fourth column keeps its lowercased label.
	e := NewExtractor(&fixedClassifier{result: &port.HeaderClassification{
		HeaderRowIndex: 0,
		Columns: []port.HeaderColumn{
			{OriginalLabel: "Date", StandardizedName: "date"},
			{OriginalLabel: "Narration", StandardizedName: "narration"},
			{OriginalLabel: "Credit", StandardizedName: "credit"},
		},
	}}, config.OCRConfig{})
	tokens := append(lineTokens(700, "Date", "Narration", "Credit", "Channel"),
		lineTokens(680, "05/01/2025", "SALARY", "250000", "POS")...)

	rows, headers := e.buildStructuredRows(context.Background(), tokens)

	assert.Equal(t, []string{"date", "narration", "credit", "channel"}, headers)
	require.Len(t, rows, 1)
	cell, ok := rows[0].Lookup("channel")
	require.True(t, ok)
	assert.Equal(t, "POS", cell.Text)
}
