package extract

import (
	"context"
	"fmt"
	"log"
	"strings"

	"taxdesk/internal/config"
	"taxdesk/internal/domain"
	"taxdesk/internal/port"
	"taxdesk/internal/tabular"
)

const (
	// Rows shown to the header classifier. Statements front-load their
	// header and summary blocks, so the first rows are enough.
	previewRowLimit = 50
)

// Result is the outcome of extracting one uploaded statement.
// Rows and Headers are empty when structure could not be recovered;
// RawText is always populated when any text was readable.
type Result struct {
	RawText string
	Rows    []tabular.StructuredRow
	Headers []string
	Format  domain.FileFormat
}

// Extractor turns uploaded statement bytes into structured rows.
// PDF extraction is tiered: positioned text first, OCR for scanned
// documents, and a raw-text-only degraded result as the last resort.
type Extractor struct {
	classifier port.HeaderClassifier
	ocrCfg     config.OCRConfig
}

// NewExtractor creates an extractor backed by the given header classifier.
func NewExtractor(classifier port.HeaderClassifier, ocrCfg config.OCRConfig) *Extractor {
	return &Extractor{classifier: classifier, ocrCfg: ocrCfg}
}

// Extract dispatches on MIME type and returns structured rows plus raw text.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string) (*Result, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	switch {
	case mimeType == "application/pdf":
		return e.extractPDF(ctx, data)
	case mimeType == "text/csv" || mimeType == "application/csv":
		return e.extractCSV(ctx, data)
	case mimeType == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		mimeType == "application/vnd.ms-excel":
		return e.extractXLSX(ctx, data)
	case strings.HasPrefix(mimeType, "text/"):
		return &Result{RawText: string(data), Format: domain.FormatText}, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: pdf, csv, xlsx, text)", domain.ErrUnsupportedFileType, mimeType)
	}
}

// buildStructuredRows clusters positioned tokens into rows, asks the
// classifier to locate the header, and assigns cells to columns. A
// classifier failure or a no-header verdict degrades to raw text only.
func (e *Extractor) buildStructuredRows(ctx context.Context, tokens []tabular.Token) ([]tabular.StructuredRow, []string) {
	rows := tabular.BucketIntoRows(tokens)
	for i := range rows {
		rows[i] = tabular.MergeAdjacentTokens(rows[i])
	}
	if len(rows) == 0 {
		return nil, nil
	}

	classification, err := e.classifier.ClassifyHeaders(ctx, buildRowPreview(rows))
	if err != nil {
		log.Printf("extract: header classification failed: %v", err)
		return nil, nil
	}
	if classification == nil {
		return nil, nil
	}
	if classification.HeaderRowIndex < 0 || classification.HeaderRowIndex >= len(rows) {
		return nil, nil
	}
	if len(classification.Columns) == 0 {
		return nil, nil
	}

	standardized := make([]string, len(classification.Columns))
	for i, col := range classification.Columns {
		standardized[i] = col.StandardizedName
	}

	// Headers come from the column defs, not the classifier output: when
	// the classifier names fewer columns than the header row has tokens,
	// the extra columns keep their positional fallback labels.
	defs := tabular.BuildColumnDefs(rows[classification.HeaderRowIndex], standardized)
	headers := make([]string, len(defs))
	for i, def := range defs {
		headers[i] = def.Name
	}
	structured := tabular.AssignCells(rows, classification.HeaderRowIndex, defs)
	return structured, headers
}

// buildRowPreview renders the first rows as numbered pipe-joined lines
// for the classifier prompt.
func buildRowPreview(rows [][]tabular.Token) string {
	limit := len(rows)
	if limit > previewRowLimit {
		limit = previewRowLimit
	}
	var b strings.Builder
	for i := 0; i < limit; i++ {
		parts := make([]string, len(rows[i]))
		for j, tok := range rows[i] {
			parts[j] = tok.Text
		}
		fmt.Fprintf(&b, "[Row %d] %s\n", i, strings.Join(parts, " | "))
	}
	return b.String()
}

// rowsToText renders clustered rows as plain text, one line per row.
func rowsToText(tokens []tabular.Token) string {
	rows := tabular.BucketIntoRows(tokens)
	var lines []string
	for _, row := range rows {
		merged := tabular.MergeAdjacentTokens(row)
		parts := make([]string, len(merged))
		for i, tok := range merged {
			parts[i] = tok.Text
		}
		line := strings.TrimSpace(strings.Join(parts, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
