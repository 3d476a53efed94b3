package extract

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"

	"taxdesk/internal/domain"
)

// extractXLSX reads the first sheet of a workbook. The first populated
// row is the header; cells are coerced the same way CSV values are.
func (e *Extractor) extractXLSX(_ context.Context, data []byte) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %v", domain.ErrDocumentParse, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("extract: closing workbook: %v", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrDocumentParse)
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", domain.ErrDocumentParse, sheets[0], err)
	}

	// Skip leading blank rows before the header.
	start := 0
	for start < len(records) && rowBlank(records[start]) {
		start++
	}
	if start >= len(records) {
		return &Result{RawText: sheetText(records), Format: domain.FormatXLSX}, nil
	}

	headers := normalizeHeaders(records[start])
	rows := recordsToRows(headers, records[start+1:])

	return &Result{
		RawText: sheetText(records),
		Rows:    rows,
		Headers: headers,
		Format:  domain.FormatXLSX,
	}, nil
}

func rowBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func sheetText(records [][]string) string {
	var lines []string
	for _, record := range records {
		if rowBlank(record) {
			continue
		}
		lines = append(lines, strings.Join(record, " "))
	}
	return strings.Join(lines, "\n")
}
