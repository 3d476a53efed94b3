package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"taxdesk/internal/domain"
	"taxdesk/internal/tabular"
)

// extractCSV parses delimited text. The first record is the header row;
// labels are lowercased and trimmed so downstream column detection is
// case-insensitive.
func (e *Extractor) extractCSV(_ context.Context, data []byte) (*Result, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading csv: %v", domain.ErrDocumentParse, err)
	}
	if len(records) == 0 {
		return &Result{RawText: string(data), Format: domain.FormatCSV}, nil
	}

	headers := normalizeHeaders(records[0])
	rows := recordsToRows(headers, records[1:])

	return &Result{
		RawText: string(data),
		Rows:    rows,
		Headers: headers,
		Format:  domain.FormatCSV,
	}, nil
}

// normalizeHeaders lowercases and trims header labels, substituting a
// positional name for blank ones.
func normalizeHeaders(record []string) []string {
	headers := make([]string, len(record))
	for i, h := range record {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			h = fmt.Sprintf("column_%d", i)
		}
		headers[i] = h
	}
	return headers
}

// recordsToRows converts header-aligned string records into structured
// rows, coercing each cell value. Records entirely blank are dropped.
func recordsToRows(headers []string, records [][]string) []tabular.StructuredRow {
	var rows []tabular.StructuredRow
	for _, record := range records {
		row := tabular.NewStructuredRow()
		for i, value := range record {
			if i >= len(headers) {
				break
			}
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			row.Set(headers[i], tabular.CoerceValue(value))
		}
		if row.Len() > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}
