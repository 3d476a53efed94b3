package extract_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"taxdesk/internal/config"
	"taxdesk/internal/domain"
	"taxdesk/internal/extract"
	"taxdesk/internal/port"
	"taxdesk/internal/tabular"
)

type stubClassifier struct {
	result *port.HeaderClassification
	err    error
}

func (s *stubClassifier) ClassifyHeaders(context.Context, string) (*port.HeaderClassification, error) {
	return s.result, s.err
}

func newTestExtractor() *extract.Extractor {
	return extract.NewExtractor(&stubClassifier{}, config.OCRConfig{})
}

func TestExtract_CSV(t *testing.T) {
	data := []byte("Date,Narration,Credit,Debit\n05/01/2025,SALARY PAYMENT,\"250,000.00\",\n06/01/2025,POS PURCHASE,,\"4,500.00\"\n")

	res, err := newTestExtractor().Extract(context.Background(), data, "text/csv")

	require.NoError(t, err)
	assert.Equal(t, domain.FormatCSV, res.Format)
	assert.Equal(t, []string{"date", "narration", "credit", "debit"}, res.Headers)
	require.Len(t, res.Rows, 2)

	date, ok := res.Rows[0].Get(tabular.RoleDate)
	require.True(t, ok)
	assert.Equal(t, tabular.CellDate, date.Kind)
	assert.Equal(t, "2025-01-05", date.Text)

	credit, ok := res.Rows[0].Get(tabular.RoleCredit)
	require.True(t, ok)
	assert.Equal(t, tabular.CellNumber, credit.Kind)
	assert.InDelta(t, 250_000, credit.Number, 0.001)

	assert.Equal(t, string(data), res.RawText)
}

func TestExtract_CSV_ContentTypeParameters(t *testing.T) {
	data := []byte("date,narration,amount\n2025-01-05,TEST,100\n")

	res, err := newTestExtractor().Extract(context.Background(), data, "text/csv; charset=utf-8")

	require.NoError(t, err)
	assert.Equal(t, domain.FormatCSV, res.Format)
	assert.Len(t, res.Rows, 1)
}

func TestExtract_CSV_BlankHeaderGetsPositionalName(t *testing.T) {
	data := []byte("date,,amount\n2025-01-05,something,100\n")

	res, err := newTestExtractor().Extract(context.Background(), data, "text/csv")

	require.NoError(t, err)
	assert.Equal(t, []string{"date", "column_1", "amount"}, res.Headers)
}

func TestExtract_CSV_Empty(t *testing.T) {
	res, err := newTestExtractor().Extract(context.Background(), nil, "text/csv")

	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Empty(t, res.Headers)
}

func TestExtract_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Date", "Narration", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"05/01/2025", "SALARY PAYMENT", "250000"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	res, err := newTestExtractor().Extract(context.Background(), buf.Bytes(),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	require.NoError(t, err)
	assert.Equal(t, domain.FormatXLSX, res.Format)
	assert.Equal(t, []string{"date", "narration", "amount"}, res.Headers)
	require.Len(t, res.Rows, 1)

	amount, ok := res.Rows[0].Lookup("amount")
	require.True(t, ok)
	assert.Equal(t, tabular.CellNumber, amount.Kind)
	assert.InDelta(t, 250_000, amount.Number, 0.001)
	assert.Contains(t, res.RawText, "SALARY PAYMENT")
}

func TestExtract_XLSX_Corrupt(t *testing.T) {
	_, err := newTestExtractor().Extract(context.Background(), []byte("not a spreadsheet"),
		"application/vnd.ms-excel")

	assert.ErrorIs(t, err, domain.ErrDocumentParse)
}

func TestExtract_PlainTextPassthrough(t *testing.T) {
	data := []byte("first line\nsecond line\n")

	res, err := newTestExtractor().Extract(context.Background(), data, "text/plain")

	require.NoError(t, err)
	assert.Equal(t, domain.FormatText, res.Format)
	assert.Equal(t, string(data), res.RawText)
	assert.Empty(t, res.Rows)
}

func TestExtract_UnsupportedType(t *testing.T) {
	_, err := newTestExtractor().Extract(context.Background(), []byte("x"), "image/png")

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	assert.Contains(t, err.Error(), "image/png")
}

func TestExtract_UnopenablePDF(t *testing.T) {
	_, err := newTestExtractor().Extract(context.Background(), []byte("not a pdf"), "application/pdf")

	assert.ErrorIs(t, err, domain.ErrDocumentParse)
}
