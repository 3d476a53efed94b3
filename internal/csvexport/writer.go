// Package csvexport renders the transaction ledger as CSV for download.
package csvexport

import (
	"encoding/csv"
	"io"
	"strconv"

	"taxdesk/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Date",
	"Description",
	"Amount",
	"Currency",
	"Direction",
	"Category",
	"Sub Category",
	"Bank",
	"Tax Year",
	"Created At",
}

// Writer wraps csv.Writer for exporting transactions as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteTransactions converts a batch of transactions to CSV rows and writes them.
func (w *Writer) WriteTransactions(txs []domain.Transaction) error {
	for i := range txs {
		if err := w.csv.Write(transactionToRow(&txs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func transactionToRow(tx *domain.Transaction) []string {
	row := make([]string, len(columns))
	row[0] = tx.Date.Format("2006-01-02")
	row[1] = tx.Description
	row[2] = tx.Amount.StringFixed(2)
	row[3] = tx.Currency
	row[4] = string(tx.Direction)
	row[5] = tx.Category
	row[6] = tx.SubCategory
	row[7] = tx.BankName
	row[8] = intToString(tx.TaxYear)
	row[9] = tx.CreatedAt.Format("2006-01-02 15:04:05")
	return row
}

func intToString(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
