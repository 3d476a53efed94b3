package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdesk/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 10)
	assert.Equal(t, "Date", row[0])
	assert.Equal(t, "Amount", row[2])
	assert.Equal(t, "Created At", row[9])
}

func TestWriteTransactions(t *testing.T) {
	txs := []domain.Transaction{
		{
			Date:        time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
			Description: "SALARY PAYMENT",
			Amount:      decimal.NewFromInt(250_000),
			Currency:    "NGN",
			Direction:   domain.DirectionCredit,
			Category:    "income",
			SubCategory: "salary",
			BankName:    "GTBank",
			TaxYear:     2025,
			CreatedAt:   time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC),
		},
		{
			Date:        time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			Description: "POS PURCHASE, LAGOS",
			Amount:      decimal.NewFromFloat(4_500.5),
			Currency:    "NGN",
			Direction:   domain.DirectionDebit,
			Category:    "uncategorized",
		},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteTransactions(txs))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	salary := rows[1]
	assert.Equal(t, "2025-01-05", salary[0])
	assert.Equal(t, "SALARY PAYMENT", salary[1])
	assert.Equal(t, "250000.00", salary[2])
	assert.Equal(t, "credit", salary[4])
	assert.Equal(t, "salary", salary[6])
	assert.Equal(t, "2025", salary[8])
	assert.Equal(t, "2025-07-01 09:30:00", salary[9])

	pos := rows[2]
	// Embedded comma survives quoting.
	assert.Equal(t, "POS PURCHASE, LAGOS", pos[1])
	assert.Equal(t, "4500.50", pos[2])
	// Zero tax year renders blank.
	assert.Equal(t, "", pos[8])
}

func TestWriteTransactions_Empty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteTransactions(nil))
	w.Flush()
	require.NoError(t, w.Error())
	assert.Zero(t, buf.Len())
}
