package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdesk/internal/csvexport"
	"taxdesk/internal/domain"
	"taxdesk/internal/service"
)

func TestExportCSV(t *testing.T) {
	txRepo := &fakeTxRepo{inserted: []domain.Transaction{
		{
			ID:          uuid.New(),
			Date:        time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
			Description: "SALARY PAYMENT",
			Amount:      decimal.NewFromInt(250_000),
			Direction:   domain.DirectionCredit,
			Currency:    "NGN",
			TaxYear:     2025,
		},
	}}
	svc := service.NewTransactionService(txRepo)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf, uuid.New(), 2025))

	// Body starts with a UTF-8 BOM for spreadsheet tooling.
	assert.True(t, bytes.HasPrefix(buf.Bytes(), csvexport.BOM))

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), csvexport.BOM)))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "SALARY PAYMENT", rows[1][1])
	assert.Equal(t, "250000.00", rows[1][2])
}

func TestExportCSV_NoTransactions(t *testing.T) {
	svc := service.NewTransactionService(&fakeTxRepo{})

	var buf bytes.Buffer
	err := svc.ExportCSV(context.Background(), &buf, uuid.New(), 2025)

	assert.ErrorIs(t, err, domain.ErrNoTransactions)
	assert.Zero(t, buf.Len())
}
