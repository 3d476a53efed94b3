package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"taxdesk/internal/csvexport"
	"taxdesk/internal/domain"
	"taxdesk/internal/port"
)

// TransactionService exposes the persisted ledger to the API surface.
type TransactionService interface {
	List(ctx context.Context, ownerID uuid.UUID, filter port.TransactionFilter) ([]domain.Transaction, int, error)
	Summary(ctx context.Context, ownerID uuid.UUID, taxYear int) (*port.TransactionSummary, error)
	// ExportCSV streams the year's full ledger as CSV, BOM first.
	ExportCSV(ctx context.Context, w io.Writer, ownerID uuid.UUID, taxYear int) error
}

type transactionService struct {
	txRepo port.TransactionRepository
}

// NewTransactionService creates a new TransactionService implementation.
func NewTransactionService(txRepo port.TransactionRepository) TransactionService {
	return &transactionService{txRepo: txRepo}
}

func (s *transactionService) List(ctx context.Context, ownerID uuid.UUID, filter port.TransactionFilter) ([]domain.Transaction, int, error) {
	return s.txRepo.ListByOwner(ctx, ownerID, filter)
}

func (s *transactionService) Summary(ctx context.Context, ownerID uuid.UUID, taxYear int) (*port.TransactionSummary, error) {
	return s.txRepo.Summary(ctx, ownerID, taxYear)
}

func (s *transactionService) ExportCSV(ctx context.Context, w io.Writer, ownerID uuid.UUID, taxYear int) error {
	txs, err := s.txRepo.ListByOwnerYear(ctx, ownerID, taxYear)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		return domain.ErrNoTransactions
	}

	if _, err := w.Write(csvexport.BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}
	writer := csvexport.NewWriter(w)
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := writer.WriteTransactions(txs); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	writer.Flush()
	return writer.Error()
}
