package port

import (
	"context"

	"github.com/google/uuid"

	"taxdesk/internal/domain"
)

// BatchRepository defines the contract for upload batch persistence.
type BatchRepository interface {
	Create(ctx context.Context, batch *domain.UploadBatch) error
	GetByID(ctx context.Context, ownerID, batchID uuid.UUID) (*domain.UploadBatch, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, taxYear int) ([]domain.UploadBatch, error)
	UpdateStatus(ctx context.Context, batchID uuid.UUID, status domain.BatchStatus) error
}

// FileMetaRepository defines the contract for statement file persistence.
// All query methods include ownerID to keep one user's data isolated.
type FileMetaRepository interface {
	Create(ctx context.Context, meta *domain.FileMeta) error
	GetByID(ctx context.Context, ownerID, fileID uuid.UUID) (*domain.FileMeta, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, taxYear int) ([]domain.FileMeta, error)
	// ClaimQueued atomically moves up to limit pending files to processing
	// and returns them. Used by the parse queue worker.
	ClaimQueued(ctx context.Context, limit int) ([]domain.FileMeta, error)
	MarkCompleted(ctx context.Context, fileID uuid.UUID, rawText string) error
	MarkFailed(ctx context.Context, fileID uuid.UUID, parseError string) error
	// Requeue puts a failed attempt back to pending so the worker retries it.
	Requeue(ctx context.Context, fileID uuid.UUID) error
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	TaxYear   int
	Category  string
	Direction domain.Direction
	Offset    int
	Limit     int
}

// TransactionSummary holds quick per-year rollups for a listing response.
type TransactionSummary struct {
	TotalTransactions int     `db:"total_transactions" json:"total_transactions"`
	TotalIncome       float64 `db:"total_income" json:"total_income"`
	TotalExpenses     float64 `db:"total_expenses" json:"total_expenses"`
}

// TransactionRepository defines the contract for the append-only transaction
// ledger. Rows are created once by the pipeline and never mutated.
type TransactionRepository interface {
	InsertBatch(ctx context.Context, txs []domain.Transaction) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter TransactionFilter) ([]domain.Transaction, int, error)
	ListByOwnerYear(ctx context.Context, ownerID uuid.UUID, taxYear int) ([]domain.Transaction, error)
	// ExistingHashes returns the deduplication hashes already persisted for
	// (owner, year); the deduplicator filters new batches against this set.
	ExistingHashes(ctx context.Context, ownerID uuid.UUID, taxYear int) (map[string]struct{}, error)
	Summary(ctx context.Context, ownerID uuid.UUID, taxYear int) (*TransactionSummary, error)
}

// AggregateRepository defines the contract for versioned tax aggregates.
type AggregateRepository interface {
	// GetLatestValid returns the single non-invalidated aggregate for
	// (owner, year), or domain.ErrNoValidAggregate.
	GetLatestValid(ctx context.Context, ownerID uuid.UUID, taxYear int) (*domain.TaxAggregate, error)
	MaxVersion(ctx context.Context, ownerID uuid.UUID, taxYear int) (int, error)
	// InsertNewVersion invalidates any prior versions and inserts agg inside
	// one database transaction, so there is never a window with zero valid
	// aggregates for the period.
	InsertNewVersion(ctx context.Context, agg *domain.TaxAggregate) error
}

// TaxContextRepository defines the contract for persisted compact contexts.
type TaxContextRepository interface {
	Get(ctx context.Context, ownerID uuid.UUID, taxYear int) (*domain.TaxContextRecord, error)
	Upsert(ctx context.Context, rec *domain.TaxContextRecord) error
}
