package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taxdesk/internal/domain"
	"taxdesk/internal/port"
)

type batchRepo struct {
	db *sqlx.DB
}

// NewBatchRepo creates a new PostgreSQL-backed BatchRepository.
func NewBatchRepo(db *sqlx.DB) port.BatchRepository {
	return &batchRepo{db: db}
}

func (r *batchRepo) Create(ctx context.Context, batch *domain.UploadBatch) error {
	now := time.Now().UTC()
	batch.CreatedAt = now
	batch.UpdatedAt = now

	query := `INSERT INTO upload_batches
		(id, owner_id, tax_year, label, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		batch.ID, batch.OwnerID, batch.TaxYear, batch.Label, batch.Status,
		batch.CreatedAt, batch.UpdatedAt)
	if err != nil {
		return fmt.Errorf("batchRepo.Create: %w", err)
	}
	return nil
}

func (r *batchRepo) GetByID(ctx context.Context, ownerID, batchID uuid.UUID) (*domain.UploadBatch, error) {
	var batch domain.UploadBatch
	err := r.db.GetContext(ctx, &batch,
		"SELECT * FROM upload_batches WHERE id = $1 AND owner_id = $2", batchID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("batchRepo.GetByID: %w", err)
	}
	return &batch, nil
}

func (r *batchRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, taxYear int) ([]domain.UploadBatch, error) {
	var batches []domain.UploadBatch
	err := r.db.SelectContext(ctx, &batches,
		`SELECT * FROM upload_batches
		 WHERE owner_id = $1 AND tax_year = $2
		 ORDER BY created_at DESC`, ownerID, taxYear)
	if err != nil {
		return nil, fmt.Errorf("batchRepo.ListByOwner: %w", err)
	}
	return batches, nil
}

func (r *batchRepo) UpdateStatus(ctx context.Context, batchID uuid.UUID, status domain.BatchStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE upload_batches SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), batchID)
	if err != nil {
		return fmt.Errorf("batchRepo.UpdateStatus: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("batchRepo.UpdateStatus: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
