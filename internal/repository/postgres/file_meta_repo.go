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

type fileMetaRepo struct {
	db *sqlx.DB
}

// NewFileMetaRepo creates a new PostgreSQL-backed FileMetaRepository.
func NewFileMetaRepo(db *sqlx.DB) port.FileMetaRepository {
	return &fileMetaRepo{db: db}
}

func (r *fileMetaRepo) Create(ctx context.Context, meta *domain.FileMeta) error {
	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	query := `INSERT INTO files
		(id, owner_id, batch_id, tax_year, original_name, content_type, file_size,
		 bank_name, s3_bucket, s3_key, status, parse_error, raw_text, parse_attempts,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.ExecContext(ctx, query,
		meta.ID, meta.OwnerID, meta.BatchID, meta.TaxYear, meta.OriginalName,
		meta.ContentType, meta.FileSize, meta.BankName, meta.S3Bucket, meta.S3Key,
		meta.Status, meta.ParseError, meta.RawText, meta.ParseAttempts,
		meta.CreatedAt, meta.UpdatedAt)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.Create: %w", err)
	}
	return nil
}

func (r *fileMetaRepo) GetByID(ctx context.Context, ownerID, fileID uuid.UUID) (*domain.FileMeta, error) {
	var meta domain.FileMeta
	err := r.db.GetContext(ctx, &meta,
		"SELECT * FROM files WHERE id = $1 AND owner_id = $2", fileID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fileMetaRepo.GetByID: %w", err)
	}
	return &meta, nil
}

func (r *fileMetaRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, taxYear int) ([]domain.FileMeta, error) {
	var metas []domain.FileMeta
	err := r.db.SelectContext(ctx, &metas,
		`SELECT * FROM files
		 WHERE owner_id = $1 AND tax_year = $2
		 ORDER BY created_at DESC`, ownerID, taxYear)
	if err != nil {
		return nil, fmt.Errorf("fileMetaRepo.ListByOwner: %w", err)
	}
	return metas, nil
}

// ClaimQueued atomically flips up to limit pending files to processing and
// returns them. SKIP LOCKED keeps concurrent workers from claiming the same
// file, and the attempt counter is bumped in the same statement.
func (r *fileMetaRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.FileMeta, error) {
	var metas []domain.FileMeta
	query := `UPDATE files SET
			status = $1,
			parse_attempts = parse_attempts + 1,
			updated_at = $2
		WHERE id IN (
			SELECT id FROM files
			WHERE status = $3
			ORDER BY created_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`

	err := r.db.SelectContext(ctx, &metas, query,
		domain.FileStatusProcessing, time.Now().UTC(), domain.FileStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("fileMetaRepo.ClaimQueued: %w", err)
	}
	return metas, nil
}

func (r *fileMetaRepo) MarkCompleted(ctx context.Context, fileID uuid.UUID, rawText string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE files SET status = $1, raw_text = $2, parse_error = '', updated_at = $3
		 WHERE id = $4`,
		domain.FileStatusCompleted, rawText, time.Now().UTC(), fileID)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.MarkCompleted: %w", err)
	}
	return nil
}

func (r *fileMetaRepo) Requeue(ctx context.Context, fileID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE files SET status = $1, updated_at = $2 WHERE id = $3`,
		domain.FileStatusPending, time.Now().UTC(), fileID)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.Requeue: %w", err)
	}
	return nil
}

func (r *fileMetaRepo) MarkFailed(ctx context.Context, fileID uuid.UUID, parseError string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE files SET status = $1, parse_error = $2, updated_at = $3
		 WHERE id = $4`,
		domain.FileStatusFailed, parseError, time.Now().UTC(), fileID)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.MarkFailed: %w", err)
	}
	return nil
}
