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

type contextRepo struct {
	db *sqlx.DB
}

// NewContextRepo creates a new PostgreSQL-backed TaxContextRepository.
func NewContextRepo(db *sqlx.DB) port.TaxContextRepository {
	return &contextRepo{db: db}
}

func (r *contextRepo) Get(ctx context.Context, ownerID uuid.UUID, taxYear int) (*domain.TaxContextRecord, error) {
	var rec domain.TaxContextRecord
	err := r.db.GetContext(ctx, &rec,
		"SELECT * FROM tax_contexts WHERE owner_id = $1 AND tax_year = $2",
		ownerID, taxYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("contextRepo.Get: %w", err)
	}
	return &rec, nil
}

func (r *contextRepo) Upsert(ctx context.Context, rec *domain.TaxContextRecord) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	query := `INSERT INTO tax_contexts
		(id, owner_id, tax_year, version, context_json, token_estimate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner_id, tax_year) DO UPDATE SET
			version = EXCLUDED.version,
			context_json = EXCLUDED.context_json,
			token_estimate = EXCLUDED.token_estimate,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.OwnerID, rec.TaxYear, rec.Version, rec.ContextJSON,
		rec.TokenEstimate, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("contextRepo.Upsert: %w", err)
	}
	return nil
}
