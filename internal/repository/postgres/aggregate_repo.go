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

type aggregateRepo struct {
	db *sqlx.DB
}

// NewAggregateRepo creates a new PostgreSQL-backed AggregateRepository.
func NewAggregateRepo(db *sqlx.DB) port.AggregateRepository {
	return &aggregateRepo{db: db}
}

func (r *aggregateRepo) GetLatestValid(ctx context.Context, ownerID uuid.UUID, taxYear int) (*domain.TaxAggregate, error) {
	var agg domain.TaxAggregate
	err := r.db.GetContext(ctx, &agg,
		`SELECT * FROM tax_aggregates
		 WHERE owner_id = $1 AND tax_year = $2 AND invalidated_at IS NULL
		 ORDER BY version DESC
		 LIMIT 1`, ownerID, taxYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoValidAggregate
		}
		return nil, fmt.Errorf("aggregateRepo.GetLatestValid: %w", err)
	}
	return &agg, nil
}

func (r *aggregateRepo) MaxVersion(ctx context.Context, ownerID uuid.UUID, taxYear int) (int, error) {
	var version int
	err := r.db.GetContext(ctx, &version,
		`SELECT COALESCE(MAX(version), 0) FROM tax_aggregates
		 WHERE owner_id = $1 AND tax_year = $2`, ownerID, taxYear)
	if err != nil {
		return 0, fmt.Errorf("aggregateRepo.MaxVersion: %w", err)
	}
	return version, nil
}

// InsertNewVersion invalidates prior versions and inserts the new one in a
// single transaction, so readers always see exactly one valid aggregate.
func (r *aggregateRepo) InsertNewVersion(ctx context.Context, agg *domain.TaxAggregate) error {
	agg.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("aggregateRepo.InsertNewVersion: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`UPDATE tax_aggregates SET invalidated_at = $1
		 WHERE owner_id = $2 AND tax_year = $3 AND invalidated_at IS NULL`,
		agg.CreatedAt, agg.OwnerID, agg.TaxYear)
	if err != nil {
		return fmt.Errorf("aggregateRepo.InsertNewVersion: invalidating: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tax_aggregates
			(id, owner_id, tax_year, version, total_income, total_expenses,
			 total_bank_charges, taxable_income, income_categories,
			 monthly_breakdown, deductions, tax_liability,
			 employment_classification, flags, transaction_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		agg.ID, agg.OwnerID, agg.TaxYear, agg.Version, agg.TotalIncome,
		agg.TotalExpenses, agg.TotalBankCharges, agg.TaxableIncome,
		agg.IncomeCategories, agg.MonthlyBreakdown, agg.Deductions,
		agg.TaxLiability, agg.EmploymentClassification, agg.Flags,
		agg.TransactionCount, agg.CreatedAt)
	if err != nil {
		return fmt.Errorf("aggregateRepo.InsertNewVersion: inserting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("aggregateRepo.InsertNewVersion: commit: %w", err)
	}
	return nil
}
