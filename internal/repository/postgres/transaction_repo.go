package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taxdesk/internal/domain"
	"taxdesk/internal/port"
)

type transactionRepo struct {
	db *sqlx.DB
}

// NewTransactionRepo creates a new PostgreSQL-backed TransactionRepository.
func NewTransactionRepo(db *sqlx.DB) port.TransactionRepository {
	return &transactionRepo{db: db}
}

// InsertBatch writes all rows in one multi-row statement. Conflicts on the
// (owner_id, deduplication_hash) unique index are ignored: the deduplicator
// filters beforehand, but two files processed concurrently can still race.
func (r *transactionRepo) InsertBatch(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	var sb strings.Builder
	sb.WriteString(`INSERT INTO transactions
		(id, owner_id, source_file_id, batch_id, tax_year, date, description,
		 raw_description, amount, direction, category, sub_category, currency,
		 bank_name, deduplication_hash, created_at) VALUES `)

	args := make([]interface{}, 0, len(txs)*16)
	for i, tx := range txs {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 16
		sb.WriteString("(")
		for j := 1; j <= 16; j++ {
			if j > 1 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(base + j))
		}
		sb.WriteString(")")
		args = append(args,
			tx.ID, tx.OwnerID, tx.SourceFileID, tx.BatchID, tx.TaxYear,
			tx.Date, tx.Description, tx.RawDescription, tx.Amount, tx.Direction,
			tx.Category, tx.SubCategory, tx.Currency, tx.BankName,
			tx.DeduplicationHash, now)
	}
	sb.WriteString(" ON CONFLICT (owner_id, deduplication_hash) DO NOTHING")

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("transactionRepo.InsertBatch: %w", err)
	}
	return nil
}

func (r *transactionRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter port.TransactionFilter) ([]domain.Transaction, int, error) {
	conds := []string{"owner_id = $1"}
	args := []interface{}{ownerID}

	if filter.TaxYear != 0 {
		args = append(args, filter.TaxYear)
		conds = append(conds, fmt.Sprintf("tax_year = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Direction != "" {
		args = append(args, filter.Direction)
		conds = append(conds, fmt.Sprintf("direction = $%d", len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM transactions WHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("transactionRepo.ListByOwner: count: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	limitIdx := len(args)
	args = append(args, filter.Offset)
	offsetIdx := len(args)

	query := fmt.Sprintf(
		`SELECT * FROM transactions WHERE %s
		 ORDER BY date DESC, created_at DESC
		 LIMIT $%d OFFSET $%d`, where, limitIdx, offsetIdx)

	var txs []domain.Transaction
	if err := r.db.SelectContext(ctx, &txs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("transactionRepo.ListByOwner: %w", err)
	}
	return txs, total, nil
}

func (r *transactionRepo) ListByOwnerYear(ctx context.Context, ownerID uuid.UUID, taxYear int) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := r.db.SelectContext(ctx, &txs,
		`SELECT * FROM transactions
		 WHERE owner_id = $1 AND tax_year = $2
		 ORDER BY date`, ownerID, taxYear)
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.ListByOwnerYear: %w", err)
	}
	return txs, nil
}

func (r *transactionRepo) ExistingHashes(ctx context.Context, ownerID uuid.UUID, taxYear int) (map[string]struct{}, error) {
	var hashes []string
	err := r.db.SelectContext(ctx, &hashes,
		"SELECT deduplication_hash FROM transactions WHERE owner_id = $1 AND tax_year = $2",
		ownerID, taxYear)
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.ExistingHashes: %w", err)
	}
	set := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		set[h] = struct{}{}
	}
	return set, nil
}

func (r *transactionRepo) Summary(ctx context.Context, ownerID uuid.UUID, taxYear int) (*port.TransactionSummary, error) {
	var summary port.TransactionSummary
	err := r.db.GetContext(ctx, &summary,
		`SELECT
			COUNT(*) AS total_transactions,
			COALESCE(SUM(amount) FILTER (WHERE direction = 'credit'), 0) AS total_income,
			COALESCE(SUM(amount) FILTER (WHERE direction = 'debit'), 0) AS total_expenses
		 FROM transactions
		 WHERE owner_id = $1 AND tax_year = $2`, ownerID, taxYear)
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.Summary: %w", err)
	}
	return &summary, nil
}
