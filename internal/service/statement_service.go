package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"taxdesk/internal/aggregate"
	"taxdesk/internal/dedupe"
	"taxdesk/internal/domain"
	"taxdesk/internal/extract"
	"taxdesk/internal/normalize"
	"taxdesk/internal/port"
)

// StatementService runs the parse pipeline for one uploaded statement:
// download, extract, normalize, deduplicate, persist, recompute aggregates.
type StatementService interface {
	ProcessFile(ctx context.Context, meta *domain.FileMeta, maxRetries int)
}

type statementService struct {
	storage    port.ObjectStorage
	extractor  *extract.Extractor
	fileRepo   port.FileMetaRepository
	txRepo     port.TransactionRepository
	batches    BatchService
	computer   *aggregate.Computer
	ctxBuilder *aggregate.ContextBuilder
}

// NewStatementService creates a new StatementService implementation.
func NewStatementService(
	storage port.ObjectStorage,
	extractor *extract.Extractor,
	fileRepo port.FileMetaRepository,
	txRepo port.TransactionRepository,
	batches BatchService,
	computer *aggregate.Computer,
	ctxBuilder *aggregate.ContextBuilder,
) StatementService {
	return &statementService{
		storage:    storage,
		extractor:  extractor,
		fileRepo:   fileRepo,
		txRepo:     txRepo,
		batches:    batches,
		computer:   computer,
		ctxBuilder: ctxBuilder,
	}
}

// ProcessFile runs the pipeline end to end. Failures before exhausting
// maxRetries requeue the file; the final failure is recorded on it. A
// statement that parses but yields no transactions still completes.
func (s *statementService) ProcessFile(ctx context.Context, meta *domain.FileMeta, maxRetries int) {
	if err := s.process(ctx, meta); err != nil {
		log.Printf("statementService: processing file %s failed (attempt %d): %v",
			meta.ID, meta.ParseAttempts, err)
		if meta.ParseAttempts < maxRetries {
			if reqErr := s.fileRepo.Requeue(ctx, meta.ID); reqErr != nil {
				log.Printf("statementService: requeue of %s failed: %v", meta.ID, reqErr)
			}
			return
		}
		if failErr := s.fileRepo.MarkFailed(ctx, meta.ID, err.Error()); failErr != nil {
			log.Printf("statementService: marking %s failed: %v", meta.ID, failErr)
		}
		s.refreshBatch(ctx, meta)
		return
	}
	s.refreshBatch(ctx, meta)
}

func (s *statementService) process(ctx context.Context, meta *domain.FileMeta) error {
	data, err := s.storage.Download(ctx, meta.S3Bucket, meta.S3Key)
	if err != nil {
		return fmt.Errorf("downloading statement: %w", err)
	}

	result, err := s.extractor.Extract(ctx, data, meta.ContentType)
	if err != nil {
		return fmt.Errorf("extracting statement: %w", err)
	}

	normalized := normalize.NormalizeRows(result.Rows, result.Headers, meta.BankName)
	if normalized.Skipped > 0 {
		log.Printf("statementService: file %s skipped %d unparseable rows", meta.ID, normalized.Skipped)
	}

	inBatch := dedupe.DeduplicateBatch(normalized.Transactions)

	existing, err := s.txRepo.ExistingHashes(ctx, meta.OwnerID, meta.TaxYear)
	if err != nil {
		return fmt.Errorf("loading existing hashes: %w", err)
	}
	final := dedupe.DeduplicateAgainstExisting(inBatch.Unique, existing)
	if dupes := inBatch.DuplicateCount + final.DuplicateCount; dupes > 0 {
		log.Printf("statementService: file %s dropped %d duplicate transactions", meta.ID, dupes)
	}

	txs := make([]domain.Transaction, 0, len(final.Unique))
	for _, n := range final.Unique {
		txs = append(txs, domain.Transaction{
			ID:                uuid.New(),
			OwnerID:           meta.OwnerID,
			SourceFileID:      meta.ID,
			BatchID:           meta.BatchID,
			TaxYear:           meta.TaxYear,
			Date:              n.Date,
			Description:       n.Description,
			RawDescription:    n.RawDescription,
			Amount:            n.Amount,
			Direction:         n.Direction,
			Category:          n.Category,
			SubCategory:       n.SubCategory,
			Currency:          n.Currency,
			BankName:          n.BankName,
			DeduplicationHash: dedupe.Hash(n),
		})
	}
	if err := s.txRepo.InsertBatch(ctx, txs); err != nil {
		return fmt.Errorf("persisting transactions: %w", err)
	}

	if err := s.fileRepo.MarkCompleted(ctx, meta.ID, result.RawText); err != nil {
		return fmt.Errorf("marking file completed: %w", err)
	}

	log.Printf("statementService: file %s processed, %d transactions persisted", meta.ID, len(txs))

	if len(txs) > 0 {
		if err := s.computer.Compute(ctx, meta.OwnerID, meta.TaxYear); err != nil {
			log.Printf("statementService: aggregate recompute failed for owner %s: %v", meta.OwnerID, err)
		} else if _, err := s.ctxBuilder.Build(ctx, meta.OwnerID, meta.TaxYear); err != nil {
			log.Printf("statementService: context rebuild failed for owner %s: %v", meta.OwnerID, err)
		}
	}
	return nil
}

func (s *statementService) refreshBatch(ctx context.Context, meta *domain.FileMeta) {
	if meta.BatchID == nil {
		return
	}
	if err := s.batches.RefreshStatus(ctx, meta.OwnerID, *meta.BatchID); err != nil {
		log.Printf("statementService: refreshing batch %s: %v", *meta.BatchID, err)
	}
}
