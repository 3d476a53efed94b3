package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdesk/internal/aggregate"
	"taxdesk/internal/config"
	"taxdesk/internal/domain"
	"taxdesk/internal/extract"
	"taxdesk/internal/port"
	"taxdesk/internal/service"
)

type fakeStorage struct {
	objects map[string][]byte
	err     error
}

func (f *fakeStorage) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &port.UploadOutput{Location: input.Key}, nil
}

func (f *fakeStorage) Download(_ context.Context, _, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (f *fakeStorage) Delete(context.Context, string, string) error { return nil }

func (f *fakeStorage) GetPresignedURL(_ context.Context, _, key string, _ int64) (string, error) {
	return "https://signed.example.com/" + key, nil
}

type fakeFileRepo struct {
	created         []*domain.FileMeta
	files           []domain.FileMeta
	completedID     uuid.UUID
	completedText   string
	failedID        uuid.UUID
	failedError     string
	requeuedID      uuid.UUID
	requeueCalls    int
	markFailedCalls int
}

func (f *fakeFileRepo) Create(_ context.Context, meta *domain.FileMeta) error {
	f.created = append(f.created, meta)
	return nil
}

func (f *fakeFileRepo) GetByID(_ context.Context, _, fileID uuid.UUID) (*domain.FileMeta, error) {
	for i := range f.files {
		if f.files[i].ID == fileID {
			return &f.files[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeFileRepo) ListByOwner(context.Context, uuid.UUID, int) ([]domain.FileMeta, error) {
	return f.files, nil
}

func (f *fakeFileRepo) ClaimQueued(context.Context, int) ([]domain.FileMeta, error) {
	return nil, nil
}

func (f *fakeFileRepo) MarkCompleted(_ context.Context, fileID uuid.UUID, rawText string) error {
	f.completedID = fileID
	f.completedText = rawText
	return nil
}

func (f *fakeFileRepo) MarkFailed(_ context.Context, fileID uuid.UUID, parseError string) error {
	f.failedID = fileID
	f.failedError = parseError
	f.markFailedCalls++
	return nil
}

func (f *fakeFileRepo) Requeue(_ context.Context, fileID uuid.UUID) error {
	f.requeuedID = fileID
	f.requeueCalls++
	return nil
}

type fakeTxRepo struct {
	inserted []domain.Transaction
	existing map[string]struct{}
}

func (f *fakeTxRepo) InsertBatch(_ context.Context, txs []domain.Transaction) error {
	f.inserted = append(f.inserted, txs...)
	return nil
}

func (f *fakeTxRepo) ListByOwner(context.Context, uuid.UUID, port.TransactionFilter) ([]domain.Transaction, int, error) {
	return f.inserted, len(f.inserted), nil
}

func (f *fakeTxRepo) ListByOwnerYear(context.Context, uuid.UUID, int) ([]domain.Transaction, error) {
	return f.inserted, nil
}

func (f *fakeTxRepo) ExistingHashes(context.Context, uuid.UUID, int) (map[string]struct{}, error) {
	if f.existing == nil {
		return map[string]struct{}{}, nil
	}
	return f.existing, nil
}

func (f *fakeTxRepo) Summary(context.Context, uuid.UUID, int) (*port.TransactionSummary, error) {
	return &port.TransactionSummary{TotalTransactions: len(f.inserted)}, nil
}

type fakeAggRepo struct {
	inserted []*domain.TaxAggregate
}

func (f *fakeAggRepo) GetLatestValid(context.Context, uuid.UUID, int) (*domain.TaxAggregate, error) {
	if len(f.inserted) == 0 {
		return nil, domain.ErrNoValidAggregate
	}
	return f.inserted[len(f.inserted)-1], nil
}

func (f *fakeAggRepo) MaxVersion(context.Context, uuid.UUID, int) (int, error) {
	return len(f.inserted), nil
}

func (f *fakeAggRepo) InsertNewVersion(_ context.Context, agg *domain.TaxAggregate) error {
	f.inserted = append(f.inserted, agg)
	return nil
}

type fakeCtxRepo struct {
	stored *domain.TaxContextRecord
}

func (f *fakeCtxRepo) Get(context.Context, uuid.UUID, int) (*domain.TaxContextRecord, error) {
	if f.stored == nil {
		return nil, domain.ErrNotFound
	}
	return f.stored, nil
}

func (f *fakeCtxRepo) Upsert(_ context.Context, rec *domain.TaxContextRecord) error {
	f.stored = rec
	return nil
}

type fakeBatchRepo struct {
	batches  map[uuid.UUID]*domain.UploadBatch
	statuses []domain.BatchStatus
}

func (f *fakeBatchRepo) Create(_ context.Context, batch *domain.UploadBatch) error {
	if f.batches == nil {
		f.batches = make(map[uuid.UUID]*domain.UploadBatch)
	}
	f.batches[batch.ID] = batch
	return nil
}

func (f *fakeBatchRepo) GetByID(_ context.Context, _, batchID uuid.UUID) (*domain.UploadBatch, error) {
	b, ok := f.batches[batchID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeBatchRepo) ListByOwner(context.Context, uuid.UUID, int) ([]domain.UploadBatch, error) {
	out := make([]domain.UploadBatch, 0, len(f.batches))
	for _, b := range f.batches {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBatchRepo) UpdateStatus(_ context.Context, batchID uuid.UUID, status domain.BatchStatus) error {
	f.statuses = append(f.statuses, status)
	if b, ok := f.batches[batchID]; ok {
		b.Status = status
	}
	return nil
}

type stubClassifier struct{}

func (stubClassifier) ClassifyHeaders(context.Context, string) (*port.HeaderClassification, error) {
	return &port.HeaderClassification{HeaderRowIndex: -1}, nil
}

func newPipeline(storage *fakeStorage, fileRepo *fakeFileRepo, txRepo *fakeTxRepo) (service.StatementService, *fakeAggRepo, *fakeCtxRepo) {
	aggRepo := &fakeAggRepo{}
	ctxRepo := &fakeCtxRepo{}
	extractor := extract.NewExtractor(stubClassifier{}, config.OCRConfig{})
	computer := aggregate.NewComputer(txRepo, aggRepo)
	builder := aggregate.NewContextBuilder(aggRepo, fileRepo, ctxRepo)
	batches := service.NewBatchService(&fakeBatchRepo{}, fileRepo)
	return service.NewStatementService(storage, extractor, fileRepo, txRepo, batches, computer, builder), aggRepo, ctxRepo
}

const statementCSV = "Date,Narration,Credit,Debit\n" +
	"05/01/2025,SALARY PAYMENT,\"250,000.00\",\n" +
	"06/01/2025,POS PURCHASE,,\"4,500.00\"\n" +
	"06/01/2025,POS PURCHASE,,\"4,500.00\"\n"

func pendingFile(key string) *domain.FileMeta {
	return &domain.FileMeta{
		ID:          uuid.New(),
		OwnerID:     uuid.New(),
		TaxYear:     2025,
		ContentType: "text/csv",
		S3Bucket:    "statements",
		S3Key:       key,
		BankName:    "GTBank",
		Status:      domain.FileStatusProcessing,
	}
}

func TestProcessFile_EndToEnd(t *testing.T) {
	storage := &fakeStorage{objects: map[string][]byte{"stmt.csv": []byte(statementCSV)}}
	fileRepo := &fakeFileRepo{}
	txRepo := &fakeTxRepo{}
	svc, aggRepo, ctxRepo := newPipeline(storage, fileRepo, txRepo)

	meta := pendingFile("stmt.csv")
	svc.ProcessFile(context.Background(), meta, 3)

	// Two of the three rows survive: the repeated POS purchase collapses.
	require.Len(t, txRepo.inserted, 2)
	salary := txRepo.inserted[0]
	assert.Equal(t, meta.OwnerID, salary.OwnerID)
	assert.Equal(t, meta.ID, salary.SourceFileID)
	assert.Equal(t, domain.DirectionCredit, salary.Direction)
	assert.Len(t, salary.DeduplicationHash, 64)

	assert.Equal(t, meta.ID, fileRepo.completedID)
	assert.Equal(t, statementCSV, fileRepo.completedText)

	// Persisted transactions trigger an aggregate version and a context.
	require.Len(t, aggRepo.inserted, 1)
	assert.Equal(t, 1, aggRepo.inserted[0].Version)
	assert.InDelta(t, 250_000, aggRepo.inserted[0].TotalIncome, 0.001)
	require.NotNil(t, ctxRepo.stored)
}

func TestProcessFile_AlreadyPersistedHashesDropped(t *testing.T) {
	storage := &fakeStorage{objects: map[string][]byte{"stmt.csv": []byte(statementCSV)}}
	fileRepo := &fakeFileRepo{}

	// Seed the existing-hash set with everything the statement contains.
	seedRepo := &fakeTxRepo{}
	seedSvc, _, _ := newPipeline(storage, &fakeFileRepo{}, seedRepo)
	seedSvc.ProcessFile(context.Background(), pendingFile("stmt.csv"), 3)

	existing := make(map[string]struct{})
	for _, tx := range seedRepo.inserted {
		existing[tx.DeduplicationHash] = struct{}{}
	}
	txRepo := &fakeTxRepo{existing: existing}
	svc, aggRepo, _ := newPipeline(storage, fileRepo, txRepo)

	svc.ProcessFile(context.Background(), pendingFile("stmt.csv"), 3)

	assert.Empty(t, txRepo.inserted)
	assert.Equal(t, fileRepo.completedText, statementCSV)
	// No new transactions, no recompute.
	assert.Empty(t, aggRepo.inserted)
}

func TestProcessFile_RequeuesBeforeExhaustingRetries(t *testing.T) {
	storage := &fakeStorage{err: errors.New("s3 unavailable")}
	fileRepo := &fakeFileRepo{}
	svc, _, _ := newPipeline(storage, fileRepo, &fakeTxRepo{})

	meta := pendingFile("stmt.csv")
	meta.ParseAttempts = 1
	svc.ProcessFile(context.Background(), meta, 3)

	assert.Equal(t, 1, fileRepo.requeueCalls)
	assert.Equal(t, meta.ID, fileRepo.requeuedID)
	assert.Zero(t, fileRepo.markFailedCalls)
}

func TestProcessFile_MarksFailedOnFinalAttempt(t *testing.T) {
	storage := &fakeStorage{err: errors.New("s3 unavailable")}
	fileRepo := &fakeFileRepo{}
	svc, _, _ := newPipeline(storage, fileRepo, &fakeTxRepo{})

	meta := pendingFile("stmt.csv")
	meta.ParseAttempts = 3
	svc.ProcessFile(context.Background(), meta, 3)

	assert.Zero(t, fileRepo.requeueCalls)
	assert.Equal(t, 1, fileRepo.markFailedCalls)
	assert.Equal(t, meta.ID, fileRepo.failedID)
	assert.Contains(t, fileRepo.failedError, "s3 unavailable")
}
