package service

import (
	"context"

	"github.com/google/uuid"

	"taxdesk/internal/domain"
	"taxdesk/internal/port"
)

// BatchDetail is a batch with its member files.
type BatchDetail struct {
	Batch domain.UploadBatch `json:"batch"`
	Files []domain.FileMeta  `json:"files"`
}

// BatchService defines the upload batch contract.
type BatchService interface {
	Create(ctx context.Context, ownerID uuid.UUID, taxYear int, label string) (*domain.UploadBatch, error)
	Get(ctx context.Context, ownerID, batchID uuid.UUID) (*BatchDetail, error)
	List(ctx context.Context, ownerID uuid.UUID, taxYear int) ([]domain.UploadBatch, error)
	// RefreshStatus recomputes a batch's status from its files' states.
	RefreshStatus(ctx context.Context, ownerID, batchID uuid.UUID) error
}

type batchService struct {
	batchRepo port.BatchRepository
	fileRepo  port.FileMetaRepository
}

// NewBatchService creates a new BatchService implementation.
func NewBatchService(batchRepo port.BatchRepository, fileRepo port.FileMetaRepository) BatchService {
	return &batchService{batchRepo: batchRepo, fileRepo: fileRepo}
}

func (s *batchService) Create(ctx context.Context, ownerID uuid.UUID, taxYear int, label string) (*domain.UploadBatch, error) {
	batch := &domain.UploadBatch{
		ID:      uuid.New(),
		OwnerID: ownerID,
		TaxYear: taxYear,
		Label:   label,
		Status:  domain.BatchStatusPending,
	}
	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *batchService) Get(ctx context.Context, ownerID, batchID uuid.UUID) (*BatchDetail, error) {
	batch, err := s.batchRepo.GetByID(ctx, ownerID, batchID)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListByOwner(ctx, ownerID, batch.TaxYear)
	if err != nil {
		return nil, err
	}
	detail := &BatchDetail{Batch: *batch}
	for _, f := range files {
		if f.BatchID != nil && *f.BatchID == batchID {
			detail.Files = append(detail.Files, f)
		}
	}
	return detail, nil
}

func (s *batchService) List(ctx context.Context, ownerID uuid.UUID, taxYear int) ([]domain.UploadBatch, error) {
	return s.batchRepo.ListByOwner(ctx, ownerID, taxYear)
}

func (s *batchService) RefreshStatus(ctx context.Context, ownerID, batchID uuid.UUID) error {
	detail, err := s.Get(ctx, ownerID, batchID)
	if err != nil {
		return err
	}

	status := domain.BatchStatusCompleted
	for _, f := range detail.Files {
		switch f.Status {
		case domain.FileStatusPending, domain.FileStatusProcessing:
			status = domain.BatchStatusProcessing
		}
	}
	if len(detail.Files) == 0 {
		status = domain.BatchStatusPending
	}
	if status == detail.Batch.Status {
		return nil
	}
	return s.batchRepo.UpdateStatus(ctx, batchID, status)
}
