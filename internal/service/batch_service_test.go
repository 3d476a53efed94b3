package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdesk/internal/domain"
	"taxdesk/internal/service"
)

func TestBatchCreate(t *testing.T) {
	repo := &fakeBatchRepo{}
	svc := service.NewBatchService(repo, &fakeFileRepo{})
	ownerID := uuid.New()

	batch, err := svc.Create(context.Background(), ownerID, 2025, "January statements")

	require.NoError(t, err)
	assert.Equal(t, ownerID, batch.OwnerID)
	assert.Equal(t, 2025, batch.TaxYear)
	assert.Equal(t, "January statements", batch.Label)
	assert.Equal(t, domain.BatchStatusPending, batch.Status)
	assert.Contains(t, repo.batches, batch.ID)
}

func TestBatchGet_FiltersMemberFiles(t *testing.T) {
	repo := &fakeBatchRepo{}
	fileRepo := &fakeFileRepo{}
	svc := service.NewBatchService(repo, fileRepo)
	ownerID := uuid.New()

	batch, err := svc.Create(context.Background(), ownerID, 2025, "")
	require.NoError(t, err)

	other := uuid.New()
	fileRepo.files = []domain.FileMeta{
		{ID: uuid.New(), BatchID: &batch.ID, Status: domain.FileStatusCompleted},
		{ID: uuid.New(), BatchID: &other, Status: domain.FileStatusCompleted},
		{ID: uuid.New(), BatchID: nil, Status: domain.FileStatusPending},
	}

	detail, err := svc.Get(context.Background(), ownerID, batch.ID)

	require.NoError(t, err)
	require.Len(t, detail.Files, 1)
	assert.Equal(t, batch.ID, *detail.Files[0].BatchID)
}

func TestBatchRefreshStatus(t *testing.T) {
	tests := []struct {
		name   string
		files  []domain.FileStatus
		expect domain.BatchStatus
	}{
		{"all completed", []domain.FileStatus{domain.FileStatusCompleted, domain.FileStatusFailed}, domain.BatchStatusCompleted},
		{"one still processing", []domain.FileStatus{domain.FileStatusCompleted, domain.FileStatusProcessing}, domain.BatchStatusProcessing},
		{"one still pending", []domain.FileStatus{domain.FileStatusPending}, domain.BatchStatusProcessing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeBatchRepo{}
			fileRepo := &fakeFileRepo{}
			svc := service.NewBatchService(repo, fileRepo)
			ownerID := uuid.New()

			batch, err := svc.Create(context.Background(), ownerID, 2025, "")
			require.NoError(t, err)

			for _, status := range tt.files {
				fileRepo.files = append(fileRepo.files, domain.FileMeta{
					ID: uuid.New(), BatchID: &batch.ID, Status: status,
				})
			}

			require.NoError(t, svc.RefreshStatus(context.Background(), ownerID, batch.ID))
			assert.Equal(t, tt.expect, repo.batches[batch.ID].Status)
		})
	}
}

func TestBatchRefreshStatus_NoFilesStaysPending(t *testing.T) {
	repo := &fakeBatchRepo{}
	svc := service.NewBatchService(repo, &fakeFileRepo{})
	ownerID := uuid.New()

	batch, err := svc.Create(context.Background(), ownerID, 2025, "")
	require.NoError(t, err)

	require.NoError(t, svc.RefreshStatus(context.Background(), ownerID, batch.ID))

	// Status was already pending; no update issued.
	assert.Empty(t, repo.statuses)
	assert.Equal(t, domain.BatchStatusPending, repo.batches[batch.ID].Status)
}

func TestBatchGet_NotFound(t *testing.T) {
	svc := service.NewBatchService(&fakeBatchRepo{}, &fakeFileRepo{})

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
