package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"

	"taxdesk/internal/config"
	"taxdesk/internal/domain"
	"taxdesk/internal/port"
)

// FileUploadInput is the DTO for statement upload requests.
type FileUploadInput struct {
	OwnerID  uuid.UUID
	BatchID  *uuid.UUID
	TaxYear  int
	BankName string
	File     multipart.File
	Header   *multipart.FileHeader
}

// FileService defines the statement file management contract.
type FileService interface {
	Upload(ctx context.Context, input FileUploadInput) (*domain.FileMeta, error)
	GetByID(ctx context.Context, ownerID, fileID uuid.UUID) (*domain.FileMeta, error)
	List(ctx context.Context, ownerID uuid.UUID, taxYear int) ([]domain.FileMeta, error)
	GetDownloadURL(ctx context.Context, ownerID, fileID uuid.UUID) (string, error)
}

type fileService struct {
	fileRepo port.FileMetaRepository
	storage  port.ObjectStorage
	cfg      *config.S3Config
}

// NewFileService creates a new FileService implementation.
func NewFileService(fileRepo port.FileMetaRepository, storage port.ObjectStorage, cfg *config.S3Config) FileService {
	return &fileService{fileRepo: fileRepo, storage: storage, cfg: cfg}
}

// Upload validates the statement, stores it, and registers it pending so
// the parse queue worker picks it up.
func (s *fileService) Upload(ctx context.Context, input FileUploadInput) (*domain.FileMeta, error) {
	contentType := normalizeContentType(input.Header.Header.Get("Content-Type"))
	if !supportedContentType(contentType) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, contentType)
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	fileID := uuid.New()
	s3Key := fmt.Sprintf("owners/%s/statements/%s/%s", input.OwnerID, fileID, input.Header.Filename)

	meta := &domain.FileMeta{
		ID:           fileID,
		OwnerID:      input.OwnerID,
		BatchID:      input.BatchID,
		TaxYear:      input.TaxYear,
		OriginalName: input.Header.Filename,
		ContentType:  contentType,
		FileSize:     input.Header.Size,
		BankName:     strings.TrimSpace(input.BankName),
		S3Bucket:     s.cfg.Bucket,
		S3Key:        s3Key,
		Status:       domain.FileStatusPending,
	}

	log.Printf("fileService.Upload: uploading %s (%s, %d bytes) for owner %s",
		input.Header.Filename, contentType, input.Header.Size, input.OwnerID)

	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         s3Key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Printf("fileService.Upload: storage upload failed for %s: %v", fileID, err)
		return nil, domain.ErrUploadFailed
	}

	if err := s.fileRepo.Create(ctx, meta); err != nil {
		return nil, fmt.Errorf("creating file metadata: %w", err)
	}
	return meta, nil
}

func (s *fileService) GetByID(ctx context.Context, ownerID, fileID uuid.UUID) (*domain.FileMeta, error) {
	return s.fileRepo.GetByID(ctx, ownerID, fileID)
}

func (s *fileService) List(ctx context.Context, ownerID uuid.UUID, taxYear int) ([]domain.FileMeta, error) {
	return s.fileRepo.ListByOwner(ctx, ownerID, taxYear)
}

func (s *fileService) GetDownloadURL(ctx context.Context, ownerID, fileID uuid.UUID) (string, error) {
	meta, err := s.fileRepo.GetByID(ctx, ownerID, fileID)
	if err != nil {
		return "", err
	}
	url, err := s.storage.GetPresignedURL(ctx, meta.S3Bucket, meta.S3Key, s.cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("generating download URL: %w", err)
	}
	return url, nil
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

func supportedContentType(ct string) bool {
	if _, ok := domain.SupportedMimeTypes[ct]; ok {
		return true
	}
	return strings.HasPrefix(ct, "text/")
}
