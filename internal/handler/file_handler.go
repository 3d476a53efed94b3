package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taxdesk/internal/middleware"
	"taxdesk/internal/service"
)

// FileHandler handles statement upload and file management endpoints.
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload handles POST /api/v1/files/upload
func (h *FileHandler) Upload(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing owner context")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	taxYear := parseTaxYear(c.PostForm("tax_year"))

	var batchID *uuid.UUID
	if raw := c.PostForm("batch_id"); raw != "" {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_BATCH_ID", "batch_id must be a UUID")
			return
		}
		batchID = &id
	}

	meta, err := h.fileService.Upload(c.Request.Context(), service.FileUploadInput{
		OwnerID:  ownerID,
		BatchID:  batchID,
		TaxYear:  taxYear,
		BankName: c.PostForm("bank_name"),
		File:     file,
		Header:   header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, meta)
}

// Get handles GET /api/v1/files/:id
func (h *FileHandler) Get(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing owner context")
		return
	}
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "file id must be a UUID")
		return
	}
	meta, err := h.fileService.GetByID(c.Request.Context(), ownerID, fileID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, meta)
}

// List handles GET /api/v1/files
func (h *FileHandler) List(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing owner context")
		return
	}
	taxYear := parseTaxYear(c.Query("tax_year"))

	metas, err := h.fileService.List(c.Request.Context(), ownerID, taxYear)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, metas)
}

// DownloadURL handles GET /api/v1/files/:id/download
func (h *FileHandler) DownloadURL(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing owner context")
		return
	}
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "file id must be a UUID")
		return
	}
	url, err := h.fileService.GetDownloadURL(c.Request.Context(), ownerID, fileID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}

// parseTaxYear parses a tax year form/query value, defaulting to the
// current year.
func parseTaxYear(raw string) int {
	if raw == "" {
		return time.Now().UTC().Year()
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 2000 || year > 2100 {
		return time.Now().UTC().Year()
	}
	return year
}
