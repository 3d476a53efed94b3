package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taxdesk/internal/middleware"
	"taxdesk/internal/service"
)

// BatchHandler handles upload batch endpoints.
type BatchHandler struct {
	batchService service.BatchService
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batchService service.BatchService) *BatchHandler {
	return &BatchHandler{batchService: batchService}
}

type createBatchRequest struct {
	TaxYear int    `json:"tax_year" binding:"required"`
	Label   string `json:"label"`
}

// Create handles POST /api/v1/batches
func (h *BatchHandler) Create(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing owner context")
		return
	}

	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "tax_year is required")
		return
	}

	batch, err := h.batchService.Create(c.Request.Context(), ownerID, req.TaxYear, req.Label)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, batch)
}

// Get handles GET /api/v1/batches/:id
func (h *BatchHandler) Get(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing owner context")
		return
	}
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "batch id must be a UUID")
		return
	}
	detail, err := h.batchService.Get(c.Request.Context(), ownerID, batchID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, detail)
}

// List handles GET /api/v1/batches
func (h *BatchHandler) List(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing owner context")
		return
	}
	taxYear := parseTaxYear(c.Query("tax_year"))

	batches, err := h.batchService.List(c.Request.Context(), ownerID, taxYear)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, batches)
}
