package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taxdesk/internal/domain"
	"taxdesk/internal/middleware"
	"taxdesk/internal/port"
	"taxdesk/internal/service"
)

// TransactionHandler exposes the persisted transaction ledger.
type TransactionHandler struct {
	txService service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txService: txService}
}

// List handles GET /api/v1/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing owner context")
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	filter := port.TransactionFilter{
		TaxYear:   parseTaxYear(c.Query("tax_year")),
		Category:  c.Query("category"),
		Direction: domain.Direction(c.Query("direction")),
		Offset:    offset,
		Limit:     limit,
	}

	txs, total, err := h.txService.List(c.Request.Context(), ownerID, filter)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, txs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Summary handles GET /api/v1/transactions/summary
func (h *TransactionHandler) Summary(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing owner context")
		return
	}
	taxYear := parseTaxYear(c.Query("tax_year"))

	summary, err := h.txService.Summary(c.Request.Context(), ownerID, taxYear)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, summary)
}

// ExportCSV handles GET /api/v1/transactions/export
func (h *TransactionHandler) ExportCSV(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing owner context")
		return
	}
	taxYear := parseTaxYear(c.Query("tax_year"))

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="transactions_%d.csv"`, taxYear))

	if err := h.txService.ExportCSV(c.Request.Context(), c.Writer, ownerID, taxYear); err != nil {
		// Reset headers only if nothing was written yet.
		if !c.Writer.Written() {
			c.Header("Content-Type", "application/json")
			c.Header("Content-Disposition", "")
			HandleError(c, err)
		}
		return
	}
}
