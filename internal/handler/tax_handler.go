package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxdesk/internal/middleware"
	"taxdesk/internal/service"
)

// TaxHandler exposes computed aggregates and compact tax contexts.
type TaxHandler struct {
	taxService service.TaxService
}

// NewTaxHandler creates a new TaxHandler.
func NewTaxHandler(taxService service.TaxService) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

// GetAggregate handles GET /api/v1/tax/aggregate
func (h *TaxHandler) GetAggregate(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing owner context")
		return
	}
	taxYear := parseTaxYear(c.Query("tax_year"))

	agg, err := h.taxService.GetAggregate(c.Request.Context(), ownerID, taxYear)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, agg)
}

// GetContext handles GET /api/v1/tax/context
func (h *TaxHandler) GetContext(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing owner context")
		return
	}
	taxYear := parseTaxYear(c.Query("tax_year"))

	compact, err := h.taxService.GetContext(c.Request.Context(), ownerID, taxYear)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, compact)
}

// Regenerate handles POST /api/v1/tax/regenerate
func (h *TaxHandler) Regenerate(c *gin.Context) {
	ownerID, err := middleware.GetOwnerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing owner context")
		return
	}
	taxYear := parseTaxYear(c.Query("tax_year"))

	compact, err := h.taxService.Regenerate(c.Request.Context(), ownerID, taxYear)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, compact)
}
