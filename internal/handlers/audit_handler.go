package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/pagination"
	"finaudy/internal/services"
)

// AuditHandler serves the audit trail of an account.
type AuditHandler struct {
	auditService services.AuditServicer
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService services.AuditServicer) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GetAuditLog lists who changed what on the acting account, newest first.
// @Summary     Get account audit log
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID  header string false "Shared account to act on"
// @Param       resource_type query  string false "Only entries for this resource type"
// @Param       page          query  int    false "Page number (default 1)"
// @Param       page_size     query  int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AuditLog] "Paginated audit entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /audit [get]
func (h *AuditHandler) GetAuditLog(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.auditService.GetAccountLog(accountID, c.Query("resource_type"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
