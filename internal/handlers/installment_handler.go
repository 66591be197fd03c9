package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/services"
)

// InstallmentHandler handles installment purchase requests.
type InstallmentHandler struct {
	installmentService services.InstallmentServicer
	auditService       services.AuditServicer
}

// NewInstallmentHandler creates a new InstallmentHandler.
func NewInstallmentHandler(installmentService services.InstallmentServicer, auditService services.AuditServicer) *InstallmentHandler {
	return &InstallmentHandler{installmentService: installmentService, auditService: auditService}
}

// CreatePurchaseRequest represents a purchase split into monthly installments.
type CreatePurchaseRequest struct {
	Name              string          `json:"name" binding:"required,min=1,max=100"`
	TotalAmount       decimal.Decimal `json:"total_amount" swaggertype:"number"`
	TotalInstallments int             `json:"total_installments" binding:"required,min=1,max=120"`
	FirstPaymentDate  string          `json:"first_payment_date" binding:"required,datetime=2006-01-02"`
	CategoryID        *string         `json:"category_id" binding:"omitempty,uuid"`
	Notes             string          `json:"notes" binding:"max=1000"`
}

// SetPaidRequest marks an installment paid or unpaid.
type SetPaidRequest struct {
	Paid *bool `json:"paid" binding:"required"`
}

// CreatePurchase splits a purchase into installments.
// @Summary     Create an installment purchase
// @Description Split a purchase into monthly installments. Any rounding remainder goes to the last installment.
// @Tags        installments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       request body CreatePurchaseRequest true "Purchase details"
// @Success     201 {array}  models.Installment "Installments created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /installments [post]
func (h *InstallmentHandler) CreatePurchase(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	first, err := parseDate(req.FirstPaymentDate, "first_payment_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.installmentService.CreatePurchase(accountID, services.PurchaseInput{
		Name:              req.Name,
		TotalAmount:       req.TotalAmount,
		TotalInstallments: req.TotalInstallments,
		FirstPaymentDate:  first,
		CategoryID:        req.CategoryID,
		Notes:             req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "CREATE_PURCHASE", "installment", rows[0].ID, c.ClientIP(),
		map[string]any{"name": req.Name, "total_amount": req.TotalAmount.String(), "installments": req.TotalInstallments})

	c.JSON(http.StatusCreated, gin.H{"installments": rows})
}

// GetPurchases lists the installment purchases of the acting account.
// @Summary     Get installment purchases
// @Description List purchases with paid and unpaid counts, remaining amount and next due date
// @Tags        installments
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Success     200 {array}  schedule.Purchase "Purchases"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /installments [get]
func (h *InstallmentHandler) GetPurchases(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	purchases, err := h.installmentService.GetPurchases(accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// GetDebt totals the unpaid installments under a date filter.
// @Summary     Installment debt
// @Tags        installments
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       filter query string false "Date filter (today/week/month/semiannual/year/custom/all)"
// @Param       from   query string false "Custom range start (YYYY-MM-DD)"
// @Param       to     query string false "Custom range end (YYYY-MM-DD)"
// @Success     200 {object} services.DebtSummary "Unpaid balance"
// @Failure     400 {object} ErrorResponse "Invalid date filter"
// @Router      /installments/debt [get]
func (h *InstallmentHandler) GetDebt(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseDateFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	debt, err := h.installmentService.GetDebt(accountID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, debt)
}

// SetInstallmentPaid marks one installment paid or unpaid.
// @Summary     Set installment paid
// @Tags        installments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id      path string         true "Installment ID"
// @Param       request body SetPaidRequest true "Paid flag"
// @Success     200 {object} models.Installment "Updated installment"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Installment not found"
// @Router      /installments/{id}/paid [put]
func (h *InstallmentHandler) SetInstallmentPaid(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	row, err := h.installmentService.SetPaid(accountID, userID, c.Param("id"), *req.Paid)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "SET_INSTALLMENT_PAID", "installment", row.ID, c.ClientIP(),
		map[string]any{"paid": *req.Paid})

	c.JSON(http.StatusOK, gin.H{"installment": row})
}

// DeletePurchase deletes every installment of one purchase.
// @Summary     Delete installment purchase
// @Tags        installments
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       name               query string true "Purchase name"
// @Param       first_payment_date query string true "First payment date (YYYY-MM-DD)"
// @Success     200 {object} map[string]string "Purchase deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Purchase not found"
// @Router      /installments [delete]
func (h *InstallmentHandler) DeletePurchase(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	name := c.Query("name")
	if name == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required"))
		return
	}
	first, err := parseDate(c.Query("first_payment_date"), "first_payment_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if first.IsZero() {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "first_payment_date is required"))
		return
	}

	if err := h.installmentService.DeletePurchase(accountID, name, first); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "DELETE_PURCHASE", "installment", "", c.ClientIP(),
		map[string]any{"name": name, "first_payment_date": c.Query("first_payment_date")})

	c.JSON(http.StatusOK, gin.H{"message": "Purchase deleted successfully"})
}
