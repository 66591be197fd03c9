package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/models"
	"finaudy/internal/pagination"
	"finaudy/internal/schedule"
	"finaudy/internal/services"
)

// TransactionHandler handles ledger requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	entitlementService services.EntitlementServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(
	transactionService services.TransactionServicer,
	entitlementService services.EntitlementServicer,
	auditService services.AuditServicer,
) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		entitlementService: entitlementService,
		auditService:       auditService,
	}
}

// TransactionRequest represents the request payload for creating or replacing
// a transaction. Amounts are decimal numbers or strings.
type TransactionRequest struct {
	CategoryID     *string            `json:"category_id" binding:"omitempty,uuid"`
	Kind           schedule.EntryKind `json:"kind" binding:"required,transaction_kind"`
	Amount         decimal.Decimal    `json:"amount" swaggertype:"number"`
	OccurredOn     string             `json:"occurred_on" binding:"omitempty,datetime=2006-01-02"`
	Description    string             `json:"description" binding:"max=500"`
	Notes          string             `json:"notes" binding:"max=1000"`
	PaymentMethod  string             `json:"payment_method" binding:"max=50"`
	SubscriptionID *string            `json:"subscription_id" binding:"omitempty,uuid"`
}

func (r TransactionRequest) input() (services.TransactionInput, error) {
	occurredOn, err := parseDate(r.OccurredOn, "occurred_on")
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		CategoryID:     r.CategoryID,
		Kind:           r.Kind,
		Amount:         r.Amount,
		OccurredOn:     occurredOn,
		Description:    r.Description,
		Notes:          r.Notes,
		PaymentMethod:  r.PaymentMethod,
		SubscriptionID: r.SubscriptionID,
	}, nil
}

// CreateTransaction handles the creation of a new ledger entry
// @Summary     Create a transaction
// @Description Record an expense, income or savings entry. occurred_on defaults to today.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category or subscription not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.CreateTransaction(accountID, userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "CREATE_TRANSACTION", "transaction", tx.ID, c.ClientIP(),
		map[string]any{"kind": tx.Kind, "amount": tx.Amount.String()})

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// GetTransactions lists ledger entries of the acting account
// @Summary     Get transactions
// @Description Get a paginated list of transactions, newest first
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       filter      query string false "Date filter (today/week/month/semiannual/year/custom/all)"
// @Param       from        query string false "Custom range start (YYYY-MM-DD)"
// @Param       to          query string false "Custom range end (YYYY-MM-DD)"
// @Param       kind        query string false "Filter by kind (expense/income/savings)"
// @Param       category_id query string false "Filter by category"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
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

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetAccountTransactions(accountID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	window, err := parseDateFilter(c)
	if err != nil {
		return filter, err
	}
	filter.Window = window

	if v := c.Query("kind"); v != "" {
		kind := schedule.EntryKind(v)
		if !kind.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid kind, must be expense, income or savings")
		}
		filter.Kind = &kind
	}

	if v := c.Query("category_id"); v != "" {
		filter.CategoryID = &v
	}

	return filter, nil
}

// ExportTransactions streams the filtered ledger as CSV
// @Summary     Export transactions
// @Description Export the filtered transactions as CSV. Free accounts have a limited number of exports.
// @Tags        transactions
// @Produce     text/csv
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       filter      query string false "Date filter (today/week/month/semiannual/year/custom/all)"
// @Param       from        query string false "Custom range start (YYYY-MM-DD)"
// @Param       to          query string false "Custom range end (YYYY-MM-DD)"
// @Param       kind        query string false "Filter by kind"
// @Param       category_id query string false "Filter by category"
// @Success     200 {string} string "CSV file"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     402 {object} ErrorResponse "Free usage limit reached"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/export [get]
func (h *TransactionHandler) ExportTransactions(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if _, err := h.entitlementService.Consume(accountID, models.FeatureExport); err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	rows, err := h.transactionService.ExportCSV(accountID, filter, &buf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "EXPORT_TRANSACTIONS", "transaction", "", c.ClientIP(),
		map[string]any{"rows": rows, "filter": filter.Window.Kind})

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="transactions-%s.csv"`, filter.Window.Kind))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.GetTransactionByID(accountID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// UpdateTransaction replaces the writable fields of a transaction
// @Summary     Update transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id      path string             true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.UpdateTransaction(accountID, c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "UPDATE_TRANSACTION", "transaction", tx.ID, c.ClientIP(),
		map[string]any{"kind": tx.Kind, "amount": tx.Amount.String()})

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]string "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID := c.Param("id")
	if err := h.transactionService.DeleteTransaction(accountID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
