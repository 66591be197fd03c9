package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/pagination"
	"finaudy/internal/schedule"
	"finaudy/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
// The period bounds are derived from the period type and today.
type CreateBudgetRequest struct {
	CategoryID string              `json:"category_id" binding:"required,uuid"`
	Amount     decimal.Decimal     `json:"amount" swaggertype:"number"`
	PeriodType schedule.PeriodType `json:"period_type" binding:"required,period_type"`
	AutoRenew  *bool               `json:"auto_renew"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	Amount    *decimal.Decimal `json:"amount" swaggertype:"number"`
	AutoRenew *bool            `json:"auto_renew"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a budget for an expense category. Creating a budget for a category and period that already has one updates its amount.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	autoRenew := req.AutoRenew == nil || *req.AutoRenew

	budget, err := h.budgetService.CreateBudget(accountID, req.CategoryID, req.Amount, req.PeriodType, autoRenew)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "CREATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]any{"category_id": req.CategoryID, "amount": req.Amount.String(), "period_type": req.PeriodType})

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets of the acting account.
// @Summary     Get budgets
// @Description Get a paginated list of budgets
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       period_type query string false "Filter by period type (daily/weekly/monthly/semiannual/annual)"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
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

	var periodType *schedule.PeriodType
	if v := c.Query("period_type"); v != "" {
		p := schedule.PeriodType(v)
		if !p.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid period_type"))
			return
		}
		periodType = &p
	}

	result, err := h.budgetService.GetAccountBudgets(accountID, periodType, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudgetOverview analyzes every budget matching a date filter.
// @Summary     Budget overview
// @Description Analyze the budgets matching a date filter with spending, status and totals
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       filter query string false "Date filter (today/week/month/semiannual/year/custom/all)"
// @Param       from   query string false "Custom range start (YYYY-MM-DD)"
// @Param       to     query string false "Custom range end (YYYY-MM-DD)"
// @Success     200 {object} services.BudgetOverview "Budget analyses and totals"
// @Failure     400 {object} ErrorResponse "Invalid date filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/overview [get]
func (h *BudgetHandler) GetBudgetOverview(c *gin.Context) {
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

	overview, err := h.budgetService.GetOverview(accountID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetBudget handles retrieving a specific budget.
// @Summary     Get budget by ID
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id path string true "Budget ID"
// @Success     200 {object} models.Budget "Budget details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(accountID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// UpdateBudget handles updating an existing budget.
// @Summary     Update budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Updated budget details"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpdateBudget(accountID, c.Param("id"), req.Amount, req.AutoRenew)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]any{}
	if req.Amount != nil {
		changes["amount"] = req.Amount.String()
	}
	if req.AutoRenew != nil {
		changes["auto_renew"] = *req.AutoRenew
	}
	h.auditService.Log(userID, accountID, "UPDATE_BUDGET", "budget", budget.ID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id path string true "Budget ID"
// @Success     200 {object} map[string]string "Budget deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID := c.Param("id")
	if err := h.budgetService.DeleteBudget(accountID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "DELETE_BUDGET", "budget", budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// GetBudgetProgress returns the spending analysis of a budget.
// @Summary     Get budget progress
// @Description Get spent, remaining and status of a budget in its current period
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id path string true "Budget ID"
// @Success     200 {object} schedule.BudgetAnalysis "Budget progress"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id}/progress [get]
func (h *BudgetHandler) GetBudgetProgress(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.budgetService.GetBudgetProgress(accountID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}
