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

// SubscriptionHandler handles recurring charge requests.
type SubscriptionHandler struct {
	subscriptionService services.SubscriptionServicer
	auditService        services.AuditServicer
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptionService services.SubscriptionServicer, auditService services.AuditServicer) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService, auditService: auditService}
}

// SubscriptionRequest represents the payload for creating or replacing a
// subscription. renewal_day may be omitted for daily and weekly charges.
type SubscriptionRequest struct {
	Name       string             `json:"name" binding:"required,min=1,max=100"`
	Amount     decimal.Decimal    `json:"amount" swaggertype:"number"`
	Frequency  schedule.Frequency `json:"frequency" binding:"required,frequency"`
	RenewalDay int                `json:"renewal_day" binding:"omitempty,min=1,max=31"`
	CategoryID *string            `json:"category_id" binding:"omitempty,uuid"`
	LogoKey    string             `json:"logo_key" binding:"max=64"`
}

func (r SubscriptionRequest) input() services.SubscriptionInput {
	return services.SubscriptionInput{
		Name:       r.Name,
		Amount:     r.Amount,
		Frequency:  r.Frequency,
		AnchorDay:  r.RenewalDay,
		CategoryID: r.CategoryID,
		LogoKey:    r.LogoKey,
	}
}

// MarkPaidRequest optionally backdates a subscription payment.
type MarkPaidRequest struct {
	PaidOn string `json:"paid_on" binding:"omitempty,datetime=2006-01-02"`
}

// CreateSubscription handles the creation of a subscription.
// @Summary     Create a subscription
// @Tags        subscriptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       request body SubscriptionRequest true "Subscription details"
// @Success     201 {object} models.Subscription "Subscription created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subscriptions [post]
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sub, err := h.subscriptionService.CreateSubscription(accountID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "CREATE_SUBSCRIPTION", "subscription", sub.ID, c.ClientIP(),
		map[string]any{"name": sub.Name, "amount": sub.Amount.String(), "frequency": sub.Frequency})

	c.JSON(http.StatusCreated, gin.H{"subscription": sub})
}

// GetSubscriptions lists the subscriptions of the acting account.
// @Summary     Get subscriptions
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Subscription] "Paginated subscriptions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /subscriptions [get]
func (h *SubscriptionHandler) GetSubscriptions(c *gin.Context) {
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

	result, err := h.subscriptionService.GetAccountSubscriptions(accountID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSubscriptionOverview projects every subscription and totals the overdue
// balance under a date filter.
// @Summary     Subscription overview
// @Description List subscriptions with next occurrence, overdue flag and the overdue balance
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       filter query string false "Date filter (today/week/month/semiannual/year/custom/all)"
// @Param       from   query string false "Custom range start (YYYY-MM-DD)"
// @Param       to     query string false "Custom range end (YYYY-MM-DD)"
// @Success     200 {object} services.SubscriptionOverview "Subscription overview"
// @Failure     400 {object} ErrorResponse "Invalid date filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /subscriptions/overview [get]
func (h *SubscriptionHandler) GetSubscriptionOverview(c *gin.Context) {
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

	overview, err := h.subscriptionService.GetOverview(accountID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetSubscription handles retrieving one subscription.
// @Summary     Get subscription by ID
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id path string true "Subscription ID"
// @Success     200 {object} models.Subscription "Subscription details"
// @Failure     404 {object} ErrorResponse "Subscription not found"
// @Router      /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sub, err := h.subscriptionService.GetSubscriptionByID(accountID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

// UpdateSubscription replaces the writable fields of a subscription.
// @Summary     Update subscription
// @Tags        subscriptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id      path string              true "Subscription ID"
// @Param       request body SubscriptionRequest true "Subscription details"
// @Success     200 {object} models.Subscription "Updated subscription"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Subscription not found"
// @Router      /subscriptions/{id} [put]
func (h *SubscriptionHandler) UpdateSubscription(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sub, err := h.subscriptionService.UpdateSubscription(accountID, c.Param("id"), req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "UPDATE_SUBSCRIPTION", "subscription", sub.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

// DeleteSubscription deletes a subscription. Its payments stay in the ledger.
// @Summary     Delete subscription
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id path string true "Subscription ID"
// @Success     200 {object} map[string]string "Subscription deleted"
// @Failure     404 {object} ErrorResponse "Subscription not found"
// @Router      /subscriptions/{id} [delete]
func (h *SubscriptionHandler) DeleteSubscription(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subscriptionID := c.Param("id")
	if err := h.subscriptionService.DeleteSubscription(accountID, subscriptionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "DELETE_SUBSCRIPTION", "subscription", subscriptionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Subscription deleted successfully"})
}

// MarkSubscriptionPaid records a payment of the subscription as an expense.
// @Summary     Mark subscription paid
// @Description Create the linked expense transaction and move the renewal forward. paid_on defaults to today.
// @Tags        subscriptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id      path string          true  "Subscription ID"
// @Param       request body MarkPaidRequest false "Payment date"
// @Success     201 {object} models.Transaction "Payment recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Subscription not found"
// @Router      /subscriptions/{id}/pay [post]
func (h *SubscriptionHandler) MarkSubscriptionPaid(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MarkPaidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}
	paidOn, err := parseDate(req.PaidOn, "paid_on")
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.subscriptionService.MarkPaid(accountID, userID, c.Param("id"), paidOn)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "PAY_SUBSCRIPTION", "subscription", c.Param("id"), c.ClientIP(),
		map[string]any{"transaction_id": payment.ID, "amount": payment.Amount.String()})

	c.JSON(http.StatusCreated, gin.H{"transaction": payment})
}
