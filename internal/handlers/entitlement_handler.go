package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/services"
)

// EntitlementHandler exposes premium status and the operator upsert.
type EntitlementHandler struct {
	entitlementService services.EntitlementServicer
	auditService       services.AuditServicer
}

// NewEntitlementHandler creates a new EntitlementHandler.
func NewEntitlementHandler(entitlementService services.EntitlementServicer, auditService services.AuditServicer) *EntitlementHandler {
	return &EntitlementHandler{entitlementService: entitlementService, auditService: auditService}
}

// UpsertSubscriberRequest sets the premium entitlement of a user.
type UpsertSubscriberRequest struct {
	Tier            string     `json:"tier" binding:"max=32"`
	SubscriptionEnd *time.Time `json:"subscription_end"`
	TrialEnd        *time.Time `json:"trial_end"`
	IsVIP           bool       `json:"is_vip"`
}

// GetStatus returns the premium status and feature usage of the acting account.
// @Summary     Premium status
// @Tags        premium
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Success     200 {object} services.EntitlementStatus "Entitlement status"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /premium/status [get]
func (h *EntitlementHandler) GetStatus(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.entitlementService.GetStatus(accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// UpsertSubscriber creates or replaces a user's entitlement.
// @Summary     Upsert subscriber (internal)
// @Tags        internal
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string                  true "Internal API key"
// @Param       user_id   path   string                  true "User ID"
// @Param       request   body   UpsertSubscriberRequest true "Entitlement"
// @Success     200 {object} models.Subscriber "Subscriber"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /internal/subscribers/{user_id} [put]
func (h *EntitlementHandler) UpsertSubscriber(c *gin.Context) {
	var req UpsertSubscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	userID := c.Param("user_id")
	sub, err := h.entitlementService.UpsertSubscriber(userID, services.SubscriberInput{
		Tier:            req.Tier,
		SubscriptionEnd: req.SubscriptionEnd,
		TrialEnd:        req.TrialEnd,
		IsVIP:           req.IsVIP,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, userID, "UPSERT_SUBSCRIBER", "subscriber", sub.ID, c.ClientIP(),
		map[string]any{"tier": sub.Tier, "is_vip": sub.IsVIP})

	c.JSON(http.StatusOK, gin.H{"subscriber": sub})
}
