package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/logger"
	"finaudy/internal/middleware"
	"finaudy/internal/models"
	"finaudy/internal/services"
)

// SharingHandler handles shared account invitations. Owners only share their
// own account, so routes ignore X-Account-ID.
type SharingHandler struct {
	sharingService      services.SharingServicer
	notificationService services.NotificationServicer
	auditService        services.AuditServicer
}

// NewSharingHandler creates a new SharingHandler.
func NewSharingHandler(sharingService services.SharingServicer, notificationService services.NotificationServicer, auditService services.AuditServicer) *SharingHandler {
	return &SharingHandler{
		sharingService:      sharingService,
		notificationService: notificationService,
		auditService:        auditService,
	}
}

// InviteRequest invites a collaborator by email.
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Invite shares the caller's account with an email address.
// @Summary     Invite a collaborator
// @Description The invitee is notified when the email already belongs to a user.
// @Tags        sharing
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body InviteRequest true "Invitee"
// @Success     201 {object} models.SharedAccount "Invitation created"
// @Failure     400 {object} ErrorResponse "Invalid input or self share"
// @Failure     409 {object} ErrorResponse "Invitation already exists"
// @Router      /sharing/invites [post]
func (h *SharingHandler) Invite(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	share, err := h.sharingService.Invite(userID, req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if share.SharedWithID != nil {
		inviter := c.GetString(middleware.EmailKey)
		if inviter == "" {
			inviter = "Someone"
		}
		msg := fmt.Sprintf("%s invited you to share their finances", inviter)
		if _, err := h.notificationService.Send(c.Request.Context(), *share.SharedWithID, userID,
			"Shared account invitation", msg, models.NotificationShareInvite, share.ID); err != nil {
			logger.Get().Warnw("failed to notify invitee", "share_id", share.ID, "error", err)
		}
	}

	h.auditService.Log(userID, userID, "INVITE_COLLABORATOR", "shared_account", share.ID, c.ClientIP(),
		map[string]any{"email": share.InvitedEmail})

	c.JSON(http.StatusCreated, gin.H{"share": share})
}

// GetOwnedShares lists the caller's pending and accepted shares.
// @Summary     Get owned shares
// @Tags        sharing
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.SharedAccount "Shares"
// @Router      /sharing/owned [get]
func (h *SharingHandler) GetOwnedShares(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	shares, err := h.sharingService.GetOwnedShares(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

// GetPendingInvites lists invitations waiting for the caller.
// @Summary     Get pending invitations
// @Tags        sharing
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.SharedAccount "Invitations"
// @Router      /sharing/invites [get]
func (h *SharingHandler) GetPendingInvites(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	invites, err := h.sharingService.GetPendingInvites(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invites": invites})
}

// GetAccessibleAccounts lists the accounts the caller may send as X-Account-ID.
// @Summary     Get accessible accounts
// @Tags        sharing
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.AccessibleAccount "Accounts"
// @Router      /sharing/accounts [get]
func (h *SharingHandler) GetAccessibleAccounts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accounts, err := h.sharingService.Accessible(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// AcceptInvite accepts a pending invitation addressed to the caller.
// @Summary     Accept invitation
// @Tags        sharing
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Share ID"
// @Success     200 {object} models.SharedAccount "Accepted share"
// @Failure     404 {object} ErrorResponse "Invitation not found"
// @Router      /sharing/invites/{id}/accept [post]
func (h *SharingHandler) AcceptInvite(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	share, err := h.sharingService.Accept(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, share.OwnerID, "ACCEPT_SHARE", "shared_account", share.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"share": share})
}

// DeclineInvite declines a pending invitation addressed to the caller.
// @Summary     Decline invitation
// @Tags        sharing
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Share ID"
// @Success     200 {object} map[string]string "Invitation declined"
// @Failure     404 {object} ErrorResponse "Invitation not found"
// @Router      /sharing/invites/{id}/decline [post]
func (h *SharingHandler) DeclineInvite(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	shareID := c.Param("id")
	if err := h.sharingService.Decline(userID, shareID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, userID, "DECLINE_SHARE", "shared_account", shareID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Invitation declined"})
}

// RevokeShare ends a collaborator's access to the caller's account.
// @Summary     Revoke share
// @Tags        sharing
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Share ID"
// @Success     200 {object} map[string]string "Share revoked"
// @Failure     404 {object} ErrorResponse "Share not found"
// @Router      /sharing/{id} [delete]
func (h *SharingHandler) RevokeShare(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	shareID := c.Param("id")
	if err := h.sharingService.Revoke(userID, shareID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, userID, "REVOKE_SHARE", "shared_account", shareID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Share revoked"})
}
