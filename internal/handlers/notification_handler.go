package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/pagination"
	"finaudy/internal/services"
)

// NotificationHandler handles the notification inbox and device tokens.
// Notifications belong to the recipient, so every route acts on the caller
// rather than the acting account.
type NotificationHandler struct {
	notificationService services.NotificationServicer
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService services.NotificationServicer) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterDeviceRequest registers a push token.
type RegisterDeviceRequest struct {
	Token    string `json:"token" binding:"required,max=4096"`
	Platform string `json:"platform" binding:"required,oneof=android ios web"`
}

// UnregisterDeviceRequest removes a push token.
type UnregisterDeviceRequest struct {
	Token string `json:"token" binding:"required"`
}

// GetNotifications lists the caller's notifications, newest first.
// @Summary     Get notifications
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Param       unread    query bool false "Only unread notifications"
// @Param       page      query int  false "Page number (default 1)"
// @Param       page_size query int  false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Notification] "Paginated notifications"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	unreadOnly := false
	if raw := c.Query("unread"); raw != "" {
		unreadOnly, err = strconv.ParseBool(raw)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "unread must be true or false"))
			return
		}
	}

	result, err := h.notificationService.GetUserNotifications(userID, unreadOnly, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUnreadCount returns the badge count.
// @Summary     Unread notification count
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Unread count"
// @Router      /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	count, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkRead marks one notification read.
// @Summary     Mark notification read
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Notification ID"
// @Success     200 {object} models.Notification "Notification"
// @Failure     404 {object} ErrorResponse "Notification not found"
// @Router      /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	n, err := h.notificationService.MarkRead(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notification": n})
}

// MarkAllRead marks every unread notification of the caller read.
// @Summary     Mark all notifications read
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Number of notifications updated"
// @Router      /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	updated, err := h.notificationService.MarkAllRead(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// DeleteNotification removes one notification.
// @Summary     Delete notification
// @Tags        notifications
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Notification ID"
// @Success     200 {object} map[string]string "Notification deleted"
// @Failure     404 {object} ErrorResponse "Notification not found"
// @Router      /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.notificationService.DeleteNotification(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}

// RegisterDevice stores or reactivates a push token for the caller.
// @Summary     Register push device
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RegisterDeviceRequest true "Device token"
// @Success     201 {object} models.DeviceToken "Registered device"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /devices [post]
func (h *NotificationHandler) RegisterDevice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	device, err := h.notificationService.RegisterDevice(userID, req.Token, req.Platform)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"device": device})
}

// UnregisterDevice deactivates a push token of the caller.
// @Summary     Unregister push device
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UnregisterDeviceRequest true "Device token"
// @Success     200 {object} map[string]string "Device unregistered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /devices [delete]
func (h *NotificationHandler) UnregisterDevice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UnregisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.notificationService.UnregisterDevice(userID, req.Token); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device unregistered"})
}
