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

// BillReminderHandler handles bill reminder requests.
type BillReminderHandler struct {
	reminderService services.BillReminderServicer
	auditService    services.AuditServicer
}

// NewBillReminderHandler creates a new BillReminderHandler.
func NewBillReminderHandler(reminderService services.BillReminderServicer, auditService services.AuditServicer) *BillReminderHandler {
	return &BillReminderHandler{reminderService: reminderService, auditService: auditService}
}

// BillReminderRequest represents the payload for creating or replacing a
// reminder. reminder_time defaults to 19:50.
type BillReminderRequest struct {
	Name             string             `json:"name" binding:"required,min=1,max=100"`
	Amount           *decimal.Decimal   `json:"amount" swaggertype:"number"`
	Frequency        schedule.Frequency `json:"frequency" binding:"required,frequency"`
	ReminderDay      int                `json:"reminder_day" binding:"omitempty,min=1,max=31"`
	ReminderTime     string             `json:"reminder_time" binding:"omitempty,hhmm"`
	RecurringEnabled *bool              `json:"recurring_enabled"`
	CategoryID       *string            `json:"category_id" binding:"omitempty,uuid"`
	Comment          string             `json:"comment" binding:"max=500"`
	LogoKey          string             `json:"logo_key" binding:"max=64"`
}

func (r BillReminderRequest) input() services.BillReminderInput {
	return services.BillReminderInput{
		Name:             r.Name,
		Amount:           r.Amount,
		Frequency:        r.Frequency,
		ReminderDay:      r.ReminderDay,
		ReminderTime:     r.ReminderTime,
		RecurringEnabled: r.RecurringEnabled,
		CategoryID:       r.CategoryID,
		Comment:          r.Comment,
		LogoKey:          r.LogoKey,
	}
}

// CreateBillReminder handles the creation of a reminder.
// @Summary     Create a bill reminder
// @Tags        reminders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       request body BillReminderRequest true "Reminder details"
// @Success     201 {object} models.BillReminder "Reminder created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reminders [post]
func (h *BillReminderHandler) CreateBillReminder(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BillReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	reminder, err := h.reminderService.CreateBillReminder(accountID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "CREATE_BILL_REMINDER", "bill_reminder", reminder.ID, c.ClientIP(),
		map[string]any{"name": reminder.Name, "frequency": reminder.Frequency})

	c.JSON(http.StatusCreated, gin.H{"reminder": reminder})
}

// GetBillReminders lists reminders, soonest first.
// @Summary     Get bill reminders
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.BillReminder] "Paginated reminders"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /reminders [get]
func (h *BillReminderHandler) GetBillReminders(c *gin.Context) {
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

	result, err := h.reminderService.GetAccountBillReminders(accountID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBillReminder handles retrieving one reminder.
// @Summary     Get bill reminder by ID
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id path string true "Reminder ID"
// @Success     200 {object} models.BillReminder "Reminder details"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Router      /reminders/{id} [get]
func (h *BillReminderHandler) GetBillReminder(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminder, err := h.reminderService.GetBillReminderByID(accountID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminder": reminder})
}

// UpdateBillReminder replaces the writable fields of a reminder.
// @Summary     Update bill reminder
// @Tags        reminders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id      path string              true "Reminder ID"
// @Param       request body BillReminderRequest true "Reminder details"
// @Success     200 {object} models.BillReminder "Updated reminder"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Router      /reminders/{id} [put]
func (h *BillReminderHandler) UpdateBillReminder(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BillReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	reminder, err := h.reminderService.UpdateBillReminder(accountID, c.Param("id"), req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "UPDATE_BILL_REMINDER", "bill_reminder", reminder.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"reminder": reminder})
}

// DeleteBillReminder handles deleting a reminder.
// @Summary     Delete bill reminder
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Param       X-Account-ID header string false "Shared account to act on"
// @Param       id path string true "Reminder ID"
// @Success     200 {object} map[string]string "Reminder deleted"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Router      /reminders/{id} [delete]
func (h *BillReminderHandler) DeleteBillReminder(c *gin.Context) {
	accountID, userID, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID := c.Param("id")
	if err := h.reminderService.DeleteBillReminder(accountID, reminderID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, accountID, "DELETE_BILL_REMINDER", "bill_reminder", reminderID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted successfully"})
}
