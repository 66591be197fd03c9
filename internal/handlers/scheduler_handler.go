package handlers

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/jobs"
)

// JobTrigger queues a batch of periodic checks on demand.
type JobTrigger interface {
	TriggerNow() int
	NextRun(now time.Time) time.Time
}

// AccountChecker runs one check for one account synchronously.
type AccountChecker interface {
	Run(ctx context.Context, accountID string, check jobs.Check) error
}

// SchedulerHandler exposes operator controls for the notification scheduler.
type SchedulerHandler struct {
	trigger JobTrigger
	checker AccountChecker
	now     func() time.Time
}

// NewSchedulerHandler creates a new SchedulerHandler.
func NewSchedulerHandler(trigger JobTrigger, checker AccountChecker) *SchedulerHandler {
	return &SchedulerHandler{trigger: trigger, checker: checker, now: time.Now}
}

// Trigger queues every check for every account now.
// @Summary     Trigger scheduler (internal)
// @Tags        internal
// @Produce     json
// @Param       X-API-Key header string true "Internal API key"
// @Success     202 {object} map[string]any "Jobs queued"
// @Router      /internal/scheduler/trigger [post]
func (h *SchedulerHandler) Trigger(c *gin.Context) {
	queued := h.trigger.TriggerNow()
	c.JSON(http.StatusAccepted, gin.H{
		"queued":   queued,
		"next_run": h.trigger.NextRun(h.now()),
	})
}

// RunCheck runs one check for one account and waits for it.
// @Summary     Run one account check (internal)
// @Tags        internal
// @Produce     json
// @Param       X-API-Key  header string true "Internal API key"
// @Param       account_id path   string true "Account ID"
// @Param       check      path   string true "Check (budget_exceeded/subscription_overdue/subscription_renewal/installment_overdue/bill_reminder)"
// @Success     200 {object} map[string]string "Check completed"
// @Failure     400 {object} ErrorResponse "Unknown check"
// @Router      /internal/scheduler/accounts/{account_id}/checks/{check} [post]
func (h *SchedulerHandler) RunCheck(c *gin.Context) {
	check := jobs.Check(c.Param("check"))
	if !slices.Contains(jobs.Checks, check) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown check "+string(check)))
		return
	}

	accountID := c.Param("account_id")
	if err := h.checker.Run(c.Request.Context(), accountID, check); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "check": check, "status": "completed"})
}
