package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/logger"
	"finaudy/internal/middleware"
	"finaudy/internal/models"
	"finaudy/internal/schedule"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// getAccountID returns the account the request acts on, as resolved by the
// AccountContext middleware. It falls back to the user's own account.
func getAccountID(c *gin.Context) (string, error) {
	if accountID := c.GetString(middleware.AccountIDKey); accountID != "" {
		return accountID, nil
	}
	return getUserID(c)
}

// getActor returns both the acting account and the authenticated user.
func getActor(c *gin.Context) (accountID, userID string, err error) {
	userID, err = getUserID(c)
	if err != nil {
		return "", "", err
	}
	accountID, err = getAccountID(c)
	return accountID, userID, err
}

// parseDate parses an optional YYYY-MM-DD value. An empty value yields the
// zero time.
func parseDate(value, field string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := models.ParseDate(value)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+field+", use YYYY-MM-DD")
	}
	return t, nil
}

// parseDateFilter reads the filter, from and to query parameters. Without a
// filter the all-time view is used.
func parseDateFilter(c *gin.Context) (schedule.DateFilter, error) {
	kind := schedule.FilterKind(c.DefaultQuery("filter", string(schedule.FilterAll)))
	if !kind.Valid() {
		return schedule.DateFilter{}, apperrors.ErrInvalidDateFilter
	}
	filter := schedule.DateFilter{Kind: kind}
	if kind != schedule.FilterCustom {
		return filter, nil
	}

	from, err := parseDate(c.Query("from"), "from")
	if err != nil {
		return filter, err
	}
	to, err := parseDate(c.Query("to"), "to")
	if err != nil {
		return filter, err
	}
	if from.IsZero() || to.IsZero() {
		return filter, apperrors.WithMessage(apperrors.ErrInvalidDateFilter, "custom filter requires from and to")
	}
	if to.Before(from) {
		return filter, apperrors.WithMessage(apperrors.ErrInvalidDateFilter, "end date is before start date")
	}
	filter.From, filter.To = from, to
	return filter, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
