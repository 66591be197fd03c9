package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/logger"
)

// ErrorHandler renders the last error a handler attached with c.Error, unless
// a response was already written.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, c.Errors.Last().Err)
	}
}

// abortWithError stops the chain and writes err as a JSON error body.
func abortWithError(c *gin.Context, err error) {
	writeError(c, err)
	c.Abort()
}

// writeError sends the code and message of an AppError. Anything else becomes
// INTERNAL_ERROR with the cause kept in the logs only.
func writeError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if appErr.Internal != nil {
		logger.Get().Errorw("request failed",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"code", appErr.Code,
			"error", appErr.Internal.Error(),
		)
	}

	c.JSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
