package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "finaudy/internal/errors"
)

// AccountHeader selects which account a request acts on. Without it a user
// acts on their own personal account.
const AccountHeader = "X-Account-ID"

// AccessChecker reports whether a user may act on an account.
type AccessChecker interface {
	HasAccess(userID, accountID string) (bool, error)
}

// AccountContext resolves the acting account for the request and stores it
// under AccountIDKey. It must run after AuthMiddleware.
func AccountContext(access AccessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		accountID := c.GetHeader(AccountHeader)
		if accountID == "" || accountID == userID {
			c.Set(AccountIDKey, userID)
			c.Next()
			return
		}

		ok, err := access.HasAccess(userID, accountID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if !ok {
			abortWithError(c, apperrors.ErrNoAccountAccess)
			return
		}

		c.Set(AccountIDKey, accountID)
		c.Next()
	}
}
