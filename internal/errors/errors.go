// Package errors provides custom error types for the finaudy API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory   = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name already exists", StatusCode: http.StatusConflict}
	ErrCategoryHasChildren = &AppError{Code: "CATEGORY_HAS_CHILDREN", Message: "Category has child categories", StatusCode: http.StatusConflict}
	ErrSelfParentCategory  = &AppError{Code: "SELF_PARENT_CATEGORY", Message: "A category cannot be its own parent", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidAmount       = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be greater than zero", StatusCode: http.StatusBadRequest}
	ErrInvalidDateFilter   = &AppError{Code: "INVALID_DATE_FILTER", Message: "Invalid date filter", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrBudgetNotFound = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
)

// Subscription errors.
var (
	ErrSubscriptionNotFound = &AppError{Code: "SUBSCRIPTION_NOT_FOUND", Message: "Subscription not found", StatusCode: http.StatusNotFound}
)

// Installment errors.
var (
	ErrInstallmentNotFound = &AppError{Code: "INSTALLMENT_NOT_FOUND", Message: "Installment not found", StatusCode: http.StatusNotFound}
	ErrPurchaseNotFound    = &AppError{Code: "PURCHASE_NOT_FOUND", Message: "Installment purchase not found", StatusCode: http.StatusNotFound}
)

// Bill reminder errors.
var (
	ErrBillReminderNotFound = &AppError{Code: "BILL_REMINDER_NOT_FOUND", Message: "Bill reminder not found", StatusCode: http.StatusNotFound}
)

// Notification errors.
var (
	ErrNotificationNotFound = &AppError{Code: "NOTIFICATION_NOT_FOUND", Message: "Notification not found", StatusCode: http.StatusNotFound}
	ErrPushUnavailable      = &AppError{Code: "PUSH_UNAVAILABLE", Message: "Push delivery failed", StatusCode: http.StatusBadGateway}
)

// Sharing errors.
var (
	ErrShareNotFound   = &AppError{Code: "SHARE_NOT_FOUND", Message: "Shared account invitation not found", StatusCode: http.StatusNotFound}
	ErrShareSelf       = &AppError{Code: "SHARE_SELF", Message: "You cannot share an account with yourself", StatusCode: http.StatusBadRequest}
	ErrShareExists     = &AppError{Code: "SHARE_EXISTS", Message: "This email already has access or a pending invitation", StatusCode: http.StatusConflict}
	ErrNoAccountAccess = &AppError{Code: "NO_ACCOUNT_ACCESS", Message: "You do not have access to this account", StatusCode: http.StatusForbidden}
)

// Entitlement errors.
var (
	ErrFeatureLimitReached = &AppError{Code: "FEATURE_LIMIT_REACHED", Message: "Free usage limit reached for this feature", StatusCode: http.StatusPaymentRequired}
)

// AI capture errors.
var (
	ErrCaptureUnavailable = &AppError{Code: "CAPTURE_UNAVAILABLE", Message: "Capture service is not configured", StatusCode: http.StatusServiceUnavailable}
	ErrCaptureFailed      = &AppError{Code: "CAPTURE_FAILED", Message: "Could not understand the capture", StatusCode: http.StatusUnprocessableEntity}
)
