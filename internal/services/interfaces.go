package services

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"finaudy/internal/models"
	"finaudy/internal/pagination"
	"finaudy/internal/schedule"
)

// ProfileUpdate holds the optional fields of a profile change.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	AvatarKey *string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	UpdateProfile(userID string, update ProfileUpdate) (*models.User, error)
	ScheduledAccountIDs() ([]string, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(accountID, name string, kind schedule.EntryKind, description, icon, color string, parentID *string) (*models.Category, error)
	GetAccountCategories(accountID string, kind *schedule.EntryKind, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(accountID, categoryID string) (*models.Category, error)
	UpdateCategory(accountID, categoryID, name, description, icon, color string, parentID *string) (*models.Category, error)
	DeleteCategory(accountID, categoryID string) error
	EnsureDefaultCategories(accountID string) error
}

// TransactionInput carries the writable fields of a ledger entry.
type TransactionInput struct {
	CategoryID     *string
	Kind           schedule.EntryKind
	Amount         decimal.Decimal
	OccurredOn     time.Time
	Description    string
	Notes          string
	PaymentMethod  string
	SubscriptionID *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Window     schedule.DateFilter
	Kind       *schedule.EntryKind
	CategoryID *string
}

// TransactionServicer defines the contract for ledger business logic.
type TransactionServicer interface {
	CreateTransaction(accountID, userID string, in TransactionInput) (*models.Transaction, error)
	GetAccountTransactions(accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(accountID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(accountID, transactionID string, in TransactionInput) (*models.Transaction, error)
	DeleteTransaction(accountID, transactionID string) error
	ExportCSV(accountID string, filter TransactionFilter, w io.Writer) (int, error)
}

// BudgetOverview is the analysis of every budget visible under a date filter.
type BudgetOverview struct {
	Budgets []schedule.BudgetAnalysis `json:"budgets"`
	Totals  schedule.BudgetTotals     `json:"totals"`
}

// ExceededBudget pairs an over-limit budget with its analysis.
type ExceededBudget struct {
	Budget   models.Budget
	Analysis schedule.BudgetAnalysis
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(accountID, categoryID string, amount decimal.Decimal, periodType schedule.PeriodType, autoRenew bool) (*models.Budget, error)
	GetAccountBudgets(accountID string, periodType *schedule.PeriodType, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(accountID, budgetID string) (*models.Budget, error)
	UpdateBudget(accountID, budgetID string, amount *decimal.Decimal, autoRenew *bool) (*models.Budget, error)
	DeleteBudget(accountID, budgetID string) error
	GetBudgetProgress(accountID, budgetID string) (*schedule.BudgetAnalysis, error)
	GetOverview(accountID string, filter schedule.DateFilter) (*BudgetOverview, error)
	ExceededBudgets(accountID string, categoryID *string) ([]ExceededBudget, error)
}

// SubscriptionInput carries the writable fields of a subscription.
type SubscriptionInput struct {
	Name       string
	Amount     decimal.Decimal
	Frequency  schedule.Frequency
	AnchorDay  int
	CategoryID *string
	LogoKey    string
}

// SubscriptionStatus is a subscription with its projected schedule.
type SubscriptionStatus struct {
	models.Subscription
	NextOccurrence time.Time `json:"next_occurrence"`
	Overdue        bool      `json:"overdue"`
	PaidThisPeriod bool      `json:"paid_this_period"`
}

// SubscriptionOverview lists subscriptions with the overdue balance under a
// date filter.
type SubscriptionOverview struct {
	Subscriptions []SubscriptionStatus `json:"subscriptions"`
	OverdueTotal  decimal.Decimal      `json:"overdue_total"`
	OverdueCount  int                  `json:"overdue_count"`
}

// SubscriptionServicer defines the contract for recurring charges.
type SubscriptionServicer interface {
	CreateSubscription(accountID string, in SubscriptionInput) (*models.Subscription, error)
	GetAccountSubscriptions(accountID string, page pagination.PageRequest) (*pagination.PageResponse[models.Subscription], error)
	GetSubscriptionByID(accountID, subscriptionID string) (*models.Subscription, error)
	UpdateSubscription(accountID, subscriptionID string, in SubscriptionInput) (*models.Subscription, error)
	DeleteSubscription(accountID, subscriptionID string) error
	MarkPaid(accountID, userID, subscriptionID string, paidOn time.Time) (*models.Transaction, error)
	GetOverview(accountID string, filter schedule.DateFilter) (*SubscriptionOverview, error)
	OverdueSubscriptions(accountID string) ([]SubscriptionStatus, error)
	RenewingToday(accountID string) ([]SubscriptionStatus, error)
}

// PurchaseInput describes a purchase split into monthly installments.
type PurchaseInput struct {
	Name              string
	TotalAmount       decimal.Decimal
	TotalInstallments int
	FirstPaymentDate  time.Time
	CategoryID        *string
	Notes             string
}

// DebtSummary is the unpaid installment balance under a date filter.
type DebtSummary struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// InstallmentServicer defines the contract for installment purchases.
type InstallmentServicer interface {
	CreatePurchase(accountID string, in PurchaseInput) ([]models.Installment, error)
	GetPurchases(accountID string) ([]schedule.Purchase, error)
	GetInstallmentByID(accountID, installmentID string) (*models.Installment, error)
	SetPaid(accountID, userID, installmentID string, paid bool) (*models.Installment, error)
	DeletePurchase(accountID, name string, firstPaymentDate time.Time) error
	GetDebt(accountID string, filter schedule.DateFilter) (*DebtSummary, error)
	OverdueInstallments(accountID string) ([]schedule.InstallmentRecord, error)
}

// BillReminderInput carries the writable fields of a bill reminder.
type BillReminderInput struct {
	Name             string
	Amount           *decimal.Decimal
	Frequency        schedule.Frequency
	ReminderDay      int
	ReminderTime     string
	RecurringEnabled *bool
	CategoryID       *string
	Comment          string
	LogoKey          string
}

// BillReminderServicer defines the contract for bill reminders.
type BillReminderServicer interface {
	CreateBillReminder(accountID string, in BillReminderInput) (*models.BillReminder, error)
	GetAccountBillReminders(accountID string, page pagination.PageRequest) (*pagination.PageResponse[models.BillReminder], error)
	GetBillReminderByID(accountID, reminderID string) (*models.BillReminder, error)
	UpdateBillReminder(accountID, reminderID string, in BillReminderInput) (*models.BillReminder, error)
	DeleteBillReminder(accountID, reminderID string) error
	DueReminders(accountID string) ([]models.BillReminder, error)
	AdvanceReminder(reminder *models.BillReminder) error
}

// NotificationServicer defines the contract for in-app and push notifications.
type NotificationServicer interface {
	Emit(ctx context.Context, accountID, title, message string, kind models.NotificationKind, referenceID string) (int, error)
	Send(ctx context.Context, userID, accountID, title, message string, kind models.NotificationKind, referenceID string) (bool, error)
	GetUserNotifications(userID string, unreadOnly bool, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error)
	UnreadCount(userID string) (int64, error)
	MarkRead(userID, notificationID string) (*models.Notification, error)
	MarkAllRead(userID string) (int64, error)
	DeleteNotification(userID, notificationID string) error
	RegisterDevice(userID, token, platform string) (*models.DeviceToken, error)
	UnregisterDevice(userID, token string) error
	DeactivateTokens(ctx context.Context, tokens []string) error
}

// AccessibleAccount is an account a user can act on.
type AccessibleAccount struct {
	AccountID string `json:"account_id"`
	OwnerName string `json:"owner_name"`
	Email     string `json:"email"`
	Owned     bool   `json:"owned"`
}

// SharingServicer defines the contract for shared accounts.
type SharingServicer interface {
	Invite(ownerID, email string) (*models.SharedAccount, error)
	Accept(userID, shareID string) (*models.SharedAccount, error)
	Decline(userID, shareID string) error
	Revoke(ownerID, shareID string) error
	GetOwnedShares(ownerID string) ([]models.SharedAccount, error)
	GetPendingInvites(userID string) ([]models.SharedAccount, error)
	Accessible(userID string) ([]AccessibleAccount, error)
	HasAccess(userID, accountID string) (bool, error)
	Recipients(accountID string) ([]string, error)
}

// FeatureQuota is the metered usage of one feature.
type FeatureQuota struct {
	Feature   models.Feature `json:"feature"`
	Used      int            `json:"used"`
	Limit     int            `json:"limit"`
	Remaining int            `json:"remaining"`
	Unlimited bool           `json:"unlimited"`
}

// EntitlementStatus is the premium state of an account.
type EntitlementStatus struct {
	Premium         bool           `json:"premium"`
	Tier            string         `json:"tier"`
	SubscriptionEnd *time.Time     `json:"subscription_end,omitempty"`
	TrialEnd        *time.Time     `json:"trial_end,omitempty"`
	IsVIP           bool           `json:"is_vip"`
	Features        []FeatureQuota `json:"features"`
}

// SubscriberInput is the administrative entitlement update.
type SubscriberInput struct {
	Tier            string
	SubscriptionEnd *time.Time
	TrialEnd        *time.Time
	IsVIP           bool
}

// EntitlementServicer defines the contract for premium checks and metering.
type EntitlementServicer interface {
	IsPremium(accountID string) (bool, error)
	GetStatus(accountID string) (*EntitlementStatus, error)
	Consume(accountID string, feature models.Feature) (*FeatureQuota, error)
	UpsertSubscriber(userID string, in SubscriberInput) (*models.Subscriber, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, accountID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
	GetAccountLog(accountID, resourceType string, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
