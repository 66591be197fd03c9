package models

import "time"

// NotificationKind identifies what produced a notification.
type NotificationKind string

const (
	NotificationBudgetExceeded      NotificationKind = "budget_exceeded"
	NotificationSubscriptionOverdue NotificationKind = "subscription_overdue"
	NotificationSubscriptionRenewal NotificationKind = "subscription_renewal"
	NotificationInstallmentOverdue  NotificationKind = "installment_overdue"
	NotificationBillReminder        NotificationKind = "bill_reminder"
	NotificationShareInvite         NotificationKind = "share_invite"
	NotificationGeneral             NotificationKind = "general"
)

// Valid reports whether k is a known notification kind.
func (k NotificationKind) Valid() bool {
	switch k {
	case NotificationBudgetExceeded, NotificationSubscriptionOverdue, NotificationSubscriptionRenewal,
		NotificationInstallmentOverdue, NotificationBillReminder, NotificationShareInvite, NotificationGeneral:
		return true
	}
	return false
}

// Route is the client screen a notification opens.
func (k NotificationKind) Route() string {
	switch k {
	case NotificationBudgetExceeded:
		return "budgets"
	case NotificationSubscriptionOverdue, NotificationSubscriptionRenewal:
		return "subscriptions"
	case NotificationInstallmentOverdue:
		return "installments"
	case NotificationBillReminder:
		return "reminders"
	case NotificationShareInvite:
		return "sharing"
	case NotificationGeneral:
		return "home"
	}
	return "home"
}

// Notification is an in-app message for one recipient. AccountID is the
// account whose data produced it, which differs from UserID for
// collaborators of a shared account. NotifyDate is the application-timezone
// day it was sent; a recipient gets each kind and reference once per day.
type Notification struct {
	Base
	UserID      string           `gorm:"type:uuid;not null;uniqueIndex:idx_notification_daily,priority:1" json:"user_id"`
	AccountID   string           `gorm:"type:uuid;not null" json:"account_id"`
	Kind        NotificationKind `gorm:"not null;uniqueIndex:idx_notification_daily,priority:2" json:"kind"`
	Title       string           `gorm:"not null" json:"title"`
	Message     string           `gorm:"not null" json:"message"`
	ReferenceID string           `gorm:"not null;default:'';uniqueIndex:idx_notification_daily,priority:3" json:"reference_id,omitempty"`
	NotifyDate  time.Time        `gorm:"type:date;not null;uniqueIndex:idx_notification_daily,priority:4" json:"notify_date"`
	Read        bool             `gorm:"default:false" json:"read"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
}

// DeviceToken is a push registration of one of a user's devices.
type DeviceToken struct {
	Base
	UserID     string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Token      string     `gorm:"uniqueIndex;not null" json:"token"`
	Platform   string     `gorm:"size:16" json:"platform"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}
