package models

import (
	"time"

	"github.com/shopspring/decimal"

	"finaudy/internal/schedule"
)

// DefaultReminderTime is when reminders fire if no time is set.
const DefaultReminderTime = "19:50"

// BillReminder notifies the account about a recurring bill on a fixed day.
type BillReminder struct {
	Base
	AccountID            string             `gorm:"type:uuid;not null;index" json:"account_id"`
	Name                 string             `gorm:"not null" json:"name"`
	Amount               *decimal.Decimal   `gorm:"type:numeric(14,2)" json:"amount,omitempty"`
	Frequency            schedule.Frequency `gorm:"not null" json:"frequency"`
	ReminderDay          int                `gorm:"not null" json:"reminder_day"`
	ReminderTime         string             `gorm:"size:5;not null;default:'19:50'" json:"reminder_time"`
	RecurringEnabled     bool               `gorm:"default:true" json:"recurring_enabled"`
	NextNotificationDate time.Time          `gorm:"type:date;not null;index" json:"next_notification_date"`
	CategoryID           *string            `gorm:"type:uuid" json:"category_id,omitempty"`
	Comment              string             `json:"comment,omitempty"`
	LogoKey              string             `json:"logo_key,omitempty"`
}
