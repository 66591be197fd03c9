package models

import (
	"time"

	"github.com/shopspring/decimal"

	"finaudy/internal/schedule"
)

// Subscription is a recurring charge the user pays, such as a streaming
// service. AnchorDay is the day of month it renews on.
type Subscription struct {
	Base
	AccountID     string             `gorm:"type:uuid;not null;index" json:"account_id"`
	Name          string             `gorm:"not null" json:"name"`
	Amount        decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"amount"`
	Frequency     schedule.Frequency `gorm:"not null" json:"frequency"`
	AnchorDay     int                `gorm:"column:renewal_day;not null" json:"renewal_day"`
	CategoryID    *string            `gorm:"type:uuid" json:"category_id,omitempty"`
	LogoKey       string             `json:"logo_key,omitempty"`
	LastChargedAt *time.Time         `json:"last_charged_at,omitempty"`
}

// RecurringItem converts the row into the projector's input with timestamps
// moved into loc.
func (s *Subscription) RecurringItem(loc *time.Location) schedule.RecurringItem {
	item := schedule.RecurringItem{
		ID:        s.ID,
		OwnerID:   s.AccountID,
		Name:      s.Name,
		Amount:    s.Amount,
		Frequency: s.Frequency,
		AnchorDay: s.AnchorDay,
	}
	if s.LastChargedAt != nil {
		last := s.LastChargedAt.In(loc)
		item.LastChargedAt = &last
	}
	return item
}

// RecurringItems converts a slice of subscriptions.
func RecurringItems(subs []Subscription, loc *time.Location) []schedule.RecurringItem {
	out := make([]schedule.RecurringItem, len(subs))
	for i := range subs {
		out[i] = subs[i].RecurringItem(loc)
	}
	return out
}
