package models

import (
	"time"

	"github.com/shopspring/decimal"

	"finaudy/internal/schedule"
)

// Budget caps the spending of one category over a recurring period. At most
// one budget exists per category and period bounds.
type Budget struct {
	Base
	AccountID   string              `gorm:"type:uuid;not null;uniqueIndex:idx_budget_period" json:"account_id"`
	CategoryID  string              `gorm:"type:uuid;not null;uniqueIndex:idx_budget_period" json:"category_id"`
	Amount      decimal.Decimal     `gorm:"type:numeric(14,2);not null" json:"amount"`
	PeriodType  schedule.PeriodType `gorm:"not null" json:"period_type"`
	PeriodStart time.Time           `gorm:"type:date;not null;uniqueIndex:idx_budget_period" json:"period_start"`
	PeriodEnd   time.Time           `gorm:"type:date;not null;uniqueIndex:idx_budget_period" json:"period_end"`
	AutoRenew   bool                `gorm:"default:true" json:"auto_renew"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}

// Period converts the row into the evaluator's input.
func (b *Budget) Period() schedule.BudgetPeriod {
	return schedule.BudgetPeriod{
		ID:          b.ID,
		OwnerID:     b.AccountID,
		CategoryID:  b.CategoryID,
		Amount:      b.Amount,
		PeriodType:  b.PeriodType,
		PeriodStart: b.PeriodStart,
		PeriodEnd:   b.PeriodEnd,
		AutoRenew:   b.AutoRenew,
		CreatedAt:   b.CreatedAt,
	}
}
