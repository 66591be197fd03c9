package models

import (
	"time"

	"github.com/shopspring/decimal"

	"finaudy/internal/schedule"
)

// Transaction is a ledger entry. OccurredOn is the calendar date the money
// moved; CreatedAt is when it was recorded.
type Transaction struct {
	Base
	AccountID      string             `gorm:"type:uuid;not null;index" json:"account_id"`
	CreatedBy      string             `gorm:"type:uuid" json:"created_by"`
	CategoryID     *string            `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Kind           schedule.EntryKind `gorm:"not null" json:"kind"`
	Amount         decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"amount"`
	OccurredOn     time.Time          `gorm:"type:date;not null;index" json:"occurred_on"`
	Description    string             `json:"description"`
	Notes          string             `json:"notes,omitempty"`
	PaymentMethod  string             `json:"payment_method,omitempty"`
	SubscriptionID *string            `gorm:"type:uuid;index" json:"subscription_id,omitempty"`
	InstallmentID  *string            `gorm:"type:uuid;index" json:"installment_id,omitempty"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// LedgerEntry converts the row into the evaluator's input.
func (t *Transaction) LedgerEntry() schedule.LedgerEntry {
	e := schedule.LedgerEntry{
		ID:         t.ID,
		OwnerID:    t.AccountID,
		Amount:     t.Amount,
		Kind:       t.Kind,
		OccurredOn: t.OccurredOn,
		RecordedAt: t.CreatedAt,
	}
	if t.CategoryID != nil {
		e.CategoryID = *t.CategoryID
	}
	if t.SubscriptionID != nil {
		e.SubscriptionID = *t.SubscriptionID
	}
	return e
}

// LedgerEntries converts a slice of transactions.
func LedgerEntries(txs []Transaction) []schedule.LedgerEntry {
	out := make([]schedule.LedgerEntry, len(txs))
	for i := range txs {
		out[i] = txs[i].LedgerEntry()
	}
	return out
}
