package models

import (
	"time"

	"github.com/shopspring/decimal"

	"finaudy/internal/schedule"
)

// Installment is one payment of a purchase split over several months.
// Records sharing a purchase name and first payment date form one purchase.
type Installment struct {
	Base
	AccountID          string          `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID         *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	PurchaseName       string          `gorm:"not null" json:"purchase_name"`
	TotalAmount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	InstallmentAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"installment_amount"`
	TotalInstallments  int             `gorm:"not null" json:"total_installments"`
	CurrentInstallment int             `gorm:"not null" json:"current_installment"`
	FirstPaymentDate   time.Time       `gorm:"type:date;not null" json:"first_payment_date"`
	IsPaid             bool            `gorm:"default:false" json:"is_paid"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	Notes              string          `json:"notes,omitempty"`
}

// Record converts the row into the aggregator's input.
func (i *Installment) Record() schedule.InstallmentRecord {
	return schedule.InstallmentRecord{
		ID:                i.ID,
		OwnerID:           i.AccountID,
		PurchaseName:      i.PurchaseName,
		TotalAmount:       i.TotalAmount,
		InstallmentAmount: i.InstallmentAmount,
		TotalInstallments: i.TotalInstallments,
		Index:             i.CurrentInstallment,
		FirstPaymentDate:  i.FirstPaymentDate,
		IsPaid:            i.IsPaid,
	}
}

// InstallmentRecords converts a slice of installments.
func InstallmentRecords(rows []Installment) []schedule.InstallmentRecord {
	out := make([]schedule.InstallmentRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].Record()
	}
	return out
}
