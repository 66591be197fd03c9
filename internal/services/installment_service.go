package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/models"
	"finaudy/internal/schedule"
)

const maxInstallments = 120

// installmentService handles installment purchase business logic.
type installmentService struct {
	db *gorm.DB
	calendar
}

// NewInstallmentService creates a new InstallmentServicer.
func NewInstallmentService(db *gorm.DB, loc *time.Location) InstallmentServicer {
	return &installmentService{db: db, calendar: newCalendar(loc)}
}

// CreatePurchase splits a purchase into monthly installments. The amount is
// divided evenly to the cent and any remainder goes to the last installment.
func (s *installmentService) CreatePurchase(accountID string, in PurchaseInput) ([]models.Installment, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "purchase name is required")
	}
	if !in.TotalAmount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if in.TotalInstallments < 1 || in.TotalInstallments > maxInstallments {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "installments must be between 1 and 120")
	}
	if in.FirstPaymentDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "first payment date is required")
	}
	if in.CategoryID != nil {
		var count int64
		if err := s.db.Model(&models.Category{}).
			Where("id = ? AND account_id = ? AND type = ?", *in.CategoryID, accountID, schedule.KindExpense).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrCategoryNotFound
		}
	}

	first := storedDate(in.FirstPaymentDate)

	var exists int64
	if err := s.db.Model(&models.Installment{}).
		Where("account_id = ? AND purchase_name = ? AND first_payment_date = ?", accountID, in.Name, first).
		Count(&exists).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if exists > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a purchase with this name and first payment date already exists")
	}

	n := decimal.NewFromInt(int64(in.TotalInstallments))
	each := in.TotalAmount.Div(n).RoundDown(2)
	last := in.TotalAmount.Sub(each.Mul(n.Sub(decimal.NewFromInt(1))))

	rows := make([]models.Installment, in.TotalInstallments)
	for i := range rows {
		amount := each
		if i == len(rows)-1 {
			amount = last
		}
		rows[i] = models.Installment{
			AccountID:          accountID,
			CategoryID:         in.CategoryID,
			PurchaseName:       in.Name,
			TotalAmount:        in.TotalAmount,
			InstallmentAmount:  amount,
			TotalInstallments:  in.TotalInstallments,
			CurrentInstallment: i + 1,
			FirstPaymentDate:   first,
			Notes:              in.Notes,
		}
	}

	if err := s.db.Create(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// GetPurchases groups the account's installments into purchases.
func (s *installmentService) GetPurchases(accountID string) ([]schedule.Purchase, error) {
	rows, err := s.all(accountID)
	if err != nil {
		return nil, err
	}
	return schedule.GroupPurchases(models.InstallmentRecords(rows)), nil
}

// GetInstallmentByID retrieves one installment within an account
func (s *installmentService) GetInstallmentByID(accountID, installmentID string) (*models.Installment, error) {
	var row models.Installment
	if err := s.db.Where("id = ? AND account_id = ?", installmentID, accountID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInstallmentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &row, nil
}

// SetPaid marks one installment paid or unpaid. Paying posts the installment
// amount to the ledger as an expense dated today; unpaying removes that entry.
func (s *installmentService) SetPaid(accountID, userID, installmentID string, paid bool) (*models.Installment, error) {
	row, err := s.GetInstallmentByID(accountID, installmentID)
	if err != nil {
		return nil, err
	}
	if row.IsPaid == paid {
		return row, nil
	}

	updates := map[string]interface{}{"is_paid": paid, "paid_at": nil}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if !paid {
			if err := tx.Where("installment_id = ?", row.ID).Delete(&models.Transaction{}).Error; err != nil {
				return err
			}
			return tx.Model(row).Updates(updates).Error
		}

		payment := &models.Transaction{
			AccountID:     accountID,
			CreatedBy:     userID,
			CategoryID:    row.CategoryID,
			Kind:          schedule.KindExpense,
			Amount:        row.InstallmentAmount,
			OccurredOn:    s.today(),
			Description:   fmt.Sprintf("%s (%d/%d)", row.PurchaseName, row.CurrentInstallment, row.TotalInstallments),
			InstallmentID: &row.ID,
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		updates["paid_at"] = s.clock()
		return tx.Model(row).Updates(updates).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetInstallmentByID(accountID, installmentID)
}

// DeletePurchase deletes every installment of one purchase together with the
// ledger entries its payments posted.
func (s *installmentService) DeletePurchase(accountID, name string, firstPaymentDate time.Time) error {
	var ids []string
	if err := s.db.Model(&models.Installment{}).
		Where("account_id = ? AND purchase_name = ? AND first_payment_date = ?", accountID, name, storedDate(firstPaymentDate)).
		Pluck("id", &ids).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(ids) == 0 {
		return apperrors.ErrPurchaseNotFound
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("installment_id IN ?", ids).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Installment{}).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetDebt totals the unpaid installments selected by filter.
func (s *installmentService) GetDebt(accountID string, filter schedule.DateFilter) (*DebtSummary, error) {
	if !filter.Kind.Valid() {
		return nil, apperrors.ErrInvalidDateFilter
	}
	if filter.Kind == schedule.FilterCustom && filter.To.Before(filter.From) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidDateFilter, "end date is before start date")
	}

	rows, err := s.unpaid(accountID)
	if err != nil {
		return nil, err
	}
	total, count := schedule.DebtBalance(s.records(rows), filter, s.now())
	return &DebtSummary{Total: total, Count: count}, nil
}

// OverdueInstallments returns unpaid installments due before today.
func (s *installmentService) OverdueInstallments(accountID string) ([]schedule.InstallmentRecord, error) {
	rows, err := s.unpaid(accountID)
	if err != nil {
		return nil, err
	}
	return schedule.OverdueInstallments(s.records(rows), s.now()), nil
}

// records converts rows with first payment dates moved to the application
// timezone so due dates compare as calendar days.
func (s *installmentService) records(rows []models.Installment) []schedule.InstallmentRecord {
	records := models.InstallmentRecords(rows)
	for i := range records {
		records[i].FirstPaymentDate = schedule.CivilDate(records[i].FirstPaymentDate, s.loc)
	}
	return records
}

func (s *installmentService) all(accountID string) ([]models.Installment, error) {
	var rows []models.Installment
	if err := s.db.Where("account_id = ?", accountID).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

func (s *installmentService) unpaid(accountID string) ([]models.Installment, error) {
	var rows []models.Installment
	if err := s.db.Where("account_id = ? AND is_paid = ?", accountID, false).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}
