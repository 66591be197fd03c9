package services

import (
	"encoding/csv"
	"errors"
	"io"
	"time"

	"gorm.io/gorm"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/models"
	"finaudy/internal/pagination"
)

// transactionService handles ledger business logic.
type transactionService struct {
	db *gorm.DB
	calendar
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, loc *time.Location) TransactionServicer {
	return &transactionService{db: db, calendar: newCalendar(loc)}
}

// CreateTransaction records a ledger entry. userID is the member who recorded
// it, which differs from accountID on shared accounts.
func (s *transactionService) CreateTransaction(accountID, userID string, in TransactionInput) (*models.Transaction, error) {
	if err := s.validate(accountID, in); err != nil {
		return nil, err
	}

	occurredOn := s.today()
	if !in.OccurredOn.IsZero() {
		occurredOn = storedDate(in.OccurredOn)
	}

	tx := &models.Transaction{
		AccountID:      accountID,
		CreatedBy:      userID,
		CategoryID:     in.CategoryID,
		Kind:           in.Kind,
		Amount:         in.Amount,
		OccurredOn:     occurredOn,
		Description:    in.Description,
		Notes:          in.Notes,
		PaymentMethod:  in.PaymentMethod,
		SubscriptionID: in.SubscriptionID,
	}
	if err := s.db.Create(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetTransactionByID(accountID, tx.ID)
}

// GetAccountTransactions retrieves a filtered, paginated list of ledger
// entries, newest first.
func (s *transactionService) GetAccountTransactions(accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	query, err := s.filtered(accountID, filter)
	if err != nil {
		return nil, err
	}

	result, err := pagination.Find[models.Transaction](query.Preload("Category"), page, "occurred_on DESC, created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetTransactionByID retrieves a ledger entry within an account
func (s *transactionService) GetTransactionByID(accountID, transactionID string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.Preload("Category").Where("id = ? AND account_id = ?", transactionID, accountID).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tx, nil
}

// UpdateTransaction replaces the writable fields of a ledger entry.
func (s *transactionService) UpdateTransaction(accountID, transactionID string, in TransactionInput) (*models.Transaction, error) {
	existing, err := s.GetTransactionByID(accountID, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(accountID, in); err != nil {
		return nil, err
	}

	occurredOn := existing.OccurredOn
	if !in.OccurredOn.IsZero() {
		occurredOn = storedDate(in.OccurredOn)
	}

	updates := map[string]interface{}{
		"category_id":     in.CategoryID,
		"kind":            in.Kind,
		"amount":          in.Amount,
		"occurred_on":     occurredOn,
		"description":     in.Description,
		"notes":           in.Notes,
		"payment_method":  in.PaymentMethod,
		"subscription_id": in.SubscriptionID,
	}
	if err := s.db.Model(existing).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetTransactionByID(accountID, transactionID)
}

// DeleteTransaction deletes a ledger entry
func (s *transactionService) DeleteTransaction(accountID, transactionID string) error {
	tx, err := s.GetTransactionByID(accountID, transactionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(tx).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ExportCSV writes every entry matching filter as CSV and returns the number
// of rows written.
func (s *transactionService) ExportCSV(accountID string, filter TransactionFilter, w io.Writer) (int, error) {
	query, err := s.filtered(accountID, filter)
	if err != nil {
		return 0, err
	}

	var txs []models.Transaction
	if err := query.Preload("Category").Order("occurred_on DESC, created_at DESC").Find(&txs).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	out := csv.NewWriter(w)
	if err := out.Write([]string{"date", "kind", "category", "amount", "description", "notes", "payment_method"}); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, tx := range txs {
		category := ""
		if tx.Category != nil {
			category = tx.Category.Name
		}
		record := []string{
			tx.OccurredOn.Format(models.DateLayout),
			string(tx.Kind),
			category,
			tx.Amount.StringFixed(2),
			tx.Description,
			tx.Notes,
			tx.PaymentMethod,
		}
		if err := out.Write(record); err != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return len(txs), nil
}

func (s *transactionService) filtered(accountID string, filter TransactionFilter) (*gorm.DB, error) {
	query := s.db.Model(&models.Transaction{}).Where("account_id = ?", accountID)

	if filter.Window.Kind != "" {
		if !filter.Window.Kind.Valid() {
			return nil, apperrors.ErrInvalidDateFilter
		}
		if r, ok := filter.Window.Window(s.now()); ok {
			from, to := storedBounds(r)
			if to.Before(from) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidDateFilter, "end date is before start date")
			}
			query = query.Where("occurred_on >= ? AND occurred_on <= ?", from, to)
		}
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	return query, nil
}

func (s *transactionService) validate(accountID string, in TransactionInput) error {
	if !in.Kind.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "kind must be expense, income or savings")
	}
	if !in.Amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}

	if in.CategoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND account_id = ?", *in.CategoryID, accountID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if category.Type != in.Kind {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "category type does not match the transaction kind")
		}
	}

	if in.SubscriptionID != nil {
		var count int64
		if err := s.db.Model(&models.Subscription{}).
			Where("id = ? AND account_id = ?", *in.SubscriptionID, accountID).
			Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.ErrSubscriptionNotFound
		}
	}
	return nil
}
