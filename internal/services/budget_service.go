package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/models"
	"finaudy/internal/pagination"
	"finaudy/internal/schedule"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
	calendar
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, loc *time.Location) BudgetServicer {
	return &budgetService{db: db, calendar: newCalendar(loc)}
}

// CreateBudget creates a budget for the current period of periodType. A
// budget for the same category and period bounds is updated in place.
func (s *budgetService) CreateBudget(accountID, categoryID string, amount decimal.Decimal, periodType schedule.PeriodType, autoRenew bool) (*models.Budget, error) {
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if !periodType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid period type")
	}

	var category models.Category
	if err := s.db.Where("id = ? AND account_id = ?", categoryID, accountID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category.Type != schedule.KindExpense {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budgets can only track expense categories")
	}

	start, end := storedBounds(schedule.PeriodRange(periodType, s.now()))

	var budgetID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.renew(tx, accountID, &categoryID); err != nil {
			return err
		}

		var existing models.Budget
		err := tx.Where("account_id = ? AND category_id = ? AND period_start = ? AND period_end = ?",
			accountID, categoryID, start, end).First(&existing).Error
		switch {
		case err == nil:
			budgetID = existing.ID
			return tx.Model(&existing).Updates(map[string]interface{}{
				"amount":      amount,
				"period_type": periodType,
				"auto_renew":  autoRenew,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}

		budget := &models.Budget{
			AccountID:   accountID,
			CategoryID:  categoryID,
			Amount:      amount,
			PeriodType:  periodType,
			PeriodStart: start,
			PeriodEnd:   end,
			AutoRenew:   autoRenew,
		}
		if err := tx.Create(budget).Error; err != nil {
			return err
		}
		budgetID = budget.ID
		// gorm skips zero values for columns with a default
		if !autoRenew {
			return tx.Model(budget).Update("auto_renew", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetBudgetByID(accountID, budgetID)
}

// GetAccountBudgets retrieves a paginated list of budgets, optionally of one
// period type.
func (s *budgetService) GetAccountBudgets(accountID string, periodType *schedule.PeriodType, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	query := s.db.Model(&models.Budget{}).Where("account_id = ?", accountID)
	if periodType != nil {
		query = query.Where("period_type = ?", *periodType)
	}

	result, err := pagination.Find[models.Budget](query.Preload("Category"), page, "created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetBudgetByID retrieves a budget within an account
func (s *budgetService) GetBudgetByID(accountID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").Where("id = ? AND account_id = ?", budgetID, accountID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget changes the amount or renewal flag of a budget.
func (s *budgetService) UpdateBudget(accountID, budgetID string, amount *decimal.Decimal, autoRenew *bool) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(accountID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if amount != nil {
		if !amount.IsPositive() {
			return nil, apperrors.ErrInvalidAmount
		}
		updates["amount"] = *amount
	}
	if autoRenew != nil {
		updates["auto_renew"] = *autoRenew
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetBudgetByID(accountID, budgetID)
}

// DeleteBudget removes a budget. Rows are hard deleted so the period bounds
// can be budgeted again.
func (s *budgetService) DeleteBudget(accountID, budgetID string) error {
	budget, err := s.GetBudgetByID(accountID, budgetID)
	if err != nil {
		return err
	}
	if err := s.db.Unscoped().Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetProgress analyzes one budget against its live period.
func (s *budgetService) GetBudgetProgress(accountID, budgetID string) (*schedule.BudgetAnalysis, error) {
	budget, err := s.GetBudgetByID(accountID, budgetID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entries, err := s.expenses(accountID, []models.Budget{*budget}, now)
	if err != nil {
		return nil, err
	}

	analysis := schedule.AnalyzeBudget(budget.Period(), entries, now)
	return &analysis, nil
}

// GetOverview analyzes every budget visible under filter.
func (s *budgetService) GetOverview(accountID string, filter schedule.DateFilter) (*BudgetOverview, error) {
	if !filter.Kind.Valid() {
		return nil, apperrors.ErrInvalidDateFilter
	}
	if filter.Kind == schedule.FilterCustom && filter.To.Before(filter.From) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidDateFilter, "end date is before start date")
	}

	var budgets []models.Budget
	if err := s.db.Where("account_id = ?", accountID).Order("created_at ASC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byID := make(map[string]models.Budget, len(budgets))
	periods := make([]schedule.BudgetPeriod, len(budgets))
	for i := range budgets {
		byID[budgets[i].ID] = budgets[i]
		periods[i] = budgets[i].Period()
	}
	visible := schedule.FilterBudgets(periods, filter)

	shown := make([]models.Budget, 0, len(visible))
	for _, p := range visible {
		shown = append(shown, byID[p.ID])
	}

	now := s.now()
	entries, err := s.expenses(accountID, shown, now)
	if err != nil {
		return nil, err
	}

	analyses := make([]schedule.BudgetAnalysis, 0, len(visible))
	for _, p := range visible {
		analyses = append(analyses, schedule.AnalyzeBudget(p, entries, now))
	}

	return &BudgetOverview{
		Budgets: analyses,
		Totals:  schedule.SummarizeBudgets(analyses),
	}, nil
}

// ExceededBudgets returns the budgets whose live period is over limit,
// optionally only those of one category. Stale auto-renew periods are rolled
// forward first.
func (s *budgetService) ExceededBudgets(accountID string, categoryID *string) ([]ExceededBudget, error) {
	if err := s.renew(s.db, accountID, categoryID); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	query := s.db.Preload("Category").Where("account_id = ?", accountID)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	var budgets []models.Budget
	if err := query.Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := s.now()
	entries, err := s.expenses(accountID, budgets, now)
	if err != nil {
		return nil, err
	}

	var exceeded []ExceededBudget
	for _, b := range budgets {
		analysis := schedule.AnalyzeBudget(b.Period(), entries, now)
		if analysis.Status == schedule.StatusOver {
			exceeded = append(exceeded, ExceededBudget{Budget: b, Analysis: analysis})
		}
	}
	return exceeded, nil
}

// expenses loads the account's expense entries that can fall inside the live
// period of any of budgets.
func (s *budgetService) expenses(accountID string, budgets []models.Budget, now time.Time) ([]schedule.LedgerEntry, error) {
	if len(budgets) == 0 {
		return nil, nil
	}

	var from, to time.Time
	for i, b := range budgets {
		start, end := storedBounds(schedule.PeriodRange(b.PeriodType, now))
		if i == 0 || start.Before(from) {
			from = start
		}
		if i == 0 || end.After(to) {
			to = end
		}
	}

	var txs []models.Transaction
	if err := s.db.Where("account_id = ? AND kind = ? AND occurred_on >= ? AND occurred_on <= ?",
		accountID, schedule.KindExpense, from, to).Find(&txs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return models.LedgerEntries(txs), nil
}

// renew moves the stored bounds of auto-renewing budgets to the current
// period. A budget whose new bounds are already taken keeps its old ones.
func (s *budgetService) renew(db *gorm.DB, accountID string, categoryID *string) error {
	query := db.Where("account_id = ? AND auto_renew = ?", accountID, true)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	var budgets []models.Budget
	if err := query.Find(&budgets).Error; err != nil {
		return err
	}

	now := s.now()
	for i := range budgets {
		b := &budgets[i]
		start, end := storedBounds(schedule.PeriodRange(b.PeriodType, now))
		if b.PeriodStart.Equal(start) && b.PeriodEnd.Equal(end) {
			continue
		}

		var taken int64
		if err := db.Model(&models.Budget{}).
			Where("account_id = ? AND category_id = ? AND period_start = ? AND period_end = ?", b.AccountID, b.CategoryID, start, end).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			continue
		}
		if err := db.Model(b).Updates(map[string]interface{}{"period_start": start, "period_end": end}).Error; err != nil {
			return err
		}
	}
	return nil
}
