package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/models"
	"finaudy/internal/pagination"
	"finaudy/internal/schedule"
)

// subscriptionService handles recurring charge business logic.
type subscriptionService struct {
	db *gorm.DB
	calendar
}

// NewSubscriptionService creates a new SubscriptionServicer.
func NewSubscriptionService(db *gorm.DB, loc *time.Location) SubscriptionServicer {
	return &subscriptionService{db: db, calendar: newCalendar(loc)}
}

// CreateSubscription registers a recurring charge.
func (s *subscriptionService) CreateSubscription(accountID string, in SubscriptionInput) (*models.Subscription, error) {
	in, err := s.validate(accountID, in)
	if err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		AccountID:  accountID,
		Name:       in.Name,
		Amount:     in.Amount,
		Frequency:  in.Frequency,
		AnchorDay:  in.AnchorDay,
		CategoryID: in.CategoryID,
		LogoKey:    in.LogoKey,
	}
	if err := s.db.Create(sub).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sub, nil
}

// GetAccountSubscriptions retrieves a paginated list of subscriptions.
func (s *subscriptionService) GetAccountSubscriptions(accountID string, page pagination.PageRequest) (*pagination.PageResponse[models.Subscription], error) {
	query := s.db.Model(&models.Subscription{}).Where("account_id = ?", accountID)
	result, err := pagination.Find[models.Subscription](query, page, "renewal_day ASC, name ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetSubscriptionByID retrieves a subscription within an account
func (s *subscriptionService) GetSubscriptionByID(accountID, subscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.Where("id = ? AND account_id = ?", subscriptionID, accountID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubscriptionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &sub, nil
}

// UpdateSubscription replaces the writable fields of a subscription. The
// charge history is kept.
func (s *subscriptionService) UpdateSubscription(accountID, subscriptionID string, in SubscriptionInput) (*models.Subscription, error) {
	sub, err := s.GetSubscriptionByID(accountID, subscriptionID)
	if err != nil {
		return nil, err
	}
	in, err = s.validate(accountID, in)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(sub).Updates(map[string]interface{}{
		"name":        in.Name,
		"amount":      in.Amount,
		"frequency":   in.Frequency,
		"renewal_day": in.AnchorDay,
		"category_id": in.CategoryID,
		"logo_key":    in.LogoKey,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetSubscriptionByID(accountID, subscriptionID)
}

// DeleteSubscription deletes a subscription. Past payments stay in the
// ledger without the link.
func (s *subscriptionService) DeleteSubscription(accountID, subscriptionID string) error {
	sub, err := s.GetSubscriptionByID(accountID, subscriptionID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("account_id = ? AND subscription_id = ?", accountID, subscriptionID).
			Update("subscription_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(sub).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// MarkPaid records the payment of a subscription as a linked expense and
// moves its charge history to paidOn. A zero paidOn means today.
func (s *subscriptionService) MarkPaid(accountID, userID, subscriptionID string, paidOn time.Time) (*models.Transaction, error) {
	sub, err := s.GetSubscriptionByID(accountID, subscriptionID)
	if err != nil {
		return nil, err
	}

	day := s.today()
	if !paidOn.IsZero() {
		day = storedDate(paidOn)
	}
	// Charge instants are local midnights so they project on the right day
	chargedAt := schedule.CivilDate(day, s.loc)

	payment := &models.Transaction{
		AccountID:      accountID,
		CreatedBy:      userID,
		CategoryID:     sub.CategoryID,
		Kind:           schedule.KindExpense,
		Amount:         sub.Amount,
		OccurredOn:     day,
		Description:    sub.Name,
		SubscriptionID: &sub.ID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		return tx.Model(sub).Update("last_charged_at", chargedAt).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payment, nil
}

// GetOverview projects every subscription and totals the overdue ones
// selected by filter.
func (s *subscriptionService) GetOverview(accountID string, filter schedule.DateFilter) (*SubscriptionOverview, error) {
	if !filter.Kind.Valid() {
		return nil, apperrors.ErrInvalidDateFilter
	}
	if filter.Kind == schedule.FilterCustom && filter.To.Before(filter.From) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidDateFilter, "end date is before start date")
	}

	subs, items, paid, err := s.load(accountID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	total, count := schedule.OverdueBalance(items, paid, filter, now)
	return &SubscriptionOverview{
		Subscriptions: s.statuses(subs, items, paid, now),
		OverdueTotal:  total,
		OverdueCount:  count,
	}, nil
}

// OverdueSubscriptions returns the unpaid subscriptions past their due day.
func (s *subscriptionService) OverdueSubscriptions(accountID string) ([]SubscriptionStatus, error) {
	subs, items, paid, err := s.load(accountID)
	if err != nil {
		return nil, err
	}

	var overdue []SubscriptionStatus
	for _, st := range s.statuses(subs, items, paid, s.now()) {
		if st.Overdue {
			overdue = append(overdue, st)
		}
	}
	return overdue, nil
}

// RenewingToday returns the unpaid subscriptions falling due today.
func (s *subscriptionService) RenewingToday(accountID string) ([]SubscriptionStatus, error) {
	subs, items, paid, err := s.load(accountID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	statuses := s.statuses(subs, items, paid, now)
	var due []SubscriptionStatus
	for i, it := range items {
		if !paid.Has(it.ID) && schedule.DueToday(it, now) {
			due = append(due, statuses[i])
		}
	}
	return due, nil
}

func (s *subscriptionService) load(accountID string) ([]models.Subscription, []schedule.RecurringItem, schedule.PaidSet, error) {
	var subs []models.Subscription
	if err := s.db.Where("account_id = ?", accountID).Order("renewal_day ASC, name ASC").Find(&subs).Error; err != nil {
		return nil, nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	items := models.RecurringItems(subs, s.loc)

	// An annual period is the longest a payment can settle
	since := storedDate(schedule.AddMonths(s.now(), -12))
	var payments []models.Transaction
	if err := s.db.Where("account_id = ? AND kind = ? AND subscription_id IS NOT NULL AND occurred_on >= ?",
		accountID, schedule.KindExpense, since).Find(&payments).Error; err != nil {
		return nil, nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	paid := schedule.PaidThisPeriod(items, models.LedgerEntries(payments), s.now())
	return subs, items, paid, nil
}

func (s *subscriptionService) statuses(subs []models.Subscription, items []schedule.RecurringItem, paid schedule.PaidSet, now time.Time) []SubscriptionStatus {
	out := make([]SubscriptionStatus, len(subs))
	for i, it := range items {
		out[i] = SubscriptionStatus{
			Subscription:   subs[i],
			NextOccurrence: schedule.NextOccurrence(it.Frequency, it.AnchorDay, it.LastChargedAt, now),
			Overdue:        schedule.IsOverdue(it, paid, now),
			PaidThisPeriod: paid.Has(it.ID),
		}
	}
	return out
}

func (s *subscriptionService) validate(accountID string, in SubscriptionInput) (SubscriptionInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "subscription name is required")
	}
	if !in.Amount.IsPositive() {
		return in, apperrors.ErrInvalidAmount
	}
	if !in.Frequency.Valid() {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid frequency")
	}
	if in.AnchorDay == 0 && (in.Frequency == schedule.FrequencyDaily || in.Frequency == schedule.FrequencyWeekly) {
		in.AnchorDay = s.now().Day()
	}
	if in.AnchorDay < 1 || in.AnchorDay > 31 {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "renewal day must be between 1 and 31")
	}

	if in.CategoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND account_id = ?", *in.CategoryID, accountID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return in, apperrors.ErrCategoryNotFound
			}
			return in, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if category.Type != schedule.KindExpense {
			return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "subscriptions can only use expense categories")
		}
	}
	return in, nil
}
