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

const clockLayout = "15:04"

// billReminderService handles bill reminder business logic.
type billReminderService struct {
	db *gorm.DB
	calendar
}

// NewBillReminderService creates a new BillReminderServicer.
func NewBillReminderService(db *gorm.DB, loc *time.Location) BillReminderServicer {
	return &billReminderService{db: db, calendar: newCalendar(loc)}
}

// CreateBillReminder creates a reminder whose first notification is the next
// occurrence of its day.
func (s *billReminderService) CreateBillReminder(accountID string, in BillReminderInput) (*models.BillReminder, error) {
	in, err := s.validate(accountID, in)
	if err != nil {
		return nil, err
	}

	reminder := &models.BillReminder{
		AccountID:            accountID,
		Name:                 in.Name,
		Amount:               in.Amount,
		Frequency:            in.Frequency,
		ReminderDay:          in.ReminderDay,
		ReminderTime:         in.ReminderTime,
		RecurringEnabled:     true,
		NextNotificationDate: s.firstNotification(in.Frequency, in.ReminderDay),
		CategoryID:           in.CategoryID,
		Comment:              in.Comment,
		LogoKey:              in.LogoKey,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reminder).Error; err != nil {
			return err
		}
		// gorm skips zero values for columns with a default
		if in.RecurringEnabled != nil && !*in.RecurringEnabled {
			reminder.RecurringEnabled = false
			return tx.Model(reminder).Update("recurring_enabled", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return reminder, nil
}

// GetAccountBillReminders retrieves a paginated list of reminders, soonest
// first.
func (s *billReminderService) GetAccountBillReminders(accountID string, page pagination.PageRequest) (*pagination.PageResponse[models.BillReminder], error) {
	query := s.db.Model(&models.BillReminder{}).Where("account_id = ?", accountID)
	result, err := pagination.Find[models.BillReminder](query, page, "next_notification_date ASC, name ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetBillReminderByID retrieves a reminder within an account
func (s *billReminderService) GetBillReminderByID(accountID, reminderID string) (*models.BillReminder, error) {
	var reminder models.BillReminder
	if err := s.db.Where("id = ? AND account_id = ?", reminderID, accountID).First(&reminder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBillReminderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &reminder, nil
}

// UpdateBillReminder replaces the writable fields of a reminder. Changing
// the schedule recomputes the next notification date.
func (s *billReminderService) UpdateBillReminder(accountID, reminderID string, in BillReminderInput) (*models.BillReminder, error) {
	reminder, err := s.GetBillReminderByID(accountID, reminderID)
	if err != nil {
		return nil, err
	}
	in, err = s.validate(accountID, in)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":          in.Name,
		"amount":        in.Amount,
		"frequency":     in.Frequency,
		"reminder_day":  in.ReminderDay,
		"reminder_time": in.ReminderTime,
		"category_id":   in.CategoryID,
		"comment":       in.Comment,
		"logo_key":      in.LogoKey,
	}
	if in.RecurringEnabled != nil {
		updates["recurring_enabled"] = *in.RecurringEnabled
	}
	if in.Frequency != reminder.Frequency || in.ReminderDay != reminder.ReminderDay {
		updates["next_notification_date"] = s.firstNotification(in.Frequency, in.ReminderDay)
	}

	if err := s.db.Model(reminder).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetBillReminderByID(accountID, reminderID)
}

// DeleteBillReminder deletes a reminder
func (s *billReminderService) DeleteBillReminder(accountID, reminderID string) error {
	reminder, err := s.GetBillReminderByID(accountID, reminderID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(reminder).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DueReminders returns the enabled reminders whose notification date has
// come. On the notification date itself the reminder time must have passed.
func (s *billReminderService) DueReminders(accountID string) ([]models.BillReminder, error) {
	today := s.today()
	var reminders []models.BillReminder
	if err := s.db.Where("account_id = ? AND recurring_enabled = ? AND next_notification_date <= ?", accountID, true, today).
		Order("next_notification_date ASC").Find(&reminders).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	clock := s.now().Format(clockLayout)
	due := reminders[:0]
	for _, r := range reminders {
		if r.NextNotificationDate.Before(today) || r.ReminderTime <= clock {
			due = append(due, r)
		}
	}
	return due, nil
}

// AdvanceReminder moves a dispatched reminder to its next period after today.
func (s *billReminderService) AdvanceReminder(reminder *models.BillReminder) error {
	today := s.today()
	next := reminder.NextNotificationDate
	for !next.After(today) {
		next = s.advance(reminder.Frequency, next, reminder.ReminderDay)
	}

	if err := s.db.Model(reminder).Update("next_notification_date", next).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	reminder.NextNotificationDate = next
	return nil
}

// advance steps one period, snapping month-based dates back to the reminder
// day after a clamped month.
func (s *billReminderService) advance(f schedule.Frequency, from time.Time, day int) time.Time {
	next := schedule.Advance(f, from)
	if f == schedule.FrequencyDaily || f == schedule.FrequencyWeekly {
		return next
	}
	last := time.Date(next.Year(), next.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return time.Date(next.Year(), next.Month(), day, 0, 0, 0, 0, time.UTC)
}

func (s *billReminderService) firstNotification(f schedule.Frequency, day int) time.Time {
	next := schedule.NextOccurrence(f, day, nil, s.now())
	return storedDate(next)
}

func (s *billReminderService) validate(accountID string, in BillReminderInput) (BillReminderInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "reminder name is required")
	}
	if !in.Frequency.Valid() {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid frequency")
	}
	if in.Amount != nil && !in.Amount.IsPositive() {
		return in, apperrors.ErrInvalidAmount
	}
	if in.ReminderDay == 0 && (in.Frequency == schedule.FrequencyDaily || in.Frequency == schedule.FrequencyWeekly) {
		in.ReminderDay = s.now().Day()
	}
	if in.ReminderDay < 1 || in.ReminderDay > 31 {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "reminder day must be between 1 and 31")
	}
	if in.ReminderTime == "" {
		in.ReminderTime = models.DefaultReminderTime
	}
	at, err := time.Parse(clockLayout, in.ReminderTime)
	if err != nil {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "reminder time must be HH:MM")
	}
	in.ReminderTime = at.Format(clockLayout)
	if in.CategoryID != nil {
		var count int64
		if err := s.db.Model(&models.Category{}).Where("id = ? AND account_id = ?", *in.CategoryID, accountID).Count(&count).Error; err != nil {
			return in, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return in, apperrors.ErrCategoryNotFound
		}
	}
	return in, nil
}
