package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/logger"
	"finaudy/internal/models"
	"finaudy/internal/pagination"
	"finaudy/internal/push"
)

var devicePlatforms = map[string]bool{"android": true, "ios": true, "web": true}

// notificationService stores in-app notifications and fans them out to the
// recipients' devices.
type notificationService struct {
	db        *gorm.DB
	sharing   SharingServicer
	messenger push.Messenger
	calendar
}

// NewNotificationService creates a new NotificationServicer. A nil messenger
// disables push delivery.
func NewNotificationService(db *gorm.DB, sharing SharingServicer, messenger push.Messenger, loc *time.Location) NotificationServicer {
	if messenger == nil {
		messenger = push.Noop{}
	}
	return &notificationService{db: db, sharing: sharing, messenger: messenger, calendar: newCalendar(loc)}
}

// Emit notifies every user with access to accountID. Each recipient gets at
// most one notification per kind and reference per calendar day. It returns
// how many notifications were created.
func (s *notificationService) Emit(ctx context.Context, accountID, title, message string, kind models.NotificationKind, referenceID string) (int, error) {
	recipients, err := s.sharing.Recipients(accountID)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, userID := range recipients {
		ok, err := s.Send(ctx, userID, accountID, title, message, kind, referenceID)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// Send notifies a single user about accountID unless the same notification
// was already sent to them today. The daily unique index decides, so
// concurrent senders store and push at most one.
func (s *notificationService) Send(ctx context.Context, userID, accountID, title, message string, kind models.NotificationKind, referenceID string) (bool, error) {
	if !kind.Valid() {
		return false, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid notification kind")
	}

	notification := &models.Notification{
		UserID:      userID,
		AccountID:   accountID,
		Kind:        kind,
		Title:       title,
		Message:     message,
		ReferenceID: referenceID,
		NotifyDate:  s.today(),
	}
	notification.CreatedAt = s.clock().UTC()

	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(notification)
	if result.Error != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected != 1 {
		return false, nil
	}

	s.deliver(ctx, notification)
	return true, nil
}

// deliver pushes a stored notification to the recipient's active devices.
// Push failures never undo the in-app notification.
func (s *notificationService) deliver(ctx context.Context, n *models.Notification) {
	log := logger.Named("notifications")

	var tokens []string
	if err := s.db.Model(&models.DeviceToken{}).
		Where("user_id = ? AND is_active = ?", n.UserID, true).
		Pluck("token", &tokens).Error; err != nil {
		log.Errorw("failed to load device tokens", "user_id", n.UserID, "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	msg := push.Message{
		Title: n.Title,
		Body:  n.Message,
		Data: map[string]string{
			"notification_id": n.ID,
			"kind":            string(n.Kind),
			"route":           n.Kind.Route(),
			"account_id":      n.AccountID,
			"reference_id":    n.ReferenceID,
		},
	}
	if _, err := s.messenger.SendMulticast(ctx, tokens, msg); err != nil {
		log.Warnw("push delivery failed", "user_id", n.UserID, "kind", n.Kind, "error", err)
	}
}

// GetUserNotifications lists a user's notifications, newest first.
func (s *notificationService) GetUserNotifications(userID string, unreadOnly bool, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error) {
	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	result, err := pagination.Find[models.Notification](query, page, "created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// UnreadCount counts a user's unread notifications.
func (s *notificationService) UnreadCount(userID string) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Notification{}).Where("user_id = ? AND read = ?", userID, false).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

// MarkRead marks one notification read.
func (s *notificationService) MarkRead(userID, notificationID string) (*models.Notification, error) {
	notification, err := s.find(userID, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.Read {
		return notification, nil
	}

	readAt := s.clock()
	if err := s.db.Model(notification).Updates(map[string]interface{}{"read": true, "read_at": readAt}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	notification.Read = true
	notification.ReadAt = &readAt
	return notification, nil
}

// MarkAllRead marks every unread notification of a user read.
func (s *notificationService) MarkAllRead(userID string) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "read_at": s.clock()})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteNotification deletes a notification
func (s *notificationService) DeleteNotification(userID, notificationID string) error {
	notification, err := s.find(userID, notificationID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(notification).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RegisterDevice stores a push token for the user. A token already known
// for another user moves to this one.
func (s *notificationService) RegisterDevice(userID, token, platform string) (*models.DeviceToken, error) {
	if token == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "device token is required")
	}
	if !devicePlatforms[platform] {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "platform must be android, ios or web")
	}

	now := s.clock()
	var device models.DeviceToken
	err := s.db.Where("token = ?", token).First(&device).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		device = models.DeviceToken{
			UserID:     userID,
			Token:      token,
			Platform:   platform,
			IsActive:   true,
			LastUsedAt: &now,
		}
		if err := s.db.Create(&device).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &device, nil
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{
		"user_id":      userID,
		"platform":     platform,
		"is_active":    true,
		"last_used_at": now,
	}
	if err := s.db.Model(&device).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	device.UserID = userID
	device.Platform = platform
	device.IsActive = true
	device.LastUsedAt = &now
	return &device, nil
}

// UnregisterDevice removes a user's push token.
func (s *notificationService) UnregisterDevice(userID, token string) error {
	result := s.db.Unscoped().Where("user_id = ? AND token = ?", userID, token).Delete(&models.DeviceToken{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.WithMessage(apperrors.ErrNotFound, "device token not found")
	}
	return nil
}

// DeactivateTokens stops delivery to tokens the push provider rejected.
func (s *notificationService) DeactivateTokens(_ context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	if err := s.db.Model(&models.DeviceToken{}).Where("token IN ?", tokens).Update("is_active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *notificationService) find(userID, notificationID string) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &notification, nil
}
