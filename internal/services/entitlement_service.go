package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/models"
)

// entitlementService decides premium status and meters free usage.
type entitlementService struct {
	db        *gorm.DB
	freeLimit int
	clock     func() time.Time
}

// NewEntitlementService creates a new EntitlementServicer. freeLimit is the
// number of uses of each metered feature a free account gets.
func NewEntitlementService(db *gorm.DB, freeLimit int) EntitlementServicer {
	return &entitlementService{db: db, freeLimit: freeLimit, clock: time.Now}
}

// IsPremium reports whether the owner of accountID has an active
// entitlement. Collaborators inherit the owner's status.
func (s *entitlementService) IsPremium(accountID string) (bool, error) {
	sub, err := s.subscriber(s.db, accountID)
	if err != nil {
		return false, err
	}
	return sub != nil && sub.Active(s.clock()), nil
}

// GetStatus returns the entitlement and the usage of every metered feature.
func (s *entitlementService) GetStatus(accountID string) (*EntitlementStatus, error) {
	sub, err := s.subscriber(s.db, accountID)
	if err != nil {
		return nil, err
	}

	status := &EntitlementStatus{Tier: "free"}
	if sub != nil {
		status.Premium = sub.Active(s.clock())
		status.SubscriptionEnd = sub.SubscriptionEnd
		status.TrialEnd = sub.TrialEnd
		status.IsVIP = sub.IsVIP
		if sub.Tier != "" {
			status.Tier = sub.Tier
		}
	}

	var usage []models.FeatureUsage
	if err := s.db.Where("account_id = ?", accountID).Find(&usage).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	used := make(map[models.Feature]int, len(usage))
	for _, u := range usage {
		used[u.Feature] = u.UsageCount
	}
	for _, f := range models.Features {
		status.Features = append(status.Features, s.quota(f, used[f], status.Premium))
	}
	return status, nil
}

// Consume records one use of feature. Free accounts past the limit get
// ErrFeatureLimitReached and nothing is recorded.
func (s *entitlementService) Consume(accountID string, feature models.Feature) (*FeatureQuota, error) {
	if !feature.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown feature")
	}

	var quota FeatureQuota
	err := s.db.Transaction(func(tx *gorm.DB) error {
		sub, err := s.subscriber(tx, accountID)
		if err != nil {
			return err
		}
		premium := sub != nil && sub.Active(s.clock())

		usage := models.FeatureUsage{AccountID: accountID, Feature: feature}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("account_id = ? AND feature = ?", accountID, feature).
			FirstOrCreate(&usage).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !premium && usage.UsageCount >= s.freeLimit {
			return apperrors.ErrFeatureLimitReached
		}

		if err := tx.Model(&usage).UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		quota = s.quota(feature, usage.UsageCount+1, premium)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &quota, nil
}

// UpsertSubscriber replaces the entitlement of a user.
func (s *entitlementService) UpsertSubscriber(userID string, in SubscriberInput) (*models.Subscriber, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrUserNotFound
	}

	sub, err := s.subscriber(s.db, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		sub = &models.Subscriber{
			UserID:          userID,
			Tier:            in.Tier,
			SubscriptionEnd: in.SubscriptionEnd,
			TrialEnd:        in.TrialEnd,
			IsVIP:           in.IsVIP,
		}
		if err := s.db.Create(sub).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return sub, nil
	}

	updates := map[string]interface{}{
		"tier":             in.Tier,
		"subscription_end": in.SubscriptionEnd,
		"trial_end":        in.TrialEnd,
		"is_vip":           in.IsVIP,
	}
	if err := s.db.Model(sub).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	sub.Tier = in.Tier
	sub.SubscriptionEnd = in.SubscriptionEnd
	sub.TrialEnd = in.TrialEnd
	sub.IsVIP = in.IsVIP
	return sub, nil
}

func (s *entitlementService) subscriber(db *gorm.DB, userID string) (*models.Subscriber, error) {
	var sub models.Subscriber
	if err := db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &sub, nil
}

func (s *entitlementService) quota(f models.Feature, used int, premium bool) FeatureQuota {
	q := FeatureQuota{Feature: f, Used: used, Limit: s.freeLimit, Unlimited: premium}
	if !premium {
		q.Remaining = s.freeLimit - used
		if q.Remaining < 0 {
			q.Remaining = 0
		}
	}
	return q
}
