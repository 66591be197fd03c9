package models

import "time"

// Subscriber is the premium entitlement of a user.
type Subscriber struct {
	Base
	UserID          string     `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Tier            string     `gorm:"size:32" json:"tier"`
	SubscriptionEnd *time.Time `json:"subscription_end,omitempty"`
	TrialEnd        *time.Time `json:"trial_end,omitempty"`
	IsVIP           bool       `gorm:"column:is_vip;default:false" json:"is_vip"`
}

// Active reports whether the entitlement grants premium at now.
func (s *Subscriber) Active(now time.Time) bool {
	switch {
	case s.IsVIP:
		return true
	case s.SubscriptionEnd != nil && s.SubscriptionEnd.After(now):
		return true
	case s.TrialEnd != nil && s.TrialEnd.After(now):
		return true
	}
	return false
}

// Feature is a capability metered for free accounts.
type Feature string

const (
	FeaturePhoto  Feature = "photo"
	FeatureVoice  Feature = "voice"
	FeatureExport Feature = "export"
)

// Features lists every metered feature.
var Features = []Feature{FeaturePhoto, FeatureVoice, FeatureExport}

// Valid reports whether f is a metered feature.
func (f Feature) Valid() bool {
	switch f {
	case FeaturePhoto, FeatureVoice, FeatureExport:
		return true
	}
	return false
}

// FeatureUsage counts how often an account used a metered feature.
type FeatureUsage struct {
	Base
	AccountID  string  `gorm:"type:uuid;not null;uniqueIndex:idx_feature_usage" json:"account_id"`
	Feature    Feature `gorm:"not null;uniqueIndex:idx_feature_usage" json:"feature"`
	UsageCount int     `gorm:"not null;default:0" json:"usage_count"`
}
