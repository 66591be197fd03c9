package services

import (
	"encoding/json"

	"gorm.io/gorm"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/logger"
	"finaudy/internal/models"
	"finaudy/internal/pagination"
)

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records who did what to which resource of an account. Failures are
// logged and never reach the caller.
func (s *auditService) Log(userID, accountID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	entry := &models.AuditLog{
		UserID:       userID,
		AccountID:    accountID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      encodeChanges(changes),
	}
	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to write audit entry",
			"action", action,
			"user_id", userID,
			"account_id", accountID,
			"resource", resourceType+"/"+resourceID,
			"error", err,
		)
	}
}

// GetAccountLog pages through an account's audit trail, newest first,
// optionally narrowed to one resource type.
func (s *auditService) GetAccountLog(accountID, resourceType string, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	query := s.db.Model(&models.AuditLog{}).Where("account_id = ?", accountID)
	if resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}
	result, err := pagination.Find[models.AuditLog](query, page, "created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func encodeChanges(changes map[string]any) string {
	if len(changes) == 0 {
		return ""
	}
	data, err := json.Marshal(changes)
	if err != nil {
		logger.Get().Warnw("unencodable audit changes", "error", err)
		return "{}"
	}
	return string(data)
}
