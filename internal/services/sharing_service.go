package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "finaudy/internal/errors"
	"finaudy/internal/models"
)

// sharingService handles shared account invitations and access checks.
type sharingService struct {
	db *gorm.DB
}

// NewSharingService creates a new SharingServicer.
func NewSharingService(db *gorm.DB) SharingServicer {
	return &sharingService{db: db}
}

// Invite grants the owner of an account a pending share with email. A
// declined or revoked invitation for the same email is reopened.
func (s *sharingService) Invite(ownerID, email string) (*models.SharedAccount, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required")
	}

	var owner models.User
	if err := s.db.First(&owner, "id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if owner.Email == email {
		return nil, apperrors.ErrShareSelf
	}

	var invitee *string
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		invitee = &user.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var share models.SharedAccount
	err = s.db.Where("owner_id = ? AND invited_email = ?", ownerID, email).First(&share).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err == nil {
		if share.Status == models.ShareStatusPending || share.Status == models.ShareStatusAccepted {
			return nil, apperrors.ErrShareExists
		}
		updates := map[string]interface{}{
			"status":         models.ShareStatusPending,
			"shared_with_id": invitee,
			"accepted_at":    nil,
		}
		if err := s.db.Model(&share).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		share.Status = models.ShareStatusPending
		share.SharedWithID = invitee
		share.AcceptedAt = nil
		return &share, nil
	}

	share = models.SharedAccount{
		OwnerID:      ownerID,
		SharedWithID: invitee,
		InvitedEmail: email,
		Status:       models.ShareStatusPending,
	}
	if err := s.db.Create(&share).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &share, nil
}

// Accept turns a pending invitation addressed to userID into access.
func (s *sharingService) Accept(userID, shareID string) (*models.SharedAccount, error) {
	share, err := s.pendingFor(userID, shareID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":         models.ShareStatusAccepted,
		"shared_with_id": userID,
		"accepted_at":    now,
	}
	if err := s.db.Model(share).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	share.Status = models.ShareStatusAccepted
	share.SharedWithID = &userID
	share.AcceptedAt = &now
	return share, nil
}

// Decline rejects a pending invitation addressed to userID.
func (s *sharingService) Decline(userID, shareID string) error {
	share, err := s.pendingFor(userID, shareID)
	if err != nil {
		return err
	}
	if err := s.db.Model(share).Update("status", models.ShareStatusDeclined).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Revoke withdraws an invitation or removes a collaborator's access.
func (s *sharingService) Revoke(ownerID, shareID string) error {
	result := s.db.Model(&models.SharedAccount{}).
		Where("id = ? AND owner_id = ? AND status IN ?", shareID, ownerID,
			[]models.ShareStatus{models.ShareStatusPending, models.ShareStatusAccepted}).
		Update("status", models.ShareStatusRevoked)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrShareNotFound
	}
	return nil
}

// GetOwnedShares lists the live invitations and collaborators of an owner.
func (s *sharingService) GetOwnedShares(ownerID string) ([]models.SharedAccount, error) {
	var shares []models.SharedAccount
	if err := s.db.Where("owner_id = ? AND status IN ?", ownerID,
		[]models.ShareStatus{models.ShareStatusPending, models.ShareStatusAccepted}).
		Order("created_at ASC").Find(&shares).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return shares, nil
}

// GetPendingInvites lists invitations waiting for userID's answer.
func (s *sharingService) GetPendingInvites(userID string) ([]models.SharedAccount, error) {
	var shares []models.SharedAccount
	if err := s.db.Where("shared_with_id = ? AND status = ?", userID, models.ShareStatusPending).
		Order("created_at DESC").Find(&shares).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return shares, nil
}

// Accessible lists the user's own account followed by every account shared
// with them.
func (s *sharingService) Accessible(userID string) ([]AccessibleAccount, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	accounts := []AccessibleAccount{{
		AccountID: user.ID,
		OwnerName: fullName(&user),
		Email:     user.Email,
		Owned:     true,
	}}

	var owners []models.User
	if err := s.db.Model(&models.User{}).
		Joins("JOIN shared_accounts ON shared_accounts.owner_id = users.id").
		Where("shared_accounts.shared_with_id = ? AND shared_accounts.status = ? AND shared_accounts.deleted_at IS NULL",
			userID, models.ShareStatusAccepted).
		Order("users.email ASC").
		Find(&owners).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range owners {
		accounts = append(accounts, AccessibleAccount{
			AccountID: owners[i].ID,
			OwnerName: fullName(&owners[i]),
			Email:     owners[i].Email,
		})
	}
	return accounts, nil
}

// HasAccess reports whether userID may act on accountID.
func (s *sharingService) HasAccess(userID, accountID string) (bool, error) {
	if userID == accountID {
		return true, nil
	}
	var count int64
	if err := s.db.Model(&models.SharedAccount{}).
		Where("owner_id = ? AND shared_with_id = ? AND status = ?", accountID, userID, models.ShareStatusAccepted).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// Recipients returns the users notified about an account: its owner and
// every accepted collaborator.
func (s *sharingService) Recipients(accountID string) ([]string, error) {
	var collaborators []string
	if err := s.db.Model(&models.SharedAccount{}).
		Where("owner_id = ? AND status = ? AND shared_with_id IS NOT NULL", accountID, models.ShareStatusAccepted).
		Order("accepted_at ASC").
		Pluck("shared_with_id", &collaborators).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return append([]string{accountID}, collaborators...), nil
}

// pendingFor loads a pending invitation addressed to userID, either by id or
// by the email the user registered with.
func (s *sharingService) pendingFor(userID, shareID string) (*models.SharedAccount, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var share models.SharedAccount
	err := s.db.Where("id = ? AND status = ? AND (shared_with_id = ? OR (shared_with_id IS NULL AND invited_email = ?))",
		shareID, models.ShareStatusPending, userID, user.Email).First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrShareNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &share, nil
}

func fullName(u *models.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
