package models

import "time"

// ShareStatus is the state of a sharing invitation.
type ShareStatus string

const (
	ShareStatusPending  ShareStatus = "pending"
	ShareStatusAccepted ShareStatus = "accepted"
	ShareStatusDeclined ShareStatus = "declined"
	ShareStatusRevoked  ShareStatus = "revoked"
)

// SharedAccount grants a collaborator access to an owner's finance data.
// SharedWithID is set once an invited email belongs to a registered user.
type SharedAccount struct {
	Base
	OwnerID      string      `gorm:"type:uuid;not null;index" json:"owner_id"`
	SharedWithID *string     `gorm:"type:uuid;index" json:"shared_with_id,omitempty"`
	InvitedEmail string      `gorm:"not null" json:"invited_email"`
	Status       ShareStatus `gorm:"not null;default:'pending'" json:"status"`
	AcceptedAt   *time.Time  `json:"accepted_at,omitempty"`
}
