package models

import "finaudy/internal/schedule"

// Category groups transactions. Its type is the ledger kind it applies to.
type Category struct {
	Base
	AccountID   string             `gorm:"type:uuid;not null;index" json:"account_id"`
	Name        string             `gorm:"not null" json:"name"`
	Type        schedule.EntryKind `gorm:"not null" json:"type"`
	Description string             `json:"description"`
	Icon        string             `json:"icon"`
	Color       string             `json:"color"`
	IsDefault   bool               `gorm:"default:false" json:"is_default"`
	ParentID    *string            `gorm:"type:uuid" json:"parent_id,omitempty"`

	// Relationships
	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}
