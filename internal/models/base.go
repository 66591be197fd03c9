package models

import (
	"time"

	"gorm.io/gorm"

	"finaudy/internal/uuid"
)

// Base contains common columns for all tables
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DateOf truncates t to its calendar day in loc and returns it as a UTC
// midnight, the form every date column is stored in.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
