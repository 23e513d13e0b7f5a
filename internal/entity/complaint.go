package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ComplaintStatusPending     = "pending"
	ComplaintStatusUnderReview = "under_review"
	ComplaintStatusResolved    = "resolved"
	ComplaintStatusRejected    = "rejected"

	ComplaintCategoryDiscrimination = "discrimination"
	ComplaintCategoryViolence       = "violence"
	ComplaintCategoryCensorship     = "censorship"
	ComplaintCategoryDetention      = "detention"
	ComplaintCategoryOther          = "other"
)

// Complaint is a rights-violation report filed by a user and moved through
// the moderation workflow by moderators.
type Complaint struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User         User       `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	Category     string     `gorm:"size:50;not null;index" json:"category"`
	Status       string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	LocationName string     `gorm:"size:255" json:"location_name"`
	EvidenceURL  *string    `gorm:"type:text" json:"evidence_url,omitempty"`
	Resolution   string     `gorm:"type:text" json:"resolution"`
	ReviewedBy   *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
