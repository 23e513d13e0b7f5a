package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article is a rights-education page (know-your-rights guides, legal
// explainers). Managed by admins, readable by everyone.
type Article struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Slug      string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Summary   string    `gorm:"size:500" json:"summary"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Topic     string    `gorm:"size:100;index" json:"topic"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
