package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReactionTrue   = "true"
	ReactionFalse  = "false"
	ReactionNotice = "notice"

	ReferencePost    = "post"
	ReferenceComment = "comment"
)

// Reaction is a single-choice tag a user puts on a post or comment.
// The unique index guarantees at most one row per (user, entity): changing
// type updates the row, re-selecting the same type deletes it.
type Reaction struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_unique,priority:1" json:"user_id"`
	User          User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ReferenceID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_unique,priority:2;index:idx_reactions_lookup,priority:1" json:"reference_id"`
	ReferenceType string    `gorm:"size:20;not null;uniqueIndex:idx_reactions_unique,priority:3;index:idx_reactions_lookup,priority:2" json:"reference_type"` // 'post', 'comment'
	Type          string    `gorm:"size:20;not null" json:"type"` // 'true', 'false', 'notice'
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Reaction) TableName() string {
	return "reactions"
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
